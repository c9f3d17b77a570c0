// Package workers splits row-parallel work across goroutines.
package workers

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForEachRow calls fn on contiguous row ranges [start, end) covering
// [0, rows), using at most n goroutines. Ranges never overlap, so fn may
// write its rows of a shared output buffer without locking.
func ForEachRow(rows, n int, fn func(start, end int) error) error {
	if rows <= 0 {
		return nil
	}
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n > rows {
		n = rows
	}

	// Divide the work among available cores
	rowsPerWorker := (rows + n - 1) / n

	var g errgroup.Group
	for start := 0; start < rows; start += rowsPerWorker {
		start := start
		end := min(start+rowsPerWorker, rows)
		g.Go(func() error {
			return fn(start, end)
		})
	}
	return g.Wait()
}
