package conversion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Status is the outcome of processing one input
type Status int

const (
	// Pending inputs were never processed because the batch was cancelled
	Pending Status = iota
	Converted
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Converted:
		return "converted"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Result describes what happened to one input
type Result struct {
	Input  string
	Output string
	Status Status

	// Reason explains a skip
	Reason string

	// Err is set for failed inputs
	Err error
}

// Summary aggregates the results of a batch
type Summary struct {
	Results   []Result
	Converted int
	Skipped   int
	Failed    int
}

// AllFailed reports whether no input was converted or skipped while at
// least one failed
func (s Summary) AllFailed() bool {
	return s.Failed > 0 && s.Converted == 0 && s.Skipped == 0
}

// ConvertAll processes paths with up to NumCores files in flight. Failures
// are recorded per file; the returned error is only set when ctx ends the
// batch early, in which case the remaining inputs stay Pending.
func (c *Converter) ConvertAll(ctx context.Context, paths []string) (Summary, error) {
	results := make([]Result, len(paths))
	for i, path := range paths {
		results[i] = Result{Input: path}
	}

	var g errgroup.Group
	g.SetLimit(max(c.params.NumCores, 1))

	for i, path := range paths {
		if ctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i] = c.Process(path)
			return nil
		})
	}
	g.Wait()

	summary := Summary{Results: results}
	for _, r := range results {
		switch r.Status {
		case Converted:
			summary.Converted++
		case Skipped:
			summary.Skipped++
		case Failed:
			summary.Failed++
		}
	}
	return summary, ctx.Err()
}

// ExpandPatterns resolves command line arguments into input paths. Each
// argument is a glob pattern; a pattern without matches is kept literally so
// the missing file is reported when processed. Directories expand to their
// entries, one level deep. A path reached through several arguments is
// listed once, at its first position.
func ExpandPatterns(patterns []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(path string) {
		key := filepath.Clean(path)
		if !seen[key] {
			seen[key] = true
			paths = append(paths, path)
		}
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || !info.IsDir() {
				add(match)
				continue
			}
			entries, err := os.ReadDir(match)
			if err != nil {
				return nil, fmt.Errorf("cannot read directory %s: %w", match, err)
			}
			for _, entry := range entries {
				add(filepath.Join(match, entry.Name()))
			}
		}
	}
	return paths, nil
}
