// Package interpolation provides linear and bilinear interpolation over
// increasing, possibly non-uniform grids.
package interpolation

import (
	"fmt"
	"sort"
)

// Lerp interpolates linearly between (r1, i1) and (r2, i2) at r
func Lerp(r1, r2, i1, i2, r float64) float64 {
	return (i1*(r2-r) + i2*(r-r1)) / (r2 - r1)
}

// Bilerp interpolates inside the cell spanned by (r1, t1) and (r2, t2).
// iAB is the value at (rA, tB).
//
// Both interpolation orders (r then t, t then r) are evaluated and averaged.
// Output images depend on this exact form.
func Bilerp(r1, r2, t1, t2, i11, i12, i21, i22, r, t float64) float64 {
	alongT1 := Lerp(r1, r2, i11, i21, r)
	alongT2 := Lerp(r1, r2, i12, i22, r)
	rFirst := Lerp(t1, t2, alongT1, alongT2, t)

	alongR1 := Lerp(t1, t2, i11, i12, t)
	alongR2 := Lerp(t1, t2, i21, i22, t)
	tFirst := Lerp(r1, r2, alongR1, alongR2, r)

	return (rFirst + tFirst) / 2
}

// Bracket returns k such that grid[k] <= x < grid[k+1], clamped to the
// first and last interval. grid must be increasing with at least two nodes.
func Bracket(grid []float64, x float64) int {
	k := sort.Search(len(grid), func(i int) bool { return grid[i] > x }) - 1
	if k < 0 {
		return 0
	}
	if k > len(grid)-2 {
		return len(grid) - 2
	}
	return k
}

// Linear is a piecewise-linear function over an increasing, non-uniform grid
type Linear struct {
	xs []float64
	ys []float64
}

// NewLinear creates a piecewise-linear interpolator
func NewLinear(xs, ys []float64) (*Linear, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("need at least 2 nodes, got %d", len(xs))
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("grid has %d nodes but %d values", len(xs), len(ys))
	}
	return &Linear{xs: xs, ys: ys}, nil
}

// At evaluates the function at x. Outside the grid the nearest interval is
// extended linearly.
func (l *Linear) At(x float64) float64 {
	k := Bracket(l.xs, x)
	return Lerp(l.xs[k], l.xs[k+1], l.ys[k], l.ys[k+1], x)
}

// Surface is a function sampled on an rs × ts grid, value (ir, it) stored
// at it*len(rs)+ir.
type Surface struct {
	rs     []float64
	ts     []float64
	values []float64
}

// NewSurface creates a bilinear interpolator over a radius × time grid
func NewSurface(rs, ts, values []float64) (*Surface, error) {
	if len(rs) < 2 || len(ts) < 2 {
		return nil, fmt.Errorf("need at least 2x2 nodes, got %dx%d", len(rs), len(ts))
	}
	if len(values) != len(rs)*len(ts) {
		return nil, fmt.Errorf("grid has %d nodes but %d values", len(rs)*len(ts), len(values))
	}
	return &Surface{rs: rs, ts: ts, values: values}, nil
}

// At evaluates the surface at (r, t)
func (s *Surface) At(r, t float64) float64 {
	kr := Bracket(s.rs, r)
	kt := Bracket(s.ts, t)
	nr := len(s.rs)

	i11 := s.values[kt*nr+kr]
	i21 := s.values[kt*nr+kr+1]
	i12 := s.values[(kt+1)*nr+kr]
	i22 := s.values[(kt+1)*nr+kr+1]

	return Bilerp(s.rs[kr], s.rs[kr+1], s.ts[kt], s.ts[kt+1], i11, i12, i21, i22, r, t)
}
