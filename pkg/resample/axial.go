package resample

import (
	"fmt"
	"math"

	"bin2gif/internal/models"
	"bin2gif/internal/workers"
	"bin2gif/pkg/interpolation"
	"bin2gif/pkg/projection"
)

// projectProfile returns the projected samples of p, time-major
func projectProfile(p *models.AxialProfile, mode projection.Mode) []float64 {
	values := make([]float64, p.NR()*p.NT())
	for i := range values {
		if p.Kind == models.Complex {
			values[i] = projection.Project(mode, p.Complex[i])
		} else {
			values[i] = projection.ProjectReal(mode, p.Real[i])
		}
	}
	return values
}

// maxRasterPixels bounds the rasters built from axial profiles
const maxRasterPixels = 1 << 26

// step returns the geometric mean of the first and last spacing of grid
func step(grid []float64) float64 {
	n := len(grid)
	return math.Sqrt((grid[n-1] - grid[n-2]) * (grid[1] - grid[0]))
}

// naturalSide returns 2*floor(span/step)+1, saturating instead of
// overflowing int for very fine grids
func naturalSide(span, step float64) int {
	half := math.Floor(span / step)
	if !(half < maxRasterPixels) {
		half = maxRasterPixels
	}
	return 2*int(half) + 1
}

// extent returns the cut-off coordinate and the default raster side for an
// increasing grid: the cut-off is the midpoint of the two outermost nodes.
func extent(grid []float64) (cut float64, side int) {
	n := len(grid)
	cut = (grid[n-1] + grid[n-2]) / 2
	return cut, naturalSide(cut, step(grid))
}

// newRaster allocates a width×height scalar grid unless it exceeds
// maxRasterPixels
func newRaster(width, height int) (*models.ScalarGrid, error) {
	if float64(width)*float64(height) > maxRasterPixels {
		return nil, fmt.Errorf("%w: %dx%d raster exceeds %d pixels", models.ErrAllocationFailure, width, height, maxRasterPixels)
	}
	return models.NewScalarGrid(width, height), nil
}

func checkProfile(p *models.AxialProfile) error {
	if p.NR() < 2 {
		return fmt.Errorf("%w: need at least 2 radius nodes, got %d", models.ErrInvalidAxialProfile, p.NR())
	}
	if p.NT() < 1 {
		return fmt.Errorf("%w: no time nodes", models.ErrInvalidAxialProfile)
	}
	if want := p.NR() * p.NT(); (p.Kind == models.Complex && len(p.Complex) != want) ||
		(p.Kind != models.Complex && len(p.Real) != want) {
		return fmt.Errorf("%w: expected %d samples", models.ErrInvalidAxialProfile, want)
	}
	return nil
}

// ResampleSlice rasterizes the central time slice of p onto a square
// Cartesian grid whose pixel side/2 lies on the axis. width <= 0 selects the natural size
// derived from the radius grid. Pixels at or beyond the outer radius are 0.
func ResampleSlice(p *models.AxialProfile, mode projection.Mode, width, numWorkers int) (*models.ScalarGrid, error) {
	if err := checkProfile(p); err != nil {
		return nil, err
	}

	nr := p.NR()
	it := (p.NT() - 1) / 2
	values := projectProfile(p, mode)[it*nr : (it+1)*nr]

	outer, side := extent(p.GridR)
	if !(outer > 0) {
		return nil, fmt.Errorf("%w: outer radius %g is not positive", models.ErrInvalidAxialProfile, outer)
	}
	if width > 0 {
		side = width
	}

	profile, err := interpolation.NewLinear(p.GridR, values)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidAxialProfile, err)
	}

	out, err := newRaster(side, side)
	if err != nil {
		return nil, err
	}
	s := float64(side)
	half := float64(side / 2)

	err = workers.ForEachRow(side, numWorkers, func(start, end int) error {
		for i := start; i < end; i++ {
			dy := float64(i) - half
			for j := 0; j < side; j++ {
				dx := float64(j) - half
				r := math.Sqrt(4*(dx*dx+dy*dy)) * outer / s
				if r >= outer {
					continue
				}
				out.Data[i*side+j] = profile.At(r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ResamplePlane rasterizes the whole radius-time surface of p. Columns run
// through the axis (radius mirrored about the center column) and rows run
// through time (mirrored about the center row). A time outside the grid is
// looked up at its opposite sign before being treated as outside.
// width or height <= 0 selects the natural size of that axis.
func ResamplePlane(p *models.AxialProfile, mode projection.Mode, width, height, numWorkers int) (*models.ScalarGrid, error) {
	if err := checkProfile(p); err != nil {
		return nil, err
	}
	if p.NT() < 3 {
		return nil, fmt.Errorf("%w: full plane needs at least 3 time nodes, got %d", models.ErrInvalidAxialProfile, p.NT())
	}

	outer, w := extent(p.GridR)
	if !(outer > 0) {
		return nil, fmt.Errorf("%w: outer radius %g is not positive", models.ErrInvalidAxialProfile, outer)
	}
	nt := p.NT()
	tFirst, tLast := p.GridT[0], p.GridT[nt-1]
	tMax := math.Max(math.Abs(tFirst), math.Abs(tLast))
	h := naturalSide(tMax, step(p.GridT))
	if width > 0 {
		w = width
	}
	if height > 0 {
		h = height
	}
	surface, err := interpolation.NewSurface(p.GridR, p.GridT, projectProfile(p, mode))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidAxialProfile, err)
	}

	out, err := newRaster(w, h)
	if err != nil {
		return nil, err
	}
	fw, fh := float64(w), float64(h)
	cx, cy := float64(w/2), float64(h/2)

	err = workers.ForEachRow(h, numWorkers, func(start, end int) error {
		for j := start; j < end; j++ {
			t := 2 * (float64(j) - cy) / fh * tMax
			if t < tFirst || t > tLast {
				t = -t
			}
			if t < tFirst || t > tLast {
				continue
			}
			for i := 0; i < w; i++ {
				dx := float64(i) - cx
				r := math.Sqrt(4*dx*dx) * outer / fw
				if r >= outer {
					continue
				}
				out.Data[j*w+i] = surface.At(r, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
