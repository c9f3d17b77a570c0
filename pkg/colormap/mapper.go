package colormap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"bin2gif/internal/models"
	"bin2gif/internal/workers"
	"bin2gif/pkg/projection"
)

// RangePolicy describes how the color range is chosen
type RangePolicy struct {
	// Mode is the projection used to produce the scalar grid
	Mode projection.Mode

	// Amp is the color scale amplitude; values <= 0 mean unset
	Amp float64

	// Min and Max override the corresponding bound when UseMin/UseMax are set
	Min    float64
	Max    float64
	UseMin bool
	UseMax bool

	// DivideByE scales the data range down by Euler's number
	DivideByE bool
}

// ResolveRange picks the normalization bounds for g. In order of
// precedence: phase maps to [-π, π]; a positive amplitude without other
// overrides maps to [0, A] or [-A, A]; divide-by-e shrinks the data range
// by e; otherwise the data range is used. Explicit min/max replace the
// resulting bounds last.
func ResolveRange(g *models.ScalarGrid, p RangePolicy) (models.ColorRange, error) {
	var rng models.ColorRange

	switch {
	case p.Mode == projection.Arg:
		rng = models.ColorRange{Min: -math.Pi, Max: math.Pi}

	case p.Amp > 0 && !p.UseMin && !p.UseMax && !p.DivideByE:
		rng.Max = p.Amp
		if !p.Mode.NonNegative() {
			rng.Min = -p.Amp
		}

	default:
		if len(g.Data) == 0 {
			return rng, fmt.Errorf("%w: empty grid", models.ErrDegenerateColorRange)
		}
		rng = models.ColorRange{Min: floats.Min(g.Data), Max: floats.Max(g.Data)}
		if p.DivideByE {
			rng.Min /= math.E
			rng.Max /= math.E
		}
	}

	if p.UseMin {
		rng.Min = p.Min
	}
	if p.UseMax {
		rng.Max = p.Max
	}

	if !(rng.Max > rng.Min) {
		return rng, fmt.Errorf("%w: min %g, max %g", models.ErrDegenerateColorRange, rng.Min, rng.Max)
	}
	return rng, nil
}

// QuantizeValue maps v to a palette index, clamping to [0, 255]. NaN maps to 0.
func QuantizeValue(v float64, rng models.ColorRange) uint8 {
	x := math.Round(255 * (v - rng.Min) / (rng.Max - rng.Min))
	switch {
	case x >= 255:
		return 255
	case x > 0:
		return uint8(x)
	default:
		return 0
	}
}

// Quantize converts g into an indexed raster. With reflect the raster is
// the transpose of g.
func Quantize(g *models.ScalarGrid, rng models.ColorRange, palette models.Palette, reflect bool, numWorkers int) (*models.Raster, error) {
	if !(rng.Max > rng.Min) {
		return nil, fmt.Errorf("%w: min %g, max %g", models.ErrDegenerateColorRange, rng.Min, rng.Max)
	}
	if len(g.Data) != g.Width*g.Height {
		return nil, fmt.Errorf("scalar grid holds %d values, expected %dx%d", len(g.Data), g.Width, g.Height)
	}

	w, h := g.Width, g.Height
	if reflect {
		w, h = h, w
	}
	out := &models.Raster{
		Width:   w,
		Height:  h,
		Indices: make([]uint8, w*h),
		Palette: palette,
	}

	err := workers.ForEachRow(h, numWorkers, func(start, end int) error {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				src := y*g.Width + x
				if reflect {
					src = x*g.Width + y
				}
				out.Indices[y*w+x] = QuantizeValue(g.Data[src], rng)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
