// Package resample turns typed sample grids into scalar grids of the
// requested output size, either by block averaging square grids or by
// interpolating axial profiles onto a Cartesian raster.
package resample

import (
	"fmt"

	"bin2gif/internal/models"
	"bin2gif/internal/workers"
	"bin2gif/pkg/projection"
)

// Factors returns the output size and the block size used to reduce a
// binW×binH grid to toW×toH. Unset or oversized targets fall back to the
// source size. Remainder rows and columns are dropped.
func Factors(binW, binH, toW, toH int) (outW, outH, fx, fy int) {
	outW, outH = toW, toH
	if outW <= 0 || outW > binW {
		outW = binW
	}
	if outH <= 0 || outH > binH {
		outH = binH
	}
	return outW, outH, binW / outW, binH / outH
}

// Downsample projects every sample of g with mode and averages fx×fy blocks
// into a toW×toH scalar grid.
func Downsample(g *models.Grid, mode projection.Mode, toW, toH, numWorkers int) (*models.ScalarGrid, error) {
	if g.Width <= 0 || g.Height <= 0 {
		return nil, fmt.Errorf("empty grid %dx%d", g.Width, g.Height)
	}
	if g.Len() != g.Width*g.Height {
		return nil, fmt.Errorf("grid holds %d samples, expected %dx%d", g.Len(), g.Width, g.Height)
	}

	outW, outH, fx, fy := Factors(g.Width, g.Height, toW, toH)
	out := models.NewScalarGrid(outW, outH)
	sample := projection.Sampler(mode, g)
	n := float64(fx * fy)
	binW := g.Width

	err := workers.ForEachRow(outH, numWorkers, func(start, end int) error {
		for j := start; j < end; j++ {
			for i := 0; i < outW; i++ {
				base := (j*fy)*binW + i*fx
				// Accumulate deviations from the first sample so constant
				// blocks average to exactly that constant.
				ref := sample(base)
				acc := 0.0
				for yy := 0; yy < fy; yy++ {
					row := base + yy*binW
					for xx := 0; xx < fx; xx++ {
						acc += sample(row+xx) - ref
					}
				}
				out.Data[j*outW+i] = ref + acc/n
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
