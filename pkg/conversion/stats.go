package conversion

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"bin2gif/internal/models"
)

// Stats summarizes the values of a scalar grid
type Stats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Describe computes the statistics reported in verbose mode. An empty grid
// yields NaN for every field.
func Describe(g *models.ScalarGrid) Stats {
	if len(g.Data) == 0 {
		nan := math.NaN()
		return Stats{Mean: nan, StdDev: nan, Min: nan, Max: nan}
	}
	mean, std := stat.MeanStdDev(g.Data, nil)
	return Stats{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(g.Data),
		Max:    floats.Max(g.Data),
	}
}
