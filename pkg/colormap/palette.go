// Package colormap maps scalar grids to palette indices.
//
// A palette is a 256-entry RGB table, either the grayscale ramp or a
// piecewise-linear blend between user control points. The color range
// used for quantization is resolved from a RangePolicy.
package colormap

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/interp"

	"bin2gif/internal/models"
)

// ControlPoint is one palette file entry
type ControlPoint struct {
	Index   float64
	R, G, B float64
}

// Grayscale returns the identity ramp (i, i, i)
func Grayscale() models.Palette {
	var p models.Palette
	for i := range p {
		v := uint8(i)
		p[i] = [3]uint8{v, v, v}
	}
	return p
}

// BuildPalette interpolates a palette between control points. Indices are
// rescaled linearly onto [0, 255]; entries sharing an index keep the last
// one. With fewer than two distinct indices the grayscale ramp is returned.
func BuildPalette(points []ControlPoint) models.Palette {
	if len(points) < 2 {
		return Grayscale()
	}

	sorted := make([]ControlPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	lo, hi := sorted[0].Index, sorted[len(sorted)-1].Index
	if !(hi > lo) {
		return Grayscale()
	}

	xs := make([]float64, 0, len(sorted))
	channels := [3][]float64{}
	for _, cp := range sorted {
		x := (cp.Index - lo) / (hi - lo) * 255
		rgb := [3]float64{cp.R, cp.G, cp.B}
		if n := len(xs); n > 0 && xs[n-1] == x {
			for c := range channels {
				channels[c][n-1] = rgb[c]
			}
			continue
		}
		xs = append(xs, x)
		for c := range channels {
			channels[c] = append(channels[c], rgb[c])
		}
	}

	var fits [3]interp.PiecewiseLinear
	for c := range fits {
		if err := fits[c].Fit(xs, channels[c]); err != nil {
			// xs is strictly increasing by construction
			return Grayscale()
		}
	}

	var p models.Palette
	for i := range p {
		for c := range fits {
			p[i][c] = clampByte(fits[c].Predict(float64(i)))
		}
	}
	return p
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// ParsePalette reads whitespace separated "index red green blue" lines.
// Blank lines and lines starting with # are ignored.
func ParsePalette(r io.Reader) ([]ControlPoint, error) {
	var points []ControlPoint
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 4 {
			return nil, fmt.Errorf("palette line %d: expected 4 values, got %d", line, len(fields))
		}
		var v [4]float64
		for i, f := range fields {
			x, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("palette line %d: %w", line, err)
			}
			v[i] = x
		}
		points = append(points, ControlPoint{Index: v[0], R: v[1], G: v[2], B: v[3]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading palette: %w", err)
	}
	return points, nil
}

// LoadPalette builds the palette described by a palette file. An empty
// path yields the grayscale ramp.
func LoadPalette(path string) (models.Palette, error) {
	if path == "" {
		return Grayscale(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return models.Palette{}, fmt.Errorf("cannot open palette file: %w", err)
	}
	defer file.Close()

	points, err := ParsePalette(file)
	if err != nil {
		return models.Palette{}, err
	}
	return BuildPalette(points), nil
}
