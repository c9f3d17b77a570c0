// Package projection reduces complex or real samples to a single scalar.
package projection

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"bin2gif/internal/models"
)

// Mode selects the complex to real conversion function
type Mode int

const (
	// Abs is the amplitude |z|
	Abs Mode = iota
	// Norm is the squared amplitude |z|²
	Norm
	// Real is Re(z)
	Real
	// Imag is Im(z)
	Imag
	// Arg is the phase angle atan2(Im, Re) in (-π, π]
	Arg
)

var modeNames = map[Mode]string{
	Abs:  "abs",
	Norm: "norm",
	Real: "real",
	Imag: "imag",
	Arg:  "arg",
}

// String returns the short name used in output file names
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// NonNegative reports whether the mode never produces negative values
func (m Mode) NonNegative() bool {
	return m == Abs || m == Norm
}

// ParseMode converts a function name into a Mode
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "abs", "amplitude", "a":
		return Abs, nil
	case "norm", "squared_amplitude", "n":
		return Norm, nil
	case "real", "r":
		return Real, nil
	case "imag", "i":
		return Imag, nil
	case "arg", "phase", "p":
		return Arg, nil
	}
	return 0, fmt.Errorf("%w: %q", models.ErrUnknownProjection, name)
}

// Project maps a complex sample to a scalar
func Project(mode Mode, z complex128) float64 {
	switch mode {
	case Abs:
		return cmplx.Abs(z)
	case Norm:
		re, im := real(z), imag(z)
		return re*re + im*im
	case Imag:
		return imag(z)
	case Arg:
		// A negative zero imaginary part yields -π; fold it onto π.
		// NaN stays NaN.
		if phase := cmplx.Phase(z); phase > -math.Pi || math.IsNaN(phase) {
			return phase
		}
		return math.Pi
	default:
		return real(z)
	}
}

// ProjectReal maps a real sample to a scalar, treating it as a complex
// number with zero imaginary part.
func ProjectReal(mode Mode, x float64) float64 {
	switch mode {
	case Abs:
		return math.Abs(x)
	case Norm:
		return x * x
	case Imag:
		return 0
	case Arg:
		if math.IsNaN(x) {
			return x
		}
		if x < 0 {
			return math.Pi
		}
		return 0
	default:
		return x
	}
}

// Sampler returns a function projecting sample i of the grid
func Sampler(mode Mode, g *models.Grid) func(i int) float64 {
	if g.Kind == models.Complex {
		data := g.Complex
		return func(i int) float64 { return Project(mode, data[i]) }
	}
	data := g.Real
	return func(i int) float64 { return ProjectReal(mode, data[i]) }
}
