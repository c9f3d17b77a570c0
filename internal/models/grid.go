package models

// Kind tells whether the samples of a grid are real scalars or complex pairs
type Kind int

const (
	// KindAuto asks the reader to detect the element kind from the file size
	KindAuto Kind = iota
	Real
	Complex
)

// ElementSize returns the size in bytes of one sample of this kind
func (k Kind) ElementSize() int64 {
	switch k {
	case Real:
		return 8
	case Complex:
		return 16
	default:
		return 0
	}
}

func (k Kind) String() string {
	switch k {
	case Real:
		return "double"
	case Complex:
		return "complex"
	default:
		return "auto"
	}
}

// Grid represents a rectangular block of samples read from a binary file
type Grid struct {
	// Width and Height are the dimensions in samples, row-major
	Width  int
	Height int

	// Kind selects which of the buffers below holds the data
	Kind Kind

	// Real holds the samples of a Real grid
	Real []float64

	// Complex holds the samples of a Complex grid
	Complex []complex128
}

// Len returns the number of samples held by the grid
func (g *Grid) Len() int {
	if g.Kind == Complex {
		return len(g.Complex)
	}
	return len(g.Real)
}

// AxialProfile represents samples on a radius × time grid
//
// Sample (it, ir) lives at index it*len(GridR)+ir.
type AxialProfile struct {
	GridR []float64
	GridT []float64

	Kind    Kind
	Real    []float64
	Complex []complex128
}

// NR returns the number of radius nodes
func (p *AxialProfile) NR() int { return len(p.GridR) }

// NT returns the number of time nodes
func (p *AxialProfile) NT() int { return len(p.GridT) }

// ScalarGrid is the projected, resampled form of a grid before color mapping
type ScalarGrid struct {
	Width  int
	Height int
	Data   []float64
}

// NewScalarGrid allocates a zeroed scalar grid
func NewScalarGrid(width, height int) *ScalarGrid {
	return &ScalarGrid{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
	}
}

// At returns the value at column x, row y
func (s *ScalarGrid) At(x, y int) float64 {
	return s.Data[y*s.Width+x]
}

// ColorRange holds the normalization bounds used for quantization
type ColorRange struct {
	Min float64
	Max float64
}

// Palette is a 256-entry RGB lookup table
type Palette [256][3]uint8

// Raster is the final indexed image handed to an encoder
type Raster struct {
	Width   int
	Height  int
	Indices []uint8
	Palette Palette
}

// IndexAt returns the palette index at column x, row y
func (r *Raster) IndexAt(x, y int) uint8 {
	return r.Indices[y*r.Width+x]
}
