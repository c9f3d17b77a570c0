package gridio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"bin2gif/internal/models"
)

// maxAxialNodes bounds nr and nt so a corrupt count cannot request an
// absurd allocation before the size check runs.
const maxAxialNodes = 1 << 26

// AxialOptions controls how an axial profile file is read
type AxialOptions struct {
	Kind   models.Kind
	Header int64
	Footer int64
}

// ReadAxial reads an axial profile file laid out as
//
//	int32 nr, float64[nr] grid_r, int32 nt, float64[nt] grid_t, samples[nr*nt]
//
// with samples stored time-major. The element kind is detected from the
// number of bytes left after the grids unless opts.Kind forces it.
func ReadAxial(path string, opts AxialOptions) (*models.AxialProfile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot determine file size: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open input file %s for reading: %w", path, err)
	}
	defer file.Close()

	if opts.Header > 0 {
		if _, err := file.Seek(opts.Header, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to skip header: %w", err)
		}
	}
	r := bufio.NewReader(file)
	remaining := info.Size() - opts.Header - opts.Footer

	gridR, err := readAxisGrid(r, "radius", &remaining)
	if err != nil {
		return nil, err
	}
	gridT, err := readAxisGrid(r, "time", &remaining)
	if err != nil {
		return nil, err
	}
	if err := validateAxes(gridR, gridT); err != nil {
		return nil, err
	}

	count := int64(len(gridR)) * int64(len(gridT))

	kind := opts.Kind
	if kind == models.KindAuto {
		switch remaining {
		case count * models.Complex.ElementSize():
			kind = models.Complex
		case count * models.Real.ElementSize():
			kind = models.Real
		default:
			return nil, fmt.Errorf("%w: %d bytes left for %d samples", models.ErrUnsupportedAxialElementType, remaining, count)
		}
	}
	if remaining < count*kind.ElementSize() {
		return nil, fmt.Errorf("%w: %d bytes left for %d %s samples", models.ErrFileTooShortOrCorrupt, remaining, count, kind)
	}

	profile := &models.AxialProfile{GridR: gridR, GridT: gridT, Kind: kind}
	if kind == models.Complex {
		profile.Complex = make([]complex128, count)
	} else {
		profile.Real = make([]float64, count)
	}
	if err := readSamples(r, kind, profile.Real, profile.Complex); err != nil {
		return nil, err
	}
	return profile, nil
}

// readAxisGrid reads an int32 node count followed by that many float64
// values. remaining tracks the unread payload bytes; a count the file
// cannot hold fails before anything is allocated.
func readAxisGrid(r io.Reader, name string, remaining *int64) ([]float64, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, shortRead(err, fmt.Sprintf("%s node count", name))
	}
	*remaining -= 4
	if n < 1 || n > maxAxialNodes {
		return nil, fmt.Errorf("%w: %s node count %d", models.ErrInvalidAxialProfile, name, n)
	}
	if size := 8 * int64(n); size > *remaining {
		return nil, fmt.Errorf("%w: %s grid of %d nodes exceeds the %d bytes left", models.ErrFileTooShortOrCorrupt, name, n, *remaining)
	}
	*remaining -= 8 * int64(n)
	grid := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, grid); err != nil {
		return nil, shortRead(err, fmt.Sprintf("%s grid", name))
	}
	return grid, nil
}

func shortRead(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated %s", models.ErrFileTooShortOrCorrupt, what)
	}
	return fmt.Errorf("failed to read %s: %w", what, err)
}

// validateAxes checks both grids are strictly increasing and nr >= 2
func validateAxes(gridR, gridT []float64) error {
	if len(gridR) < 2 {
		return fmt.Errorf("%w: need at least 2 radius nodes, got %d", models.ErrInvalidAxialProfile, len(gridR))
	}
	for name, grid := range map[string][]float64{"radius": gridR, "time": gridT} {
		for i := 1; i < len(grid); i++ {
			if !(grid[i] > grid[i-1]) {
				return fmt.Errorf("%w: %s grid not increasing at node %d", models.ErrInvalidAxialProfile, name, i)
			}
		}
	}
	return nil
}

// WriteAxial writes a profile in the layout ReadAxial expects
func WriteAxial(w io.Writer, p *models.AxialProfile) error {
	bw := bufio.NewWriter(w)
	for _, grid := range [][]float64{p.GridR, p.GridT} {
		if err := binary.Write(bw, binary.LittleEndian, int32(len(grid))); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, grid); err != nil {
			return err
		}
	}
	if err := writeSamples(bw, p.Kind, p.Real, p.Complex); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteGrid writes the raw samples of a grid with no header
func WriteGrid(w io.Writer, g *models.Grid) error {
	bw := bufio.NewWriter(w)
	if err := writeSamples(bw, g.Kind, g.Real, g.Complex); err != nil {
		return err
	}
	return bw.Flush()
}

func writeSamples(w io.Writer, kind models.Kind, re []float64, cx []complex128) error {
	if kind == models.Complex {
		return binary.Write(w, binary.LittleEndian, cx)
	}
	return binary.Write(w, binary.LittleEndian, re)
}
