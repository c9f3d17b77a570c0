// Package gridio reads raw binary sample grids.
//
// Square files carry width*height little-endian float64 values (real) or
// float64 pairs (complex), optionally surrounded by a header and a footer
// that are skipped. Axial files carry the radius and time grids before the
// samples, see ReadAxial.
package gridio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"bin2gif/internal/models"
)

// Options controls how a square grid file is read
type Options struct {
	// Width and Height of the grid; zero means autodetect a square grid
	Width  int
	Height int

	// Kind forces the element kind; models.KindAuto detects it
	Kind models.Kind

	// Header and Footer are byte counts skipped at both ends of the file
	Header int64
	Footer int64
}

// squareSide returns n when usable holds exactly n*n elements of size bytes
func squareSide(usable, size int64) (int64, bool) {
	if usable <= 0 {
		return 0, false
	}
	n := int64(math.Sqrt(float64(usable / size)))
	// Guard against sqrt rounding on very large files.
	for n > 0 && n*n*size > usable {
		n--
	}
	for (n+1)*(n+1)*size <= usable {
		n++
	}
	return n, n > 0 && n*n*size == usable
}

// DetectSquare determines the element kind and side length of a square grid
// that occupies exactly usable bytes. Complex is tried first.
func DetectSquare(usable int64) (models.Kind, int, error) {
	if usable <= 0 {
		return models.KindAuto, 0, fmt.Errorf("%w: %d usable bytes", models.ErrFormatUndetermined, usable)
	}
	for _, kind := range []models.Kind{models.Complex, models.Real} {
		if n, ok := squareSide(usable, kind.ElementSize()); ok {
			return kind, int(n), nil
		}
	}
	return models.KindAuto, 0, fmt.Errorf("%w: %d bytes is neither n²·16 nor n²·8", models.ErrFormatUndetermined, usable)
}

// byteSize returns width*height*size, or false when it overflows int64 or
// the platform int
func byteSize(width, height int, size int64) (int64, bool) {
	w, h := int64(width), int64(height)
	if w <= 0 || h <= 0 {
		return 0, false
	}
	if w > math.MaxInt64/size/h || w*h > math.MaxInt {
		return 0, false
	}
	return w * h * size, true
}

// resolve fills in the dimensions and kind missing from opts
func resolve(usable int64, opts Options) (models.Kind, int, int, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		if opts.Kind == models.KindAuto {
			kind, n, err := DetectSquare(usable)
			return kind, n, n, err
		}
		n, ok := squareSide(usable, opts.Kind.ElementSize())
		if !ok {
			return models.KindAuto, 0, 0, fmt.Errorf("%w: %d bytes is not a square %s grid",
				models.ErrFormatUndetermined, usable, opts.Kind)
		}
		return opts.Kind, int(n), int(n), nil
	}

	if opts.Kind != models.KindAuto {
		need, ok := byteSize(opts.Width, opts.Height, opts.Kind.ElementSize())
		if !ok {
			return models.KindAuto, 0, 0, fmt.Errorf("%w: %dx%d %s samples overflow the addressable size",
				models.ErrAllocationFailure, opts.Width, opts.Height, opts.Kind)
		}
		if usable < need {
			return models.KindAuto, 0, 0, fmt.Errorf("%w: %d bytes cannot hold %dx%d %s samples",
				models.ErrFileTooShortOrCorrupt, usable, opts.Width, opts.Height, opts.Kind)
		}
		return opts.Kind, opts.Width, opts.Height, nil
	}

	for _, kind := range []models.Kind{models.Complex, models.Real} {
		if need, ok := byteSize(opts.Width, opts.Height, kind.ElementSize()); ok && usable == need {
			return kind, opts.Width, opts.Height, nil
		}
	}
	return models.KindAuto, 0, 0, fmt.Errorf("%w: %d bytes does not hold %dx%d doubles or complex values",
		models.ErrFormatUndetermined, usable, opts.Width, opts.Height)
}

// ReadGrid reads a square grid file into a typed Grid
func ReadGrid(path string, opts Options) (*models.Grid, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot determine file size: %w", err)
	}

	usable := info.Size() - opts.Header - opts.Footer
	kind, width, height, err := resolve(usable, opts)
	if err != nil {
		return nil, err
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

	grid, err := allocGrid(kind, width, height)
	if err != nil {
		return nil, err
	}

	r := bufio.NewReaderSize(file, 1<<20)
	if err := readSamples(r, kind, grid.Real, grid.Complex); err != nil {
		return nil, err
	}
	return grid, nil
}

func allocGrid(kind models.Kind, width, height int) (grid *models.Grid, err error) {
	defer func() {
		// make panics when the length is out of range
		if recover() != nil {
			grid, err = nil, fmt.Errorf("%w: %dx%d %s samples", models.ErrAllocationFailure, width, height, kind)
		}
	}()

	grid = &models.Grid{Width: width, Height: height, Kind: kind}
	if kind == models.Complex {
		grid.Complex = make([]complex128, width*height)
	} else {
		grid.Real = make([]float64, width*height)
	}
	return grid, nil
}

// readSamples fills exactly one of re or cx from r
func readSamples(r io.Reader, kind models.Kind, re []float64, cx []complex128) error {
	var buf [16]byte
	size := int(kind.ElementSize())

	n := len(re)
	if kind == models.Complex {
		n = len(cx)
	}

	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, buf[:size]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return fmt.Errorf("%w: read %d of %d elements", models.ErrFileTooShortOrCorrupt, i, n)
			}
			return fmt.Errorf("failed to read sample %d: %w", i, err)
		}
		x := math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8]))
		if kind == models.Complex {
			y := math.Float64frombits(binary.LittleEndian.Uint64(buf[8:16]))
			cx[i] = complex(x, y)
		} else {
			re[i] = x
		}
	}
	return nil
}
