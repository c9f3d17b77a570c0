package gridio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bin2gif/internal/models"
)

// writeFile writes raw bytes into a temporary file and returns its path
func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func encodeGrid(t *testing.T, g *models.Grid) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteGrid(&buf, g); err != nil {
		t.Fatalf("Failed to encode grid: %v", err)
	}
	return buf.Bytes()
}

func TestDetectSquare(t *testing.T) {
	for _, n := range []int64{1, 2, 3, 17, 512, 1024} {
		kind, side, err := DetectSquare(n * n * 16)
		if err != nil {
			t.Fatalf("DetectSquare(%d²·16) returned error: %v", n, err)
		}
		if kind != models.Complex || int64(side) != n {
			t.Errorf("Expected complex side %d, got %v side %d", n, kind, side)
		}
	}

	// 3²·8 = 72 is not n²·16 for any n
	kind, side, err := DetectSquare(3 * 3 * 8)
	if err != nil {
		t.Fatalf("DetectSquare(72) returned error: %v", err)
	}
	if kind != models.Real || side != 3 {
		t.Errorf("Expected real side 3, got %v side %d", kind, side)
	}

	for _, usable := range []int64{0, -8, 7, 100, 3*3*8 + 1} {
		if _, _, err := DetectSquare(usable); !errors.Is(err, models.ErrFormatUndetermined) {
			t.Errorf("DetectSquare(%d): expected ErrFormatUndetermined, got %v", usable, err)
		}
	}
}

func TestReadGridAutodetectReal(t *testing.T) {
	g := &models.Grid{Width: 3, Height: 3, Kind: models.Real, Real: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}}
	path := writeFile(t, "grid.dbl", encodeGrid(t, g))

	got, err := ReadGrid(path, Options{})
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}
	if diff := cmp.Diff(g, got); diff != "" {
		t.Errorf("Grid mismatch (-want +got):\n%s", diff)
	}
}

func TestReadGridHeaderFooter(t *testing.T) {
	g := &models.Grid{Width: 2, Height: 2, Kind: models.Complex, Complex: []complex128{1 + 1i, 2, 3i, -4 - 4i}}
	data := append([]byte("HEADER!!"), encodeGrid(t, g)...)
	data = append(data, []byte("FOOT")...)
	path := writeFile(t, "grid.cpl", data)

	got, err := ReadGrid(path, Options{Header: 8, Footer: 4})
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}
	if diff := cmp.Diff(g, got); diff != "" {
		t.Errorf("Grid mismatch (-want +got):\n%s", diff)
	}

	// Without skipping, 76 bytes match neither layout
	if _, err := ReadGrid(path, Options{}); !errors.Is(err, models.ErrFormatUndetermined) {
		t.Errorf("Expected ErrFormatUndetermined, got %v", err)
	}
}

func TestReadGridExplicitSize(t *testing.T) {
	g := &models.Grid{Width: 4, Height: 2, Kind: models.Real, Real: []float64{0, 1, 2, 3, 4, 5, 6, 7}}
	path := writeFile(t, "rect.dbl", encodeGrid(t, g))

	got, err := ReadGrid(path, Options{Width: 4, Height: 2})
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}
	if diff := cmp.Diff(g, got); diff != "" {
		t.Errorf("Grid mismatch (-want +got):\n%s", diff)
	}

	if _, err := ReadGrid(path, Options{Width: 3, Height: 3}); !errors.Is(err, models.ErrFormatUndetermined) {
		t.Errorf("Expected ErrFormatUndetermined, got %v", err)
	}
}

func TestReadGridTruncated(t *testing.T) {
	g := &models.Grid{Width: 2, Height: 2, Kind: models.Real, Real: []float64{1, 2, 3, 4}}
	path := writeFile(t, "short.dbl", encodeGrid(t, g))

	_, err := ReadGrid(path, Options{Width: 4, Height: 4, Kind: models.Real})
	if !errors.Is(err, models.ErrFileTooShortOrCorrupt) {
		t.Errorf("Expected ErrFileTooShortOrCorrupt, got %v", err)
	}
}

// TestReadGridExplicitSizeTinyFile checks that a size the file cannot hold
// fails before the sample buffer is allocated
func TestReadGridExplicitSizeTinyFile(t *testing.T) {
	path := writeFile(t, "tiny.cpl", make([]byte, 64))

	_, err := ReadGrid(path, Options{Width: 1 << 19, Height: 1 << 19, Kind: models.Complex})
	if !errors.Is(err, models.ErrFileTooShortOrCorrupt) {
		t.Errorf("Expected ErrFileTooShortOrCorrupt, got %v", err)
	}

	// A header larger than the file leaves nothing to read
	_, err = ReadGrid(path, Options{Width: 1, Height: 1, Kind: models.Real, Header: 128})
	if !errors.Is(err, models.ErrFileTooShortOrCorrupt) {
		t.Errorf("Expected ErrFileTooShortOrCorrupt with oversized header, got %v", err)
	}
}

func TestReadGridExplicitSizeOverflow(t *testing.T) {
	path := writeFile(t, "tiny.cpl", make([]byte, 64))

	_, err := ReadGrid(path, Options{Width: math.MaxInt32, Height: math.MaxInt32, Kind: models.Complex})
	if !errors.Is(err, models.ErrAllocationFailure) {
		t.Errorf("Expected ErrAllocationFailure, got %v", err)
	}

	// With auto kind the oversized request is simply not an exact match
	_, err = ReadGrid(path, Options{Width: math.MaxInt32, Height: math.MaxInt32})
	if !errors.Is(err, models.ErrFormatUndetermined) {
		t.Errorf("Expected ErrFormatUndetermined, got %v", err)
	}
}

func TestReadGridMissingFile(t *testing.T) {
	if _, err := ReadGrid(filepath.Join(t.TempDir(), "missing.dbl"), Options{}); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestReadAxialRoundTrip(t *testing.T) {
	want := &models.AxialProfile{
		GridR: []float64{0, 1, 2},
		GridT: []float64{0},
		Kind:  models.Real,
		Real:  []float64{0, 1, 0},
	}
	var buf bytes.Buffer
	if err := WriteAxial(&buf, want); err != nil {
		t.Fatalf("WriteAxial failed: %v", err)
	}
	path := writeFile(t, "tri.adbl", buf.Bytes())

	got, err := ReadAxial(path, AxialOptions{})
	if err != nil {
		t.Fatalf("ReadAxial failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Profile mismatch (-want +got):\n%s", diff)
	}
}

func TestReadAxialComplex(t *testing.T) {
	want := &models.AxialProfile{
		GridR:   []float64{0, 0.5, 1.5},
		GridT:   []float64{-1, 0, 1},
		Kind:    models.Complex,
		Complex: make([]complex128, 9),
	}
	for i := range want.Complex {
		want.Complex[i] = complex(float64(i), -float64(i))
	}
	var buf bytes.Buffer
	if err := WriteAxial(&buf, want); err != nil {
		t.Fatalf("WriteAxial failed: %v", err)
	}
	path := writeFile(t, "surface.acpl", buf.Bytes())

	got, err := ReadAxial(path, AxialOptions{})
	if err != nil {
		t.Fatalf("ReadAxial failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Profile mismatch (-want +got):\n%s", diff)
	}
}

func TestReadAxialErrors(t *testing.T) {
	valid := &models.AxialProfile{
		GridR: []float64{0, 1, 2},
		GridT: []float64{0},
		Kind:  models.Real,
		Real:  []float64{0, 1, 0},
	}
	var buf bytes.Buffer
	if err := WriteAxial(&buf, valid); err != nil {
		t.Fatalf("WriteAxial failed: %v", err)
	}
	data := buf.Bytes()

	// One extra byte after the samples matches neither element size
	odd := writeFile(t, "odd.adbl", append(append([]byte{}, data...), 0))
	if _, err := ReadAxial(odd, AxialOptions{}); !errors.Is(err, models.ErrUnsupportedAxialElementType) {
		t.Errorf("Expected ErrUnsupportedAxialElementType, got %v", err)
	}

	// Cut inside the radius grid
	cut := writeFile(t, "cut.adbl", data[:12])
	if _, err := ReadAxial(cut, AxialOptions{}); !errors.Is(err, models.ErrFileTooShortOrCorrupt) {
		t.Errorf("Expected ErrFileTooShortOrCorrupt, got %v", err)
	}

	// Forced complex on real data runs out of samples
	forced := writeFile(t, "forced.adbl", data)
	if _, err := ReadAxial(forced, AxialOptions{Kind: models.Complex}); !errors.Is(err, models.ErrFileTooShortOrCorrupt) {
		t.Errorf("Expected ErrFileTooShortOrCorrupt, got %v", err)
	}

	// A node count far beyond the file size fails before allocation
	huge := append([]byte{}, data...)
	binary.LittleEndian.PutUint32(huge[0:4], 1<<25)
	if _, err := ReadAxial(writeFile(t, "huge.adbl", huge), AxialOptions{}); !errors.Is(err, models.ErrFileTooShortOrCorrupt) {
		t.Errorf("Expected ErrFileTooShortOrCorrupt for oversized node count, got %v", err)
	}

	single := &models.AxialProfile{GridR: []float64{0}, GridT: []float64{0}, Kind: models.Real, Real: []float64{1}}
	buf.Reset()
	if err := WriteAxial(&buf, single); err != nil {
		t.Fatalf("WriteAxial failed: %v", err)
	}
	one := writeFile(t, "one.adbl", buf.Bytes())
	if _, err := ReadAxial(one, AxialOptions{}); !errors.Is(err, models.ErrInvalidAxialProfile) {
		t.Errorf("Expected ErrInvalidAxialProfile, got %v", err)
	}

	unsorted := &models.AxialProfile{GridR: []float64{0, 2, 1}, GridT: []float64{0}, Kind: models.Real, Real: []float64{1, 1, 1}}
	buf.Reset()
	if err := WriteAxial(&buf, unsorted); err != nil {
		t.Fatalf("WriteAxial failed: %v", err)
	}
	bad := writeFile(t, "unsorted.adbl", buf.Bytes())
	if _, err := ReadAxial(bad, AxialOptions{}); !errors.Is(err, models.ErrInvalidAxialProfile) {
		t.Errorf("Expected ErrInvalidAxialProfile, got %v", err)
	}
}
