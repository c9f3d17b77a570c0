// Package conversion drives the rasterization of binary grid files into
// image files.
//
// A Converter owns one set of Params and runs each input through the same
// pipeline:
//  1. Read the square grid or axial profile
//  2. Project and downsample, or interpolate the axial profile
//  3. Resolve the color range
//  4. Quantize into a palette-indexed raster
//  5. Encode the raster next to the input file
//
// Batches run several files concurrently. A failure on one file is logged
// and counted, it never stops the rest of the batch.
package conversion

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"bin2gif/internal/models"
	"bin2gif/pkg/colormap"
	"bin2gif/pkg/config"
	"bin2gif/pkg/gridio"
	"bin2gif/pkg/projection"
	"bin2gif/pkg/resample"
	"bin2gif/pkg/visualization"
)

// Params holds the conversion parameters resolved from the configuration.
type Params struct {
	// Input describes the binary layout: size, element kind, header and footer.
	// Zero width and height select square autodetection.
	Input gridio.Options

	// Axial reads inputs as axial profiles and rasterizes the central time slice.
	Axial bool

	// AxialAll reads inputs as axial profiles and rasterizes the radius-time plane.
	// It cannot be combined with Axial.
	AxialAll bool

	// Mode is the complex to real projection applied to every sample.
	Mode projection.Mode

	// ResizeWidth and ResizeHeight give the output size; zero keeps the
	// natural size of the input.
	ResizeWidth  int
	ResizeHeight int

	// Range selects how the color scale bounds are chosen.
	Range colormap.RangePolicy

	// Reflect swaps the x and y axes of the produced image.
	Reflect bool

	// Palette is the color table shared by every output image.
	Palette models.Palette

	// Format is the output image format: gif, png or bmp.
	Format string

	// NumCores bounds both the number of files converted at once and the
	// number of goroutines used per file.
	NumCores int

	// Force rewrites images that already exist.
	Force bool

	// DeleteOriginal removes each input after its image was written.
	DeleteOriginal bool

	// Verbose reports per-file statistics; Debug also reports the detected
	// layout of every input.
	Verbose bool
	Debug   bool
}

// NewParams resolves cfg into conversion parameters, loading the palette
// file if one is configured.
func NewParams(cfg *config.Config) (*Params, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kind, err := config.ParseKind(cfg.Input.Type)
	if err != nil {
		return nil, err
	}
	mode, err := projection.ParseMode(cfg.Output.Func)
	if err != nil {
		return nil, err
	}
	palette, err := colormap.LoadPalette(cfg.Output.Palette)
	if err != nil {
		return nil, err
	}

	return &Params{
		Input: gridio.Options{
			Width:  cfg.Input.Width,
			Height: cfg.Input.Height,
			Kind:   kind,
			Header: cfg.Input.Header,
			Footer: cfg.Input.Footer,
		},
		Axial:        cfg.Input.Axial,
		AxialAll:     cfg.Input.AxialAll,
		Mode:         mode,
		ResizeWidth:  max(cfg.Output.Width, 0),
		ResizeHeight: max(cfg.Output.Height, 0),
		Range: colormap.RangePolicy{
			Mode:      mode,
			Amp:       cfg.Output.Amp,
			Min:       cfg.Output.Min,
			Max:       cfg.Output.Max,
			UseMin:    cfg.Output.UseMin,
			UseMax:    cfg.Output.UseMax,
			DivideByE: cfg.Output.DivideByE,
		},
		Reflect:        cfg.Output.Reflect,
		Palette:        palette,
		Format:         cfg.Output.Format,
		NumCores:       cfg.Processing.NumCores,
		Force:          cfg.Output.Force,
		DeleteOriginal: cfg.Output.DeleteOriginal,
		Verbose:        cfg.Output.Verbose || cfg.Output.Debug,
		Debug:          cfg.Output.Debug,
	}, nil
}

// Converter turns binary grid files into images
type Converter struct {
	params *Params
	logger *log.Logger
}

// NewConverter creates a converter that logs through the standard logger
func NewConverter(params *Params) *Converter {
	return &Converter{
		params: params,
		logger: log.Default(),
	}
}

// SetLogger redirects progress and warning output
func (c *Converter) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// OutputPath returns the image path for input: the input path without its
// extension, followed by _<func>.<format>.
func (c *Converter) OutputPath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return fmt.Sprintf("%s_%s.%s", base, c.params.Mode, c.params.Format)
}

// Convert reads one file and produces its raster without writing anything
func (c *Converter) Convert(path string) (*models.Raster, error) {
	p := c.params
	if p.Axial && p.AxialAll {
		return nil, fmt.Errorf("%w: axial and axial-all requested together", models.ErrConflictingAxialModes)
	}

	scalar, err := c.scalarGrid(path)
	if err != nil {
		return nil, err
	}

	policy := p.Range
	policy.Mode = p.Mode
	rng, err := colormap.ResolveRange(scalar, policy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if p.Verbose {
		stats := Describe(scalar)
		c.logger.Printf("  %s: %dx%d, mean %.6g, stddev %.6g, data [%.6g, %.6g], color scale [%.6g, %.6g]",
			filepath.Base(path), scalar.Width, scalar.Height, stats.Mean, stats.StdDev, stats.Min, stats.Max, rng.Min, rng.Max)
	}

	raster, err := colormap.Quantize(scalar, rng, p.Palette, p.Reflect, p.NumCores)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return raster, nil
}

// scalarGrid reads path and reduces it to the scalar grid that gets colored
func (c *Converter) scalarGrid(path string) (*models.ScalarGrid, error) {
	p := c.params

	if p.Axial || p.AxialAll {
		profile, err := gridio.ReadAxial(path, gridio.AxialOptions{
			Kind:   p.Input.Kind,
			Header: p.Input.Header,
			Footer: p.Input.Footer,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if p.Debug {
			c.logger.Printf("  %s: axial %s profile, nr=%d, nt=%d", filepath.Base(path), profile.Kind, profile.NR(), profile.NT())
		}

		var scalar *models.ScalarGrid
		if p.AxialAll {
			scalar, err = resample.ResamplePlane(profile, p.Mode, p.ResizeWidth, p.ResizeHeight, p.NumCores)
		} else {
			scalar, err = resample.ResampleSlice(profile, p.Mode, p.ResizeWidth, p.NumCores)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return scalar, nil
	}

	grid, err := gridio.ReadGrid(path, p.Input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.Debug {
		c.logger.Printf("  %s: %s grid %dx%d", filepath.Base(path), grid.Kind, grid.Width, grid.Height)
	}

	scalar, err := resample.Downsample(grid, p.Mode, p.ResizeWidth, p.ResizeHeight, p.NumCores)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scalar, nil
}

// isImageName reports whether the file name already carries an output
// image extension
func isImageName(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, format := range config.Formats {
		if strings.Contains(name, "."+format) {
			return true
		}
	}
	return false
}

// Process converts a single input and writes its image. Directories, image
// files and inputs whose image already exists (unless Force) are skipped.
func (c *Converter) Process(path string) Result {
	p := c.params
	result := Result{Input: path}

	info, err := os.Stat(path)
	if err != nil {
		return c.fail(result, fmt.Errorf("cannot access input: %w", err))
	}
	if info.IsDir() {
		return c.skip(result, "directory")
	}
	if isImageName(path) {
		return c.skip(result, "image file")
	}

	result.Output = c.OutputPath(path)
	if _, err := os.Stat(result.Output); err == nil && !p.Force {
		return c.skip(result, "output already exists")
	}

	raster, err := c.Convert(path)
	if err != nil {
		return c.fail(result, err)
	}
	if err := visualization.Save(result.Output, raster, p.Format); err != nil {
		return c.fail(result, fmt.Errorf("failed to write %s: %w", result.Output, err))
	}

	result.Status = Converted
	c.logger.Printf("File %s -> %s", path, result.Output)

	if p.DeleteOriginal {
		if err := os.Remove(path); err != nil {
			c.logger.Printf("Warning: failed to delete original %s: %v", path, err)
		}
	}
	return result
}

func (c *Converter) skip(result Result, reason string) Result {
	result.Status = Skipped
	result.Reason = reason
	if c.params.Verbose {
		c.logger.Printf("File %s: skipped (%s)", result.Input, reason)
	}
	return result
}

func (c *Converter) fail(result Result, err error) Result {
	result.Status = Failed
	result.Err = err
	c.logger.Printf("Warning: failed to convert %s: %v", result.Input, err)
	return result
}
