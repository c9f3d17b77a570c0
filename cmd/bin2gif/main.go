package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"bin2gif/pkg/config"
	"bin2gif/pkg/conversion"
)

const version = "0.5.0"

// options holds the command line flags
type options struct {
	fs *flag.FlagSet

	configPath string
	saveConfig string

	size, width, height int
	resize              int
	dataType            string
	function            string
	amp                 float64
	minValue, maxValue  float64
	divideByE           bool
	reflect             bool
	palette             string
	header, footer      int64
	axial, axialAll     bool
	format              string
	numCores            int
	deleteOriginal      bool
	force               bool
	verbose, debug      bool
	showVersion         bool
}

func newOptions(name string) *options {
	o := &options{fs: flag.NewFlagSet(name, flag.ExitOnError)}
	fs := o.fs

	fs.StringVar(&o.configPath, "config", "", "YAML configuration file; flags override its values")
	fs.StringVar(&o.saveConfig, "save-config", "", "Write the effective configuration to this file and exit")

	fs.IntVar(&o.size, "size", 0, "Dimensions of the square grid stored in the binary file (0: autodetect)")
	fs.IntVar(&o.size, "s", 0, "Shorthand for -size")
	fs.IntVar(&o.width, "width", 0, "Width of a non-square grid, overrides -size")
	fs.IntVar(&o.height, "height", 0, "Height of a non-square grid, overrides -size")
	fs.IntVar(&o.resize, "resize", 0, "Dimensions of the produced image (0: no resize)")
	fs.StringVar(&o.dataType, "type", "", "Type of binary data: double|d|complex|c (default: autodetect)")
	fs.StringVar(&o.function, "func", "real", "Complex to real conversion: abs|norm|real|imag|arg")
	fs.Float64Var(&o.amp, "amp", -1, "Color scale amplitude")
	fs.Float64Var(&o.minValue, "min", 0, "Color scale minimum")
	fs.Float64Var(&o.maxValue, "max", 0, "Color scale maximum")
	fs.BoolVar(&o.divideByE, "divide-by-e", false, "Divide the data range by e")
	fs.BoolVar(&o.reflect, "reflect", false, "Reflect the image, swapping x and y")
	fs.StringVar(&o.palette, "palette", "", "Color palette file (default: grayscale)")
	fs.Int64Var(&o.header, "header", 0, "Size of the file header in bytes")
	fs.Int64Var(&o.footer, "footer", 0, "Size of the file footer in bytes")
	fs.BoolVar(&o.axial, "axial", false, "Input is an axial profile; draw its central time slice")
	fs.BoolVar(&o.axialAll, "axial-all", false, "Input is an axial profile; draw the whole radius-time plane")
	fs.StringVar(&o.format, "format", "gif", "Output image format: gif|png|bmp")
	fs.IntVar(&o.numCores, "cores", 0, "Number of CPU cores to use (default: all available)")
	fs.BoolVar(&o.deleteOriginal, "delete-original", false, "Delete each original file after conversion")
	fs.BoolVar(&o.force, "force", false, "Rewrite existing images")
	fs.BoolVar(&o.verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&o.debug, "debug", false, "Debug output")
	fs.BoolVar(&o.showVersion, "version", false, "Display program version")
	fs.Usage = o.usage
	return o
}

func (o *options) usage() {
	name := o.fs.Name()
	out := o.fs.Output()
	fmt.Fprintf(out, "Usage: %s [options] <filename|dirname|pattern>...\n", name)
	fmt.Fprintln(out, "Convert binary 2D double or complex data files into GIF, PNG or BMP images.")
	fmt.Fprintln(out, "\nOptions:")
	o.fs.PrintDefaults()
	fmt.Fprintln(out, "\nExamples:")
	fmt.Fprintf(out, "  %s ~/results/today/*.cpl\n", name)
	fmt.Fprintf(out, "  %s -header 8 ~/results/today/ ~/results/tomorrow/file.ext\n", name)
	fmt.Fprintf(out, "  %s -save-config bin2gif.yaml\n", name)
}

// explicit returns the names of the flags given on the command line
func (o *options) explicit() map[string]bool {
	set := make(map[string]bool)
	o.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// apply overlays the explicit flags on cfg. -width and -height win over
// -size whatever their order on the command line.
func (o *options) apply(cfg *config.Config) {
	set := o.explicit()

	if set["size"] || set["s"] {
		cfg.Input.Width, cfg.Input.Height = o.size, o.size
	}
	if set["width"] {
		cfg.Input.Width = o.width
	}
	if set["height"] {
		cfg.Input.Height = o.height
	}

	for name := range set {
		switch name {
		case "resize":
			cfg.Output.Width, cfg.Output.Height = o.resize, o.resize
		case "type":
			cfg.Input.Type = o.dataType
		case "func":
			cfg.Output.Func = o.function
		case "amp":
			cfg.Output.Amp = o.amp
		case "min":
			cfg.Output.Min, cfg.Output.UseMin = o.minValue, true
		case "max":
			cfg.Output.Max, cfg.Output.UseMax = o.maxValue, true
		case "divide-by-e":
			cfg.Output.DivideByE = o.divideByE
		case "reflect":
			cfg.Output.Reflect = o.reflect
		case "palette":
			cfg.Output.Palette = o.palette
		case "header":
			cfg.Input.Header = o.header
		case "footer":
			cfg.Input.Footer = o.footer
		case "axial":
			cfg.Input.Axial = o.axial
		case "axial-all":
			cfg.Input.AxialAll = o.axialAll
		case "format":
			cfg.Output.Format = o.format
		case "cores":
			cfg.Processing.NumCores = o.numCores
		case "delete-original":
			cfg.Output.DeleteOriginal = o.deleteOriginal
		case "force":
			cfg.Output.Force = o.force
		case "verbose":
			cfg.Output.Verbose = o.verbose
		case "debug":
			cfg.Output.Debug = o.debug
		}
	}
}

// load builds the effective configuration: defaults or the -config file,
// then the explicit flags
func (o *options) load() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	o.apply(cfg)
	return cfg, nil
}

// writeConfig stores the configuration named by -save-config. With no other
// flag it writes the defaults.
func (o *options) writeConfig(cfg *config.Config) error {
	set := o.explicit()
	if len(set) == 1 && set["save-config"] {
		return config.CreateDefaultConfigFile(o.saveConfig)
	}
	return config.SaveConfig(cfg, o.saveConfig)
}

func main() {
	// Parse command line arguments
	opts := newOptions(filepath.Base(os.Args[0]))
	opts.fs.Parse(os.Args[1:])

	if opts.showVersion {
		fmt.Printf("%s version %s\n", opts.fs.Name(), version)
		return
	}

	log.SetFlags(0)

	// Explicit flags override the configuration file
	cfg, err := opts.load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if opts.saveConfig != "" {
		if err := opts.writeConfig(cfg); err != nil {
			log.Fatalf("Failed to save configuration: %v", err)
		}
		fmt.Printf("Configuration saved to: %s\n", opts.saveConfig)
		return
	}

	if opts.fs.NArg() == 0 {
		opts.fs.Usage()
		os.Exit(1)
	}

	// Conflicting modes and bad values stop here, before any file is read
	params, err := conversion.NewParams(cfg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if params.DeleteOriginal {
		params.DeleteOriginal = confirmDeletion()
	}

	paths, err := conversion.ExpandPatterns(opts.fs.Args())
	if err != nil {
		log.Fatalf("Failed to expand inputs: %v", err)
	}

	if params.Debug {
		fmt.Printf("Header: %d\n", params.Input.Header)
		fmt.Printf("Footer: %d\n", params.Input.Footer)
		fmt.Printf("Function: %s, format: %s, cores: %d\n", params.Mode, params.Format, params.NumCores)
		fmt.Println("Files to process:")
		for _, path := range paths {
			fmt.Printf("\t%s\n", path)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	converter := conversion.NewConverter(params)

	startTime := time.Now()
	summary, err := converter.ConvertAll(ctx, paths)
	processingTime := time.Since(startTime)
	if err != nil {
		log.Printf("Warning: conversion interrupted: %v", err)
	}

	fmt.Printf("\nConverted %d, skipped %d, failed %d of %d inputs in %.2f seconds\n",
		summary.Converted, summary.Skipped, summary.Failed, len(paths), processingTime.Seconds())

	if summary.AllFailed() {
		os.Exit(1)
	}
}

// confirmDeletion asks before originals are removed; anything but y or Y
// keeps them
func confirmDeletion() bool {
	fmt.Print("Are you sure to delete original binary files after conversion [y/N]: ")
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.TrimSpace(answer)
	if strings.HasPrefix(answer, "y") || strings.HasPrefix(answer, "Y") {
		fmt.Println(" => Yes")
		return true
	}
	fmt.Println(" => No")
	return false
}
