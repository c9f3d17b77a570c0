package main

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bin2gif/pkg/config"
)

func parse(t *testing.T, args ...string) *options {
	t.Helper()
	opts := newOptions("bin2gif")
	if err := opts.fs.Parse(args); err != nil {
		t.Fatalf("Failed to parse %v: %v", args, err)
	}
	return opts
}

func TestApplySizeOrder(t *testing.T) {
	tests := []struct {
		args          []string
		width, height int
	}{
		{[]string{"-s", "64"}, 64, 64},
		{[]string{"-size", "64", "-width", "32"}, 32, 64},
		{[]string{"-height", "16", "-s", "64", "-width", "32"}, 32, 16},
		{[]string{"-width", "8", "-size", "64"}, 8, 64},
		{[]string{"-width", "8", "-height", "4"}, 8, 4},
	}

	for _, tt := range tests {
		cfg := config.DefaultConfig()
		parse(t, tt.args...).apply(cfg)
		if cfg.Input.Width != tt.width || cfg.Input.Height != tt.height {
			t.Errorf("%v: expected %dx%d, got %dx%d", tt.args, tt.width, tt.height, cfg.Input.Width, cfg.Input.Height)
		}
	}
}

func TestApplyKeepsUnsetValues(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Input.Header = 8
	cfg.Output.Func = "abs"

	parse(t, "-max", "2", "-format", "png", "input.bin").apply(cfg)

	if cfg.Input.Header != 8 {
		t.Errorf("Expected header 8, got %d", cfg.Input.Header)
	}
	if cfg.Output.Func != "abs" {
		t.Errorf("Expected func abs, got %s", cfg.Output.Func)
	}
	if !cfg.Output.UseMax || cfg.Output.Max != 2 || cfg.Output.UseMin {
		t.Errorf("Expected only max set to 2, got min %v/%f max %v/%f",
			cfg.Output.UseMin, cfg.Output.Min, cfg.Output.UseMax, cfg.Output.Max)
	}
	if cfg.Output.Format != "png" {
		t.Errorf("Expected format png, got %s", cfg.Output.Format)
	}
}

func TestWriteConfig(t *testing.T) {
	dir := t.TempDir()

	// -save-config alone writes the defaults
	defaultsPath := filepath.Join(dir, "defaults.yaml")
	opts := parse(t, "-save-config", defaultsPath)
	cfg := config.DefaultConfig()
	cfg.Input.Header = 99
	if err := opts.writeConfig(cfg); err != nil {
		t.Fatalf("Failed to write configuration: %v", err)
	}
	loaded, err := config.LoadConfig(defaultsPath)
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if diff := cmp.Diff(config.DefaultConfig(), loaded); diff != "" {
		t.Errorf("Default configuration mismatch (-want +got):\n%s", diff)
	}

	// With other flags the effective configuration is written
	effectivePath := filepath.Join(dir, "effective.yaml")
	opts = parse(t, "-save-config", effectivePath, "-s", "128", "-func", "arg")
	cfg, err = opts.load()
	if err != nil {
		t.Fatalf("Failed to build configuration: %v", err)
	}
	if err := opts.writeConfig(cfg); err != nil {
		t.Fatalf("Failed to write configuration: %v", err)
	}
	loaded, err = config.LoadConfig(effectivePath)
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("Effective configuration mismatch (-want +got):\n%s", diff)
	}
	if loaded.Input.Width != 128 || loaded.Output.Func != "arg" {
		t.Errorf("Expected width 128 and func arg, got %d and %s", loaded.Input.Width, loaded.Output.Func)
	}
}
