// Package config holds options that control the compiler's own behavior —
// never the .mdr program being compiled. It mirrors the load/validate/
// default-fill shape of funxy.yaml's loader in internal/ext/config.go, cut
// down to the handful of knobs midorc itself needs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options controls diagnostic formatting and checker strictness.
type Options struct {
	// Color forces (true) or suppresses (false) ANSI color in diagnostic
	// output. Nil defers to terminal detection and NO_COLOR.
	Color *bool `yaml:"color,omitempty"`

	// WarningsAsErrors promotes every checker warning to a hard failure.
	WarningsAsErrors bool `yaml:"warnings_as_errors,omitempty"`

	// MaxExprDepth bounds expression nesting the parser will accept before
	// giving up with a diagnostic, guarding against pathological or
	// adversarial input driving the recursive-descent parser into a stack
	// overflow. Zero means unbounded.
	MaxExprDepth int `yaml:"max_expr_depth,omitempty"`
}

// Default returns the zero-value Options: auto color detection, warnings
// stay warnings, no expression depth limit.
func Default() Options {
	return Options{}
}

// Load reads and parses a midorc.yaml file at path.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses midorc.yaml content from bytes. path is used only in error
// messages.
func Parse(data []byte, path string) (Options, error) {
	opts := Default()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if opts.MaxExprDepth < 0 {
		return Options{}, fmt.Errorf("%s: max_expr_depth must not be negative", path)
	}
	return opts, nil
}
