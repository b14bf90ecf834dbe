// Command midorc is a minimal driver over internal/pipeline: it compiles one
// or more .mdr source files and writes each one's lowered IR next to the
// source as a .mdrir file. Each file is an independent translation unit —
// internal/pipeline.Compile has no shared mutable state between calls — so
// multiple files are compiled concurrently, one goroutine per file, the same
// way the teacher's own cmd/funxy dispatches one pipeline.Run per script.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/midori-lang/midorc/internal/config"
	"github.com/midori-lang/midorc/internal/diagnostics"
	"github.com/midori-lang/midorc/internal/irwire"
	"github.com/midori-lang/midorc/internal/pipeline"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s <file.mdr> [file2.mdr ...]\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	opts := loadOptions()
	color := diagnostics.ShouldColor()
	if opts.Color != nil {
		color = *opts.Color
	}

	var wg sync.WaitGroup
	failed := make([]bool, len(args))
	for i, path := range args {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			failed[i] = compileOne(path, opts, color)
		}(i, path)
	}
	wg.Wait()

	for _, f := range failed {
		if f {
			os.Exit(1)
		}
	}
}

func loadOptions() config.Options {
	path := "midorc.yaml"
	if _, err := os.Stat(path); err != nil {
		return config.Default()
	}
	opts, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, err)
		return config.Default()
	}
	return opts
}

// compileOne compiles one source file and writes its IR alongside it,
// returning true if compilation failed.
func compileOne(path string, opts config.Options, color bool) bool {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, err)
		return true
	}

	prog, warnings, d := pipeline.Compile(string(source), path, opts)
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, w)
	}
	if d != nil {
		fmt.Fprintln(os.Stderr, d.Format(color))
		return true
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".mdrir"
	if err := os.WriteFile(out, irwire.Encode(prog), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: writing %s: %s\n", path, out, err)
		return true
	}
	return false
}
