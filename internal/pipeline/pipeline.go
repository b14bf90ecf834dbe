// Package pipeline chains midorc's passes end to end, following the order
// midori_cli/pipeline.py's compile_file lays out: lex, parse, resolve, check,
// print warnings, borrow-check, lower. Codegen (LLVM assembly, linking) is
// out of scope for this module; Compile hands a caller the finished IR.
package pipeline

import (
	"github.com/google/uuid"

	"github.com/midori-lang/midorc/internal/borrow"
	"github.com/midori-lang/midorc/internal/checker"
	"github.com/midori-lang/midorc/internal/config"
	"github.com/midori-lang/midorc/internal/diagnostics"
	"github.com/midori-lang/midorc/internal/ir"
	"github.com/midori-lang/midorc/internal/lexer"
	"github.com/midori-lang/midorc/internal/lower"
	"github.com/midori-lang/midorc/internal/parser"
	"github.com/midori-lang/midorc/internal/resolver"
)

// Compile runs one .mdr source string through every pass and returns its
// lowered IR plus any checker warnings. Compile has no side-channel logging
// and no shared mutable state between calls — every argument and return
// value is self-contained, so a caller may run many Compile calls
// concurrently from separate goroutines.
func Compile(source, file string, opts config.Options) (*ir.ProgramIR, []string, *diagnostics.Diagnostic) {
	tokens, d := lexer.Tokenize(file, source)
	if d != nil {
		return nil, nil, d
	}

	prog, d := parser.ParseWithDepthLimit(tokens, opts.MaxExprDepth)
	if d != nil {
		return nil, nil, d
	}

	res, d := resolver.ResolveNames(prog)
	if d != nil {
		return nil, nil, d
	}

	typed, d := checker.CheckProgram(prog, res)
	if d != nil {
		return nil, nil, d
	}

	warnings := typed.Warnings
	if opts.WarningsAsErrors && len(warnings) > 0 {
		return nil, warnings, diagnostics.NewCoded("MD3000", prog.Span(), warnings[0])
	}

	if d := borrow.BorrowCheck(typed); d != nil {
		return nil, warnings, d
	}

	out, d := lower.Lower(typed)
	if d != nil {
		return nil, warnings, d
	}

	out.CompileID = uuid.NewString()
	return out, warnings, nil
}
