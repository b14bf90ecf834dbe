// Package lower translates a borrow-checked, typed program into midorc's
// basic-block SSA IR, synthesizing a tagged-union layout for every sum type
// the program actually instantiates. It builds on the single-pass _Builder
// shape of midori_ir/lowering.py (env map, block/temp counters, new_block/
// emit/terminate) but implements the full instruction set that MVP stubbed
// out: enum construction and projection, match linearization, the postfix
// `?` early-return, `raise`, and the `main` 32-bit return truncation.
package lower

import (
	"github.com/midori-lang/midorc/internal/checker"
	"github.com/midori-lang/midorc/internal/diagnostics"
	"github.com/midori-lang/midorc/internal/ir"
)

type lowerError struct {
	diag *diagnostics.Diagnostic
}

func (e *lowerError) Error() string { return e.diag.Error() }

// Lower builds the program's IR, returning the first diagnostic raised by
// any function.
func Lower(typed *checker.TypedProgram) (prog *ir.ProgramIR, d *diagnostics.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			le, ok := r.(*lowerError)
			if !ok {
				panic(r)
			}
			prog, d = nil, le.diag
		}
	}()

	layouts, layoutOrder := collectEnumLayouts(typed)

	functions := map[string]*ir.FunctionIR{}
	fnNames := sortedFunctionNames(typed)
	for _, name := range fnNames {
		functions[name] = lowerFunction(typed, typed.Functions[name], layouts)
	}

	return &ir.ProgramIR{
		Functions:     functions,
		FunctionOrder: fnNames,
		Enums:         layouts,
		EnumOrder:     layoutOrder,
	}, nil
}

func lowerFunction(typed *checker.TypedProgram, fn *checker.TypedFunction, layouts map[string]*ir.EnumLayout) *ir.FunctionIR {
	b := newBuilder(fn, layouts, typed)

	for i, p := range fn.Decl.Params {
		b.env[p.Name] = b.argName(i)
	}

	tail := b.lowerBlock(fn.Decl.Body)
	if b.current.Terminator == nil {
		if fn.FnType.Ret.Name == "Void" {
			b.terminate(&ir.ReturnTerm{})
		} else {
			b.terminate(b.finishReturn(tail, true))
		}
	}

	params := make([]ir.FunctionParam, len(fn.Decl.Params))
	for i, p := range fn.Decl.Params {
		params[i] = ir.FunctionParam{Name: p.Name, Type: fn.FnType.Params[i]}
	}

	return &ir.FunctionIR{
		Name:       fn.Decl.Name,
		Params:     params,
		ReturnType: fn.FnType.Ret,
		Blocks:     b.blocks,
		BlockOrder: b.blockOrder,
		Entry:      b.entry,
	}
}
