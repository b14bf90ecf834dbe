package checker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/resolver"
	"github.com/midori-lang/midorc/internal/types"
)

func (c *checker) inferCall(e *ast.CallExpr) types.Type {
	callee, ok := e.Callee.(*ast.IdentifierExpr)
	if !ok {
		c.raise(e, "only direct function calls are supported")
	}
	name := callee.Name

	switch name {
	case "print":
		for _, arg := range e.Args {
			argTy := c.infer(arg)
			if !types.IsPrintable(argTy) {
				c.raiseHint(arg, fmt.Sprintf("unsupported print argument type %s", argTy),
					"print supports Int, Float, Bool, Char, and String")
			}
		}
		return c.note(e, types.Void)

	case "read_file":
		if len(e.Args) != 1 {
			c.raise(e, "read_file expects one argument")
		}
		c.ensureAssignable(types.String, c.infer(e.Args[0]), e.Args[0])
		return c.note(e, types.Result(types.String, types.String))

	case "Some":
		if len(e.Args) != 1 {
			c.raise(e, "Some expects one argument")
		}
		return c.note(e, types.Option(c.infer(e.Args[0])))

	case "None":
		return c.note(e, types.Option(types.Unknown))

	case "Ok":
		if len(e.Args) != 1 {
			c.raise(e, "Ok expects one argument")
		}
		return c.note(e, types.Result(c.infer(e.Args[0]), types.Unknown))

	case "Err":
		if len(e.Args) != 1 {
			c.raise(e, "Err expects one argument")
		}
		return c.note(e, types.Result(types.Unknown, c.infer(e.Args[0])))
	}

	if candidates, ok := c.variantsByName[name]; ok {
		return c.inferVariantConstructor(e, name, candidates)
	}

	sig, ok := c.fnTypes[name]
	if !ok {
		c.raise(e, fmt.Sprintf("unknown function '%s'", name))
	}
	if len(sig.GenericParams) > 0 {
		return c.inferGenericCall(e, name, sig)
	}

	if len(e.Args) != len(sig.Params) {
		c.raise(e, fmt.Sprintf("wrong number of arguments for '%s': expected %d, got %d", name, len(sig.Params), len(e.Args)))
	}
	for i, arg := range e.Args {
		argTy := c.infer(arg)
		c.ensureAssignable(sig.Params[i], argTy, arg)
	}
	return c.note(e, sig.Ret)
}

func (c *checker) inferVariantConstructor(e *ast.CallExpr, name string, candidates []resolver.OwningVariant) types.Type {
	if len(candidates) > 1 {
		names := make([]string, len(candidates))
		for i, cand := range candidates {
			names[i] = cand.EnumName
		}
		c.raiseHint(e, fmt.Sprintf("ambiguous variant constructor '%s'", name),
			fmt.Sprintf("rename variants to avoid ambiguity across enums: %s", strings.Join(sortedEnumNames(names), ", ")))
	}
	enumName := candidates[0].EnumName
	variantInfo := c.enums[enumName].Variants[name]
	if len(e.Args) != len(variantInfo.FieldTypes) {
		c.raise(e, fmt.Sprintf("wrong number of arguments for variant '%s': expected %d, got %d",
			name, len(variantInfo.FieldTypes), len(e.Args)))
	}
	for i, arg := range e.Args {
		argTy := c.infer(arg)
		c.ensureAssignable(variantInfo.FieldTypes[i], argTy, arg)
	}
	return c.note(e, types.Type{Name: enumName})
}

func (c *checker) inferGenericCall(e *ast.CallExpr, name string, sig FunctionType) types.Type {
	if len(e.Args) != len(sig.Params) {
		c.raise(e, fmt.Sprintf("wrong number of arguments for '%s': expected %d, got %d", name, len(sig.Params), len(e.Args)))
	}
	subst := map[string]types.Type{}
	argTypes := make([]types.Type, len(e.Args))
	for i, arg := range e.Args {
		argTypes[i] = c.infer(arg)
		if me, ma, ok := types.BindGeneric(sig.Params[i], argTypes[i], subst); !ok {
			c.raise(arg, fmt.Sprintf("type mismatch: expected %s, got %s", me, ma))
		}
	}
	for i, arg := range e.Args {
		expTy := types.ApplySubst(sig.Params[i], subst)
		c.ensureAssignable(expTy, argTypes[i], arg)
	}
	return c.note(e, types.ApplySubst(sig.Ret, subst))
}

func sortedEnumNames(names []string) []string {
	sort.Strings(names)
	return names
}
