// Package checker performs Midori's single-pass type check: literal and
// expression type inference, generic monomorphization via call-site
// substitution, and match-exhaustiveness checking. It borrows the borrow
// checker's later need for per-expression types by recording every
// expression's inferred type in a map keyed by AST pointer identity, the Go
// equivalent of the original implementation's id()-keyed dict.
package checker

import (
	"fmt"
	"strings"

	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/diagnostics"
	"github.com/midori-lang/midorc/internal/resolver"
	"github.com/midori-lang/midorc/internal/types"
)

// FunctionType is a checked function signature.
type FunctionType struct {
	Params        []types.Type
	Ret           types.Type
	GenericParams []string
}

// EnumVariantInfo is a checked enum variant: its tag index and field types.
type EnumVariantInfo struct {
	Name       string
	Index      int
	FieldTypes []types.Type
}

// EnumInfo is a checked enum: its variants keyed by name.
type EnumInfo struct {
	Name     string
	Variants map[string]*EnumVariantInfo
}

// TypedFunction is a function after type checking, with every expression's
// inferred type and every local variable's type recorded for lowering.
type TypedFunction struct {
	Decl       *ast.FunctionDecl
	FnType     FunctionType
	ExprTypes  map[ast.Expr]types.Type
	LocalTypes map[string]types.Type
}

// TypedProgram is the output of CheckProgram.
type TypedProgram struct {
	Program   *ast.Program
	Functions map[string]*TypedFunction
	Enums     map[string]*EnumInfo
	Warnings  []string
}

type varState struct {
	ty      types.Type
	mutable bool
}

// checkError aborts the current function check with a diagnostic.
type checkError struct {
	diag *diagnostics.Diagnostic
}

func (e *checkError) Error() string { return e.diag.Error() }

// CheckProgram type-checks every function in program using the flat symbol
// table resolution already produced, returning the first Diagnostic raised.
func CheckProgram(program *ast.Program, res *resolver.Resolution) (tp *TypedProgram, d *diagnostics.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*checkError)
			if !ok {
				panic(r)
			}
			tp, d = nil, ce.diag
		}
	}()

	enums := map[string]*EnumInfo{}
	for name, sym := range res.Enums {
		variants := map[string]*EnumVariantInfo{}
		for varName, variant := range sym.Variants {
			fieldTypes := make([]types.Type, len(variant.Fields))
			for i, f := range variant.Fields {
				fieldTypes[i] = typeFromRef(f.Type)
			}
			variants[varName] = &EnumVariantInfo{Name: variant.Name, Index: variant.Index, FieldTypes: fieldTypes}
		}
		enums[name] = &EnumInfo{Name: name, Variants: variants}
	}

	fnTypes := map[string]FunctionType{}
	for name, sym := range res.Functions {
		params := make([]types.Type, len(sym.Decl.Params))
		for i, p := range sym.Decl.Params {
			params[i] = typeFromRef(p.Type)
		}
		ret := types.Void
		if sym.Decl.ReturnType != nil {
			ret = typeFromRef(sym.Decl.ReturnType)
		}
		fnTypes[name] = FunctionType{Params: params, Ret: ret, GenericParams: sym.Decl.GenericParams}
	}

	customErrors := map[string]bool{}
	for name := range res.Errors {
		customErrors[name] = true
	}

	typedFuncs := map[string]*TypedFunction{}
	for name, sym := range res.Functions {
		c := &checker{
			decl:           sym.Decl,
			fnTypes:        fnTypes,
			enums:          enums,
			variantsByName: res.VariantsByName,
			customErrors:   customErrors,
			vars:           map[string]varState{},
			allLocals:      map[string]types.Type{},
			exprTypes:      map[ast.Expr]types.Type{},
		}
		typedFuncs[name] = c.checkFunction()
	}

	return &TypedProgram{Program: program, Functions: typedFuncs, Enums: enums, Warnings: nil}, nil
}

type checker struct {
	decl              *ast.FunctionDecl
	fnTypes           map[string]FunctionType
	enums             map[string]*EnumInfo
	variantsByName    map[string][]resolver.OwningVariant
	customErrors      map[string]bool
	vars              map[string]varState
	allLocals         map[string]types.Type
	exprTypes         map[ast.Expr]types.Type
	sawExplicitReturn bool
}

func (c *checker) raise(span ast.Node, message string) {
	panic(&checkError{diag: diagnostics.New(diagnostics.PassChecker, span.Span(), message)})
}

func (c *checker) raiseHint(span ast.Node, message, hint string) {
	panic(&checkError{diag: diagnostics.NewWithHint(diagnostics.PassChecker, span.Span(), message, hint)})
}

func (c *checker) ensureAssignable(expected, actual types.Type, span ast.Node) {
	if !types.Assignable(expected, actual) {
		c.raise(span, fmt.Sprintf("type mismatch: expected %s, got %s", expected, actual))
	}
}

func (c *checker) note(expr ast.Expr, ty types.Type) types.Type {
	c.exprTypes[expr] = ty
	return ty
}

func (c *checker) scopeSnapshot() map[string]varState {
	cp := make(map[string]varState, len(c.vars))
	for k, v := range c.vars {
		cp[k] = v
	}
	return cp
}

func (c *checker) restoreScope(snap map[string]varState) {
	c.vars = snap
}

func (c *checker) checkFunction() *TypedFunction {
	fnType := c.fnTypes[c.decl.Name]
	for i, p := range c.decl.Params {
		c.vars[p.Name] = varState{ty: fnType.Params[i]}
		c.allLocals[p.Name] = fnType.Params[i]
	}

	bodyTy := c.inferBlock(c.decl.Body)
	c.ensureAssignable(fnType.Ret, bodyTy, c.decl.Body)
	if c.decl.Body.Tail != nil {
		coerced := types.CoerceUnknown(fnType.Ret, bodyTy)
		c.exprTypes[c.decl.Body.Tail] = coerced
		if tailBlock, ok := c.decl.Body.Tail.(*ast.BlockExpr); ok && tailBlock.Tail != nil {
			c.exprTypes[tailBlock.Tail] = coerced
		}
	}

	return &TypedFunction{Decl: c.decl, FnType: fnType, ExprTypes: c.exprTypes, LocalTypes: c.allLocals}
}

func (c *checker) inferBlock(block *ast.BlockExpr) types.Type {
	snap := c.scopeSnapshot()
	for _, stmt := range block.Statements {
		c.inferStmt(stmt)
	}
	var out types.Type
	switch {
	case block.Tail != nil:
		out = c.infer(block.Tail)
	case c.sawExplicitReturn:
		out = c.fnTypes[c.decl.Name].Ret
	default:
		out = types.Void
	}
	c.restoreScope(snap)
	return out
}

func (c *checker) inferStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		valTy := c.infer(s.Expr)
		outTy := valTy
		if !s.Inferred {
			outTy = typeFromRef(s.Type)
		}
		c.ensureAssignable(outTy, valTy, s)
		c.exprTypes[s.Expr] = types.CoerceUnknown(outTy, valTy)
		c.vars[s.Name] = varState{ty: outTy, mutable: s.Mutable}
		c.allLocals[s.Name] = outTy
	case *ast.ReturnStmt:
		c.sawExplicitReturn = true
		expected := c.fnTypes[c.decl.Name].Ret
		actual := types.Void
		if s.Expr != nil {
			actual = c.infer(s.Expr)
		}
		c.ensureAssignable(expected, actual, s)
		if s.Expr != nil {
			c.exprTypes[s.Expr] = types.CoerceUnknown(expected, actual)
		}
	case *ast.ExprStmt:
		c.infer(s.Expr)
	case *ast.BreakStmt:
		c.raiseHint(s, "unsupported break statement", "loop lowering is not implemented yet")
	case *ast.ContinueStmt:
		c.raiseHint(s, "unsupported continue statement", "loop lowering is not implemented yet")
	default:
		c.raise(stmt, fmt.Sprintf("unsupported statement: %T", stmt))
	}
}

func (c *checker) infer(expr ast.Expr) types.Type {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		switch e.Kind {
		case "int":
			return c.note(e, types.Int)
		case "float":
			return c.note(e, types.Float)
		case "char":
			return c.note(e, types.Char)
		case "true", "false":
			return c.note(e, types.Bool)
		default:
			return c.note(e, types.String)
		}

	case *ast.IdentifierExpr:
		st, ok := c.vars[e.Name]
		if !ok {
			c.raiseHint(e, fmt.Sprintf("unknown name '%s'", e.Name), "declare it first")
		}
		return c.note(e, st.ty)

	case *ast.UnaryExpr:
		inner := c.infer(e.Expr)
		switch e.Op {
		case "-":
			if !inner.Equal(types.Int) && !inner.Equal(types.Float) {
				c.raise(e, fmt.Sprintf("type mismatch: expected Int or Float, got %s", inner))
			}
			return c.note(e, inner)
		case "!":
			c.ensureAssignable(types.Bool, inner, e)
			return c.note(e, types.Bool)
		case "&", "&mut":
			return c.note(e, types.Ref(inner))
		default:
			c.raise(e, fmt.Sprintf("unsupported unary operator '%s'", e.Op))
		}

	case *ast.BinaryExpr:
		left := c.infer(e.Left)
		right := c.infer(e.Right)
		if !left.Equal(right) {
			c.raise(e, fmt.Sprintf("type mismatch: %s vs %s", left, right))
		}
		switch e.Op {
		case "+", "-", "*", "/", "%":
			return c.note(e, left)
		case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
			return c.note(e, types.Bool)
		default:
			c.raise(e, fmt.Sprintf("unsupported binary operator '%s'", e.Op))
		}

	case *ast.AssignExpr:
		target, ok := e.Target.(*ast.IdentifierExpr)
		if !ok {
			c.raise(e, "assignment target must be an identifier")
		}
		st, ok := c.vars[target.Name]
		if !ok {
			c.raise(e, fmt.Sprintf("unknown name '%s'", target.Name))
		}
		if !st.mutable {
			c.raise(e, fmt.Sprintf("cannot assign to immutable variable '%s'", target.Name))
		}
		valueTy := c.infer(e.Value)
		c.ensureAssignable(st.ty, valueTy, e)
		return c.note(e, st.ty)

	case *ast.CallExpr:
		return c.inferCall(e)

	case *ast.IfExpr:
		return c.inferIf(e)

	case *ast.BlockExpr:
		return c.note(e, c.inferBlock(e))

	case *ast.RangeExpr:
		c.raiseHint(e, "unsupported range expression", "range lowering is not implemented yet")

	case *ast.PostfixTryExpr:
		return c.inferTry(e)

	case *ast.RaiseExpr:
		return c.inferRaise(e)

	case *ast.AwaitExpr:
		c.raiseHint(e, "unsupported await expression: codegen is not implemented yet", "track roadmap in docs")

	case *ast.SpawnExpr:
		c.raiseHint(e, "unsupported spawn expression: codegen is not implemented yet", "track roadmap in docs")

	case *ast.MatchExpr:
		return c.inferMatch(e)

	case *ast.StructInitExpr:
		c.raiseHint(e, "unsupported struct initialization expression", "struct initialization lowering is not implemented yet")

	case *ast.UnsafeExpr:
		return c.note(e, c.inferBlock(e.Block))

	default:
		c.raise(expr, fmt.Sprintf("unsupported expression: %T", expr))
	}
	panic("unreachable")
}

func (c *checker) inferIf(e *ast.IfExpr) types.Type {
	cond := c.infer(e.Condition)
	c.ensureAssignable(types.Bool, cond, e.Condition)
	thenTy := c.inferBlock(e.ThenBlock)
	elseTy := types.Void
	if e.ElseBranch != nil {
		elseTy = c.infer(e.ElseBranch)
	}
	merged := c.mergeBranchTypes(thenTy, elseTy, e)
	if e.ThenBlock.Tail != nil {
		c.exprTypes[e.ThenBlock.Tail] = types.CoerceUnknown(merged, thenTy)
	}
	if e.ElseBranch != nil {
		coercedElse := types.CoerceUnknown(merged, elseTy)
		c.exprTypes[e.ElseBranch] = coercedElse
		if elseBlock, ok := e.ElseBranch.(*ast.BlockExpr); ok && elseBlock.Tail != nil {
			c.exprTypes[elseBlock.Tail] = coercedElse
		}
	}
	return c.note(e, merged)
}

func (c *checker) inferTry(e *ast.PostfixTryExpr) types.Type {
	inner := c.infer(e.Expr)
	if inner.Name != "Result" || len(inner.Args) != 2 {
		c.raise(e, "`?` expects Result[T, E]")
	}
	fnRet := c.fnTypes[c.decl.Name].Ret
	if fnRet.Name != "Result" || len(fnRet.Args) != 2 {
		c.raise(e, "`?` can only be used in functions returning Result[T, E]")
	}
	c.ensureAssignable(fnRet.Args[1], inner.Args[1], e)
	return c.note(e, inner.Args[0])
}

func (c *checker) inferRaise(e *ast.RaiseExpr) types.Type {
	if !c.customErrors[e.Kind] {
		c.raiseHint(e, fmt.Sprintf("unknown custom error kind '%s'", e.Kind), fmt.Sprintf("declare it first with `error %s`", e.Kind))
	}
	fnRet := c.fnTypes[c.decl.Name].Ret
	if fnRet.Name != "Result" || len(fnRet.Args) != 2 {
		c.raise(e, "`raise` can only be used in functions returning Result[T, String]")
	}
	c.ensureAssignable(types.String, fnRet.Args[1], e)
	msgTy := c.infer(e.Message)
	c.ensureAssignable(types.String, msgTy, e.Message)
	lit, ok := e.Message.(*ast.LiteralExpr)
	if !ok || lit.Kind != "string" {
		c.raiseHint(e.Message, "`raise` message must be a string literal", `example: raise MyError("detail")`)
	}
	return c.note(e, types.Unknown)
}

func typeFromRef(ref *ast.TypeRef) types.Type {
	if ref == nil {
		return types.Void
	}
	args := make([]types.Type, len(ref.Args))
	for i, a := range ref.Args {
		args[i] = typeFromRef(a)
	}
	inner := types.Type{Name: ref.Name, Args: args}
	if ref.IsRef || ref.IsMutRef {
		return types.Ref(inner)
	}
	if ref.IsPtr || ref.IsMutPtr {
		return types.Ptr(inner)
	}
	return inner
}

func (c *checker) mergeBranchTypes(left, right types.Type, span ast.Node) types.Type {
	if left.Equal(right) {
		return left
	}
	if types.Assignable(left, right) {
		return types.CoerceUnknown(left, right)
	}
	if types.Assignable(right, left) {
		return types.CoerceUnknown(right, left)
	}
	c.raise(span, fmt.Sprintf("if branches type mismatch: %s vs %s", left, right))
	panic("unreachable")
}

func isStringQuoted(v string) bool { return strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) }
