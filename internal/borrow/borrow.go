// Package borrow enforces Midori's move/borrow discipline over a
// type-checked program: at most one live mutable borrow or any number of
// live immutable borrows per binding, and no use of a moved-from binding.
//
// Unlike the narrower walk this is grounded on (which treats an if/match's
// arms as flat expression children of the same mutable state), branches are
// checked independently from a cloned pre-branch snapshot and the resulting
// states are unioned back: a binding is moved after the branch if any arm
// moved it, its borrow count is the worst case across arms, and a
// mutable borrow survives the branch if any arm left one open.
package borrow

import (
	"fmt"

	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/checker"
	"github.com/midori-lang/midorc/internal/diagnostics"
	"github.com/midori-lang/midorc/internal/types"
)

type state struct {
	moved      bool
	immBorrows int
	mutBorrow  bool
	ty         types.Type
}

func (s *state) clone() *state {
	cp := *s
	return &cp
}

type release struct {
	name string
	mut  bool
}

// borrowError aborts the current function's check with a diagnostic.
type borrowError struct {
	diag *diagnostics.Diagnostic
}

func (e *borrowError) Error() string { return e.diag.Error() }

func raise(span ast.Node, message string) {
	panic(&borrowError{diag: diagnostics.New(diagnostics.PassBorrow, span.Span(), message)})
}

// BorrowCheck walks every typed function's body, returning the first
// violation found across the whole program.
func BorrowCheck(typed *checker.TypedProgram) (d *diagnostics.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			be, ok := r.(*borrowError)
			if !ok {
				panic(r)
			}
			d = be.diag
		}
	}()

	for _, fn := range typed.Functions {
		states := map[string]*state{}
		for name, ty := range fn.LocalTypes {
			states[name] = &state{ty: ty}
		}
		for i, p := range fn.Decl.Params {
			states[p.Name] = &state{ty: fn.FnType.Params[i]}
		}
		c := &checkerCtx{exprTypes: fn.ExprTypes}
		c.checkBlockBody(fn.Decl.Body, states)
	}
	return nil
}

type checkerCtx struct {
	exprTypes map[ast.Expr]types.Type
}

func cloneStates(states map[string]*state) map[string]*state {
	out := make(map[string]*state, len(states))
	for k, v := range states {
		out[k] = v.clone()
	}
	return out
}

// unionStates merges branch result maps back into base, keyed only by
// bindings that existed in base before the branch (pattern/let bindings
// introduced inside an arm go out of scope when the arm ends).
func unionStates(base map[string]*state, branches ...map[string]*state) {
	for name, s := range base {
		moved := false
		maxImm := 0
		anyMut := false
		for _, branch := range branches {
			bs, ok := branch[name]
			if !ok {
				continue
			}
			if bs.moved {
				moved = true
			}
			if bs.immBorrows > maxImm {
				maxImm = bs.immBorrows
			}
			if bs.mutBorrow {
				anyMut = true
			}
		}
		s.moved = moved
		s.immBorrows = maxImm
		s.mutBorrow = anyMut
	}
}

func (c *checkerCtx) checkBlockBody(block *ast.BlockExpr, states map[string]*state) {
	var releases []release

	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.LetStmt:
			c.checkExpr(s.Expr, states, &releases)
			if ident, ok := s.Expr.(*ast.IdentifierExpr); ok {
				if src, ok := states[ident.Name]; ok {
					if srcTy, ok := c.exprTypes[s.Expr]; ok && !srcTy.IsCopy() {
						src.moved = true
					}
				}
			}
			if _, exists := states[s.Name]; !exists {
				states[s.Name] = &state{ty: c.exprTypes[s.Expr]}
			}
		case *ast.ExprStmt:
			c.checkExpr(s.Expr, states, &releases)
		case *ast.ReturnStmt:
			if s.Expr != nil {
				c.checkExpr(s.Expr, states, &releases)
			}
		}
	}
	if block.Tail != nil {
		c.checkExpr(block.Tail, states, &releases)
	}

	for _, r := range releases {
		s := states[r.name]
		if s == nil {
			continue
		}
		if r.mut {
			s.mutBorrow = false
		} else {
			s.immBorrows--
		}
	}
}

func (c *checkerCtx) checkExpr(expr ast.Expr, states map[string]*state, releases *[]release) {
	switch e := expr.(type) {
	case *ast.IdentifierExpr:
		s, ok := states[e.Name]
		if !ok {
			return
		}
		if s.moved {
			raise(e, fmt.Sprintf("use after move of '%s'", e.Name))
		}
		if s.mutBorrow {
			raise(e, fmt.Sprintf("cannot use '%s' while mutably borrowed", e.Name))
		}

	case *ast.UnaryExpr:
		if e.Op == "&" || e.Op == "&mut" {
			c.checkBorrowOf(e, states, releases)
			return
		}
		c.checkExpr(e.Expr, states, releases)

	case *ast.BinaryExpr:
		c.checkExpr(e.Left, states, releases)
		c.checkExpr(e.Right, states, releases)

	case *ast.AssignExpr:
		c.checkExpr(e.Target, states, releases)
		c.checkExpr(e.Value, states, releases)

	case *ast.CallExpr:
		c.checkExpr(e.Callee, states, releases)
		for _, arg := range e.Args {
			c.checkExpr(arg, states, releases)
		}

	case *ast.IfExpr:
		c.checkExpr(e.Condition, states, releases)
		c.checkBranchUnion(states, func(branch map[string]*state) {
			c.checkBlockBody(e.ThenBlock, branch)
		}, func(branch map[string]*state) {
			if e.ElseBranch != nil {
				c.checkExprOrBlock(e.ElseBranch, branch)
			}
		})

	case *ast.BlockExpr:
		c.checkBlockBody(e, states)

	case *ast.MatchExpr:
		c.checkExpr(e.Target, states, releases)
		targetTy := c.exprTypes[e.Target]
		arms := make([]func(map[string]*state), len(e.Arms))
		for i, arm := range e.Arms {
			arm := arm
			arms[i] = func(branch map[string]*state) {
				c.bindPatternLocals(arm.Pattern, targetTy, branch)
				c.checkExprOrBlock(arm.Expr, branch)
			}
		}
		c.checkBranchUnion(states, arms...)

	case *ast.RangeExpr:
		c.checkExpr(e.Start, states, releases)
		c.checkExpr(e.End, states, releases)

	case *ast.PostfixTryExpr:
		c.checkExpr(e.Expr, states, releases)

	case *ast.UnsafeExpr:
		c.checkBlockBody(e.Block, states)

	case *ast.SpawnExpr:
		c.checkExpr(e.Expr, states, releases)

	case *ast.AwaitExpr:
		c.checkExpr(e.Expr, states, releases)

	case *ast.StructInitExpr:
		for _, f := range e.Fields {
			c.checkExpr(f.Expr, states, releases)
		}

	case *ast.RaiseExpr:
		c.checkExpr(e.Message, states, releases)

	case *ast.LiteralExpr:
		// no children

	}
}

// checkExprOrBlock dispatches a branch arm body: a block gets its own
// release scope, a bare expression is checked against the branch's state
// directly with no releases of its own (match arms and bare-else arms never
// introduce borrows that must release before the branch result is used).
func (c *checkerCtx) checkExprOrBlock(expr ast.Expr, states map[string]*state) {
	if block, ok := expr.(*ast.BlockExpr); ok {
		c.checkBlockBody(block, states)
		return
	}
	var noReleases []release
	c.checkExpr(expr, states, &noReleases)
}

func (c *checkerCtx) checkBranchUnion(states map[string]*state, visits ...func(branch map[string]*state)) {
	branches := make([]map[string]*state, len(visits))
	for i, visit := range visits {
		branch := cloneStates(states)
		visit(branch)
		branches[i] = branch
	}
	unionStates(states, branches...)
}

func (c *checkerCtx) checkBorrowOf(e *ast.UnaryExpr, states map[string]*state, releases *[]release) {
	ident, ok := e.Expr.(*ast.IdentifierExpr)
	if !ok {
		c.checkExpr(e.Expr, states, releases)
		return
	}
	s, ok := states[ident.Name]
	if !ok {
		return
	}
	if s.moved {
		raise(e, fmt.Sprintf("cannot borrow moved value '%s'", ident.Name))
	}
	if e.Op == "&" {
		if s.mutBorrow {
			raise(e, fmt.Sprintf("cannot immutably borrow '%s' while mutably borrowed", ident.Name))
		}
		s.immBorrows++
		if releases != nil {
			*releases = append(*releases, release{name: ident.Name, mut: false})
		}
		return
	}
	if s.mutBorrow || s.immBorrows > 0 {
		raise(e, fmt.Sprintf("cannot mutably borrow '%s' while already borrowed", ident.Name))
	}
	s.mutBorrow = true
	if releases != nil {
		*releases = append(*releases, release{name: ident.Name, mut: true})
	}
}

func (c *checkerCtx) bindPatternLocals(pattern ast.Pattern, targetTy types.Type, states map[string]*state) {
	switch p := pattern.(type) {
	case *ast.NamePattern:
		if _, exists := states[p.Name]; !exists {
			states[p.Name] = &state{ty: targetTy}
		}
	case *ast.VariantPattern:
		for _, name := range p.Fields {
			if _, exists := states[name]; !exists {
				states[name] = &state{ty: types.Unknown}
			}
		}
	}
}
