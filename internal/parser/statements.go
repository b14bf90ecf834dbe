package parser

import (
	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/token"
)

func (p *parser) parseBlock() *ast.BlockExpr {
	start := p.expect(token.LBRACE, "expected '{'")
	p.skipSeparators()
	var statements []ast.Stmt
	var tail ast.Expr
	for !p.check(token.RBRACE) {
		if p.startsStmt() {
			statements = append(statements, p.parseStmt())
			p.skipSeparators()
			continue
		}
		expr := p.parseExpr()
		switch {
		case p.match(token.SEMI):
			statements = append(statements, &ast.ExprStmt{SpanVal: expr.Span(), Expr: expr})
			p.skipSeparators()
		case p.check(token.NEWLINE):
			p.advance()
			if p.check(token.RBRACE) {
				tail = expr
			} else {
				statements = append(statements, &ast.ExprStmt{SpanVal: expr.Span(), Expr: expr})
				p.skipSeparators()
				continue
			}
		default:
			tail = expr
		}
		if tail != nil {
			break
		}
	}
	end := p.expect(token.RBRACE, "expected '}'")
	return &ast.BlockExpr{SpanVal: token.Merge(start.Span, end.Span), Statements: statements, Tail: tail}
}

func (p *parser) startsStmt() bool {
	return p.checkAny(token.LET, token.VAR, token.RETURN, token.BREAK, token.CONTINUE)
}

func (p *parser) parseStmt() ast.Stmt {
	if p.match(token.LET) {
		return p.parseLet(false)
	}
	if p.match(token.VAR) {
		return p.parseLet(true)
	}
	if p.match(token.RETURN) {
		if p.checkAny(token.SEMI, token.NEWLINE, token.RBRACE) {
			return &ast.ReturnStmt{SpanVal: p.prev().Span}
		}
		expr := p.parseExpr()
		return &ast.ReturnStmt{SpanVal: token.Merge(p.prev().Span, expr.Span()), Expr: expr}
	}
	if p.match(token.BREAK) {
		var expr ast.Expr
		span := p.prev().Span
		if !p.checkAny(token.SEMI, token.NEWLINE, token.RBRACE) {
			expr = p.parseExpr()
			span = token.Merge(span, expr.Span())
		}
		return &ast.BreakStmt{SpanVal: span, Expr: expr}
	}
	if p.match(token.CONTINUE) {
		return &ast.ContinueStmt{SpanVal: p.prev().Span}
	}
	panic(p.errorHere("expected statement", ""))
}

func (p *parser) parseLet(mutable bool) *ast.LetStmt {
	name := p.expect(token.IDENT, "expected variable name")
	var ty *ast.TypeRef
	inferred := false
	if p.match(token.COLONEQ) {
		inferred = true
	} else {
		if p.match(token.COLON) {
			ty = p.parseType()
		}
		p.expect(token.ASSIGN, "expected '=' or ':='")
		inferred = ty == nil
	}
	expr := p.parseExpr()
	return &ast.LetStmt{
		SpanVal: token.Merge(name.Span, expr.Span()), Name: name.Lexeme, Type: ty,
		Expr: expr, Mutable: mutable, Inferred: inferred,
	}
}
