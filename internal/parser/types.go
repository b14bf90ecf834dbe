package parser

import (
	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/token"
)

func (p *parser) parseType() *ast.TypeRef {
	isRef, isMutRef, isPtr, isMutPtr := false, false, false, false
	if p.match(token.AMP) {
		isRef = true
		if p.check(token.IDENT) && p.peek().Lexeme == "mut" {
			p.advance()
			isMutRef = true
		}
	}
	if p.match(token.STAR) {
		isPtr = true
		if p.check(token.IDENT) && p.peek().Lexeme == "mut" {
			p.advance()
			isMutPtr = true
		}
	}
	name := p.expect(token.IDENT, "expected type name")
	var args []*ast.TypeRef
	if p.match(token.LBRACKET) {
		for {
			args = append(args, p.parseType())
			if p.match(token.COMMA) {
				continue
			}
			p.expect(token.RBRACKET, "expected ']'")
			break
		}
	}
	return &ast.TypeRef{
		SpanVal: token.Merge(name.Span, p.prev().Span), Name: name.Lexeme, Args: args,
		IsRef: isRef, IsMutRef: isMutRef, IsPtr: isPtr, IsMutPtr: isMutPtr,
	}
}
