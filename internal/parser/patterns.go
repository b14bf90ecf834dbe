package parser

import (
	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/token"
)

func (p *parser) parsePattern() ast.Pattern {
	if p.match(token.IDENT) {
		tok := p.prev()
		if tok.Lexeme == "_" {
			return &ast.WildcardPattern{SpanVal: tok.Span}
		}
		if p.match(token.LPAREN) {
			var fields []string
			for !p.check(token.RPAREN) {
				fields = append(fields, p.expect(token.IDENT, "expected pattern field").Lexeme)
				if !p.match(token.COMMA) {
					break
				}
			}
			p.expect(token.RPAREN, "expected ')'")
			return &ast.VariantPattern{SpanVal: token.Merge(tok.Span, p.prev().Span), Name: tok.Lexeme, Fields: fields}
		}
		return &ast.NamePattern{SpanVal: tok.Span, Name: tok.Lexeme}
	}
	if p.matchAny(token.INT, token.FLOAT, token.STRING, token.CHAR, token.TRUE, token.FALSE) {
		tok := p.prev()
		return &ast.LiteralPattern{SpanVal: tok.Span, Value: tok.Lexeme}
	}
	panic(p.errorHere("expected pattern", ""))
}
