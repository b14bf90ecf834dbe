// Package parser builds a Midori AST from a token stream via recursive
// descent with a standard precedence ladder for expressions.
package parser

import (
	"strings"

	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/diagnostics"
	"github.com/midori-lang/midorc/internal/token"
)

type parser struct {
	tokens   []token.Token
	i        int
	maxDepth int
	depth    int
}

// parseError aborts the current parse with a diagnostic; recovered by Parse.
type parseError struct {
	diag *diagnostics.Diagnostic
}

func (e *parseError) Error() string { return e.diag.Error() }

// Parse consumes a full token stream (as produced by lexer.Tokenize) and
// returns the Program, or the first syntax Diagnostic encountered.
func Parse(tokens []token.Token) (prog *ast.Program, d *diagnostics.Diagnostic) {
	return ParseWithDepthLimit(tokens, 0)
}

// ParseWithDepthLimit is Parse with an explicit cap on expression nesting
// (internal/config.Options.MaxExprDepth), guarding the recursive-descent
// expression parser against a stack overflow on adversarial input. A limit
// of 0 means unbounded.
func ParseWithDepthLimit(tokens []token.Token, maxDepth int) (prog *ast.Program, d *diagnostics.Diagnostic) {
	p := &parser{tokens: tokens, maxDepth: maxDepth}
	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*parseError)
			if !ok {
				panic(r)
			}
			prog, d = nil, pe.diag
		}
	}()
	return p.parseProgram(), nil
}

func (p *parser) parseProgram() *ast.Program {
	var items []ast.Item
	p.skipSeparators()
	for !p.check(token.EOF) {
		items = append(items, p.parseItem())
		p.skipSeparators()
	}
	return &ast.Program{SpanVal: p.spanFromItems(items), Items: items}
}

func (p *parser) spanFromItems(items []ast.Item) token.Span {
	if len(items) == 0 {
		return p.peek().Span
	}
	return token.Merge(items[0].Span(), items[len(items)-1].Span())
}

// --- token-stream primitives ---

func (p *parser) peek() token.Token { return p.tokens[p.i] }

func (p *parser) prev() token.Token { return p.tokens[p.i-1] }

func (p *parser) advance() token.Token {
	tok := p.tokens[p.i]
	p.i++
	return tok
}

func (p *parser) check(k token.Kind) bool { return p.peek().Kind == k }

func (p *parser) checkAny(ks ...token.Kind) bool {
	for _, k := range ks {
		if p.check(k) {
			return true
		}
	}
	return false
}

func (p *parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) matchAny(ks ...token.Kind) bool {
	for _, k := range ks {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) expect(k token.Kind, message string) token.Token {
	if p.check(k) {
		return p.advance()
	}
	panic(p.errorHere(message, ""))
}

func (p *parser) skipSeparators() {
	for p.matchAny(token.NEWLINE, token.SEMI) {
	}
}

func (p *parser) errorHere(message, hint string) *parseError {
	code := "MD2000"
	if strings.HasPrefix(message, "expected ") {
		code = "MD2001"
	}
	d := diagnostics.NewCoded(code, p.peek().Span, message)
	if hint != "" {
		d.Hint = hint
	}
	return &parseError{diag: d}
}

func unquote(s string) string {
	return strings.Trim(s, `"`)
}
