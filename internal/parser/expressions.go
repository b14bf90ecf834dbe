package parser

import (
	"strings"

	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/token"
)

func (p *parser) parseExpr() ast.Expr {
	if p.maxDepth > 0 {
		p.depth++
		if p.depth > p.maxDepth {
			panic(p.errorHere("expression nesting exceeds the configured limit", ""))
		}
		defer func() { p.depth-- }()
	}
	return p.parseAssignment()
}

func (p *parser) parseAssignment() ast.Expr {
	expr := p.parseRange()
	if p.matchAny(token.ASSIGN, token.PLUSEQ, token.MINUSEQ, token.STAREQ, token.SLASHEQ, token.PERCENTEQ) {
		op := p.prev().Lexeme
		value := p.parseAssignment()
		return &ast.AssignExpr{SpanVal: token.Merge(expr.Span(), value.Span()), Target: expr, Op: op, Value: value}
	}
	return expr
}

func (p *parser) parseRange() ast.Expr {
	expr := p.parseOr()
	if p.match(token.DOTDOT) {
		end := p.parseOr()
		return &ast.RangeExpr{SpanVal: token.Merge(expr.Span(), end.Span()), Start: expr, End: end}
	}
	if p.match(token.DOTDOTEQ) {
		end := p.parseOr()
		return &ast.RangeExpr{SpanVal: token.Merge(expr.Span(), end.Span()), Start: expr, End: end, Inclusive: true}
	}
	return expr
}

func (p *parser) parseOr() ast.Expr  { return p.binop(p.parseAnd, token.OROR) }
func (p *parser) parseAnd() ast.Expr { return p.binop(p.parseEquality, token.ANDAND) }
func (p *parser) parseEquality() ast.Expr {
	return p.binop(p.parseCompare, token.EQ, token.NE)
}
func (p *parser) parseCompare() ast.Expr {
	return p.binop(p.parseTerm, token.LT, token.LE, token.GT, token.GE)
}
func (p *parser) parseTerm() ast.Expr {
	return p.binop(p.parseFactor, token.PLUS, token.MINUS)
}
func (p *parser) parseFactor() ast.Expr {
	return p.binop(p.parseUnary, token.STAR, token.SLASH, token.PERCENT)
}

func (p *parser) binop(next func() ast.Expr, ops ...token.Kind) ast.Expr {
	expr := next()
	for p.matchAny(ops...) {
		op := p.prev()
		right := next()
		expr = &ast.BinaryExpr{SpanVal: token.Merge(expr.Span(), right.Span()), Left: expr, Op: op.Lexeme, Right: right}
	}
	return expr
}

func (p *parser) parseUnary() ast.Expr {
	if p.matchAny(token.BANG, token.MINUS, token.AWAIT, token.SPAWN, token.AMP) {
		op := p.prev()
		opLexeme := op.Lexeme
		if op.Kind == token.AMP && p.check(token.IDENT) && p.peek().Lexeme == "mut" {
			p.advance()
			opLexeme = "&mut"
		}
		expr := p.parseUnary()
		switch op.Kind {
		case token.AWAIT:
			return &ast.AwaitExpr{SpanVal: token.Merge(op.Span, expr.Span()), Expr: expr}
		case token.SPAWN:
			return &ast.SpawnExpr{SpanVal: token.Merge(op.Span, expr.Span()), Expr: expr}
		default:
			return &ast.UnaryExpr{SpanVal: token.Merge(op.Span, expr.Span()), Op: opLexeme, Expr: expr}
		}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		if p.match(token.LPAREN) {
			var args []ast.Expr
			if !p.check(token.RPAREN) {
				for {
					args = append(args, p.parseExpr())
					if !p.match(token.COMMA) {
						break
					}
				}
			}
			end := p.expect(token.RPAREN, "expected ')'")
			expr = &ast.CallExpr{SpanVal: token.Merge(expr.Span(), end.Span), Callee: expr, Args: args}
			continue
		}
		if p.match(token.QUESTION) {
			expr = &ast.PostfixTryExpr{SpanVal: token.Merge(expr.Span(), p.prev().Span), Expr: expr}
			continue
		}
		break
	}
	return expr
}

func (p *parser) parsePrimary() ast.Expr {
	if p.matchAny(token.INT, token.FLOAT, token.STRING, token.CHAR, token.TRUE, token.FALSE) {
		tok := p.prev()
		return &ast.LiteralExpr{SpanVal: tok.Span, Value: tok.Lexeme, Kind: strings.ToLower(tok.Kind.String())}
	}
	if p.match(token.IDENT) {
		ident := p.prev()
		if p.check(token.LBRACE) && isUpperName(ident.Lexeme) {
			p.advance()
			var fields []*ast.FieldInit
			for !p.check(token.RBRACE) {
				fName := p.expect(token.IDENT, "expected field name")
				p.expect(token.COLON, "expected ':'")
				value := p.parseExpr()
				fields = append(fields, &ast.FieldInit{SpanVal: token.Merge(fName.Span, value.Span()), Name: fName.Lexeme, Expr: value})
				if !p.match(token.COMMA) {
					break
				}
			}
			end := p.expect(token.RBRACE, "expected '}'")
			return &ast.StructInitExpr{SpanVal: token.Merge(ident.Span, end.Span), Name: ident.Lexeme, Fields: fields}
		}
		return &ast.IdentifierExpr{SpanVal: ident.Span, Name: ident.Lexeme}
	}
	if p.match(token.LPAREN) {
		expr := p.parseExpr()
		p.expect(token.RPAREN, "expected ')'")
		return expr
	}
	if p.check(token.LBRACE) {
		return p.parseBlock()
	}
	if p.match(token.IF) {
		return p.parseIfExpr()
	}
	if p.match(token.MATCH) {
		return p.parseMatchExpr()
	}
	if p.match(token.UNSAFE) {
		marker := p.prev()
		block := p.parseBlock()
		return &ast.UnsafeExpr{SpanVal: token.Merge(marker.Span, block.Span()), Block: block}
	}
	if p.match(token.RAISE) {
		marker := p.prev()
		kind := p.expect(token.IDENT, "expected custom error name after raise")
		p.expect(token.LPAREN, "expected '(' after custom error name")
		message := p.parseExpr()
		end := p.expect(token.RPAREN, "expected ')'")
		return &ast.RaiseExpr{SpanVal: token.Merge(marker.Span, end.Span), Kind: kind.Lexeme, Message: message}
	}
	panic(p.errorHere("expected expression", ""))
}

func (p *parser) parseIfExpr() *ast.IfExpr {
	cond := p.parseExpr()
	thenBlock := p.parseBlock()
	var elseExpr ast.Expr
	if p.match(token.ELSE) {
		if p.match(token.IF) {
			elseExpr = p.parseIfExpr()
		} else if p.check(token.LBRACE) {
			elseExpr = p.parseBlock()
		} else {
			elseExpr = p.parseExpr()
		}
	}
	end := thenBlock.Span()
	if elseExpr != nil {
		end = elseExpr.Span()
	}
	return &ast.IfExpr{SpanVal: token.Merge(cond.Span(), end), Condition: cond, ThenBlock: thenBlock, ElseBranch: elseExpr}
}

func (p *parser) parseMatchExpr() *ast.MatchExpr {
	target := p.parseExpr()
	p.expect(token.LBRACE, "expected '{' after match expression")
	var arms []*ast.MatchArm
	p.skipSeparators()
	for !p.check(token.RBRACE) {
		pattern := p.parsePattern()
		p.expect(token.FATARROW, "expected '=>' in match arm")
		expr := p.parseExpr()
		arms = append(arms, &ast.MatchArm{SpanVal: token.Merge(pattern.Span(), expr.Span()), Pattern: pattern, Expr: expr})
		p.match(token.COMMA)
		p.skipSeparators()
	}
	end := p.expect(token.RBRACE, "expected '}'")
	return &ast.MatchExpr{SpanVal: token.Merge(target.Span(), end.Span), Target: target, Arms: arms}
}

func isUpperName(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}
