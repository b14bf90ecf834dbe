package parser

import (
	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/token"
)

func (p *parser) parseItem() ast.Item {
	isPub := p.match(token.PUB)
	isTask := p.match(token.TASK)
	if p.match(token.IMPORT) {
		if isPub || isTask {
			panic(p.errorHere("`import` cannot be prefixed with pub/task", ""))
		}
		return p.parseImportDecl()
	}
	if p.match(token.FN) {
		return p.parseFn(isPub, isTask)
	}
	if p.match(token.EXTERN) {
		return p.parseExternFn()
	}
	if p.match(token.STRUCT) {
		return p.parseStruct()
	}
	if p.match(token.ENUM) {
		return p.parseEnum()
	}
	if p.match(token.TRAIT) {
		return p.parseTrait()
	}
	if p.match(token.ERROR) {
		return p.parseErrorDecl()
	}
	panic(p.errorHere("expected item", "start with import/fn/struct/enum/trait/extern/error"))
}

func (p *parser) parseImportDecl() *ast.ImportDecl {
	path := p.expect(token.STRING, `expected import path string, e.g. "./util.mdr"`)
	return &ast.ImportDecl{SpanVal: path.Span, Path: unquote(path.Lexeme)}
}

func (p *parser) parseFn(isPub, isTask bool) *ast.FunctionDecl {
	name := p.expect(token.IDENT, "expected function name")
	generics := p.parseGenericParams()
	p.expect(token.LPAREN, "expected '('")
	params := p.parseParams()
	p.expect(token.RPAREN, "expected ')'")
	ret := p.parseOptionalReturn()
	body := p.parseBlock()
	return &ast.FunctionDecl{
		SpanVal:       token.Merge(name.Span, body.Span()),
		Name:          name.Lexeme,
		GenericParams: generics,
		Params:        params,
		ReturnType:    ret,
		Body:          body,
		IsTask:        isTask,
		IsPub:         isPub,
	}
}

func (p *parser) parseExternFn() *ast.ExternFunctionDecl {
	abi := "C"
	if p.check(token.STRING) {
		abi = unquote(p.advance().Lexeme)
	}
	p.expect(token.FN, "expected fn in extern declaration")
	name := p.expect(token.IDENT, "expected extern function name")
	p.expect(token.LPAREN, "expected '('")
	params := p.parseParams()
	p.expect(token.RPAREN, "expected ')'")
	ret := p.parseOptionalReturn()
	p.skipSeparators()
	return &ast.ExternFunctionDecl{
		SpanVal:    token.Merge(name.Span, p.prev().Span),
		ABI:        abi,
		Name:       name.Lexeme,
		Params:     params,
		ReturnType: ret,
	}
}

func (p *parser) parseStruct() *ast.StructDecl {
	name := p.expect(token.IDENT, "expected struct name")
	p.expect(token.LBRACE, "expected '{'")
	var fields []*ast.StructField
	p.skipSeparators()
	for !p.check(token.RBRACE) {
		fieldName := p.expect(token.IDENT, "expected field name")
		p.expect(token.COLON, "expected ':'")
		ty := p.parseType()
		fields = append(fields, &ast.StructField{
			SpanVal: token.Merge(fieldName.Span, ty.Span()), Name: fieldName.Lexeme, Type: ty,
		})
		p.match(token.COMMA)
		p.skipSeparators()
	}
	end := p.expect(token.RBRACE, "expected '}'")
	return &ast.StructDecl{SpanVal: token.Merge(name.Span, end.Span), Name: name.Lexeme, Fields: fields}
}

func (p *parser) parseEnum() *ast.EnumDecl {
	name := p.expect(token.IDENT, "expected enum name")
	p.expect(token.LBRACE, "expected '{'")
	var variants []*ast.EnumVariant
	p.skipSeparators()
	for !p.check(token.RBRACE) {
		varName := p.expect(token.IDENT, "expected variant name")
		var fields []*ast.StructField
		if p.match(token.LPAREN) {
			p.skipSeparators()
			for !p.check(token.RPAREN) {
				fName := p.expect(token.IDENT, "expected variant field name")
				p.expect(token.COLON, "expected ':'")
				ty := p.parseType()
				fields = append(fields, &ast.StructField{
					SpanVal: token.Merge(fName.Span, ty.Span()), Name: fName.Lexeme, Type: ty,
				})
				if !p.match(token.COMMA) {
					break
				}
			}
			p.expect(token.RPAREN, "expected ')'")
		}
		variants = append(variants, &ast.EnumVariant{
			SpanVal: token.Merge(varName.Span, p.prev().Span), Name: varName.Lexeme, Fields: fields,
		})
		p.match(token.COMMA)
		p.skipSeparators()
	}
	end := p.expect(token.RBRACE, "expected '}'")
	return &ast.EnumDecl{SpanVal: token.Merge(name.Span, end.Span), Name: name.Lexeme, Variants: variants}
}

func (p *parser) parseTrait() *ast.TraitDecl {
	name := p.expect(token.IDENT, "expected trait name")
	p.expect(token.LBRACE, "expected '{'")
	var methods []*ast.FunctionSig
	p.skipSeparators()
	for !p.check(token.RBRACE) {
		p.expect(token.FN, "expected fn method declaration")
		mName := p.expect(token.IDENT, "expected method name")
		generics := p.parseGenericParams()
		p.expect(token.LPAREN, "expected '('")
		params := p.parseParams()
		p.expect(token.RPAREN, "expected ')'")
		ret := p.parseOptionalReturn()
		methods = append(methods, &ast.FunctionSig{
			SpanVal: token.Merge(mName.Span, p.prev().Span), Name: mName.Lexeme,
			GenericParams: generics, Params: params, ReturnType: ret,
		})
		p.skipSeparators()
	}
	end := p.expect(token.RBRACE, "expected '}'")
	return &ast.TraitDecl{SpanVal: token.Merge(name.Span, end.Span), Name: name.Lexeme, Methods: methods}
}

func (p *parser) parseErrorDecl() *ast.ErrorDecl {
	name := p.expect(token.IDENT, "expected custom error name")
	return &ast.ErrorDecl{SpanVal: name.Span, Name: name.Lexeme}
}

func (p *parser) parseParams() []*ast.Param {
	var params []*ast.Param
	p.skipSeparators()
	for !p.check(token.RPAREN) {
		pName := p.expect(token.IDENT, "expected parameter name")
		p.expect(token.COLON, "expected ':'")
		pTy := p.parseType()
		params = append(params, &ast.Param{SpanVal: token.Merge(pName.Span, pTy.Span()), Name: pName.Lexeme, Type: pTy})
		if !p.match(token.COMMA) {
			break
		}
		p.skipSeparators()
	}
	return params
}

func (p *parser) parseOptionalReturn() *ast.TypeRef {
	if p.match(token.ARROW) {
		return p.parseType()
	}
	return nil
}

func (p *parser) parseGenericParams() []string {
	var params []string
	if !p.match(token.LBRACKET) {
		return params
	}
	for {
		params = append(params, p.expect(token.IDENT, "expected generic parameter name").Lexeme)
		if p.match(token.COLON) {
			p.expect(token.IDENT, "expected trait bound name")
		}
		if p.match(token.COMMA) {
			continue
		}
		p.expect(token.RBRACKET, "expected ']'")
		break
	}
	return params
}
