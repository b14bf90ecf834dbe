// Package lexer turns Midori source text into a flat token stream.
package lexer

import (
	"github.com/midori-lang/midorc/internal/diagnostics"
	"github.com/midori-lang/midorc/internal/token"
)

type lexer struct {
	file         string
	input        string
	position     int // index of the current byte
	readPosition int // index of the next byte
	ch           byte
	line         int
	column       int
}

// Tokenize scans src in its entirety, returning every token up to and
// including a trailing EOF, or the first lexical Diagnostic encountered.
func Tokenize(file, src string) ([]token.Token, *diagnostics.Diagnostic) {
	l := &lexer{file: file, input: src, line: 1, column: 0}
	l.readChar()

	var out []token.Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}

func (l *lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *lexer) atEnd() bool { return l.ch == 0 }

func (l *lexer) span(startByte, startLine, startCol int) token.Span {
	return token.Span{File: l.file, StartByte: startByte, EndByte: l.position, Line: startLine, Column: startCol}
}

func (l *lexer) nextToken() (token.Token, *diagnostics.Diagnostic) {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
			continue
		case '/':
			if l.peekChar() == '/' {
				l.skipLineComment()
				continue
			}
			if l.peekChar() == '*' {
				if err := l.skipBlockComment(); err != nil {
					return token.Token{}, err
				}
				continue
			}
		}
		break
	}

	startByte, startLine, startCol := l.position, l.line, l.column

	if l.atEnd() {
		return token.Token{Kind: token.EOF, Lexeme: "", Span: l.span(startByte, startLine, startCol)}, nil
	}

	switch {
	case l.ch == '\n':
		l.readChar()
		return token.Token{Kind: token.NEWLINE, Lexeme: "\n", Span: l.span(startByte, startLine, startCol)}, nil
	case isAlpha(l.ch):
		return l.readIdentifier(startByte, startLine, startCol), nil
	case isDigit(l.ch):
		return l.readNumber(startByte, startLine, startCol), nil
	case l.ch == '"':
		return l.readString(startByte, startLine, startCol)
	case l.ch == '\'':
		return l.readChar2(startByte, startLine, startCol)
	default:
		return l.readSymbol(startByte, startLine, startCol)
	}
}

func (l *lexer) skipLineComment() {
	l.readChar()
	l.readChar()
	for !l.atEnd() && l.ch != '\n' {
		l.readChar()
	}
}

func (l *lexer) skipBlockComment() *diagnostics.Diagnostic {
	startByte, startLine, startCol := l.position, l.line, l.column
	l.readChar()
	l.readChar()
	for !l.atEnd() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return nil
		}
		l.readChar()
	}
	return diagnostics.NewCodedWithHint("MD1005", l.span(startByte, startLine, startCol),
		"unterminated block comment", "add closing */")
}

func (l *lexer) readIdentifier(startByte, startLine, startCol int) token.Token {
	for isAlnum(l.ch) {
		l.readChar()
	}
	text := l.input[startByte:l.position]
	kind, ok := token.Keywords[text]
	if !ok {
		kind = token.IDENT
	}
	return token.Token{Kind: kind, Lexeme: text, Span: l.span(startByte, startLine, startCol)}
}

func (l *lexer) readNumber(startByte, startLine, startCol int) token.Token {
	for isDigit(l.ch) {
		l.readChar()
	}
	kind := token.INT
	if l.ch == '.' && isDigit(l.peekChar()) {
		kind = token.FLOAT
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	text := l.input[startByte:l.position]
	return token.Token{Kind: kind, Lexeme: text, Span: l.span(startByte, startLine, startCol)}
}

func (l *lexer) readString(startByte, startLine, startCol int) (token.Token, *diagnostics.Diagnostic) {
	l.readChar()
	escaped := false
	for !l.atEnd() {
		ch := l.ch
		l.readChar()
		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			lexeme := l.input[startByte:l.position]
			return token.Token{Kind: token.STRING, Lexeme: lexeme, Span: l.span(startByte, startLine, startCol)}, nil
		}
	}
	return token.Token{}, diagnostics.NewCodedWithHint("MD1002", l.span(startByte, startLine, startCol),
		"unterminated string literal", "add a closing quote")
}

func (l *lexer) readChar2(startByte, startLine, startCol int) (token.Token, *diagnostics.Diagnostic) {
	l.readChar()
	if l.atEnd() || l.ch == '\n' {
		return token.Token{}, diagnostics.NewCodedWithHint("MD1003", l.span(startByte, startLine, startCol),
			"unterminated char literal", "char literals must end with a single quote")
	}
	if l.ch == '\\' {
		l.readChar()
		l.readChar()
	} else {
		l.readChar()
	}
	if l.atEnd() || l.ch == '\n' {
		return token.Token{}, diagnostics.NewCodedWithHint("MD1003", l.span(startByte, startLine, startCol),
			"unterminated char literal", "char literals must end with a single quote")
	}
	if l.ch != '\'' {
		return token.Token{}, diagnostics.NewCodedWithHint("MD1004", l.span(startByte, startLine, startCol),
			"invalid char literal", "char literal must contain exactly one character")
	}
	l.readChar()
	lexeme := l.input[startByte:l.position]
	return token.Token{Kind: token.CHAR, Lexeme: lexeme, Span: l.span(startByte, startLine, startCol)}, nil
}

// twoCharOps maps two-byte lookahead sequences to their token kind. Checked
// after the three-byte `..=` form and before single-char forms, mirroring the teacher's lookahead
// tables in internal/lexer/lexer.go.
var twoCharOps = map[string]token.Kind{
	"==": token.EQ, "!=": token.NE, "<=": token.LE, ">=": token.GE,
	"&&": token.ANDAND, "||": token.OROR,
	"+=": token.PLUSEQ, "-=": token.MINUSEQ, "*=": token.STAREQ,
	"/=": token.SLASHEQ, "%=": token.PERCENTEQ, ":=": token.COLONEQ,
	"..": token.DOTDOT, "->": token.ARROW, "=>": token.FATARROW,
}

var oneCharOps = map[byte]token.Kind{
	'+': token.PLUS, '-': token.MINUS, '*': token.STAR, '/': token.SLASH,
	'%': token.PERCENT, '=': token.ASSIGN, '<': token.LT, '>': token.GT,
	'!': token.BANG, '{': token.LBRACE, '}': token.RBRACE, '(': token.LPAREN,
	')': token.RPAREN, '[': token.LBRACKET, ']': token.RBRACKET, ',': token.COMMA,
	':': token.COLON, ';': token.SEMI, '.': token.DOT, '?': token.QUESTION,
	'&': token.AMP,
}

func (l *lexer) readSymbol(startByte, startLine, startCol int) (token.Token, *diagnostics.Diagnostic) {
	three := l.peekN(3)
	if three == "..=" {
		l.readChar()
		l.readChar()
		l.readChar()
		return token.Token{Kind: token.DOTDOTEQ, Lexeme: three, Span: l.span(startByte, startLine, startCol)}, nil
	}

	two := l.peekN(2)
	if kind, ok := twoCharOps[two]; ok {
		l.readChar()
		l.readChar()
		return token.Token{Kind: kind, Lexeme: two, Span: l.span(startByte, startLine, startCol)}, nil
	}

	ch := l.ch
	l.readChar()
	kind, ok := oneCharOps[ch]
	if !ok {
		return token.Token{}, diagnostics.NewCodedWithHint("MD1001", l.span(startByte, startLine, startCol),
			"invalid character "+quoteByte(ch), "remove or escape the character")
	}
	return token.Token{Kind: kind, Lexeme: string(ch), Span: l.span(startByte, startLine, startCol)}, nil
}

func (l *lexer) peekN(n int) string {
	end := l.position + n
	if end > len(l.input) {
		end = len(l.input)
	}
	return l.input[l.position:end]
}

func quoteByte(b byte) string {
	return "'" + string(b) + "'"
}

func isAlpha(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isAlnum(b byte) bool { return isAlpha(b) || isDigit(b) }
