package lexer

import (
	"testing"

	"github.com/midori-lang/midorc/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeBasicFunction(t *testing.T) {
	src := "fn add(a: Int, b: Int) -> Int {\n  a + b\n}\n"
	toks, err := Tokenize("<test>", src)
	if err != nil {
		t.Fatalf("unexpected diagnostic: %v", err)
	}
	if toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("last token should be EOF, got %v", toks[len(toks)-1].Kind)
	}
	want := token.FN
	if toks[0].Kind != want {
		t.Fatalf("expected first token %v, got %v", want, toks[0].Kind)
	}
}

func TestTokenizeOperators(t *testing.T) {
	src := "a := 1\nb += 2\nc ..= d\ne -> f => g"
	toks, err := Tokenize("<test>", src)
	if err != nil {
		t.Fatalf("unexpected diagnostic: %v", err)
	}
	ks := kinds(toks)
	wantContains := []token.Kind{token.COLONEQ, token.PLUSEQ, token.DOTDOTEQ, token.ARROW, token.FATARROW}
	for _, w := range wantContains {
		found := false
		for _, k := range ks {
			if k == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected token kind %v in stream, not found", w)
		}
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize("<test>", `let s = "unterminated`)
	if err == nil {
		t.Fatal("expected a diagnostic for unterminated string literal")
	}
	if err.Code != "MD1002" {
		t.Errorf("expected MD1002, got %s", err.Code)
	}
}

func TestTokenizeUnterminatedCharLiteral(t *testing.T) {
	_, err := Tokenize("<test>", "let c = 'a")
	if err == nil {
		t.Fatal("expected a diagnostic for unterminated char literal")
	}
	if err.Code != "MD1003" {
		t.Errorf("expected MD1003, got %s", err.Code)
	}
}

func TestTokenizeInvalidCharacter(t *testing.T) {
	_, err := Tokenize("<test>", "let x = 1 @ 2")
	if err == nil {
		t.Fatal("expected a diagnostic for invalid character")
	}
	if err.Code != "MD1001" {
		t.Errorf("expected MD1001, got %s", err.Code)
	}
}

func TestTokenizeSkipsComments(t *testing.T) {
	src := "// comment\nlet x = 1 /* block\ncomment */ + 2\n"
	toks, err := Tokenize("<test>", src)
	if err != nil {
		t.Fatalf("unexpected diagnostic: %v", err)
	}
	for _, tk := range toks {
		if tk.Kind == token.ILLEGAL {
			t.Fatalf("unexpected illegal token: %v", tk)
		}
	}
}

func TestTokenizeUnterminatedBlockComment(t *testing.T) {
	_, err := Tokenize("<test>", "/* never closed")
	if err == nil {
		t.Fatal("expected a diagnostic for unterminated block comment")
	}
	if err.Code != "MD1005" {
		t.Errorf("expected MD1005, got %s", err.Code)
	}
}

func TestTokenizeFloatVsIntAndDotDot(t *testing.T) {
	toks, err := Tokenize("<test>", "1.5 1..2")
	if err != nil {
		t.Fatalf("unexpected diagnostic: %v", err)
	}
	if toks[0].Kind != token.FLOAT || toks[0].Lexeme != "1.5" {
		t.Fatalf("expected FLOAT 1.5, got %v %q", toks[0].Kind, toks[0].Lexeme)
	}
	if toks[1].Kind != token.INT || toks[2].Kind != token.DOTDOT || toks[3].Kind != token.INT {
		t.Fatalf("expected INT .. INT for range, got %v", kinds(toks[1:4]))
	}
}
