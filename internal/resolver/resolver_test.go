package resolver

import (
	"testing"

	"github.com/midori-lang/midorc/internal/lexer"
	"github.com/midori-lang/midorc/internal/parser"
)

func resolveSource(t *testing.T, src string) (*Resolution, error) {
	t.Helper()
	toks, lexErr := lexer.Tokenize("<test>", src)
	if lexErr != nil {
		t.Fatalf("unexpected lex diagnostic: %v", lexErr)
	}
	prog, parseErr := parser.Parse(toks)
	if parseErr != nil {
		t.Fatalf("unexpected parse diagnostic: %v", parseErr)
	}
	res, resolveErr := ResolveNames(prog)
	if resolveErr != nil {
		return nil, resolveErr
	}
	return res, nil
}

func TestResolveBasicProgram(t *testing.T) {
	res, err := resolveSource(t, `
enum Shape {
  Circle(radius: Float),
  Point
}

fn main() -> Int { 0 }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.Functions["main"]; !ok {
		t.Fatal("expected main to be registered")
	}
	enumSym, ok := res.Enums["Shape"]
	if !ok || len(enumSym.Variants) != 2 {
		t.Fatalf("expected Shape enum with 2 variants, got %+v", enumSym)
	}
	if enumSym.Variants["Point"].Index != 1 {
		t.Fatalf("expected Point at index 1, got %d", enumSym.Variants["Point"].Index)
	}
	owners := res.VariantsByName["Circle"]
	if len(owners) != 1 || owners[0].EnumName != "Shape" {
		t.Fatalf("expected Circle to be owned by Shape, got %+v", owners)
	}
}

func TestResolveMissingMain(t *testing.T) {
	_, err := resolveSource(t, "fn helper() -> Int { 1 }\n")
	if err == nil {
		t.Fatal("expected missing entry point diagnostic")
	}
}

func TestResolveDuplicateFunction(t *testing.T) {
	_, err := resolveSource(t, "fn main() -> Int { 0 }\nfn main() -> Int { 1 }\n")
	if err == nil {
		t.Fatal("expected duplicate function diagnostic")
	}
}

func TestResolveDuplicateEnumVariant(t *testing.T) {
	_, err := resolveSource(t, `
enum E {
  A,
  A
}
fn main() -> Int { 0 }
`)
	if err == nil {
		t.Fatal("expected duplicate enum variant diagnostic")
	}
}

func TestResolveAmbiguousVariantAcrossEnums(t *testing.T) {
	res, err := resolveSource(t, `
enum A { Shared }
enum B { Shared }
fn main() -> Int { 0 }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	owners := res.VariantsByName["Shared"]
	if len(owners) != 2 {
		t.Fatalf("expected 2 owners for ambiguous variant, got %d", len(owners))
	}
}
