package parser

import (
	"testing"

	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/lexer"
)

func parseSource(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks, lexErr := lexer.Tokenize("<test>", src)
	if lexErr != nil {
		t.Fatalf("unexpected lex diagnostic: %v", lexErr)
	}
	prog, parseErr := Parse(toks)
	if parseErr != nil {
		t.Fatalf("unexpected parse diagnostic: %v", parseErr)
	}
	return prog
}

func TestParseSimpleFunction(t *testing.T) {
	prog := parseSource(t, "fn add(a: Int, b: Int) -> Int {\n  a + b\n}\n")
	if len(prog.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(prog.Items))
	}
	fn, ok := prog.Items[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("expected FunctionDecl, got %T", prog.Items[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
	if fn.Body.Tail == nil {
		t.Fatal("expected tail expression")
	}
}

func TestParseEnumWithFields(t *testing.T) {
	prog := parseSource(t, "enum Shape {\n  Circle(radius: Float),\n  Point\n}\n")
	decl, ok := prog.Items[0].(*ast.EnumDecl)
	if !ok {
		t.Fatalf("expected EnumDecl, got %T", prog.Items[0])
	}
	if len(decl.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(decl.Variants))
	}
	if len(decl.Variants[0].Fields) != 1 || decl.Variants[0].Fields[0].Name != "radius" {
		t.Fatalf("unexpected Circle fields: %+v", decl.Variants[0].Fields)
	}
	if len(decl.Variants[1].Fields) != 0 {
		t.Fatalf("expected Point to have no fields")
	}
}

func TestParseMatchExpr(t *testing.T) {
	prog := parseSource(t, `
fn describe(s: Shape) -> Int {
  match s {
    Circle(radius) => 1,
    Point => 0,
    _ => -1
  }
}
`)
	fn := prog.Items[0].(*ast.FunctionDecl)
	m, ok := fn.Body.Tail.(*ast.MatchExpr)
	if !ok {
		t.Fatalf("expected MatchExpr tail, got %T", fn.Body.Tail)
	}
	if len(m.Arms) != 3 {
		t.Fatalf("expected 3 arms, got %d", len(m.Arms))
	}
	if _, ok := m.Arms[0].Pattern.(*ast.VariantPattern); !ok {
		t.Fatalf("expected VariantPattern, got %T", m.Arms[0].Pattern)
	}
	if _, ok := m.Arms[2].Pattern.(*ast.WildcardPattern); !ok {
		t.Fatalf("expected WildcardPattern, got %T", m.Arms[2].Pattern)
	}
}

func TestParseTryAndRaise(t *testing.T) {
	prog := parseSource(t, `
error NotFound

fn lookup() -> Result[Int, NotFound] {
  let x = maybeGet()?
  raise NotFound("missing")
}
`)
	if len(prog.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(prog.Items))
	}
	fn := prog.Items[1].(*ast.FunctionDecl)
	letStmt := fn.Body.Statements[0].(*ast.LetStmt)
	if _, ok := letStmt.Expr.(*ast.PostfixTryExpr); !ok {
		t.Fatalf("expected PostfixTryExpr, got %T", letStmt.Expr)
	}
	if _, ok := fn.Body.Tail.(*ast.RaiseExpr); !ok {
		t.Fatalf("expected RaiseExpr tail, got %T", fn.Body.Tail)
	}
}

func TestParseGenericFunctionAndPointerTypes(t *testing.T) {
	prog := parseSource(t, "fn identity[T](x: T) -> T { x }\nextern \"C\" fn raw(p: *mut Int) -> Void\n")
	fn := prog.Items[0].(*ast.FunctionDecl)
	if len(fn.GenericParams) != 1 || fn.GenericParams[0] != "T" {
		t.Fatalf("unexpected generic params: %+v", fn.GenericParams)
	}
	ext := prog.Items[1].(*ast.ExternFunctionDecl)
	if !ext.Params[0].Type.IsPtr || !ext.Params[0].Type.IsMutPtr {
		t.Fatalf("expected *mut Int param, got %+v", ext.Params[0].Type)
	}
}

func TestParseMissingClosingBraceReportsDiagnostic(t *testing.T) {
	toks, lexErr := lexer.Tokenize("<test>", "fn broken() -> Int {\n  1 + 2\n")
	if lexErr != nil {
		t.Fatalf("unexpected lex diagnostic: %v", lexErr)
	}
	_, err := Parse(toks)
	if err == nil {
		t.Fatal("expected a parse diagnostic for missing '}'")
	}
}
