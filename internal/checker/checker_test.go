package checker

import (
	"testing"

	"github.com/midori-lang/midorc/internal/lexer"
	"github.com/midori-lang/midorc/internal/parser"
	"github.com/midori-lang/midorc/internal/resolver"
	"github.com/midori-lang/midorc/internal/types"
)

func checkSource(t *testing.T, src string) (*TypedProgram, error) {
	t.Helper()
	toks, lexErr := lexer.Tokenize("<test>", src)
	if lexErr != nil {
		t.Fatalf("unexpected lex diagnostic: %v", lexErr)
	}
	prog, parseErr := parser.Parse(toks)
	if parseErr != nil {
		t.Fatalf("unexpected parse diagnostic: %v", parseErr)
	}
	res, resolveErr := resolver.ResolveNames(prog)
	if resolveErr != nil {
		t.Fatalf("unexpected resolve diagnostic: %v", resolveErr)
	}
	tp, checkErr := CheckProgram(prog, res)
	if checkErr != nil {
		return nil, checkErr
	}
	return tp, nil
}

func TestCheckBasicArithmetic(t *testing.T) {
	tp, err := checkSource(t, "fn main() -> Int {\n  let a = 1\n  let b = 2\n  a + b\n}\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn := tp.Functions["main"]
	if !fn.LocalTypes["a"].Equal(types.Int) {
		t.Fatalf("expected a: Int, got %s", fn.LocalTypes["a"])
	}
}

func TestCheckTypeMismatch(t *testing.T) {
	_, err := checkSource(t, `fn main() -> Int { let a = 1.0; a + 2 }`)
	if err == nil {
		t.Fatal("expected a type mismatch diagnostic")
	}
}

func TestCheckGenericMonomorphization(t *testing.T) {
	tp, err := checkSource(t, `
fn identity[T](x: T) -> T { x }
fn main() -> Int { identity(42) }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mainFn := tp.Functions["main"]
	call := mainFn.Decl.Body.Tail
	if ty, ok := mainFn.ExprTypes[call]; !ok || !ty.Equal(types.Int) {
		t.Fatalf("expected identity(42) to resolve to Int, got %v", ty)
	}
}

func TestCheckExhaustiveMatchRequired(t *testing.T) {
	_, err := checkSource(t, `
enum Shape {
  Circle(radius: Float),
  Point
}
fn area(s: Shape) -> Float {
  match s {
    Circle(radius) => radius
  }
}
fn main() -> Int { 0 }
`)
	if err == nil {
		t.Fatal("expected non-exhaustive match diagnostic")
	}
}

func TestCheckExhaustiveMatchWithWildcardPasses(t *testing.T) {
	_, err := checkSource(t, `
enum Shape {
  Circle(radius: Float),
  Point
}
fn area(s: Shape) -> Float {
  match s {
    Circle(radius) => radius,
    _ => 0.0
  }
}
fn main() -> Int { 0 }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckAmbiguousVariantConstructor(t *testing.T) {
	_, err := checkSource(t, `
enum A { Shared(x: Int) }
enum B { Shared(x: Int) }
fn main() -> Int {
  let v = Shared(1)
  0
}
`)
	if err == nil {
		t.Fatal("expected ambiguous variant constructor diagnostic")
	}
}

func TestCheckTryOperatorRequiresResultReturn(t *testing.T) {
	_, err := checkSource(t, `
fn helper() -> Result[Int, String] { Ok(1) }
fn main() -> Int {
  let v = helper()?
  0
}
`)
	if err == nil {
		t.Fatal("expected `?` usage diagnostic outside Result-returning function")
	}
}

func TestCheckRaiseRequiresStringLiteralMessage(t *testing.T) {
	_, err := checkSource(t, `
error BadInput

fn validate() -> Result[Int, String] {
  let msg = "oops"
  raise BadInput(msg)
}
fn main() -> Int { 0 }
`)
	if err == nil {
		t.Fatal("expected `raise` message diagnostic for non-literal message")
	}
}

func TestCheckRaiseWithLiteralMessagePasses(t *testing.T) {
	_, err := checkSource(t, `
error BadInput

fn validate() -> Result[Int, String] {
  raise BadInput("bad")
}
fn main() -> Int { 0 }
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckImmutableAssignmentRejected(t *testing.T) {
	_, err := checkSource(t, `
fn main() -> Int {
  let x = 1
  x = 2
  x
}
`)
	if err == nil {
		t.Fatal("expected cannot-assign-to-immutable diagnostic")
	}
}
