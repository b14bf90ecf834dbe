package borrow

import (
	"strings"
	"testing"

	"github.com/midori-lang/midorc/internal/checker"
	"github.com/midori-lang/midorc/internal/lexer"
	"github.com/midori-lang/midorc/internal/parser"
	"github.com/midori-lang/midorc/internal/resolver"
)

func checkBorrow(t *testing.T, src string) *TypedResult {
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
	tp, checkErr := checker.CheckProgram(prog, res)
	if checkErr != nil {
		t.Fatalf("unexpected check diagnostic: %v", checkErr)
	}
	return &TypedResult{tp: tp}
}

type TypedResult struct {
	tp *checker.TypedProgram
}

func TestBorrowUseAfterMoveDetected(t *testing.T) {
	tr := checkBorrow(t, `
fn consume(s: String) -> Void {}

fn main() -> Int {
  let a = "hi"
  let b = a
  consume(b)
  consume(a)
  0
}
`)
	d := BorrowCheck(tr.tp)
	if d == nil {
		t.Fatal("expected a diagnostic, got none")
	}
	if !strings.Contains(d.Code, "MD4") {
		t.Fatalf("expected a borrow-pass code, got %s", d.Code)
	}
}

func TestBorrowDoubleMutableBorrowRejected(t *testing.T) {
	tr := checkBorrow(t, `
fn main() -> Int {
  var x = 1
  let r1 = &mut x
  let r2 = &mut x
  0
}
`)
	d := BorrowCheck(tr.tp)
	if d == nil {
		t.Fatal("expected a diagnostic for a second live mutable borrow")
	}
	if d.Code != "MD4002" {
		t.Fatalf("expected MD4002, got %s", d.Code)
	}
}

func TestBorrowImmutableWhileMutablyBorrowedRejected(t *testing.T) {
	tr := checkBorrow(t, `
fn main() -> Int {
  var x = 1
  let r1 = &mut x
  let r2 = &x
  0
}
`)
	d := BorrowCheck(tr.tp)
	if d == nil {
		t.Fatal("expected a diagnostic for an immutable borrow while mutably borrowed")
	}
	if d.Code != "MD4003" {
		t.Fatalf("expected MD4003, got %s", d.Code)
	}
}

func TestBorrowMultipleImmutableBorrowsAllowed(t *testing.T) {
	tr := checkBorrow(t, `
fn main() -> Int {
  let x = 1
  let r1 = &x
  let r2 = &x
  0
}
`)
	if d := BorrowCheck(tr.tp); d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
}

func TestBorrowBranchUnionMovesInEitherArmCountsAsMoved(t *testing.T) {
	tr := checkBorrow(t, `
fn consume(s: String) -> Void {}

fn main() -> Int {
  let a = "hi"
  if true {
    let b = a
    consume(b)
    0
  } else {
    0
  }
  let c = a
  0
}
`)
	d := BorrowCheck(tr.tp)
	if d == nil {
		t.Fatal("expected a use-after-move diagnostic once the then-branch moves 'a'")
	}
	if d.Code != "MD4001" {
		t.Fatalf("expected MD4001, got %s", d.Code)
	}
}

func TestBorrowReleasedAtEndOfBranchDoesNotLeak(t *testing.T) {
	tr := checkBorrow(t, `
fn main() -> Int {
  var x = 1
  if true {
    let r = &mut x
    0
  } else {
    0
  }
  let r2 = &mut x
  0
}
`)
	if d := BorrowCheck(tr.tp); d != nil {
		t.Fatalf("unexpected diagnostic: borrow inside a branch should release at that branch's end: %v", d)
	}
}

func TestBorrowMatchArmMovingInOneArmOnlyIsUnionedAsMoved(t *testing.T) {
	tr := checkBorrow(t, `
enum Shape {
  Circle(radius: Float),
  Point
}

fn consume(s: String) -> Void {}

fn describe(shape: Shape) -> Int {
  let a = "hi"
  match shape {
    Circle(radius) => {
      let b = a
      consume(b)
    },
    Point => {}
  }
  let c = a
  0
}

fn main() -> Int { 0 }
`)
	d := BorrowCheck(tr.tp)
	if d == nil {
		t.Fatal("expected use of 'a' after the match to fail since one arm moved it")
	}
	if d.Code != "MD4001" {
		t.Fatalf("expected MD4001, got %s", d.Code)
	}
}
