package lower

import (
	"testing"

	"github.com/midori-lang/midorc/internal/checker"
	"github.com/midori-lang/midorc/internal/ir"
	"github.com/midori-lang/midorc/internal/lexer"
	"github.com/midori-lang/midorc/internal/parser"
	"github.com/midori-lang/midorc/internal/resolver"
)

func lowerSource(t *testing.T, src string) *ir.ProgramIR {
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
	out, lowerErr := Lower(tp)
	if lowerErr != nil {
		t.Fatalf("unexpected lowering diagnostic: %v", lowerErr)
	}
	return out
}

func countInstr[T ir.Instr](fn *ir.FunctionIR) int {
	n := 0
	for _, name := range fn.BlockOrder {
		for _, instr := range fn.Blocks[name].Instructions {
			if _, ok := instr.(T); ok {
				n++
			}
		}
	}
	return n
}

func TestLowerBasicArithmetic(t *testing.T) {
	p := lowerSource(t, `
fn main() -> Int {
  let a = 1
  let b = 2
  a + b
}
`)
	fn := p.Functions["main"]
	if fn == nil {
		t.Fatal("expected main in lowered program")
	}
	if countInstr[*ir.BinOpInstr](fn) == 0 {
		t.Fatal("expected at least one BinOp instruction")
	}
	entry := fn.Blocks[fn.Entry]
	if entry.Terminator == nil {
		t.Fatal("entry block must end in a terminator")
	}
	ret, ok := entry.Terminator.(*ir.ReturnTerm)
	if !ok {
		t.Fatalf("expected a Return terminator, got %T", entry.Terminator)
	}
	if !ret.HasValue {
		t.Fatal("main's implicit tail return must carry a value")
	}
}

func TestLowerMainTruncatesReturnTo32Bits(t *testing.T) {
	p := lowerSource(t, `fn main() -> Int { 7 }`)
	fn := p.Functions["main"]
	entry := fn.Blocks[fn.Entry]
	var maskConst *ir.ConstInstr
	for _, instr := range entry.Instructions {
		if c, ok := instr.(*ir.ConstInstr); ok && c.Value == "4294967295" {
			maskConst = c
		}
	}
	if maskConst == nil {
		t.Fatal("expected a 4294967295 mask constant truncating main's return value")
	}
	lastInstr := entry.Instructions[len(entry.Instructions)-1]
	bo, ok := lastInstr.(*ir.BinOpInstr)
	if !ok || bo.Op != "&" {
		t.Fatalf("expected the truncation to end in a BinOp &, got %#v", lastInstr)
	}
	ret := entry.Terminator.(*ir.ReturnTerm)
	if ret.Value != bo.Target {
		t.Fatal("main's Return must use the truncated value")
	}
}

func TestLowerIfPhisResultAcrossBothArms(t *testing.T) {
	p := lowerSource(t, `
fn main() -> Int {
  let x = if true { 1 } else { 2 }
  x
}
`)
	fn := p.Functions["main"]
	if countInstr[*ir.PhiInstr](fn) == 0 {
		t.Fatal("expected a Phi instruction joining the if's two arms")
	}
}

func TestLowerMatchLinearizesIntoTestArmJoinBlocks(t *testing.T) {
	p := lowerSource(t, `
enum Shape {
  Circle(radius: Float),
  Point
}

fn area(s: Shape) -> Float {
  match s {
    Circle(radius) => radius,
    Point => 0.0
  }
}

fn main() -> Int { 0 }
`)
	fn := p.Functions["area"]
	if fn == nil {
		t.Fatal("expected area in lowered program")
	}
	sawArm, sawJoin := false, false
	for _, name := range fn.BlockOrder {
		switch {
		case hasPrefix(name, "match_arm"):
			sawArm = true
		case hasPrefix(name, "match_join"):
			sawJoin = true
		}
	}
	if !sawArm || !sawJoin {
		t.Fatalf("expected match_arm and match_join blocks, got %v", fn.BlockOrder)
	}
	if countInstr[*ir.EnumTagInstr](fn) == 0 {
		t.Fatal("expected an EnumTag instruction testing the Circle/Point tag")
	}
	if countInstr[*ir.EnumFieldInstr](fn) == 0 {
		t.Fatal("expected an EnumField instruction extracting Circle's radius")
	}
	if countInstr[*ir.PhiInstr](fn) == 0 {
		t.Fatal("expected a Phi joining the two arms' results")
	}

	layout, ok := p.Enums["Shape"]
	if !ok {
		t.Fatal("expected a Shape layout in ProgramIR.Enums")
	}
	if layout.PayloadSlots != 1 {
		t.Fatalf("expected PayloadSlots 1 (Circle's single radius field), got %d", layout.PayloadSlots)
	}
}

func TestLowerPostfixTryLowersToOkErrBlocks(t *testing.T) {
	p := lowerSource(t, `
fn parse(s: String) -> Result[Int, String] {
  Ok(1)
}

fn run(s: String) -> Result[Int, String] {
  let n = parse(s)?
  Ok(n)
}

fn main() -> Int { 0 }
`)
	fn := p.Functions["run"]
	if fn == nil {
		t.Fatal("expected run in lowered program")
	}
	sawOk, sawErr := false, false
	for _, name := range fn.BlockOrder {
		if hasPrefix(name, "try_ok") {
			sawOk = true
		}
		if hasPrefix(name, "try_err") {
			sawErr = true
		}
	}
	if !sawOk || !sawErr {
		t.Fatalf("expected try_ok and try_err blocks, got %v", fn.BlockOrder)
	}

	var errReturn *ir.ReturnTerm
	for _, name := range fn.BlockOrder {
		if hasPrefix(name, "try_err") {
			errReturn, _ = fn.Blocks[name].Terminator.(*ir.ReturnTerm)
		}
	}
	if errReturn == nil || !errReturn.HasValue {
		t.Fatal("expected the try_err block to return the original Result value")
	}
}

func TestLowerRaiseConstructsErrVariantAndReturns(t *testing.T) {
	p := lowerSource(t, `
error Boom

fn fails() -> Result[Int, String] {
  raise Boom("boom")
}

fn main() -> Int { 0 }
`)
	fn := p.Functions["fails"]
	if fn == nil {
		t.Fatal("expected fails in lowered program")
	}
	if countInstr[*ir.EnumConstructInstr](fn) == 0 {
		t.Fatal("expected an EnumConstruct building the Err variant")
	}
	entry := fn.Blocks[fn.Entry]
	ret, ok := entry.Terminator.(*ir.ReturnTerm)
	if !ok || !ret.HasValue {
		t.Fatal("expected raise to terminate its block with a value-carrying Return")
	}
}

func TestLowerProgramEnumsIncludeOptionInstantiation(t *testing.T) {
	p := lowerSource(t, `
fn find(x: Int) -> Option[Int] {
  if x > 0 { Some(x) } else { None() }
}

fn main() -> Int { 0 }
`)
	if _, ok := p.Enums["Option[Int]"]; !ok {
		t.Fatalf("expected an Option[Int] layout, got keys %v", p.EnumOrder)
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
