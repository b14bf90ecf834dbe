package pipeline

import (
	"testing"

	"github.com/midori-lang/midorc/internal/config"
)

func TestCompileProducesLoweredIR(t *testing.T) {
	out, warnings, d := Compile(`
fn main() -> Int {
  let a = 1
  let b = 2
  a + b
}
`, "<test>", config.Default())
	if d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if out == nil {
		t.Fatal("expected a non-nil ProgramIR")
	}
	if out.CompileID == "" {
		t.Fatal("expected Compile to assign a CompileID")
	}
	if _, ok := out.Functions["main"]; !ok {
		t.Fatal("expected main in the compiled program")
	}
}

func TestCompileReportsFirstDiagnostic(t *testing.T) {
	_, _, d := Compile(`fn main() -> Int { let a = 1.0; a + 2 }`, "<test>", config.Default())
	if d == nil {
		t.Fatal("expected a type-mismatch diagnostic")
	}
}

func TestCompileEnforcesExprDepthLimit(t *testing.T) {
	deep := "fn main() -> Int { "
	for i := 0; i < 200; i++ {
		deep += "("
	}
	deep += "1"
	for i := 0; i < 200; i++ {
		deep += ")"
	}
	deep += " }"

	opts := config.Default()
	opts.MaxExprDepth = 10
	_, _, d := Compile(deep, "<test>", opts)
	if d == nil {
		t.Fatal("expected a diagnostic once expression nesting exceeds MaxExprDepth")
	}
}

func TestCompileTwiceYieldsSameBlockCount(t *testing.T) {
	src := `
fn main() -> Int {
  if true { 1 } else { 2 }
}
`
	first, _, d := Compile(src, "<test>", config.Default())
	if d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	second, _, d := Compile(src, "<test>", config.Default())
	if d != nil {
		t.Fatalf("unexpected diagnostic: %v", d)
	}
	if len(first.Functions["main"].BlockOrder) != len(second.Functions["main"].BlockOrder) {
		t.Fatal("expected two compiles of the same source to produce the same block count")
	}
}
