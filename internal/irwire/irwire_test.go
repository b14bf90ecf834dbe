package irwire

import (
	"testing"

	"github.com/midori-lang/midorc/internal/ir"
	"github.com/midori-lang/midorc/internal/types"
)

func sampleProgram() *ir.ProgramIR {
	entry := &ir.BasicBlock{
		Name: "entry",
		Instructions: []ir.Instr{
			&ir.ConstInstr{Target: "%t0", Value: "1", Ty: types.Int},
			&ir.ConstInstr{Target: "%t1", Value: "2", Ty: types.Int},
			&ir.BinOpInstr{Target: "%t2", Op: "+", Left: "%t0", Right: "%t1", Ty: types.Int},
			&ir.EnumConstructInstr{
				Target: "%t3", EnumKey: "Option[Int]", VariantIndex: 0,
				Fields: []string{"%t2"}, FieldTypes: []types.Type{types.Int},
			},
		},
		Terminator: &ir.ReturnTerm{Value: "%t3", HasValue: true},
	}
	fn := &ir.FunctionIR{
		Name:       "main",
		ReturnType: types.Option(types.Int),
		Blocks:     map[string]*ir.BasicBlock{"entry": entry},
		BlockOrder: []string{"entry"},
		Entry:      "entry",
	}
	layout := &ir.EnumLayout{
		Key: "Option[Int]",
		Variants: []ir.EnumVariantLayout{
			{Name: "Some", Index: 0, FieldTypes: []types.Type{types.Int}},
			{Name: "None", Index: 1},
		},
		PayloadSlots: 1,
	}
	return &ir.ProgramIR{
		Functions:     map[string]*ir.FunctionIR{"main": fn},
		FunctionOrder: []string{"main"},
		Enums:         map[string]*ir.EnumLayout{"Option[Int]": layout},
		EnumOrder:     []string{"Option[Int]"},
		CompileID:     "11111111-1111-1111-1111-111111111111",
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	prog := sampleProgram()
	data := Encode(prog)
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got.CompileID != prog.CompileID {
		t.Fatalf("CompileID mismatch: got %q want %q", got.CompileID, prog.CompileID)
	}
	if len(got.FunctionOrder) != 1 || got.FunctionOrder[0] != "main" {
		t.Fatalf("unexpected FunctionOrder: %v", got.FunctionOrder)
	}

	fn := got.Functions["main"]
	if fn == nil {
		t.Fatal("expected main in decoded program")
	}
	if !fn.ReturnType.Equal(types.Option(types.Int)) {
		t.Fatalf("ReturnType mismatch: got %s", fn.ReturnType)
	}

	entry := fn.Blocks["entry"]
	if entry == nil || len(entry.Instructions) != 4 {
		t.Fatalf("expected 4 instructions in entry, got %#v", entry)
	}
	if _, ok := entry.Instructions[2].(*ir.BinOpInstr); !ok {
		t.Fatalf("expected instruction 2 to be a BinOpInstr, got %T", entry.Instructions[2])
	}
	ret, ok := entry.Terminator.(*ir.ReturnTerm)
	if !ok || !ret.HasValue || ret.Value != "%t3" {
		t.Fatalf("unexpected terminator: %#v", entry.Terminator)
	}

	layout := got.Enums["Option[Int]"]
	if layout == nil || layout.PayloadSlots != 1 || len(layout.Variants) != 2 {
		t.Fatalf("unexpected enum layout: %#v", layout)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	prog := sampleProgram()
	a := Encode(prog)
	b := Encode(prog)
	if len(a) != len(b) {
		t.Fatalf("two encodes of the same program differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("two encodes of the same program differ at byte %d", i)
		}
	}
}
