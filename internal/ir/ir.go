// Package ir defines midorc's hand-off intermediate representation: a basic
// block SSA form plus a tagged-union layout table for every sum type the
// program actually instantiates. Instructions and terminators are closed sum
// types discriminated the same way internal/ast discriminates its nodes — an
// unexported marker method on a pointer-receiver struct.
package ir

import "github.com/midori-lang/midorc/internal/types"

// Instr is one non-terminating SSA instruction in a BasicBlock.
type Instr interface {
	instrNode()
}

// ConstInstr materializes a literal into a fresh SSA value.
type ConstInstr struct {
	Target string
	Value  string
	Ty     types.Type
}

func (*ConstInstr) instrNode() {}

// AliasInstr gives a `let`-bound name its own SSA identity distinct from the
// temporary that computed its value.
type AliasInstr struct {
	Target string
	Source string
}

func (*AliasInstr) instrNode() {}

// BinOpInstr applies a binary operator to two SSA values.
type BinOpInstr struct {
	Target string
	Op     string
	Left   string
	Right  string
	Ty     types.Type
}

func (*BinOpInstr) instrNode() {}

// CallInstr calls a named function. Target is empty for Void calls.
type CallInstr struct {
	Target string
	Name   string
	Args   []string
	RetTy  types.Type
}

func (*CallInstr) instrNode() {}

// EnumConstructInstr builds a tagged-union value for one variant of an
// EnumLayout identified by EnumKey.
type EnumConstructInstr struct {
	Target       string
	EnumKey      string
	VariantIndex int
	Fields       []string
	FieldTypes   []types.Type
}

func (*EnumConstructInstr) instrNode() {}

// EnumTagInstr extracts the 32-bit discriminant out of a tagged-union value.
type EnumTagInstr struct {
	Target  string
	Source  string
	EnumKey string
}

func (*EnumTagInstr) instrNode() {}

// EnumFieldInstr extracts one payload slot out of a tagged-union value.
type EnumFieldInstr struct {
	Target     string
	Source     string
	EnumKey    string
	FieldIndex int
	FieldTy    types.Type
}

func (*EnumFieldInstr) instrNode() {}

// PhiIncoming is one (predecessor block, value) pair of a PhiInstr.
type PhiIncoming struct {
	Pred  string
	Value string
}

// PhiInstr selects a value based on which predecessor block branched here.
type PhiInstr struct {
	Target    string
	Incomings []PhiIncoming
	Ty        types.Type
}

func (*PhiInstr) instrNode() {}

// Terminator is the one instruction that ends a BasicBlock.
type Terminator interface {
	terminatorNode()
}

// BranchTerm is an unconditional jump.
type BranchTerm struct {
	Target string
}

func (*BranchTerm) terminatorNode() {}

// CondBranchTerm branches to Then when Cond is true, Else otherwise.
type CondBranchTerm struct {
	Cond string
	Then string
	Else string
}

func (*CondBranchTerm) terminatorNode() {}

// ReturnTerm returns from the enclosing function. HasValue is false for a
// Void return.
type ReturnTerm struct {
	Value    string
	HasValue bool
}

func (*ReturnTerm) terminatorNode() {}

// BasicBlock is a straight-line sequence of instructions ending in exactly
// one terminator.
type BasicBlock struct {
	Name         string
	Instructions []Instr
	Terminator   Terminator
}

// FunctionParam is one lowered function parameter.
type FunctionParam struct {
	Name string
	Type types.Type
}

// FunctionIR is one function's lowered body: an entry block name plus every
// block the builder created, including the unreachable blocks opened after a
// return or raise, in the order blocks were created (Go maps don't preserve
// iteration order, so BlockOrder is the authoritative ordering a backend or
// serializer must walk).
type FunctionIR struct {
	Name       string
	Params     []FunctionParam
	ReturnType types.Type
	Blocks     map[string]*BasicBlock
	BlockOrder []string
	Entry      string
}

// EnumVariantLayout is one variant's tag index and payload field types
// within an EnumLayout.
type EnumVariantLayout struct {
	Name       string
	Index      int
	FieldTypes []types.Type
}

// EnumLayout is the tagged-union layout for one concrete enum instantiation:
// a 32-bit tag at slot 0 followed by PayloadSlots 64-bit slots, sized to the
// widest variant.
type EnumLayout struct {
	Key          string
	Variants     []EnumVariantLayout
	PayloadSlots int
}

// ProgramIR is the complete output of a single Lower call.
type ProgramIR struct {
	Functions     map[string]*FunctionIR
	FunctionOrder []string
	Enums         map[string]*EnumLayout
	EnumOrder     []string
	CompileID     string
}
