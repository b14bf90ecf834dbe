package irwire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/midori-lang/midorc/internal/ir"
	"github.com/midori-lang/midorc/internal/types"
)

// Field numbers. Grouped by message; kept stable once assigned since they
// are the wire contract.
const (
	fProgramFunctions     protowire.Number = 1
	fProgramFunctionOrder protowire.Number = 2
	fProgramEnums         protowire.Number = 3
	fProgramEnumOrder     protowire.Number = 4
	fProgramCompileID     protowire.Number = 5

	fFnName       protowire.Number = 1
	fFnParams     protowire.Number = 2
	fFnReturnType protowire.Number = 3
	fFnBlocks     protowire.Number = 4
	fFnBlockOrder protowire.Number = 5
	fFnEntry      protowire.Number = 6

	fParamName protowire.Number = 1
	fParamType protowire.Number = 2

	fBlockName         protowire.Number = 1
	fBlockInstructions protowire.Number = 2
	fBlockTerminator   protowire.Number = 3

	fInstrKind         protowire.Number = 1
	fInstrTarget       protowire.Number = 2
	fInstrValue        protowire.Number = 3
	fInstrSource       protowire.Number = 4
	fInstrOp           protowire.Number = 5
	fInstrLeft         protowire.Number = 6
	fInstrRight        protowire.Number = 7
	fInstrName         protowire.Number = 8
	fInstrArgs         protowire.Number = 9
	fInstrTy           protowire.Number = 10
	fInstrRetTy        protowire.Number = 11
	fInstrEnumKey      protowire.Number = 12
	fInstrVariantIndex protowire.Number = 13
	fInstrFields       protowire.Number = 14
	fInstrFieldTypes   protowire.Number = 15
	fInstrFieldIndex   protowire.Number = 16
	fInstrFieldTy      protowire.Number = 17
	fInstrIncomings    protowire.Number = 18

	fPhiPred  protowire.Number = 1
	fPhiValue protowire.Number = 2

	fTermKind     protowire.Number = 1
	fTermCond     protowire.Number = 2
	fTermThen     protowire.Number = 3
	fTermElse     protowire.Number = 4
	fTermTarget   protowire.Number = 5
	fTermValue    protowire.Number = 6
	fTermHasValue protowire.Number = 7

	fEnumKey          protowire.Number = 1
	fEnumVariants     protowire.Number = 2
	fEnumPayloadSlots protowire.Number = 3

	fVariantName       protowire.Number = 1
	fVariantIndex      protowire.Number = 2
	fVariantFieldTypes protowire.Number = 3

	fTypeName protowire.Number = 1
	fTypeArgs protowire.Number = 2
)

// Instr/Terminator kind discriminants, stable once assigned.
const (
	kindConst = iota + 1
	kindAlias
	kindBinOp
	kindCall
	kindEnumConstruct
	kindEnumTag
	kindEnumField
	kindPhi
)

const (
	kindBranch = iota + 1
	kindCondBranch
	kindReturn
)

// Encode serializes prog into a deterministic byte slice, walking
// FunctionOrder/BlockOrder/EnumOrder rather than the unordered maps so two
// calls on an equal ProgramIR produce identical bytes.
func Encode(prog *ir.ProgramIR) []byte {
	var b []byte
	for _, name := range prog.FunctionOrder {
		b = appendMessageField(b, fProgramFunctions, encodeFunction(prog.Functions[name]))
	}
	for _, name := range prog.FunctionOrder {
		b = appendStringField(b, fProgramFunctionOrder, name)
	}
	for _, key := range prog.EnumOrder {
		b = appendMessageField(b, fProgramEnums, encodeEnumLayout(prog.Enums[key]))
	}
	for _, key := range prog.EnumOrder {
		b = appendStringField(b, fProgramEnumOrder, key)
	}
	b = appendStringField(b, fProgramCompileID, prog.CompileID)
	return b
}

func encodeFunction(fn *ir.FunctionIR) []byte {
	var b []byte
	b = appendStringField(b, fFnName, fn.Name)
	for _, p := range fn.Params {
		b = appendMessageField(b, fFnParams, encodeParam(p))
	}
	b = appendMessageField(b, fFnReturnType, encodeType(fn.ReturnType))
	for _, name := range fn.BlockOrder {
		b = appendMessageField(b, fFnBlocks, encodeBlock(fn.Blocks[name]))
	}
	for _, name := range fn.BlockOrder {
		b = appendStringField(b, fFnBlockOrder, name)
	}
	b = appendStringField(b, fFnEntry, fn.Entry)
	return b
}

func encodeParam(p ir.FunctionParam) []byte {
	var b []byte
	b = appendStringField(b, fParamName, p.Name)
	b = appendMessageField(b, fParamType, encodeType(p.Type))
	return b
}

func encodeBlock(bb *ir.BasicBlock) []byte {
	var b []byte
	b = appendStringField(b, fBlockName, bb.Name)
	for _, instr := range bb.Instructions {
		b = appendMessageField(b, fBlockInstructions, encodeInstr(instr))
	}
	if bb.Terminator != nil {
		b = appendMessageField(b, fBlockTerminator, encodeTerminator(bb.Terminator))
	}
	return b
}

func encodeInstr(instr ir.Instr) []byte {
	var b []byte
	switch v := instr.(type) {
	case *ir.ConstInstr:
		b = appendVarintField(b, fInstrKind, kindConst)
		b = appendStringField(b, fInstrTarget, v.Target)
		b = appendStringField(b, fInstrValue, v.Value)
		b = appendMessageField(b, fInstrTy, encodeType(v.Ty))
	case *ir.AliasInstr:
		b = appendVarintField(b, fInstrKind, kindAlias)
		b = appendStringField(b, fInstrTarget, v.Target)
		b = appendStringField(b, fInstrSource, v.Source)
	case *ir.BinOpInstr:
		b = appendVarintField(b, fInstrKind, kindBinOp)
		b = appendStringField(b, fInstrTarget, v.Target)
		b = appendStringField(b, fInstrOp, v.Op)
		b = appendStringField(b, fInstrLeft, v.Left)
		b = appendStringField(b, fInstrRight, v.Right)
		b = appendMessageField(b, fInstrTy, encodeType(v.Ty))
	case *ir.CallInstr:
		b = appendVarintField(b, fInstrKind, kindCall)
		b = appendStringField(b, fInstrTarget, v.Target)
		b = appendStringField(b, fInstrName, v.Name)
		for _, a := range v.Args {
			b = appendStringField(b, fInstrArgs, a)
		}
		b = appendMessageField(b, fInstrRetTy, encodeType(v.RetTy))
	case *ir.EnumConstructInstr:
		b = appendVarintField(b, fInstrKind, kindEnumConstruct)
		b = appendStringField(b, fInstrTarget, v.Target)
		b = appendStringField(b, fInstrEnumKey, v.EnumKey)
		b = appendVarintField(b, fInstrVariantIndex, uint64(v.VariantIndex))
		for _, f := range v.Fields {
			b = appendStringField(b, fInstrFields, f)
		}
		for _, ft := range v.FieldTypes {
			b = appendMessageField(b, fInstrFieldTypes, encodeType(ft))
		}
	case *ir.EnumTagInstr:
		b = appendVarintField(b, fInstrKind, kindEnumTag)
		b = appendStringField(b, fInstrTarget, v.Target)
		b = appendStringField(b, fInstrSource, v.Source)
		b = appendStringField(b, fInstrEnumKey, v.EnumKey)
	case *ir.EnumFieldInstr:
		b = appendVarintField(b, fInstrKind, kindEnumField)
		b = appendStringField(b, fInstrTarget, v.Target)
		b = appendStringField(b, fInstrSource, v.Source)
		b = appendStringField(b, fInstrEnumKey, v.EnumKey)
		b = appendVarintField(b, fInstrFieldIndex, uint64(v.FieldIndex))
		b = appendMessageField(b, fInstrFieldTy, encodeType(v.FieldTy))
	case *ir.PhiInstr:
		b = appendVarintField(b, fInstrKind, kindPhi)
		b = appendStringField(b, fInstrTarget, v.Target)
		for _, inc := range v.Incomings {
			b = appendMessageField(b, fInstrIncomings, encodePhiIncoming(inc))
		}
		b = appendMessageField(b, fInstrTy, encodeType(v.Ty))
	}
	return b
}

func encodePhiIncoming(inc ir.PhiIncoming) []byte {
	var b []byte
	b = appendStringField(b, fPhiPred, inc.Pred)
	b = appendStringField(b, fPhiValue, inc.Value)
	return b
}

func encodeTerminator(term ir.Terminator) []byte {
	var b []byte
	switch v := term.(type) {
	case *ir.BranchTerm:
		b = appendVarintField(b, fTermKind, kindBranch)
		b = appendStringField(b, fTermTarget, v.Target)
	case *ir.CondBranchTerm:
		b = appendVarintField(b, fTermKind, kindCondBranch)
		b = appendStringField(b, fTermCond, v.Cond)
		b = appendStringField(b, fTermThen, v.Then)
		b = appendStringField(b, fTermElse, v.Else)
	case *ir.ReturnTerm:
		b = appendVarintField(b, fTermKind, kindReturn)
		b = appendStringField(b, fTermValue, v.Value)
		b = appendBoolField(b, fTermHasValue, v.HasValue)
	}
	return b
}

func encodeEnumLayout(layout *ir.EnumLayout) []byte {
	var b []byte
	b = appendStringField(b, fEnumKey, layout.Key)
	for _, v := range layout.Variants {
		b = appendMessageField(b, fEnumVariants, encodeVariant(v))
	}
	b = appendVarintField(b, fEnumPayloadSlots, uint64(layout.PayloadSlots))
	return b
}

func encodeVariant(v ir.EnumVariantLayout) []byte {
	var b []byte
	b = appendStringField(b, fVariantName, v.Name)
	b = appendVarintField(b, fVariantIndex, uint64(v.Index))
	for _, ft := range v.FieldTypes {
		b = appendMessageField(b, fVariantFieldTypes, encodeType(ft))
	}
	return b
}

func encodeType(ty types.Type) []byte {
	var b []byte
	b = appendStringField(b, fTypeName, ty.Name)
	for _, a := range ty.Args {
		b = appendMessageField(b, fTypeArgs, encodeType(a))
	}
	return b
}

// --- append primitives ---

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarintField(b, num, 1)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	return appendBytesField(b, num, []byte(s))
}

func appendMessageField(b []byte, num protowire.Number, msg []byte) []byte {
	return appendBytesField(b, num, msg)
}
