package irwire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/midori-lang/midorc/internal/ir"
	"github.com/midori-lang/midorc/internal/types"
)

type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

func splitFields(b []byte) ([]field, error) {
	var out []field
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, errTruncated
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, errTruncated
			}
			b = b[n:]
			out = append(out, field{num: num, typ: typ, varint: v})
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, errTruncated
			}
			b = b[n:]
			cp := make([]byte, len(v))
			copy(cp, v)
			out = append(out, field{num: num, typ: typ, bytes: cp})
		default:
			return nil, fmt.Errorf("irwire: unsupported wire type %v", typ)
		}
	}
	return out, nil
}

// Decode reconstructs a ProgramIR from bytes produced by Encode.
func Decode(data []byte) (*ir.ProgramIR, error) {
	fields, err := splitFields(data)
	if err != nil {
		return nil, err
	}
	prog := &ir.ProgramIR{
		Functions: map[string]*ir.FunctionIR{},
		Enums:     map[string]*ir.EnumLayout{},
	}
	for _, f := range fields {
		switch f.num {
		case fProgramFunctions:
			fn, err := decodeFunction(f.bytes)
			if err != nil {
				return nil, err
			}
			prog.Functions[fn.Name] = fn
		case fProgramFunctionOrder:
			prog.FunctionOrder = append(prog.FunctionOrder, string(f.bytes))
		case fProgramEnums:
			layout, err := decodeEnumLayout(f.bytes)
			if err != nil {
				return nil, err
			}
			prog.Enums[layout.Key] = layout
		case fProgramEnumOrder:
			prog.EnumOrder = append(prog.EnumOrder, string(f.bytes))
		case fProgramCompileID:
			prog.CompileID = string(f.bytes)
		}
	}
	return prog, nil
}

func decodeFunction(b []byte) (*ir.FunctionIR, error) {
	fields, err := splitFields(b)
	if err != nil {
		return nil, err
	}
	fn := &ir.FunctionIR{Blocks: map[string]*ir.BasicBlock{}}
	for _, f := range fields {
		switch f.num {
		case fFnName:
			fn.Name = string(f.bytes)
		case fFnParams:
			p, err := decodeParam(f.bytes)
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, p)
		case fFnReturnType:
			ty, err := decodeType(f.bytes)
			if err != nil {
				return nil, err
			}
			fn.ReturnType = ty
		case fFnBlocks:
			bb, err := decodeBlock(f.bytes)
			if err != nil {
				return nil, err
			}
			fn.Blocks[bb.Name] = bb
		case fFnBlockOrder:
			fn.BlockOrder = append(fn.BlockOrder, string(f.bytes))
		case fFnEntry:
			fn.Entry = string(f.bytes)
		}
	}
	return fn, nil
}

func decodeParam(b []byte) (ir.FunctionParam, error) {
	fields, err := splitFields(b)
	if err != nil {
		return ir.FunctionParam{}, err
	}
	var p ir.FunctionParam
	for _, f := range fields {
		switch f.num {
		case fParamName:
			p.Name = string(f.bytes)
		case fParamType:
			ty, err := decodeType(f.bytes)
			if err != nil {
				return ir.FunctionParam{}, err
			}
			p.Type = ty
		}
	}
	return p, nil
}

func decodeBlock(b []byte) (*ir.BasicBlock, error) {
	fields, err := splitFields(b)
	if err != nil {
		return nil, err
	}
	bb := &ir.BasicBlock{}
	for _, f := range fields {
		switch f.num {
		case fBlockName:
			bb.Name = string(f.bytes)
		case fBlockInstructions:
			instr, err := decodeInstr(f.bytes)
			if err != nil {
				return nil, err
			}
			bb.Instructions = append(bb.Instructions, instr)
		case fBlockTerminator:
			term, err := decodeTerminator(f.bytes)
			if err != nil {
				return nil, err
			}
			bb.Terminator = term
		}
	}
	return bb, nil
}

// decodeInstr collects every possible field across instruction kinds, then
// builds the concrete Instr named by fInstrKind.
func decodeInstr(b []byte) (ir.Instr, error) {
	fields, err := splitFields(b)
	if err != nil {
		return nil, err
	}
	var kind uint64
	var target, value, source, op, left, right, name, enumKey string
	var args, fieldsList []string
	var variantIndex, fieldIndex int
	var ty, retTy, fieldTy types.Type
	var fieldTypes []types.Type
	var incomings []ir.PhiIncoming

	for _, f := range fields {
		switch f.num {
		case fInstrKind:
			kind = f.varint
		case fInstrTarget:
			target = string(f.bytes)
		case fInstrValue:
			value = string(f.bytes)
		case fInstrSource:
			source = string(f.bytes)
		case fInstrOp:
			op = string(f.bytes)
		case fInstrLeft:
			left = string(f.bytes)
		case fInstrRight:
			right = string(f.bytes)
		case fInstrName:
			name = string(f.bytes)
		case fInstrArgs:
			args = append(args, string(f.bytes))
		case fInstrTy:
			if ty, err = decodeType(f.bytes); err != nil {
				return nil, err
			}
		case fInstrRetTy:
			if retTy, err = decodeType(f.bytes); err != nil {
				return nil, err
			}
		case fInstrEnumKey:
			enumKey = string(f.bytes)
		case fInstrVariantIndex:
			variantIndex = int(f.varint)
		case fInstrFields:
			fieldsList = append(fieldsList, string(f.bytes))
		case fInstrFieldTypes:
			ft, err := decodeType(f.bytes)
			if err != nil {
				return nil, err
			}
			fieldTypes = append(fieldTypes, ft)
		case fInstrFieldIndex:
			fieldIndex = int(f.varint)
		case fInstrFieldTy:
			if fieldTy, err = decodeType(f.bytes); err != nil {
				return nil, err
			}
		case fInstrIncomings:
			inc, err := decodePhiIncoming(f.bytes)
			if err != nil {
				return nil, err
			}
			incomings = append(incomings, inc)
		}
	}

	switch kind {
	case kindConst:
		return &ir.ConstInstr{Target: target, Value: value, Ty: ty}, nil
	case kindAlias:
		return &ir.AliasInstr{Target: target, Source: source}, nil
	case kindBinOp:
		return &ir.BinOpInstr{Target: target, Op: op, Left: left, Right: right, Ty: ty}, nil
	case kindCall:
		return &ir.CallInstr{Target: target, Name: name, Args: args, RetTy: retTy}, nil
	case kindEnumConstruct:
		return &ir.EnumConstructInstr{Target: target, EnumKey: enumKey, VariantIndex: variantIndex, Fields: fieldsList, FieldTypes: fieldTypes}, nil
	case kindEnumTag:
		return &ir.EnumTagInstr{Target: target, Source: source, EnumKey: enumKey}, nil
	case kindEnumField:
		return &ir.EnumFieldInstr{Target: target, Source: source, EnumKey: enumKey, FieldIndex: fieldIndex, FieldTy: fieldTy}, nil
	case kindPhi:
		return &ir.PhiInstr{Target: target, Incomings: incomings, Ty: ty}, nil
	default:
		return nil, fmt.Errorf("irwire: unknown instruction kind %d", kind)
	}
}

func decodePhiIncoming(b []byte) (ir.PhiIncoming, error) {
	fields, err := splitFields(b)
	if err != nil {
		return ir.PhiIncoming{}, err
	}
	var inc ir.PhiIncoming
	for _, f := range fields {
		switch f.num {
		case fPhiPred:
			inc.Pred = string(f.bytes)
		case fPhiValue:
			inc.Value = string(f.bytes)
		}
	}
	return inc, nil
}

func decodeTerminator(b []byte) (ir.Terminator, error) {
	fields, err := splitFields(b)
	if err != nil {
		return nil, err
	}
	var kind uint64
	var cond, then, els, target, value string
	var hasValue bool
	for _, f := range fields {
		switch f.num {
		case fTermKind:
			kind = f.varint
		case fTermCond:
			cond = string(f.bytes)
		case fTermThen:
			then = string(f.bytes)
		case fTermElse:
			els = string(f.bytes)
		case fTermTarget:
			target = string(f.bytes)
		case fTermValue:
			value = string(f.bytes)
		case fTermHasValue:
			hasValue = f.varint != 0
		}
	}
	switch kind {
	case kindBranch:
		return &ir.BranchTerm{Target: target}, nil
	case kindCondBranch:
		return &ir.CondBranchTerm{Cond: cond, Then: then, Else: els}, nil
	case kindReturn:
		return &ir.ReturnTerm{Value: value, HasValue: hasValue}, nil
	default:
		return nil, fmt.Errorf("irwire: unknown terminator kind %d", kind)
	}
}

func decodeEnumLayout(b []byte) (*ir.EnumLayout, error) {
	fields, err := splitFields(b)
	if err != nil {
		return nil, err
	}
	layout := &ir.EnumLayout{}
	for _, f := range fields {
		switch f.num {
		case fEnumKey:
			layout.Key = string(f.bytes)
		case fEnumVariants:
			v, err := decodeVariant(f.bytes)
			if err != nil {
				return nil, err
			}
			layout.Variants = append(layout.Variants, v)
		case fEnumPayloadSlots:
			layout.PayloadSlots = int(f.varint)
		}
	}
	return layout, nil
}

func decodeVariant(b []byte) (ir.EnumVariantLayout, error) {
	fields, err := splitFields(b)
	if err != nil {
		return ir.EnumVariantLayout{}, err
	}
	var v ir.EnumVariantLayout
	for _, f := range fields {
		switch f.num {
		case fVariantName:
			v.Name = string(f.bytes)
		case fVariantIndex:
			v.Index = int(f.varint)
		case fVariantFieldTypes:
			ft, err := decodeType(f.bytes)
			if err != nil {
				return ir.EnumVariantLayout{}, err
			}
			v.FieldTypes = append(v.FieldTypes, ft)
		}
	}
	return v, nil
}

func decodeType(b []byte) (types.Type, error) {
	fields, err := splitFields(b)
	if err != nil {
		return types.Type{}, err
	}
	var ty types.Type
	for _, f := range fields {
		switch f.num {
		case fTypeName:
			ty.Name = string(f.bytes)
		case fTypeArgs:
			arg, err := decodeType(f.bytes)
			if err != nil {
				return types.Type{}, err
			}
			ty.Args = append(ty.Args, arg)
		}
	}
	return ty, nil
}
