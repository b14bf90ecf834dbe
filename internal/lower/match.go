package lower

import (
	"strconv"
	"strings"

	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/diagnostics"
	"github.com/midori-lang/midorc/internal/ir"
	"github.com/midori-lang/midorc/internal/types"
)

// lowerMatch linearizes arms in source order: each arm's pattern is tested
// in the current block, a matching arm branches unconditionally, a failing
// test falls through to the next arm's test block. Since the checker already
// proved the match exhaustive (MD3100 otherwise), the final arm is wired
// unconditionally — it is the match's proven default, never a dangling edge.
func (b *builder) lowerMatch(e *ast.MatchExpr) string {
	targetVal := b.lowerExpr(e.Target)
	targetTy := b.exprTypes[e.Target]
	matchTy := b.exprTypes[e]

	joinBB := b.newBlock("match_join")
	var incomings []ir.PhiIncoming

	for i, arm := range e.Arms {
		isLast := i == len(e.Arms)-1

		armBB := b.newBlock("match_arm")
		var nextTestBB *ir.BasicBlock
		if isLast {
			// The checker already proved this match exhaustive: the final
			// arm is the proven default and needs no test of its own.
			b.terminate(&ir.BranchTerm{Target: armBB.Name})
		} else {
			// Always allocate the next test block and advance b.current to
			// it, even when this arm's pattern is unconditional (wildcard or
			// a plain binding) — a catch-all arm isn't required to be last,
			// and without this block the following arm's terminate call
			// would overwrite this arm's already-recorded terminator instead
			// of wiring its own edge.
			nextTestBB = b.newBlock("match_test")
			cond, conditional := b.lowerPatternTest(arm.Pattern, targetTy, targetVal)
			if !conditional {
				b.terminate(&ir.BranchTerm{Target: armBB.Name})
			} else {
				b.terminate(&ir.CondBranchTerm{Cond: cond, Then: armBB.Name, Else: nextTestBB.Name})
			}
		}

		b.current = armBB
		b.bindPatternLocals(arm.Pattern, targetTy, targetVal)
		armVal := b.lowerExpr(arm.Expr)
		if b.current.Terminator == nil {
			b.terminate(&ir.BranchTerm{Target: joinBB.Name})
			incomings = append(incomings, ir.PhiIncoming{Pred: b.current.Name, Value: armVal})
		}

		if nextTestBB != nil {
			b.current = nextTestBB
		}
	}

	b.current = joinBB
	if matchTy.Name == "Void" || matchTy.Name == "" || len(incomings) == 0 {
		return ""
	}
	out := b.tmp()
	b.emit(&ir.PhiInstr{Target: out, Incomings: incomings, Ty: matchTy})
	return out
}

// lowerPatternTest emits whatever comparison a pattern needs into the
// current block and reports whether the pattern is conditional at all
// (wildcard and plain bindings always match).
func (b *builder) lowerPatternTest(pattern ast.Pattern, targetTy types.Type, targetVal string) (string, bool) {
	switch p := pattern.(type) {
	case *ast.WildcardPattern:
		return "", false

	case *ast.LiteralPattern:
		litTy := literalType(p.Value)
		lit := b.tmp()
		b.emit(&ir.ConstInstr{Target: lit, Value: p.Value, Ty: litTy})
		eq := b.tmp()
		b.emit(&ir.BinOpInstr{Target: eq, Op: "==", Left: targetVal, Right: lit, Ty: types.Bool})
		return eq, true

	case *ast.VariantPattern:
		return b.tagTest(targetTy, targetVal, p.Name)

	case *ast.NamePattern:
		if variant, ok := b.lookupVariant(targetTy, p.Name); ok && len(variant.FieldTypes) == 0 {
			return b.tagTest(targetTy, targetVal, p.Name)
		}
		return "", false

	default:
		raiseLower(diagnostics.PassLowering, "unsupported pattern in lowering")
		panic("unreachable")
	}
}

// bindPatternLocals binds the names a matched pattern introduces, once
// inside the arm's own block.
func (b *builder) bindPatternLocals(pattern ast.Pattern, targetTy types.Type, targetVal string) {
	switch p := pattern.(type) {
	case *ast.VariantPattern:
		variant, ok := b.lookupVariant(targetTy, p.Name)
		if !ok {
			return
		}
		key, _ := enumKeyFor(targetTy)
		for i, fieldName := range p.Fields {
			out := b.tmp()
			b.emit(&ir.EnumFieldInstr{
				Target: out, Source: targetVal, EnumKey: key,
				FieldIndex: i, FieldTy: variant.FieldTypes[i],
			})
			b.env[fieldName] = out
		}

	case *ast.NamePattern:
		if _, ok := b.lookupVariant(targetTy, p.Name); !ok {
			b.env[p.Name] = targetVal
		}
	}
}

func (b *builder) lookupVariant(targetTy types.Type, name string) (ir.EnumVariantLayout, bool) {
	key, ok := enumKeyFor(targetTy)
	if !ok {
		return ir.EnumVariantLayout{}, false
	}
	layout, ok := b.layouts[key]
	if !ok {
		return ir.EnumVariantLayout{}, false
	}
	return variantInLayout(layout, name)
}

func (b *builder) tagTest(targetTy types.Type, targetVal, variantName string) (string, bool) {
	key, _ := enumKeyFor(targetTy)
	tag := b.tmp()
	b.emit(&ir.EnumTagInstr{Target: tag, Source: targetVal, EnumKey: key})
	variant, _ := b.lookupVariant(targetTy, variantName)
	idxConst := b.tmp()
	b.emit(&ir.ConstInstr{Target: idxConst, Value: strconv.Itoa(variant.Index), Ty: types.Int})
	eq := b.tmp()
	b.emit(&ir.BinOpInstr{Target: eq, Op: "==", Left: tag, Right: idxConst, Ty: types.Bool})
	return eq, true
}

// literalType classifies a pattern literal's raw lexeme the same way the
// checker's literalPatternType does, for the Const instruction it lowers to.
func literalType(value string) types.Type {
	switch value {
	case "true", "false":
		return types.Bool
	}
	if strings.HasPrefix(value, `"`) {
		return types.String
	}
	if strings.HasPrefix(value, "'") {
		return types.Char
	}
	if strings.Contains(value, ".") {
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return types.Float
		}
	}
	return types.Int
}
