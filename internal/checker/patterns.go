package checker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/types"
)

type patternKind int

const (
	patternWildcard patternKind = iota
	patternBinding
	patternLiteral
	patternVariant
)

type patternResult struct {
	kind         patternKind
	variantName  string
	literalValue string
}

func (c *checker) inferMatch(e *ast.MatchExpr) types.Type {
	if len(e.Arms) == 0 {
		c.raise(e, "empty match expression")
	}
	targetTy := c.infer(e.Target)

	seenVariants := map[string]bool{}
	seenBoolLiterals := map[string]bool{}
	sawCatchAll := false

	armTypes := make([]types.Type, len(e.Arms))
	for i, arm := range e.Arms {
		snap := c.scopeSnapshot()
		pat := c.checkPattern(arm.Pattern, targetTy)
		if pat.kind == patternVariant && pat.variantName != "" {
			seenVariants[pat.variantName] = true
		}
		if pat.kind == patternLiteral && (pat.literalValue == "true" || pat.literalValue == "false") {
			seenBoolLiterals[pat.literalValue] = true
		}
		if pat.kind == patternWildcard || pat.kind == patternBinding {
			sawCatchAll = true
		}
		armTypes[i] = c.infer(arm.Expr)
		c.restoreScope(snap)
	}

	armTy := armTypes[0]
	for _, got := range armTypes[1:] {
		c.ensureAssignable(armTy, got, e)
	}

	if !c.isExhaustiveMatch(targetTy, sawCatchAll, seenVariants, seenBoolLiterals) {
		c.raiseHint(e, fmt.Sprintf("non-exhaustive match over type %s", targetTy),
			"add missing patterns or a trailing `_ => ...` arm")
	}
	return c.note(e, armTy)
}

func (c *checker) checkPattern(pattern ast.Pattern, targetTy types.Type) patternResult {
	enumVariants := c.enumVariantsForType(targetTy)

	switch p := pattern.(type) {
	case *ast.WildcardPattern:
		return patternResult{kind: patternWildcard}

	case *ast.LiteralPattern:
		litTy := literalPatternType(p)
		c.ensureAssignable(targetTy, litTy, p)
		return patternResult{kind: patternLiteral, literalValue: p.Value}

	case *ast.VariantPattern:
		if enumVariants == nil {
			c.raise(p, fmt.Sprintf("variant pattern '%s' requires enum target, got %s", p.Name, targetTy))
		}
		info, ok := enumVariants[p.Name]
		if !ok {
			c.raise(p, fmt.Sprintf("unknown variant '%s' for enum '%s'", p.Name, targetTy.Name))
		}
		if len(p.Fields) != len(info.FieldTypes) {
			c.raise(p, fmt.Sprintf("variant '%s' expects %d bindings, got %d", p.Name, len(info.FieldTypes), len(p.Fields)))
		}
		for i, name := range p.Fields {
			c.vars[name] = varState{ty: info.FieldTypes[i]}
		}
		return patternResult{kind: patternVariant, variantName: p.Name}

	case *ast.NamePattern:
		if enumVariants != nil {
			if info, ok := enumVariants[p.Name]; ok {
				if len(info.FieldTypes) > 0 {
					c.raise(p, fmt.Sprintf("variant '%s' carries payload; use '%s(...)' pattern", p.Name, p.Name))
				}
				return patternResult{kind: patternVariant, variantName: p.Name}
			}
		}
		c.vars[p.Name] = varState{ty: targetTy}
		return patternResult{kind: patternBinding}

	default:
		c.raise(pattern, fmt.Sprintf("unsupported pattern: %T", pattern))
		panic("unreachable")
	}
}

func literalPatternType(p *ast.LiteralPattern) types.Type {
	val := p.Value
	switch val {
	case "true", "false":
		return types.Bool
	}
	if isStringQuoted(val) {
		return types.String
	}
	if strings.HasPrefix(val, "'") && strings.HasSuffix(val, "'") {
		return types.Char
	}
	if strings.Contains(val, ".") {
		if _, err := strconv.ParseFloat(val, 64); err == nil {
			return types.Float
		}
	}
	if _, err := strconv.Atoi(val); err == nil {
		return types.Int
	}
	return types.Unknown
}

func (c *checker) isExhaustiveMatch(targetTy types.Type, sawCatchAll bool, seenVariants, seenBoolLiterals map[string]bool) bool {
	if sawCatchAll {
		return true
	}
	if targetTy.Equal(types.Bool) {
		return seenBoolLiterals["true"] && seenBoolLiterals["false"]
	}
	if enumVariants := c.enumVariantsForType(targetTy); enumVariants != nil {
		for name := range enumVariants {
			if !seenVariants[name] {
				return false
			}
		}
		return true
	}
	return false
}

func (c *checker) enumVariantsForType(ty types.Type) map[string]*EnumVariantInfo {
	if info, ok := c.enums[ty.Name]; ok {
		return info.Variants
	}
	if ty.Name == "Option" && len(ty.Args) == 1 {
		inner := ty.Args[0]
		return map[string]*EnumVariantInfo{
			"Some": {Name: "Some", Index: 0, FieldTypes: []types.Type{inner}},
			"None": {Name: "None", Index: 1, FieldTypes: nil},
		}
	}
	if ty.Name == "Result" && len(ty.Args) == 2 {
		return map[string]*EnumVariantInfo{
			"Ok":  {Name: "Ok", Index: 0, FieldTypes: []types.Type{ty.Args[0]}},
			"Err": {Name: "Err", Index: 1, FieldTypes: []types.Type{ty.Args[1]}},
		}
	}
	return nil
}
