package lower

import (
	"fmt"
	"sort"

	"github.com/midori-lang/midorc/internal/checker"
	"github.com/midori-lang/midorc/internal/diagnostics"
	"github.com/midori-lang/midorc/internal/ir"
	"github.com/midori-lang/midorc/internal/token"
	"github.com/midori-lang/midorc/internal/types"
)

// collectEnumLayouts scans every function's parameter types, return type, and
// recorded expression types for enum instantiations actually used by the
// program, synthesizing one ir.EnumLayout per distinct key.
func collectEnumLayouts(typed *checker.TypedProgram) (map[string]*ir.EnumLayout, []string) {
	used := map[string]types.Type{}

	noteType := func(ty types.Type) {
		if key, ok := enumKeyFor(ty); ok {
			used[key] = ty
		}
	}

	fnNames := sortedFunctionNames(typed)
	for _, name := range fnNames {
		fn := typed.Functions[name]
		for _, p := range fn.FnType.Params {
			noteType(p)
		}
		noteType(fn.FnType.Ret)
		for _, ty := range fn.ExprTypes {
			noteType(ty)
		}
	}

	layouts := map[string]*ir.EnumLayout{}
	for key, ty := range used {
		layouts[key] = synthesizeLayout(typed, key, ty)
	}

	order := make([]string, 0, len(layouts))
	for key := range layouts {
		order = append(order, key)
	}
	sort.Strings(order)
	return layouts, order
}

func enumKeyFor(ty types.Type) (string, bool) {
	switch ty.Name {
	case "Option":
		if len(ty.Args) == 1 {
			return ty.String(), true
		}
	case "Result":
		if len(ty.Args) == 2 {
			return ty.String(), true
		}
	case "", "Int", "Float", "Bool", "Char", "String", "Void", "Unknown", "Ref", "Ptr":
		return "", false
	default:
		return ty.Name, true
	}
	return "", false
}

func synthesizeLayout(typed *checker.TypedProgram, key string, ty types.Type) *ir.EnumLayout {
	var variants []ir.EnumVariantLayout

	switch ty.Name {
	case "Option":
		inner := ty.Args[0]
		requireConcretePayload(inner)
		variants = []ir.EnumVariantLayout{
			{Name: "Some", Index: 0, FieldTypes: []types.Type{inner}},
			{Name: "None", Index: 1, FieldTypes: nil},
		}
	case "Result":
		okTy, errTy := ty.Args[0], ty.Args[1]
		requireConcretePayload(okTy)
		requireConcretePayload(errTy)
		variants = []ir.EnumVariantLayout{
			{Name: "Ok", Index: 0, FieldTypes: []types.Type{okTy}},
			{Name: "Err", Index: 1, FieldTypes: []types.Type{errTy}},
		}
	default:
		info := typed.Enums[ty.Name]
		names := make([]string, 0, len(info.Variants))
		for name := range info.Variants {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			return info.Variants[names[i]].Index < info.Variants[names[j]].Index
		})
		variants = make([]ir.EnumVariantLayout, len(names))
		for i, name := range names {
			v := info.Variants[name]
			for _, ft := range v.FieldTypes {
				requirePackableField(ft)
			}
			variants[i] = ir.EnumVariantLayout{Name: v.Name, Index: v.Index, FieldTypes: v.FieldTypes}
		}
	}

	slots := 0
	for _, v := range variants {
		if len(v.FieldTypes) > slots {
			slots = len(v.FieldTypes)
		}
	}
	return &ir.EnumLayout{Key: key, Variants: variants, PayloadSlots: slots}
}

// requireConcretePayload enforces open-question decision #2: an Option/Result
// whose payload is still Unknown by the time lowering needs a layout is a
// type-mismatch, reported with the checker's own MD3102 code since that is
// where the diagnostic logically belongs.
func requireConcretePayload(ty types.Type) {
	if ty.Name == "Unknown" {
		panic(&lowerError{diag: diagnostics.New(diagnostics.PassChecker, token.Span{},
			fmt.Sprintf("type mismatch: expected a concrete type, got %s", ty))})
	}
	requirePackableField(ty)
}

// requirePackableField enforces the §4.6 payload encoding table: nested enums
// have no slot encoding and are rejected at lowering.
func requirePackableField(ty types.Type) {
	switch ty.Name {
	case "Int", "Float", "Bool", "Char", "String":
		return
	default:
		panic(&lowerError{diag: diagnostics.New(diagnostics.PassLowering, token.Span{},
			fmt.Sprintf("enum payload type %s is not supported: nested enums are rejected", ty))})
	}
}

// variantInLayout looks up a variant by name within one layout. Lowering
// identifies a call's target layout from the checker's own resolved result
// type (exprTypes), so no separate cross-enum ambiguity table is needed:
// MD3109 already rejected any call the checker couldn't disambiguate.
func variantInLayout(layout *ir.EnumLayout, name string) (ir.EnumVariantLayout, bool) {
	for _, v := range layout.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return ir.EnumVariantLayout{}, false
}

func sortedFunctionNames(typed *checker.TypedProgram) []string {
	names := make([]string, 0, len(typed.Functions))
	for name := range typed.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
