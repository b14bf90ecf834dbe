// Package resolver builds flat top-level symbol tables from a parsed
// Program and checks for duplicate declarations and a missing entry point.
package resolver

import (
	"fmt"

	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/diagnostics"
)

// FunctionSymbol records a top-level function declaration.
type FunctionSymbol struct {
	Name string
	Decl *ast.FunctionDecl
}

// EnumVariantSymbol records one variant's tag index and field layout.
type EnumVariantSymbol struct {
	Name   string
	Index  int
	Fields []*ast.StructField
}

// EnumSymbol records an enum declaration and its variants by name.
type EnumSymbol struct {
	Name     string
	Decl     *ast.EnumDecl
	Variants map[string]*EnumVariantSymbol
}

// ErrorSymbol records a custom error declaration.
type ErrorSymbol struct {
	Name string
	Decl *ast.ErrorDecl
}

// OwningVariant pairs an enum name with the variant symbol it owns, used to
// resolve which enum a bare variant name belongs to.
type OwningVariant struct {
	EnumName string
	Variant  *EnumVariantSymbol
}

// Resolution is the flat symbol table produced by ResolveNames.
type Resolution struct {
	Functions      map[string]*FunctionSymbol
	Enums          map[string]*EnumSymbol
	Errors         map[string]*ErrorSymbol
	VariantsByName map[string][]OwningVariant
}

// ResolveNames walks the top-level items of program once, registering every
// function, enum, and custom error declaration. It aborts on the first
// duplicate name and requires a function named `main` to exist; main's
// parameter list is not checked.
func ResolveNames(program *ast.Program) (*Resolution, *diagnostics.Diagnostic) {
	res := &Resolution{
		Functions:      map[string]*FunctionSymbol{},
		Enums:          map[string]*EnumSymbol{},
		Errors:         map[string]*ErrorSymbol{},
		VariantsByName: map[string][]OwningVariant{},
	}

	for _, item := range program.Items {
		switch it := item.(type) {
		case *ast.FunctionDecl:
			if _, dup := res.Functions[it.Name]; dup {
				return nil, diagnostics.NewWithHint(diagnostics.PassResolver, it.Span(),
					fmt.Sprintf("duplicate function '%s'", it.Name), "rename one declaration")
			}
			res.Functions[it.Name] = &FunctionSymbol{Name: it.Name, Decl: it}

		case *ast.EnumDecl:
			if _, dup := res.Enums[it.Name]; dup {
				return nil, diagnostics.NewWithHint(diagnostics.PassResolver, it.Span(),
					fmt.Sprintf("duplicate enum '%s'", it.Name), "rename one declaration")
			}
			variants := map[string]*EnumVariantSymbol{}
			for i, variant := range it.Variants {
				if _, dup := variants[variant.Name]; dup {
					return nil, diagnostics.NewWithHint(diagnostics.PassResolver, variant.Span(),
						fmt.Sprintf("duplicate enum variant '%s' in enum '%s'", variant.Name, it.Name),
						"rename one variant")
				}
				sym := &EnumVariantSymbol{Name: variant.Name, Index: i, Fields: variant.Fields}
				variants[variant.Name] = sym
				res.VariantsByName[variant.Name] = append(res.VariantsByName[variant.Name], OwningVariant{EnumName: it.Name, Variant: sym})
			}
			res.Enums[it.Name] = &EnumSymbol{Name: it.Name, Decl: it, Variants: variants}

		case *ast.ErrorDecl:
			if _, dup := res.Errors[it.Name]; dup {
				return nil, diagnostics.NewWithHint(diagnostics.PassResolver, it.Span(),
					fmt.Sprintf("duplicate custom error '%s'", it.Name), "rename one custom error declaration")
			}
			res.Errors[it.Name] = &ErrorSymbol{Name: it.Name, Decl: it}
		}
	}

	if _, ok := res.Functions["main"]; !ok {
		return nil, diagnostics.NewWithHint(diagnostics.PassResolver, program.Span(),
			"missing entry point function 'main'", "add `fn main() -> Int { ... }`")
	}

	return res, nil
}
