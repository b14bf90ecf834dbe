// Package types implements midorc's structural type model: a name plus a
// list of argument types, with no unification engine. Assignability is a
// structural match that treats Unknown as a wildcard in any position.
package types

import "strings"

// Type is a structural type: a name and, for parameterized built-ins
// (Ref, Ptr, Option, Result) or user generics, its argument types.
type Type struct {
	Name string
	Args []Type
}

// Built-in, argument-free types.
var (
	Int     = Type{Name: "Int"}
	Float   = Type{Name: "Float"}
	Bool    = Type{Name: "Bool"}
	Char    = Type{Name: "Char"}
	String  = Type{Name: "String"}
	Void    = Type{Name: "Void"}
	Unknown = Type{Name: "Unknown"}
)

// Result builds Result[ok, err].
func Result(ok, err Type) Type { return Type{Name: "Result", Args: []Type{ok, err}} }

// Option builds Option[inner].
func Option(inner Type) Type { return Type{Name: "Option", Args: []Type{inner}} }

// Ref builds Ref[inner].
func Ref(inner Type) Type { return Type{Name: "Ref", Args: []Type{inner}} }

// Ptr builds Ptr[inner].
func Ptr(inner Type) Type { return Type{Name: "Ptr", Args: []Type{inner}} }

// IsCopy reports whether values of this type are copied rather than moved.
func (t Type) IsCopy() bool {
	switch t.Name {
	case "Int", "Float", "Bool", "Char":
		return true
	default:
		return false
	}
}

// Equal does a structural comparison; Unknown is NOT treated as a wildcard
// here — that coercion lives in Assignable.
func (t Type) Equal(o Type) bool {
	if t.Name != o.Name || len(t.Args) != len(o.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(o.Args[i]) {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return t.Name + "[" + strings.Join(parts, ", ") + "]"
}

// builtinOrContainer is the set of names that are never themselves generic
// type-parameter placeholders, even when bare and capitalized.
var builtinOrContainer = map[string]bool{
	"Int": true, "Float": true, "Bool": true, "Char": true, "String": true,
	"Void": true, "Result": true, "Option": true, "Ref": true, "Ptr": true, "Unknown": true,
}

// IsGenericParam reports whether a bare type name (no args) is a generic
// function parameter placeholder: capitalized, and not a built-in/container
// name. Matches spec.md §3's definition of "generic parameter".
func IsGenericParam(t Type) bool {
	return len(t.Args) == 0 && t.Name != "" && isUpper(t.Name[0]) && !builtinOrContainer[t.Name]
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }

// Assignable reports whether a value of type actual may be used where
// expected is required: structural equality, with Unknown unifying with
// anything at the top level or at any matching argument position.
func Assignable(expected, actual Type) bool {
	if expected.Equal(actual) {
		return true
	}
	if expected.Name == actual.Name && len(expected.Args) == len(actual.Args) {
		ok := true
		for i := range expected.Args {
			if expected.Args[i].Name == "Unknown" || actual.Args[i].Name == "Unknown" {
				continue
			}
			if !expected.Args[i].Equal(actual.Args[i]) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return expected.Name == "Unknown" || actual.Name == "Unknown"
}

// CoerceUnknown rewrites actual's Unknown slots with expected's concrete
// ones wherever the outer shape matches, so that lowering always sees
// concrete layouts. Mirrors the checker's _coerce_unknown_type.
func CoerceUnknown(expected, actual Type) Type {
	if expected.Name == actual.Name && len(expected.Args) == len(actual.Args) {
		merged := make([]Type, len(expected.Args))
		for i, exp := range expected.Args {
			got := actual.Args[i]
			switch {
			case got.Name == "Unknown":
				merged[i] = exp
			case exp.Name == "Unknown":
				merged[i] = got
			default:
				merged[i] = CoerceUnknown(exp, got)
			}
		}
		return Type{Name: expected.Name, Args: merged}
	}
	if actual.Name == "Unknown" {
		return expected
	}
	return actual
}

// BindGeneric unifies a signature parameter type (possibly containing bare
// generic-parameter names) against a concrete argument type, recording
// substitutions. Returns false with an expected/actual mismatch pair the
// caller should report as a type-mismatch diagnostic.
func BindGeneric(expected, actual Type, subst map[string]Type) (mismatchExpected, mismatchActual Type, ok bool) {
	if IsGenericParam(expected) {
		if prev, bound := subst[expected.Name]; bound {
			if !Assignable(prev, actual) {
				return prev, actual, false
			}
			return Type{}, Type{}, true
		}
		subst[expected.Name] = actual
		return Type{}, Type{}, true
	}
	if expected.Name != actual.Name || len(expected.Args) != len(actual.Args) {
		return expected, actual, false
	}
	for i := range expected.Args {
		if me, ma, ok := BindGeneric(expected.Args[i], actual.Args[i], subst); !ok {
			return me, ma, false
		}
	}
	return Type{}, Type{}, true
}

// ApplySubst substitutes bound generic parameter names throughout a type.
func ApplySubst(t Type, subst map[string]Type) Type {
	if IsGenericParam(t) {
		if bound, ok := subst[t.Name]; ok {
			return bound
		}
		return t
	}
	if len(t.Args) == 0 {
		return t
	}
	args := make([]Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = ApplySubst(a, subst)
	}
	return Type{Name: t.Name, Args: args}
}

// IsPrintable reports whether print() accepts a value of this type.
func IsPrintable(t Type) bool {
	switch t.Name {
	case "Int", "Float", "Bool", "Char", "String":
		return len(t.Args) == 0
	default:
		return false
	}
}
