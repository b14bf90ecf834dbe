// Package ast defines the Midori abstract syntax tree. Every node carries a
// source Span; statements and expressions are closed sum types discriminated
// by an unexported marker method, the way go/ast discriminates Decl/Stmt/Expr.
package ast

import "github.com/midori-lang/midorc/internal/token"

// Node is implemented by every AST node.
type Node interface {
	Span() token.Span
}

// Item is a top-level declaration.
type Item interface {
	Node
	itemNode()
}

// Stmt is a statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// Pattern is a match-arm pattern.
type Pattern interface {
	Node
	patternNode()
}

// Program is the root node: an ordered sequence of items.
type Program struct {
	SpanVal token.Span
	Items   []Item
}

func (n *Program) Span() token.Span { return n.SpanVal }

// TypeRef is a parsed type annotation: a name, its generic arguments, and
// reference/pointer qualifiers.
type TypeRef struct {
	SpanVal  token.Span
	Name     string
	Args     []*TypeRef
	IsRef    bool
	IsMutRef bool
	IsPtr    bool
	IsMutPtr bool
}

func (n *TypeRef) Span() token.Span { return n.SpanVal }

// Param is a function or trait-method parameter.
type Param struct {
	SpanVal token.Span
	Name    string
	Type    *TypeRef
}

func (n *Param) Span() token.Span { return n.SpanVal }

// FunctionDecl declares a function.
type FunctionDecl struct {
	SpanVal       token.Span
	Name          string
	GenericParams []string
	Params        []*Param
	ReturnType    *TypeRef // nil means Void
	Body          *BlockExpr
	IsTask        bool
	IsPub         bool
}

func (n *FunctionDecl) Span() token.Span { return n.SpanVal }
func (n *FunctionDecl) itemNode()        {}

// ExternFunctionDecl declares an FFI function signature with no body.
type ExternFunctionDecl struct {
	SpanVal    token.Span
	ABI        string
	Name       string
	Params     []*Param
	ReturnType *TypeRef
}

func (n *ExternFunctionDecl) Span() token.Span { return n.SpanVal }
func (n *ExternFunctionDecl) itemNode()        {}

// StructField is a named, typed field of a struct or enum variant.
type StructField struct {
	SpanVal token.Span
	Name    string
	Type    *TypeRef
}

func (n *StructField) Span() token.Span { return n.SpanVal }

// StructDecl declares a struct (parsed only; never lowered, per Non-goals).
type StructDecl struct {
	SpanVal token.Span
	Name    string
	Fields  []*StructField
}

func (n *StructDecl) Span() token.Span { return n.SpanVal }
func (n *StructDecl) itemNode()        {}

// EnumVariant is one constructor of an enum, with optional named fields.
type EnumVariant struct {
	SpanVal token.Span
	Name    string
	Fields  []*StructField
}

func (n *EnumVariant) Span() token.Span { return n.SpanVal }

// EnumDecl declares a tagged-union sum type.
type EnumDecl struct {
	SpanVal  token.Span
	Name     string
	Variants []*EnumVariant
}

func (n *EnumDecl) Span() token.Span { return n.SpanVal }
func (n *EnumDecl) itemNode()        {}

// FunctionSig is a trait method signature (no body).
type FunctionSig struct {
	SpanVal       token.Span
	Name          string
	GenericParams []string
	Params        []*Param
	ReturnType    *TypeRef
}

func (n *FunctionSig) Span() token.Span { return n.SpanVal }

// TraitDecl declares a trait (parsed only, per Non-goals).
type TraitDecl struct {
	SpanVal token.Span
	Name    string
	Methods []*FunctionSig
}

func (n *TraitDecl) Span() token.Span { return n.SpanVal }
func (n *TraitDecl) itemNode()        {}

// ErrorDecl declares a named custom error kind usable with `raise`.
type ErrorDecl struct {
	SpanVal token.Span
	Name    string
}

func (n *ErrorDecl) Span() token.Span { return n.SpanVal }
func (n *ErrorDecl) itemNode()        {}

// ImportDecl names a source file the loader concatenates before invoking the
// core (the core itself never resolves or reads the path).
type ImportDecl struct {
	SpanVal token.Span
	Path    string
}

func (n *ImportDecl) Span() token.Span { return n.SpanVal }
func (n *ImportDecl) itemNode()        {}

// --- Statements ---

// LetStmt binds a name via `let` (immutable) or `var` (mutable).
type LetStmt struct {
	SpanVal  token.Span
	Name     string
	Type     *TypeRef // nil when Inferred
	Expr     Expr
	Mutable  bool
	Inferred bool
}

func (n *LetStmt) Span() token.Span { return n.SpanVal }
func (n *LetStmt) stmtNode()        {}

// ReturnStmt returns from the enclosing function, optionally with a value.
type ReturnStmt struct {
	SpanVal token.Span
	Expr    Expr // nil for a bare `return`
}

func (n *ReturnStmt) Span() token.Span { return n.SpanVal }
func (n *ReturnStmt) stmtNode()        {}

// BreakStmt exits the enclosing loop (parsed only, per Non-goals).
type BreakStmt struct {
	SpanVal token.Span
	Expr    Expr
}

func (n *BreakStmt) Span() token.Span { return n.SpanVal }
func (n *BreakStmt) stmtNode()        {}

// ContinueStmt continues the enclosing loop (parsed only, per Non-goals).
type ContinueStmt struct {
	SpanVal token.Span
}

func (n *ContinueStmt) Span() token.Span { return n.SpanVal }
func (n *ContinueStmt) stmtNode()        {}

// ExprStmt is an expression evaluated for its side effect.
type ExprStmt struct {
	SpanVal token.Span
	Expr    Expr
}

func (n *ExprStmt) Span() token.Span { return n.SpanVal }
func (n *ExprStmt) stmtNode()        {}

// --- Expressions ---

// LiteralExpr is an int/float/string/char/bool literal.
type LiteralExpr struct {
	SpanVal token.Span
	Value   string // raw lexeme, including quotes for string/char
	Kind    string // "int", "float", "string", "char", "true", "false"
}

func (n *LiteralExpr) Span() token.Span { return n.SpanVal }
func (n *LiteralExpr) exprNode()        {}

// IdentifierExpr references a bound name.
type IdentifierExpr struct {
	SpanVal token.Span
	Name    string
}

func (n *IdentifierExpr) Span() token.Span { return n.SpanVal }
func (n *IdentifierExpr) exprNode()        {}

// UnaryExpr is a prefix operator applied to an expression: `- ! & &mut *`.
type UnaryExpr struct {
	SpanVal token.Span
	Op      string
	Expr    Expr
}

func (n *UnaryExpr) Span() token.Span { return n.SpanVal }
func (n *UnaryExpr) exprNode()        {}

// BinaryExpr is a left-op-right expression.
type BinaryExpr struct {
	SpanVal token.Span
	Left    Expr
	Op      string
	Right   Expr
}

func (n *BinaryExpr) Span() token.Span { return n.SpanVal }
func (n *BinaryExpr) exprNode()        {}

// CallExpr is a function call or variant/built-in constructor application.
type CallExpr struct {
	SpanVal token.Span
	Callee  Expr
	Args    []Expr
}

func (n *CallExpr) Span() token.Span { return n.SpanVal }
func (n *CallExpr) exprNode()        {}

// AssignExpr assigns (possibly via a compound operator) to a `var` target.
type AssignExpr struct {
	SpanVal token.Span
	Target  Expr
	Op      string
	Value   Expr
}

func (n *AssignExpr) Span() token.Span { return n.SpanVal }
func (n *AssignExpr) exprNode()        {}

// IfExpr is an if-expression; ElseBranch is nil, a BlockExpr, or a nested IfExpr.
type IfExpr struct {
	SpanVal    token.Span
	Condition  Expr
	ThenBlock  *BlockExpr
	ElseBranch Expr
}

func (n *IfExpr) Span() token.Span { return n.SpanVal }
func (n *IfExpr) exprNode()        {}

// MatchArm is one `pattern => expr` arm of a match expression.
type MatchArm struct {
	SpanVal token.Span
	Pattern Pattern
	Expr    Expr
}

func (n *MatchArm) Span() token.Span { return n.SpanVal }

// MatchExpr matches a target expression against an ordered set of arms.
type MatchExpr struct {
	SpanVal token.Span
	Target  Expr
	Arms    []*MatchArm
}

func (n *MatchExpr) Span() token.Span { return n.SpanVal }
func (n *MatchExpr) exprNode()        {}

// FieldInit is one `name: expr` field of a struct initializer.
type FieldInit struct {
	SpanVal token.Span
	Name    string
	Expr    Expr
}

func (n *FieldInit) Span() token.Span { return n.SpanVal }

// StructInitExpr constructs a struct value (parsed only, per Non-goals).
type StructInitExpr struct {
	SpanVal token.Span
	Name    string
	Fields  []*FieldInit
}

func (n *StructInitExpr) Span() token.Span { return n.SpanVal }
func (n *StructInitExpr) exprNode()        {}

// BlockExpr is a `{ statements... [tail] }` expression.
type BlockExpr struct {
	SpanVal    token.Span
	Statements []Stmt
	Tail       Expr // nil if the block has no trailing expression
}

func (n *BlockExpr) Span() token.Span { return n.SpanVal }
func (n *BlockExpr) exprNode()        {}

// RangeExpr is `a..b` or `a..=b` (parsed only, per Non-goals).
type RangeExpr struct {
	SpanVal   token.Span
	Start     Expr
	End       Expr
	Inclusive bool
}

func (n *RangeExpr) Span() token.Span { return n.SpanVal }
func (n *RangeExpr) exprNode()        {}

// PostfixTryExpr is the `expr?` operator.
type PostfixTryExpr struct {
	SpanVal token.Span
	Expr    Expr
}

func (n *PostfixTryExpr) Span() token.Span { return n.SpanVal }
func (n *PostfixTryExpr) exprNode()        {}

// UnsafeExpr is `unsafe { block }`, transparent to checking and lowering.
type UnsafeExpr struct {
	SpanVal token.Span
	Block   *BlockExpr
}

func (n *UnsafeExpr) Span() token.Span { return n.SpanVal }
func (n *UnsafeExpr) exprNode()        {}

// SpawnExpr is `spawn expr` (parsed only, per Non-goals).
type SpawnExpr struct {
	SpanVal token.Span
	Expr    Expr
}

func (n *SpawnExpr) Span() token.Span { return n.SpanVal }
func (n *SpawnExpr) exprNode()        {}

// AwaitExpr is `await expr` (parsed only, per Non-goals).
type AwaitExpr struct {
	SpanVal token.Span
	Expr    Expr
}

func (n *AwaitExpr) Span() token.Span { return n.SpanVal }
func (n *AwaitExpr) exprNode()        {}

// RaiseExpr is `raise Kind("message literal")`.
type RaiseExpr struct {
	SpanVal token.Span
	Kind    string
	Message Expr
}

func (n *RaiseExpr) Span() token.Span { return n.SpanVal }
func (n *RaiseExpr) exprNode()        {}

// --- Patterns ---

// WildcardPattern is `_`, matching anything without binding.
type WildcardPattern struct {
	SpanVal token.Span
}

func (n *WildcardPattern) Span() token.Span { return n.SpanVal }
func (n *WildcardPattern) patternNode()     {}

// NamePattern binds the scrutinee to a name, unless the name is a
// payload-less variant of the target enum (resolved by the checker).
type NamePattern struct {
	SpanVal token.Span
	Name    string
}

func (n *NamePattern) Span() token.Span { return n.SpanVal }
func (n *NamePattern) patternNode()     {}

// LiteralPattern matches a literal value.
type LiteralPattern struct {
	SpanVal token.Span
	Value   string
}

func (n *LiteralPattern) Span() token.Span { return n.SpanVal }
func (n *LiteralPattern) patternNode()     {}

// VariantPattern matches `Name(field, field, ...)`, binding payload fields
// positionally to the listed names.
type VariantPattern struct {
	SpanVal token.Span
	Name    string
	Fields  []string
}

func (n *VariantPattern) Span() token.Span { return n.SpanVal }
func (n *VariantPattern) patternNode()     {}
