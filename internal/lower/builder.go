package lower

import (
	"strconv"
	"strings"

	"github.com/midori-lang/midorc/internal/ast"
	"github.com/midori-lang/midorc/internal/checker"
	"github.com/midori-lang/midorc/internal/diagnostics"
	"github.com/midori-lang/midorc/internal/ir"
	"github.com/midori-lang/midorc/internal/token"
	"github.com/midori-lang/midorc/internal/types"
)

// builder lowers one function's body into basic blocks, mirroring
// midori_ir/lowering.py's _Builder: an env map from source name to current
// SSA value, block/temp counters, and new_block/emit/terminate primitives.
type builder struct {
	fnName    string
	isMain    bool
	exprTypes map[ast.Expr]types.Type
	layouts   map[string]*ir.EnumLayout
	typed     *checker.TypedProgram

	blocks     map[string]*ir.BasicBlock
	blockOrder []string
	blockIndex int
	tempIndex  int
	current    *ir.BasicBlock
	entry      string
	env        map[string]string
}

func newBuilder(fn *checker.TypedFunction, layouts map[string]*ir.EnumLayout, typed *checker.TypedProgram) *builder {
	b := &builder{
		fnName:    fn.Decl.Name,
		isMain:    fn.Decl.Name == "main",
		exprTypes: fn.ExprTypes,
		layouts:   layouts,
		typed:     typed,
		blocks:    map[string]*ir.BasicBlock{},
		env:       map[string]string{},
	}
	entry := b.newBlock("entry")
	b.entry = entry.Name
	b.current = entry
	return b
}

func raiseLower(pass diagnostics.Pass, message string) {
	panic(&lowerError{diag: diagnostics.New(pass, token.Span{}, message)})
}

func (b *builder) newBlock(prefix string) *ir.BasicBlock {
	name := prefix + "_" + strconv.Itoa(b.blockIndex)
	b.blockIndex++
	bb := &ir.BasicBlock{Name: name}
	b.blocks[name] = bb
	b.blockOrder = append(b.blockOrder, name)
	return bb
}

func (b *builder) emit(instr ir.Instr) {
	b.current.Instructions = append(b.current.Instructions, instr)
}

func (b *builder) terminate(term ir.Terminator) {
	b.current.Terminator = term
}

func (b *builder) tmp() string {
	name := "%t" + strconv.Itoa(b.tempIndex)
	b.tempIndex++
	return name
}

func (b *builder) argName(i int) string {
	return "%arg" + strconv.Itoa(i)
}

// finishReturn builds the Return terminator for a value-carrying return,
// applying the `main` 32-bit truncation rule at the return site.
func (b *builder) finishReturn(value string, hasValue bool) *ir.ReturnTerm {
	if hasValue && b.isMain {
		value = b.truncateToInt32(value)
	}
	return &ir.ReturnTerm{Value: value, HasValue: hasValue}
}

// truncateToInt32 masks a 64-bit SSA value down to its low 32 bits using the
// existing BinOp instruction, since the IR has no dedicated truncate op.
func (b *builder) truncateToInt32(value string) string {
	mask := b.tmp()
	b.emit(&ir.ConstInstr{Target: mask, Value: "4294967295", Ty: types.Int})
	out := b.tmp()
	b.emit(&ir.BinOpInstr{Target: out, Op: "&", Left: value, Right: mask, Ty: types.Int})
	return out
}

func (b *builder) lowerBlock(block *ast.BlockExpr) string {
	for _, stmt := range block.Statements {
		b.lowerStmt(stmt)
	}
	if block.Tail != nil {
		return b.lowerExpr(block.Tail)
	}
	return ""
}

func (b *builder) lowerStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		value := b.lowerExpr(s.Expr)
		target := b.tmp()
		b.emit(&ir.AliasInstr{Target: target, Source: value})
		b.env[s.Name] = target

	case *ast.ReturnStmt:
		var value string
		hasValue := s.Expr != nil
		if hasValue {
			value = b.lowerExpr(s.Expr)
		}
		b.terminate(b.finishReturn(value, hasValue))
		b.current = b.newBlock("dead")

	case *ast.ExprStmt:
		b.lowerExpr(s.Expr)

	default:
		raiseLower(diagnostics.PassLowering, "unsupported statement in lowering")
	}
}

func (b *builder) lowerExpr(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		out := b.tmp()
		b.emit(&ir.ConstInstr{Target: out, Value: e.Value, Ty: b.exprTypes[e]})
		return out

	case *ast.IdentifierExpr:
		return b.env[e.Name]

	case *ast.UnaryExpr:
		return b.lowerUnary(e)

	case *ast.BinaryExpr:
		left := b.lowerExpr(e.Left)
		right := b.lowerExpr(e.Right)
		out := b.tmp()
		b.emit(&ir.BinOpInstr{Target: out, Op: e.Op, Left: left, Right: right, Ty: b.exprTypes[e]})
		return out

	case *ast.AssignExpr:
		return b.lowerAssign(e)

	case *ast.CallExpr:
		return b.lowerCall(e)

	case *ast.BlockExpr:
		return b.lowerBlock(e)

	case *ast.IfExpr:
		return b.lowerIf(e)

	case *ast.MatchExpr:
		return b.lowerMatch(e)

	case *ast.PostfixTryExpr:
		return b.lowerTry(e)

	case *ast.UnsafeExpr:
		return b.lowerBlock(e.Block)

	case *ast.RaiseExpr:
		return b.lowerRaise(e)

	default:
		raiseLower(diagnostics.PassLowering, "unsupported expression in lowering")
		panic("unreachable")
	}
}

func (b *builder) lowerUnary(e *ast.UnaryExpr) string {
	switch e.Op {
	case "-":
		val := b.lowerExpr(e.Expr)
		zero := b.tmp()
		b.emit(&ir.ConstInstr{Target: zero, Value: "0", Ty: b.exprTypes[e]})
		out := b.tmp()
		b.emit(&ir.BinOpInstr{Target: out, Op: "-", Left: zero, Right: val, Ty: b.exprTypes[e]})
		return out
	case "!":
		val := b.lowerExpr(e.Expr)
		one := b.tmp()
		b.emit(&ir.ConstInstr{Target: one, Value: "1", Ty: types.Bool})
		out := b.tmp()
		b.emit(&ir.BinOpInstr{Target: out, Op: "^", Left: val, Right: one, Ty: types.Bool})
		return out
	default:
		// `&` / `&mut` / `*` carry no runtime effect once borrow-checked.
		return b.lowerExpr(e.Expr)
	}
}

func (b *builder) lowerAssign(e *ast.AssignExpr) string {
	target, ok := e.Target.(*ast.IdentifierExpr)
	if !ok {
		raiseLower(diagnostics.PassLowering, "assignment target must be an identifier")
	}
	value := b.lowerExpr(e.Value)
	if e.Op != "=" {
		baseOp := strings.TrimSuffix(e.Op, "=")
		out := b.tmp()
		b.emit(&ir.BinOpInstr{Target: out, Op: baseOp, Left: b.env[target.Name], Right: value, Ty: b.exprTypes[e]})
		value = out
	}
	b.env[target.Name] = value
	return value
}

func (b *builder) lowerIf(e *ast.IfExpr) string {
	cond := b.lowerExpr(e.Condition)
	thenBB := b.newBlock("then")
	elseBB := b.newBlock("else")
	joinBB := b.newBlock("join")
	b.terminate(&ir.CondBranchTerm{Cond: cond, Then: thenBB.Name, Else: elseBB.Name})

	b.current = thenBB
	thenVal := b.lowerBlock(e.ThenBlock)
	if b.current.Terminator == nil {
		b.terminate(&ir.BranchTerm{Target: joinBB.Name})
	}
	thenEnd := b.current.Name

	b.current = elseBB
	elseVal := ""
	if e.ElseBranch != nil {
		elseVal = b.lowerExpr(e.ElseBranch)
	}
	if b.current.Terminator == nil {
		b.terminate(&ir.BranchTerm{Target: joinBB.Name})
	}
	elseEnd := b.current.Name

	b.current = joinBB
	ty := b.exprTypes[e]
	if ty.Name == "Void" || ty.Name == "" {
		return ""
	}
	out := b.tmp()
	b.emit(&ir.PhiInstr{Target: out, Incomings: []ir.PhiIncoming{
		{Pred: thenEnd, Value: thenVal},
		{Pred: elseEnd, Value: elseVal},
	}, Ty: ty})
	return out
}

func (b *builder) lowerTry(e *ast.PostfixTryExpr) string {
	val := b.lowerExpr(e.Expr)
	resultTy := b.exprTypes[e.Expr]
	key := resultTy.String()

	tag := b.tmp()
	b.emit(&ir.EnumTagInstr{Target: tag, Source: val, EnumKey: key})
	zero := b.tmp()
	b.emit(&ir.ConstInstr{Target: zero, Value: "0", Ty: types.Int})
	isOk := b.tmp()
	b.emit(&ir.BinOpInstr{Target: isOk, Op: "==", Left: tag, Right: zero, Ty: types.Bool})

	okBB := b.newBlock("try_ok")
	errBB := b.newBlock("try_err")
	b.terminate(&ir.CondBranchTerm{Cond: isOk, Then: okBB.Name, Else: errBB.Name})

	b.current = errBB
	b.terminate(&ir.ReturnTerm{Value: val, HasValue: true})

	b.current = okBB
	payload := b.tmp()
	b.emit(&ir.EnumFieldInstr{Target: payload, Source: val, EnumKey: key, FieldIndex: 0, FieldTy: resultTy.Args[0]})
	return payload
}

func (b *builder) lowerRaise(e *ast.RaiseExpr) string {
	fnRet := b.typed.Functions[b.fnName].FnType.Ret
	key := fnRet.String()
	layout := b.layouts[key]
	variant, ok := variantInLayout(layout, "Err")
	if !ok {
		raiseLower(diagnostics.PassLowering, "raise requires a Result-returning function")
	}
	msg := b.lowerExpr(e.Message)
	target := b.tmp()
	b.emit(&ir.EnumConstructInstr{
		Target: target, EnumKey: key, VariantIndex: variant.Index,
		Fields: []string{msg}, FieldTypes: variant.FieldTypes,
	})
	b.terminate(&ir.ReturnTerm{Value: target, HasValue: true})
	b.current = b.newBlock("dead")
	return target
}

func (b *builder) lowerCall(e *ast.CallExpr) string {
	callee, ok := e.Callee.(*ast.IdentifierExpr)
	if !ok {
		raiseLower(diagnostics.PassLowering, "only direct function calls are supported")
	}
	name := callee.Name
	retTy := b.exprTypes[e]

	if name == "print" || name == "read_file" {
		args := b.lowerArgs(e.Args)
		target := ""
		if retTy.Name != "Void" {
			target = b.tmp()
		}
		b.emit(&ir.CallInstr{Target: target, Name: name, Args: args, RetTy: retTy})
		return target
	}

	if key, ok := enumKeyFor(retTy); ok {
		if layout, ok := b.layouts[key]; ok {
			if variant, ok := variantInLayout(layout, name); ok {
				fields := b.lowerArgs(e.Args)
				target := b.tmp()
				b.emit(&ir.EnumConstructInstr{
					Target: target, EnumKey: key, VariantIndex: variant.Index,
					Fields: fields, FieldTypes: variant.FieldTypes,
				})
				return target
			}
		}
	}

	args := b.lowerArgs(e.Args)
	target := ""
	if retTy.Name != "Void" {
		target = b.tmp()
	}
	b.emit(&ir.CallInstr{Target: target, Name: name, Args: args, RetTy: retTy})
	return target
}

func (b *builder) lowerArgs(args []ast.Expr) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = b.lowerExpr(a)
	}
	return out
}
