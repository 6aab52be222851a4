// Package constfold evaluates pure constant expressions with the
// 32-bit two's-complement integer semantics the original language
// guarantees at compile time (§4.3).
package constfold

import (
	"errors"

	"gscript/internal/ast"
	"gscript/internal/ident"
	"gscript/internal/symbols"
	"gscript/internal/types"
)

// ErrNotConstant means the expression (or one of its operands) is not
// foldable — the caller should fall back to runtime evaluation, not
// report a diagnostic by itself.
var ErrNotConstant = errors.New("constfold: not a constant expression")

// ErrDivByZero and ErrOverflow are the two failure modes a foldable
// expression can still hit at fold time (§4.3).
var (
	ErrDivByZero = errors.New("constfold: division by zero")
	ErrOverflow  = errors.New("constfold: integer overflow")
)

// Folder evaluates constant expressions against one translation unit's
// AST, type registry, and symbol table.
type Folder struct {
	Tree    *ast.Tree
	Types   *types.Registry
	Symbols *symbols.Table
}

func New(tree *ast.Tree, reg *types.Registry, tbl *symbols.Table) *Folder {
	return &Folder{Tree: tree, Types: reg, Symbols: tbl}
}

// canFold reports whether tag is "binary-constant-foldable": a native
// integer or an enum (§4.3). Bool, float, string, and structural tags
// are never foldable by this package.
func (f *Folder) canFold(tag types.Tag) bool {
	return tag == types.TagInt || f.Types.IsEnum(tag)
}

// Eval folds id to an int32 cell and its tag, or returns ErrNotConstant
// if id (or a sub-expression) isn't a compile-time constant, or
// ErrDivByZero/ErrOverflow if folding hits one of those conditions.
func (f *Folder) Eval(id ast.ExprID) (int32, types.Tag, error) {
	expr := f.Tree.Exprs.Get(id)
	if expr == nil {
		return 0, types.NoTag, ErrNotConstant
	}
	switch expr.Kind {
	case ast.ExprLiteral:
		return f.evalLiteral(id)
	case ast.ExprSymbol:
		return f.evalSymbol(id)
	case ast.ExprUnary:
		return f.evalUnary(id)
	case ast.ExprBinary:
		return f.evalBinary(id)
	case ast.ExprLogical:
		return f.evalLogical(id)
	case ast.ExprCompare:
		return f.evalCompare(id)
	case ast.ExprTernary:
		return f.evalTernary(id)
	case ast.ExprRValue:
		rv, _ := f.Tree.Exprs.RValue(id)
		return f.Eval(rv.Inner)
	default:
		return 0, types.NoTag, ErrNotConstant
	}
}

func (f *Folder) evalLiteral(id ast.ExprID) (int32, types.Tag, error) {
	lit, ok := f.Tree.Exprs.Literal(id)
	if !ok {
		return 0, types.NoTag, ErrNotConstant
	}
	if lit.IsString {
		// A string literal folds to its negatively-encoded length (§3),
		// carried at tag 0 — it is not itself an int-or-enum value, but
		// sizeof(literal) treats it as foldable this way.
		return lit.ConstVal, types.TagInt, nil
	}
	return lit.ConstVal, types.TagInt, nil
}

func (f *Folder) evalSymbol(id ast.ExprID) (int32, types.Tag, error) {
	if _, ok := f.Tree.Exprs.Symbol(id); !ok {
		return 0, types.NoTag, ErrNotConstant
	}
	// Symbol resolution for folding is driven by the already-resolved
	// Val on the expression node (the expression checker fills this in
	// before the folder is consulted for a re-fold, e.g. inside a
	// ternary or chained compare built from already-checked operands).
	if expr := f.Tree.Exprs.Get(id); expr != nil && expr.Val.Ident == ident.Constant {
		if !f.canFold(expr.Val.Tag) {
			return 0, types.NoTag, ErrNotConstant
		}
		return expr.Val.ConstVal, expr.Val.Tag, nil
	}
	return 0, types.NoTag, ErrNotConstant
}

func (f *Folder) evalUnary(id ast.ExprID) (int32, types.Tag, error) {
	u, ok := f.Tree.Exprs.Unary(id)
	if !ok {
		return 0, types.NoTag, ErrNotConstant
	}
	v, tag, err := f.Eval(u.Operand)
	if err != nil {
		return 0, types.NoTag, err
	}
	if !f.canFold(tag) {
		return 0, types.NoTag, ErrNotConstant
	}
	switch u.Op {
	case ast.UnaryNeg:
		if v == -2147483648 {
			return 0, types.NoTag, ErrOverflow
		}
		return -v, tag, nil
	case ast.UnaryNot:
		if v == 0 {
			return 1, types.TagBool, nil
		}
		return 0, types.TagBool, nil
	case ast.UnaryComplement:
		return ^v, tag, nil
	default:
		return 0, types.NoTag, ErrNotConstant
	}
}

func (f *Folder) evalBinary(id ast.ExprID) (int32, types.Tag, error) {
	b, ok := f.Tree.Exprs.Binary(id)
	if !ok {
		return 0, types.NoTag, ErrNotConstant
	}
	if b.Op.IsAssignment() {
		return 0, types.NoTag, ErrNotConstant
	}
	lv, ltag, err := f.Eval(b.Left)
	if err != nil {
		return 0, types.NoTag, err
	}
	rv, rtag, err := f.Eval(b.Right)
	if err != nil {
		return 0, types.NoTag, err
	}
	if !f.canFold(ltag) || !f.canFold(rtag) {
		return 0, types.NoTag, ErrNotConstant
	}
	if b.Op.IsComparison() {
		return boolCell(compareInt32(b.Op, lv, rv)), types.TagBool, nil
	}
	resultTag := ltag
	if ltag == types.TagInt {
		resultTag = rtag
	}
	switch b.Op {
	case ast.BinAdd:
		return lv + rv, resultTag, nil
	case ast.BinSub:
		return lv - rv, resultTag, nil
	case ast.BinMul:
		return lv * rv, resultTag, nil
	case ast.BinDiv:
		if rv == 0 {
			return 0, types.NoTag, ErrDivByZero
		}
		if lv == -2147483648 && rv == -1 {
			return 0, types.NoTag, ErrOverflow
		}
		return lv / rv, resultTag, nil
	case ast.BinMod:
		if rv == 0 {
			return 0, types.NoTag, ErrDivByZero
		}
		if lv == -2147483648 && rv == -1 {
			return 0, types.NoTag, ErrOverflow
		}
		return lv % rv, resultTag, nil
	case ast.BinShl:
		return int32(uint32(lv) << (uint32(rv) & 31)), resultTag, nil
	case ast.BinShrSigned:
		return lv >> (uint32(rv) & 31), resultTag, nil
	case ast.BinShrUnsigned:
		return int32(uint32(lv) >> (uint32(rv) & 31)), resultTag, nil
	case ast.BinBitAnd:
		return lv & rv, resultTag, nil
	case ast.BinBitOr:
		return lv | rv, resultTag, nil
	case ast.BinBitXor:
		return lv ^ rv, resultTag, nil
	default:
		return 0, types.NoTag, ErrNotConstant
	}
}

func (f *Folder) evalLogical(id ast.ExprID) (int32, types.Tag, error) {
	l, ok := f.Tree.Exprs.Logical(id)
	if !ok {
		return 0, types.NoTag, ErrNotConstant
	}
	lv, _, err := f.Eval(l.Left)
	if err != nil {
		return 0, types.NoTag, err
	}
	rv, _, err := f.Eval(l.Right)
	if err != nil {
		return 0, types.NoTag, err
	}
	var result bool
	if l.Op == ast.LogicalAnd {
		result = lv != 0 && rv != 0
	} else {
		result = lv != 0 || rv != 0
	}
	return boolCell(result), types.TagBool, nil
}

func (f *Folder) evalCompare(id ast.ExprID) (int32, types.Tag, error) {
	c, ok := f.Tree.Exprs.Compare(id)
	if !ok || len(c.Operands) < 2 {
		return 0, types.NoTag, ErrNotConstant
	}
	values := make([]int32, len(c.Operands))
	tags := make([]types.Tag, len(c.Operands))
	for i, operand := range c.Operands {
		v, tag, err := f.Eval(operand)
		if err != nil {
			return 0, types.NoTag, err
		}
		if !f.canFold(tag) {
			return 0, types.NoTag, ErrNotConstant
		}
		values[i] = v
		tags[i] = tag
	}
	result := true
	for i, op := range c.Ops {
		if !compareInt32(binOpFromCompare(op), values[i], values[i+1]) {
			result = false
			break
		}
	}
	return boolCell(result), types.TagBool, nil
}

func (f *Folder) evalTernary(id ast.ExprID) (int32, types.Tag, error) {
	t, ok := f.Tree.Exprs.Ternary(id)
	if !ok {
		return 0, types.NoTag, ErrNotConstant
	}
	// §9 OQ2 fix: all three of cond/onTrue/onFalse must fold, not just
	// the condition and one branch.
	cond, _, err := f.Eval(t.Cond)
	if err != nil {
		return 0, types.NoTag, err
	}
	trueVal, trueTag, err := f.Eval(t.TrueExpr)
	if err != nil {
		return 0, types.NoTag, err
	}
	falseVal, falseTag, err := f.Eval(t.FalseExpr)
	if err != nil {
		return 0, types.NoTag, err
	}
	if cond != 0 {
		return trueVal, trueTag, nil
	}
	return falseVal, falseTag, nil
}

func boolCell(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func compareInt32(op ast.BinaryOp, l, r int32) bool {
	switch op {
	case ast.BinEq:
		return l == r
	case ast.BinNe:
		return l != r
	case ast.BinLt:
		return l < r
	case ast.BinLe:
		return l <= r
	case ast.BinGt:
		return l > r
	case ast.BinGe:
		return l >= r
	default:
		return false
	}
}

func binOpFromCompare(op ast.CompareOp) ast.BinaryOp {
	switch op {
	case ast.CmpLt:
		return ast.BinLt
	case ast.CmpLe:
		return ast.BinLe
	case ast.CmpGt:
		return ast.BinGt
	default:
		return ast.BinGe
	}
}
