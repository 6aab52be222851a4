package constfold

import (
	"errors"
	"testing"

	"gscript/internal/ast"
	"gscript/internal/source"
	"gscript/internal/symbols"
	"gscript/internal/types"
)

func newTestFolder() (*Folder, *ast.Tree) {
	tree := ast.NewTree("test.sp")
	reg := types.NewRegistry()
	tbl := symbols.NewTable()
	return New(tree, reg, tbl), tree
}

func lit(tree *ast.Tree, v int32) ast.ExprID {
	return tree.Exprs.NewLiteral(source.Span{}, ast.ExprLiteralData{ConstVal: v})
}

func TestEvalFoldsBasicArithmetic(t *testing.T) {
	f, tree := newTestFolder()
	id := tree.Exprs.NewBinary(source.Span{}, ast.BinAdd, lit(tree, 2), lit(tree, 3))

	v, tag, err := f.Eval(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 5 {
		t.Fatalf("expected 5, got %d", v)
	}
	if tag != types.TagInt {
		t.Fatalf("expected TagInt, got %v", tag)
	}
}

func TestEvalDivisionByZeroReportsErrDivByZero(t *testing.T) {
	f, tree := newTestFolder()
	id := tree.Exprs.NewBinary(source.Span{}, ast.BinDiv, lit(tree, 10), lit(tree, 0))

	if _, _, err := f.Eval(id); !errors.Is(err, ErrDivByZero) {
		t.Fatalf("expected ErrDivByZero, got %v", err)
	}
}

func TestEvalModuloByZeroReportsErrDivByZero(t *testing.T) {
	f, tree := newTestFolder()
	id := tree.Exprs.NewBinary(source.Span{}, ast.BinMod, lit(tree, 10), lit(tree, 0))

	if _, _, err := f.Eval(id); !errors.Is(err, ErrDivByZero) {
		t.Fatalf("expected ErrDivByZero, got %v", err)
	}
}

func TestEvalMinIntDividedByNegativeOneOverflows(t *testing.T) {
	f, tree := newTestFolder()
	id := tree.Exprs.NewBinary(source.Span{}, ast.BinDiv, lit(tree, -2147483648), lit(tree, -1))

	if _, _, err := f.Eval(id); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestEvalNegatingMinIntOverflows(t *testing.T) {
	f, tree := newTestFolder()
	id := tree.Exprs.NewUnary(source.Span{}, ast.UnaryNeg, lit(tree, -2147483648))

	if _, _, err := f.Eval(id); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestEvalShiftsMaskTheShiftAmountTo5Bits(t *testing.T) {
	f, tree := newTestFolder()
	// A shift amount of 33 behaves like 33 & 31 == 1.
	id := tree.Exprs.NewBinary(source.Span{}, ast.BinShl, lit(tree, 1), lit(tree, 33))

	v, _, err := f.Eval(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 2 {
		t.Fatalf("expected 1<<1 == 2, got %d", v)
	}
}

func TestEvalLogicalAndWithFalsyLeftValueFoldsToFalse(t *testing.T) {
	f, tree := newTestFolder()
	id := tree.Exprs.NewLogical(source.Span{}, ast.LogicalAnd, lit(tree, 0), lit(tree, 1))

	v, tag, err := f.Eval(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0 || tag != types.TagBool {
		t.Fatalf("expected a false TagBool result, got %d/%v", v, tag)
	}
}

func TestEvalTernaryRequiresAllThreeBranchesToFold(t *testing.T) {
	f, tree := newTestFolder()
	cond := lit(tree, 1)
	// FalseExpr left NoExprID makes the "false" branch unresolvable.
	badFalse := ast.NoExprID
	id := tree.Exprs.NewTernary(source.Span{}, cond, lit(tree, 42), badFalse)

	if _, _, err := f.Eval(id); !errors.Is(err, ErrNotConstant) {
		t.Fatalf("expected ErrNotConstant when a branch doesn't fold, got %v", err)
	}
}

func TestEvalTernaryPicksTrueBranchWhenConditionIsNonzero(t *testing.T) {
	f, tree := newTestFolder()
	id := tree.Exprs.NewTernary(source.Span{}, lit(tree, 1), lit(tree, 10), lit(tree, 20))

	v, _, err := f.Eval(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 10 {
		t.Fatalf("expected the true branch's value 10, got %d", v)
	}
}

func TestEvalCompareChainEvaluatesAllLinks(t *testing.T) {
	f, tree := newTestFolder()
	// 1 < 2 < 3 folds to true; a chain is read left to right.
	id := tree.Exprs.NewCompare(source.Span{}, []ast.ExprID{lit(tree, 1), lit(tree, 2), lit(tree, 3)}, []ast.CompareOp{ast.CmpLt, ast.CmpLt})

	v, tag, err := f.Eval(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 1 || tag != types.TagBool {
		t.Fatalf("expected a true TagBool result, got %d/%v", v, tag)
	}
}

func TestEvalNonConstantSymbolIsNotFoldable(t *testing.T) {
	f, tree := newTestFolder()
	id := tree.Exprs.NewSymbol(source.Span{}, 0, false)

	if _, _, err := f.Eval(id); !errors.Is(err, ErrNotConstant) {
		t.Fatalf("expected ErrNotConstant for an unresolved symbol, got %v", err)
	}
}
