package sema

import (
	"testing"

	"gscript/internal/ast"
	"gscript/internal/diag"
	"gscript/internal/ident"
	"gscript/internal/source"
	"gscript/internal/symbols"
)

func TestAssignmentDoesNotMarkLHSSymbolAsRead(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeFunction, symbols.NoScopeID, 0, source.Span{})
	c.pushContext(&SemaContext{Scope: scope})

	name := interner.Intern("x")
	symID, err := c.Symbols.Add(scope, symbols.Symbol{
		Name:  name,
		Ident: ident.Variable,
		Tag:   c.Types.Builtin().Int,
	})
	if err != nil {
		t.Fatalf("failed to seed symbol: %v", err)
	}

	left := c.Tree.Exprs.NewSymbol(source.Span{}, name, false)
	right := c.Tree.Exprs.NewLiteral(source.Span{}, ast.ExprLiteralData{ConstVal: 5})
	assign := c.Tree.Exprs.NewBinary(source.Span{}, ast.BinAssign, left, right)
	stmt := c.Tree.Stmts.NewExprStmt(source.Span{}, assign)

	c.CheckStmt(stmt)
	c.checkUnusedInScope(scope)

	sym := c.Symbols.Symbol(symID)
	if sym.Usage&symbols.UsageRead != 0 {
		t.Fatalf("expected a plain assignment to not mark its left-hand side as read")
	}
	if sym.Usage&symbols.UsageWritten == 0 {
		t.Fatalf("expected a plain assignment to mark its left-hand side as written")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.WarnValueAssignedNeverRead {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected WarnValueAssignedNeverRead for a write-only local, got %+v", bag.Items())
	}
}

func TestAssignmentStillMarksIndexBaseAsRead(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeFunction, symbols.NoScopeID, 0, source.Span{})
	c.pushContext(&SemaContext{Scope: scope})

	name := interner.Intern("arr")
	symID, err := c.Symbols.Add(scope, symbols.Symbol{
		Name:  name,
		Ident: ident.Array,
		Tag:   c.Types.Builtin().Int,
		Dim:   symbols.ArrayDim{Level: 1, Length: 4},
	})
	if err != nil {
		t.Fatalf("failed to seed symbol: %v", err)
	}

	base := c.Tree.Exprs.NewSymbol(source.Span{}, name, false)
	idx := c.Tree.Exprs.NewLiteral(source.Span{}, ast.ExprLiteralData{ConstVal: 0})
	left := c.Tree.Exprs.NewIndex(source.Span{}, base, idx)
	right := c.Tree.Exprs.NewLiteral(source.Span{}, ast.ExprLiteralData{ConstVal: 5})
	assign := c.Tree.Exprs.NewBinary(source.Span{}, ast.BinAssign, left, right)

	if !c.CheckExpr(assign) {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	sym := c.Symbols.Symbol(symID)
	if sym.Usage&symbols.UsageRead == 0 {
		t.Fatalf("expected `arr[0] = 5;` to still mark the array itself as read")
	}
}

func TestCheckBinaryArrayCharAssignmentIsPermitted(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeFunction, symbols.NoScopeID, 0, source.Span{})
	c.pushContext(&SemaContext{Scope: scope})

	name := interner.Intern("buf")
	_, err := c.Symbols.Add(scope, symbols.Symbol{
		Name:  name,
		Ident: ident.Array,
		Tag:   c.Types.Builtin().String,
		Dim:   symbols.ArrayDim{Level: 1, Length: 32},
	})
	if err != nil {
		t.Fatalf("failed to seed symbol: %v", err)
	}

	base := c.Tree.Exprs.NewSymbol(source.Span{}, name, false)
	idx := c.Tree.Exprs.NewLiteral(source.Span{}, ast.ExprLiteralData{ConstVal: 0})
	left := c.Tree.Exprs.NewIndex(source.Span{}, base, idx)
	ch := c.Tree.Exprs.NewLiteral(source.Span{}, ast.ExprLiteralData{ConstVal: int32('a')})
	assign := c.Tree.Exprs.NewBinary(source.Span{}, ast.BinAssign, left, ch)

	if !c.CheckExpr(assign) {
		t.Fatalf("expected assigning to a packed character cell to check cleanly, got: %+v", bag.Items())
	}
	for _, d := range bag.Items() {
		if d.Code == diag.WarnStringArrayTagMismatch {
			t.Fatalf("unexpected tag-mismatch warning assigning a char literal to a string array cell: %+v", d)
		}
	}
}

func TestCheckBinaryCompoundAssignDispatchesUserOperator(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeFunction, symbols.NoScopeID, 0, source.Span{})
	c.pushContext(&SemaContext{Scope: scope})

	p0, err := c.Symbols.Add(scope, symbols.Symbol{Name: interner.Intern("a"), Ident: ident.Variable, Tag: c.Types.Builtin().Int})
	if err != nil {
		t.Fatalf("failed to seed operator param: %v", err)
	}
	p1, err := c.Symbols.Add(scope, symbols.Symbol{Name: interner.Intern("b"), Ident: ident.Variable, Tag: c.Types.Builtin().Int})
	if err != nil {
		t.Fatalf("failed to seed operator param: %v", err)
	}
	_, err = c.Symbols.Add(scope, symbols.Symbol{
		Name:  interner.Intern("operator+"),
		Ident: ident.Function,
		Function: &symbols.FunctionData{
			Params:    []symbols.SymbolID{p0, p1},
			ReturnTag: c.Types.Builtin().Bool,
		},
	})
	if err != nil {
		t.Fatalf("failed to seed operator+: %v", err)
	}

	xName := interner.Intern("x")
	_, err = c.Symbols.Add(scope, symbols.Symbol{Name: xName, Ident: ident.Variable, Tag: c.Types.Builtin().Int})
	if err != nil {
		t.Fatalf("failed to seed x: %v", err)
	}

	left := c.Tree.Exprs.NewSymbol(source.Span{}, xName, false)
	right := c.Tree.Exprs.NewLiteral(source.Span{}, ast.ExprLiteralData{ConstVal: 1})
	assign := c.Tree.Exprs.NewBinary(source.Span{}, ast.BinAddAssign, left, right)

	if !c.CheckExpr(assign) {
		t.Fatalf("expected compound assignment to check cleanly, got: %+v", bag.Items())
	}
	e := c.Tree.Exprs.Get(assign)
	if e.Val.Tag != c.Types.Builtin().Bool {
		t.Fatalf("expected a compound assignment's result tag to come from its operator overload, got %v", e.Val.Tag)
	}
}
