package sema

import (
	"testing"

	"gscript/internal/ast"
	"gscript/internal/diag"
	"gscript/internal/ident"
	"gscript/internal/source"
	"gscript/internal/symbols"
)

func TestCheckVarDeclStmtFoldsConstInitializer(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeGlobal, symbols.NoScopeID, 0, source.Span{})
	c.pushContext(&SemaContext{Scope: scope})

	name := interner.Intern("MAX")
	lit := c.Tree.Exprs.NewLiteral(source.Span{}, ast.ExprLiteralData{ConstVal: 42})
	declID := c.Tree.Stmts.NewVarDecl(source.Span{}, ast.StmtVarDeclData{
		Name:    name,
		TagName: "int",
		IsConst: true,
		Init:    lit,
	})

	flow := c.CheckStmt(declID)

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if flow != ast.FlowNone {
		t.Fatalf("expected FlowNone from a declaration, got %v", flow)
	}
	symID, ok := c.Symbols.FindLocal(scope, name)
	if !ok {
		t.Fatalf("expected MAX to be bound in scope")
	}
	sym := c.Symbols.Symbol(symID)
	if sym.Ident != ident.Constant {
		t.Fatalf("expected a folded const initializer to bind as ident.Constant, got %v", sym.Ident)
	}
	if sym.ConstVal != 42 {
		t.Fatalf("expected ConstVal == 42, got %d", sym.ConstVal)
	}
	if !sym.Flags.Has(symbols.FlagConst) {
		t.Fatalf("expected FlagConst to be set")
	}
}

func TestCheckIfStmtWithoutElseIsMixedFlow(t *testing.T) {
	c, bag, _ := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeFunction, symbols.NoScopeID, 0, source.Span{})
	c.pushContext(&SemaContext{Scope: scope, IsVoidReturn: true})

	cond := c.Tree.Exprs.NewLiteral(source.Span{}, ast.ExprLiteralData{ConstVal: 1})
	ret := c.Tree.Stmts.NewReturn(source.Span{}, ast.NoExprID, false)
	ifID := c.Tree.Stmts.NewIf(source.Span{}, cond, ret, ast.NoStmtID)

	flow := c.CheckStmt(ifID)

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if flow != ast.FlowMixed {
		t.Fatalf("expected a bare if-without-else that returns to be FlowMixed, got %v", flow)
	}
}

func TestCheckIfStmtBothBranchesReturningIsReturnFlow(t *testing.T) {
	c, bag, _ := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeFunction, symbols.NoScopeID, 0, source.Span{})
	c.pushContext(&SemaContext{Scope: scope, IsVoidReturn: true})

	cond := c.Tree.Exprs.NewLiteral(source.Span{}, ast.ExprLiteralData{ConstVal: 1})
	thenRet := c.Tree.Stmts.NewReturn(source.Span{}, ast.NoExprID, false)
	elseRet := c.Tree.Stmts.NewReturn(source.Span{}, ast.NoExprID, false)
	ifID := c.Tree.Stmts.NewIf(source.Span{}, cond, thenRet, elseRet)

	flow := c.CheckStmt(ifID)

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if flow != ast.FlowReturn {
		t.Fatalf("expected both branches returning to merge into FlowReturn, got %v", flow)
	}
}

func TestCheckBlockStmtWarnsOnCodeAfterReturn(t *testing.T) {
	c, bag, _ := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeFunction, symbols.NoScopeID, 0, source.Span{})
	c.pushContext(&SemaContext{Scope: scope, IsVoidReturn: true})

	ret := c.Tree.Stmts.NewReturn(source.Span{}, ast.NoExprID, false)
	lit := c.Tree.Exprs.NewLiteral(source.Span{Start: 99}, ast.ExprLiteralData{ConstVal: 1})
	trailing := c.Tree.Stmts.NewExprStmt(source.Span{Start: 99}, lit)
	block := c.Tree.Stmts.NewBlock(source.Span{}, []ast.StmtID{ret, trailing})

	flow := c.CheckStmt(block)

	if flow != ast.FlowReturn {
		t.Fatalf("expected the block's flow to be FlowReturn, got %v", flow)
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.WarnUnreachableCode {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected WarnUnreachableCode for the statement after return, got %+v", bag.Items())
	}
}

func TestCheckVarDeclStmtPStructFieldInitializerRecordsCrossReference(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeGlobal, symbols.NoScopeID, 0, source.Span{})
	c.pushContext(&SemaContext{Scope: scope})

	c.Tree.File.PStructs = []ast.PStructDecl{{Name: "Point"}}
	c.bindPStructs()

	targetName := interner.Intern("Origin")
	targetID, err := c.Symbols.Add(scope, symbols.Symbol{
		Name:  targetName,
		Ident: ident.Variable,
		Tag:   c.Types.Builtin().Int,
	})
	if err != nil {
		t.Fatalf("failed to seed target symbol: %v", err)
	}

	fieldName := interner.Intern("x")
	fieldVal := c.Tree.Exprs.NewSymbol(source.Span{}, targetName, false)
	declID := c.Tree.Stmts.NewVarDecl(source.Span{}, ast.StmtVarDeclData{
		Name:        interner.Intern("p"),
		PStructName: "Point",
		PStructInit: []ast.PStructFieldInit{{Field: fieldName, Value: fieldVal}},
	})

	c.CheckStmt(declID)

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	declSymID, ok := c.Symbols.FindLocal(scope, interner.Intern("p"))
	if !ok {
		t.Fatalf("expected p to be bound in scope")
	}
	declSym := c.Symbols.Symbol(declSymID)
	foundRef := false
	for _, ref := range declSym.References {
		if ref == targetID {
			foundRef = true
		}
	}
	if !foundRef {
		t.Fatalf("expected p to record a reference to Origin, got %+v", declSym.References)
	}
	targetSym := c.Symbols.Symbol(targetID)
	foundBack := false
	for _, from := range targetSym.ReferencedBy {
		if from == declSymID {
			foundBack = true
		}
	}
	if !foundBack {
		t.Fatalf("expected Origin's ReferencedBy to include p, got %+v", targetSym.ReferencedBy)
	}
}

func TestCheckDeleteStmtRequiresMethodmapValue(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeFunction, symbols.NoScopeID, 0, source.Span{})
	c.pushContext(&SemaContext{Scope: scope})

	name := interner.Intern("notAHandle")
	symID, err := c.Symbols.Add(scope, symbols.Symbol{
		Name:  name,
		Ident: ident.Variable,
		Tag:   c.Types.Builtin().Int,
	})
	if err != nil {
		t.Fatalf("failed to seed symbol: %v", err)
	}
	_ = symID

	ref := c.Tree.Exprs.NewSymbol(source.Span{}, name, false)
	delID := c.Tree.Stmts.NewDelete(source.Span{}, ref)

	c.CheckStmt(delID)

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.ErrUndefinedSymbol {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an error deleting a non-methodmap value, got %+v", bag.Items())
	}
}
