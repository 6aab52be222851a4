package sema

import (
	"testing"

	"gscript/internal/ast"
	"gscript/internal/diag"
	"gscript/internal/source"
	"gscript/internal/symbols"
	"gscript/internal/types"
)

func newTestChecker(t *testing.T) (*Checker, *diag.Bag, *source.Interner) {
	t.Helper()
	tree := ast.NewTree("test.sp")
	reg := types.NewRegistry()
	tbl := symbols.NewTable()
	bag := diag.NewBag(50)
	rep := diag.BagReporter{Bag: bag}
	interner := source.NewInterner()
	return New(tree, reg, tbl, interner, rep, source.FileID(0)), bag, interner
}

func TestBindEnumsImplicitSequencing(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeGlobal, symbols.NoScopeID, 0, source.Span{})

	a := interner.Intern("Red")
	b := interner.Intern("Green")
	c.Tree.File.Enums = []ast.EnumDecl{
		{
			Name: "Color",
			Fields: []ast.EnumFieldDecl{
				{Name: a, Value: ast.NoExprID},
				{Name: b, Value: ast.NoExprID},
			},
		},
	}

	c.bindEnums(scope)

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	redID, ok := c.Symbols.FindLocal(scope, a)
	if !ok {
		t.Fatalf("expected Red to be bound in scope")
	}
	greenID, ok := c.Symbols.FindLocal(scope, b)
	if !ok {
		t.Fatalf("expected Green to be bound in scope")
	}
	if got := c.Symbols.Symbol(redID).ConstVal; got != 0 {
		t.Fatalf("expected Red == 0, got %d", got)
	}
	if got := c.Symbols.Symbol(greenID).ConstVal; got != 1 {
		t.Fatalf("expected Green == 1 (implicit sequencing), got %d", got)
	}
}

func TestBindEnumsCollidingWithAnotherKindReportsError(t *testing.T) {
	c, bag, _ := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeGlobal, symbols.NoScopeID, 0, source.Span{})

	c.Tree.File.PStructs = []ast.PStructDecl{{Name: "State"}}
	c.bindPStructs()
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics binding the pseudo-struct: %+v", bag.Items())
	}

	c.Tree.File.Enums = []ast.EnumDecl{{Name: "State"}}
	c.bindEnums(scope)

	if !bag.HasErrors() {
		t.Fatalf("expected a duplicate-type error when an enum reuses a pseudo-struct's name")
	}
	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.ErrDuplicateType {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrDuplicateType, got %+v", bag.Items())
	}
}

func TestBindFunctionsPairsForwardWithPublicDefinition(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeGlobal, symbols.NoScopeID, 0, source.Span{})

	name := interner.Intern("Frob")
	forwardID := c.Tree.Funcs.New(ast.Func{Name: name, IsForward: true, Body: ast.NoStmtID})
	bodyID := c.Tree.Stmts.NewBlock(source.Span{}, nil)
	defID := c.Tree.Funcs.New(ast.Func{Name: name, IsPublic: true, Body: bodyID})
	c.Tree.File.Funcs = []ast.FuncID{forwardID, defID}

	c.bindFunctions(scope)

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics pairing forward/public: %+v", bag.Items())
	}

	forwardSymID, ok := c.funcSymID[forwardID]
	if !ok {
		t.Fatalf("expected forward declaration to register a symbol")
	}
	defSymID, ok := c.funcSymID[defID]
	if !ok {
		t.Fatalf("expected definition to register a symbol")
	}
	if forwardSymID != defSymID {
		t.Fatalf("expected the public definition to reuse the forward's SymbolID (stable reference), got %d vs %d", forwardSymID, defSymID)
	}

	sym := c.Symbols.Symbol(defSymID)
	if sym.Function.Forward != defSymID {
		t.Fatalf("expected Function.Forward to reference the (now-shared) symbol ID, got %d", sym.Function.Forward)
	}
	if !sym.Flags.Has(symbols.FlagPublic) {
		t.Fatalf("expected the merged symbol to carry FlagPublic")
	}
}

func TestBindFunctionsRedeclarationWithoutForwardIsAnError(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeGlobal, symbols.NoScopeID, 0, source.Span{})

	name := interner.Intern("Dup")
	body1 := c.Tree.Stmts.NewBlock(source.Span{}, nil)
	body2 := c.Tree.Stmts.NewBlock(source.Span{}, nil)
	id1 := c.Tree.Funcs.New(ast.Func{Name: name, Body: body1})
	id2 := c.Tree.Funcs.New(ast.Func{Name: name, Body: body2})
	c.Tree.File.Funcs = []ast.FuncID{id1, id2}

	c.bindFunctions(scope)

	if !bag.HasErrors() {
		t.Fatalf("expected a redeclaration error for two defined functions sharing a name")
	}
}

func TestAnalyzeRecordsCrossReferenceFromCallerToCallee(t *testing.T) {
	c, bag, interner := newTestChecker(t)

	calleeName := interner.Intern("Helper")
	calleeBody := c.Tree.Stmts.NewBlock(source.Span{}, nil)
	calleeID := c.Tree.Funcs.New(ast.Func{Name: calleeName, ReturnTagName: "void", Body: calleeBody})

	target := c.Tree.Exprs.NewSymbol(source.Span{}, calleeName, false)
	call := c.Tree.Exprs.NewCall(source.Span{}, target, nil, false)
	callStmt := c.Tree.Stmts.NewExprStmt(source.Span{}, call)
	callerBody := c.Tree.Stmts.NewBlock(source.Span{}, []ast.StmtID{callStmt})
	callerID := c.Tree.Funcs.New(ast.Func{Name: interner.Intern("OnPluginStart"), IsPublic: true, ReturnTagName: "void", Body: callerBody})

	c.Tree.File.Funcs = []ast.FuncID{calleeID, callerID}

	c.Analyze()

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	callerSymID, ok := c.funcSymID[callerID]
	if !ok {
		t.Fatalf("expected caller to register a symbol")
	}
	calleeSymID, ok := c.funcSymID[calleeID]
	if !ok {
		t.Fatalf("expected callee to register a symbol")
	}
	callerSym := c.Symbols.Symbol(callerSymID)
	foundRef := false
	for _, ref := range callerSym.References {
		if ref == calleeSymID {
			foundRef = true
		}
	}
	if !foundRef {
		t.Fatalf("expected the caller to record a reference to the callee, got %+v", callerSym.References)
	}
	calleeSym := c.Symbols.Symbol(calleeSymID)
	foundBack := false
	for _, from := range calleeSym.ReferencedBy {
		if from == callerSymID {
			foundBack = true
		}
	}
	if !foundBack {
		t.Fatalf("expected the callee's ReferencedBy to include the caller, got %+v", calleeSym.ReferencedBy)
	}
	for _, d := range bag.Items() {
		if d.Code == diag.WarnUnusedFunction {
			t.Fatalf("did not expect WarnUnusedFunction for a called helper, got %+v", d)
		}
	}
}

func TestCheckEntryPointRequiresAPublicFunction(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeGlobal, symbols.NoScopeID, 0, source.Span{})

	name := interner.Intern("Helper")
	id := c.Tree.Funcs.New(ast.Func{Name: name, Body: ast.NoStmtID, IsStock: true})
	c.Tree.File.Funcs = []ast.FuncID{id}
	c.bindFunctions(scope)

	c.checkEntryPoint()

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.ErrEntryPointMissing {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrEntryPointMissing when no function is public")
	}
}

func TestCheckEntryPointSatisfiedByAnyPublicFunction(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeGlobal, symbols.NoScopeID, 0, source.Span{})

	name := interner.Intern("OnPluginStart")
	body := c.Tree.Stmts.NewBlock(source.Span{}, nil)
	id := c.Tree.Funcs.New(ast.Func{Name: name, IsPublic: true, Body: body})
	c.Tree.File.Funcs = []ast.FuncID{id}
	c.bindFunctions(scope)

	c.checkEntryPoint()

	for _, d := range bag.Items() {
		if d.Code == diag.ErrEntryPointMissing {
			t.Fatalf("did not expect ErrEntryPointMissing when a public function exists")
		}
	}
}
