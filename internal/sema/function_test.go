package sema

import (
	"testing"

	"gscript/internal/ast"
	"gscript/internal/diag"
	"gscript/internal/ident"
	"gscript/internal/source"
	"gscript/internal/symbols"
)

func TestAnalyzeFuncErrorsWhenNonVoidFunctionDoesNotAlwaysReturn(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	name := interner.Intern("GetValue")

	body := c.Tree.Stmts.NewBlock(source.Span{}, nil)
	funcID := c.Tree.Funcs.New(ast.Func{Name: name, ReturnTagName: "int", Body: body})

	sym := &symbols.Symbol{
		Name:     name,
		Ident:    ident.Function,
		Tag:      c.Types.Builtin().Int,
		Function: &symbols.FunctionData{ReturnTag: c.Types.Builtin().Int, DeclFunc: funcID},
	}

	c.AnalyzeFunc(funcID, sym)

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.ErrFunctionNotAllPathsReturn {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrFunctionNotAllPathsReturn, got %+v", bag.Items())
	}
}

func TestAnalyzeFuncAcceptsFunctionThatAlwaysReturns(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	name := interner.Intern("GetFive")

	lit := c.Tree.Exprs.NewLiteral(source.Span{}, ast.ExprLiteralData{ConstVal: 5})
	ret := c.Tree.Stmts.NewReturn(source.Span{}, lit, false)
	body := c.Tree.Stmts.NewBlock(source.Span{}, []ast.StmtID{ret})
	funcID := c.Tree.Funcs.New(ast.Func{Name: name, ReturnTagName: "int", Body: body})

	sym := &symbols.Symbol{
		Name:     name,
		Ident:    ident.Function,
		Tag:      c.Types.Builtin().Int,
		Function: &symbols.FunctionData{ReturnTag: c.Types.Builtin().Int, DeclFunc: funcID},
	}

	c.AnalyzeFunc(funcID, sym)

	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
}

func TestAnalyzeFuncSkipsNativeDeclarations(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	name := interner.Intern("NativeThing")
	funcID := c.Tree.Funcs.New(ast.Func{Name: name, IsNative: true, Body: ast.NoStmtID})

	sym := &symbols.Symbol{
		Name:     name,
		Ident:    ident.Function,
		Function: &symbols.FunctionData{ReturnTag: c.Types.Builtin().Int, DeclFunc: funcID},
	}

	c.AnalyzeFunc(funcID, sym)

	if bag.Len() != 0 {
		t.Fatalf("expected no diagnostics for a native declaration, got %+v", bag.Items())
	}
}

func TestAnalyzeFuncReportsForwardReturnTypeMismatch(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	name := interner.Intern("Handler")

	forwardID := c.Symbols.NewDetachedSymbol(symbols.Symbol{
		Name:     name,
		Ident:    ident.Function,
		Function: &symbols.FunctionData{ReturnTag: c.Types.Builtin().Int},
	})

	funcID := c.Tree.Funcs.New(ast.Func{Name: name, IsNative: true, Body: ast.NoStmtID})
	sym := &symbols.Symbol{
		Name:  name,
		Ident: ident.Function,
		Function: &symbols.FunctionData{
			ReturnTag: c.Types.Builtin().Bool,
			Forward:   forwardID,
			DeclFunc:  funcID,
		},
	}

	c.AnalyzeFunc(funcID, sym)

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.ErrFunctionReturnTypeMismatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ErrFunctionReturnTypeMismatch, got %+v", bag.Items())
	}
}

func TestAnalyzeFuncAppendsSyntheticReturnWhenNotAllPathsReturn(t *testing.T) {
	c, _, interner := newTestChecker(t)
	name := interner.Intern("GetValue")

	body := c.Tree.Stmts.NewBlock(source.Span{}, nil)
	funcID := c.Tree.Funcs.New(ast.Func{Name: name, ReturnTagName: "int", Body: body})

	sym := &symbols.Symbol{
		Name:     name,
		Ident:    ident.Function,
		Tag:      c.Types.Builtin().Int,
		Function: &symbols.FunctionData{ReturnTag: c.Types.Builtin().Int, DeclFunc: funcID},
	}

	c.AnalyzeFunc(funcID, sym)

	block, ok := c.Tree.Stmts.Block(body)
	if !ok {
		t.Fatalf("expected function body to remain a block")
	}
	if len(block.Stmts) != 1 {
		t.Fatalf("expected one synthesized return statement appended, got %d", len(block.Stmts))
	}
	ret, ok := c.Tree.Stmts.Return(block.Stmts[0])
	if !ok || !ret.Synthetic {
		t.Fatalf("expected the appended statement to be a synthetic return, got %+v ok=%v", ret, ok)
	}
	if bodyStmt := c.Tree.Stmts.Get(body); bodyStmt == nil || bodyStmt.Flow != ast.FlowReturn {
		t.Fatalf("expected the body block's flow to become FlowReturn after the synthetic append")
	}
}

func TestAnalyzeFuncRetargetsEffectiveReturnTagForForwardVoidIdiom(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	name := interner.Intern("OnPluginStart")

	forwardID := c.Symbols.NewDetachedSymbol(symbols.Symbol{
		Name:     name,
		Ident:    ident.Function,
		Function: &symbols.FunctionData{ReturnTag: c.Types.Builtin().Void},
	})

	body := c.Tree.Stmts.NewBlock(source.Span{}, nil)
	funcID := c.Tree.Funcs.New(ast.Func{Name: name, IsPublic: true, Body: body})
	sym := &symbols.Symbol{
		Name:  name,
		Ident: ident.Function,
		Tag:   c.Types.Builtin().Int,
		Function: &symbols.FunctionData{
			ReturnTag: c.Types.Builtin().Int,
			Forward:   forwardID,
			DeclFunc:  funcID,
		},
	}

	c.AnalyzeFunc(funcID, sym)

	for _, d := range bag.Items() {
		if d.Code == diag.ErrFunctionReturnTypeMismatch {
			t.Fatalf("did not expect a return-type mismatch for the legacy forward-void idiom, got %+v", bag.Items())
		}
	}
	if sym.Tag != c.Types.Builtin().Void {
		t.Fatalf("expected the definition's effective tag to retarget to void, got %v", sym.Tag)
	}
	if sym.Function.ReturnTag != c.Types.Builtin().Void {
		t.Fatalf("expected the definition's effective return tag to retarget to void, got %v", sym.Function.ReturnTag)
	}
}

func TestBindFunctionsWarnsDeprecatedNotStock(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeGlobal, symbols.NoScopeID, 0, source.Span{})

	name := interner.Intern("OldApi")
	body := c.Tree.Stmts.NewBlock(source.Span{}, nil)
	id := c.Tree.Funcs.New(ast.Func{Name: name, Body: body, Deprecated: "use NewApi instead"})
	c.Tree.File.Funcs = []ast.FuncID{id}

	c.bindFunctions(scope)

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.WarnDeprecatedUse {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected WarnDeprecatedUse for a deprecated, non-stock declaration, got %+v", bag.Items())
	}
}

func TestBindFunctionsDoesNotWarnDeprecatedStock(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeGlobal, symbols.NoScopeID, 0, source.Span{})

	name := interner.Intern("OldApi")
	body := c.Tree.Stmts.NewBlock(source.Span{}, nil)
	id := c.Tree.Funcs.New(ast.Func{Name: name, Body: body, IsStock: true, Deprecated: "use NewApi instead"})
	c.Tree.File.Funcs = []ast.FuncID{id}

	c.bindFunctions(scope)

	for _, d := range bag.Items() {
		if d.Code == diag.WarnDeprecatedUse {
			t.Fatalf("did not expect WarnDeprecatedUse for a stock declaration, got %+v", bag.Items())
		}
	}
}

func TestCheckUnusedFunctionsWarnsOnUnreadPrivateFunction(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeGlobal, symbols.NoScopeID, 0, source.Span{})

	name := interner.Intern("Helper")
	_, err := c.Symbols.Add(scope, symbols.Symbol{
		Name:     name,
		Ident:    ident.Function,
		Flags:    symbols.FlagDefined,
		Function: &symbols.FunctionData{ReturnTag: c.Types.Builtin().Int},
	})
	if err != nil {
		t.Fatalf("failed to seed symbol: %v", err)
	}

	c.checkUnusedFunctions(scope)

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.WarnUnusedFunction {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected WarnUnusedFunction for a never-called, non-public/native/stock function, got %+v", bag.Items())
	}
}

func TestCheckUnusedFunctionsSkipsPublicNativeAndStock(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	scope := c.Symbols.NewScope(symbols.ScopeGlobal, symbols.NoScopeID, 0, source.Span{})

	pub, _ := c.Symbols.Add(scope, symbols.Symbol{Name: interner.Intern("OnPluginStart"), Ident: ident.Function, Flags: symbols.FlagDefined | symbols.FlagPublic, Function: &symbols.FunctionData{}})
	nat, _ := c.Symbols.Add(scope, symbols.Symbol{Name: interner.Intern("GetTime"), Ident: ident.Function, Flags: symbols.FlagDefined | symbols.FlagNative, Function: &symbols.FunctionData{}})
	stk, _ := c.Symbols.Add(scope, symbols.Symbol{Name: interner.Intern("Utility"), Ident: ident.Function, Flags: symbols.FlagDefined | symbols.FlagStock, Function: &symbols.FunctionData{}})
	_ = pub
	_ = nat
	_ = stk

	c.checkUnusedFunctions(scope)

	if bag.Len() != 0 {
		t.Fatalf("expected no diagnostics for public/native/stock functions, got %+v", bag.Items())
	}
}

func TestAnalyzeFuncWarnsOnUnusedLocal(t *testing.T) {
	c, bag, interner := newTestChecker(t)
	funcName := interner.Intern("DoesNothingWithLocal")
	localName := interner.Intern("unused")

	decl := c.Tree.Stmts.NewVarDecl(source.Span{}, ast.StmtVarDeclData{
		Name:    localName,
		TagName: "int",
	})
	body := c.Tree.Stmts.NewBlock(source.Span{}, []ast.StmtID{decl})
	funcID := c.Tree.Funcs.New(ast.Func{Name: funcName, Body: body})

	sym := &symbols.Symbol{
		Name:  funcName,
		Ident: ident.Function,
		Function: &symbols.FunctionData{
			ReturnTag: c.Types.Builtin().Void,
			DeclFunc:  funcID,
		},
	}

	c.AnalyzeFunc(funcID, sym)

	found := false
	for _, d := range bag.Items() {
		if d.Code == diag.WarnUnusedVariable {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected WarnUnusedVariable for an unread local, got %+v", bag.Items())
	}
}
