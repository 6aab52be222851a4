package sema

import (
	"gscript/internal/ast"
	"gscript/internal/diag"
	"gscript/internal/ident"
	"gscript/internal/symbols"
)

// RegisterFunc records the symbol a function declaration binds to, so a
// later call-site can reach it by FuncID alone (§4.7's memoized
// re-entry guard keys off FuncID, not the symbol).
func (c *Checker) RegisterFunc(funcID ast.FuncID, id symbols.SymbolID, sym *symbols.Symbol) {
	c.funcSymByDecl[funcID] = sym
	c.funcSymID[funcID] = id
}

// CheckFunc runs the function analyzer on funcID if a symbol has been
// registered for it and analysis hasn't started yet. It is the entry
// point the call checker's ensureFunctionAnalyzed reaches for recursive
// array-return size inference (§4.7).
func (c *Checker) CheckFunc(funcID ast.FuncID) {
	sym, ok := c.funcSymByDecl[funcID]
	if !ok || sym.Function == nil {
		return
	}
	c.AnalyzeFunc(funcID, sym)
}

// AnalyzeFunc implements §4.7's 8-step per-function analysis: forward/
// native short-circuit, forward/public return-tag agreement, a fresh
// SemaContext for return-flow tracking, the function body walk, a
// synthetic-return append when not every path returns a value, and the
// unused-local scan over the function's own scope tree.
func (c *Checker) AnalyzeFunc(funcID ast.FuncID, sym *symbols.Symbol) {
	if c.funcState[funcID] == funcDone || c.funcState[funcID] == funcInProgress {
		return
	}
	c.funcState[funcID] = funcInProgress
	defer func() { c.funcState[funcID] = funcDone }()

	fn := c.Tree.Funcs.Get(funcID)
	if fn == nil {
		return
	}
	if sym.Function.Forward.IsValid() {
		if fwd := c.Symbols.Symbol(sym.Function.Forward); fwd != nil && fwd.Function != nil {
			// Legacy `forward X(); public X()` idiom: the definition never
			// names a return tag of its own, so its effective tag retargets
			// to the forward's void rather than the implicit int default.
			if fn.ReturnTagName == "" && !fwd.Function.ReturnIsArray && fwd.Function.ReturnTag == c.Types.Builtin().Void {
				sym.Tag = c.Types.Builtin().Void
				sym.Function.ReturnTag = c.Types.Builtin().Void
			}
			if fwd.Function.ReturnTag != sym.Function.ReturnTag || fwd.Function.ReturnIsArray != sym.Function.ReturnIsArray {
				c.errorf(fn.Span, diag.ErrFunctionReturnTypeMismatch, "%s's implementation disagrees with its forward declaration's return type", c.name(fn.Name))
			}
		}
	}
	if fn.IsNative || fn.IsForward || !fn.Body.IsValid() {
		return
	}

	parentScope := c.currentScope()
	scope := c.Symbols.NewScope(symbols.ScopeFunction, parentScope, c.file, fn.Span)
	for _, pid := range sym.Function.Params {
		if psym := c.Symbols.Symbol(pid); psym != nil {
			c.Symbols.ChainExisting(scope, psym.Name, pid)
		}
	}

	isVoid := !sym.Function.ReturnIsArray && sym.Function.ReturnTag == c.Types.Builtin().Void
	ctx := &SemaContext{
		Func:       funcID,
		Scope:      scope,
		ReturnTag:  sym.Function.ReturnTag,
		IsVoidReturn: isVoid,
	}
	c.pushContext(ctx)
	flow := c.CheckStmt(fn.Body)
	ctx.AlwaysReturns = flow == ast.FlowReturn

	if !isVoid && !ctx.AlwaysReturns && !sym.Function.ReturnIsArray {
		c.errorf(fn.Span, diag.ErrFunctionNotAllPathsReturn, "%s does not return a value on every path", c.name(fn.Name))
		if block, ok := c.Tree.Stmts.Block(fn.Body); ok {
			ret := c.Tree.Stmts.NewReturn(fn.Span, ast.NoExprID, true)
			block.Stmts = append(block.Stmts, ret)
		}
		if body := c.Tree.Stmts.Get(fn.Body); body != nil {
			body.Flow = ast.FlowReturn
		}
		ctx.AlwaysReturns = true
	}

	c.checkUnusedInScope(scope)
	c.popContext()
}

// checkUnusedInScope walks scope and its children, warning on a local
// that was declared but never read (§4.9/§7).
func (c *Checker) checkUnusedInScope(scope symbols.ScopeID) {
	c.Symbols.Iterate(scope, func(id symbols.SymbolID, sym *symbols.Symbol) {
		if sym.Ident != ident.Variable && sym.Ident != ident.Array && sym.Ident != ident.Reference && sym.Ident != ident.RefArray {
			return
		}
		switch {
		case sym.Usage == 0:
			c.warnf(sym.Span, diag.WarnUnusedVariable, "%s is never used", c.name(sym.Name))
		case sym.Usage&symbols.UsageWritten != 0 && sym.Usage&symbols.UsageRead == 0:
			c.warnf(sym.Span, diag.WarnValueAssignedNeverRead, "value assigned to %s is never read", c.name(sym.Name))
		}
	})
	if sc := c.Symbols.Scope(scope); sc != nil {
		for _, child := range sc.Children {
			c.checkUnusedInScope(child)
		}
	}
}

// checkUnusedFunctions implements §4.8 driver step 2's function-usage
// scan: a defined function that is neither public, native, nor stock
// and was never read (called or otherwise referenced by name) is dead
// code.
func (c *Checker) checkUnusedFunctions(scope symbols.ScopeID) {
	c.Symbols.Iterate(scope, func(id symbols.SymbolID, sym *symbols.Symbol) {
		if sym.Ident != ident.Function || sym.Function == nil {
			return
		}
		if !sym.Flags.Has(symbols.FlagDefined) {
			return
		}
		if sym.Flags.Has(symbols.FlagPublic) || sym.Flags.Has(symbols.FlagNative) || sym.Flags.Has(symbols.FlagStock) {
			return
		}
		if sym.Usage&symbols.UsageRead == 0 {
			c.warnf(sym.Span, diag.WarnUnusedFunction, "%s is never used", c.name(sym.Name))
		}
	})
}
