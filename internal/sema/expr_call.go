package sema

import (
	"gscript/internal/ast"
	"gscript/internal/diag"
	"gscript/internal/ident"
	"gscript/internal/symbols"
)

// checkCall implements §4.5's "Call" contract, binding the target via
// bindCallTarget or (for `new Name(...)`) bindNewTarget.
func (c *Checker) checkCall(id ast.ExprID, e *ast.Expr) bool {
	data, ok := c.Tree.Exprs.Call(id)
	if !ok {
		return false
	}
	if data.IsNew {
		return c.bindNewTarget(id, e, data)
	}
	return c.bindCallTarget(id, e, data)
}

func (c *Checker) bindCallTarget(id ast.ExprID, e *ast.Expr, data *ast.ExprCallData) bool {
	targetSym, ctorNewOnly, ok := c.resolveCallTarget(data.Target)
	if !ok {
		c.errorValue(e)
		return false
	}
	if ctorNewOnly {
		c.errorf(e.Span, diag.ErrUndefinedSymbol, "constructor requires 'new'")
		c.errorValue(e)
		return false
	}
	return c.bindArgsAndResolve(e, targetSym, data)
}

func (c *Checker) bindNewTarget(id ast.ExprID, e *ast.Expr, data *ast.ExprCallData) bool {
	tdata, ok := c.Tree.Exprs.Symbol(data.Target)
	if !ok {
		c.errorf(e.Span, diag.ErrUndefinedSymbol, "'new' requires a methodmap name")
		c.errorValue(e)
		return false
	}
	tdata.AllowTypeRef = true
	if !c.CheckExpr(data.Target) {
		c.errorValue(e)
		return false
	}
	target := c.Tree.Exprs.Get(data.Target)
	if target.Val.Ident != ident.Methodmap {
		c.errorf(e.Span, diag.ErrUndefinedSymbol, "'new' requires a methodmap name")
		c.errorValue(e)
		return false
	}
	ty, ok := c.Types.Lookup(target.Val.Tag)
	if !ok {
		c.errorValue(e)
		return false
	}
	mm, ok := ty.Methodmap()
	if !ok || !mm.Constructor.IsValid() {
		c.errorf(e.Span, diag.ErrUndefinedSymbol, "%q has no constructor", c.Types.Name(target.Val.Tag))
		c.errorValue(e)
		return false
	}
	ctorSym := c.Symbols.Symbol(symbols.SymbolIDFromRef(mm.Constructor))
	if ctorSym == nil || ctorSym.Function == nil {
		c.errorValue(e)
		return false
	}
	if !c.bindArgsAndResolve(e, ctorSym, data) {
		return false
	}
	e.Val.Tag = target.Val.Tag
	e.Val.Ident = ident.Expression
	return true
}

// resolveCallTarget checks the target expression and returns the
// resolved callee symbol, along with whether it is a new-only
// constructor (rejected from a bare call).
func (c *Checker) resolveCallTarget(target ast.ExprID) (*symbols.Symbol, bool, bool) {
	if tdata, ok := c.Tree.Exprs.Symbol(target); ok {
		tdata.AllowTypeRef = true
	}
	if !c.CheckExpr(target) {
		return nil, false, false
	}
	e := c.Tree.Exprs.Get(target)
	switch e.Val.Ident {
	case ident.Function:
		sym := c.symbolOf(e.Val)
		if sym == nil {
			return nil, false, false
		}
		if sym.Flags.Has(symbols.FlagDeprecated) && sym.Function != nil && sym.Function.Deprecated != "" {
			c.warnOnce("deprecated:"+sym.Function.Deprecated, e.Span, diag.WarnDeprecatedUse, "use of deprecated function: %s", sym.Function.Deprecated)
		}
		if ctx := c.context(); ctx != nil {
			if callerID, ok := c.funcSymID[ctx.Func]; ok {
				if calleeID := symbols.SymbolIDFromRef(e.Val.Sym); calleeID.IsValid() {
					c.Symbols.AddReferenceTo(callerID, calleeID)
				}
			}
		}
		return sym, false, true
	case ident.Methodmap:
		ty, ok := c.Types.Lookup(e.Val.Tag)
		if !ok {
			return nil, false, false
		}
		mm, ok := ty.Methodmap()
		if !ok || !mm.Constructor.IsValid() {
			return nil, false, false
		}
		ctorSym := c.Symbols.Symbol(symbols.SymbolIDFromRef(mm.Constructor))
		return ctorSym, mm.NewOnly, ctorSym != nil
	default:
		if e.Val.Ident == ident.Accessor {
			c.errorf(e.Span, diag.ErrCtorOnFieldAccess, "constructor call not allowed on field access")
		}
		return nil, false, false
	}
}

// bindArgsAndResolve implements the argument-binding half of §4.5's Call
// contract and, on success, sets e's Val from fn's signature.
func (c *Checker) bindArgsAndResolve(e *ast.Expr, fn *symbols.Symbol, data *ast.ExprCallData) bool {
	if fn == nil || fn.Function == nil {
		c.errorValue(e)
		return false
	}
	if fn.Function.ReturnIsArray && fn.Function.ArrayReturn.IsValid() {
		if arr := c.Symbols.Symbol(fn.Function.ArrayReturn); arr != nil && arr.Dim.Length == 0 {
			if !c.ensureFunctionAnalyzed(fn.Function.DeclFunc) {
				c.errorf(e.Span, diag.ErrRecursiveReturnInference, "recursive call requires return-size inference")
				c.errorValue(e)
				return false
			}
		}
	}

	params := fn.Function.Params
	nonVararg := len(params)
	varArgs := false
	if nonVararg > 0 {
		if last := c.Symbols.Symbol(params[nonVararg-1]); last != nil && last.Ident == ident.VarArgs {
			varArgs = true
			nonVararg--
		}
	}

	bound := make([]ast.ExprID, nonVararg)
	for i := range bound {
		bound[i] = ast.NoExprID
	}
	var extra []ast.ExprID

	namedSeen := make(map[int]bool)
	pos := 0
	for _, arg := range data.Args {
		if arg.Name == 0 {
			if pos < nonVararg {
				bound[pos] = arg.Value
				pos++
				continue
			}
			if varArgs {
				extra = append(extra, arg.Value)
				continue
			}
			c.errorf(e.Span, diag.ErrArgumentCount, "too many arguments")
			c.errorValue(e)
			return false
		}
		name := c.name(arg.Name)
		idx := -1
		for i, pid := range params[:nonVararg] {
			if psym := c.Symbols.Symbol(pid); psym != nil && c.name(psym.Name) == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			c.errorf(e.Span, diag.ErrArgumentCount, "no parameter named %q", name)
			c.errorValue(e)
			return false
		}
		if namedSeen[idx] || bound[idx].IsValid() {
			c.errorf(e.Span, diag.ErrArgumentCount, "duplicate argument for parameter %q", name)
			c.errorValue(e)
			return false
		}
		namedSeen[idx] = true
		bound[idx] = arg.Value
	}

	for i, pid := range params[:nonVararg] {
		psym := c.Symbols.Symbol(pid)
		if psym == nil {
			continue
		}
		if !bound[i].IsValid() {
			var def ast.ExprID
			if i < len(fn.Function.Defaults) {
				def = fn.Function.Defaults[i]
			}
			if !def.IsValid() {
				c.errorf(e.Span, diag.ErrArgumentCount, "missing argument %q", c.name(psym.Name))
				c.errorValue(e)
				return false
			}
			bound[i] = c.Tree.Exprs.NewDefaultArg(e.Span, ast.ExprDefaultArgData{GlobalRef: def})
		}
		if !c.checkCallArg(e, psym, bound[i]) {
			return false
		}
	}
	for _, v := range extra {
		if !c.CheckExpr(v) {
			c.errorValue(e)
			return false
		}
		ve := c.Tree.Exprs.Get(v)
		if !ve.LValue {
			c.markHeapAlloc(ve)
		}
	}

	data.Args = data.Args[:0]
	for _, id := range bound {
		data.Args = append(data.Args, ast.CallArg{Value: id})
	}
	for _, id := range extra {
		data.Args = append(data.Args, ast.CallArg{Value: id})
	}

	e.Val = ast.Val{Ident: ident.Expression, Tag: fn.Function.ReturnTag}
	if fn.Function.ReturnIsArray {
		e.Val.Ident = ident.Array
	}
	e.SideEffect = true
	return true
}

// checkCallArg type-checks one bound argument against its formal
// parameter's kind (§4.5's per-parameter-kind rules).
func (c *Checker) checkCallArg(call *ast.Expr, param *symbols.Symbol, argID ast.ExprID) bool {
	if _, ok := c.Tree.Exprs.DefaultArg(argID); ok {
		return true
	}
	if !c.CheckExpr(argID) {
		c.errorValue(call)
		return false
	}
	arg := c.Tree.Exprs.Get(argID)
	switch param.Ident {
	case ident.Variable:
		if isArrayValue(arg.Val) {
			c.errorf(call.Span, diag.ErrArgumentCount, "argument %q expects a scalar", c.name(param.Name))
			return false
		}
		if !c.matchTag(param.Tag, arg.Val.Tag, MatchCoerce) {
			c.warnf(call.Span, diag.WarnStringArrayTagMismatch, "argument %q has mismatched tag", c.name(param.Name))
		}
	case ident.Reference:
		if !arg.LValue {
			c.errorf(call.Span, diag.ErrNotLValue, "argument %q requires an l-value", c.name(param.Name))
			return false
		}
		if sym := c.symbolOf(arg.Val); sym != nil && sym.Flags.Has(symbols.FlagConst) {
			c.errorf(call.Span, diag.ErrNotLValue, "argument %q requires a non-const l-value", c.name(param.Name))
			return false
		}
	case ident.Array, ident.RefArray:
		if arg.Val.Ident == ident.ArrayChar {
			c.errorf(call.Span, diag.ErrArgumentCount, "argument %q cannot bind a string cell as an array", c.name(param.Name))
			return false
		}
		argSym := c.symbolOf(arg.Val)
		if argSym != nil {
			if param.Dim.Length != 0 && argSym.Dim.Length != 0 && param.Dim.Length != argSym.Dim.Length {
				c.errorf(call.Span, diag.ErrArraySizeMismatch, "argument %q array size mismatch", c.name(param.Name))
				return false
			}
			if !c.matchTag(param.IndexTag, argSym.IndexTag, MatchCoerce|MatchSilent) && param.IndexTag != 0 && argSym.IndexTag != 0 {
				c.warnf(call.Span, diag.WarnStringArrayTagMismatch, "argument %q index tag mismatch", c.name(param.Name))
			}
			paramIsString := param.Tag == c.Types.Builtin().String
			argIsString := argSym.Ident == ident.ArrayChar || argSym.Tag == c.Types.Builtin().String
			if paramIsString != argIsString {
				c.errorf(call.Span, diag.ErrArraySizeMismatch, "argument %q string/non-string array mismatch", c.name(param.Name))
				return false
			}
		}
	case ident.VarArgs:
		if !arg.LValue {
			c.markHeapAlloc(arg)
		}
	}
	return true
}

// ensureFunctionAnalyzed runs the function analyzer on fn if it hasn't
// started yet, returning false if fn is already in progress (a cycle,
// §4.7/§4.8 error 411).
func (c *Checker) ensureFunctionAnalyzed(fn ast.FuncID) bool {
	if !fn.IsValid() {
		return true
	}
	switch c.funcState[fn] {
	case funcDone:
		return true
	case funcInProgress:
		return false
	default:
		c.CheckFunc(fn)
		return true
	}
}
