package sema

import (
	"gscript/internal/ast"
	"gscript/internal/diag"
	"gscript/internal/ident"
	"gscript/internal/symbols"
)

// CheckExpr dispatches on id's kind, filling in its Val/LValue/
// SideEffect/HeapAlloc fields (§4.5). It returns false if the
// expression could not be type-checked; callers that need to keep
// analyzing substitute an ErrorValue (tag int, constant zero) so a
// failed sub-expression doesn't cascade into spurious diagnostics
// further up the tree (§7).
func (c *Checker) CheckExpr(id ast.ExprID) bool {
	e := c.Tree.Exprs.Get(id)
	if e == nil {
		return false
	}
	switch e.Kind {
	case ast.ExprSymbol:
		return c.checkSymbol(id, e)
	case ast.ExprLiteral:
		return c.checkLiteral(id, e)
	case ast.ExprUnary:
		return c.checkUnary(id, e)
	case ast.ExprBinary:
		return c.checkBinary(id, e)
	case ast.ExprLogical:
		return c.checkLogical(id, e)
	case ast.ExprCompare:
		return c.checkCompare(id, e)
	case ast.ExprTernary:
		return c.checkTernary(id, e)
	case ast.ExprIndex:
		return c.checkIndex(id, e)
	case ast.ExprField:
		return c.checkField(id, e)
	case ast.ExprCall:
		return c.checkCall(id, e)
	case ast.ExprNewArray:
		c.errorf(e.Span, diag.ErrNewArrayNotSupported, "'new' array expressions are not supported")
		c.errorValue(e)
		return false
	case ast.ExprSizeof:
		return c.checkSizeof(id, e)
	case ast.ExprCast:
		return c.checkCast(id, e)
	case ast.ExprComma:
		return c.checkComma(id, e)
	case ast.ExprRValue:
		rv, _ := c.Tree.Exprs.RValue(id)
		ok := c.CheckExpr(rv.Inner)
		inner := c.Tree.Exprs.Get(rv.Inner)
		if inner != nil {
			e.Val = inner.Val
			e.SideEffect = inner.SideEffect
			e.HeapAlloc = inner.HeapAlloc
		}
		e.LValue = false
		return ok
	default:
		return false
	}
}

// errorValue resets e's Val to the constant-zero placeholder the
// original compiler calls ErrorValue (§7): subsequent uses of a failed
// expression's value continue analysis instead of cascading.
func (c *Checker) errorValue(e *ast.Expr) {
	e.Val = ast.Val{Ident: ident.Constant, Tag: c.Types.Builtin().Int, ConstVal: 0}
	e.LValue = false
}

func (c *Checker) checkLiteral(id ast.ExprID, e *ast.Expr) bool {
	lit, ok := c.Tree.Exprs.Literal(id)
	if !ok {
		return false
	}
	if lit.IsString {
		e.Val = ast.Val{Ident: ident.Constant, Tag: c.Types.Builtin().String, ConstVal: lit.ConstVal}
		return true
	}
	tag := e.Val.Tag
	if tag == 0 && !c.Types.IsEnum(tag) {
		tag = c.Types.Builtin().Int
	}
	e.Val = ast.Val{Ident: ident.Constant, Tag: tag, ConstVal: lit.ConstVal}
	return true
}

// checkSymbol resolves a bare name reference (§4.5 "Symbol reference").
func (c *Checker) checkSymbol(id ast.ExprID, e *ast.Expr) bool {
	data, ok := c.Tree.Exprs.Symbol(id)
	if !ok {
		return false
	}
	symID, found := c.Symbols.Find(c.currentScope(), data.Name)
	if !found {
		c.errorf(e.Span, diag.ErrUndefinedSymbol, "undefined symbol %q", c.name(data.Name))
		c.errorValue(e)
		return false
	}
	sym := c.Symbols.Symbol(symID)
	if sym.Ident == ident.Methodmap || sym.Ident == ident.EnumStruct {
		if !data.AllowTypeRef {
			c.errorf(e.Span, diag.ErrUndefinedSymbol, "%q names a type, not a value, in this context", c.name(data.Name))
			c.errorValue(e)
			return false
		}
	}
	suppressRead := c.suppressRead
	c.suppressRead = false
	if !suppressRead {
		c.Symbols.MarkUsage(symID, symbols.UsageRead)
	}
	e.Val = ast.Val{Ident: sym.Ident, Tag: sym.Tag, Sym: symID.Ref()}
	if sym.Ident == ident.Constant {
		e.Val.ConstVal = sym.ConstVal
	}
	e.LValue = isLValueIdent(sym.Ident)
	if sym.Ident == ident.Function && sym.Function != nil {
		// Any reference to a function by name, native or not and
		// including a call's own target, sets FlagCallback. The value
		// keeps the symbol's own tag; it is not retagged to a
		// function-typeset tag.
		sym.Flags |= symbols.FlagCallback
	}
	return true
}

func isLValueIdent(k ident.Kind) bool {
	switch k {
	case ident.Variable, ident.Reference, ident.ArrayCell, ident.ArrayChar, ident.Accessor:
		return true
	default:
		return false
	}
}
