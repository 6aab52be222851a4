package sema

import (
	"gscript/internal/ast"
	"gscript/internal/diag"
	"gscript/internal/ident"
)

// checkCast implements §4.5's "Cast" contract: a tag-name cast that
// forbids retargeting to void, warns when crossing the function/
// non-function boundary, and rejects enum-struct operands (which have
// no scalar representation to reinterpret).
func (c *Checker) checkCast(id ast.ExprID, e *ast.Expr) bool {
	data, ok := c.Tree.Exprs.Cast(id)
	if !ok {
		return false
	}
	if !c.CheckExpr(data.Operand) {
		c.errorValue(e)
		return false
	}
	operand := c.Tree.Exprs.Get(data.Operand)
	if c.Types.IsEnumStruct(operand.Val.Tag) {
		c.errorf(e.Span, diag.ErrUndefinedSymbol, "cannot cast an enum struct value")
		c.errorValue(e)
		return false
	}
	target, found := c.Types.Find(data.TagName)
	if !found {
		c.errorf(e.Span, diag.ErrUndefinedSymbol, "undefined tag %q", data.TagName)
		c.errorValue(e)
		return false
	}
	if target == c.Types.Builtin().Void {
		c.errorf(e.Span, diag.ErrVoidFunctionReturnsValue, "cannot cast to void")
		c.errorValue(e)
		return false
	}
	wasFunc := c.Types.IsFunction(operand.Val.Tag) || operand.Val.Tag == c.Types.Builtin().Function
	isFunc := c.Types.IsFunction(target) || target == c.Types.Builtin().Function
	if wasFunc != isFunc {
		c.warnf(e.Span, diag.WarnStringArrayTagMismatch, "cast changes function/non-function tag")
	}
	e.Val = operand.Val
	e.Val.Tag = target
	e.Val.Ident = ident.Expression
	if isArrayValue(operand.Val) {
		e.Val.Ident = ident.Array
	}
	e.LValue = operand.LValue
	e.SideEffect = operand.SideEffect
	return true
}

// checkComma implements §4.5's "Comma" contract: every sub-expression is
// checked, the last determines the result value, and side effects are a
// disjunction across all items.
func (c *Checker) checkComma(id ast.ExprID, e *ast.Expr) bool {
	data, ok := c.Tree.Exprs.Comma(id)
	if !ok {
		return false
	}
	if len(data.Items) == 0 {
		c.errorValue(e)
		return false
	}
	sideEffect := false
	var last *ast.Expr
	for i, item := range data.Items {
		if !c.CheckExpr(item) {
			c.errorValue(e)
			return false
		}
		ie := c.Tree.Exprs.Get(item)
		sideEffect = sideEffect || ie.SideEffect
		if i == len(data.Items)-1 {
			last = ie
		} else if !ie.SideEffect {
			c.warnf(ie.Span, diag.WarnNoSideEffect, "expression result unused")
		}
	}
	e.Val = last.Val
	e.LValue = last.LValue
	e.SideEffect = sideEffect
	return true
}

// AnalyzeForTest checks a boolean-condition expression: it rejects array
// values and warns when the condition constant-folds to a fixed truth
// value. It does not look up a user-defined `!` operator for the
// condition's tag and does not rewrite the condition.
func (c *Checker) AnalyzeForTest(id ast.ExprID) bool {
	if !c.CheckExpr(id) {
		return false
	}
	e := c.Tree.Exprs.Get(id)
	if isArrayValue(e.Val) {
		c.errorf(e.Span, diag.ErrArrayMustBeIndexed, "array value used where a condition is expected")
		return false
	}
	if val, _, err := c.Folder.Eval(id); err == nil {
		if val != 0 {
			c.warnf(e.Span, diag.WarnConstantConditionTrue, "condition is always true")
		} else {
			c.warnf(e.Span, diag.WarnConstantConditionFalse, "condition is always false")
		}
	}
	return true
}
