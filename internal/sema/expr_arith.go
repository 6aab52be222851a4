package sema

import (
	"errors"

	"gscript/internal/ast"
	"gscript/internal/constfold"
	"gscript/internal/diag"
	"gscript/internal/ident"
	"gscript/internal/symbols"
	"gscript/internal/types"
)

func isArrayValue(v ast.Val) bool {
	return v.Ident == ident.Array || v.Ident == ident.RefArray
}

func (c *Checker) isIntTag(tag types.Tag) bool {
	return tag == c.Types.Builtin().Int || c.Types.IsEnum(tag)
}

// wrapRValue inserts a synthetic RValueExpr around inner whenever an
// l-value feeds an operator that needs the loaded value (§4.5), and
// returns the (possibly new) id to use as the operand from here on.
func (c *Checker) wrapRValue(inner ast.ExprID) ast.ExprID {
	e := c.Tree.Exprs.Get(inner)
	if e == nil || !e.LValue {
		return inner
	}
	if e.Val.Ident == ident.Accessor && !e.Val.Sym.IsValid() {
		c.errorf(e.Span, diag.ErrNoGetterForProperty, "no getter for property")
	}
	rv := c.Tree.Exprs.NewRValue(e.Span, inner)
	rve := c.Tree.Exprs.Get(rv)
	rve.Val = e.Val
	rve.SideEffect = e.SideEffect
	rve.HeapAlloc = e.HeapAlloc
	return rv
}

func (c *Checker) checkUnary(id ast.ExprID, e *ast.Expr) bool {
	data, ok := c.Tree.Exprs.Unary(id)
	if !ok {
		return false
	}
	if !c.CheckExpr(data.Operand) {
		c.errorValue(e)
		return false
	}
	operand := c.Tree.Exprs.Get(data.Operand)
	if isArrayValue(operand.Val) {
		c.errorf(e.Span, diag.ErrArrayMustBeIndexed, "array must be indexed")
		c.errorValue(e)
		return false
	}

	switch data.Op {
	case ast.UnaryIncPre, ast.UnaryDecPre, ast.UnaryIncPost, ast.UnaryDecPost:
		if !operand.LValue {
			c.errorf(e.Span, diag.ErrNotLValue, "operand of increment/decrement must be an l-value")
			c.errorValue(e)
			return false
		}
		e.Val = ast.Val{Ident: ident.Expression, Tag: operand.Val.Tag}
		e.SideEffect = true
		c.markWritten(operand.Val)
		return true
	}

	data.Operand = c.wrapRValue(data.Operand)

	if v, tag, err := c.Folder.Eval(id); err == nil {
		e.Val = ast.Val{Ident: ident.Constant, Tag: unaryResultTag(c, data.Op, tag), ConstVal: v}
		return true
	} else if errors.Is(err, constfold.ErrOverflow) {
		c.errorf(e.Span, diag.ErrIntOverflow, "constant expression overflows 32-bit integer")
		c.errorValue(e)
		return false
	}

	if uop, found := c.findUnaryUserOp(c.currentScope(), data.Op, operand.Val.Tag); found {
		opExpr := c.Tree.Exprs.NewSymbol(e.Span, 0, false)
		opEntry := c.Tree.Exprs.Get(opExpr)
		opEntry.Val = ast.Val{Ident: ident.Function, Sym: uop.Symbol.Ref()}
		call := c.Tree.Exprs.NewCallUserOp(e.Span, opExpr, []ast.ExprID{data.Operand}, false)
		*e = *c.Tree.Exprs.Get(call)
		sym := c.Symbols.Symbol(uop.Symbol)
		e.Val = ast.Val{Ident: ident.Expression, Tag: sym.Function.ReturnTag}
		e.SideEffect = true
		return true
	}

	switch data.Op {
	case ast.UnaryNot:
		e.Val = ast.Val{Ident: ident.Expression, Tag: c.Types.Builtin().Bool}
	case ast.UnaryComplement:
		if !c.isIntTag(operand.Val.Tag) {
			c.errorf(e.Span, diag.ErrUndefinedSymbol, "'~' requires an integer operand")
		}
		e.Val = ast.Val{Ident: ident.Expression, Tag: operand.Val.Tag}
	case ast.UnaryNeg:
		e.Val = ast.Val{Ident: ident.Expression, Tag: operand.Val.Tag}
	}
	return true
}

func unaryResultTag(c *Checker, op ast.UnaryOp, operandTag types.Tag) types.Tag {
	if op == ast.UnaryNot {
		return c.Types.Builtin().Bool
	}
	return operandTag
}

func (c *Checker) markWritten(v ast.Val) {
	if v.Sym.IsValid() {
		c.Symbols.MarkUsage(symbols.SymbolIDFromRef(v.Sym), symbols.UsageWritten)
	}
}

// checkBinary implements §4.5's "Binary" contract, including the
// assignment sub-case.
func (c *Checker) checkBinary(id ast.ExprID, e *ast.Expr) bool {
	data, ok := c.Tree.Exprs.Binary(id)
	if !ok {
		return false
	}
	// An assignment's left-hand side is only ever written, never read, by
	// the assignment itself — a bare `x = 5;` must not also count as a
	// use of x (§4.9). A compound base expression like `arr[i]` still
	// reads its own sub-parts (the array and the index) normally; only
	// the direct symbol node at the root of the LHS is exempted.
	if data.Op.IsAssignment() {
		if lhs := c.Tree.Exprs.Get(data.Left); lhs != nil && lhs.Kind == ast.ExprSymbol {
			c.suppressRead = true
		}
	}
	if !c.CheckExpr(data.Left) {
		c.suppressRead = false
		c.errorValue(e)
		return false
	}
	if !c.CheckExpr(data.Right) {
		c.errorValue(e)
		return false
	}
	left := c.Tree.Exprs.Get(data.Left)
	right := c.Tree.Exprs.Get(data.Right)

	if data.Op.IsAssignment() {
		return c.checkAssignment(id, e, data, left, right)
	}

	if isArrayValue(left.Val) || isArrayValue(right.Val) {
		c.errorf(e.Span, diag.ErrArrayMustBeIndexed, "array must be indexed")
		c.errorValue(e)
		return false
	}

	data.Left = c.wrapRValue(data.Left)
	data.Right = c.wrapRValue(data.Right)

	if v, tag, err := c.Folder.Eval(id); err == nil {
		e.Val = ast.Val{Ident: ident.Constant, Tag: tag, ConstVal: v}
		return true
	} else if errors.Is(err, constfold.ErrDivByZero) {
		c.errorf(e.Span, diag.ErrDivByZero, "division by zero in constant expression")
		c.errorValue(e)
		return false
	} else if errors.Is(err, constfold.ErrOverflow) {
		c.errorf(e.Span, diag.ErrIntOverflow, "constant expression overflows 32-bit integer")
		c.errorValue(e)
		return false
	}

	if uop, found := c.findUserOp(c.currentScope(), data.Op, left.Val.Tag, right.Val.Tag); found {
		rewriteBinaryToUserOp(c, e, data, uop)
		return true
	}

	if data.Op.IsComparison() {
		if !c.matchTagCommutative(left.Val.Tag, right.Val.Tag, MatchCoerce) {
			c.warnf(e.Span, diag.WarnStringArrayTagMismatch, "comparing values of mismatched tag")
		}
		e.Val = ast.Val{Ident: ident.Expression, Tag: c.Types.Builtin().Bool}
		return true
	}

	if !c.matchTagCommutative(left.Val.Tag, right.Val.Tag, MatchCoerce) {
		c.warnf(e.Span, diag.WarnStringArrayTagMismatch, "operands have mismatched tags")
	}
	resultTag := left.Val.Tag
	if left.Val.Tag == c.Types.Builtin().Int {
		resultTag = right.Val.Tag
	}
	e.Val = ast.Val{Ident: ident.Expression, Tag: resultTag}
	return true
}

func rewriteBinaryToUserOp(c *Checker, e *ast.Expr, data *ast.ExprBinaryData, uop UserOperation) {
	opExpr := c.Tree.Exprs.NewSymbol(e.Span, 0, false)
	opEntry := c.Tree.Exprs.Get(opExpr)
	sym := c.Symbols.Symbol(uop.Symbol)
	opEntry.Val = ast.Val{Ident: ident.Function, Sym: uop.Symbol.Ref()}
	args := []ast.ExprID{data.Left, data.Right}
	call := c.Tree.Exprs.NewCallUserOp(e.Span, opExpr, args, uop.Swapped)
	*e = *c.Tree.Exprs.Get(call)
	e.Val = ast.Val{Ident: ident.Expression, Tag: sym.Function.ReturnTag}
	e.SideEffect = true
}

// checkAssignment implements the Binary arm's assignment sub-contract:
// l-value, non-const LHS; array-shape agreement; array-copy-length
// computation; self-assignment detection (§9 OQ3).
func (c *Checker) checkAssignment(id ast.ExprID, e *ast.Expr, data *ast.ExprBinaryData, left, right *ast.Expr) bool {
	// Assigning to a packed character cell (`s[0] = 'a';`) is permitted
	// unconditionally: the original compiler bypasses the ordinary
	// l-value/const/tag checks entirely for this ident kind.
	if left.Val.Ident == ident.ArrayChar {
		data.Right = c.wrapRValue(data.Right)
		c.markWritten(left.Val)
		e.Val = ast.Val{Ident: ident.Expression, Tag: left.Val.Tag}
		e.SideEffect = true
		e.LValue = false
		return true
	}
	if !left.LValue {
		c.errorf(e.Span, diag.ErrNotLValue, "left-hand side of assignment is not an l-value")
		c.errorValue(e)
		return false
	}
	if sym := c.symbolOf(left.Val); sym != nil && sym.Flags.Has(symbols.FlagConst) {
		c.errorf(e.Span, diag.ErrNotLValue, "cannot assign to a const symbol")
		c.errorValue(e)
		return false
	}
	if left.Val.Ident == ident.Accessor && !left.Val.Accessor.IsValid() {
		c.errorf(e.Span, diag.ErrNoSetterForProperty, "no setter for property")
		c.errorValue(e)
		return false
	}

	lu := c.Tree.Exprs.Unwrap(data.Left)
	ru := c.Tree.Exprs.Unwrap(data.Right)
	if lu == ru {
		c.warnOnce(selfAssignKey(lu), e.Span, diag.WarnSelfAssignment, "variable assigned to itself")
	} else if lv, rv := c.Tree.Exprs.Get(lu).Val, c.Tree.Exprs.Get(ru).Val; lv.Sym.IsValid() && lv.Sym == rv.Sym && lv.Ident == rv.Ident {
		c.warnOnce(selfAssignKey(lu), e.Span, diag.WarnSelfAssignment, "variable assigned to itself")
	}

	resultTag := left.Val.Tag
	if isArrayValue(left.Val) {
		if !isArrayValue(right.Val) && right.Val.Tag != c.Types.Builtin().String {
			c.errorf(e.Span, diag.ErrArraySizeMismatch, "cannot assign non-array value to array")
			c.errorValue(e)
			return false
		}
		tagMismatch := !c.matchTag(left.Val.Tag, right.Val.Tag, MatchCoerce)
		if tagMismatch {
			c.warnf(e.Span, diag.WarnStringArrayTagMismatch, "assigning array of mismatched tag")
		}
		leftSym := c.symbolOf(left.Val)
		rightSym := c.symbolOf(right.Val)
		if leftSym != nil && rightSym != nil && leftSym.Dim.Length != rightSym.Dim.Length {
			c.errorf(e.Span, diag.ErrArraySizeMismatch, "array sizes must match")
			c.errorValue(e)
			return false
		}
		data.ArrayCopyLen = arrayCopyLength(c, left.Val, rightSym)
	} else {
		data.Right = c.wrapRValue(data.Right)
		right = c.Tree.Exprs.Get(data.Right)

		if base, ok := compoundAssignBase(data.Op); ok {
			if uop, found := c.findUserOp(c.currentScope(), base, left.Val.Tag, right.Val.Tag); found {
				sym := c.Symbols.Symbol(uop.Symbol)
				resultTag = sym.Function.ReturnTag
			} else if !c.matchTag(left.Val.Tag, right.Val.Tag, MatchCoerce) {
				c.warnf(e.Span, diag.WarnStringArrayTagMismatch, "assigning value of mismatched tag")
			}
		} else if !c.matchTag(left.Val.Tag, right.Val.Tag, MatchCoerce) {
			c.warnf(e.Span, diag.WarnStringArrayTagMismatch, "assigning value of mismatched tag")
		}
	}

	c.markWritten(left.Val)
	e.Val = ast.Val{Ident: ident.Expression, Tag: resultTag}
	e.SideEffect = true
	e.LValue = false
	return true
}

func selfAssignKey(id ast.ExprID) string {
	return "selfassign:" + itoa(int(id))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// arrayCopyLength computes the source length, or char_array_cells(length)
// for string arrays (§4.5).
func arrayCopyLength(c *Checker, left ast.Val, rightSym *symbols.Symbol) int32 {
	if rightSym == nil {
		return 0
	}
	if left.Tag == c.Types.Builtin().String || rightSym.Ident == ident.ArrayChar {
		return charArrayCells(rightSym.Dim.Length)
	}
	return rightSym.Dim.Length
}

// charArrayCells rounds up a byte length to whole cells (4 bytes/cell),
// mirroring the original compiler's char_array_cells macro.
func charArrayCells(length int32) int32 {
	return (length + 3) / 4
}

func (c *Checker) symbolOf(v ast.Val) *symbols.Symbol {
	if !v.Sym.IsValid() {
		return nil
	}
	return c.Symbols.Symbol(symbols.SymbolIDFromRef(v.Sym))
}

func (c *Checker) checkLogical(id ast.ExprID, e *ast.Expr) bool {
	data, ok := c.Tree.Exprs.Logical(id)
	if !ok {
		return false
	}
	if !c.CheckExpr(data.Left) || !c.CheckExpr(data.Right) {
		c.errorValue(e)
		return false
	}
	left := c.Tree.Exprs.Get(data.Left)
	right := c.Tree.Exprs.Get(data.Right)
	if isArrayValue(left.Val) || isArrayValue(right.Val) {
		c.errorf(e.Span, diag.ErrArrayMustBeIndexed, "logical operand must be scalar")
		c.errorValue(e)
		return false
	}
	data.Left = c.wrapRValue(data.Left)
	data.Right = c.wrapRValue(data.Right)
	if v, tag, err := c.Folder.Eval(id); err == nil {
		e.Val = ast.Val{Ident: ident.Constant, Tag: tag, ConstVal: v}
		return true
	}
	e.Val = ast.Val{Ident: ident.Expression, Tag: c.Types.Builtin().Bool}
	return true
}

func (c *Checker) checkCompare(id ast.ExprID, e *ast.Expr) bool {
	data, ok := c.Tree.Exprs.Compare(id)
	if !ok {
		return false
	}
	anyUserOp := false
	for i, operand := range data.Operands {
		if !c.CheckExpr(operand) {
			c.errorValue(e)
			return false
		}
		opExpr := c.Tree.Exprs.Get(operand)
		if isArrayValue(opExpr.Val) {
			c.errorf(e.Span, diag.ErrArrayMustBeIndexed, "array must be indexed")
			c.errorValue(e)
			return false
		}
		data.Operands[i] = c.wrapRValue(operand)
	}
	for i, op := range data.Ops {
		l := c.Tree.Exprs.Get(data.Operands[i]).Val
		r := c.Tree.Exprs.Get(data.Operands[i+1]).Val
		if _, found := c.findUserOp(c.currentScope(), binOpFromCmp(op), l.Tag, r.Tag); found {
			anyUserOp = true
		}
	}
	if !anyUserOp {
		if v, tag, err := c.Folder.Eval(id); err == nil {
			e.Val = ast.Val{Ident: ident.Constant, Tag: tag, ConstVal: v}
			return true
		}
	}
	e.Val = ast.Val{Ident: ident.Expression, Tag: c.Types.Builtin().Bool}
	return true
}

func binOpFromCmp(op ast.CompareOp) ast.BinaryOp {
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

func (c *Checker) checkTernary(id ast.ExprID, e *ast.Expr) bool {
	data, ok := c.Tree.Exprs.Ternary(id)
	if !ok {
		return false
	}
	if !c.AnalyzeForTest(data.Cond) {
		c.errorValue(e)
		return false
	}
	data.Cond = c.wrapRValue(data.Cond)
	if !c.CheckExpr(data.TrueExpr) || !c.CheckExpr(data.FalseExpr) {
		c.errorValue(e)
		return false
	}
	t := c.Tree.Exprs.Get(data.TrueExpr)
	f := c.Tree.Exprs.Get(data.FalseExpr)

	if isArrayValue(t.Val) && isArrayValue(f.Val) {
		tSym, fSym := c.symbolOf(t.Val), c.symbolOf(f.Val)
		tag := t.Val.Tag
		if tSym != nil && fSym != nil && fSym.Dim.Length > tSym.Dim.Length {
			tag = f.Val.Tag
		}
		e.Val = ast.Val{Ident: ident.Expression, Tag: tag}
	} else {
		if !c.matchTagCommutative(t.Val.Tag, f.Val.Tag, MatchCoerce) {
			c.warnf(e.Span, diag.WarnStringArrayTagMismatch, "ternary branches have mismatched tags")
		}
		data.TrueExpr = c.wrapRValue(data.TrueExpr)
		data.FalseExpr = c.wrapRValue(data.FalseExpr)
		if v, tag, err := c.Folder.Eval(id); err == nil {
			e.Val = ast.Val{Ident: ident.Constant, Tag: tag, ConstVal: v}
			return true
		}
		e.Val = ast.Val{Ident: ident.Expression, Tag: t.Val.Tag}
	}
	return true
}
