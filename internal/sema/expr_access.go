package sema

import (
	"gscript/internal/ast"
	"gscript/internal/diag"
	"gscript/internal/ident"
	"gscript/internal/symbols"
	"gscript/internal/types"
)

// checkIndex implements §4.5's "Index" contract.
func (c *Checker) checkIndex(id ast.ExprID, e *ast.Expr) bool {
	data, ok := c.Tree.Exprs.Index(id)
	if !ok {
		return false
	}
	if !c.CheckExpr(data.Base) {
		c.errorValue(e)
		return false
	}
	base := c.Tree.Exprs.Get(data.Base)
	if !isArrayValue(base.Val) {
		c.errorf(e.Span, diag.ErrArrayMustBeIndexed, "indexed expression is not an array")
		c.errorValue(e)
		return false
	}
	if c.Types.IsEnumStruct(base.Val.Tag) {
		c.errorf(e.Span, diag.ErrArrayMustBeIndexed, "enum-struct array cannot be directly indexed")
		c.errorValue(e)
		return false
	}
	if !c.CheckExpr(data.Index) {
		c.errorValue(e)
		return false
	}
	idxExpr := c.Tree.Exprs.Get(data.Index)
	if isArrayValue(idxExpr.Val) {
		c.errorf(e.Span, diag.ErrArrayMustBeIndexed, "array index must be scalar")
		c.errorValue(e)
		return false
	}
	baseSym := c.symbolOf(base.Val)
	if baseSym != nil && idxExpr.Val.IsConstant() {
		if idxExpr.Val.ConstVal < 0 || (baseSym.Dim.Length > 0 && idxExpr.Val.ConstVal >= baseSym.Dim.Length) {
			c.errorf(e.Span, diag.ErrArrayMustBeIndexed, "array index out of bounds")
		}
	}
	data.Index = c.wrapRValue(data.Index)

	if baseSym != nil && baseSym.Dim.Level > 1 {
		e.Val = ast.Val{Ident: ident.Array, Tag: base.Val.Tag, Sym: baseSym.Child.Ref()}
		e.LValue = false
		return true
	}
	resultIdent := ident.ArrayCell
	if base.Val.Tag == c.Types.Builtin().String {
		resultIdent = ident.ArrayChar
	}
	e.Val = ast.Val{Ident: resultIdent, Tag: base.Val.Tag}
	e.LValue = true
	return true
}

// checkField implements §4.5's "Field access" contract: methodmap method
// / getter-setter / bound-method resolution, enum-struct field synthesis,
// and the static `::` compile-time offset operator.
func (c *Checker) checkField(id ast.ExprID, e *ast.Expr) bool {
	data, ok := c.Tree.Exprs.Field(id)
	if !ok {
		return false
	}
	baseIsTypeRef := c.isTypeRefSymbol(data.Base)
	if !baseIsTypeRef {
		if !c.CheckExpr(data.Base) {
			c.errorValue(e)
			return false
		}
	}
	base := c.Tree.Exprs.Get(data.Base)
	fieldName := c.name(data.Field)

	if data.Static {
		return c.checkStaticFieldOffset(e, base, fieldName)
	}

	if c.Types.IsEnumStruct(base.Val.Tag) {
		return c.checkEnumStructField(e, base, fieldName)
	}
	if c.Types.IsMethodmap(base.Val.Tag) || baseIsTypeRef {
		return c.checkMethodmapField(e, base, fieldName, baseIsTypeRef)
	}
	c.errorf(e.Span, diag.ErrUndefinedSymbol, "%q has no field %q", c.Types.Name(base.Val.Tag), fieldName)
	c.errorValue(e)
	return false
}

// isTypeRefSymbol reports whether id is a bare symbol reference allowed
// to name a type (the `X.Y` form where X is a methodmap/enum-struct
// name, not a value of that type).
func (c *Checker) isTypeRefSymbol(id ast.ExprID) bool {
	data, ok := c.Tree.Exprs.Symbol(id)
	if !ok {
		return false
	}
	_, found := c.Symbols.Find(c.currentScope(), data.Name)
	if !found {
		return false
	}
	data.AllowTypeRef = true
	ok2 := c.CheckExpr(id)
	e := c.Tree.Exprs.Get(id)
	return ok2 && (e.Val.Ident == ident.Methodmap || e.Val.Ident == ident.EnumStruct)
}

func (c *Checker) checkEnumStructField(e *ast.Expr, base *ast.Expr, fieldName string) bool {
	field, offset, found := c.Types.EnumStructField(base.Val.Tag, fieldName)
	if !found {
		c.errorf(e.Span, diag.ErrUndefinedSymbol, "enum struct %q has no field %q", c.Types.Name(base.Val.Tag), fieldName)
		c.errorValue(e)
		return false
	}
	baseSym := c.symbolOf(base.Val)
	if baseSym == nil {
		c.errorValue(e)
		return false
	}
	if baseSym.EnumStruct == nil {
		baseSym.EnumStruct = &symbols.EnumStructVarData{Children: make(map[string]symbols.SymbolID)}
	}
	childID, ok := baseSym.EnumStruct.Children[fieldName]
	if !ok {
		childIdent := ident.ArrayCell
		dim := symbols.ArrayDim{}
		if field.ArraySize > 0 {
			childIdent = ident.Array
			dim = symbols.ArrayDim{Length: int32(field.ArraySize), Level: 1}
		}
		baseID := symbols.SymbolIDFromRef(base.Val.Sym)
		childID = c.Symbols.NewDetachedSymbol(symbols.Symbol{
			Name:   c.str.Intern(fieldName),
			Ident:  childIdent,
			Tag:    field.Tag,
			Dim:    dim,
			Parent: baseID,
			Span:   e.Span,
			File:   c.file,
		})
		baseSym.EnumStruct.Children[fieldName] = childID
	}
	child := c.Symbols.Symbol(childID)
	e.Val = ast.Val{Ident: child.Ident, Tag: child.Tag, Sym: childID.Ref()}
	e.LValue = isLValueIdent(child.Ident)
	_ = offset
	return true
}

func (c *Checker) checkStaticFieldOffset(e *ast.Expr, base *ast.Expr, fieldName string) bool {
	_, offset, found := c.Types.EnumStructField(base.Val.Tag, fieldName)
	if !found {
		c.errorf(e.Span, diag.ErrUndefinedSymbol, "enum struct %q has no field %q", c.Types.Name(base.Val.Tag), fieldName)
		c.errorValue(e)
		return false
	}
	e.Val = ast.Val{Ident: ident.Constant, Tag: c.Types.Builtin().Int, ConstVal: int32(offset)}
	return true
}

func (c *Checker) checkMethodmapField(e *ast.Expr, base *ast.Expr, fieldName string, baseIsTypeRef bool) bool {
	method, _, found := c.Types.ResolveMethod(base.Val.Tag, fieldName)
	if !found {
		c.errorf(e.Span, diag.ErrUndefinedSymbol, "%q has no method or property %q", c.Types.Name(base.Val.Tag), fieldName)
		c.errorValue(e)
		return false
	}
	if baseIsTypeRef && !method.Static {
		c.errorf(e.Span, diag.ErrUndefinedSymbol, "%q is an instance method, not static", fieldName)
		c.errorValue(e)
		return false
	}
	switch method.Accessor {
	case types.AccessorGetter, types.AccessorSetter:
		getter, setter := method.Symbol, method.Paired
		if method.Accessor == types.AccessorSetter {
			getter, setter = method.Paired, method.Symbol
		}
		tag := c.Types.Builtin().Any
		if getter.IsValid() {
			if gsym := c.Symbols.Symbol(symbols.SymbolIDFromRef(getter)); gsym != nil && gsym.Function != nil {
				tag = gsym.Function.ReturnTag
			}
		} else if setter.IsValid() {
			if ssym := c.Symbols.Symbol(symbols.SymbolIDFromRef(setter)); ssym != nil && ssym.Function != nil && len(ssym.Function.Params) > 0 {
				if p := c.Symbols.Symbol(ssym.Function.Params[0]); p != nil {
					tag = p.Tag
				}
			}
		}
		e.Val = ast.Val{Ident: ident.Accessor, Tag: tag, Sym: getter, Accessor: setter}
		e.LValue = true
		return true
	}
	msym := c.Symbols.Symbol(symbols.SymbolIDFromRef(method.Symbol))
	tag := c.Types.Builtin().Function
	if msym != nil && msym.Function != nil {
		tag = msym.Function.ReturnTag
	}
	e.Val = ast.Val{Ident: ident.Function, Tag: tag, Sym: method.Symbol}
	e.LValue = false
	return true
}

// checkSizeof implements §4.5's "Sizeof" contract: a symbol plus n
// index levels plus an optional trailing field.
func (c *Checker) checkSizeof(id ast.ExprID, e *ast.Expr) bool {
	data, ok := c.Tree.Exprs.Sizeof(id)
	if !ok {
		return false
	}
	if !c.CheckExpr(data.Base) {
		c.errorValue(e)
		return false
	}
	base := c.Tree.Exprs.Get(data.Base)
	sym := c.symbolOf(base.Val)
	if sym == nil {
		e.Val = ast.Val{Ident: ident.Constant, Tag: c.Types.Builtin().Int, ConstVal: 1}
		return true
	}
	if data.IndexLevels > 0 && c.Types.IsEnumStruct(sym.Tag) {
		c.errorf(e.Span, diag.ErrArrayMustBeIndexed, "cannot index into an enum struct with sizeof")
		c.errorValue(e)
		return false
	}
	dim := sym.Dim
	if data.Field != 0 {
		fieldName := c.name(data.Field)
		if data.StaticField {
			return c.checkStaticFieldOffset(e, base, fieldName)
		}
		field, _, found := c.Types.EnumStructField(sym.Tag, fieldName)
		if !found {
			c.errorf(e.Span, diag.ErrUndefinedSymbol, "enum struct %q has no field %q", c.Types.Name(sym.Tag), fieldName)
			c.errorValue(e)
			return false
		}
		size := int32(1)
		if field.ArraySize > 0 {
			size = int32(field.ArraySize)
		}
		e.Val = ast.Val{Ident: ident.Constant, Tag: c.Types.Builtin().Int, ConstVal: size}
		return true
	}
	if data.IndexLevels == 0 && c.Types.IsEnumStruct(sym.Tag) {
		if es, ok := c.Types.Lookup(sym.Tag); ok {
			if payload, ok := es.EnumStruct(); ok {
				e.Val = ast.Val{Ident: ident.Constant, Tag: c.Types.Builtin().Int, ConstVal: int32(payload.SizeCells)}
				return true
			}
		}
	}
	size := dim.Length
	if size == 0 {
		size = 1
	}
	e.Val = ast.Val{Ident: ident.Constant, Tag: c.Types.Builtin().Int, ConstVal: size}
	return true
}
