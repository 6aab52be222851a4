package ast

import "gscript/internal/source"

// ExprKind discriminates the expression node variants the checker
// dispatches on (§4.5).
type ExprKind uint8

const (
	ExprSymbol ExprKind = iota
	ExprLiteral
	ExprUnary
	ExprBinary
	ExprLogical
	ExprCompare // chained comparison, a < b < c
	ExprTernary
	ExprIndex
	ExprField // `.` and `::` access
	ExprCall
	ExprNewArray // reserved, always rejects with diagnostic 142
	ExprSizeof
	ExprCast
	ExprComma

	// Synthetic nodes inserted by the checker itself, never produced by
	// the parser.
	ExprRValue     // forces the load of an l-value for an operator that needs it
	ExprCallUserOp // rewrite of an operator expression into a user-overload call
	ExprDefaultArg // placeholder for a missing call argument
)

// Expr is the node header common to every expression: its kind, source
// span, and (after checking) its resolved value. Kind-specific operand
// data lives in a per-kind payload arena, indexed by Payload.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID

	Val    Val
	LValue bool
	// SideEffect is set when evaluating this expression can mutate
	// state (an assignment, a call, an increment) — the comma operator
	// ORs this across its items.
	SideEffect bool
	// HeapAlloc marks an expression whose evaluation allocates a
	// temporary on the heap (a literal array, a variadic argument not
	// already addressable) pending ownership assignment (§4.9).
	HeapAlloc bool
}

// CallArg is one argument to a call expression: Name is NoStringID for
// a positional argument, set for a `.name = value` named argument.
type CallArg struct {
	Name  source.StringID
	Value ExprID
}

type (
	ExprSymbolData struct {
		Name source.StringID
		// AllowTypeRef permits resolving Name to a methodmap/enum-struct
		// name itself rather than a value (as in `X.Y` where X is a type).
		AllowTypeRef bool
	}

	ExprLiteralData struct {
		IsString bool
		// ConstVal is the folded integer/float-bits value for a scalar
		// literal, or the negatively-encoded length (including the NUL
		// terminator) for a string literal.
		ConstVal   int32
		StringText source.StringID
	}

	ExprUnaryData struct {
		Op      UnaryOp
		Operand ExprID
	}

	ExprBinaryData struct {
		Op    BinaryOp
		Left  ExprID
		Right ExprID
		// ArrayCopyLen is computed for array-assignment operators: the
		// source length, or char_array_cells(length) for string arrays.
		ArrayCopyLen int32
	}

	ExprLogicalData struct {
		Op    LogicalOp
		Left  ExprID
		Right ExprID
	}

	ExprCompareData struct {
		// Operands has len(Ops)+1 entries; Ops[i] relates Operands[i]
		// to Operands[i+1].
		Operands []ExprID
		Ops      []CompareOp
	}

	ExprTernaryData struct {
		Cond      ExprID
		TrueExpr  ExprID
		FalseExpr ExprID
	}

	ExprIndexData struct {
		Base  ExprID
		Index ExprID
	}

	ExprFieldData struct {
		Base  ExprID
		Field source.StringID
		// Static marks the `::` compile-time offset operator, vs `.`.
		Static bool
	}

	ExprCallData struct {
		Target ExprID
		Args   []CallArg
		IsNew  bool
	}

	ExprNewArrayData struct {
		Dims []ExprID
	}

	ExprSizeofData struct {
		Base ExprID
		// IndexLevels is the number of `[]` suffixes before any trailing
		// field access.
		IndexLevels int
		Field       source.StringID
		StaticField bool
	}

	ExprCastData struct {
		TagName string
		Operand ExprID
	}

	ExprCommaData struct {
		Items []ExprID
	}

	ExprRValueData struct {
		Inner ExprID
	}

	ExprCallUserOpData struct {
		OpSymbol ExprID // the resolved operator function, as a symbol reference expr
		Args     []ExprID
		Swapped  bool
	}

	ExprDefaultArgData struct {
		// GlobalRef, if set, means the default value is itself a
		// reference to a global symbol rather than a folded constant.
		GlobalRef ExprID
	}
)

// Exprs is the per-kind arena set for expression nodes.
type Exprs struct {
	Arena *Arena[Expr]

	Symbols     *Arena[ExprSymbolData]
	Literals    *Arena[ExprLiteralData]
	Unaries     *Arena[ExprUnaryData]
	Binaries    *Arena[ExprBinaryData]
	Logicals    *Arena[ExprLogicalData]
	Compares    *Arena[ExprCompareData]
	Ternaries   *Arena[ExprTernaryData]
	Indices     *Arena[ExprIndexData]
	Fields      *Arena[ExprFieldData]
	Calls       *Arena[ExprCallData]
	NewArrays   *Arena[ExprNewArrayData]
	Sizeofs     *Arena[ExprSizeofData]
	Casts       *Arena[ExprCastData]
	Commas      *Arena[ExprCommaData]
	RValues     *Arena[ExprRValueData]
	UserOps     *Arena[ExprCallUserOpData]
	DefaultArgs *Arena[ExprDefaultArgData]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:       NewArena[Expr](capHint),
		Symbols:     NewArena[ExprSymbolData](capHint),
		Literals:    NewArena[ExprLiteralData](capHint),
		Unaries:     NewArena[ExprUnaryData](capHint / 4),
		Binaries:    NewArena[ExprBinaryData](capHint),
		Logicals:    NewArena[ExprLogicalData](capHint / 4),
		Compares:    NewArena[ExprCompareData](capHint / 8),
		Ternaries:   NewArena[ExprTernaryData](capHint / 8),
		Indices:     NewArena[ExprIndexData](capHint / 4),
		Fields:      NewArena[ExprFieldData](capHint / 4),
		Calls:       NewArena[ExprCallData](capHint / 2),
		NewArrays:   NewArena[ExprNewArrayData](capHint / 16),
		Sizeofs:     NewArena[ExprSizeofData](capHint / 16),
		Casts:       NewArena[ExprCastData](capHint / 8),
		Commas:      NewArena[ExprCommaData](capHint / 16),
		RValues:     NewArena[ExprRValueData](capHint / 4),
		UserOps:     NewArena[ExprCallUserOpData](capHint / 8),
		DefaultArgs: NewArena[ExprDefaultArgData](capHint / 8),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: payload}))
}

// Get returns the node header for id, or nil if id is invalid.
func (e *Exprs) Get(id ExprID) *Expr { return e.Arena.Get(uint32(id)) }

func (e *Exprs) NewSymbol(span source.Span, name source.StringID, allowTypeRef bool) ExprID {
	p := e.Symbols.Allocate(ExprSymbolData{Name: name, AllowTypeRef: allowTypeRef})
	return e.new(ExprSymbol, span, PayloadID(p))
}

func (e *Exprs) Symbol(id ExprID) (*ExprSymbolData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprSymbol {
		return nil, false
	}
	return e.Symbols.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewLiteral(span source.Span, d ExprLiteralData) ExprID {
	p := e.Literals.Allocate(d)
	return e.new(ExprLiteral, span, PayloadID(p))
}

func (e *Exprs) Literal(id ExprID) (*ExprLiteralData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprLiteral {
		return nil, false
	}
	return e.Literals.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewUnary(span source.Span, op UnaryOp, operand ExprID) ExprID {
	p := e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand})
	return e.new(ExprUnary, span, PayloadID(p))
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprUnary {
		return nil, false
	}
	return e.Unaries.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewBinary(span source.Span, op BinaryOp, left, right ExprID) ExprID {
	p := e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})
	return e.new(ExprBinary, span, PayloadID(p))
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprBinary {
		return nil, false
	}
	return e.Binaries.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewLogical(span source.Span, op LogicalOp, left, right ExprID) ExprID {
	p := e.Logicals.Allocate(ExprLogicalData{Op: op, Left: left, Right: right})
	return e.new(ExprLogical, span, PayloadID(p))
}

func (e *Exprs) Logical(id ExprID) (*ExprLogicalData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprLogical {
		return nil, false
	}
	return e.Logicals.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewCompare(span source.Span, operands []ExprID, ops []CompareOp) ExprID {
	p := e.Compares.Allocate(ExprCompareData{
		Operands: append([]ExprID(nil), operands...),
		Ops:      append([]CompareOp(nil), ops...),
	})
	return e.new(ExprCompare, span, PayloadID(p))
}

func (e *Exprs) Compare(id ExprID) (*ExprCompareData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprCompare {
		return nil, false
	}
	return e.Compares.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewTernary(span source.Span, cond, t, f ExprID) ExprID {
	p := e.Ternaries.Allocate(ExprTernaryData{Cond: cond, TrueExpr: t, FalseExpr: f})
	return e.new(ExprTernary, span, PayloadID(p))
}

func (e *Exprs) Ternary(id ExprID) (*ExprTernaryData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprTernary {
		return nil, false
	}
	return e.Ternaries.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewIndex(span source.Span, base, index ExprID) ExprID {
	p := e.Indices.Allocate(ExprIndexData{Base: base, Index: index})
	return e.new(ExprIndex, span, PayloadID(p))
}

func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprIndex {
		return nil, false
	}
	return e.Indices.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewField(span source.Span, base ExprID, field source.StringID, static bool) ExprID {
	p := e.Fields.Allocate(ExprFieldData{Base: base, Field: field, Static: static})
	return e.new(ExprField, span, PayloadID(p))
}

func (e *Exprs) Field(id ExprID) (*ExprFieldData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprField {
		return nil, false
	}
	return e.Fields.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewCall(span source.Span, target ExprID, args []CallArg, isNew bool) ExprID {
	p := e.Calls.Allocate(ExprCallData{Target: target, Args: append([]CallArg(nil), args...), IsNew: isNew})
	return e.new(ExprCall, span, PayloadID(p))
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewNewArray(span source.Span, dims []ExprID) ExprID {
	p := e.NewArrays.Allocate(ExprNewArrayData{Dims: append([]ExprID(nil), dims...)})
	return e.new(ExprNewArray, span, PayloadID(p))
}

func (e *Exprs) NewSizeof(span source.Span, d ExprSizeofData) ExprID {
	p := e.Sizeofs.Allocate(d)
	return e.new(ExprSizeof, span, PayloadID(p))
}

func (e *Exprs) Sizeof(id ExprID) (*ExprSizeofData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprSizeof {
		return nil, false
	}
	return e.Sizeofs.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewCast(span source.Span, tagName string, operand ExprID) ExprID {
	p := e.Casts.Allocate(ExprCastData{TagName: tagName, Operand: operand})
	return e.new(ExprCast, span, PayloadID(p))
}

func (e *Exprs) Cast(id ExprID) (*ExprCastData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprCast {
		return nil, false
	}
	return e.Casts.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewComma(span source.Span, items []ExprID) ExprID {
	p := e.Commas.Allocate(ExprCommaData{Items: append([]ExprID(nil), items...)})
	return e.new(ExprComma, span, PayloadID(p))
}

func (e *Exprs) Comma(id ExprID) (*ExprCommaData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprComma {
		return nil, false
	}
	return e.Commas.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewRValue(span source.Span, inner ExprID) ExprID {
	p := e.RValues.Allocate(ExprRValueData{Inner: inner})
	return e.new(ExprRValue, span, PayloadID(p))
}

func (e *Exprs) RValue(id ExprID) (*ExprRValueData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprRValue {
		return nil, false
	}
	return e.RValues.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewCallUserOp(span source.Span, opSymbol ExprID, args []ExprID, swapped bool) ExprID {
	p := e.UserOps.Allocate(ExprCallUserOpData{OpSymbol: opSymbol, Args: append([]ExprID(nil), args...), Swapped: swapped})
	return e.new(ExprCallUserOp, span, PayloadID(p))
}

func (e *Exprs) CallUserOp(id ExprID) (*ExprCallUserOpData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprCallUserOp {
		return nil, false
	}
	return e.UserOps.Get(uint32(x.Payload)), true
}

func (e *Exprs) NewDefaultArg(span source.Span, d ExprDefaultArgData) ExprID {
	p := e.DefaultArgs.Allocate(d)
	return e.new(ExprDefaultArg, span, PayloadID(p))
}

func (e *Exprs) DefaultArg(id ExprID) (*ExprDefaultArgData, bool) {
	x := e.Get(id)
	if x == nil || x.Kind != ExprDefaultArg {
		return nil, false
	}
	return e.DefaultArgs.Get(uint32(x.Payload)), true
}

// Unwrap follows a chain of synthetic RValue wraps down to the
// underlying expression — used by self-assignment detection (§9, OQ3),
// which must compare the *unwrapped* left/right operands.
func (e *Exprs) Unwrap(id ExprID) ExprID {
	for {
		rv, ok := e.RValue(id)
		if !ok {
			return id
		}
		id = rv.Inner
	}
}
