package ast

import (
	"gscript/internal/ident"
	"gscript/internal/types"
)

// Val is the value descriptor attached to every expression node once
// the expression checker has processed it (§3).
type Val struct {
	Ident ident.Kind
	Tag   types.Tag
	// Sym is the origin symbol, if any (NoSymRef for a pure rvalue such
	// as a literal or the result of an operator).
	Sym types.SymRef
	// ConstVal holds the folded value for constants, and for a literal
	// array's length with sign encoding: a negative length means a
	// string literal's size including its terminator.
	ConstVal int32
	// Accessor is the getter/setter pair a field access resolved to,
	// valid only when Ident == ident.Accessor.
	Accessor types.SymRef
}

// IsConstant reports whether this value is foldable to a literal.
func (v Val) IsConstant() bool { return v.Ident == ident.Constant }

// FlowType classifies how a statement can transfer control out of its
// enclosing block.
type FlowType uint8

const (
	FlowNone FlowType = iota
	FlowBreak
	FlowContinue
	FlowReturn
	FlowMixed
)

func (f FlowType) String() string {
	switch f {
	case FlowBreak:
		return "break"
	case FlowContinue:
		return "continue"
	case FlowReturn:
		return "return"
	case FlowMixed:
		return "mixed"
	default:
		return "none"
	}
}

// Merge combines the flow type of two sibling branches (e.g. an if's
// then/else arms): Return iff both return, None iff both are None, the
// shared flow when both arms end in the same break or continue, and
// Mixed otherwise (including one arm returning while the other falls
// through).
func (f FlowType) Merge(other FlowType) FlowType {
	if f == FlowReturn && other == FlowReturn {
		return FlowReturn
	}
	if f == FlowNone && other == FlowNone {
		return FlowNone
	}
	if f != FlowNone && other != FlowNone && f != FlowReturn && f == other {
		return f
	}
	return FlowMixed
}
