// Package ident holds the identifier-kind vocabulary shared by the
// symbol table and the AST's value descriptors. It exists as its own
// package, independent of both, so neither internal/symbols nor
// internal/ast has to import the other to agree on what an "ident" is.
package ident

// Kind classifies what a symbol — or an expression's resolved value —
// actually is.
type Kind uint8

const (
	None Kind = iota
	Variable
	Reference
	Array
	RefArray
	ArrayCell
	ArrayChar
	Accessor
	Constant
	Function
	Expression
	Methodmap
	EnumStruct
	VarArgs
)

func (k Kind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Reference:
		return "reference"
	case Array:
		return "array"
	case RefArray:
		return "ref array"
	case ArrayCell:
		return "array cell"
	case ArrayChar:
		return "array char"
	case Accessor:
		return "accessor"
	case Constant:
		return "constant"
	case Function:
		return "function"
	case Expression:
		return "expression"
	case Methodmap:
		return "methodmap"
	case EnumStruct:
		return "enum struct"
	case VarArgs:
		return "varargs"
	default:
		return "none"
	}
}

// IsArray reports whether k denotes array storage.
func (k Kind) IsArray() bool { return k == Array || k == RefArray }
