package ast

import "gscript/internal/source"

// EnumFieldDecl is one constant of an enum declaration. Value is
// NoExprID when the field relies on the implicit previous-plus-one
// sequencing the constant folder applies.
type EnumFieldDecl struct {
	Name  source.StringID
	Value ExprID
	Span  source.Span
}

// EnumDecl declares a plain enum tag and its fields.
type EnumDecl struct {
	Name   string
	Fields []EnumFieldDecl
	Span   source.Span
}

// EnumStructFieldDecl is one field of an enum-struct declaration.
type EnumStructFieldDecl struct {
	Name      source.StringID
	TagName   string
	ArraySize int // 0 for a scalar field
	Span      source.Span
}

// EnumStructDecl declares an enum-struct tag and its flat field layout.
type EnumStructDecl struct {
	Name   string
	Fields []EnumStructFieldDecl
	Span   source.Span
}

// MethodmapMethodDecl associates a function declaration with its role
// in a methodmap's method table.
type MethodmapMethodDecl struct {
	Func       FuncID
	Static     bool
	IsCtor     bool
	IsDtor     bool
	IsGetter   bool
	IsSetter   bool
	PropName   source.StringID // valid when IsGetter || IsSetter
}

// MethodmapDecl declares a methodmap tag: its parent, nullability, and
// method table.
type MethodmapDecl struct {
	Name     string
	Parent   string // "" if this methodmap has no parent
	Nullable bool
	Methods  []MethodmapMethodDecl
	Span     source.Span
}

// PStructFieldDecl is one named field of a pseudo-struct declaration.
type PStructFieldDecl struct {
	Name     source.StringID
	TagName  string
	IsString bool
	Span     source.Span
}

// PStructDecl declares a pseudo-struct: a named-field initializer
// template with no Kind/Tag of its own (§3).
type PStructDecl struct {
	Name   string
	Fields []PStructFieldDecl
	Span   source.Span
}

// File is the parsed translation unit: the top-level declarations the
// driver (§4.8) walks in order.
type File struct {
	Path string
	Span source.Span

	Enums       []EnumDecl
	EnumStructs []EnumStructDecl
	Methodmaps  []MethodmapDecl
	PStructs    []PStructDecl

	Funcs []FuncID
	// Globals holds top-level variable declarations and static-asserts,
	// in source order, so the driver checks them the same way it checks
	// any other statement list.
	Globals []StmtID
}

// Tree owns every arena for one translation unit: expressions,
// statements, and function declarations. The driver's SemaContext
// walks a Tree's File to analyze the whole unit.
type Tree struct {
	Exprs *Exprs
	Stmts *Stmts
	Funcs *Funcs
	File  *File
}

// NewTree allocates a fresh, empty Tree.
func NewTree(path string) *Tree {
	return &Tree{
		Exprs: NewExprs(0),
		Stmts: NewStmts(0),
		Funcs: NewFuncs(0),
		File:  &File{Path: path},
	}
}
