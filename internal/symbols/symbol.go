package symbols

import (
	"gscript/internal/ast"
	"gscript/internal/ident"
	"gscript/internal/source"
	"gscript/internal/types"
)

// StorageClass classifies where a symbol's storage lives.
type StorageClass uint8

const (
	StorageNone StorageClass = iota
	StorageGlobal
	StorageLocal
	StorageStatic
	StorageArgument
	StorageEnumField
	StorageFileStatic
)

// UsageBits records read/write/liveness for dead-code and
// unused-variable reporting.
type UsageBits uint8

const (
	UsageRead UsageBits = 1 << iota
	UsageWritten
	UsageLive
)

// SymbolFlags carries the boolean attributes the original compiler packs
// into individual bitfields on `symbol`.
type SymbolFlags uint32

const (
	FlagDefined SymbolFlags = 1 << iota
	FlagConst
	FlagStock
	FlagPublic
	FlagStatic
	FlagNative
	FlagOperator
	FlagDeprecated
	FlagCallback
	FlagReturnsValue
	FlagAlwaysReturns
	FlagRetvalueUsed
	FlagEnumRoot
	FlagEnumField
)

func (f SymbolFlags) Has(bit SymbolFlags) bool { return f&bit != 0 }

// ArrayDim describes one symbol's array shape: total length at this
// level (cells) plus how many further dimensions are nested below it.
type ArrayDim struct {
	Length int32
	Level  int16
}

// FunctionData is the kind-specific payload for ident.Function symbols.
type FunctionData struct {
	Params        []SymbolID // argument symbols, in declaration order
	Defaults      []ast.ExprID // per-param default value, NoExprID if none
	ArrayReturn   SymbolID   // child symbol describing an array return shape
	Forward       SymbolID   // the forward declaration this implements, if any
	Missing       bool       // declared but never implemented in this unit
	ReturnTag     types.Tag
	ReturnIsArray bool
	Deprecated    string

	// DeclFunc is the ast.FuncID this symbol's declaration/definition
	// comes from, so the call checker's §4.5 "recursively analyzes the
	// callee first" step (array-return size inference) can reach the
	// function analyzer; NoFuncID for a symbol synthesized outside any
	// declared function (e.g. an operator builtin).
	DeclFunc ast.FuncID
}

// EnumStructVarData is the kind-specific payload attached to a variable
// whose tag is an enum struct: the set of synthetic per-field child
// symbols created lazily as `.field` accesses are checked.
type EnumStructVarData struct {
	Children map[string]SymbolID
}

// Symbol is a named declaration: the unit the scope tree indexes and the
// expression/statement checkers mutate as they see uses of it.
type Symbol struct {
	Name    source.StringID
	Ident   ident.Kind
	Storage StorageClass
	Tag     types.Tag
	Addr    int32

	Dim      ArrayDim
	IndexTag types.Tag // tag of the array index, for enum-indexed arrays

	// ConstVal holds the folded value of an ident.Constant symbol (an
	// enum field or a const-qualified initializer) — the expression
	// checker copies it into a symbol-reference's Val so the constant
	// folder can treat it as foldable without re-walking the declaration.
	ConstVal int32

	Usage UsageBits
	Flags SymbolFlags

	Span source.Span
	File source.FileID

	// Parent is the enclosing methodmap/enum-struct/function symbol, if
	// this symbol was synthesized as one of its members.
	Parent SymbolID
	// Child is the array-element symbol (for ident.Array/ident.RefArray)
	// or a function's synthetic array-return symbol.
	Child SymbolID

	Function   *FunctionData
	EnumStruct *EnumStructVarData

	// References is the set of symbols this symbol's declaration or
	// initializer refers to; ReferencedBy is the reverse edge. Both are
	// recorded only; the unused-symbol checks read Usage, not these.
	References   []SymbolID
	ReferencedBy []SymbolID
}

// IsArray reports whether the symbol's ident denotes array storage.
func (s *Symbol) IsArray() bool {
	return s.Ident == ident.Array || s.Ident == ident.RefArray
}

// MarkUsage ORs bit into the symbol's usage bits.
func (s *Symbol) MarkUsage(bit UsageBits) {
	s.Usage |= bit
}

// Used reports whether any of UsageRead/UsageWritten/UsageLive is set.
func (s *Symbol) Used() bool {
	return s.Usage != 0
}
