package ast

import "gscript/internal/source"

// ParamKind mirrors the formal-parameter kinds the call-checker matches
// an argument against (§4.5's Call contract).
type ParamKind uint8

const (
	ParamVariable ParamKind = iota
	ParamReference
	ParamArray
	ParamRefArray
	ParamVarArgs
)

// Param is one formal parameter of a function declaration.
type Param struct {
	Name    source.StringID
	TagName string
	Kind    ParamKind
	Dims    []ExprID // array-size expressions; nil for a scalar parameter
	Default ExprID   // NoExprID if the parameter has no default value
	Span    source.Span
}

// Func is a function declaration or definition: the unit the function
// analyzer (§4.7) operates on.
type Func struct {
	Name          source.StringID
	ReturnTagName string
	ReturnIsArray bool
	Params        []Param
	// Body is NoStmtID for a native or pure-forward declaration.
	Body StmtID

	IsNative   bool
	IsForward  bool
	IsPublic   bool
	IsStock    bool
	IsOperator bool
	Deprecated string

	// Forward, if valid, is the FuncID of the `forward` declaration this
	// definition implements (§4.7 step 5/6).
	Forward FuncID

	Span source.Span
}

type Funcs struct {
	Arena *Arena[Func]
}

func NewFuncs(capHint uint) *Funcs {
	if capHint == 0 {
		capHint = 1 << 5
	}
	return &Funcs{Arena: NewArena[Func](capHint)}
}

func (f *Funcs) New(fn Func) FuncID { return FuncID(f.Arena.Allocate(fn)) }
func (f *Funcs) Get(id FuncID) *Func { return f.Arena.Get(uint32(id)) }
