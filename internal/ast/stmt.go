package ast

import "gscript/internal/source"

// StmtKind discriminates the statement node variants the statement
// checker dispatches on (§4.6).
type StmtKind uint8

const (
	StmtVarDecl StmtKind = iota
	StmtIf
	StmtWhile
	StmtFor
	StmtSwitch
	StmtReturn
	StmtBreak
	StmtContinue
	StmtDelete
	StmtExit
	StmtBlock
	StmtStaticAssert
	StmtChangeScope
	StmtExprStmt
)

// Stmt is the node header common to every statement.
type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID

	Flow FlowType
	// HeapOwner marks a statement that has claimed ownership of a
	// pending heap-allocated temporary created while checking one of
	// its sub-expressions (§4.9).
	HeapOwner bool
}

type (
	PStructFieldInit struct {
		Field source.StringID
		Value ExprID
	}

	StmtVarDeclData struct {
		Name    source.StringID
		TagName string
		IsConst bool
		// Dims holds one size expression per array dimension; nil for a
		// scalar declaration.
		Dims []ExprID
		// PStructName is non-empty when this declaration's initializer is
		// a pseudo-struct named-field list rather than a plain expression.
		PStructName string
		PStructInit []PStructFieldInit
		// Init is the plain initializer. The checker checks it directly
		// as an expression and marks the declared symbol written; it is
		// not rewritten into a `<name> = <expr>` assignment. Empty for an
		// uninitialized declaration.
		Init ExprID
	}

	StmtIfData struct {
		Cond ExprID
		Then StmtID
		Else StmtID // NoStmtID if there is no else branch
	}

	StmtWhileData struct {
		Cond      ExprID
		Body      StmtID
		IsDoWhile bool
		HasBreak  bool
	}

	StmtForData struct {
		Init    StmtID // NoStmtID if omitted
		Cond    ExprID // NoExprID if omitted (infinite loop)
		Advance ExprID // NoExprID if omitted
		Body    StmtID
	}

	SwitchCase struct {
		Labels []ExprID
		Body   StmtID
	}

	StmtSwitchData struct {
		Value   ExprID
		Cases   []SwitchCase
		Default StmtID // NoStmtID if there is no default arm
	}

	StmtReturnData struct {
		Value ExprID // NoExprID for a bare `return;`
		// Synthetic marks a return statement appended by the function
		// analyzer to guarantee every path terminates (§4.7 step 8).
		Synthetic bool
	}

	StmtDeleteData struct {
		Target ExprID
	}

	StmtExitData struct {
		Value ExprID
	}

	StmtBlockData struct {
		Stmts []StmtID
	}

	StmtStaticAssertData struct {
		Cond    ExprID
		Message source.StringID
	}

	StmtChangeScopeData struct {
		// FileNumber identifies the file-local scope being spliced in.
		FileNumber int
	}

	StmtExprStmtData struct {
		Value ExprID
	}
)

// Stmts is the per-kind arena set for statement nodes.
type Stmts struct {
	Arena *Arena[Stmt]

	VarDecls      *Arena[StmtVarDeclData]
	Ifs           *Arena[StmtIfData]
	Whiles        *Arena[StmtWhileData]
	Fors          *Arena[StmtForData]
	Switches      *Arena[StmtSwitchData]
	Returns       *Arena[StmtReturnData]
	Deletes       *Arena[StmtDeleteData]
	Exits         *Arena[StmtExitData]
	Blocks        *Arena[StmtBlockData]
	StaticAsserts *Arena[StmtStaticAssertData]
	ChangeScopes  *Arena[StmtChangeScopeData]
	ExprStmts     *Arena[StmtExprStmtData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Stmts{
		Arena:         NewArena[Stmt](capHint),
		VarDecls:      NewArena[StmtVarDeclData](capHint / 2),
		Ifs:           NewArena[StmtIfData](capHint / 2),
		Whiles:        NewArena[StmtWhileData](capHint / 8),
		Fors:          NewArena[StmtForData](capHint / 8),
		Switches:      NewArena[StmtSwitchData](capHint / 16),
		Returns:       NewArena[StmtReturnData](capHint / 4),
		Deletes:       NewArena[StmtDeleteData](capHint / 16),
		Exits:         NewArena[StmtExitData](capHint / 16),
		Blocks:        NewArena[StmtBlockData](capHint / 2),
		StaticAsserts: NewArena[StmtStaticAssertData](capHint / 16),
		ChangeScopes:  NewArena[StmtChangeScopeData](capHint / 16),
		ExprStmts:     NewArena[StmtExprStmtData](capHint),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: payload}))
}

func (s *Stmts) Get(id StmtID) *Stmt { return s.Arena.Get(uint32(id)) }

func (s *Stmts) NewVarDecl(span source.Span, d StmtVarDeclData) StmtID {
	p := s.VarDecls.Allocate(d)
	return s.new(StmtVarDecl, span, PayloadID(p))
}

func (s *Stmts) VarDecl(id StmtID) (*StmtVarDeclData, bool) {
	x := s.Get(id)
	if x == nil || x.Kind != StmtVarDecl {
		return nil, false
	}
	return s.VarDecls.Get(uint32(x.Payload)), true
}

func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	p := s.Ifs.Allocate(StmtIfData{Cond: cond, Then: then, Else: els})
	return s.new(StmtIf, span, PayloadID(p))
}

func (s *Stmts) If(id StmtID) (*StmtIfData, bool) {
	x := s.Get(id)
	if x == nil || x.Kind != StmtIf {
		return nil, false
	}
	return s.Ifs.Get(uint32(x.Payload)), true
}

func (s *Stmts) NewWhile(span source.Span, cond ExprID, body StmtID, isDoWhile bool) StmtID {
	p := s.Whiles.Allocate(StmtWhileData{Cond: cond, Body: body, IsDoWhile: isDoWhile})
	return s.new(StmtWhile, span, PayloadID(p))
}

func (s *Stmts) While(id StmtID) (*StmtWhileData, bool) {
	x := s.Get(id)
	if x == nil || x.Kind != StmtWhile {
		return nil, false
	}
	return s.Whiles.Get(uint32(x.Payload)), true
}

func (s *Stmts) NewFor(span source.Span, d StmtForData) StmtID {
	p := s.Fors.Allocate(d)
	return s.new(StmtFor, span, PayloadID(p))
}

func (s *Stmts) For(id StmtID) (*StmtForData, bool) {
	x := s.Get(id)
	if x == nil || x.Kind != StmtFor {
		return nil, false
	}
	return s.Fors.Get(uint32(x.Payload)), true
}

func (s *Stmts) NewSwitch(span source.Span, value ExprID, cases []SwitchCase, def StmtID) StmtID {
	p := s.Switches.Allocate(StmtSwitchData{Value: value, Cases: append([]SwitchCase(nil), cases...), Default: def})
	return s.new(StmtSwitch, span, PayloadID(p))
}

func (s *Stmts) Switch(id StmtID) (*StmtSwitchData, bool) {
	x := s.Get(id)
	if x == nil || x.Kind != StmtSwitch {
		return nil, false
	}
	return s.Switches.Get(uint32(x.Payload)), true
}

func (s *Stmts) NewReturn(span source.Span, value ExprID, synthetic bool) StmtID {
	p := s.Returns.Allocate(StmtReturnData{Value: value, Synthetic: synthetic})
	return s.new(StmtReturn, span, PayloadID(p))
}

func (s *Stmts) Return(id StmtID) (*StmtReturnData, bool) {
	x := s.Get(id)
	if x == nil || x.Kind != StmtReturn {
		return nil, false
	}
	return s.Returns.Get(uint32(x.Payload)), true
}

func (s *Stmts) NewBreak(span source.Span) StmtID    { return s.new(StmtBreak, span, NoPayloadID) }
func (s *Stmts) NewContinue(span source.Span) StmtID { return s.new(StmtContinue, span, NoPayloadID) }

func (s *Stmts) NewDelete(span source.Span, target ExprID) StmtID {
	p := s.Deletes.Allocate(StmtDeleteData{Target: target})
	return s.new(StmtDelete, span, PayloadID(p))
}

func (s *Stmts) Delete(id StmtID) (*StmtDeleteData, bool) {
	x := s.Get(id)
	if x == nil || x.Kind != StmtDelete {
		return nil, false
	}
	return s.Deletes.Get(uint32(x.Payload)), true
}

func (s *Stmts) NewExit(span source.Span, value ExprID) StmtID {
	p := s.Exits.Allocate(StmtExitData{Value: value})
	return s.new(StmtExit, span, PayloadID(p))
}

func (s *Stmts) Exit(id StmtID) (*StmtExitData, bool) {
	x := s.Get(id)
	if x == nil || x.Kind != StmtExit {
		return nil, false
	}
	return s.Exits.Get(uint32(x.Payload)), true
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	p := s.Blocks.Allocate(StmtBlockData{Stmts: append([]StmtID(nil), stmts...)})
	return s.new(StmtBlock, span, PayloadID(p))
}

func (s *Stmts) Block(id StmtID) (*StmtBlockData, bool) {
	x := s.Get(id)
	if x == nil || x.Kind != StmtBlock {
		return nil, false
	}
	return s.Blocks.Get(uint32(x.Payload)), true
}

func (s *Stmts) NewStaticAssert(span source.Span, cond ExprID, msg source.StringID) StmtID {
	p := s.StaticAsserts.Allocate(StmtStaticAssertData{Cond: cond, Message: msg})
	return s.new(StmtStaticAssert, span, PayloadID(p))
}

func (s *Stmts) StaticAssert(id StmtID) (*StmtStaticAssertData, bool) {
	x := s.Get(id)
	if x == nil || x.Kind != StmtStaticAssert {
		return nil, false
	}
	return s.StaticAsserts.Get(uint32(x.Payload)), true
}

func (s *Stmts) NewChangeScope(span source.Span, fileNumber int) StmtID {
	p := s.ChangeScopes.Allocate(StmtChangeScopeData{FileNumber: fileNumber})
	return s.new(StmtChangeScope, span, PayloadID(p))
}

func (s *Stmts) ChangeScope(id StmtID) (*StmtChangeScopeData, bool) {
	x := s.Get(id)
	if x == nil || x.Kind != StmtChangeScope {
		return nil, false
	}
	return s.ChangeScopes.Get(uint32(x.Payload)), true
}

func (s *Stmts) NewExprStmt(span source.Span, value ExprID) StmtID {
	p := s.ExprStmts.Allocate(StmtExprStmtData{Value: value})
	return s.new(StmtExprStmt, span, PayloadID(p))
}

func (s *Stmts) ExprStmt(id StmtID) (*StmtExprStmtData, bool) {
	x := s.Get(id)
	if x == nil || x.Kind != StmtExprStmt {
		return nil, false
	}
	return s.ExprStmts.Get(uint32(x.Payload)), true
}
