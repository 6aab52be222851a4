package sema

import (
	"gscript/internal/ast"
	"gscript/internal/diag"
	"gscript/internal/ident"
	"gscript/internal/symbols"
	"gscript/internal/types"
)

// CheckStmt dispatches on a statement's kind, implementing §4.6's
// per-kind contract table.
func (c *Checker) CheckStmt(id ast.StmtID) ast.FlowType {
	s := c.Tree.Stmts.Get(id)
	if s == nil {
		return ast.FlowNone
	}
	switch s.Kind {
	case ast.StmtVarDecl:
		return c.checkVarDeclStmt(id, s)
	case ast.StmtIf:
		return c.checkIfStmt(id, s)
	case ast.StmtWhile:
		return c.checkWhileStmt(id, s)
	case ast.StmtFor:
		return c.checkForStmt(id, s)
	case ast.StmtSwitch:
		return c.checkSwitchStmt(id, s)
	case ast.StmtReturn:
		return c.checkReturnStmt(id, s)
	case ast.StmtBreak:
		if l := c.currentLoop(); l != nil {
			l.HasBreak = true
		}
		s.Flow = ast.FlowBreak
		return ast.FlowBreak
	case ast.StmtContinue:
		if l := c.currentLoop(); l != nil {
			l.HasContinue = true
		}
		s.Flow = ast.FlowContinue
		return ast.FlowContinue
	case ast.StmtDelete:
		return c.checkDeleteStmt(id, s)
	case ast.StmtExit:
		return c.checkExitStmt(id, s)
	case ast.StmtBlock:
		return c.checkBlockStmt(id, s)
	case ast.StmtStaticAssert:
		return c.checkStaticAssertStmt(id, s)
	case ast.StmtChangeScope:
		return ast.FlowNone
	case ast.StmtExprStmt:
		return c.checkExprStmtStmt(id, s)
	default:
		return ast.FlowNone
	}
}

func (c *Checker) checkVarDeclStmt(id ast.StmtID, s *ast.Stmt) ast.FlowType {
	data, ok := c.Tree.Stmts.VarDecl(id)
	if !ok {
		return ast.FlowNone
	}
	tag, found := c.Types.Find(data.TagName)
	if !found {
		tag = c.Types.Builtin().Int
	}
	scope := c.currentScope()
	isLocal := false
	if sc := c.Symbols.Scope(scope); sc != nil {
		isLocal = sc.Kind == symbols.ScopeFunction || sc.Kind == symbols.ScopeBlock
	}
	storage := symbols.StorageGlobal
	if isLocal {
		storage = symbols.StorageLocal
	}

	dim := symbols.ArrayDim{}
	symIdent := ident.Variable
	if tag == c.Types.Builtin().String {
		symIdent = ident.Variable
	}
	if len(data.Dims) > 0 {
		symIdent = ident.Array
		dim.Level = int16(len(data.Dims))
		if outer := data.Dims[0]; outer.IsValid() {
			if !c.CheckExpr(outer) {
				return ast.FlowNone
			}
			oe := c.Tree.Exprs.Get(outer)
			if v, _, err := c.Folder.Eval(outer); err == nil {
				dim.Length = v
			} else {
				c.errorf(oe.Span, diag.ErrArraySizeMismatch, "array size must be a constant expression")
			}
		}
	}

	// A scalar const with a foldable initializer becomes an
	// ident.Constant symbol — the same kind an enum field resolves to —
	// so later references can fold through it.
	var constVal int32
	foldedConst := false
	if data.IsConst && len(data.Dims) == 0 && data.PStructName == "" && data.Init.IsValid() {
		if c.CheckExpr(data.Init) {
			if v, _, err := c.Folder.Eval(data.Init); err == nil {
				constVal = v
				foldedConst = true
			}
		}
	}
	if foldedConst {
		symIdent = ident.Constant
	}

	sym := symbols.Symbol{
		Name:     data.Name,
		Ident:    symIdent,
		Storage:  storage,
		Tag:      tag,
		Dim:      dim,
		Span:     s.Span,
		File:     c.file,
		ConstVal: constVal,
	}
	if data.IsConst {
		sym.Flags |= symbols.FlagConst
	}
	symID, err := c.Symbols.Add(scope, sym)
	if err != nil {
		c.errorf(s.Span, diag.ErrDuplicateType, "%s", err.Error())
		return ast.FlowNone
	}

	if foldedConst {
		c.Symbols.MarkUsage(symID, symbols.UsageWritten)
		s.Flow = ast.FlowNone
		return ast.FlowNone
	}

	if data.PStructName != "" {
		for _, fi := range data.PStructInit {
			if !c.CheckExpr(fi.Value) {
				continue
			}
			fv := c.Tree.Exprs.Get(fi.Value)
			if fv.Val.Sym.IsValid() {
				c.Symbols.AddReferenceTo(symID, symbols.SymbolIDFromRef(fv.Val.Sym))
			}
			fi.Value = c.wrapRValue(fi.Value)
		}
	} else if data.Init.IsValid() {
		if !c.CheckExpr(data.Init) {
			return ast.FlowNone
		}
		ie := c.Tree.Exprs.Get(data.Init)
		if !isArrayValue(ie.Val) {
			data.Init = c.wrapRValue(data.Init)
			ie = c.Tree.Exprs.Get(data.Init)
			if !data.IsConst && !c.matchTag(tag, ie.Val.Tag, MatchCoerce) {
				c.warnf(s.Span, diag.WarnStringArrayTagMismatch, "initializer has mismatched tag")
			}
		}
		c.claimPendingHeap(s)
		c.Symbols.MarkUsage(symID, symbols.UsageWritten)
	}
	s.Flow = ast.FlowNone
	return ast.FlowNone
}

func (c *Checker) checkIfStmt(id ast.StmtID, s *ast.Stmt) ast.FlowType {
	data, ok := c.Tree.Stmts.If(id)
	if !ok {
		return ast.FlowNone
	}
	c.AnalyzeForTest(data.Cond)
	thenFlow := c.CheckStmt(data.Then)
	c.claimPendingHeap(s)
	elseFlow := ast.FlowNone
	if data.Else.IsValid() {
		elseFlow = c.CheckStmt(data.Else)
		c.claimPendingHeap(s)
	} else {
		elseFlow = ast.FlowNone
		thenFlow = thenFlow.Merge(ast.FlowNone)
		s.Flow = thenFlow
		return s.Flow
	}
	s.Flow = thenFlow.Merge(elseFlow)
	return s.Flow
}

func (c *Checker) checkWhileStmt(id ast.StmtID, s *ast.Stmt) ast.FlowType {
	data, ok := c.Tree.Stmts.While(id)
	if !ok {
		return ast.FlowNone
	}
	c.AnalyzeForTest(data.Cond)
	loop := c.pushLoop()
	bodyFlow := c.CheckStmt(data.Body)
	c.popLoop()
	c.claimPendingHeap(s)

	alwaysTrue := false
	if v, _, err := c.Folder.Eval(data.Cond); err == nil && v != 0 {
		alwaysTrue = true
	}
	s.Flow = ast.FlowNone
	if alwaysTrue && bodyFlow == ast.FlowReturn && !loop.HasBreak {
		s.Flow = ast.FlowReturn
	}
	return s.Flow
}

func (c *Checker) checkForStmt(id ast.StmtID, s *ast.Stmt) ast.FlowType {
	data, ok := c.Tree.Stmts.For(id)
	if !ok {
		return ast.FlowNone
	}
	if data.Init.IsValid() {
		c.CheckStmt(data.Init)
	}
	hasCond := data.Cond.IsValid()
	if hasCond {
		c.AnalyzeForTest(data.Cond)
	}
	if data.Advance.IsValid() {
		if c.CheckExpr(data.Advance) {
			adv := c.Tree.Exprs.Get(data.Advance)
			if !adv.SideEffect {
				c.warnf(adv.Span, diag.WarnNoSideEffect, "for-loop advance expression has no effect")
			}
			c.claimPendingHeap(s)
		}
	}
	loop := c.pushLoop()
	bodyFlow := c.CheckStmt(data.Body)
	c.popLoop()
	c.claimPendingHeap(s)

	s.Flow = ast.FlowNone
	if !hasCond && bodyFlow == ast.FlowReturn && !loop.HasBreak {
		s.Flow = ast.FlowReturn
	}
	return s.Flow
}

func (c *Checker) checkSwitchStmt(id ast.StmtID, s *ast.Stmt) ast.FlowType {
	data, ok := c.Tree.Stmts.Switch(id)
	if !ok {
		return ast.FlowNone
	}
	if !c.CheckExpr(data.Value) {
		return ast.FlowNone
	}
	data.Value = c.wrapRValue(data.Value)
	c.claimPendingHeap(s)

	seen := make(map[int32]bool)
	flow := ast.FlowNone
	first := true
	for i := range data.Cases {
		cs := &data.Cases[i]
		for _, label := range cs.Labels {
			if !c.CheckExpr(label) {
				continue
			}
			le := c.Tree.Exprs.Get(label)
			if v, _, err := c.Folder.Eval(label); err == nil {
				if seen[v] {
					c.errorf(le.Span, diag.ErrDuplicateCaseLabel, "duplicate case label")
				}
				seen[v] = true
			}
		}
		caseFlow := c.CheckStmt(cs.Body)
		if first {
			flow = caseFlow
			first = false
		} else {
			flow = flow.Merge(caseFlow)
		}
	}
	if data.Default.IsValid() {
		defFlow := c.CheckStmt(data.Default)
		if first {
			flow = defFlow
		} else {
			flow = flow.Merge(defFlow)
		}
	} else {
		flow = ast.FlowMixed
	}
	s.Flow = flow
	return flow
}

func (c *Checker) checkReturnStmt(id ast.StmtID, s *ast.Stmt) ast.FlowType {
	data, ok := c.Tree.Stmts.Return(id)
	if !ok {
		return ast.FlowReturn
	}
	ctx := c.context()
	if ctx == nil {
		s.Flow = ast.FlowReturn
		return ast.FlowReturn
	}
	if data.Value.IsValid() {
		if ctx.IsVoidReturn {
			c.errorf(s.Span, diag.ErrVoidFunctionReturnsValue, "void function returns a value")
		}
		if !c.CheckExpr(data.Value) {
			s.Flow = ast.FlowReturn
			return ast.FlowReturn
		}
		data.Value = c.wrapRValue(data.Value)
		c.claimPendingHeap(s)
		ve := c.Tree.Exprs.Get(data.Value)
		if isArrayValue(ve.Val) {
			if argSym := c.symbolOf(ve.Val); argSym != nil {
				if !ctx.ArrayReturnSet {
					ctx.ArrayReturnDims = []int32{argSym.Dim.Length}
					ctx.ArrayReturnSet = true
				} else if len(ctx.ArrayReturnDims) > 0 && ctx.ArrayReturnDims[0] != argSym.Dim.Length && argSym.Dim.Length != 0 {
					c.errorf(s.Span, diag.ErrArraySizeMismatch, "return array size disagrees with an earlier return")
				}
			}
		} else if !c.matchTag(ctx.ReturnTag, ve.Val.Tag, MatchCoerce) {
			c.warnf(s.Span, diag.WarnStringArrayTagMismatch, "return value has mismatched tag")
		}
		if !data.Synthetic {
			if !ctx.SawValueReturn {
				ctx.SawValueReturn = true
				ctx.ValueReturn = s.Span
			}
			if ctx.SawVoidReturn && !ctx.WarnedMixedReturns {
				ctx.WarnedMixedReturns = true
				c.warnf(s.Span, diag.WarnMixedReturns, "function mixes value and void returns")
			}
		}
		ctx.ReturnsValue = true
	} else {
		if !ctx.IsVoidReturn && !data.Synthetic {
			c.errorf(s.Span, diag.ErrFunctionMissingReturnValue, "missing return value")
		}
		if !data.Synthetic {
			if !ctx.SawVoidReturn {
				ctx.SawVoidReturn = true
				ctx.VoidReturn = s.Span
			}
			if ctx.SawValueReturn && !ctx.WarnedMixedReturns {
				ctx.WarnedMixedReturns = true
				c.warnf(s.Span, diag.WarnMixedReturns, "function mixes value and void returns")
			}
		}
	}
	s.Flow = ast.FlowReturn
	return ast.FlowReturn
}

func (c *Checker) checkDeleteStmt(id ast.StmtID, s *ast.Stmt) ast.FlowType {
	data, ok := c.Tree.Stmts.Delete(id)
	if !ok {
		return ast.FlowNone
	}
	if c.CheckExpr(data.Target) {
		c.claimPendingHeap(s)
		target := c.Tree.Exprs.Get(data.Target)
		if !c.Types.IsMethodmap(target.Val.Tag) {
			c.errorf(s.Span, diag.ErrUndefinedSymbol, "delete requires a methodmap-typed value")
		} else {
			tag := target.Val.Tag
			for tag != types.NoTag {
				ty, ok := c.Types.Lookup(tag)
				if !ok {
					break
				}
				mm, ok := ty.Methodmap()
				if !ok {
					break
				}
				if mm.Destructor.IsValid() {
					break
				}
				tag = mm.Parent
			}
		}
	}
	s.Flow = ast.FlowNone
	return ast.FlowNone
}

func (c *Checker) checkExitStmt(id ast.StmtID, s *ast.Stmt) ast.FlowType {
	data, ok := c.Tree.Stmts.Exit(id)
	if !ok {
		return ast.FlowReturn
	}
	if data.Value.IsValid() {
		if c.CheckExpr(data.Value) {
			data.Value = c.wrapRValue(data.Value)
			c.claimPendingHeap(s)
			ve := c.Tree.Exprs.Get(data.Value)
			if !c.matchTag(c.Types.Builtin().Int, ve.Val.Tag, MatchCoerce) {
				c.warnf(s.Span, diag.WarnStringArrayTagMismatch, "exit code has mismatched tag")
			}
		}
	}
	s.Flow = ast.FlowReturn
	return ast.FlowReturn
}

func (c *Checker) checkBlockStmt(id ast.StmtID, s *ast.Stmt) ast.FlowType {
	data, ok := c.Tree.Stmts.Block(id)
	if !ok {
		return ast.FlowNone
	}
	flow := ast.FlowNone
	terminated := false
	for _, sub := range data.Stmts {
		if terminated {
			if subStmt := c.Tree.Stmts.Get(sub); subStmt != nil {
				c.warnOnce("unreachable:"+itoa(int(subStmt.Span.Start)), subStmt.Span, diag.WarnUnreachableCode, "unreachable code")
			}
		}
		subFlow := c.CheckStmt(sub)
		if subFlow == ast.FlowReturn || subFlow == ast.FlowBreak || subFlow == ast.FlowContinue {
			terminated = true
			flow = subFlow
		}
	}
	c.claimPendingHeap(s)
	s.Flow = flow
	return flow
}

func (c *Checker) checkStaticAssertStmt(id ast.StmtID, s *ast.Stmt) ast.FlowType {
	data, ok := c.Tree.Stmts.StaticAssert(id)
	if !ok {
		return ast.FlowNone
	}
	if c.CheckExpr(data.Cond) {
		if v, _, err := c.Folder.Eval(data.Cond); err == nil {
			if v == 0 {
				msg := c.name(data.Message)
				if msg == "" {
					msg = "assertion failed"
				}
				c.errorf(s.Span, diag.ErrStaticAssertFailed, "%s", msg)
			}
		}
	}
	return ast.FlowNone
}

func (c *Checker) checkExprStmtStmt(id ast.StmtID, s *ast.Stmt) ast.FlowType {
	data, ok := c.Tree.Stmts.ExprStmt(id)
	if !ok {
		return ast.FlowNone
	}
	if c.CheckExpr(data.Value) {
		ve := c.Tree.Exprs.Get(data.Value)
		if !ve.SideEffect {
			c.warnf(s.Span, diag.WarnNoSideEffect, "expression statement has no effect")
		}
		c.claimPendingHeap(s)
	}
	return ast.FlowNone
}
