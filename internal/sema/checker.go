package sema

import (
	"fmt"

	"gscript/internal/ast"
	"gscript/internal/constfold"
	"gscript/internal/diag"
	"gscript/internal/source"
	"gscript/internal/symbols"
	"gscript/internal/types"
)

// Checker holds every piece of state one translation unit's semantic
// pass shares: the AST it mutates, the type registry and symbol table it
// consults, and the diagnostic sink it reports to. A Checker is not
// safe for concurrent use — the driver gives each translation unit its
// own instance (§5).
type Checker struct {
	Tree     *ast.Tree
	Types    *types.Registry
	Symbols  *symbols.Table
	Reporter diag.Reporter
	Folder   *constfold.Folder

	str  *source.Interner
	file source.FileID

	funcState     map[ast.FuncID]funcStatus
	funcSymByDecl map[ast.FuncID]*symbols.Symbol
	funcSymID     map[ast.FuncID]symbols.SymbolID
	pstructs      map[string]*types.PseudoStruct
	ctxStack      []*SemaContext

	// pendingHeap is the thread-of-analysis heap-ownership bit (§4.9):
	// set by an expression that allocates a temporary, cleared when the
	// owning statement claims it.
	pendingHeap bool

	// suppressRead is consumed by the next checkSymbol call: set around
	// checking an assignment's left-hand side, since assignment operators
	// do not count as a read of the assigned symbol, only a write (§4.9).
	suppressRead bool

	// warnedOnce latches a (code, site) pair so repeated passes over the
	// same scope don't repeat a warning (§7).
	warnedOnce map[string]bool
}

// New builds a Checker over tree, backed by reg/tbl/interner, reporting
// diagnostics to rep for the given file.
func New(tree *ast.Tree, reg *types.Registry, tbl *symbols.Table, interner *source.Interner, rep diag.Reporter, file source.FileID) *Checker {
	return &Checker{
		Tree:      tree,
		Types:     reg,
		Symbols:   tbl,
		Reporter:  rep,
		Folder:    constfold.New(tree, reg, tbl),
		str:       interner,
		file:      file,
		funcState:     make(map[ast.FuncID]funcStatus),
		funcSymByDecl: make(map[ast.FuncID]*symbols.Symbol),
		funcSymID:     make(map[ast.FuncID]symbols.SymbolID),
		pstructs:      make(map[string]*types.PseudoStruct),
		warnedOnce:    make(map[string]bool),
	}
}

// funcStatus is the three-state memoization flag §4.7 requires.
type funcStatus uint8

const (
	funcNotStarted funcStatus = iota
	funcInProgress
	funcDone
)

// LoopInfo tracks the break/continue bits of one enclosing loop, set by
// the Break/Continue statement checkers and read back by the loop's own
// checker once its body has been fully walked.
type LoopInfo struct {
	HasBreak    bool
	HasContinue bool
}

// SemaContext is the per-function analysis state §4.7 step 4 describes:
// the current scope, loop nesting, and the bookkeeping the return-flow
// and mixed-returns checks need. Nested (member) functions push a fresh
// context; the driver's top-level statement walk uses one long-lived
// context with no enclosing function.
type SemaContext struct {
	Func  ast.FuncID
	Scope symbols.ScopeID

	Loops []*LoopInfo

	// VoidReturn/ValueReturn record the span of the first bare `return;`
	// and first `return expr;` seen, so the second kind of return in the
	// same function triggers the mixed-returns warning exactly once.
	VoidReturn  source.Span
	ValueReturn source.Span
	SawVoidReturn  bool
	SawValueReturn bool
	WarnedMixedReturns bool

	AlwaysReturns bool
	ReturnsValue  bool
	ReturnTag     types.Tag
	IsVoidReturn  bool

	// ArrayReturnDims/ArrayReturnSet record the shape the first array-returning
	// `return` statement established, for the "all array returns agree"
	// check (§4.6).
	ArrayReturnDims []int32
	ArrayReturnSet  bool

	UnreachableWarned bool

	StaticScopes []symbols.ScopeID
}

func (c *Checker) pushContext(ctx *SemaContext) { c.ctxStack = append(c.ctxStack, ctx) }
func (c *Checker) popContext()                  { c.ctxStack = c.ctxStack[:len(c.ctxStack)-1] }
func (c *Checker) context() *SemaContext {
	if len(c.ctxStack) == 0 {
		return nil
	}
	return c.ctxStack[len(c.ctxStack)-1]
}

func (c *Checker) currentScope() symbols.ScopeID {
	if ctx := c.context(); ctx != nil {
		return ctx.Scope
	}
	return symbols.NoScopeID
}

func (c *Checker) pushLoop() *LoopInfo {
	ctx := c.context()
	if ctx == nil {
		return &LoopInfo{}
	}
	l := &LoopInfo{}
	ctx.Loops = append(ctx.Loops, l)
	return l
}

func (c *Checker) popLoop() {
	ctx := c.context()
	if ctx == nil || len(ctx.Loops) == 0 {
		return
	}
	ctx.Loops = ctx.Loops[:len(ctx.Loops)-1]
}

func (c *Checker) currentLoop() *LoopInfo {
	ctx := c.context()
	if ctx == nil || len(ctx.Loops) == 0 {
		return nil
	}
	return ctx.Loops[len(ctx.Loops)-1]
}

func (c *Checker) span(id ast.ExprID) source.Span {
	if e := c.Tree.Exprs.Get(id); e != nil {
		return e.Span
	}
	return source.Span{File: c.file}
}

func (c *Checker) errorf(span source.Span, code diag.Code, format string, args ...any) {
	diag.ReportError(c.Reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

func (c *Checker) warnf(span source.Span, code diag.Code, format string, args ...any) {
	diag.ReportWarning(c.Reporter, code, span, fmt.Sprintf(format, args...)).Emit()
}

// warnOnce emits a warning only the first time key is seen — the latch
// backing §7's "warnings ... emitted once per site" rule.
func (c *Checker) warnOnce(key string, span source.Span, code diag.Code, format string, args ...any) {
	if c.warnedOnce[key] {
		return
	}
	c.warnedOnce[key] = true
	c.warnf(span, code, format, args...)
}

// markHeapAlloc flags e as allocating a temporary pending ownership by
// its enclosing statement (§4.9).
func (c *Checker) markHeapAlloc(e *ast.Expr) {
	e.HeapAlloc = true
	c.pendingHeap = true
}

// claimPendingHeap transfers a still-set heap-allocation pending bit
// onto s, the nearest statement kind the original compiler tags
// STMT_OWNS_HEAP (blocks, if/else arms, loop bodies, for-advance,
// variable initializers). A no-op when nothing is pending.
func (c *Checker) claimPendingHeap(s *ast.Stmt) {
	if c.pendingHeap {
		s.HeapOwner = true
		c.pendingHeap = false
	}
}

func (c *Checker) name(id source.StringID) string {
	s, _ := c.str.Lookup(id)
	return s
}
