package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"gscript/internal/source"
)

// Redefinition is returned by Add when name already names a symbol in
// the same scope, whatever its ident kind; the redeclarations that are
// allowed (arguments, block-local forwarding) go through AddChain.
type Redefinition struct {
	Name     string
	Previous SymbolID
}

func (e *Redefinition) Error() string {
	return fmt.Sprintf("%q is already declared in this scope", e.Name)
}

// Table owns the scope and symbol arenas for one translation unit's
// analysis pass.
type Table struct {
	scopes  []Scope
	symbols []Symbol
}

// NewTable builds an empty table; index 0 of each arena is reserved for
// the NoScopeID/NoSymbolID sentinels.
func NewTable() *Table {
	return &Table{
		scopes:  make([]Scope, 1, 32),
		symbols: make([]Symbol, 1, 128),
	}
}

// NewScope allocates a scope under parent (NoScopeID for a root scope).
func (t *Table) NewScope(kind ScopeKind, parent ScopeID, file source.FileID, span source.Span) ScopeID {
	idx, err := safecast.Conv[uint32](len(t.scopes))
	if err != nil {
		panic(fmt.Errorf("symbols: scope arena overflow: %w", err))
	}
	id := ScopeID(idx)
	t.scopes = append(t.scopes, Scope{
		Kind:   kind,
		Parent: parent,
		File:   file,
		Span:   span,
		chain:  make(map[source.StringID][]SymbolID),
	})
	if parent.IsValid() {
		if p := t.Scope(parent); p != nil {
			p.Children = append(p.Children, id)
		}
	}
	return id
}

// Scope returns a pointer to the scope, or nil if id is invalid.
func (t *Table) Scope(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(t.scopes) {
		return nil
	}
	return &t.scopes[id]
}

// Symbol returns a pointer to the symbol, or nil if id is invalid.
func (t *Table) Symbol(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(t.symbols) {
		return nil
	}
	return &t.symbols[id]
}

// newSymbol allocates sym in the arena and returns its ID; callers use
// Add/AddChain to also index it by name in a scope.
func (t *Table) newSymbol(sym Symbol) SymbolID {
	idx, err := safecast.Conv[uint32](len(t.symbols))
	if err != nil {
		panic(fmt.Errorf("symbols: symbol arena overflow: %w", err))
	}
	id := SymbolID(idx)
	t.symbols = append(t.symbols, sym)
	return id
}

// NewDetachedSymbol allocates sym without indexing it into any scope's
// name chain — used for synthetic symbols a name lookup must never find
// by itself: an enum-struct field's per-access child, a function's
// hidden array-return parameter slot.
func (t *Table) NewDetachedSymbol(sym Symbol) SymbolID {
	return t.newSymbol(sym)
}

// Find walks from scope up through its parents looking for name,
// returning the nearest (innermost) match.
func (t *Table) Find(scope ScopeID, name source.StringID) (SymbolID, bool) {
	for s := t.Scope(scope); s != nil; s = t.Scope(s.Parent) {
		if ids, ok := s.chain[name]; ok && len(ids) > 0 {
			return ids[len(ids)-1], true
		}
	}
	return NoSymbolID, false
}

// FindLocal looks up name only in scope itself, not its parents.
func (t *Table) FindLocal(scope ScopeID, name source.StringID) (SymbolID, bool) {
	s := t.Scope(scope)
	if s == nil {
		return NoSymbolID, false
	}
	ids, ok := s.chain[name]
	if !ok || len(ids) == 0 {
		return NoSymbolID, false
	}
	return ids[len(ids)-1], true
}

// Add declares sym in scope, rejecting a redefinition of the same name
// already present in that exact scope (§4.2). Use AddChain for the
// argument-shadowing case the original compiler allows.
func (t *Table) Add(scope ScopeID, sym Symbol) (SymbolID, error) {
	s := t.Scope(scope)
	if s == nil {
		return NoSymbolID, fmt.Errorf("symbols: invalid scope %d", scope)
	}
	if existing, ok := t.FindLocal(scope, sym.Name); ok {
		return NoSymbolID, &Redefinition{Previous: existing}
	}
	id := t.newSymbol(sym)
	s.chain[sym.Name] = append(s.chain[sym.Name], id)
	s.order = append(s.order, id)
	return id, nil
}

// AddChain declares sym in scope even if a symbol with the same name
// already exists there, appending to the lookup chain — the original
// compiler's allowance for an inner block redeclaring an argument name.
func (t *Table) AddChain(scope ScopeID, sym Symbol) SymbolID {
	s := t.Scope(scope)
	if s == nil {
		panic(fmt.Sprintf("symbols: invalid scope %d", scope))
	}
	id := t.newSymbol(sym)
	s.chain[sym.Name] = append(s.chain[sym.Name], id)
	s.order = append(s.order, id)
	return id
}

// ChainExisting indexes an already-allocated symbol (typically one
// created with NewDetachedSymbol) by name in scope, without allocating
// a new arena slot — used to bring a function's parameter symbols,
// built once at binding time, into the function body's own scope.
func (t *Table) ChainExisting(scope ScopeID, name source.StringID, id SymbolID) {
	s := t.Scope(scope)
	if s == nil {
		return
	}
	s.chain[name] = append(s.chain[name], id)
	s.order = append(s.order, id)
}

// Iterate calls fn for every symbol declared directly in scope, in
// declaration order — used by the driver's unused-symbol report.
func (t *Table) Iterate(scope ScopeID, fn func(SymbolID, *Symbol)) {
	s := t.Scope(scope)
	if s == nil {
		return
	}
	for _, id := range s.order {
		fn(id, t.Symbol(id))
	}
}

// AddReferenceTo records that from refers to to, and the reverse edge.
// No pass reads these edges; unused-symbol checks use the usage bits.
func (t *Table) AddReferenceTo(from, to SymbolID) {
	fromSym := t.Symbol(from)
	toSym := t.Symbol(to)
	if fromSym == nil || toSym == nil {
		return
	}
	fromSym.References = append(fromSym.References, to)
	toSym.ReferencedBy = append(toSym.ReferencedBy, from)
}

// MarkUsage sets bit on sym's usage bits.
func (t *Table) MarkUsage(sym SymbolID, bit UsageBits) {
	if s := t.Symbol(sym); s != nil {
		s.MarkUsage(bit)
	}
}
