package symbols

import "gscript/internal/source"

// ScopeKind classifies the lexical role of a scope.
type ScopeKind uint8

const (
	ScopeInvalid ScopeKind = iota
	ScopeFile              // per-translation-unit root
	ScopeGlobal            // top-level declarations
	ScopeFunction          // a function body
	ScopeBlock             // any nested block (if/while/for/switch arm)
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFile:
		return "file"
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Scope is a node in the lexical scope tree: a parent pointer, an
// optional file number (for file-static symbols), and a name-to-symbol
// chain. Argument scopes allow a name to be redeclared by an inner
// block, so one name may map to several symbols in a scope; lookup
// returns the most recently added one.
type Scope struct {
	Kind   ScopeKind
	Parent ScopeID
	File   source.FileID
	Span   source.Span

	// chain maps an interned name to the symbols sharing that name in
	// this scope, in the order they were added (most recent last).
	chain map[source.StringID][]SymbolID
	// order preserves declaration order for iteration (unused-symbol
	// reports walk scopes in source order, not map order).
	order []SymbolID

	Children []ScopeID
}
