package symbols

import "gscript/internal/types"

// SymbolID identifies a symbol inside the table's arena.
type SymbolID uint32

// NoSymbolID marks the absence of a symbol reference.
const NoSymbolID SymbolID = 0

// IsValid reports whether id refers to an allocated symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// Ref converts id to the opaque reference types.Methodmap/EnumStruct
// payloads use to point back at a symbol (constructor, destructor,
// property accessor) without internal/types importing this package.
func (id SymbolID) Ref() types.SymRef { return types.SymRef(id) }

// SymbolIDFromRef converts a types.SymRef back into a SymbolID.
func SymbolIDFromRef(r types.SymRef) SymbolID { return SymbolID(r) }

// ScopeID identifies a scope inside the table's arena.
type ScopeID uint32

// NoScopeID marks the absence of a scope reference.
const NoScopeID ScopeID = 0

// IsValid reports whether id refers to an allocated scope.
func (id ScopeID) IsValid() bool { return id != NoScopeID }
