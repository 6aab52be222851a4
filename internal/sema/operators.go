// Package sema implements the semantic analysis core: the expression and
// statement checkers, the per-function analyzer, and the usage/heap
// tracker that together turn a parsed Tree plus its symbol table into a
// fully resolved one (§4.4-§4.9).
package sema

import (
	"gscript/internal/ast"
	"gscript/internal/ident"
	"gscript/internal/symbols"
	"gscript/internal/types"
)

// MatchFlags controls how strictly matchTag enforces tag compatibility.
type MatchFlags uint8

const (
	// MatchCoerce marks a call site that accepts an implicit widening
	// (enum to int, any to anything); matchTag accepts those whether or
	// not it is set.
	MatchCoerce MatchFlags = 1 << iota
	// MatchSilent marks a call site that reports its own diagnostic;
	// matchTag never reports one.
	MatchSilent
	// MatchDeduce marks a call site where dst may be `any`; matchTag
	// accepts `any` on either side whether or not it is set.
	MatchDeduce
)

func (f MatchFlags) has(bit MatchFlags) bool { return f&bit != 0 }

// UserOperation describes a resolved operator-overload call: the
// function symbol to invoke and whether its arguments must be swapped
// (found via the commutative-reversed search).
type UserOperation struct {
	Symbol  symbols.SymbolID
	Swapped bool
}

// operatorName maps a binary/unary op to the mangled function name the
// original compiler's operator-overload declarations use
// (`operator+`-style names), the same name `findUserOp` searches for.
func operatorName(op ast.BinaryOp) (string, bool) {
	switch op {
	case ast.BinAdd:
		return "operator+", true
	case ast.BinSub:
		return "operator-", true
	case ast.BinMul:
		return "operator*", true
	case ast.BinDiv:
		return "operator/", true
	case ast.BinMod:
		return "operator%", true
	case ast.BinEq:
		return "operator==", true
	case ast.BinNe:
		return "operator!=", true
	case ast.BinLt:
		return "operator<", true
	case ast.BinLe:
		return "operator<=", true
	case ast.BinGt:
		return "operator>", true
	case ast.BinGe:
		return "operator>=", true
	case ast.BinBitAnd:
		return "operator&", true
	case ast.BinBitOr:
		return "operator|", true
	case ast.BinBitXor:
		return "operator^", true
	default:
		return "", false
	}
}

func unaryOperatorName(op ast.UnaryOp) (string, bool) {
	switch op {
	case ast.UnaryNeg:
		return "operator-", true
	case ast.UnaryNot:
		return "operator!", true
	case ast.UnaryComplement:
		return "operator~", true
	default:
		return "", false
	}
}

// compoundAssignBase maps a compound assignment operator to the plain
// binary operator its right-hand side is combined with, so a compound
// assignment can look up the same user-operator overload an equivalent
// `x = x <op> y` would (§4.5, §3 "assignment-op descriptor").
func compoundAssignBase(op ast.BinaryOp) (ast.BinaryOp, bool) {
	switch op {
	case ast.BinAddAssign:
		return ast.BinAdd, true
	case ast.BinSubAssign:
		return ast.BinSub, true
	case ast.BinMulAssign:
		return ast.BinMul, true
	case ast.BinDivAssign:
		return ast.BinDiv, true
	case ast.BinModAssign:
		return ast.BinMod, true
	case ast.BinShlAssign:
		return ast.BinShl, true
	case ast.BinShrAssign:
		return ast.BinShrSigned, true
	case ast.BinAndAssign:
		return ast.BinBitAnd, true
	case ast.BinOrAssign:
		return ast.BinBitOr, true
	case ast.BinXorAssign:
		return ast.BinBitXor, true
	default:
		return 0, false
	}
}

// findUserOp searches scope upward for a two-argument function named
// after op whose formal tags match (left, right) either directly or in
// swapped order (§4.4). The search stops at the first scope level that
// defines the name at all — an operator is not overloaded across
// unrelated scopes.
func (c *Checker) findUserOp(scope symbols.ScopeID, op ast.BinaryOp, left, right types.Tag) (UserOperation, bool) {
	name, ok := operatorName(op)
	if !ok {
		return UserOperation{}, false
	}
	return c.resolveOperatorOverload(scope, name, left, right)
}

// findUnaryUserOp is findUserOp's one-argument counterpart for `-`, `!`
// and `~`; checkUnary calls it when the operand does not constant-fold.
func (c *Checker) findUnaryUserOp(scope symbols.ScopeID, op ast.UnaryOp, operand types.Tag) (UserOperation, bool) {
	name, ok := unaryOperatorName(op)
	if !ok {
		return UserOperation{}, false
	}
	id := c.str.Intern(name)
	sym, ok := c.Symbols.Find(scope, id)
	if !ok {
		return UserOperation{}, false
	}
	sdata := c.Symbols.Symbol(sym)
	if sdata == nil || sdata.Ident != ident.Function || sdata.Function == nil {
		return UserOperation{}, false
	}
	if len(sdata.Function.Params) != 1 {
		return UserOperation{}, false
	}
	p := c.Symbols.Symbol(sdata.Function.Params[0])
	if p == nil || !c.matchTag(p.Tag, operand, MatchSilent) {
		return UserOperation{}, false
	}
	return UserOperation{Symbol: sym}, true
}

func (c *Checker) resolveOperatorOverload(scope symbols.ScopeID, name string, left, right types.Tag) (UserOperation, bool) {
	id := c.str.Intern(name)
	sym, ok := c.Symbols.Find(scope, id)
	if !ok {
		return UserOperation{}, false
	}
	sdata := c.Symbols.Symbol(sym)
	if sdata == nil || sdata.Ident != ident.Function || sdata.Function == nil {
		return UserOperation{}, false
	}
	if len(sdata.Function.Params) != 2 {
		return UserOperation{}, false
	}
	p0 := c.Symbols.Symbol(sdata.Function.Params[0])
	p1 := c.Symbols.Symbol(sdata.Function.Params[1])
	if p0 == nil || p1 == nil {
		return UserOperation{}, false
	}
	if c.matchTag(p0.Tag, left, MatchSilent) && c.matchTag(p1.Tag, right, MatchSilent) {
		return UserOperation{Symbol: sym}, true
	}
	if c.matchTag(p0.Tag, right, MatchSilent) && c.matchTag(p1.Tag, left, MatchSilent) {
		return UserOperation{Symbol: sym, Swapped: true}, true
	}
	return UserOperation{}, false
}

// matchTag reports whether a value tagged src may be used where dst is
// expected. An exact match, `any` on either side, and a plain int paired
// with an enum tag (either way round) succeed; every other pair fails.
// The result does not depend on flags, and matchTag reports no
// diagnostic itself: callers that warn on a mismatch do so on a false
// result (§4.4).
func (c *Checker) matchTag(dst, src types.Tag, flags MatchFlags) bool {
	if dst == src {
		return true
	}
	if dst == c.Types.Builtin().Any || src == c.Types.Builtin().Any {
		return true
	}
	if flags.has(MatchDeduce) && dst == c.Types.Builtin().Any {
		return true
	}
	dstIsPlainInt := dst == c.Types.Builtin().Int
	srcIsPlainInt := src == c.Types.Builtin().Int
	if (dstIsPlainInt && c.Types.IsEnum(src)) || (srcIsPlainInt && c.Types.IsEnum(dst)) {
		return true
	}
	return false
}

// matchTagCommutative tries (dst,src) and (src,dst): used by binary
// operator checking, where neither operand is privileged as "the"
// destination. Symmetric by construction (§8 property 7).
func (c *Checker) matchTagCommutative(a, b types.Tag, flags MatchFlags) bool {
	return c.matchTag(a, b, flags) || c.matchTag(b, a, flags)
}
