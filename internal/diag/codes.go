package diag

import "fmt"

// Code is a stable numeric diagnostic identifier. The numbers are part of
// the external contract: downstream tooling (editors, build systems,
// regression suites) parses them, so a code is never renumbered once
// shipped. New diagnostics take the next free number in the relevant
// range; they are never inserted into a gap reserved for something else.
type Code uint16

const (
	UnknownCode Code = 0

	// 1-169: entry point, declarations, name resolution, expressions.
	ErrEntryPointMissing        Code = 13
	ErrUndefinedSymbol          Code = 17
	ErrNotLValue                Code = 22
	ErrArrayMustBeIndexed       Code = 33
	ErrDuplicateCaseLabel       Code = 40
	ErrArraySizeMismatch        Code = 47
	ErrDivByZero                Code = 59
	ErrIntOverflow              Code = 60
	ErrDuplicateType            Code = 61
	ErrStaticAssertFailed       Code = 70
	WarnMixedReturns            Code = 78
	ErrCtorOnFieldAccess        Code = 84
	ErrVoidFunctionReturnsValue Code = 88
	ErrArgumentCount            Code = 92
	ErrNewArrayNotSupported     Code = 142
	ErrNoSetterForProperty      Code = 152
	ErrNoGetterForProperty      Code = 153

	// 170-199: conversions and array/string shape checks.
	WarnStringArrayTagMismatch Code = 179

	// 200-299: usage, flow and style warnings.
	WarnUnusedVariable            Code = 203
	WarnConstantConditionFalse    Code = 205
	WarnConstantConditionTrue     Code = 206
	ErrFunctionMissingReturnValue Code = 209
	WarnUnreachableCode           Code = 213
	WarnNoSideEffect              Code = 215
	WarnSelfAssignment            Code = 226
	WarnDeprecatedUse             Code = 227
	ErrFunctionNotAllPathsReturn  Code = 242
	WarnUnusedFunction            Code = 244
	WarnValueAssignedNeverRead    Code = 245

	// 400-499: function signature and return-size inference.
	ErrFunctionReturnTypeMismatch Code = 400
	ErrRecursiveReturnInference   Code = 411
)

var codeSeverity = map[Code]Severity{
	ErrEntryPointMissing:          SevError,
	ErrUndefinedSymbol:            SevError,
	ErrNotLValue:                  SevError,
	ErrArrayMustBeIndexed:         SevError,
	ErrDuplicateCaseLabel:         SevError,
	ErrArraySizeMismatch:          SevError,
	ErrDivByZero:                  SevError,
	ErrIntOverflow:                SevError,
	ErrDuplicateType:              SevError,
	ErrStaticAssertFailed:         SevError,
	WarnMixedReturns:              SevWarning,
	ErrCtorOnFieldAccess:          SevError,
	ErrVoidFunctionReturnsValue:   SevError,
	ErrArgumentCount:              SevError,
	ErrNewArrayNotSupported:       SevError,
	ErrNoSetterForProperty:        SevError,
	ErrNoGetterForProperty:        SevError,
	WarnStringArrayTagMismatch:    SevWarning,
	WarnUnusedVariable:            SevWarning,
	WarnConstantConditionFalse:    SevWarning,
	WarnConstantConditionTrue:     SevWarning,
	ErrFunctionMissingReturnValue: SevError,
	WarnUnreachableCode:           SevWarning,
	WarnNoSideEffect:              SevWarning,
	WarnSelfAssignment:            SevWarning,
	WarnDeprecatedUse:             SevWarning,
	ErrFunctionNotAllPathsReturn:  SevError,
	WarnUnusedFunction:            SevWarning,
	WarnValueAssignedNeverRead:    SevWarning,
	ErrFunctionReturnTypeMismatch: SevError,
	ErrRecursiveReturnInference:   SevError,
}

var codeDescription = map[Code]string{
	UnknownCode:                   "unknown diagnostic",
	ErrEntryPointMissing:          "no entry point found in translation unit",
	ErrUndefinedSymbol:            "undefined symbol",
	ErrNotLValue:                  "expression is not an l-value",
	ErrArrayMustBeIndexed:         "array must be indexed",
	ErrDuplicateCaseLabel:         "duplicate case label",
	ErrArraySizeMismatch:          "array sizes must match",
	ErrDivByZero:                  "division by zero in constant expression",
	ErrIntOverflow:                "constant expression overflows 32-bit integer",
	ErrDuplicateType:              "type name already bound to a different kind",
	ErrStaticAssertFailed:         "static assertion failed",
	WarnMixedReturns:              "function mixes value and bare returns",
	ErrCtorOnFieldAccess:          "constructor call not allowed on field access",
	ErrVoidFunctionReturnsValue:   "void function cannot return a value",
	ErrArgumentCount:              "wrong number of arguments",
	ErrNewArrayNotSupported:       "'new' array expressions are not supported",
	ErrNoSetterForProperty:        "no setter for property",
	ErrNoGetterForProperty:        "no getter for property",
	WarnStringArrayTagMismatch:    "assigning array of mismatched tag to string array",
	WarnUnusedVariable:            "unused variable",
	WarnConstantConditionFalse:    "condition is always false",
	WarnConstantConditionTrue:     "condition is always true",
	ErrFunctionMissingReturnValue: "not all control paths return a value",
	WarnUnreachableCode:           "unreachable code",
	WarnNoSideEffect:              "expression has no effect",
	WarnSelfAssignment:            "variable assigned to itself",
	WarnDeprecatedUse:             "use of deprecated symbol",
	ErrFunctionNotAllPathsReturn:  "not all control paths return a value",
	WarnUnusedFunction:            "function is never used",
	WarnValueAssignedNeverRead:    "value assigned but never read",
	ErrFunctionReturnTypeMismatch: "forward declaration return type does not match definition",
	ErrRecursiveReturnInference:   "recursive call requires return-size inference",
}

// ID renders the stable external form, e.g. "E0017".
func (c Code) ID() string {
	return fmt.Sprintf("E%04d", uint16(c))
}

// Title returns the short human description registered for the code.
func (c Code) Title() string {
	if desc, ok := codeDescription[c]; ok {
		return desc
	}
	return codeDescription[UnknownCode]
}

// DefaultSeverity returns the severity class a code is registered with.
// Codes with no registered entry default to SevError: an unregistered
// code is always a programmer mistake in the checker, never a style nit.
func (c Code) DefaultSeverity() Severity {
	if sev, ok := codeSeverity[c]; ok {
		return sev
	}
	return SevError
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
