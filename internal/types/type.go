package types

// Type is one entry in the Registry: a tag's name plus whatever
// kind-specific structural payload it carries. Bare labels and the
// reserved int, bool, any, String, Float and void tags have KindNone and
// a nil Payload; enums have KindEnum.
type Type struct {
	Name string
	Tag  Tag
	Kind Kind

	// Intrinsic marks a reserved tag created during Registry
	// initialization (§4.1); resetPtr never clears these.
	Intrinsic bool

	// Fixed marks a tag whose values are never implicitly convertible to
	// plain int without a warning (String, Float, void, and every enum
	// whose name starts with an uppercase letter).
	Fixed bool

	// FirstPassKind remembers Kind across a resetPtr call, so a second
	// pass can tell whether a tag was previously structural (used by
	// IsDeclaredButNotDefined).
	FirstPassKind Kind

	// Payload is the kind-specific descriptor: *Methodmap, *EnumStruct,
	// *FunctionSet, or nil when Kind == KindNone.
	Payload any
}

// Methodmap returns the methodmap payload, if Kind == KindMethodmap.
func (t *Type) Methodmap() (*Methodmap, bool) {
	mm, ok := t.Payload.(*Methodmap)
	return mm, ok
}

// EnumStruct returns the enum-struct payload, if Kind == KindEnumStruct.
func (t *Type) EnumStruct() (*EnumStruct, bool) {
	es, ok := t.Payload.(*EnumStruct)
	return es, ok
}

// FunctionSet returns the function-typeset payload, if Kind == KindFunction.
func (t *Type) FunctionSet() (*FunctionSet, bool) {
	fs, ok := t.Payload.(*FunctionSet)
	return fs, ok
}

// IsDeclaredButNotDefined reports a tag that was forward-declared (as a
// methodmap or similar) in an earlier pass but never given a body in this
// one — the only structural kind allowed to be "forgotten" this way is
// enum struct, which in the original language may be declared via a
// function prototype parameter before its body is parsed.
func (t *Type) IsDeclaredButNotDefined() bool {
	if t.Kind != KindNone {
		return false
	}
	return t.FirstPassKind == KindNone || t.FirstPassKind == KindEnumStruct
}

// PrettyName is the name used in diagnostics: the kind name for function
// tags, "int" for the implicit tag 0, and the plain name otherwise.
func (t *Type) PrettyName() string {
	if t.Kind == KindFunction {
		return t.KindName()
	}
	if t.Tag == TagInt {
		return "int"
	}
	return t.Name
}

// KindName names the structural category of t for diagnostics.
func (t *Type) KindName() string {
	switch t.Kind {
	case KindEnumStruct:
		return "enum struct"
	case KindStruct:
		return "struct"
	case KindMethodmap:
		return "methodmap"
	case KindEnum:
		return "enum"
	case KindObject:
		return "object"
	case KindFunction:
		if fs, ok := t.Payload.(*FunctionSet); ok && len(fs.Entries) > 1 {
			return "typeset"
		}
		return "function"
	default:
		return "type"
	}
}

// IsLabelTag reports whether t is a bare enum label with no associated
// semantics beyond naming an integer: not the implicit int tag, not bool,
// not float, and not carrying any structural Kind.
func (t *Type) IsLabelTag() bool {
	if t.Tag == TagInt || t.Tag == TagBool || t.Tag == TagFloat {
		return false
	}
	return t.Kind == KindNone
}

func (t *Type) isEnum() bool       { return t.Kind == KindEnum }
func (t *Type) isEnumStruct() bool { return t.Kind == KindEnumStruct }
func (t *Type) isMethodmap() bool  { return t.Kind == KindMethodmap }
func (t *Type) isObject() bool     { return t.Kind == KindObject }
func (t *Type) isFunction() bool   { return t.Kind == KindFunction }
