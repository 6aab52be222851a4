package types

import (
	"fmt"

	"fortio.org/safecast"
)

// DuplicateType is returned by the define* helpers when a name already
// names a type with a different structural kind than the one requested.
type DuplicateType struct {
	Name     string
	Existing Kind
	Wanted   Kind
}

func (e *DuplicateType) Error() string {
	return fmt.Sprintf("type %q already has kind %s, cannot redefine as %s", e.Name, e.Existing, e.Wanted)
}

// Registry interns every Type by name, the way the original compiler's
// TypeDictionary does — `findOrAdd` is the sole constructor of new tags,
// so a name always maps to exactly one Tag for the lifetime of a pass.
type Registry struct {
	types []Type
	byName map[string]Tag

	builtin Builtins
}

// Builtins holds the Tags reserved at Registry construction (§4.1).
type Builtins struct {
	Int      Tag
	Bool     Tag
	Any      Tag
	Function Tag
	String   Tag
	Float    Tag
	Void     Tag
	Object   Tag
	Null     Tag
	NullFunc Tag
}

// NewRegistry builds a Registry with the reserved tags created in the
// fixed order the original compiler's TypeDictionary::init uses: int,
// bool, any, Function, String, Float, void, object, null_t, nullfunc_t.
// Downstream code depends on these landing at TagInt..TagNullFunc.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]Tag, 64),
	}
	r.findOrAdd("_")                        // TagInt == 0
	r.findOrAdd("bool")                      // TagBool == 1
	r.findOrAdd("any")                       // TagAny == 2
	r.defineFunctionRaw("Function", nil)     // TagFunction == 3
	r.defineFixed("String")                  // TagString == 4
	r.defineFixed("Float")                   // TagFloat == 5
	r.defineFixed("void")                    // TagVoid == 6
	r.defineObjectRaw("object")              // TagObject == 7
	r.defineObjectRaw("null_t")              // TagNull == 8
	r.defineObjectRaw("nullfunc_t")          // TagNullFunc == 9

	for i := range r.types {
		r.types[i].Intrinsic = true
	}

	r.builtin = Builtins{
		Int:      TagInt,
		Bool:     TagBool,
		Any:      TagAny,
		Function: TagFunction,
		String:   TagString,
		Float:    TagFloat,
		Void:     TagVoid,
		Object:   TagObject,
		Null:     TagNull,
		NullFunc: TagNullFunc,
	}
	return r
}

// Builtin returns the reserved tags created at construction.
func (r *Registry) Builtin() Builtins { return r.builtin }

// findOrAdd returns the unique Tag for name, creating a new label-only
// Type if name has not been seen before.
func (r *Registry) findOrAdd(name string) Tag {
	if tag, ok := r.byName[name]; ok {
		return tag
	}
	idx, err := safecast.Conv[int32](len(r.types))
	if err != nil {
		panic(fmt.Errorf("types: registry overflow: %w", err))
	}
	tag := Tag(idx)
	r.types = append(r.types, Type{Name: name, Tag: tag})
	r.byName[name] = tag
	return tag
}

// FindOrAdd is the exported form of findOrAdd for callers outside this
// package (the parser binding a bare `tagname` reference, the expression
// checker resolving an enum label).
func (r *Registry) FindOrAdd(name string) Tag {
	return r.findOrAdd(name)
}

// Find looks up an existing tag by name without creating one.
func (r *Registry) Find(name string) (Tag, bool) {
	tag, ok := r.byName[name]
	return tag, ok
}

// Lookup returns the Type for tag.
func (r *Registry) Lookup(tag Tag) (*Type, bool) {
	if tag == NoTag || int(tag) < 0 || int(tag) >= len(r.types) {
		return nil, false
	}
	return &r.types[tag], true
}

// MustLookup panics if tag is invalid; used where the caller already
// verified tag came from this registry.
func (r *Registry) MustLookup(tag Tag) *Type {
	t, ok := r.Lookup(tag)
	if !ok {
		panic(fmt.Sprintf("types: invalid tag %d", tag))
	}
	return t
}

// Name returns the display name for tag, or "" if unknown.
func (r *Registry) Name(tag Tag) string {
	t, ok := r.Lookup(tag)
	if !ok {
		return ""
	}
	return t.Name
}

// Kind returns the structural kind for tag.
func (r *Registry) Kind(tag Tag) Kind {
	t, ok := r.Lookup(tag)
	if !ok {
		return KindNone
	}
	return t.Kind
}

func (r *Registry) defineFixed(name string) Tag {
	tag := r.findOrAdd(name)
	r.types[tag].Fixed = true
	return tag
}

func (r *Registry) defineObjectRaw(name string) Tag {
	tag := r.findOrAdd(name)
	t := &r.types[tag]
	t.Kind = KindObject
	t.FirstPassKind = KindObject
	return tag
}

func (r *Registry) defineFunctionRaw(name string, fs *FunctionSet) Tag {
	tag := r.findOrAdd(name)
	t := &r.types[tag]
	t.Kind = KindFunction
	t.FirstPassKind = KindFunction
	if fs != nil {
		t.Payload = fs
	}
	return tag
}

// DefineEnum marks name as an enum tag: a plain collection of named
// integer constants with no further structure. Enum names that start
// with an uppercase letter are also marked Fixed, mirroring the
// original compiler's `isupper(*name)` rule for implicit-conversion
// warnings.
func (r *Registry) DefineEnum(name string) (Tag, error) {
	tag := r.findOrAdd(name)
	t := &r.types[tag]
	if t.Kind != KindNone && t.Kind != KindEnum {
		return NoTag, &DuplicateType{Name: name, Existing: t.Kind, Wanted: KindEnum}
	}
	t.Kind = KindEnum
	t.FirstPassKind = KindEnum
	if len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
		t.Fixed = true
	}
	return tag, nil
}

// DefineEnumStruct attaches an EnumStruct payload to name, creating the
// tag if needed.
func (r *Registry) DefineEnumStruct(name string, es *EnumStruct) (Tag, error) {
	tag := r.findOrAdd(name)
	t := &r.types[tag]
	if t.Kind != KindNone && t.Kind != KindEnumStruct {
		return NoTag, &DuplicateType{Name: name, Existing: t.Kind, Wanted: KindEnumStruct}
	}
	t.Kind = KindEnumStruct
	t.FirstPassKind = KindEnumStruct
	t.Payload = es
	return tag, nil
}

// DefineStruct attaches a pseudo-struct's Kind marker to name. The
// PseudoStruct descriptor itself is tracked by the caller (the driver
// keeps a name-keyed table, per §3's note that pstructs are never given
// a Kind payload of their own) — this only reserves KindStruct so a
// later collision with an incompatible redefinition is caught.
func (r *Registry) DefineStruct(name string) (Tag, error) {
	tag := r.findOrAdd(name)
	t := &r.types[tag]
	if t.Kind != KindNone && t.Kind != KindStruct {
		return NoTag, &DuplicateType{Name: name, Existing: t.Kind, Wanted: KindStruct}
	}
	t.Kind = KindStruct
	t.FirstPassKind = KindStruct
	return tag, nil
}

// DefineMethodmap attaches a Methodmap payload to name.
func (r *Registry) DefineMethodmap(name string, mm *Methodmap) (Tag, error) {
	tag := r.findOrAdd(name)
	t := &r.types[tag]
	if t.Kind != KindNone && t.Kind != KindMethodmap {
		return NoTag, &DuplicateType{Name: name, Existing: t.Kind, Wanted: KindMethodmap}
	}
	t.Kind = KindMethodmap
	t.FirstPassKind = KindMethodmap
	t.Payload = mm
	return tag, nil
}

// DefineFunction attaches or extends a FunctionSet payload (a typeset
// gains an overload when a signature with the same name but a distinct
// arity/tag list is declared again).
func (r *Registry) DefineFunction(name string, sig FunctionSig) (Tag, error) {
	tag := r.findOrAdd(name)
	t := &r.types[tag]
	if t.Kind != KindNone && t.Kind != KindFunction {
		return NoTag, &DuplicateType{Name: name, Existing: t.Kind, Wanted: KindFunction}
	}
	t.Kind = KindFunction
	t.FirstPassKind = KindFunction
	fs, _ := t.Payload.(*FunctionSet)
	if fs == nil {
		fs = &FunctionSet{}
		t.Payload = fs
	}
	fs.Entries = append(fs.Entries, sig)
	return tag, nil
}

// ResetPtr clears every non-intrinsic type's structural Kind/payload
// between analysis passes while preserving the Tag assignment and
// remembering the previous Kind in FirstPassKind — mirrors
// `Type::resetPtr` / `TypeDictionary::clearExtendedTypes`.
func (r *Registry) ResetPtr() {
	for i := range r.types {
		t := &r.types[i]
		if t.Intrinsic {
			continue
		}
		if t.Kind != KindNone {
			t.FirstPassKind = t.Kind
		}
		t.Kind = KindNone
		t.Payload = nil
	}
}

// IsEnum, IsEnumStruct, IsMethodmap, IsObject, IsFunction are the
// category predicates the expression/statement checkers consult when
// dispatching on a value's tag.
func (r *Registry) IsEnum(tag Tag) bool       { t, ok := r.Lookup(tag); return ok && t.isEnum() }
func (r *Registry) IsEnumStruct(tag Tag) bool { t, ok := r.Lookup(tag); return ok && t.isEnumStruct() }
func (r *Registry) IsMethodmap(tag Tag) bool  { t, ok := r.Lookup(tag); return ok && t.isMethodmap() }
func (r *Registry) IsObject(tag Tag) bool     { t, ok := r.Lookup(tag); return ok && t.isObject() }
func (r *Registry) IsFunction(tag Tag) bool   { t, ok := r.Lookup(tag); return ok && t.isFunction() }

// IsLabelTag reports whether tag names a bare enum label with no
// attached structure — §4.1: "kind is None and it is not one of
// {0, bool, float}".
func (r *Registry) IsLabelTag(tag Tag) bool {
	t, ok := r.Lookup(tag)
	if !ok {
		return false
	}
	return t.IsLabelTag()
}

// MethodmapChain walks the Parent links of a methodmap tag, outermost
// (tag itself) first, innermost (root ancestor) last. Returns nil if tag
// is not a methodmap. A cycle (malformed input) stops the walk rather
// than looping forever.
func (r *Registry) MethodmapChain(tag Tag) []Tag {
	var chain []Tag
	seen := make(map[Tag]bool)
	for tag != NoTag && !seen[tag] {
		t, ok := r.Lookup(tag)
		if !ok {
			break
		}
		mm, ok := t.Methodmap()
		if !ok {
			break
		}
		chain = append(chain, tag)
		seen[tag] = true
		tag = mm.Parent
	}
	return chain
}

// InheritsFrom reports whether child's methodmap chain includes ancestor.
func (r *Registry) InheritsFrom(child, ancestor Tag) bool {
	for _, t := range r.MethodmapChain(child) {
		if t == ancestor {
			return true
		}
	}
	return false
}

// ResolveMethod searches a methodmap's own method table, then its parent
// chain, for name — mirrors the original compiler's
// methodmap_t::FindMethod which checks self before walking to parent_.
func (r *Registry) ResolveMethod(tag Tag, name string) (*MethodmapMethod, Tag, bool) {
	for _, t := range r.MethodmapChain(tag) {
		ty := r.MustLookup(t)
		mm, ok := ty.Methodmap()
		if !ok {
			continue
		}
		if m, ok := mm.MethodByName(name); ok {
			return m, t, true
		}
	}
	return nil, NoTag, false
}

// EnumStructField looks up field name on tag's enum-struct payload.
func (r *Registry) EnumStructField(tag Tag, name string) (EnumStructField, int, bool) {
	t, ok := r.Lookup(tag)
	if !ok {
		return EnumStructField{}, -1, false
	}
	es, ok := t.EnumStruct()
	if !ok {
		return EnumStructField{}, -1, false
	}
	return es.FieldByName(name)
}
