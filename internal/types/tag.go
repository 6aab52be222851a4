package types

// Tag is an integer handle identifying a type in the Registry. Tag 0 is
// the implicit integer type; tags are dense and stable once assigned —
// resetPtr never renumbers them, it only clears non-intrinsic payloads.
type Tag int32

// NoTag marks the absence of a tag (distinct from TagInt, which is 0
// and a perfectly valid type).
const NoTag Tag = -1

// Reserved tags, created at Registry init in this exact order (§4.1,
// §6). Downstream code generation depends on these specific values.
const (
	TagInt      Tag = 0
	TagBool     Tag = 1
	TagAny      Tag = 2
	TagFunction Tag = 3
	TagString   Tag = 4
	TagFloat    Tag = 5
	TagVoid     Tag = 6
	TagObject   Tag = 7
	TagNull     Tag = 8
	TagNullFunc Tag = 9
)
