package mapping

// FieldType is the stored type of a mapped member
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeNumber   FieldType = "number"
	TypeBool     FieldType = "bool"
	TypeDate     FieldType = "date"
	TypeObjectID FieldType = "objectId"
	TypeUUID     FieldType = "uuid"
	TypeBinary   FieldType = "binary"
	TypeObject   FieldType = "object"
	TypeArray    FieldType = "array"
	TypeAny      FieldType = "any"
)

func (t FieldType) valid() bool {
	switch t {
	case TypeString, TypeNumber, TypeBool, TypeDate, TypeObjectID, TypeUUID,
		TypeBinary, TypeObject, TypeArray, TypeAny:
		return true
	}
	return false
}

// Member is one mapped, serializable member of a document type
type Member struct {
	Name   string    // declared name, as used in expressions
	Stored string    // serialized name written to the database
	Type   FieldType // stored type
	Elem   FieldType // element type when Type is TypeArray
	Fields Type      // nested members of objects and arrays of objects, nil otherwise
}

// IsArray reports whether the member stores a sequence
func (m Member) IsArray() bool {
	return m.Type == TypeArray
}

// Type describes the mapped members of a document type or nested object.
// Implementations must be safe for concurrent use.
type Type interface {
	Name() string
	Member(name string) (Member, bool)
}

// FieldPath is a resolved member chain
type FieldPath struct {
	Path string // dotted serialized path, e.g. "address.city"
	Leaf Member // the last member of the chain
}

func (p FieldPath) String() string {
	return p.Path
}
