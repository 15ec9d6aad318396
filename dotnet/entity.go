package dotnet

// EntityKind identifies what a token or operand resolved to.
type EntityKind uint8

const (
	EntityUnknown EntityKind = iota
	EntityType
	EntityField
	EntityMethod
	EntityString
)

func (k EntityKind) String() string {
	switch k {
	case EntityType:
		return "type"
	case EntityField:
		return "field"
	case EntityMethod:
		return "method"
	case EntityString:
		return "string"
	default:
		return "unknown"
	}
}

// Entity is a resolved metadata entity. Exactly one accessor matching Kind
// reports ok.
type Entity struct {
	kind   EntityKind
	typ    *Type
	field  *FieldDefinition
	method *MethodDefinition
	str    string
}

func TypeEntity(t *Type) Entity               { return Entity{kind: EntityType, typ: t} }
func FieldEntity(f *FieldDefinition) Entity   { return Entity{kind: EntityField, field: f} }
func MethodEntity(m *MethodDefinition) Entity { return Entity{kind: EntityMethod, method: m} }
func StringEntity(s string) Entity            { return Entity{kind: EntityString, str: s} }

func (e Entity) Kind() EntityKind                  { return e.kind }
func (e Entity) Type() (*Type, bool)               { return e.typ, e.kind == EntityType }
func (e Entity) Field() (*FieldDefinition, bool)   { return e.field, e.kind == EntityField }
func (e Entity) Method() (*MethodDefinition, bool) { return e.method, e.kind == EntityMethod }
func (e Entity) StringValue() (string, bool)       { return e.str, e.kind == EntityString }

// Name returns a printable name for the entity.
func (e Entity) Name() string {
	switch e.kind {
	case EntityType:
		return e.typ.FullName()
	case EntityField:
		return e.field.FullName()
	case EntityMethod:
		return e.method.FullName()
	case EntityString:
		return e.str
	default:
		return ""
	}
}
