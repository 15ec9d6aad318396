package dotnet

import (
	"strings"
	"sync"
)

// TypeKind identifies the shape of a resolved type.
type TypeKind uint8

const (
	TypeKindUnknown TypeKind = iota
	TypeKindDefinition
	TypeKindReference
	TypeKindGenericInstance
)

func (k TypeKind) String() string {
	switch k {
	case TypeKindDefinition:
		return "definition"
	case TypeKindReference:
		return "reference"
	case TypeKindGenericInstance:
		return "generic_instance"
	default:
		return "unknown"
	}
}

// TypeDefinition is a type with its members available.
type TypeDefinition struct {
	Token         Token
	Namespace     string
	Name          string
	DeclaringType *TypeDefinition
	Assembly      AssemblyIdentity
	Fields        []*FieldDefinition
	Methods       []*MethodDefinition
}

// FullName returns the namespace-qualified name, with '+' before nested names.
func (d *TypeDefinition) FullName() string {
	if d.DeclaringType != nil {
		return d.DeclaringType.FullName() + "+" + d.Name
	}
	return qualify(d.Namespace, d.Name)
}

// FieldByName returns the first field named name.
func (d *TypeDefinition) FieldByName(name string) (*FieldDefinition, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// MethodByName returns the first method named name. Overloads are not
// distinguished.
func (d *TypeDefinition) MethodByName(name string) (*MethodDefinition, bool) {
	for _, m := range d.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// FieldDefinition is a field row.
type FieldDefinition struct {
	Token         Token
	Name          string
	IsStatic      bool
	DeclaringType *TypeDefinition
}

func (f *FieldDefinition) FullName() string {
	if f.DeclaringType == nil {
		return f.Name
	}
	return f.DeclaringType.FullName() + "::" + f.Name
}

// MethodDefinition is a method row.
type MethodDefinition struct {
	Token         Token
	Name          string
	IsStatic      bool
	DeclaringType *TypeDefinition
}

func (m *MethodDefinition) FullName() string {
	if m.DeclaringType == nil {
		return m.Name
	}
	return m.DeclaringType.FullName() + "::" + m.Name
}

// ModifierKind is a type-name suffix kind.
type ModifierKind uint8

const (
	ModifierArray ModifierKind = iota
	ModifierPointer
	ModifierByRef
)

// TypeModifier is one suffix of a type name: an array of Rank dimensions,
// a pointer, or a by-ref.
type TypeModifier struct {
	Kind ModifierKind
	Rank int
}

func (m TypeModifier) String() string {
	switch m.Kind {
	case ModifierPointer:
		return "*"
	case ModifierByRef:
		return "&"
	default:
		if m.Rank <= 1 {
			return "[]"
		}
		return "[" + strings.Repeat(",", m.Rank-1) + "]"
	}
}

// TypeReference names a type that has not been bound to a definition.
type TypeReference struct {
	Token         Token
	Namespace     string
	Name          string
	DeclaringType *TypeReference
	Scope         AssemblyIdentity
	GenericArgs   []*TypeReference
	Modifiers     []TypeModifier
}

// FullName returns the name in type-name syntax without the assembly.
func (r *TypeReference) FullName() string {
	var b strings.Builder
	b.WriteString(r.ElementName())
	if len(r.GenericArgs) > 0 {
		b.WriteByte('[')
		for i, arg := range r.GenericArgs {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(arg.FullName())
		}
		b.WriteByte(']')
	}
	for _, m := range r.Modifiers {
		b.WriteString(m.String())
	}
	return b.String()
}

// ElementName is FullName without generic arguments and modifiers.
func (r *TypeReference) ElementName() string {
	if r.DeclaringType != nil {
		return r.DeclaringType.ElementName() + "+" + r.Name
	}
	return qualify(r.Namespace, r.Name)
}

// IsPlain reports whether the reference names a type definition directly,
// with no generic arguments or modifiers.
func (r *TypeReference) IsPlain() bool {
	return len(r.GenericArgs) == 0 && len(r.Modifiers) == 0
}

// GenericInstance is a generic type applied to arguments.
type GenericInstance struct {
	Generic *Type
	Args    []*Type
}

func (g *GenericInstance) FullName() string {
	var b strings.Builder
	b.WriteString(g.Generic.FullName())
	b.WriteByte('<')
	for i, arg := range g.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(arg.FullName())
	}
	b.WriteByte('>')
	return b.String()
}

// Type is a resolved type: a definition, a bare reference, or a generic
// instantiation. The zero value is not valid; use the constructors.
type Type struct {
	kind TypeKind
	def  *TypeDefinition
	ref  *TypeReference
	inst *GenericInstance
}

func DefinitionType(d *TypeDefinition) *Type {
	return &Type{kind: TypeKindDefinition, def: d}
}

func ReferenceType(r *TypeReference) *Type {
	return &Type{kind: TypeKindReference, ref: r}
}

// GenericInstanceType applies args, in order, to generic.
func GenericInstanceType(generic *Type, args []*Type) *Type {
	return &Type{kind: TypeKindGenericInstance, inst: &GenericInstance{Generic: generic, Args: args}}
}

func (t *Type) Kind() TypeKind { return t.kind }

// IsConcrete reports whether members of the type can be enumerated.
func (t *Type) IsConcrete() bool { return t.kind == TypeKindDefinition }

func (t *Type) Definition() (*TypeDefinition, bool) {
	return t.def, t.kind == TypeKindDefinition
}

func (t *Type) Reference() (*TypeReference, bool) {
	return t.ref, t.kind == TypeKindReference
}

func (t *Type) GenericInstance() (*GenericInstance, bool) {
	return t.inst, t.kind == TypeKindGenericInstance
}

// Underlying strips a generic instantiation down to its generic type.
// Other shapes are returned unchanged.
func (t *Type) Underlying() *Type {
	if t.kind == TypeKindGenericInstance {
		return t.inst.Generic.Underlying()
	}
	return t
}

// Fields returns the type's fields, or nil when the type is not concrete.
func (t *Type) Fields() []*FieldDefinition {
	if !t.IsConcrete() {
		return nil
	}
	return t.def.Fields
}

// Methods returns the type's methods, or nil when the type is not concrete.
func (t *Type) Methods() []*MethodDefinition {
	if !t.IsConcrete() {
		return nil
	}
	return t.def.Methods
}

func (t *Type) FullName() string {
	switch t.kind {
	case TypeKindDefinition:
		return t.def.FullName()
	case TypeKindReference:
		return t.ref.FullName()
	case TypeKindGenericInstance:
		return t.inst.FullName()
	default:
		return ""
	}
}

// Assembly is a loaded assembly and the types it defines.
type Assembly struct {
	Identity AssemblyIdentity
	Types    []*TypeDefinition

	byName     map[string]*TypeDefinition
	byNameOnce sync.Once
}

// FindType looks up a type by full name ("N.Outer+Inner").
func (a *Assembly) FindType(fullName string) (*TypeDefinition, bool) {
	a.byNameOnce.Do(func() {
		a.byName = make(map[string]*TypeDefinition, len(a.Types))
		for _, d := range a.Types {
			if _, dup := a.byName[d.FullName()]; !dup {
				a.byName[d.FullName()] = d
			}
		}
	})

	d, ok := a.byName[fullName]
	return d, ok
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
