package dotnet

import (
	"fmt"
	"sync"
)

// Module is the metadata a resolver works against.
type Module interface {
	// Assembly returns the identity of the assembly owning the module.
	Assembly() AssemblyIdentity

	// LookupMember returns the entity a metadata token refers to.
	LookupMember(token Token) (Entity, error)

	// LookupString returns the user string a token refers to.
	LookupString(token Token) (string, error)

	// ParseTypeName parses name in the module's type-name grammar.
	ParseTypeName(name string) (*TypeReference, error)

	// AssemblyResolver returns the resolver for referenced assemblies.
	AssemblyResolver() AssemblyResolver

	// ResolveReference binds a reference to its definition, if the module
	// or an already resolved assembly provides one.
	ResolveReference(ref *TypeReference) (*TypeDefinition, bool)
}

// MemoryModule is a Module whose tables are held in memory.
// It is safe for concurrent use.
type MemoryModule struct {
	self     *Assembly
	resolver *CachingResolver

	mu      sync.RWMutex
	members map[Token]Entity
	strings map[Token]string
}

// NewMemoryModule creates an empty module for the given assembly. Referenced
// assemblies are loaded through loader.
func NewMemoryModule(id AssemblyIdentity, loader AssemblyLoader) *MemoryModule {
	m := &MemoryModule{
		self:     &Assembly{Identity: id},
		resolver: NewCachingResolver(loader),
		members:  make(map[Token]Entity),
		strings:  make(map[Token]string),
	}
	m.resolver.Seed(m.self)
	return m
}

// AddType registers a type definition together with its fields and methods.
// Nested types must be added after their declaring type.
func (m *MemoryModule) AddType(d *TypeDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d.Assembly = m.self.Identity
	m.self.Types = append(m.self.Types, d)

	if d.Token != 0 {
		m.members[d.Token] = TypeEntity(DefinitionType(d))
	}
	for _, f := range d.Fields {
		f.DeclaringType = d
		if f.Token != 0 {
			m.members[f.Token] = FieldEntity(f)
		}
	}
	for _, meth := range d.Methods {
		meth.DeclaringType = d
		if meth.Token != 0 {
			m.members[meth.Token] = MethodEntity(meth)
		}
	}
}

// AddTypeReference registers a type reference row.
func (m *MemoryModule) AddTypeReference(ref *TypeReference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[ref.Token] = TypeEntity(ReferenceType(ref))
}

// AddString registers a user string.
func (m *MemoryModule) AddString(token Token, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strings[token] = value
}

// Types returns the types defined by the module.
func (m *MemoryModule) Types() []*TypeDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*TypeDefinition(nil), m.self.Types...)
}

// MemberCount returns the number of token-addressable rows.
func (m *MemoryModule) MemberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.members)
}

// StringCount returns the number of user strings.
func (m *MemoryModule) StringCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.strings)
}

func (m *MemoryModule) Assembly() AssemblyIdentity {
	return m.self.Identity
}

func (m *MemoryModule) LookupMember(token Token) (Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.members[token]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %s (%s)", ErrTokenNotFound, token, token.Table())
	}
	return e, nil
}

func (m *MemoryModule) LookupString(token Token) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.strings[token]
	if !ok {
		return "", fmt.Errorf("%w: user string %s", ErrTokenNotFound, token)
	}
	return s, nil
}

func (m *MemoryModule) ParseTypeName(name string) (*TypeReference, error) {
	return ParseTypeName(name, m.self.Identity)
}

func (m *MemoryModule) AssemblyResolver() AssemblyResolver {
	return m.resolver
}

func (m *MemoryModule) ResolveReference(ref *TypeReference) (*TypeDefinition, bool) {
	if !ref.IsPlain() {
		return nil, false
	}

	name := ref.ElementName()
	if ref.Scope.Key() != m.self.Identity.Key() {
		asm, ok := m.resolver.Cached(ref.Scope)
		if !ok {
			return nil, false
		}
		return asm.FindType(name)
	}

	// The module's own type list still grows, so it is not indexed.
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.self.Types {
		if d.FullName() == name {
			return d, true
		}
	}
	return nil, false
}
