package dotnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestModule(t *testing.T) *MemoryModule {
	t.Helper()
	m, err := LoadModule("testdata/module.yaml")
	require.NoError(t, err)
	return m
}

func TestLoadModule(t *testing.T) {
	m := loadTestModule(t)

	assert.Equal(t, AssemblyIdentity{Name: "App", Version: "1.0.0.0"}, m.Assembly())
	assert.Len(t, m.Types(), 2)
	// 2 types, 2 fields, 3 methods, 2 type refs
	assert.Equal(t, 9, m.MemberCount())
	assert.Equal(t, 1, m.StringCount())
}

func TestLookupMember(t *testing.T) {
	m := loadTestModule(t)

	e, err := m.LookupMember(0x02000002)
	require.NoError(t, err)
	typ, ok := e.Type()
	require.True(t, ok)
	assert.True(t, typ.IsConcrete())
	assert.Equal(t, "N.Foo", typ.FullName())

	e, err = m.LookupMember(0x04000002)
	require.NoError(t, err)
	f, ok := e.Field()
	require.True(t, ok)
	assert.Equal(t, "N.Foo::Instance", f.FullName())
	assert.True(t, f.IsStatic)

	e, err = m.LookupMember(0x06000003)
	require.NoError(t, err)
	meth, ok := e.Method()
	require.True(t, ok)
	assert.Equal(t, "N.Foo+Inner::Invoke", meth.FullName())

	e, err = m.LookupMember(0x01000001)
	require.NoError(t, err)
	typ, ok = e.Type()
	require.True(t, ok)
	assert.Equal(t, TypeKindReference, typ.Kind())
	assert.Equal(t, "System.String", typ.FullName())

	_, err = m.LookupMember(0x02000099)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestLookupString(t *testing.T) {
	m := loadTestModule(t)

	s, err := m.LookupString(0x70000001)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	_, err = m.LookupString(0x70000002)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestResolveReference(t *testing.T) {
	m := loadTestModule(t)

	own, err := m.ParseTypeName("N.Foo+Inner")
	require.NoError(t, err)
	d, ok := m.ResolveReference(own)
	require.True(t, ok)
	assert.Equal(t, "N.Foo+Inner", d.FullName())

	ext, err := m.ParseTypeName("System.String, mscorlib")
	require.NoError(t, err)

	// Not bound until the assembly has been resolved.
	_, ok = m.ResolveReference(ext)
	assert.False(t, ok)

	_, err = m.AssemblyResolver().Resolve(ext.Scope)
	require.NoError(t, err)

	d, ok = m.ResolveReference(ext)
	require.True(t, ok)
	assert.Equal(t, "System.String", d.FullName())
	assert.Equal(t, "mscorlib", d.Assembly.Name)

	arr, err := m.ParseTypeName("N.Foo[]")
	require.NoError(t, err)
	_, ok = m.ResolveReference(arr)
	assert.False(t, ok)
}

func TestUnknownAssemblyFails(t *testing.T) {
	m := loadTestModule(t)

	_, err := m.AssemblyResolver().Resolve(AssemblyIdentity{Name: "Nowhere"})
	assert.ErrorIs(t, err, ErrAssemblyNotFound)
	assert.True(t, m.AssemblyResolver().HasCached(m.Assembly()))
}

func TestParseModuleRejectsUnknownKeys(t *testing.T) {
	_, err := ParseModule([]byte("assembly:\n  name: App\ntypez: []\n"))
	assert.Error(t, err)

	_, err = ParseModule([]byte("types: []\n"))
	assert.Error(t, err)
}

func TestTypeVariant(t *testing.T) {
	def := &TypeDefinition{Namespace: "N", Name: "G`1", Methods: []*MethodDefinition{{Name: "M"}}}
	arg := ReferenceType(&TypeReference{Namespace: "System", Name: "Int32"})
	inst := GenericInstanceType(DefinitionType(def), []*Type{arg})

	assert.Equal(t, TypeKindGenericInstance, inst.Kind())
	assert.False(t, inst.IsConcrete())
	assert.Nil(t, inst.Methods())
	assert.Equal(t, "N.G`1<System.Int32>", inst.FullName())

	under := inst.Underlying()
	assert.True(t, under.IsConcrete())
	assert.Len(t, under.Methods(), 1)

	_, ok := arg.Definition()
	assert.False(t, ok)
	assert.Same(t, arg, arg.Underlying())
}

func TestFirstNameMatchWins(t *testing.T) {
	m := loadTestModule(t)

	e, err := m.LookupMember(0x02000002)
	require.NoError(t, err)
	typ, _ := e.Type()
	def, _ := typ.Definition()

	meth, ok := def.MethodByName("Run")
	require.True(t, ok)
	assert.Equal(t, Token(0x06000001), meth.Token)

	_, ok = def.FieldByName("missing")
	assert.False(t, ok)
}

func TestToken(t *testing.T) {
	tok := NewToken(TableMethod, 0x12)
	assert.Equal(t, Token(0x06000012), tok)
	assert.Equal(t, TableMethod, tok.Table())
	assert.Equal(t, uint32(0x12), tok.RID())
	assert.Equal(t, "0x06000012", tok.String())
	assert.Equal(t, "Method", tok.Table().String())
}

func TestEntityAccessors(t *testing.T) {
	s := StringEntity("hello")
	v, ok := s.StringValue()
	require.True(t, ok)
	assert.Equal(t, "hello", v)
	_, ok = s.Type()
	assert.False(t, ok)

	ref := ReferenceType(&TypeReference{Namespace: "System", Name: "Object"})
	e := TypeEntity(ref)
	_, ok = e.StringValue()
	assert.False(t, ok)
	typ, ok := e.Type()
	require.True(t, ok)
	r, ok := typ.Reference()
	require.True(t, ok)
	assert.Equal(t, "Object", r.Name)
}
