package dotnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var appAssembly = AssemblyIdentity{Name: "App"}

func TestParseTypeNameSimple(t *testing.T) {
	ref, err := ParseTypeName("N.Foo", appAssembly)
	require.NoError(t, err)

	assert.Equal(t, "N", ref.Namespace)
	assert.Equal(t, "Foo", ref.Name)
	assert.Equal(t, "N.Foo", ref.FullName())
	assert.Equal(t, appAssembly, ref.Scope)
	assert.True(t, ref.IsPlain())
}

func TestParseTypeNameGlobalNamespace(t *testing.T) {
	ref, err := ParseTypeName("Foo", appAssembly)
	require.NoError(t, err)
	assert.Empty(t, ref.Namespace)
	assert.Equal(t, "Foo", ref.FullName())
}

func TestParseTypeNameNested(t *testing.T) {
	ref, err := ParseTypeName("System.Environment+SpecialFolder, mscorlib", appAssembly)
	require.NoError(t, err)

	assert.Equal(t, "SpecialFolder", ref.Name)
	require.NotNil(t, ref.DeclaringType)
	assert.Equal(t, "Environment", ref.DeclaringType.Name)
	assert.Equal(t, "System", ref.DeclaringType.Namespace)
	assert.Equal(t, "System.Environment+SpecialFolder", ref.FullName())
	assert.Equal(t, "mscorlib", ref.Scope.Name)
	assert.Equal(t, "mscorlib", ref.DeclaringType.Scope.Name)
}

func TestParseTypeNameAssemblyQualified(t *testing.T) {
	ref, err := ParseTypeName("System.String, mscorlib, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089", appAssembly)
	require.NoError(t, err)

	assert.Equal(t, AssemblyIdentity{
		Name:           "mscorlib",
		Version:        "4.0.0.0",
		Culture:        "neutral",
		PublicKeyToken: "b77a5c561934e089",
	}, ref.Scope)
	assert.Equal(t, "mscorlib, Version=4.0.0.0, Culture=neutral, PublicKeyToken=b77a5c561934e089", ref.Scope.FullName())
}

func TestParseTypeNameGenericArgs(t *testing.T) {
	ref, err := ParseTypeName(
		"System.Collections.Generic.Dictionary`2[[System.String, mscorlib],[N.Foo]], System.Collections",
		appAssembly)
	require.NoError(t, err)

	assert.Equal(t, "Dictionary`2", ref.Name)
	assert.Equal(t, "System.Collections", ref.Scope.Name)
	require.Len(t, ref.GenericArgs, 2)
	assert.Equal(t, "System.String", ref.GenericArgs[0].FullName())
	assert.Equal(t, "mscorlib", ref.GenericArgs[0].Scope.Name)
	assert.Equal(t, "N.Foo", ref.GenericArgs[1].FullName())
	assert.Equal(t, appAssembly, ref.GenericArgs[1].Scope)
	assert.False(t, ref.IsPlain())
	assert.Equal(t, "System.Collections.Generic.Dictionary`2[System.String,N.Foo]", ref.FullName())
}

func TestParseTypeNameUnbracketedGenericArgs(t *testing.T) {
	ref, err := ParseTypeName("List`1[System.Int32][]", appAssembly)
	require.NoError(t, err)

	require.Len(t, ref.GenericArgs, 1)
	assert.Equal(t, "System.Int32", ref.GenericArgs[0].FullName())
	require.Len(t, ref.Modifiers, 1)
	assert.Equal(t, ModifierArray, ref.Modifiers[0].Kind)
}

func TestParseTypeNameModifiers(t *testing.T) {
	tests := []struct {
		input string
		want  string
		mods  []TypeModifier
	}{
		{"N.Foo[]", "N.Foo[]", []TypeModifier{{Kind: ModifierArray, Rank: 1}}},
		{"N.Foo[,,]", "N.Foo[,,]", []TypeModifier{{Kind: ModifierArray, Rank: 3}}},
		{"N.Foo[*]", "N.Foo[]", []TypeModifier{{Kind: ModifierArray, Rank: 1}}},
		{"N.Foo*", "N.Foo*", []TypeModifier{{Kind: ModifierPointer}}},
		{"N.Foo&", "N.Foo&", []TypeModifier{{Kind: ModifierByRef}}},
		{"N.Foo[]*&", "N.Foo[]*&", []TypeModifier{
			{Kind: ModifierArray, Rank: 1}, {Kind: ModifierPointer}, {Kind: ModifierByRef},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ref, err := ParseTypeName(tt.input, appAssembly)
			require.NoError(t, err)
			assert.Equal(t, tt.mods, ref.Modifiers)
			assert.Equal(t, tt.want, ref.FullName())
			assert.False(t, ref.IsPlain())
		})
	}
}

func TestParseTypeNameEscapes(t *testing.T) {
	ref, err := ParseTypeName(`N.Odd\+Name`, appAssembly)
	require.NoError(t, err)
	assert.Equal(t, "Odd+Name", ref.Name)
	assert.Nil(t, ref.DeclaringType)
}

func TestParseTypeNameErrors(t *testing.T) {
	inputs := []string{
		"",
		"N.",
		"N.Foo[[A]",
		"N.Foo[",
		"N.Foo, ",
		"N.Foo+",
		`N.Foo\`,
		"N.Foo[]]",
		"N.Foo, Asm, Version",
		".A",
		"N..A",
		"N..",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTypeName(input, appAssembly)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTypeName)
		})
	}
}
