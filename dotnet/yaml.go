package dotnet

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModuleDoc is the YAML description of a module and of the assemblies it can
// resolve.
type ModuleDoc struct {
	Assembly   AssemblyDoc    `yaml:"assembly"`
	Types      []TypeDoc      `yaml:"types"`
	TypeRefs   []TypeRefDoc   `yaml:"type_refs"`
	Strings    []StringDoc    `yaml:"strings"`
	References []ReferenceDoc `yaml:"references"`
}

type AssemblyDoc struct {
	Name           string `yaml:"name"`
	Version        string `yaml:"version"`
	Culture        string `yaml:"culture"`
	PublicKeyToken string `yaml:"public_key_token"`
}

type TypeDoc struct {
	Token     uint32      `yaml:"token"`
	Namespace string      `yaml:"namespace"`
	Name      string      `yaml:"name"`
	Fields    []MemberDoc `yaml:"fields"`
	Methods   []MemberDoc `yaml:"methods"`
	Nested    []TypeDoc   `yaml:"nested"`
}

type MemberDoc struct {
	Token  uint32 `yaml:"token"`
	Name   string `yaml:"name"`
	Static bool   `yaml:"static"`
}

// TypeRefDoc is a type reference row; Name uses type-name syntax and may be
// assembly qualified.
type TypeRefDoc struct {
	Token uint32 `yaml:"token"`
	Name  string `yaml:"name"`
}

type StringDoc struct {
	Token uint32 `yaml:"token"`
	Value string `yaml:"value"`
}

// ReferenceDoc is an external assembly. Assemblies not listed fail to
// resolve.
type ReferenceDoc struct {
	AssemblyDoc `yaml:",inline"`
	Types       []TypeDoc `yaml:"types"`
}

func (d AssemblyDoc) identity() AssemblyIdentity {
	return AssemblyIdentity{
		Name:           d.Name,
		Version:        d.Version,
		Culture:        d.Culture,
		PublicKeyToken: d.PublicKeyToken,
	}
}

// LoadModule reads a YAML module description from path.
func LoadModule(path string) (*MemoryModule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dotnet: failed to read module file: %w", err)
	}

	m, err := ParseModule(data)
	if err != nil {
		return nil, fmt.Errorf("dotnet: %s: %w", path, err)
	}
	return m, nil
}

// ParseModule builds a module from a YAML description. Unknown keys are
// rejected.
func ParseModule(data []byte) (*MemoryModule, error) {
	var doc ModuleDoc
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return BuildModule(&doc)
}

// BuildModule builds a module from a parsed description.
func BuildModule(doc *ModuleDoc) (*MemoryModule, error) {
	if doc.Assembly.Name == "" {
		return nil, fmt.Errorf("module description has no assembly name")
	}

	refs := make(map[string]*ReferenceDoc, len(doc.References))
	for i := range doc.References {
		r := &doc.References[i]
		if r.Name == "" {
			return nil, fmt.Errorf("reference %d has no assembly name", i)
		}
		refs[strings.ToLower(r.Name)] = r
	}

	loader := AssemblyLoaderFunc(func(id AssemblyIdentity) (*Assembly, error) {
		r, ok := refs[strings.ToLower(id.Name)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrAssemblyNotFound, id)
		}
		asm := &Assembly{Identity: r.identity()}
		for i := range r.Types {
			addTypeDoc(&r.Types[i], nil, func(d *TypeDefinition) {
				d.Assembly = asm.Identity
				asm.Types = append(asm.Types, d)
			})
		}
		return asm, nil
	})

	m := NewMemoryModule(doc.Assembly.identity(), loader)

	for i := range doc.Types {
		addTypeDoc(&doc.Types[i], nil, m.AddType)
	}

	for _, tr := range doc.TypeRefs {
		ref, err := m.ParseTypeName(tr.Name)
		if err != nil {
			return nil, fmt.Errorf("type_ref 0x%08X: %w", tr.Token, err)
		}
		ref.Token = Token(tr.Token)
		m.AddTypeReference(ref)
	}

	for _, s := range doc.Strings {
		m.AddString(Token(s.Token), s.Value)
	}

	return m, nil
}

func addTypeDoc(td *TypeDoc, declaring *TypeDefinition, add func(*TypeDefinition)) {
	d := &TypeDefinition{
		Token:         Token(td.Token),
		Namespace:     td.Namespace,
		Name:          td.Name,
		DeclaringType: declaring,
	}
	for _, f := range td.Fields {
		d.Fields = append(d.Fields, &FieldDefinition{Token: Token(f.Token), Name: f.Name, IsStatic: f.Static, DeclaringType: d})
	}
	for _, meth := range td.Methods {
		d.Methods = append(d.Methods, &MethodDefinition{Token: Token(meth.Token), Name: meth.Name, IsStatic: meth.Static, DeclaringType: d})
	}
	add(d)

	for i := range td.Nested {
		addTypeDoc(&td.Nested[i], d, add)
	}
}
