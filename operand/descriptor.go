package operand

import (
	"fmt"
	"strings"

	"github.com/skdltmxn/eazresolve/internal/stream"
)

// Binding flag bits of a method descriptor.
const (
	BindingDeclaredOnly uint8 = 2
	BindingInstance     uint8 = 4
	BindingStatic       uint8 = 8
)

// Local is a local variable slot; Type is a type reference.
type Local struct {
	Type int32
}

// Parameter is a method parameter; Type is a type reference.
type Parameter struct {
	Type int32
	In   bool
}

// MethodDescriptor describes a virtualized method.
type MethodDescriptor struct {
	// DeclaringType is the stream offset of the declaring type's record.
	DeclaringType int32
	Name          string
	BindingFlags  uint8
	ReturnType    int32
	Locals        []Local
	Parameters    []Parameter
}

func (d *MethodDescriptor) DeclaredOnly() bool { return d.BindingFlags&BindingDeclaredOnly != 0 }
func (d *MethodDescriptor) IsInstance() bool   { return d.BindingFlags&BindingInstance != 0 }
func (d *MethodDescriptor) IsStatic() bool     { return d.BindingFlags&BindingStatic != 0 }

func (d *MethodDescriptor) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DeclaringType: 0x%X | Name: %s | BindingFlags: %d | ", d.DeclaringType, d.Name, d.BindingFlags)
	fmt.Fprintf(&b, "DeclaredOnly: %t | IsInstance: %t | IsStatic: %t | ", d.DeclaredOnly(), d.IsInstance(), d.IsStatic())
	fmt.Fprintf(&b, "ReturnType: 0x%X | Locals: [", d.ReturnType)
	for i, l := range d.Locals {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "0x%X", l.Type)
	}
	b.WriteString("] | Parameters: [")
	for i, p := range d.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "0x%X in=%t", p.Type, p.In)
	}
	b.WriteByte(']')
	return b.String()
}

// DescriptorDecoder decodes a method descriptor at a stream offset.
type DescriptorDecoder interface {
	DecodeDescriptor(r *stream.Reader, offset int64) (*MethodDescriptor, error)
}

// DescriptorField identifies one field of the method descriptor layout.
type DescriptorField uint8

const (
	FieldDeclaringType DescriptorField = iota
	FieldName
	FieldBindingFlags
	FieldReturnType
	FieldLocals
	FieldParameters

	numDescriptorFields
)

var descriptorFieldNames = [...]string{
	FieldDeclaringType: "declaring_type",
	FieldName:          "name",
	FieldBindingFlags:  "binding_flags",
	FieldReturnType:    "return_type",
	FieldLocals:        "locals",
	FieldParameters:    "parameters",
}

func (f DescriptorField) String() string {
	if f < numDescriptorFields {
		return descriptorFieldNames[f]
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// ParseDescriptorField maps a configuration name to its field.
func ParseDescriptorField(name string) (DescriptorField, error) {
	for i, n := range descriptorFieldNames {
		if n == name {
			return DescriptorField(i), nil
		}
	}
	return 0, fmt.Errorf("operand: unknown descriptor field %q", name)
}

// Layout is the order in which descriptor fields appear in the stream.
// The order differs between obfuscator builds, so it is configuration
// rather than code.
type Layout struct {
	order [numDescriptorFields]DescriptorField
}

// DefaultLayout is the field order observed in the common builds.
var DefaultLayout = Layout{order: [numDescriptorFields]DescriptorField{
	FieldDeclaringType,
	FieldName,
	FieldBindingFlags,
	FieldReturnType,
	FieldLocals,
	FieldParameters,
}}

// NewLayout builds a layout; fields must be a permutation of all six fields.
func NewLayout(fields ...DescriptorField) (Layout, error) {
	var l Layout
	if len(fields) != int(numDescriptorFields) {
		return l, fmt.Errorf("operand: layout needs %d fields, got %d", numDescriptorFields, len(fields))
	}

	var seen [numDescriptorFields]bool
	for i, f := range fields {
		if f >= numDescriptorFields {
			return l, fmt.Errorf("operand: unknown descriptor field %d", uint8(f))
		}
		if seen[f] {
			return l, fmt.Errorf("operand: descriptor field %s listed twice", f)
		}
		seen[f] = true
		l.order[i] = f
	}
	return l, nil
}

// ParseLayout builds a layout from configuration names.
func ParseLayout(names []string) (Layout, error) {
	fields := make([]DescriptorField, len(names))
	for i, name := range names {
		f, err := ParseDescriptorField(name)
		if err != nil {
			return Layout{}, err
		}
		fields[i] = f
	}
	return NewLayout(fields...)
}

// Fields returns the field order.
func (l Layout) Fields() []DescriptorField {
	out := make([]DescriptorField, len(l.order))
	copy(out, l.order[:])
	return out
}

// Names returns the field order as configuration names.
func (l Layout) Names() []string {
	out := make([]string, len(l.order))
	for i, f := range l.order {
		out[i] = f.String()
	}
	return out
}

// DecodeDescriptor implements DescriptorDecoder.
func (l Layout) DecodeDescriptor(r *stream.Reader, offset int64) (*MethodDescriptor, error) {
	if err := r.SetOffset(offset); err != nil {
		return nil, fmt.Errorf("operand: seek to 0x%X: %w", offset, err)
	}

	d := &MethodDescriptor{}
	for _, f := range l.order {
		if err := readDescriptorField(r, d, f); err != nil {
			return nil, fmt.Errorf("operand: descriptor %s at offset 0x%X: %w", f, offset, err)
		}
	}
	return d, nil
}

func readDescriptorField(r *stream.Reader, d *MethodDescriptor, f DescriptorField) error {
	var err error

	switch f {
	case FieldDeclaringType:
		d.DeclaringType, err = r.ReadI32()
	case FieldName:
		d.Name, err = r.ReadString()
	case FieldBindingFlags:
		d.BindingFlags, err = r.ReadU8()
	case FieldReturnType:
		d.ReturnType, err = r.ReadI32()
	case FieldLocals:
		count, cerr := readCount(r)
		if cerr != nil {
			return cerr
		}
		d.Locals = make([]Local, count)
		for i := range d.Locals {
			if d.Locals[i].Type, err = r.ReadI32(); err != nil {
				return err
			}
		}
	case FieldParameters:
		count, cerr := readCount(r)
		if cerr != nil {
			return cerr
		}
		d.Parameters = make([]Parameter, count)
		for i := range d.Parameters {
			if d.Parameters[i].Type, err = r.ReadI32(); err != nil {
				return err
			}
			if d.Parameters[i].In, err = r.ReadBool(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unknown descriptor field %d", ErrMalformed, uint8(f))
	}

	return err
}

func readCount(r *stream.Reader) (int, error) {
	n, err := r.ReadI16()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrMalformed, n)
	}
	return int(n), nil
}
