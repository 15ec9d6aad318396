// Package operand decodes the inline operand records and method descriptors
// stored in a virtualized method's operand stream.
package operand

import (
	"errors"
	"fmt"
	"strings"
)

// Errors
var (
	ErrUnsupportedKind = errors.New("operand: unsupported operand kind")
	ErrMalformed       = errors.New("operand: malformed record")
)

// Kind is the one-byte discriminator following a non-token record header.
type Kind uint8

const (
	KindType   Kind = 0
	KindField  Kind = 1
	KindMethod Kind = 2
	KindString Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the recognized discriminators.
func (k Kind) Valid() bool {
	return k <= KindString
}

// TypeData describes a type by name. Generic arguments are not nested:
// each entry of GenericArgs is the stream offset of another record.
type TypeData struct {
	Name           string
	HasGenericArgs bool
	GenericArgs    []int32
}

// FieldData names a field on the type recorded at DeclaringType.
type FieldData struct {
	DeclaringType int32
	Name          string
}

// MethodData names a method on the type recorded at DeclaringType.
type MethodData struct {
	DeclaringType int32
	Name          string
}

// StringData is a string literal.
type StringData struct {
	Value string
}

// Record is one decoded operand record.
//
// Exactly one shape is populated: a token when IsToken is set, otherwise the
// payload pointer matching Kind. Callers switch on IsToken and Kind and use
// the typed accessors; the payload pointers for other kinds are nil.
type Record struct {
	// Offset is the stream offset the record was decoded from.
	Offset int64

	IsToken bool
	Token   uint32

	Kind   Kind
	Type   *TypeData
	Field  *FieldData
	Method *MethodData
	String *StringData
}

// TypeData returns the type payload, if the record carries one.
func (r *Record) TypeData() (*TypeData, bool) {
	if r.IsToken || r.Kind != KindType || r.Type == nil {
		return nil, false
	}
	return r.Type, true
}

// FieldData returns the field payload, if the record carries one.
func (r *Record) FieldData() (*FieldData, bool) {
	if r.IsToken || r.Kind != KindField || r.Field == nil {
		return nil, false
	}
	return r.Field, true
}

// MethodData returns the method payload, if the record carries one.
func (r *Record) MethodData() (*MethodData, bool) {
	if r.IsToken || r.Kind != KindMethod || r.Method == nil {
		return nil, false
	}
	return r.Method, true
}

// StringData returns the string payload, if the record carries one.
func (r *Record) StringData() (*StringData, bool) {
	if r.IsToken || r.Kind != KindString || r.String == nil {
		return nil, false
	}
	return r.String, true
}

// Describe renders the record on one line for dumps.
func (r *Record) Describe() string {
	if r.IsToken {
		return fmt.Sprintf("token 0x%08X", r.Token)
	}

	switch r.Kind {
	case KindType:
		if r.Type == nil {
			break
		}
		if !r.Type.HasGenericArgs {
			return fmt.Sprintf("type %q", r.Type.Name)
		}
		args := make([]string, len(r.Type.GenericArgs))
		for i, off := range r.Type.GenericArgs {
			args[i] = fmt.Sprintf("@0x%X", off)
		}
		return fmt.Sprintf("type %q <%s>", r.Type.Name, strings.Join(args, ", "))
	case KindField:
		if r.Field != nil {
			return fmt.Sprintf("field %q on @0x%X", r.Field.Name, r.Field.DeclaringType)
		}
	case KindMethod:
		if r.Method != nil {
			return fmt.Sprintf("method %q on @0x%X", r.Method.Name, r.Method.DeclaringType)
		}
	case KindString:
		if r.String != nil {
			return fmt.Sprintf("string %q", r.String.Value)
		}
	}
	return r.Kind.String()
}
