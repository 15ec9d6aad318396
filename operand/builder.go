package operand

import (
	"github.com/skdltmxn/eazresolve/internal/stream"
)

// Builder lays out operand records and descriptors in stream order.
// Each method returns the offset at which its record starts, which is the
// value other records use to refer to it.
type Builder struct {
	w stream.Writer
}

// Offset returns the offset the next record will be written at.
func (b *Builder) Offset() int32 {
	return int32(b.w.Offset())
}

// Bytes returns the stream built so far.
func (b *Builder) Bytes() []byte {
	return b.w.Bytes()
}

// Raw appends bytes verbatim.
func (b *Builder) Raw(p ...byte) int32 {
	off := b.Offset()
	for _, v := range p {
		b.w.WriteU8(v)
	}
	return off
}

// Token appends a token record.
func (b *Builder) Token(token uint32) int32 {
	off := b.Offset()
	b.w.WriteBool(true)
	b.w.WriteU32(token)
	return off
}

// Type appends a type record. Passing generic argument offsets marks the
// record as generic.
func (b *Builder) Type(name string, genericArgs ...int32) int32 {
	return b.TypeData(TypeData{
		Name:           name,
		HasGenericArgs: len(genericArgs) > 0,
		GenericArgs:    genericArgs,
	})
}

// TypeData appends a type record with an explicit payload.
func (b *Builder) TypeData(d TypeData) int32 {
	off := b.header(KindType)
	b.w.WriteString(d.Name)
	b.w.WriteBool(d.HasGenericArgs)
	b.w.WriteI16(int16(len(d.GenericArgs)))
	for _, arg := range d.GenericArgs {
		b.w.WriteI32(arg)
	}
	return off
}

// Field appends a field record.
func (b *Builder) Field(declaringType int32, name string) int32 {
	off := b.header(KindField)
	b.w.WriteI32(declaringType)
	b.w.WriteString(name)
	return off
}

// Method appends a method record.
func (b *Builder) Method(declaringType int32, name string) int32 {
	off := b.header(KindMethod)
	b.w.WriteI32(declaringType)
	b.w.WriteString(name)
	return off
}

// String appends a string literal record.
func (b *Builder) String(value string) int32 {
	off := b.header(KindString)
	b.w.WriteString(value)
	return off
}

// Descriptor appends a method descriptor in the given layout.
func (b *Builder) Descriptor(l Layout, d *MethodDescriptor) int32 {
	off := b.Offset()
	for _, f := range l.order {
		switch f {
		case FieldDeclaringType:
			b.w.WriteI32(d.DeclaringType)
		case FieldName:
			b.w.WriteString(d.Name)
		case FieldBindingFlags:
			b.w.WriteU8(d.BindingFlags)
		case FieldReturnType:
			b.w.WriteI32(d.ReturnType)
		case FieldLocals:
			b.w.WriteI16(int16(len(d.Locals)))
			for _, loc := range d.Locals {
				b.w.WriteI32(loc.Type)
			}
		case FieldParameters:
			b.w.WriteI16(int16(len(d.Parameters)))
			for _, p := range d.Parameters {
				b.w.WriteI32(p.Type)
				b.w.WriteBool(p.In)
			}
		}
	}
	return off
}

func (b *Builder) header(kind Kind) int32 {
	off := b.Offset()
	b.w.WriteBool(false)
	b.w.WriteU8(uint8(kind))
	return off
}
