// Package devirt resolves the operands of virtualized methods back to the
// types, fields, methods and strings of a module.
//
// Operands are records in a method's operand stream, addressed by offset.
// A record is either a metadata token, looked up directly, or a by-name
// description that is parsed and resolved against the module, loading
// referenced assemblies on demand. Generic arguments of a type record are
// offsets of further records, so resolution recurses through the stream.
package devirt

import (
	"fmt"
	"io"
	"slices"

	"go.uber.org/zap"

	"github.com/skdltmxn/eazresolve/dotnet"
	"github.com/skdltmxn/eazresolve/internal/stream"
	"github.com/skdltmxn/eazresolve/operand"
)

// Context is everything a Resolver resolves against.
type Context struct {
	Module      dotnet.Module
	Diagnostics Diagnostics

	// Descriptors decodes method descriptors for EazCall operands.
	// operand.DefaultLayout is used when nil.
	Descriptors operand.DescriptorDecoder
}

// Resolver resolves operand records from one method's operand stream.
//
// Every call seeks the stream before reading, so a Resolver must not be used
// from several goroutines at once. Resolvers over different streams may run
// concurrently when they share a module whose assembly resolver is safe for
// concurrent use.
type Resolver struct {
	ctx    Context
	reader *stream.Reader
	log    *zap.Logger
}

// NewResolver creates a Resolver reading records from src, which yields the
// decrypted operand stream.
func NewResolver(ctx Context, src io.ReadSeeker) *Resolver {
	if ctx.Diagnostics == nil {
		ctx.Diagnostics = NewZapDiagnostics(Logger())
	}
	if ctx.Descriptors == nil {
		ctx.Descriptors = operand.DefaultLayout
	}
	return &Resolver{
		ctx:    ctx,
		reader: stream.NewReader(src),
		log:    Logger(),
	}
}

// Decode reads the record at offset without resolving it.
func (r *Resolver) Decode(offset int32) (*operand.Record, error) {
	return operand.Decode(r.reader, int64(offset))
}

// DecodeDescriptor reads the method descriptor at offset.
func (r *Resolver) DecodeDescriptor(offset int32) (*operand.MethodDescriptor, error) {
	return r.ctx.Descriptors.DecodeDescriptor(r.reader, int64(offset))
}

func (r *Resolver) decode(op string, offset int32) (*operand.Record, error) {
	rec, err := r.Decode(offset)
	if err != nil {
		return nil, resolveErr(op, offset, err, "")
	}
	r.log.Debug("decoded operand",
		zap.String("op", op),
		zap.Int32("offset", offset),
		zap.Bool("token", rec.IsToken),
		zap.Stringer("kind", rec.Kind))
	return rec, nil
}

// ResolveType resolves the type record at offset.
//
// When the type's assembly cannot be resolved the failure is reported to the
// Diagnostics sink and ResolveType returns (nil, nil). The same happens when
// any generic argument fails that way.
func (r *Resolver) ResolveType(offset int32) (*dotnet.Type, error) {
	return r.resolveType(offset, nil)
}

// path holds the offsets of the type records enclosing this one.
func (r *Resolver) resolveType(offset int32, path []int32) (*dotnet.Type, error) {
	const op = "ResolveType"

	if slices.Contains(path, offset) {
		return nil, resolveErr(op, offset, ErrCyclicReference, "generic argument chain %v", append(path, offset))
	}

	rec, err := r.decode(op, offset)
	if err != nil {
		return nil, err
	}

	if rec.IsToken {
		e, err := r.lookupMember(op, offset, rec.Token)
		if err != nil {
			return nil, err
		}
		typ, ok := e.Type()
		if !ok {
			return nil, resolveErr(op, offset, ErrUnexpectedMember, "token 0x%08X is a %s", rec.Token, e.Kind())
		}
		return typ, nil
	}

	data, ok := rec.TypeData()
	if !ok {
		return nil, resolveErr(op, offset, ErrMalformedOperand, "expected type data, found %s", rec.Kind)
	}

	ref, err := r.ctx.Module.ParseTypeName(data.Name)
	if err != nil {
		return nil, resolveErr(op, offset, fmt.Errorf("%w: %w", ErrMalformedOperand, err), "type name %q", data.Name)
	}

	if !r.ensureAssembly(ref.Scope) {
		return nil, nil
	}

	typ := dotnet.ReferenceType(ref)
	if def, ok := r.ctx.Module.ResolveReference(ref); ok {
		typ = dotnet.DefinitionType(def)
	}

	if !data.HasGenericArgs {
		return typ, nil
	}

	path = append(path, offset)
	args := make([]*dotnet.Type, len(data.GenericArgs))
	for i, argOffset := range data.GenericArgs {
		arg, err := r.resolveType(argOffset, path)
		if err != nil {
			return nil, err
		}
		if arg == nil {
			return nil, nil
		}
		args[i] = arg
	}

	return dotnet.GenericInstanceType(typ, args), nil
}

// ensureAssembly resolves the assembly a reference is scoped to unless it is
// already cached. Failures go to the diagnostics sink.
func (r *Resolver) ensureAssembly(id dotnet.AssemblyIdentity) bool {
	resolver := r.ctx.Module.AssemblyResolver()
	if resolver.HasCached(id) {
		return true
	}

	if _, err := resolver.Resolve(id); err != nil {
		r.log.Debug("assembly resolution failed", zap.String("assembly", id.FullName()), zap.Error(err))
		r.ctx.Diagnostics.Error("Failed resolving assembly " + id.FullName())
		return false
	}

	r.log.Debug("resolved assembly", zap.String("assembly", id.FullName()))
	return true
}

// ResolveField resolves the field record at offset.
func (r *Resolver) ResolveField(offset int32) (*dotnet.FieldDefinition, error) {
	const op = "ResolveField"

	rec, err := r.decode(op, offset)
	if err != nil {
		return nil, err
	}

	if rec.IsToken {
		e, err := r.lookupMember(op, offset, rec.Token)
		if err != nil {
			return nil, err
		}
		f, ok := e.Field()
		if !ok {
			return nil, resolveErr(op, offset, ErrUnexpectedMember, "token 0x%08X is a %s", rec.Token, e.Kind())
		}
		return f, nil
	}

	data, ok := rec.FieldData()
	if !ok {
		return nil, resolveErr(op, offset, ErrMalformedOperand, "expected field data, found %s", rec.Kind)
	}

	def, err := r.declaringDefinition(op, offset, data.DeclaringType, false)
	if err != nil {
		return nil, err
	}

	f, ok := def.FieldByName(data.Name)
	if !ok {
		return nil, resolveErr(op, offset, ErrUnknownMemberName, "no field %q on %s", data.Name, def.FullName())
	}
	return f, nil
}

// ResolveMethod resolves the method record at offset. The first method with
// a matching name wins.
func (r *Resolver) ResolveMethod(offset int32) (*dotnet.MethodDefinition, error) {
	const op = "ResolveMethod"

	rec, err := r.decode(op, offset)
	if err != nil {
		return nil, err
	}

	if rec.IsToken {
		e, err := r.lookupMember(op, offset, rec.Token)
		if err != nil {
			return nil, err
		}
		m, ok := e.Method()
		if !ok {
			return nil, resolveErr(op, offset, ErrUnexpectedMember, "token 0x%08X is a %s", rec.Token, e.Kind())
		}
		return m, nil
	}

	data, ok := rec.MethodData()
	if !ok {
		return nil, resolveErr(op, offset, ErrMalformedOperand, "expected method data, found %s", rec.Kind)
	}

	def, err := r.declaringDefinition(op, offset, data.DeclaringType, true)
	if err != nil {
		return nil, err
	}

	m, ok := def.MethodByName(data.Name)
	if !ok {
		return nil, resolveErr(op, offset, ErrUnknownMemberName, "no method %q on %s", data.Name, def.FullName())
	}
	return m, nil
}

// declaringDefinition resolves the type record at typeOffset and requires a
// definition. With stripGeneric, a generic instantiation is reduced to its
// generic type first.
func (r *Resolver) declaringDefinition(op string, offset, typeOffset int32, stripGeneric bool) (*dotnet.TypeDefinition, error) {
	typ, err := r.ResolveType(typeOffset)
	if err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, resolveErr(op, offset, ErrUnresolvedDeclaringType, "declaring type at 0x%X", typeOffset)
	}

	if stripGeneric {
		typ = typ.Underlying()
	}

	def, ok := typ.Definition()
	if !ok {
		return nil, resolveErr(op, offset, ErrUnsupportedDeclaringType, "declaring type %s is a %s", typ.FullName(), typ.Kind())
	}
	return def, nil
}

// ResolveToken resolves the record at offset to whatever it describes.
// String records are not accepted.
//
// A type whose assembly fails to resolve yields the zero Entity and no error.
func (r *Resolver) ResolveToken(offset int32) (dotnet.Entity, error) {
	const op = "ResolveToken"

	rec, err := r.decode(op, offset)
	if err != nil {
		return dotnet.Entity{}, err
	}

	if rec.IsToken {
		return r.lookupMember(op, offset, rec.Token)
	}

	switch rec.Kind {
	case operand.KindType:
		typ, err := r.ResolveType(offset)
		if err != nil || typ == nil {
			return dotnet.Entity{}, err
		}
		return dotnet.TypeEntity(typ), nil
	case operand.KindField:
		f, err := r.ResolveField(offset)
		if err != nil {
			return dotnet.Entity{}, err
		}
		return dotnet.FieldEntity(f), nil
	case operand.KindMethod:
		m, err := r.ResolveMethod(offset)
		if err != nil {
			return dotnet.Entity{}, err
		}
		return dotnet.MethodEntity(m), nil
	default:
		return dotnet.Entity{}, resolveErr(op, offset, ErrUnsupportedOperandKind,
			"operand kind %s (%d) is neither type, field nor method", rec.Kind, uint8(rec.Kind))
	}
}

// ResolveEazCall resolves a packed call operand. The low 30 bits give the
// offset of a method descriptor; the two high bits are not interpreted.
func (r *Resolver) ResolveEazCall(value uint32) (*dotnet.MethodDefinition, error) {
	const op = "ResolveEazCall"

	call := operand.UnpackEazCall(value)
	r.log.Debug("eaz call",
		zap.Int32("offset", call.Offset),
		zap.Bool("reserved30", call.ReservedBit30),
		zap.Bool("reserved31", call.ReservedBit31))

	desc, err := r.DecodeDescriptor(call.Offset)
	if err != nil {
		return nil, resolveErr(op, call.Offset, err, "")
	}

	def, err := r.declaringDefinition(op, call.Offset, desc.DeclaringType, false)
	if err != nil {
		return nil, err
	}

	m, ok := def.MethodByName(desc.Name)
	if !ok {
		return nil, resolveErr(op, call.Offset, ErrUnknownMemberName, "no method %q on %s", desc.Name, def.FullName())
	}
	return m, nil
}

// ResolveString resolves the string record at offset.
func (r *Resolver) ResolveString(offset int32) (string, error) {
	const op = "ResolveString"

	rec, err := r.decode(op, offset)
	if err != nil {
		return "", err
	}

	if rec.IsToken {
		s, err := r.ctx.Module.LookupString(dotnet.Token(rec.Token))
		if err != nil {
			return "", resolveErr(op, offset, err, "")
		}
		return s, nil
	}

	data, ok := rec.StringData()
	if !ok {
		return "", resolveErr(op, offset, ErrMalformedOperand, "expected string data, found %s", rec.Kind)
	}
	return data.Value, nil
}

func (r *Resolver) lookupMember(op string, offset int32, token uint32) (dotnet.Entity, error) {
	e, err := r.ctx.Module.LookupMember(dotnet.Token(token))
	if err != nil {
		return dotnet.Entity{}, resolveErr(op, offset, err, "")
	}
	return e, nil
}
