package operand

import (
	"fmt"

	"github.com/skdltmxn/eazresolve/internal/stream"
)

// Decode reads the operand record at offset.
//
// The reader is seeked first, so the result depends only on the bytes at
// offset, never on the reader's previous position.
func Decode(r *stream.Reader, offset int64) (*Record, error) {
	if err := r.SetOffset(offset); err != nil {
		return nil, fmt.Errorf("operand: seek to 0x%X: %w", offset, err)
	}

	rec := &Record{Offset: offset}

	isToken, err := r.ReadBool()
	if err != nil {
		return nil, err
	}

	if isToken {
		rec.IsToken = true
		rec.Token, err = r.ReadU32()
		if err != nil {
			return nil, err
		}
		return rec, nil
	}

	kind, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	rec.Kind = Kind(kind)
	if !rec.Kind.Valid() {
		return nil, fmt.Errorf("%w: %d at offset 0x%X", ErrUnsupportedKind, kind, offset)
	}

	switch rec.Kind {
	case KindType:
		rec.Type, err = decodeTypeData(r)
	case KindField:
		var data FieldData
		data.DeclaringType, data.Name, err = decodeMemberData(r)
		rec.Field = &data
	case KindMethod:
		var data MethodData
		data.DeclaringType, data.Name, err = decodeMemberData(r)
		rec.Method = &data
	case KindString:
		var data StringData
		data.Value, err = r.ReadString()
		rec.String = &data
	}

	if err != nil {
		return nil, fmt.Errorf("operand: %s record at offset 0x%X: %w", rec.Kind, offset, err)
	}
	return rec, nil
}

func decodeTypeData(r *stream.Reader) (*TypeData, error) {
	var data TypeData
	var err error

	data.Name, err = r.ReadString()
	if err != nil {
		return nil, err
	}

	data.HasGenericArgs, err = r.ReadBool()
	if err != nil {
		return nil, err
	}

	count, err := r.ReadI16()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative generic argument count %d", ErrMalformed, count)
	}

	data.GenericArgs = make([]int32, count)
	for i := range data.GenericArgs {
		data.GenericArgs[i], err = r.ReadI32()
		if err != nil {
			return nil, err
		}
	}

	return &data, nil
}

// Field and method payloads share one layout.
func decodeMemberData(r *stream.Reader) (int32, string, error) {
	declaringType, err := r.ReadI32()
	if err != nil {
		return 0, "", err
	}
	name, err := r.ReadString()
	if err != nil {
		return 0, "", err
	}
	return declaringType, name, nil
}
