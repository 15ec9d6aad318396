// Package stream provides binary reading utilities for VM operand streams.
package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"unicode/utf8"
)

// Errors returned by Reader
var (
	ErrUnexpectedEOF  = errors.New("stream: unexpected end of data")
	ErrInvalidString  = errors.New("stream: invalid string encoding")
	ErrNegativeOffset = errors.New("stream: negative offset")
	ErrStringTooLong  = errors.New("stream: string length overflows")
)

// maxStringLen bounds the 7-bit encoded length prefix of a string.
const maxStringLen = 1 << 24

// Reader reads little-endian values from a seekable source.
// The source is normally a decrypting view over a method's operand stream;
// Reader does not care how the bytes are produced.
//
// A Reader has a single cursor and is not safe for concurrent use.
type Reader struct {
	src    io.ReadSeeker
	offset int64
	buf    [8]byte
}

// NewReader creates a Reader over src, positioned at its current offset.
func NewReader(src io.ReadSeeker) *Reader {
	off, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		off = 0
	}
	return &Reader{src: src, offset: off}
}

// NewBytesReader creates a Reader over an in-memory byte slice.
func NewBytesReader(data []byte) *Reader {
	return NewReader(bytes.NewReader(data))
}

// Offset returns the current read position.
func (r *Reader) Offset() int64 {
	return r.offset
}

// SetOffset moves the read position to an absolute offset.
func (r *Reader) SetOffset(offset int64) error {
	if offset < 0 {
		return ErrNegativeOffset
	}
	pos, err := r.src.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}
	r.offset = pos
	return nil
}

func (r *Reader) fill(n int) ([]byte, error) {
	p := r.buf[:n]
	read, err := io.ReadFull(r.src, p)
	r.offset += int64(read)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrUnexpectedEOF
		}
		return nil, err
	}
	return p, nil
}

// ReadU8 reads an unsigned 8-bit integer.
func (r *Reader) ReadU8() (uint8, error) {
	p, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

// ReadBool reads one byte; any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	return v != 0, err
}

// ReadU16 reads an unsigned 16-bit integer.
func (r *Reader) ReadU16() (uint16, error) {
	p, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p), nil
}

// ReadU32 reads an unsigned 32-bit integer.
func (r *Reader) ReadU32() (uint32, error) {
	p, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

// ReadI16 reads a signed 16-bit integer.
func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadI32 reads a signed 32-bit integer.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// Read7BitInt reads a 7-bit encoded unsigned integer (at most 5 bytes).
func (r *Reader) Read7BitInt() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		// The fifth byte holds only the top four bits.
		if shift == 28 && b > 0x0f {
			return 0, ErrInvalidString
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, ErrInvalidString
		}
	}
}

// ReadBytes reads n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrUnexpectedEOF
	}
	v := make([]byte, n)
	read, err := io.ReadFull(r.src, v)
	r.offset += int64(read)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrUnexpectedEOF
		}
		return nil, err
	}
	return v, nil
}

// ReadString reads a length-prefixed UTF-8 string.
// The length is 7-bit encoded and counts bytes, not characters.
func (r *Reader) ReadString() (string, error) {
	n, err := r.Read7BitInt()
	if err != nil {
		return "", err
	}
	if n > maxStringLen {
		return "", ErrStringTooLong
	}
	if n == 0 {
		return "", nil
	}
	data, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrInvalidString
	}
	return string(data), nil
}
