package stream

import (
	"encoding/binary"
)

// Writer appends little-endian values in the layout Reader expects.
type Writer struct {
	data []byte
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int {
	return len(w.data)
}

// Bytes returns the written data.
func (w *Writer) Bytes() []byte {
	return w.data
}

func (w *Writer) WriteU8(v uint8) {
	w.data = append(w.data, v)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.data = append(w.data, 1)
		return
	}
	w.data = append(w.data, 0)
}

func (w *Writer) WriteU16(v uint16) {
	w.data = binary.LittleEndian.AppendUint16(w.data, v)
}

func (w *Writer) WriteI16(v int16) {
	w.WriteU16(uint16(v))
}

func (w *Writer) WriteU32(v uint32) {
	w.data = binary.LittleEndian.AppendUint32(w.data, v)
}

func (w *Writer) WriteI32(v int32) {
	w.WriteU32(uint32(v))
}

// Write7BitInt writes v using the 7-bit variable-length encoding.
func (w *Writer) Write7BitInt(v uint32) {
	for v >= 0x80 {
		w.data = append(w.data, byte(v)|0x80)
		v >>= 7
	}
	w.data = append(w.data, byte(v))
}

// WriteString writes a 7-bit length prefix followed by the UTF-8 bytes of s.
func (w *Writer) WriteString(s string) {
	w.Write7BitInt(uint32(len(s)))
	w.data = append(w.data, s...)
}
