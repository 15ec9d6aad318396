package operand

// EazCallOffsetMask selects the descriptor offset of a packed call value.
const EazCallOffsetMask = 0x3FFFFFFF

// EazCall is an unpacked call-site operand.
//
// The two high bits are carried through unchanged. Nothing reads them.
type EazCall struct {
	Offset        int32
	ReservedBit30 bool
	ReservedBit31 bool
}

// UnpackEazCall splits a packed call value into offset and reserved bits.
func UnpackEazCall(value uint32) EazCall {
	return EazCall{
		Offset:        int32(value & EazCallOffsetMask),
		ReservedBit30: value&(1<<30) != 0,
		ReservedBit31: value&(1<<31) != 0,
	}
}

// Pack reverses UnpackEazCall.
func (c EazCall) Pack() uint32 {
	v := uint32(c.Offset) & EazCallOffsetMask
	if c.ReservedBit30 {
		v |= 1 << 30
	}
	if c.ReservedBit31 {
		v |= 1 << 31
	}
	return v
}
