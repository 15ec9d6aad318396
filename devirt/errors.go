package devirt

import (
	"errors"
	"fmt"

	"github.com/skdltmxn/eazresolve/operand"
)

// Sentinel errors for resolution failures. Every error returned by a
// Resolver wraps one of these (or a stream error) inside a *ResolveError.
var (
	// ErrMalformedOperand indicates a record lacks the payload its use requires.
	ErrMalformedOperand = operand.ErrMalformed

	// ErrUnsupportedOperandKind indicates a kind discriminator the operation
	// cannot handle.
	ErrUnsupportedOperandKind = operand.ErrUnsupportedKind

	// ErrUnresolvedAssembly marks diagnostics for assemblies that failed to
	// resolve. It is never returned; the failure is soft.
	ErrUnresolvedAssembly = errors.New("devirt: unresolved assembly")

	// ErrUnsupportedDeclaringType indicates a declaring type that is not a
	// definition where one was required.
	ErrUnsupportedDeclaringType = errors.New("devirt: unsupported declaring type shape")

	// ErrUnknownMemberName indicates no member of the declaring type matches.
	ErrUnknownMemberName = errors.New("devirt: unknown member name")

	// ErrUnexpectedMember indicates a token resolved to the wrong kind of entity.
	ErrUnexpectedMember = errors.New("devirt: token refers to unexpected member kind")

	// ErrUnresolvedDeclaringType indicates the declaring type was abandoned
	// because its assembly could not be resolved.
	ErrUnresolvedDeclaringType = errors.New("devirt: declaring type could not be resolved")

	// ErrCyclicReference indicates a generic argument refers back to a record
	// that is still being resolved.
	ErrCyclicReference = errors.New("devirt: cyclic operand reference")
)

// ResolveError provides detailed information about a failed resolution.
type ResolveError struct {
	Op      string // Resolving operation
	Offset  int64  // Stream offset of the record
	Message string // Description of the error
	Err     error  // Underlying error
}

func (e *ResolveError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("devirt: %s at offset 0x%X: %s: %v", e.Op, e.Offset, e.Message, e.Err)
	}
	return fmt.Sprintf("devirt: %s at offset 0x%X: %v", e.Op, e.Offset, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

func resolveErr(op string, offset int32, err error, format string, args ...any) error {
	// Errors from nested resolutions already carry their own offset.
	var re *ResolveError
	if format == "" && errors.As(err, &re) {
		return err
	}
	return &ResolveError{
		Op:      op,
		Offset:  int64(offset),
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
