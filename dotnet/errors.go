// Package dotnet models the metadata a virtualized method refers to:
// type definitions and references, generic instantiations, fields, methods,
// string literals, and the assemblies they live in.
package dotnet

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrTokenNotFound indicates a token has no row in the module's tables.
	ErrTokenNotFound = errors.New("dotnet: token not found")

	// ErrAssemblyNotFound indicates an assembly could not be located.
	ErrAssemblyNotFound = errors.New("dotnet: assembly not found")

	// ErrInvalidTypeName indicates a type name does not follow the grammar.
	ErrInvalidTypeName = errors.New("dotnet: invalid type name")
)

// TypeNameError describes where a type name failed to parse.
type TypeNameError struct {
	Name    string // Input being parsed
	Pos     int    // Byte position of the failure
	Message string
}

func (e *TypeNameError) Error() string {
	return fmt.Sprintf("dotnet: invalid type name %q at %d: %s", e.Name, e.Pos, e.Message)
}

func (e *TypeNameError) Unwrap() error { return ErrInvalidTypeName }
