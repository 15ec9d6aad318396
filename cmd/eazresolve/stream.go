package main

import (
	"fmt"
	"os"
	"strconv"
)

func openStream(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	return f, nil
}

// parseOffset accepts decimal or 0x-prefixed hex offsets.
func parseOffset(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid offset: %s", s)
	}
	return int32(v), nil
}

func parseEazCall(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid call operand: %s", s)
	}
	return uint32(v), nil
}
