package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skdltmxn/eazresolve/internal/stream"
	"github.com/skdltmxn/eazresolve/operand"
)

var descriptorCmd = &cobra.Command{
	Use:   "descriptor <stream-file> <offset>",
	Short: "Decode a method descriptor",
	Long: `Decode the method descriptor at offset.

Accepts a packed call operand as well; its two high bits are ignored.
The field order comes from the [descriptor] section of the configuration.`,
	Args: cobra.ExactArgs(2),
	RunE: runDescriptor,
}

func runDescriptor(cmd *cobra.Command, args []string) error {
	value, err := parseEazCall(args[1])
	if err != nil {
		return err
	}
	call := operand.UnpackEazCall(value)

	layout, err := cfg.Layout()
	if err != nil {
		return err
	}

	f, err := openStream(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	d, err := layout.DecodeDescriptor(stream.NewReader(f), int64(call.Offset))
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Offset: 0x%X\n", call.Offset)
	if call.ReservedBit30 || call.ReservedBit31 {
		fmt.Fprintf(output, "Reserved: bit30=%v bit31=%v\n", call.ReservedBit30, call.ReservedBit31)
	}
	fmt.Fprintln(output, d)
	return nil
}
