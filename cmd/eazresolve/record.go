package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skdltmxn/eazresolve/internal/stream"
	"github.com/skdltmxn/eazresolve/operand"
)

var recordCmd = &cobra.Command{
	Use:   "record <stream-file> <offset>",
	Short: "Decode one operand record",
	Long: `Decode the operand record at offset without resolving it.

Offsets may be decimal or 0x-prefixed hex.`,
	Args: cobra.ExactArgs(2),
	RunE: runRecord,
}

func runRecord(cmd *cobra.Command, args []string) error {
	offset, err := parseOffset(args[1])
	if err != nil {
		return err
	}

	f, err := openStream(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rec, err := operand.Decode(stream.NewReader(f), int64(offset))
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Offset: 0x%X\n", rec.Offset)
	if rec.IsToken {
		fmt.Fprintf(output, "Token: 0x%08X\n", rec.Token)
		return nil
	}

	fmt.Fprintf(output, "Kind: %s\n", rec.Kind)
	switch {
	case rec.Type != nil:
		fmt.Fprintf(output, "  Name: %s\n", rec.Type.Name)
		fmt.Fprintf(output, "  HasGenericArgs: %v\n", rec.Type.HasGenericArgs)
		for i, arg := range rec.Type.GenericArgs {
			fmt.Fprintf(output, "  Arg[%d]: 0x%X\n", i, arg)
		}
	case rec.Field != nil:
		fmt.Fprintf(output, "  DeclaringType: 0x%X\n", rec.Field.DeclaringType)
		fmt.Fprintf(output, "  Name: %s\n", rec.Field.Name)
	case rec.Method != nil:
		fmt.Fprintf(output, "  DeclaringType: 0x%X\n", rec.Method.DeclaringType)
		fmt.Fprintf(output, "  Name: %s\n", rec.Method.Name)
	case rec.String != nil:
		fmt.Fprintf(output, "  Value: %q\n", rec.String.Value)
	}
	return nil
}
