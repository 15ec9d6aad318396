package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skdltmxn/eazresolve/dotnet"
)

var infoTypes bool

var infoCmd = &cobra.Command{
	Use:   "info <module-file>",
	Short: "Display module description information",
	Long:  `Display the assembly, table sizes and types of a YAML module description.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVarP(&infoTypes, "types", "t", false, "list types and their members")
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]

	m, err := dotnet.LoadModule(path)
	if err != nil {
		return fmt.Errorf("failed to load module: %w", err)
	}

	types := m.Types()
	fmt.Fprintf(output, "Module File: %s\n", path)
	fmt.Fprintf(output, "Assembly: %s\n", m.Assembly())
	fmt.Fprintf(output, "Types: %d\n", len(types))
	fmt.Fprintf(output, "Member Tokens: %d\n", m.MemberCount())
	fmt.Fprintf(output, "User Strings: %d\n", m.StringCount())

	if !infoTypes {
		return nil
	}

	fmt.Fprintln(output)
	fmt.Fprintf(output, "%-12s %s\n", "TOKEN", "NAME")
	fmt.Fprintf(output, "%s\n", strings.Repeat("-", 80))
	for _, d := range types {
		fmt.Fprintf(output, "%-12s %s\n", tokenString(d.Token), d.FullName())
		for _, f := range d.Fields {
			fmt.Fprintf(output, "%-12s   field  %s%s\n", tokenString(f.Token), staticMark(f.IsStatic), f.Name)
		}
		for _, meth := range d.Methods {
			fmt.Fprintf(output, "%-12s   method %s%s\n", tokenString(meth.Token), staticMark(meth.IsStatic), meth.Name)
		}
	}
	return nil
}

func staticMark(static bool) string {
	if static {
		return "static "
	}
	return ""
}
