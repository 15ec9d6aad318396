package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skdltmxn/eazresolve/devirt"
	"github.com/skdltmxn/eazresolve/dotnet"
	"github.com/skdltmxn/eazresolve/operand"
)

var (
	resolveModule string
	resolveFormat string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <stream-file> <kind> <offset>",
	Short: "Resolve an operand against a module",
	Long: `Resolve the operand at offset against the module given with --module.

Kinds:
  - type, field, method, string: resolve a record of that kind
  - token: resolve a type, field or method record
  - eazcall: the last argument is a packed call operand

Supported formats:
  - text: Human-readable text (default)
  - json: JSON format`,
	Args: cobra.ExactArgs(3),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveModule, "module", "m", "", "YAML module description (required)")
	resolveCmd.Flags().StringVarP(&resolveFormat, "format", "f", "text", "output format (text, json)")
	_ = resolveCmd.MarkFlagRequired("module")
}

type resolveResult struct {
	Operand     string   `json:"operand"`
	Offset      int32    `json:"offset"`
	Entity      string   `json:"entity"`
	Name        string   `json:"name,omitempty"`
	Token       string   `json:"token,omitempty"`
	Assembly    string   `json:"assembly,omitempty"`
	Static      bool     `json:"static,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	if resolveFormat != "text" && resolveFormat != "json" {
		return fmt.Errorf("unknown format: %s", resolveFormat)
	}

	kind := strings.ToLower(args[1])
	var (
		offset int32
		call   uint32
		err    error
	)
	if kind == "eazcall" {
		call, err = parseEazCall(args[2])
	} else {
		offset, err = parseOffset(args[2])
	}
	if err != nil {
		return err
	}

	layout, err := cfg.Layout()
	if err != nil {
		return err
	}

	module, err := dotnet.LoadModule(resolveModule)
	if err != nil {
		return err
	}

	f, err := openStream(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	collected := &devirt.Collector{}
	r := devirt.NewResolver(devirt.Context{
		Module:      module,
		Diagnostics: devirt.Tee{collected, devirt.NewZapDiagnostics(logger)},
		Descriptors: layout,
	}, f)

	res := &resolveResult{Operand: kind, Offset: offset}
	switch kind {
	case "type":
		var typ *dotnet.Type
		if typ, err = r.ResolveType(offset); err == nil && typ != nil {
			describeEntity(res, dotnet.TypeEntity(typ))
		}
	case "field":
		var fd *dotnet.FieldDefinition
		if fd, err = r.ResolveField(offset); err == nil {
			describeEntity(res, dotnet.FieldEntity(fd))
		}
	case "method":
		var m *dotnet.MethodDefinition
		if m, err = r.ResolveMethod(offset); err == nil {
			describeEntity(res, dotnet.MethodEntity(m))
		}
	case "token":
		var e dotnet.Entity
		if e, err = r.ResolveToken(offset); err == nil {
			describeEntity(res, e)
		}
	case "string":
		var s string
		if s, err = r.ResolveString(offset); err == nil {
			describeEntity(res, dotnet.StringEntity(s))
		}
	case "eazcall":
		var m *dotnet.MethodDefinition
		res.Offset = operand.UnpackEazCall(call).Offset
		if m, err = r.ResolveEazCall(call); err == nil {
			describeEntity(res, dotnet.MethodEntity(m))
		}
	default:
		return fmt.Errorf("unknown operand kind: %s", args[1])
	}
	if err != nil {
		return fmt.Errorf("failed to resolve %s operand: %w", kind, err)
	}
	if res.Entity == "" {
		res.Entity = dotnet.EntityUnknown.String()
	}
	res.Diagnostics = collected.Messages()

	if resolveFormat == "json" {
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		return encoder.Encode(res)
	}
	printResult(res)
	return nil
}

func describeEntity(res *resolveResult, e dotnet.Entity) {
	res.Entity = e.Kind().String()
	res.Name = e.Name()

	if typ, ok := e.Type(); ok {
		res.Entity = typ.Kind().String()
		if d, ok := typ.Underlying().Definition(); ok {
			res.Token = tokenString(d.Token)
			res.Assembly = d.Assembly.FullName()
		} else if ref, ok := typ.Underlying().Reference(); ok {
			res.Token = tokenString(ref.Token)
			res.Assembly = ref.Scope.FullName()
		}
	}
	if s, ok := e.StringValue(); ok {
		res.Name = s
	}
	if fd, ok := e.Field(); ok {
		res.Token = tokenString(fd.Token)
		res.Static = fd.IsStatic
	}
	if m, ok := e.Method(); ok {
		res.Token = tokenString(m.Token)
		res.Static = m.IsStatic
	}
}

func tokenString(t dotnet.Token) string {
	if t == 0 {
		return ""
	}
	return t.String()
}

func printResult(res *resolveResult) {
	fmt.Fprintf(output, "Operand: %s at 0x%X\n", res.Operand, res.Offset)
	fmt.Fprintf(output, "  Entity: %s\n", res.Entity)
	if res.Name != "" {
		fmt.Fprintf(output, "  Name: %s\n", res.Name)
	}
	if res.Token != "" {
		fmt.Fprintf(output, "  Token: %s\n", res.Token)
	}
	if res.Assembly != "" {
		fmt.Fprintf(output, "  Assembly: %s\n", res.Assembly)
	}
	if res.Static {
		fmt.Fprintf(output, "  Static: true\n")
	}
	for _, msg := range res.Diagnostics {
		fmt.Fprintf(output, "  Diagnostic: %s\n", msg)
	}
}
