package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/skdltmxn/eazresolve/operand"
)

func TestDefault(t *testing.T) {
	c := Default()

	layout, err := c.Layout()
	require.NoError(t, err)
	assert.Equal(t, operand.DefaultLayout, layout)

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eazresolve.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[descriptor]
order = ["name", "declaring_type", "binding_flags", "return_type", "parameters", "locals"]

[log]
level = "debug"
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	layout, err := c.Layout()
	require.NoError(t, err)
	assert.Equal(t,
		[]operand.DescriptorField{
			operand.FieldName, operand.FieldDeclaringType, operand.FieldBindingFlags,
			operand.FieldReturnType, operand.FieldParameters, operand.FieldLocals,
		},
		layout.Fields())

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)
}

func TestParsePartialKeepsDefaults(t *testing.T) {
	c, err := Parse([]byte(`[log]
level = "error"
`))
	require.NoError(t, err)

	layout, err := c.Layout()
	require.NoError(t, err)
	assert.Equal(t, operand.DefaultLayout, layout)
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"duplicate field": `[descriptor]
order = ["name", "name", "binding_flags", "return_type", "locals", "parameters"]`,
		"short order": `[descriptor]
order = ["name"]`,
		"unknown field": `[descriptor]
order = ["name", "declaring_type", "flags", "return_type", "locals", "parameters"]`,
		"bad level": `[log]
level = "loud"`,
		"unknown key": `[descriptor]
ordering = []`,
		"syntax": `[descriptor`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
