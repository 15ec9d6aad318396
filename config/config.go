// Package config handles eazresolve.toml configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/skdltmxn/eazresolve/operand"
)

// Config is the tool configuration.
type Config struct {
	Descriptor Descriptor `toml:"descriptor"`
	Log        Log        `toml:"log"`
}

// Descriptor configures how method descriptors are laid out in the stream.
type Descriptor struct {
	// Order lists the six descriptor fields in stream order.
	Order []string `toml:"order"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Descriptor: Descriptor{Order: operand.DefaultLayout.Names()},
		Log:        Log{Level: "warn"},
	}
}

// Load parses a TOML configuration file. Missing sections keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates TOML configuration.
func Parse(data []byte) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %s", undecoded[0])
	}

	if _, err := c.Layout(); err != nil {
		return nil, err
	}
	if _, err := c.Level(); err != nil {
		return nil, err
	}
	return c, nil
}

// Layout returns the configured method descriptor layout.
func (c *Config) Layout() (operand.Layout, error) {
	if len(c.Descriptor.Order) == 0 {
		return operand.DefaultLayout, nil
	}
	return operand.ParseLayout(c.Descriptor.Order)
}

// Level returns the configured log level.
func (c *Config) Level() (zapcore.Level, error) {
	if c.Log.Level == "" {
		return zapcore.WarnLevel, nil
	}
	return zapcore.ParseLevel(c.Log.Level)
}

// NewLogger builds a logger writing to stderr at the configured level.
// verbose forces debug output in development format.
func (c *Config) NewLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	level, err := c.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return zc.Build()
}
