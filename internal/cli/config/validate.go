package config

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/leapjpql/pkg/format"
)

var (
	outputModes = []string{"auto", "text", "json", "yaml"}
	colorModes  = []string{"auto", "always", "never"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(outputModes, c.Output) {
		return fmt.Errorf("invalid output %q (want one of %v)", c.Output, outputModes)
	}
	if !slices.Contains(colorModes, c.Color) {
		return fmt.Errorf("invalid color %q (want one of %v)", c.Color, colorModes)
	}
	if c.MaxErrors < 0 {
		return fmt.Errorf("max_errors must not be negative, got %d", c.MaxErrors)
	}
	if c.MaxSpeculation < 1 {
		return fmt.Errorf("max_speculation must be at least 1, got %d", c.MaxSpeculation)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if _, err := format.ParseCase(c.KeywordCase); err != nil {
		return err
	}
	return nil
}
