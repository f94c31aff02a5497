// Package config provides configuration management for the jpql CLI.
package config

import (
	"runtime"

	"github.com/leapstack-labs/leapjpql/pkg/format"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
)

// Config holds all CLI configuration options.
type Config struct {
	Output         string `koanf:"output"`
	Color          string `koanf:"color"`
	MaxErrors      int    `koanf:"max_errors"`
	MaxSpeculation int    `koanf:"max_speculation"`
	Parallelism    int    `koanf:"parallelism"`
	KeywordCase    string `koanf:"keyword_case"`
	Verbose        bool   `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultOutput      = "auto" // text on a terminal, text without colour otherwise
	DefaultColor       = "auto"
	DefaultKeywordCase = "upper"
	DefaultMaxErrors   = 0
	EnvPrefix          = "JPQL_"
)

// DefaultParallelism is the number of files checked concurrently.
func DefaultParallelism() int {
	return runtime.GOMAXPROCS(0)
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Output:         DefaultOutput,
		Color:          DefaultColor,
		MaxErrors:      DefaultMaxErrors,
		MaxSpeculation: parser.DefaultMaxSpeculation,
		Parallelism:    DefaultParallelism(),
		KeywordCase:    DefaultKeywordCase,
	}
}

// ParserOptions returns the parse options the configuration selects.
func (c *Config) ParserOptions() []parser.Option {
	return []parser.Option{
		parser.WithMaxErrors(c.MaxErrors),
		parser.WithMaxSpeculation(c.MaxSpeculation),
	}
}

// FormatOptions returns the printer options the configuration selects.
// The keyword case has been validated by Load.
func (c *Config) FormatOptions() []format.Option {
	kc, _ := format.ParseCase(c.KeywordCase)
	return []format.Option{format.WithKeywordCase(kc)}
}
