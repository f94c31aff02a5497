package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jpql.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing-ok.yaml"), nil)
	require.Error(t, err, "an explicit config file must exist")
	assert.Nil(t, cfg)

	ResetConfig()
	t.Chdir(t.TempDir())
	cfg, err = LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, `output: json
color: never
max_errors: 3
max_speculation: 16
parallelism: 2
keyword_case: Lower
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, &Config{
		Output:         "json",
		Color:          "never",
		MaxErrors:      3,
		MaxSpeculation: 16,
		Parallelism:    2,
		KeywordCase:    "lower",
	}, cfg)
}

func TestLoadConfig_FindsFileInParent(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "jpql.yml"), []byte("output: yaml\n"), 0600))
	sub := filepath.Join(root, "queries", "reports")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	t.Chdir(sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Output)
	assert.Equal(t, "jpql.yml", filepath.Base(GetConfigFileUsed()))
}

// TestLoadConfig_FlagPrecedence tests that flags override env vars and config file.
func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "max_errors: 1\n")
	t.Setenv("JPQL_MAX_ERRORS", "2")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("max-errors", 0, "maximum diagnostics")
	require.NoError(t, flags.Set("max-errors", "3"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxErrors, "flag value should override config file and env var")
}

// TestLoadConfig_EnvPrecedenceOverFile tests that env vars override config file.
func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "max_errors: 1\nkeyword_case: upper\n")
	t.Setenv("JPQL_MAX_ERRORS", "2")
	t.Setenv("JPQL_KEYWORD_CASE", "lower")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxErrors, "env var should override config file")
	assert.Equal(t, "lower", cfg.KeywordCase)
}

// TestLoadConfig_FlagNotSetUsesEnv tests that unset flags fall back to env vars.
func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, "output: text\n")
	t.Setenv("JPQL_OUTPUT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("output", "o", "auto", "output format")

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output, "env var should be used when flag is not set")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"output", "output: xml\n", `invalid output "xml"`},
		{"color", "color: sometimes\n", `invalid color "sometimes"`},
		{"max errors", "max_errors: -1\n", "max_errors must not be negative"},
		{"speculation", "max_speculation: 0\n", "max_speculation must be at least 1"},
		{"parallelism", "parallelism: 0\n", "parallelism must be at least 1"},
		{"keyword case", "keyword_case: title\n", `unknown keyword case "title"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			_, err := LoadConfig(writeConfig(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_Options(t *testing.T) {
	cfg := Default()
	cfg.MaxSpeculation = 4
	assert.Len(t, cfg.ParserOptions(), 2)
	assert.Len(t, cfg.FormatOptions(), 1)
	assert.Equal(t, parser.DefaultMaxSpeculation, Default().MaxSpeculation)
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Default(), GetConfig(ctx))
	assert.NotNil(t, GetLogger(ctx))

	cfg := &Config{Output: "yaml"}
	logger := NewLogger(os.Stderr, true)
	ctx = WithLogger(WithConfig(ctx, cfg), logger)
	assert.Same(t, cfg, GetConfig(ctx))
	assert.Same(t, logger, GetLogger(ctx))
}
