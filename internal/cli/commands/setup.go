package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/leapjpql/internal/cli/config"
	"github.com/leapstack-labs/leapjpql/internal/cli/output"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer stored by the
// root command, building a renderer from the config when none is stored.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	r, ok := output.FromContext(ctx)
	if !ok {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(),
			output.Mode(cfg.Output), output.ColorMode(cfg.Color))
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: r,
	}
}

// ParserOptions returns the configured parse options with the command logger.
func (c *CommandContext) ParserOptions() []parser.Option {
	return append(c.Cfg.ParserOptions(), parser.WithLogger(c.Logger))
}

// stdinName is the display name of queries read from stdin.
const stdinName = "<stdin>"

// errNoInput is returned when no query was given and stdin is a terminal.
var errNoInput = errors.New("no query given: pass it as an argument, with --file, or on stdin")

// readQuery returns the query text and a display name for it. The query is
// taken from args, then file, then piped stdin.
func readQuery(cmd *cobra.Command, args []string, file string) (name, src string, err error) {
	switch {
	case len(args) > 0:
		return "<arg>", strings.Join(args, " "), nil
	case file != "":
		content, err := os.ReadFile(file)
		if err != nil {
			return "", "", fmt.Errorf("failed to read file: %w", err)
		}
		return file, string(content), nil
	}

	in := cmd.InOrStdin()
	if isTerminal(in) {
		return "", "", errNoInput
	}
	content, err := io.ReadAll(in)
	if err != nil {
		return "", "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return stdinName, string(content), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// problemsError reports that name has n diagnostics. The diagnostics
// themselves have already been printed.
func problemsError(name string, n int) error {
	return fmt.Errorf("%s: %d problem(s) found", name, n)
}
