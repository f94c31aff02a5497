package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapjpql/pkg/format"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/leapstack-labs/leapjpql/pkg/semantic"
	"github.com/spf13/cobra"
)

const (
	replPrompt      = "jpql> "
	replContinue    = "  ...> "
	replHistory     = ".jpql_history"
	defaultReplMode = "fmt"
)

// replModes are the ways the REPL shows a parsed query.
var replModes = []string{"fmt", "tree", "tokens", "highlight"}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Parse queries interactively",
		Long: `Start an interactive session that parses each query you enter.

Queries may span several lines and end with a semicolon. Valid queries
are shown formatted, as a tree, as tokens or highlighted (see .mode);
invalid ones show their diagnostics. Tab completes keywords and
identification variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
}

// replSession holds the state of one interactive session.
type replSession struct {
	cc   *CommandContext
	mode string
	buf  strings.Builder
}

func runREPL(cmd *cobra.Command) error {
	s := &replSession{cc: NewCommandContext(cmd), mode: defaultReplMode}

	var historyFile string
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, replHistory)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    s,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := s.cc.Renderer
	r.Println("JPQL parser REPL")
	r.Println("Type .help for commands, .quit to exit")
	r.Println()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			s.buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if quit := s.handleLine(line); quit {
			return nil
		}
		if s.buf.Len() > 0 {
			rl.SetPrompt(replContinue)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

// handleLine processes one input line and reports whether to quit.
func (s *replSession) handleLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if s.buf.Len() == 0 && strings.HasPrefix(trimmed, ".") {
		return s.handleDotCommand(trimmed)
	}

	// Accumulate multi-line input until semicolon
	s.buf.WriteString(line)
	if !strings.HasSuffix(trimmed, ";") {
		s.buf.WriteString("\n")
		return false
	}
	query := strings.TrimSuffix(strings.TrimRightFunc(s.buf.String(), isSpace), ";")
	s.buf.Reset()

	s.show(query)
	s.cc.Renderer.Println()
	return false
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

// show parses query and prints it in the current mode.
func (s *replSession) show(query string) {
	r := s.cc.Renderer
	res := parser.ParseDocument(query, s.cc.ParserOptions()...)
	if len(res.Diagnostics) > 0 {
		r.Diagnostics("<input>", query, res.Diagnostics)
		if s.mode != "tree" || res.Statement == nil {
			return
		}
	}

	switch s.mode {
	case "tree":
		writeTree(r, res.Statement, 0)
	case "tokens":
		for _, tok := range res.Tokens {
			r.Printf("%-6s %-16s %q\n", tok.Pos, tok.Type, tok.Literal)
		}
	case "highlight":
		r.Println(r.Highlight(query, semantic.FromResult(res)))
	default:
		r.Println(format.Format(res.Statement, s.cc.Cfg.FormatOptions()...))
	}
}

func (s *replSession) handleDotCommand(line string) bool {
	r := s.cc.Renderer
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.Writer())

	case ".mode":
		if len(parts) < 2 {
			r.Printf("mode: %s (one of %s)\n", s.mode, strings.Join(replModes, ", "))
			return false
		}
		mode := strings.ToLower(parts[1])
		if slices.Contains(replModes, mode) {
			s.mode = mode
			return false
		}
		r.Warning(fmt.Sprintf("unknown mode %q (one of %s)", parts[1], strings.Join(replModes, ", ")))

	default:
		r.Warning(fmt.Sprintf("unknown command: %s (type .help for commands)", command))
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .mode [name]    Show or set how queries are shown: fmt, tree, tokens, highlight
  .quit / .exit   Exit the REPL

Tips:
  - Queries must end with a semicolon (;)
  - Use arrow keys to navigate history
  - Tab completes keywords and identification variables
`
	_, _ = fmt.Fprintln(w, help)
}

// Do implements readline.AutoCompleter. Completion sees the lines already
// entered for the current query.
func (s *replSession) Do(line []rune, pos int) ([][]rune, int) {
	before := string(line[:pos])
	if s.buf.Len() == 0 && strings.HasPrefix(strings.TrimSpace(before), ".") {
		return completeDotCommand(strings.TrimSpace(before))
	}

	query := s.buf.String() + before
	c := parser.CompleteAt(query, len(query), s.cc.ParserOptions()...)
	words := c.Words()
	out := make([][]rune, 0, len(words))
	for _, w := range words {
		out = append(out, []rune(w[len(c.Prefix):]))
	}
	return out, len([]rune(c.Prefix))
}

func completeDotCommand(prefix string) ([][]rune, int) {
	var out [][]rune
	for _, c := range []string{".help", ".mode", ".quit", ".exit"} {
		if strings.HasPrefix(c, prefix) {
			out = append(out, []rune(c[len(prefix):]))
		}
	}
	return out, len([]rune(prefix))
}
