package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leapstack-labs/leapjpql/internal/cli/config"
	"github.com/leapstack-labs/leapjpql/internal/cli/output"
	"github.com/leapstack-labs/leapjpql/internal/cli/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	validQuery   = "SELECT e FROM Employee e"
	invalidQuery = "SELECT FROM Employee e"
)

// run executes cmd with args and stdin under the renderer's context.
func run(t *testing.T, cmd *cobra.Command, tr *testutil.TestRenderer, cfg *config.Config, stdin string, args ...string) error {
	t.Helper()
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	// nil args would make cobra read os.Args
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(tr.Out)
	cmd.SetErr(tr.ErrOut)
	return cmd.ExecuteContext(tr.Context(cfg))
}

func TestCommandDefinitions(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewParseCommand(), "parse [query]", []string{"file"}},
		{NewCheckCommand(), "check [files or directories...]", []string{"watch", "table", "parallelism"}},
		{NewTokensCommand(), "tokens [query]", []string{"file"}},
		{NewHighlightCommand(), "highlight [query]", []string{"file", "table"}},
		{NewFmtCommand(), "fmt [query]", []string{"file", "write", "multiline", "keyword-case"}},
		{NewREPLCommand(), "repl", nil},
		{NewLSPCommand("dev"), "lsp", nil},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestParseCommand_Text(t *testing.T) {
	tr := testutil.NewTestRendererText()
	require.NoError(t, run(t, NewParseCommand(), tr, nil, "", validQuery))

	out := tr.Output()
	assert.True(t, strings.HasPrefix(out, "SelectStatement 0-24\n"), out)
	testutil.AssertContains(t, out, `EntityName 14-22 name="Employee"`)
	testutil.AssertContains(t, out, `Identifier 23-24 name="e"`)
	assert.Empty(t, tr.ErrorOutput())
}

func TestParseCommand_Structured(t *testing.T) {
	tr := testutil.NewTestRendererJSON()
	require.NoError(t, run(t, NewParseCommand(), tr, nil, validQuery))

	var got ParseOutput
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
	assert.Equal(t, "SelectStatement", got.Statement["node"])
	assert.Equal(t, "0-24", got.Statement["span"])
	assert.Equal(t, []string{"e"}, got.Variables)
	assert.Empty(t, got.Diagnostics)

	tr = testutil.NewTestRendererYAML()
	require.NoError(t, run(t, NewParseCommand(), tr, nil, validQuery))
	var gotYAML map[string]any
	require.NoError(t, yaml.Unmarshal(tr.Out.Bytes(), &gotYAML))
	assert.Contains(t, gotYAML, "statement")
}

func TestParseCommand_Errors(t *testing.T) {
	tr := testutil.NewTestRendererText()
	err := run(t, NewParseCommand(), tr, nil, "", invalidQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 problem(s)")

	// the recovered tree is still printed
	testutil.AssertContains(t, tr.Output(), "SelectStatement")
	testutil.AssertContains(t, tr.ErrorOutput(), "<arg>:1:8: syntax error:")
}

func TestParseCommand_File(t *testing.T) {
	dir := testutil.SetupQueryDir(t, map[string]string{"q.jpql": "DELETE FROM Employee e\n"})
	tr := testutil.NewTestRendererText()
	require.NoError(t, run(t, NewParseCommand(), tr, nil, "", "-f", filepath.Join(dir, "q.jpql")))
	testutil.AssertContains(t, tr.Output(), "DeleteStatement")

	err := run(t, NewParseCommand(), testutil.NewTestRendererText(), nil, "", "-f", filepath.Join(dir, "missing.jpql"))
	assert.ErrorContains(t, err, "failed to read file")
}

func setupChecks(t *testing.T) string {
	return testutil.SetupQueryDir(t, map[string]string{
		"a.jpql":      validQuery,
		"sub/b.jpql":  invalidQuery,
		"notes.txt":   "not a query",
		"sub/c.jpql":  "UPDATE Employee e SET e.salary = e.salary * 1.1",
		"other/d.sql": "SELECT 1",
	})
}

func TestCheckCommand(t *testing.T) {
	dir := setupChecks(t)

	tr := testutil.NewTestRendererText()
	err := run(t, NewCheckCommand(), tr, nil, "", dir)
	require.Error(t, err)
	assert.Equal(t, "1 of 3 file(s) invalid, 1 problem(s) found", err.Error())
	testutil.AssertContains(t, tr.ErrorOutput(), filepath.Join(dir, "sub", "b.jpql")+":1:8: syntax error:")
	testutil.AssertNoANSI(t, tr.ErrorOutput())

	tr = testutil.NewTestRendererText()
	require.NoError(t, run(t, NewCheckCommand(), tr, nil, "",
		filepath.Join(dir, "a.jpql"), filepath.Join(dir, "sub", "c.jpql")))
	assert.Equal(t, "2 file(s) checked, no problems found\n", tr.Output())
}

func TestCheckCommand_Parallelism(t *testing.T) {
	dir := setupChecks(t)
	cfg := config.Default()
	cfg.Parallelism = 1

	tr := testutil.NewTestRendererJSON()
	require.Error(t, run(t, NewCheckCommand(), tr, cfg, "", dir))

	var got output.CheckOutput
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
	assert.Equal(t, output.CheckSummary{Files: 3, Invalid: 1, Diagnostics: 1}, got.Summary)
	require.Len(t, got.Results, 3)
	assert.Equal(t, filepath.Join(dir, "a.jpql"), got.Results[0].File)
	assert.True(t, got.Results[0].Valid)
	assert.False(t, got.Results[1].Valid)
	require.Len(t, got.Results[1].Diagnostics, 1)
	assert.Equal(t, 8, got.Results[1].Diagnostics[0].Column)
}

func TestCheckCommand_Table(t *testing.T) {
	dir := setupChecks(t)
	tr := testutil.NewTestRendererText()
	require.Error(t, run(t, NewCheckCommand(), tr, nil, "", "--table", dir))
	testutil.AssertContains(t, tr.Output(), "b.jpql")
	testutil.AssertContains(t, tr.Output(), "MESSAGE")
	assert.Empty(t, tr.ErrorOutput())
}

func TestCheckCommand_Stdin(t *testing.T) {
	tr := testutil.NewTestRendererText()
	require.NoError(t, run(t, NewCheckCommand(), tr, nil, validQuery))
	assert.Equal(t, "1 file(s) checked, no problems found\n", tr.Output())

	tr = testutil.NewTestRendererText()
	require.Error(t, run(t, NewCheckCommand(), tr, nil, invalidQuery))
	testutil.AssertContains(t, tr.ErrorOutput(), "<stdin>:1:8:")

	err := run(t, NewCheckCommand(), testutil.NewTestRendererText(), nil, validQuery, "--watch")
	assert.ErrorContains(t, err, "--watch needs files")
}

func TestCheckCommand_NoFiles(t *testing.T) {
	dir := testutil.SetupQueryDir(t, map[string]string{"readme.md": "# queries"})
	tr := testutil.NewTestRendererText()
	require.NoError(t, run(t, NewCheckCommand(), tr, nil, "", dir))
	assert.Equal(t, "warning: no .jpql files found\n", tr.ErrorOutput())
}

func TestCollectFiles(t *testing.T) {
	dir := setupChecks(t)
	files, err := collectFiles([]string{filepath.Join(dir, "notes.txt"), dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpql"),
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "sub", "b.jpql"),
		filepath.Join(dir, "sub", "c.jpql"),
	}, files)

	_, err = collectFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)

	assert.Equal(t, []string{dir, filepath.Join(dir, "sub")},
		watchedDirs([]string{dir}, []string{filepath.Join(dir, "a.jpql"), filepath.Join(dir, "sub", "b.jpql")}))
}

// lockedBuffer is a bytes.Buffer safe for a writer and a reader goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchFiles(t *testing.T) {
	dir := testutil.SetupQueryDir(t, map[string]string{"q.jpql": validQuery})
	file := filepath.Join(dir, "q.jpql")

	buf := &lockedBuffer{}
	cc := &CommandContext{
		Cfg:      config.Default(),
		Logger:   slog.New(slog.DiscardHandler),
		Renderer: output.NewRendererWithTTY(buf, buf, false, output.ModeText),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, cc, []string{dir}, []string{file}, &CheckOptions{})
	}()

	// rewrite until the watcher is running and has seen a change
	require.Eventually(t, func() bool {
		_ = os.WriteFile(file, []byte(invalidQuery), 0644)
		return strings.Contains(buf.String(), "syntax error")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Contains(t, buf.String(), "watching 1 file(s)")
}

func TestTokensCommand(t *testing.T) {
	tr := testutil.NewTestRendererText()
	require.NoError(t, run(t, NewTokensCommand(), tr, nil, "", "SELECT e.name"))
	out := tr.Output()
	for _, want := range []string{"SELECT", "IDENT", "name", "EOF", "1:8"} {
		testutil.AssertContains(t, out, want)
	}

	tr = testutil.NewTestRendererJSON()
	require.NoError(t, run(t, NewTokensCommand(), tr, nil, "", "SELECT e /* all */"))
	var got TokensOutput
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
	require.Len(t, got.Tokens, 3)
	assert.Equal(t, TokenView{Type: "IDENT", Literal: "e", Line: 1, Column: 8, Offset: 7, End: 8}, got.Tokens[1])
	assert.Equal(t, []CommentView{{Kind: "block", Text: "all", Line: 1, Column: 10}}, got.Comments)

	tr = testutil.NewTestRendererText()
	err := run(t, NewTokensCommand(), tr, nil, "", "SELECT 'open")
	require.Error(t, err)
	testutil.AssertContains(t, tr.ErrorOutput(), "lexical error")
}

func TestHighlightCommand(t *testing.T) {
	q := "SELECT e.name FROM Employee e WHERE e.id = :id"

	tr := testutil.NewTestRendererText()
	require.NoError(t, run(t, NewHighlightCommand(), tr, nil, "", q))
	assert.Equal(t, q+"\n", tr.Output())

	tr = testutil.NewTestRenderer(output.ModeText, true)
	require.NoError(t, run(t, NewHighlightCommand(), tr, nil, "", q))
	testutil.AssertContains(t, tr.Output(), "\x1b[")
	assert.Equal(t, q+"\n", testutil.StripANSI(tr.Output()))

	tr = testutil.NewTestRendererJSON()
	require.NoError(t, run(t, NewHighlightCommand(), tr, nil, "", q))
	var got []SemanticTokenView
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
	require.NotEmpty(t, got)
	assert.Equal(t, SemanticTokenView{Text: "SELECT", Kind: "keyword", Line: 1, Column: 1, Offset: 0, Length: 6}, got[0])
	assert.Equal(t, SemanticTokenView{Text: "name", Kind: "method", Line: 1, Column: 10, Offset: 9, Length: 4}, got[3])

	tr = testutil.NewTestRendererText()
	require.NoError(t, run(t, NewHighlightCommand(), tr, nil, "", "--table", q))
	testutil.AssertContains(t, tr.Output(), "Employee")
	testutil.AssertContains(t, tr.Output(), "class")
}

func TestFmtCommand(t *testing.T) {
	q := "select e from Employee e where e.salary>1000"

	tr := testutil.NewTestRendererText()
	require.NoError(t, run(t, NewFmtCommand(), tr, nil, "", q))
	assert.Equal(t, "SELECT e FROM Employee e WHERE e.salary > 1000\n", tr.Output())

	cfg := config.Default()
	cfg.KeywordCase = "lower"
	tr = testutil.NewTestRendererText()
	require.NoError(t, run(t, NewFmtCommand(), tr, cfg, "", q))
	assert.Equal(t, "select e from Employee e where e.salary > 1000\n", tr.Output())

	tr = testutil.NewTestRendererText()
	require.NoError(t, run(t, NewFmtCommand(), tr, nil, "", "--multiline", q))
	assert.Equal(t, "SELECT e\nFROM Employee e\nWHERE e.salary > 1000\n", tr.Output())

	tr = testutil.NewTestRendererJSON()
	require.NoError(t, run(t, NewFmtCommand(), tr, nil, "", q))
	var got FmtOutput
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
	assert.Equal(t, "SELECT e FROM Employee e WHERE e.salary > 1000", got.Query)
}

func TestFmtCommand_Write(t *testing.T) {
	dir := testutil.SetupQueryDir(t, map[string]string{"q.jpql": "delete from Employee e where e.id=?1"})
	file := filepath.Join(dir, "q.jpql")

	tr := testutil.NewTestRendererText()
	require.NoError(t, run(t, NewFmtCommand(), tr, nil, "", "-f", file, "-w"))
	assert.Empty(t, tr.Output())
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM Employee e WHERE e.id = ?1\n", string(content))

	err = run(t, NewFmtCommand(), testutil.NewTestRendererText(), nil, "", "-w", "SELECT e FROM E e")
	assert.ErrorContains(t, err, "--write needs --file")
}

func TestFmtCommand_SyntaxError(t *testing.T) {
	tr := testutil.NewTestRendererText()
	err := run(t, NewFmtCommand(), tr, nil, "", invalidQuery)
	require.Error(t, err)
	assert.Empty(t, tr.Output())
	testutil.AssertContains(t, tr.ErrorOutput(), "syntax error")
}

func newTestSession() (*replSession, *testutil.TestRenderer) {
	tr := testutil.NewTestRendererText()
	cc := &CommandContext{Cfg: config.Default(), Logger: slog.New(slog.DiscardHandler), Renderer: tr.Renderer}
	return &replSession{cc: cc, mode: defaultReplMode}, tr
}

func TestREPL_Lines(t *testing.T) {
	s, tr := newTestSession()

	assert.False(t, s.handleLine("select e"))
	assert.Empty(t, tr.Output(), "query continues until ';'")
	assert.False(t, s.handleLine("from Employee e ;"))
	assert.Equal(t, "SELECT e FROM Employee e\n\n", tr.Output())
	assert.Zero(t, s.buf.Len())

	tr.Reset()
	s.handleLine(invalidQuery + ";")
	assert.Empty(t, strings.TrimSpace(tr.Output()))
	testutil.AssertContains(t, tr.ErrorOutput(), "<input>:1:8: syntax error")
}

func TestREPL_DotCommands(t *testing.T) {
	s, tr := newTestSession()

	assert.False(t, s.handleLine(".mode tree"))
	assert.Equal(t, "tree", s.mode)
	s.handleLine(validQuery + ";")
	testutil.AssertContains(t, tr.Output(), "SelectStatement 0-24")

	s.handleLine(".mode nope")
	assert.Equal(t, "tree", s.mode)
	testutil.AssertContains(t, tr.ErrorOutput(), `unknown mode "nope"`)

	tr.Reset()
	s.handleLine(".help")
	testutil.AssertContains(t, tr.Output(), ".mode [name]")

	assert.True(t, s.handleLine(".quit"))
	assert.True(t, s.handleLine(".EXIT"))
}

func TestREPL_Complete(t *testing.T) {
	s, _ := newTestSession()

	line := []rune("SELECT e FROM Employee e WHERE e.name IS nu")
	words, n := s.Do(line, len(line))
	assert.Equal(t, [][]rune{[]rune("ll")}, words)
	assert.Equal(t, 2, n)

	// earlier lines of the query count
	s.handleLine("SELECT e FROM Employee e")
	line = []rune("WHERE e.name IS ")
	words, n = s.Do(line, len(line))
	assert.ElementsMatch(t, [][]rune{[]rune("NULL"), []rune("EMPTY")}, words)
	assert.Zero(t, n)

	s.buf.Reset()
	words, n = s.Do([]rune(".m"), 2)
	assert.Equal(t, [][]rune{[]rune("ode")}, words)
	assert.Equal(t, 2, n)
}

func TestReadQuery(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(" piped "))

	name, src, err := readQuery(cmd, []string{"SELECT", "e"}, "")
	require.NoError(t, err)
	assert.Equal(t, "<arg>", name)
	assert.Equal(t, "SELECT e", src)

	name, src, err = readQuery(cmd, nil, "")
	require.NoError(t, err)
	assert.Equal(t, stdinName, name)
	assert.Equal(t, " piped ", src)
}
