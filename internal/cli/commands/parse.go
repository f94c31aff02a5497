package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapjpql/internal/cli/output"
	"github.com/leapstack-labs/leapjpql/pkg/ast"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/spf13/cobra"
)

// ParseOutput is the structured result of `jpql parse`.
type ParseOutput struct {
	Statement   map[string]any          `json:"statement" yaml:"statement"`
	Variables   []string                `json:"variables,omitempty" yaml:"variables,omitempty"`
	Diagnostics []output.DiagnosticView `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "parse [query]",
		Short: "Parse a query and print its syntax tree",
		Long: `Parse a JPQL statement and print its syntax tree.

The tree is printed as an indented outline, or as JSON or YAML with
--output. Syntax errors are reported on stderr; the tree built around
them is still printed.`,
		Example: `  jpql parse "SELECT e FROM Employee e WHERE e.salary > 1000"
  jpql parse -f query.jpql -o json
  echo "DELETE FROM Employee e" | jpql parse -o yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the query from a file")
	return cmd
}

func runParse(cmd *cobra.Command, args []string, file string) error {
	cc := NewCommandContext(cmd)
	name, src, err := readQuery(cmd, args, file)
	if err != nil {
		return err
	}

	res := parser.ParseDocument(src, cc.ParserOptions()...)
	cc.Logger.Debug("parsed query", "name", name, "tokens", len(res.Tokens), "diagnostics", len(res.Diagnostics))

	r := cc.Renderer
	if r.Structured() {
		out := ParseOutput{Diagnostics: output.NewDiagnosticViews(name, res.Diagnostics)}
		if res.Statement != nil {
			out.Statement = ast.Dump(res.Statement)
		}
		if res.Scope != nil {
			out.Variables = res.Scope.Names()
		}
		if err := r.Data(out); err != nil {
			return err
		}
	} else {
		if res.Statement != nil {
			writeTree(r, res.Statement, 0)
		}
		r.Diagnostics(name, src, res.Diagnostics)
	}

	if len(res.Diagnostics) > 0 {
		return problemsError(name, len(res.Diagnostics))
	}
	return nil
}

// writeTree prints n and its children as an indented outline.
func writeTree(r *output.Renderer, n ast.Node, depth int) {
	span := n.GetSpan()
	dump := ast.Dump(n)
	s := r.Styles()
	r.Printf("%s%s %s%s\n",
		strings.Repeat("  ", depth),
		s.Header.Render(dump["node"].(string)),
		s.Muted.Render(fmt.Sprintf("%d-%d", span.Start.Offset, span.End.Offset)),
		attributes(dump))
	for _, child := range ast.Children(n) {
		writeTree(r, child, depth+1)
	}
}

// attributes formats the scalar fields of a dumped node as " key=value".
func attributes(dump map[string]any) string {
	keys := make([]string, 0, len(dump))
	for k, v := range dump {
		if k == "node" || k == "span" {
			continue
		}
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := dump[k]
		if str, ok := v.(string); ok {
			v = fmt.Sprintf("%q", str)
		}
		fmt.Fprintf(&b, " %s=%v", k, v)
	}
	return b.String()
}
