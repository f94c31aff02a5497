package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/leapstack-labs/leapjpql/pkg/semantic"
	"github.com/spf13/cobra"
)

// SemanticTokenView is the structured form of one classified token.
type SemanticTokenView struct {
	Text   string `json:"text" yaml:"text"`
	Kind   string `json:"kind" yaml:"kind"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
	Offset int    `json:"offset" yaml:"offset"`
	Length int    `json:"length" yaml:"length"`
}

// NewHighlightCommand creates the highlight command.
func NewHighlightCommand() *cobra.Command {
	var (
		file    string
		asTable bool
	)

	cmd := &cobra.Command{
		Use:   "highlight [query]",
		Short: "Print a query with syntax highlighting",
		Long: `Classify the tokens of a query and print it with syntax highlighting.

Names are coloured by their role in the query: entity names, field names,
identification variables, entity type literals and parameters. Invalid
queries are highlighted as far as they could be parsed.`,
		Example: `  jpql highlight "SELECT e.name FROM Employee e WHERE e.id = :id"
  jpql highlight -f query.jpql --table
  jpql highlight -f query.jpql -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHighlight(cmd, args, file, asTable)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the query from a file")
	cmd.Flags().BoolVar(&asTable, "table", false, "List the classified tokens as a table")
	return cmd
}

func runHighlight(cmd *cobra.Command, args []string, file string, asTable bool) error {
	cc := NewCommandContext(cmd)
	_, src, err := readQuery(cmd, args, file)
	if err != nil {
		return err
	}

	tokens := semantic.FromResult(parser.ParseDocument(src, cc.ParserOptions()...))
	r := cc.Renderer

	switch {
	case r.Structured():
		views := make([]SemanticTokenView, len(tokens))
		for i, t := range tokens {
			views[i] = SemanticTokenView{
				Text:   t.Text(src),
				Kind:   t.Kind.String(),
				Line:   t.Span.Start.Line,
				Column: t.Span.Start.Column,
				Offset: t.Span.Start.Offset,
				Length: t.Span.Len(),
			}
		}
		return r.Data(views)

	case asTable:
		rows := make([]table.Row, len(tokens))
		for i, t := range tokens {
			rows[i] = table.Row{t.Text(src), r.Styles().Kind(t.Kind).Render(t.Kind.String()), t.Span.Start.String()}
		}
		r.Table(table.Row{"Text", "Kind", "Position"}, rows)

	default:
		highlighted := r.Highlight(src, tokens)
		if !strings.HasSuffix(highlighted, "\n") {
			highlighted += "\n"
		}
		r.Printf("%s", highlighted)
	}
	return nil
}
