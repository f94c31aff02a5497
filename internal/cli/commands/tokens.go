package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapjpql/internal/cli/output"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/leapstack-labs/leapjpql/pkg/token"
	"github.com/spf13/cobra"
)

// TokenView is the structured form of one lexer token.
type TokenView struct {
	Type    string `json:"type" yaml:"type"`
	Literal string `json:"literal" yaml:"literal"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
	Offset  int    `json:"offset" yaml:"offset"`
	End     int    `json:"end" yaml:"end"`
}

// CommentView is the structured form of one skipped comment.
type CommentView struct {
	Kind   string `json:"kind" yaml:"kind"`
	Text   string `json:"text" yaml:"text"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// TokensOutput is the structured result of `jpql tokens`.
type TokensOutput struct {
	Tokens      []TokenView             `json:"tokens" yaml:"tokens"`
	Comments    []CommentView           `json:"comments,omitempty" yaml:"comments,omitempty"`
	Diagnostics []output.DiagnosticView `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "tokens [query]",
		Short: "Print the tokens of a query",
		Long: `Run the lexer over a query and print the resulting tokens.

Keywords are reported as keyword tokens even where the parser would later
read them as names. Lexing stops at the first lexical error.`,
		Example: `  jpql tokens "SELECT e FROM Employee e WHERE e.name LIKE :n"
  jpql tokens -f query.jpql -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokens(cmd, args, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the query from a file")
	return cmd
}

func runTokens(cmd *cobra.Command, args []string, file string) error {
	cc := NewCommandContext(cmd)
	name, src, err := readQuery(cmd, args, file)
	if err != nil {
		return err
	}

	res := parser.ParseDocument(src, cc.ParserOptions()...)
	var lexDiags parser.Diagnostics
	for _, d := range res.Diagnostics {
		if d.Kind == parser.Lexical {
			lexDiags = append(lexDiags, d)
		}
	}

	r := cc.Renderer
	if r.Structured() {
		out := TokensOutput{Diagnostics: output.NewDiagnosticViews(name, lexDiags)}
		for _, tok := range res.Tokens {
			out.Tokens = append(out.Tokens, newTokenView(tok))
		}
		for _, c := range res.Comments {
			out.Comments = append(out.Comments, CommentView{
				Kind:   c.Kind.String(),
				Text:   c.Body(),
				Line:   c.Span.Start.Line,
				Column: c.Span.Start.Column,
			})
		}
		if err := r.Data(out); err != nil {
			return err
		}
	} else {
		rows := make([]table.Row, 0, len(res.Tokens))
		for i, tok := range res.Tokens {
			rows = append(rows, table.Row{i, tok.Type.String(), tok.Literal, tok.Pos.String(), tok.Pos.Offset})
		}
		r.Table(table.Row{"#", "Type", "Literal", "Position", "Offset"}, rows)
		r.Diagnostics(name, src, lexDiags)
	}

	if len(lexDiags) > 0 {
		return problemsError(name, len(lexDiags))
	}
	return nil
}

func newTokenView(tok token.Token) TokenView {
	return TokenView{
		Type:    tok.Type.String(),
		Literal: tok.Literal,
		Line:    tok.Pos.Line,
		Column:  tok.Pos.Column,
		Offset:  tok.Pos.Offset,
		End:     tok.End.Offset,
	}
}
