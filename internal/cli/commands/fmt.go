package commands

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/leapjpql/pkg/format"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/spf13/cobra"
)

// FmtOptions holds options for the fmt command.
type FmtOptions struct {
	File      string
	Write     bool
	Multiline bool
}

// FmtOutput is the structured result of `jpql fmt`.
type FmtOutput struct {
	Query string `json:"query" yaml:"query"`
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand() *cobra.Command {
	opts := &FmtOptions{}

	cmd := &cobra.Command{
		Use:   "fmt [query]",
		Short: "Print a query in canonical form",
		Long: `Parse a query and print it back in canonical form.

Keywords are printed in the configured case (keyword_case, default upper)
and whitespace is normalised. With --multiline each clause starts on its
own line. Queries with syntax errors are not formatted.`,
		Example: `  jpql fmt "select e from Employee e where e.salary>1000"
  jpql fmt -f query.jpql --multiline
  jpql fmt -f query.jpql -w --keyword-case lower`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Read the query from a file")
	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "Write the result back to --file")
	cmd.Flags().BoolVarP(&opts.Multiline, "multiline", "m", false, "Start each clause on its own line")
	cmd.Flags().String("keyword-case", "", "Keyword case: upper or lower")
	_ = cmd.RegisterFlagCompletionFunc("keyword-case", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"upper", "lower"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func runFmt(cmd *cobra.Command, args []string, opts *FmtOptions) error {
	if opts.Write && opts.File == "" {
		return fmt.Errorf("--write needs --file")
	}
	cc := NewCommandContext(cmd)
	name, src, err := readQuery(cmd, args, opts.File)
	if err != nil {
		return err
	}

	stmt, diags := parser.Parse(src, cc.ParserOptions()...)
	if len(diags) > 0 {
		cc.Renderer.Diagnostics(name, src, diags)
		return problemsError(name, len(diags))
	}

	fopts := append(cc.Cfg.FormatOptions(), format.WithMultiline(opts.Multiline))
	formatted := format.Format(stmt, fopts...)

	if opts.Write {
		info, err := os.Stat(opts.File)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", opts.File, err)
		}
		if err := os.WriteFile(opts.File, []byte(formatted+"\n"), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.File, err)
		}
		cc.Logger.Debug("formatted file", "file", opts.File)
		return nil
	}

	r := cc.Renderer
	if r.Structured() {
		return r.Data(FmtOutput{Query: formatted})
	}
	r.Println(formatted)
	return nil
}
