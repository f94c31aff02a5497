package commands

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/leapstack-labs/leapjpql/internal/cli/output"
	"github.com/leapstack-labs/leapjpql/pkg/parser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// queryExt is the extension of query files found in directories.
const queryExt = ".jpql"

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Watch bool
	Table bool
}

// checked is the outcome of checking one input, with its source for
// rendering diagnostics.
type checked struct {
	name  string
	src   string
	diags parser.Diagnostics
}

func (c checked) result() output.FileResult {
	return output.FileResult{
		File:        c.name,
		Valid:       len(c.diags) == 0,
		Diagnostics: output.NewDiagnosticViews(c.name, c.diags),
	}
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check [files or directories...]",
		Short: "Check queries for syntax errors",
		Long: `Check JPQL files for syntax errors.

Directories are searched recursively for *.jpql files. Files are parsed
concurrently, up to --parallelism at a time. With no arguments the query
is read from stdin. The command fails if any input has errors.`,
		Example: `  jpql check queries/
  jpql check a.jpql b.jpql --table
  jpql check queries/ --watch
  cat query.jpql | jpql check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-check files when they change")
	cmd.Flags().BoolVar(&opts.Table, "table", false, "Print diagnostics as a table")
	cmd.Flags().Int("parallelism", 0, "Maximum files parsed at once (default GOMAXPROCS)")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *CheckOptions) error {
	cc := NewCommandContext(cmd)

	if len(args) == 0 {
		if opts.Watch {
			return fmt.Errorf("--watch needs files or directories")
		}
		name, src, err := readQuery(cmd, nil, "")
		if err != nil {
			return err
		}
		_, diags := parser.Parse(src, cc.ParserOptions()...)
		return reportChecks(cc, []checked{{name: name, src: src, diags: diags}}, opts)
	}

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cc.Renderer.Warning("no " + queryExt + " files found")
		return nil
	}

	results, err := checkFiles(cmd.Context(), cc, files)
	if err != nil {
		return err
	}
	reportErr := reportChecks(cc, results, opts)
	if !opts.Watch {
		return reportErr
	}
	return watchFiles(cmd.Context(), cc, args, files, opts)
}

// collectFiles expands directories in args to the query files below them.
// Files named explicitly are kept whatever their extension.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == queryExt {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// checkFiles parses files concurrently. Results are in the order of files.
func checkFiles(ctx context.Context, cc *CommandContext, files []string) ([]checked, error) {
	results := make([]checked, len(files))
	opts := cc.ParserOptions()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cc.Cfg.Parallelism)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := checkFile(file, opts)
			if err != nil {
				return err
			}
			results[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cc.Logger.Debug("checked files", "count", len(files), "parallelism", cc.Cfg.Parallelism)
	return results, nil
}

func checkFile(file string, opts []parser.Option) (checked, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return checked{}, fmt.Errorf("failed to read %s: %w", file, err)
	}
	src := string(content)
	_, diags := parser.Parse(src, opts...)
	return checked{name: file, src: src, diags: diags}, nil
}

// reportChecks prints results and returns an error if any input is invalid.
func reportChecks(cc *CommandContext, results []checked, opts *CheckOptions) error {
	r := cc.Renderer
	out := output.CheckOutput{Results: make([]output.FileResult, len(results))}
	var views []output.DiagnosticView
	for i, c := range results {
		out.Results[i] = c.result()
		out.Summary.Files++
		if len(c.diags) > 0 {
			out.Summary.Invalid++
			out.Summary.Diagnostics += len(c.diags)
			views = append(views, out.Results[i].Diagnostics...)
		}
	}

	switch {
	case r.Structured():
		if err := r.Data(out); err != nil {
			return err
		}
	case opts.Table:
		if len(views) > 0 {
			r.DiagnosticsTable(views)
		}
	default:
		for _, c := range results {
			r.Diagnostics(c.name, c.src, c.diags)
		}
	}

	if out.Summary.Invalid > 0 {
		return fmt.Errorf("%d of %d file(s) invalid, %d problem(s) found",
			out.Summary.Invalid, out.Summary.Files, out.Summary.Diagnostics)
	}
	if !r.Structured() {
		r.Success(fmt.Sprintf("%d file(s) checked, no problems found", out.Summary.Files))
	}
	return nil
}
