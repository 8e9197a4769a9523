package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/scanner"
)

// fileAnalysis is one entry of `rjt analyze --json`.
type fileAnalysis struct {
	File   string           `json:"file"`
	Result *analyzer.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func analyzeCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		jobs   int
	)

	cmd := &cobra.Command{
		Use:   "analyze <files...>",
		Short: "Classify the exports of modules",
		Long: `Report which exports of each file are Templates or Serializable components.
Files are analyzed in parallel and reported in the order given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd.Context(), cmd.OutOrStdout(), args, jobs, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Parallel workers (default: number of CPUs)")

	return cmd
}

func (a *app) runAnalyze(ctx context.Context, stdout io.Writer, args []string, jobs int, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	files, err := a.templates(args)
	if err != nil {
		return err
	}

	tc, err := a.newToolchain(false)
	if err != nil {
		return err
	}
	defer tc.Close()

	// The shared MapCache is not safe for concurrent use.
	cache, err := analyzer.NewLRUCache(max(a.config.CacheSize, len(files), 1), a.logger)
	if err != nil {
		return err
	}
	an := tc.compiler.Analyzer()
	results := scanner.ProcessFiles(ctx, files, jobs, func(ctx context.Context, path string) (*analyzer.Result, error) {
		return an.Analyze(path, a.config.Syntax, cache)
	}, a.logger)

	analyses := make([]fileAnalysis, len(results))
	failed := 0
	for i, r := range results {
		analyses[i] = fileAnalysis{File: a.relPath(r.FilePath), Result: r.Value}
		if r.Err != nil {
			failed++
			analyses[i].Error = r.Err.Error()
		}
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analyses); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
	} else {
		for _, fa := range analyses {
			printAnalysis(stdout, fa)
		}
	}

	if failed > 0 {
		return errFailed
	}
	return nil
}

// printAnalysis prints a human-readable analysis.
func printAnalysis(w io.Writer, fa fileAnalysis) {
	if fa.Error != "" {
		fmt.Fprintf(w, "%s  [error]\n%s\n\n", fa.File, fa.Error)
		return
	}
	if fa.Result.Type == analyzer.ResultTemplate {
		fmt.Fprintf(w, "%s  [Template]\n\n", fa.File)
		return
	}

	fmt.Fprintf(w, "%s  [Exports]\n", fa.File)
	if len(fa.Result.Exports) == 0 {
		fmt.Fprintln(w, "  (no components)")
		fmt.Fprintln(w)
		return
	}

	names := make([]string, 0, len(fa.Result.Exports))
	width := 0
	for name := range fa.Result.Exports {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-*s  %s\n", width, name, fa.Result.Exports[name])
	}
	fmt.Fprintln(w)
}
