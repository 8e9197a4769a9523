package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/rjt/pkg/analyzer"
	"github.com/gnana997/rjt/pkg/compiler"
	"github.com/gnana997/rjt/pkg/emit"
	"github.com/gnana997/rjt/pkg/scanner"
)

func compileCmd(a *app) *cobra.Command {
	var (
		root     string
		outDir   string
		format   string
		toStdout bool
	)

	cmd := &cobra.Command{
		Use:   "compile [templates...]",
		Short: "Compile templates into component modules",
		Long: `Compile the named templates, or every template under the project root when
none is given. a/b/Page.rjt.tsx is written to <out-dir>/a/b/Page.tsx.
Every failing template is reported; the exit status is 1 if any failed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.applyPaths(root, outDir, format); err != nil {
				return err
			}
			return a.runCompile(cmd.OutOrStdout(), cmd.ErrOrStderr(), args, toStdout)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Project root (default from config, else the working directory)")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Output directory (default: the root)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (source, js)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print compiled modules instead of writing files")

	return cmd
}

// applyPaths overrides the config with command flags.
func (a *app) applyPaths(root, outDir, format string) error {
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("failed to resolve root: %w", err)
		}
		a.config.Root = abs
	}
	if outDir != "" {
		abs, err := filepath.Abs(outDir)
		if err != nil {
			return fmt.Errorf("failed to resolve output directory: %w", err)
		}
		a.config.OutDir = abs
	}
	if format != "" {
		if _, err := emit.ParseFormat(format); err != nil {
			return err
		}
		a.config.Format = format
	}
	return nil
}

// templates returns the absolute paths of args, or every template under the
// root when args is empty.
func (a *app) templates(args []string) ([]string, error) {
	if len(args) == 0 {
		return scanner.DiscoverTemplates(a.config.Root, a.config.scanConfig())
	}
	paths := make([]string, len(args))
	for i, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", arg, err)
		}
		paths[i] = abs
	}
	return paths, nil
}

// requireTemplates rejects paths without a template suffix, whose compiled
// file would replace the source.
func requireTemplates(paths []string) error {
	for _, path := range paths {
		if !analyzer.IsTemplatePath(path) {
			return fmt.Errorf("%s is not a template (want %s)", path, strings.Join(analyzer.TemplateSuffixes, " or "))
		}
	}
	return nil
}

func (a *app) runCompile(stdout, stderr io.Writer, args []string, toStdout bool) error {
	templates, err := a.templates(args)
	if err != nil {
		return err
	}
	if err := requireTemplates(templates); err != nil {
		return err
	}
	if len(templates) == 0 {
		fmt.Fprintf(stderr, "no templates found under %s\n", a.config.Root)
		return nil
	}

	tc, err := a.newToolchain(false)
	if err != nil {
		return err
	}
	defer tc.Close()

	format := a.config.format()
	failed := 0
	for _, template := range templates {
		if err := a.compileOne(tc, stdout, template, format, toStdout); err != nil {
			failed++
			fmt.Fprintf(stderr, "✗ %s\n%v\n\n", a.relPath(template), err)
		}
	}

	stats := tc.compiler.Stats()
	a.logger.Info("compile finished", "compiled", stats.Compiled, "failed", stats.Failed)
	if failed > 0 {
		fmt.Fprintf(stderr, "%d of %d templates failed\n", failed, len(templates))
		return errFailed
	}
	return nil
}

func (a *app) compileOne(tc *toolchain, stdout io.Writer, template string, format emit.Format, toStdout bool) error {
	code, err := tc.compiler.Compile(template, a.config.Syntax, tc.cache)
	if err != nil {
		return err
	}

	if toStdout {
		out, err := emit.Emit(code, compiler.OutputName(template), format)
		if err != nil {
			return err
		}
		fmt.Fprint(stdout, out)
		return nil
	}

	outPath, err := compiler.OutputPath(a.config.Root, a.config.outDir(), template)
	if err != nil {
		return err
	}
	written, err := emit.WriteFile(outPath, code, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "✓ %s -> %s\n", a.relPath(template), a.relPath(written))
	return nil
}

// relPath shortens path relative to the root for display.
func (a *app) relPath(path string) string {
	if rel, err := filepath.Rel(a.config.Root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
