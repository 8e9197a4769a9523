package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gnana997/rjt/pkg/scanner"
	"github.com/gnana997/rjt/pkg/watcher"
)

func watchCmd(a *app) *cobra.Command {
	var (
		root   string
		outDir string
		format string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Compile every template, then recompile on change",
		Long: `Compile every template under the root, then watch the project: a changed
template is recompiled, and a change to any other module recompiles every
template. Failures are reported and watching continues.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.applyPaths(root, outDir, format); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runWatch(ctx, cmd.OutOrStdout(), nil)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Project root (default from config, else the working directory)")
	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "Output directory (default: the root)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (source, js)")

	return cmd
}

// runWatch watches until ctx is done. ready, when set, is closed once the
// initial build finished and the watcher is running.
func (a *app) runWatch(ctx context.Context, stdout io.Writer, ready chan<- struct{}) error {
	tc, err := a.newToolchain(true)
	if err != nil {
		return err
	}
	defer tc.Close()

	scan := a.config.scanConfig()
	session, err := watcher.NewSession(watcher.SessionConfig{
		Compiler: tc.compiler,
		Cache:    tc.cache,
		Files:    tc.files,
		Root:     a.config.Root,
		OutDir:   a.config.outDir(),
		Scan:     &scan,
		Syntax:   a.config.Syntax,
		Format:   a.config.format(),
		Logger:   a.logger,
	})
	if err != nil {
		return err
	}

	results, err := session.BuildAll()
	if err != nil {
		return err
	}
	report := func(results []watcher.BuildResult) {
		for _, r := range results {
			fmt.Fprintln(stdout, r.Describe(a.config.Root))
		}
	}
	report(results)
	built, failed := watcher.Summary(results)
	fmt.Fprintf(stdout, "compiled %d templates, %d failed; watching %s\n", built, failed, a.config.Root)

	fw, err := watcher.NewFileWatcher(a.watchOptions(session.OutDir()), func(ev watcher.Event) {
		report(session.Handle(ev))
	}, a.logger)
	if err != nil {
		return err
	}
	if err := fw.Start(a.config.Root); err != nil {
		return err
	}
	defer fw.Stop()

	if ready != nil {
		close(ready)
	}
	<-ctx.Done()
	return nil
}

// watchOptions reports changes to every source file a template may import,
// skipping the configured excludes and a separate output directory.
func (a *app) watchOptions(outDir string) watcher.Options {
	scan := scanner.SourceScanConfig()
	scan.Exclude = a.config.scanConfig().Exclude
	if rel, err := filepath.Rel(a.config.Root, outDir); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		scan.Exclude = append(scan.Exclude, filepath.ToSlash(rel)+"/**")
	}
	return watcher.Options{DebounceMs: a.config.Watch.DebounceMs, Scan: &scan}
}
