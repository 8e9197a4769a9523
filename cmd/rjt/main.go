// Command rjt compiles react-json-templates templates into component modules.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnana997/rjt/pkg/util"
)

var version = "dev"

// errFailed is returned after the failures have been reported.
var errFailed = errors.New("one or more files failed")

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// app is the state shared by every command, set up before each run.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	config ProjectConfig
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "rjt",
		Short:         "rjt - react-json-templates compiler",
		Long:          `rjt compiles .rjt.tsx/.rjt.jsx templates into TypeScript modules that build serializable component trees.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", DefaultConfigFile, "Project config file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(compileCmd(a))
	rootCmd.AddCommand(analyzeCmd(a))
	rootCmd.AddCommand(inspectCmd(a))
	rootCmd.AddCommand(watchCmd(a))
	rootCmd.AddCommand(serveCmd(a))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// setup loads the project config, applies the global flags and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	explicit := cmd.Flags().Changed("config")
	cfg, err := loadProjectConfig(a.configPath, explicit)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.config = cfg
	a.logger = util.NewLogger(util.LoggerConfig{
		Level:  util.LogLevel(cfg.Log.Level),
		Format: util.LogFormat(cfg.Log.Format),
		Output: cmd.ErrOrStderr(),
	})
	a.logger.Debug("loaded config", "root", cfg.Root, "out_dir", cfg.outDir(), "format", cfg.Format)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rjt %s\n", version)
		},
	}
}
