package main

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/rjt/pkg/mcp"
	"github.com/gnana997/rjt/pkg/mcplog"
)

func serveCmd(a *app) *cobra.Command {
	var (
		root    string
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.applyPaths(root, "", ""); err != nil {
				return err
			}
			if logFile != "" {
				a.config.MCP.LogFile = logFile
			}
			return a.runServe()
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory relative tool paths resolve against")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Append a JSON line per tool call to this file")

	return cmd
}

func (a *app) runServe() error {
	callLog, err := mcplog.NewLogger(a.config.MCP.LogFile)
	if err != nil {
		return err
	}
	defer callLog.Close()

	tc, err := a.newToolchain(true)
	if err != nil {
		return err
	}
	defer tc.Close()

	srv := mcpserver.NewServer(mcpserver.Config{
		Compiler: tc.compiler,
		Cache:    tc.cache,
		Root:     a.config.Root,
		Syntax:   a.config.Syntax,
		Version:  version,
		Logger:   a.logger,
		CallLog:  callLog,
	})
	return srv.ServeStdio()
}
