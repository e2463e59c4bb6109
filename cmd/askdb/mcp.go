package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/askdb-ai/askdb/pkg/mcp"
)

func newMCPCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run a Model Context Protocol server speaking JSON-RPC over stdio,
exposing the ask pipeline, schema, cache stats, and the ask log as tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}

			app, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var cache mcp.CacheStatter
			if app.store != nil {
				cache = app.store
			}
			srv := mcp.New(app.engine, app.inspector, cfg.Data.Table, cache, app.auditor, version)
			return srv.Run(ctx, os.Stdin, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	return cmd
}
