package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sandevgo/searchbot/internal/config"
	"github.com/sandevgo/searchbot/internal/providers/mcp"
	"github.com/sandevgo/searchbot/pkg/log"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the arXiv, Wikipedia and web lookups as an MCP stdio server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// stdout carries the protocol
		var flushLog func()
		ctx, flushLog = log.NewContextWithWriter(ctx, os.Stderr, debug || config.IsDebug())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		appCfg := config.NewAppConfig(ctx)

		log.FromCtx(ctx).Info().Msg("serving lookups over mcp stdio")
		return mcp.ServeStdio(mcp.NewServer(newLookups(appCfg), appCfg.GetSnippetMaxChars()))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
