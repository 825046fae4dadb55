package main

import (
	"github.com/spf13/cobra"

	"github.com/sandevgo/searchbot/internal/config"
	"github.com/sandevgo/searchbot/internal/service/installer"
	"github.com/sandevgo/searchbot/pkg/log"
)

var installCmd = &cobra.Command{
	Use:           "install",
	Short:         "Configure SearchBot interactively",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting installation process")

		runtimePath := config.GetRuntimePath()
		if _, err := installer.RunWizard(runtimePath); err != nil {
			return err
		}

		logger.Info().Msgf("initialized runtime directory at: %s", runtimePath)
		logger.Info().Msg("Installation complete! Run 'searchbot serve' or 'searchbot chat'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
