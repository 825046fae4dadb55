package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandevgo/searchbot/internal/config"
	"github.com/sandevgo/searchbot/internal/transport/cli"
	"github.com/sandevgo/searchbot/pkg/log"
	"github.com/sandevgo/searchbot/pkg/srv"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with SearchBot in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = log.NewContextWithWriter(ctx, os.Stderr, debug || config.IsDebug())
		defer flushLog()

		c := NewCore(ctx)

		rl, err := cli.NewReadLine(cli.Config{
			RuntimePath: c.Config.GetRuntimePath(),
			APIKey:      c.Config.GetServerAPIKey(),
		}, c.Runner, c.Sessions, c.Router)
		if err != nil {
			return err
		}
		services := append(c.Services, rl)

		srv.StartServices(ctx, c.Services)

		// the chat loop owns the terminal, so it runs in the foreground
		err = rl.Start(ctx)
		stop()

		srv.ShutdownServices(ctx, services)
		return err
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
