package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/en9inerd/go-mount/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Loads the configuration, assembles the mount table and serves it until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := load(cmd)
		if err != nil {
			return err
		}
		cfg, logger := a.cfg, a.logger

		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}

		if cfg.Tracing.Enabled {
			shutdown, err := telemetry.InitTracer(cfg.Tracing.ServiceName, os.Stdout, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error("tracer shutdown", slog.Any("error", err))
				}
			}()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := a.srv.Run(ctx); err != nil {
			return err
		}
		logger.Info("server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides server.port)")
}
