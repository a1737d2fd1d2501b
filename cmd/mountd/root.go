package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/en9inerd/go-mount/config"
	"github.com/en9inerd/go-mount/internal/logging"
	"github.com/en9inerd/go-mount/internal/server"
)

var rootCmd = &cobra.Command{
	Use:           "mountd",
	Short:         "mountd serves a table of prefix mounts",
	Long:          `mountd mounts static directories, reverse proxies and fixed responses below URL path prefixes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "mountd.yaml", "Path to the configuration file")
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	srv    *server.Server
}

// load reads the configuration named by --config and builds the server.
func load(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	srv, err := server.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, srv: srv}, nil
}
