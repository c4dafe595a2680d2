/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/ssargent/blmreader/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the REST API server. Clients open BLM files on the server's
filesystem and read their metadata, records and fields over HTTP.

Every /api/v1 request must carry the configured key in the X-API-Key header.
Prometheus metrics are served on /metrics and the API description on /swagger/.

Examples:
  blm serve
  blm serve --port 9090 --bind 0.0.0.0 --api-key mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return err
		}

		cfg := api.ServerConfig{
			Port:   a.cfg.Server.Port,
			Bind:   a.cfg.Server.Bind,
			APIKey: a.cfg.Server.APIKey,
			Logger: a.logger,
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.APIKey, _ = cmd.Flags().GetString("api-key")
		}
		if cfg.APIKey == "" || cfg.APIKey == "auto" {
			return fmt.Errorf("no API key configured: run 'blm init' or pass --api-key")
		}

		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}
		starter := container.GetServerFactory().CreateServerStarter()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		level.Info(a.logger).Log("msg", "starting server", "bind", cfg.Bind, "port", cfg.Port)
		return starter.StartServer(ctx, api.NewSessionRegistry(a.openFile), cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to listen on")
	serveCmd.Flags().String("api-key", "", "API key for client authentication (default: from config)")
}
