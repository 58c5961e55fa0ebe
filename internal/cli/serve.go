package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/notebot/internal/server"
	"github.com/lucasnoah/notebot/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook listener",
	Long: `Start the HTTP listener that receives GitLab webhook events on /webhook.
Each matching note event is processed by its command's pipeline in the
background; the webhook sender is acknowledged immediately.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		shutdown, err := telemetry.InitTracer("notebot", a.logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				a.logger.Warn("tracer shutdown failed", slog.String("error", err.Error()))
			}
		}()

		host, _ := cmd.Flags().GetString("host")
		port, _ := cmd.Flags().GetInt("port")
		if host == "" {
			host = a.cfg.Server.Host
		}
		if port == 0 {
			port = a.cfg.Server.Port
		}

		a.logger.Info("registered commands", slog.Any("commands", a.registry.Names()))
		return server.New(host, port, a.service, a.logger).Start()
	},
}

func init() {
	serveCmd.Flags().String("host", "", "Listen host (overrides config)")
	serveCmd.Flags().Int("port", 0, "Listen port (overrides config)")
}
