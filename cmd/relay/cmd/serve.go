package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nfrund/relay/internal/config"
	"github.com/nfrund/relay/internal/logging"
	"github.com/nfrund/relay/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay server",
	Long: `Run the relay server. GraphQL is served over websocket (graphql-transport-ws
and graphql-ws) and HTTP POST at the relay path; every other request gets a
plain "OK" health response.

Flags override environment variables, which override a .env file.

Examples:
  relay serve
  relay serve --port 8080 --message-interval 1s
  RELAY_PASSTHROUGH_ARGS=true relay serve`,
	RunE: runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.Int("port", 4000, "listen port")
	flags.String("path", "/graphql", "GraphQL endpoint path")
	flags.Bool("passthrough-args", false, "honour author, channel, important and tags of sendMessage")
	flags.Duration("message-interval", 0, "interval of the sample message generator")
	flags.Duration("status-interval", 0, "interval of the sample status generator")
	flags.Duration("settings-interval", 0, "interval of the sample settings generator")
	flags.String("log-format", "text", "log format: text or json")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.Bool("tracing", false, "export traces of mirrored events to zipkin")

	bind := map[string]string{
		config.KeyPort:             "port",
		config.KeyRelayPath:        "path",
		config.KeyPassThroughArgs:  "passthrough-args",
		config.KeyMessageInterval:  "message-interval",
		config.KeyStatusInterval:   "status-interval",
		config.KeySettingsInterval: "settings-interval",
		config.KeyLogFormat:        "log-format",
		config.KeyLogLevel:         "log-level",
		config.KeyTracingEnabled:   "tracing",
	}
	for key, flag := range bind {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	config.LoadEnv()
	cfg, err := config.New(v)
	if err != nil {
		return err
	}
	logging.New(cfg.GetLogFormat(), cfg.GetLogLevel())

	s, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	s.RegisterRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return s.Start(ctx)
}
