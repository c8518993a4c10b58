package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"subgate/internal/app"
	"subgate/internal/config"
	"subgate/pkg/logging"
)

// serveConfigPath points at the YAML configuration file.
var serveConfigPath string

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveCmd starts the gateway server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the subgate gateway server",
	Long: `Starts the gateway server. A single HTTP listener serves both the MCP
endpoint for tool calls and the OAuth callback endpoint for interactive
logins. The server runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, args []string) error {
	level := logging.LevelInfo
	if serveDebug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	cfg, err := config.LoadConfig(serveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.New(cfg, GetVersion()).Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "subgate.yaml", "Path to the YAML configuration file")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
}
