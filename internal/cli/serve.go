package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andremarcal/draftsync/internal/api"
	"github.com/andremarcal/draftsync/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local HTTP API for the host UI",
	Long: `Serve every operation over HTTP on 127.0.0.1 so a desktop UI can
drive them. The port comes from --port or DRAFTSYNC_PORT.

Example:
  draftsync serve --port 8765`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		port = cfg.Port()
	}

	server := api.NewServer(api.ServerConfig{
		Port:      port,
		Service:   service,
		Logger:    logger,
		Version:   config.Version,
		StartTime: time.Now(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Infow("received shutdown signal", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Infow("shutdown complete")
	return nil
}
