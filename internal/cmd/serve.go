package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/dmdash/internal/config"
	"github.com/Iron-Ham/dmdash/internal/errors"
	"github.com/Iron-Ham/dmdash/internal/fixture"
	"github.com/Iron-Ham/dmdash/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a local Data Manager API from fixture data",
	Long: `Serve the project, task, view and boxes endpoints the dashboard uses,
backed by a YAML fixture file (serve.fixture) or built-in sample data.

Point the dashboard at it with:
  dmdash --api http://127.0.0.1:8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveToken   string
	serveLatency time.Duration
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides serve.addr)")
	serveCmd.Flags().String("fixture", "", "Fixture YAML file (overrides serve.fixture)")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "Require this API token")
	serveCmd.Flags().DurationVar(&serveLatency, "latency", 0, "Delay every response by this long")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := loadFixture(cfg.Serve)
	if err != nil {
		return err
	}

	// No TUI to draw over, so request logs go to stderr.
	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), cfg.Logging.Level)
	defer logger.Close()

	srv := &http.Server{
		Handler: fixture.NewServer(data, fixture.Options{
			Token:   serveToken,
			Latency: serveLatency,
			Logger:  logger,
		}).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Serve.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Serve.Addr, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d project(s) on http://%s\n", len(data.Projects), ln.Addr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, srv, ln)
}

// serve runs srv on ln until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func loadFixture(cfg config.ServeConfig) (*fixture.Data, error) {
	if cfg.Fixture == "" {
		return fixture.Default(), nil
	}
	data, err := fixture.Load(cfg.Fixture)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixture %s: %w", cfg.Fixture, err)
	}
	return data, nil
}
