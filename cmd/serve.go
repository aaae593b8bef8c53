package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleartag/cleartag/internal/handlers"
	"github.com/cleartag/cleartag/internal/station"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the kiosk web interface",
		Long: `Starts the station kiosk page on the configured address.

The page shows the camera state, a capture button and the results panel of
the last scan. The same actions are available as JSON under /api.`,
		Example: `  # Start the kiosk on the default address :8888
  cleartag serve

  # Scan against another server and let it capture
  cleartag serve --server http://scanner.local:8000 --mode remote --listen :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := opts.cfg, opts.logger
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}

			st, err := station.FromConfig(cfg, opts.userAgent(), logger)
			if err != nil {
				return err
			}
			status := st.Start(cmd.Context())
			defer st.Shutdown()
			logger.Info("Camera started", "live", status.Live, "facing", string(status.Facing), "notice", status.Notice.Text)

			handler := handlers.New(st, cfg.Scan.Quality, logger)
			server := &http.Server{
				Addr:              cfg.Listen,
				Handler:           handlers.NewRouter(handler),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				logger.Info("Kiosk available", "addr", cfg.Listen, "server", cfg.ServerURL, "mode", cfg.Mode)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				logger.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("Server shutdown failed", "err", err)
					return err
				}
				logger.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", ":8888", "Address to listen on")

	return cmd
}
