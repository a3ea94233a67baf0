package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gymflex/gymflex-cli/internal/web"
)

const shutdownTimeout = 5 * time.Second

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar and admin panel as a local web page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Cfg.ListenAddr()
			}

			srv, err := web.NewServer(app.Cfg, app.API, app.Sessions, app.State, app.Logger)
			if err != nil {
				return err
			}
			handler, err := srv.Handler()
			if err != nil {
				return err
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(app.Ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpServer.ListenAndServe()
			}()

			app.Logger.Info("Web view listening", zap.String("addr", addr))
			fmt.Printf("\n✓ Serving on http://%s (Ctrl+C to stop)\n\n", addr)

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("web server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down web server: %w", err)
			}
			app.Logger.Info("Web view stopped")
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (defaults to webListenAddr from config)")

	return cmd
}
