package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lol-blacklist/internal/web"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard",
	Long: `Run the web dashboard.

The listen address comes from ADDR (default :8501). Inside AWS Lambda the
dashboard is served through the API Gateway proxy adapter instead.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	handler, err := newHandler(a)
	if err != nil {
		return err
	}

	if a.cfg.Lambda {
		a.logger.Info("starting in lambda mode")
		adapter := httpadapter.New(handler)
		lambda.Start(adapter.ProxyWithContext)
		return nil
	}

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	a.logger.Info("dashboard listening", "addr", a.cfg.Addr, "region", a.manager.Region(), "auth", a.cfg.DashboardPasswordHash != "")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newHandler(a *app) (http.Handler, error) {
	templates, err := web.NewTemplates(content)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	staticFS, err := fs.Sub(content, "static")
	if err != nil {
		return nil, fmt.Errorf("static fs: %w", err)
	}
	server := web.NewServer(a.manager, templates, a.settings, web.Options{
		SettingsPath: a.cfg.SettingsPath,
		PasswordHash: a.cfg.DashboardPasswordHash,
		LiveRefresh:  a.cfg.LiveRefresh,
		Logger:       a.logger,
	})
	return server.Handler(staticFS), nil
}
