package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/matchclock/internal/adapters/http/api"
	"github.com/okian/matchclock/internal/adapters/http/site"
	"github.com/okian/matchclock/internal/adapters/http/swagger"
	"github.com/okian/matchclock/internal/adapters/repository"
	service "github.com/okian/matchclock/internal/app"
	"github.com/okian/matchclock/internal/config"
	"github.com/okian/matchclock/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func serveCmd(c *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the match clock and its HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				c.cfg.Addr = addr
			}
			return c.serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config addr)")
	return cmd
}

// newService builds the match session service from configuration.
func newService(cfg *config.Config, store repository.Store, log logger.Logger) *service.Service {
	return service.New(store,
		service.WithLogger(log),
		service.WithLocale(cfg.Locale),
		service.WithTickInterval(cfg.TickInterval()),
		service.WithFormat24h(cfg.ClockFormat24h),
		service.WithDefaultCountdownMinutes(cfg.DefaultCountdownMinutes),
		service.WithHalfTimeMinute(cfg.HalfTimeMinute),
		service.WithMilestoneEvery(cfg.MilestoneEvery),
		service.WithQueueSize(cfg.PersistQueueSize),
		service.WithWorkerCount(cfg.PersistWorkers),
		service.WithRetries(cfg.PersistRetries),
		service.WithRetryBackoff(cfg.RetryBackoff()),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithRollbackOnPersistFailure(cfg.RollbackOnPersistFailure),
		service.WithMaxScorersLimit(cfg.MaxScorersLimit),
		service.WithNotificationBuffer(cfg.NotificationBuffer),
	)
}

// newMux registers the API, its docs and the scoreboard page.
func newMux(ctx context.Context, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}

func (c *cli) serve(ctx context.Context) error {
	store, err := c.openSeededStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			c.log.Error(ctx, "close store", logger.Error(err))
		}
	}()

	svc := newService(c.cfg, store, c.log.Named("service"))
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              c.cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		c.log.Info(ctx, "starting HTTP server", logger.String("addr", c.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		c.log.Info(ctx, "shutting down server...")
	case runErr = <-serveErr:
		c.log.Error(ctx, "HTTP server failed", logger.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		c.log.Error(ctx, "service stop failed", logger.Error(err))
	}

	c.log.Info(ctx, "server stopped")
	return runErr
}
