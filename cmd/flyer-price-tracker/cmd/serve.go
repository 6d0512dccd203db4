package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/donaldgifford/flyer-price-tracker/internal/api/handlers"
	"github.com/donaldgifford/flyer-price-tracker/internal/api/middleware"
	"github.com/donaldgifford/flyer-price-tracker/internal/engine"
	"github.com/donaldgifford/flyer-price-tracker/internal/telemetry"
	"github.com/donaldgifford/flyer-price-tracker/internal/web"
	"github.com/donaldgifford/flyer-price-tracker/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and refresh scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, Version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	a, err := buildApp(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := telemetry.RegisterCatalogMetrics(telemetry.Meter(), a.catalog); err != nil {
		return err
	}

	sched, err := engine.NewScheduler(a.engine, a.store, cfg.Schedule.RefreshInterval, logger.Component(log, "scheduler"))
	if err != nil {
		return err
	}

	sched.RecoverStaleRefreshRuns(ctx)
	if n, err := a.engine.Load(ctx); err != nil {
		log.Warn("loading persisted catalog failed", "error", err)
	} else {
		log.Info("catalog loaded", "products", n)
	}

	if cfg.Schedule.RefreshOnStart {
		go func() {
			if err := sched.RunNow(ctx, engine.TriggerStartup); err != nil {
				log.Error("startup refresh failed", "error", err)
			}
		}()
	}

	sched.Start()
	log.Info("scheduler started", "interval", cfg.Schedule.RefreshInterval)

	e := newServer(a, log)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           e,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := e.StartServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Info("shutting down server")

	<-sched.Stop().Done()

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func newServer(a *app, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(
		middleware.Recovery(log),
		middleware.RequestLog(logger.Component(log, "http")),
		middleware.Tracing(otel.GetTracerProvider()),
		middleware.Metrics(),
	)

	pingers := []handlers.Pinger{a.store}
	if a.cache != nil {
		pingers = append(pingers, a.cache)
	}
	handlers.RegisterHealthRoutes(e, handlers.NewHealthHandler(pingers...))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Flyer Price Tracker API", Version))
	handlers.RegisterSearchRoutes(api, handlers.NewSearchHandler(a.searcher))
	handlers.RegisterCatalogRoutes(api, handlers.NewCatalogHandler(a.catalog))
	handlers.RegisterRefreshRoutes(api, handlers.NewRefreshHandler(a.engine, a.store))

	web.Register(e, web.NewHandler(a.searcher, logger.Component(log, "web")))

	return e
}
