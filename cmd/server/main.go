package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"loanapproval/internal/auditbackend"
	"loanapproval/internal/decision"
	"loanapproval/internal/decision/handler"
	decisionmetrics "loanapproval/internal/decision/metrics"
	"loanapproval/internal/platform/config"
	"loanapproval/internal/platform/httpserver"
	"loanapproval/internal/platform/logger"
	"loanapproval/internal/platform/metrics"
	httptransport "loanapproval/internal/transport/http"
	"loanapproval/pkg/platform/audit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		slog.Error("loan approval server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	auditMetrics := audit.NewMetrics(reg)

	backend, err := auditbackend.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer backend.Close()

	recorder := audit.NewRecorder(backend.Writer, cfg.Audit.TableName,
		audit.WithRetention(cfg.Audit.Retention),
		audit.WithLogger(log),
		audit.WithBreaker(audit.NewBreaker(cfg.Audit.BreakerThreshold, cfg.Audit.BreakerCooldown)),
		audit.WithMetrics(auditMetrics),
	)

	opts := []decision.Option{
		decision.WithLogger(log),
		decision.WithMetrics(decisionmetrics.New(reg)),
	}
	if cfg.Audit.Enabled() && cfg.Audit.Readable() && backend.Reader != nil {
		opts = append(opts, decision.WithAuditReader(backend.Reader, cfg.Audit.TableName))
	}
	service := decision.NewService(recorder, opts...)

	loanHandler := handler.New(service, log,
		handler.WithAllowOrigin(cfg.CORS.AllowedOrigins),
		handler.WithCORSOnError(cfg.CORS.OnError),
		handler.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		handler.WithPreflight(cors.Options{
			AllowedOrigins: cfg.CORS.Origins(),
			AllowedMethods: cfg.CORS.Methods(),
			AllowedHeaders: cfg.CORS.Headers(),
			MaxAge:         cfg.CORS.MaxAge,
		}),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	}, loanHandler)

	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Serve(gctx, srv, cfg.Server, log)
	})
	if pruner := backend.Pruner(cfg.Audit, log, auditMetrics); pruner != nil {
		g.Go(func() error {
			if err := pruner.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("audit pruner: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}
