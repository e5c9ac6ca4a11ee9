package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"loanapproval/internal/auditbackend"
	"loanapproval/internal/decision"
	"loanapproval/internal/decision/handler"
	"loanapproval/internal/platform/config"
	"loanapproval/internal/platform/logger"
	"loanapproval/pkg/platform/audit"
)

// main builds the handler once per execution environment; warm invocations
// reuse the audit client.
func main() {
	cfg, err := config.Load(config.WithDefaultBackend(config.DefaultLambdaBackend))
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	backend, err := auditbackend.Open(context.Background(), cfg, log)
	if err != nil {
		log.Error("open audit backend", "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	recorder := audit.NewRecorder(backend.Writer, cfg.Audit.TableName,
		audit.WithRetention(cfg.Audit.Retention),
		audit.WithLogger(log),
		audit.WithBreaker(audit.NewBreaker(cfg.Audit.BreakerThreshold, cfg.Audit.BreakerCooldown)),
	)
	service := decision.NewService(recorder, decision.WithLogger(log))
	h := handler.New(service, log,
		handler.WithAllowOrigin(cfg.CORS.AllowedOrigins),
		handler.WithCORSOnError(cfg.CORS.OnError),
	)

	lambda.Start(h.HandleAPIGateway)
}
