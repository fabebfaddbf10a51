package sentry

import (
	"context"
	"time"

	"github.com/bldrfitness/bldr/internal/config"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/getsentry/sentry-go"
)

// Service reports errors and spans to Sentry. Every method is a no-op when
// Sentry is disabled.
type Service struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

func NewSentryService(cfg *config.Configuration, log *logger.Logger) *Service {
	svc := &Service{cfg: cfg, logger: log}
	if !cfg.Sentry.Enabled {
		return svc
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		EnableTracing:    true,
		TracesSampleRate: cfg.Sentry.SampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Errorw("failed to initialize sentry", "error", err)
		svc.cfg = nil
		return svc
	}

	log.Infow("sentry initialized", "environment", cfg.Sentry.Environment)
	return svc
}

func (s *Service) enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.Sentry.Enabled
}

// CaptureException reports err with the request and user ids from ctx.
func (s *Service) CaptureException(ctx context.Context, err error) {
	if !s.enabled() || err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if requestID := types.GetRequestID(ctx); requestID != "" {
			scope.SetTag("request_id", requestID)
		}
		if userID := types.GetUserID(ctx); userID != "" {
			scope.SetUser(sentry.User{ID: userID})
		}
		hub.CaptureException(err)
	})
}

// StartDBSpan starts a child span for a database operation.
func (s *Service) StartDBSpan(ctx context.Context, operation string, params map[string]interface{}) (*sentry.Span, context.Context) {
	if !s.enabled() {
		return nil, ctx
	}

	span := sentry.StartSpan(ctx, operation)
	span.Op = "db.postgres"
	span.Description = operation
	for k, v := range params {
		span.SetData(k, v)
	}
	return span, span.Context()
}

// Flush waits for buffered events, used on shutdown.
func (s *Service) Flush(timeout time.Duration) {
	if !s.enabled() {
		return
	}
	sentry.Flush(timeout)
}
