package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/socialpulse-onboarding/pkg/logger"
	"github.com/Proton-105/socialpulse-onboarding/pkg/metrics"
)

const internalMessage = "internal error"

type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	return &Handler{
		log:           log,
		sentryEnabled: sentryEnabled,
	}
}

// Handle logs err, reports it when severe and returns the AppError view of it.
// Errors outside the taxonomy come back as internal errors. Internal errors are
// returned with a generic message.
func (h *Handler) Handle(ctx context.Context, err error) *AppError {
	if err == nil {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	log := h.log
	if log == nil {
		log = slog.Default()
	}

	var appErr *AppError
	if !errors.As(err, &appErr) || appErr == nil {
		appErr = NewInternalError("request", err)
	}

	attrs := []slog.Attr{
		slog.String("kind", string(appErr.Kind)),
		slog.String("code", appErr.Code),
		slog.String("message", err.Error()),
		slog.String("severity", string(appErr.Severity)),
	}

	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		attrs = append(attrs, slog.String("correlation_id", correlationID))
	}

	metrics.RecordError(string(appErr.Kind), string(appErr.Severity))

	switch appErr.Severity {
	case SeverityHigh, SeverityCritical:
		log.Error("application error", attrsToArgs(attrs)...)
		if h.sentryEnabled {
			h.sendToSentry(err)
		}
	default:
		log.Warn("request rejected", attrsToArgs(attrs)...)
	}

	if appErr.Kind == KindInternal {
		// the cause stays in the log and in Sentry; callers only see the code
		public := *appErr
		public.Message = internalMessage
		return &public
	}

	return appErr
}

func (h *Handler) sendToSentry(err error) {
	if err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		var appErr *AppError
		if errors.As(err, &appErr) && appErr != nil {
			if appErr.Code != "" {
				scope.SetTag("code", appErr.Code)
			}

			if appErr.Severity != "" {
				scope.SetTag("severity", string(appErr.Severity))
			}
		}

		sentry.CaptureException(err)
	})
}

func attrsToArgs(attrs []slog.Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}

	return args
}
