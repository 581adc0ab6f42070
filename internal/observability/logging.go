// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// LogContextKey is a type for context keys used by the logging package.
type LogContextKey string

// CorrelationID is the context key carrying the per-interaction correlation ID.
const CorrelationID LogContextKey = "correlation_id"

// GenerateCorrelationID creates a new unique correlation ID.
func GenerateCorrelationID() string {
	return uuid.NewString()
}

// WithCorrelationID returns a new context with the given correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationID, id)
}

// ExtractCorrelationID retrieves the correlation ID from the context.
func ExtractCorrelationID(ctx context.Context) string {
	if id := ctx.Value(CorrelationID); id != nil {
		return id.(string)
	}
	return ""
}

// GatewayLogger provides structured logging for gateway round trips.
type GatewayLogger struct {
	gateway string
	logger  *Logger
}

// NewGatewayLogger creates a new GatewayLogger for the named gateway.
func NewGatewayLogger(gateway string) *GatewayLogger {
	return &GatewayLogger{
		gateway: gateway,
		logger:  GlobalLogger,
	}
}

// LogCall logs a completed gateway call.
func (l *GatewayLogger) LogCall(ctx context.Context, method, path string, status int) {
	l.logger.InfoContext(ctx, "gateway call",
		slog.String("gateway", l.gateway),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// LogError logs a failed gateway call.
func (l *GatewayLogger) LogError(ctx context.Context, method, path string, err error) {
	l.logger.ErrorContext(ctx, "gateway error",
		slog.String("gateway", l.gateway),
		slog.String("method", method),
		slog.String("path", path),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// StoreLogger provides structured logging for in-memory store mutations.
type StoreLogger struct {
	store  string
	logger *Logger
}

// NewStoreLogger creates a new StoreLogger for the named store.
func NewStoreLogger(store string) *StoreLogger {
	return &StoreLogger{
		store:  store,
		logger: GlobalLogger,
	}
}

// LogMutation logs an applied store mutation.
func (l *StoreLogger) LogMutation(ctx context.Context, operation string, fields map[string]interface{}) {
	attrs := []any{
		slog.String("store", l.store),
		slog.String("operation", operation),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.InfoContext(ctx, "store mutation", attrs...)
}

// LogRollback logs an optimistic mutation being reverted.
func (l *StoreLogger) LogRollback(ctx context.Context, operation string, err error) {
	l.logger.WarnContext(ctx, "optimistic rollback",
		slog.String("store", l.store),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}

// LogError logs a store error.
func (l *StoreLogger) LogError(ctx context.Context, operation string, err error) {
	l.logger.ErrorContext(ctx, "store error",
		slog.String("store", l.store),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.String("correlation_id", ExtractCorrelationID(ctx)),
	)
}
