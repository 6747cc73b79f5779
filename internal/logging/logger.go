package logging

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type requestIDKey struct{}

// New builds the process logger: JSON in production, console otherwise.
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// WithRequestID stores the request ID in a standard context.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID extracts the request ID from a standard context.
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// Logger provides request-scoped structured logging for services.
type Logger struct {
	z *zap.Logger
}

// NewLogger creates a logger bound to the request ID carried by ctx.
func NewLogger(ctx context.Context) *Logger {
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}
	return &Logger{z: zap.L().With(zap.String("request_id", requestID))}
}

func (l *Logger) LogError(operation string, err error, fields ...zap.Field) {
	l.z.Error(operation, append(fields, zap.String("operation", operation), zap.Error(err))...)
}

func (l *Logger) LogInfo(operation string, message string, fields ...zap.Field) {
	l.z.Info(message, append(fields, zap.String("operation", operation))...)
}

func (l *Logger) LogWarn(operation string, message string, fields ...zap.Field) {
	l.z.Warn(message, append(fields, zap.String("operation", operation))...)
}
