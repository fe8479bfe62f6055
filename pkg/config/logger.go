package config

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger correlates log lines with the active span via Ctx(ctx).
type Logger struct {
	*otelzap.Logger
	service string
}

// NewLogger writes JSON lines to stderr, or to outputPaths when given.
func NewLogger(service string, app AppConfig, outputPaths ...string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.TimeKey = "timestamp"

	if len(outputPaths) > 0 {
		cfg.OutputPaths = outputPaths
		cfg.ErrorOutputPaths = outputPaths
	}

	if app.IsDevelopment() {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	zapLogger, err := cfg.Build(zap.Fields(
		zap.String("service", service),
		zap.String("version", app.Version),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	return &Logger{
		Logger:  otelzap.New(zapLogger, otelzap.WithMinLevel(zap.InfoLevel)),
		service: service,
	}, nil
}

// NewNopLogger is used by tests and tools that must stay quiet.
func NewNopLogger() *Logger {
	return &Logger{Logger: otelzap.New(zap.NewNop()), service: "nop"}
}

func (l *Logger) Service() string {
	return l.service
}
