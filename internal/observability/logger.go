package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the JSON logger every binary writes to stdout, which
// CloudWatch picks up as-is for the Lambda functions. An unknown level
// falls back to info.
func NewLogger(service, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Sampling = nil
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.InitialFields = map[string]interface{}{"service": service}
	return cfg.Build()
}

// EventLogger returns a child logger with lifecycle-event fields.
func EventLogger(base *zap.Logger, handler, requestType, requestID, logicalID string) *zap.Logger {
	return base.With(
		zap.String("handler", handler),
		zap.String("request_type", requestType),
		zap.String("request_id", requestID),
		zap.String("logical_resource_id", logicalID),
	)
}
