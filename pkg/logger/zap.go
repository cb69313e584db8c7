package logger

import (
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zapLogger struct {
	base *zap.SugaredLogger
}

// NewZap builds the zap backend: production config for ENV=production,
// colored development config otherwise.
func NewZap(env string, level slog.Level) (Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = []string{"stdout"}
	config.Level = zap.NewAtomicLevelAt(zapLevel(level))

	base, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return NewZapFrom(base), nil
}

func NewZapFrom(base *zap.Logger) Logger {
	return &zapLogger{base: base.Sugar()}
}

func (l *zapLogger) Debug(message string, args ...any) {
	l.base.Debugw(message, args...)
}

func (l *zapLogger) Info(message string, args ...any) {
	l.base.Infow(message, args...)
}

func (l *zapLogger) Warn(message string, args ...any) {
	l.base.Warnw(message, args...)
}

func (l *zapLogger) Error(message string, args ...any) {
	l.base.Errorw(message, args...)
}

// Critical is logged at error level with a severity marker; zap's DPanic
// would panic in development.
func (l *zapLogger) Critical(message string, args ...any) {
	attrs := append([]any{"severity", "CRITICAL"}, args...)
	l.base.Errorw(message, attrs...)
}

func (l *zapLogger) BusinessError(message string, err error, args ...any) {
	if err == nil {
		return
	}

	attrs := append([]any{"err", err}, args...)
	l.base.Warnw(message, attrs...)
}

func (l *zapLogger) InternalError(message string, err error, args ...any) {
	if err == nil {
		return
	}

	attrs := append([]any{"err", err}, args...)
	l.base.Errorw(message, attrs...)
}

func (l *zapLogger) With(args ...any) Logger {
	return &zapLogger{base: l.base.With(args...)}
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level <= slog.LevelDebug:
		return zapcore.DebugLevel
	case level <= slog.LevelInfo:
		return zapcore.InfoLevel
	case level <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
