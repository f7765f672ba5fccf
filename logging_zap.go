package scheduler

import "go.uber.org/zap"

// zapLogger adapts *zap.SugaredLogger to the scheduler's Logger
// interface. It is the default Logger used by New when the caller
// doesn't supply one via WithLogger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger wraps a *zap.Logger as a scheduler Logger.
func NewZapLogger(l *zap.Logger) Logger {
	return &zapLogger{sugar: l.Sugar()}
}

func (l *zapLogger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *zapLogger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }
func (l *zapLogger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *zapLogger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }

// defaultLogger builds a production zap logger wrapped as a Logger.
// Failures to build the logger fall back to the no-op logger rather
// than panicking, since logging must never be able to crash the
// scheduler's construction path.
func defaultLogger() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		return noopLogger{}
	}
	return NewZapLogger(z)
}
