package logger

import (
	"go.uber.org/zap"
)

type Logger interface {
	Tracef(format string, values ...interface{})
	Debugf(format string, values ...interface{})
	Infof(format string, values ...interface{})
	Warnf(format string, values ...interface{})
	Errorf(format string, values ...interface{})
	Criticalf(format string, values ...interface{})
	Panicf(format string, values ...interface{})
	Fatalf(format string, values ...interface{})
}

var _ Logger = (*zapLogger)(nil)

// zapLogger adapts a zap SugaredLogger to the Logger interface.
type zapLogger struct {
	sugared *zap.SugaredLogger
}

// New returns a production Logger backed by zap.
func New() (Logger, error) {
	base, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugared: base.Sugar()}, nil
}

// Wrap adapts an existing zap logger (used by tests and embedders).
func Wrap(base *zap.Logger) Logger {
	return &zapLogger{sugared: base.Sugar()}
}

func (l *zapLogger) Tracef(format string, values ...interface{}) {
	// zap has no trace level, map to debug
	l.sugared.Debugf(format, values...)
}

func (l *zapLogger) Debugf(format string, values ...interface{}) {
	l.sugared.Debugf(format, values...)
}

func (l *zapLogger) Infof(format string, values ...interface{}) {
	l.sugared.Infof(format, values...)
}

func (l *zapLogger) Warnf(format string, values ...interface{}) {
	l.sugared.Warnf(format, values...)
}

func (l *zapLogger) Errorf(format string, values ...interface{}) {
	l.sugared.Errorf(format, values...)
}

func (l *zapLogger) Criticalf(format string, values ...interface{}) {
	l.sugared.DPanicf(format, values...)
}

func (l *zapLogger) Panicf(format string, values ...interface{}) {
	l.sugared.Panicf(format, values...)
}

func (l *zapLogger) Fatalf(format string, values ...interface{}) {
	l.sugared.Fatalf(format, values...)
}
