package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type logger interface {
	newSubLogger(prefix string) logger

	Printf(fmt string, v ...any)
	Errorf(fmt string, v ...any)
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// newLogger builds the root logger. The returned function flushes buffered
// entries and should run before the process exits.
func newLogger(cfg *logConfig) (logger, func(), error) {
	var zc zap.Config

	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)

	if err != nil {
		return nil, nil, err
	}

	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build()

	if err != nil {
		return nil, nil, err
	}

	return &zapLogger{sugar: l.Sugar()}, func() { _ = l.Sync() }, nil
}

func newNopLogger() logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

func (l *zapLogger) newSubLogger(prefix string) logger {
	return &zapLogger{
		sugar: l.sugar.Named(prefix),
	}
}

func (l *zapLogger) Printf(format string, v ...any) {
	l.sugar.Infof(format, v...)
}

func (l *zapLogger) Errorf(format string, v ...any) {
	l.sugar.Errorf(format, v...)
}
