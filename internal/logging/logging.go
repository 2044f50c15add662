// Package logging bridges this module's zap-based structured logging to
// the btclog.Logger interface the wire-protocol packages (ravencoin/peer)
// expect, following the btcsuite convention of a package-level logger a
// caller wires up at startup rather than a global singleton the library
// owns.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/btcsuite/btclog"
)

// zapAdapter implements btclog.Logger on top of a zap.SugaredLogger.
type zapAdapter struct {
	sugar *zap.SugaredLogger
	level btclog.Level
}

// New builds a btclog.Logger backed by a zap.SugaredLogger at the given
// name (shown as the "logger" field in structured output) and level.
func New(base *zap.Logger, name string, level btclog.Level) btclog.Logger {
	return &zapAdapter{
		sugar: base.Named(name).Sugar(),
		level: level,
	}
}

// NewProduction builds a zap.Logger suitable for a long-running daemon
// (JSON output, at the zap level matching level) and wraps it as a
// btclog.Logger for name.
func NewProduction(name string, level btclog.Level) (btclog.Logger, *zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	base, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	return New(base, name, level), base, nil
}

func zapLevel(l btclog.Level) zapcore.Level {
	switch l {
	case btclog.LevelTrace, btclog.LevelDebug:
		return zapcore.DebugLevel
	case btclog.LevelInfo:
		return zapcore.InfoLevel
	case btclog.LevelWarn:
		return zapcore.WarnLevel
	case btclog.LevelError:
		return zapcore.ErrorLevel
	case btclog.LevelCritical, btclog.LevelOff:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func (a *zapAdapter) Trace(args ...interface{})                 { a.sugar.Debug(args...) }
func (a *zapAdapter) Tracef(format string, args ...interface{}) { a.sugar.Debugf(format, args...) }
func (a *zapAdapter) Debug(args ...interface{})                 { a.sugar.Debug(args...) }
func (a *zapAdapter) Debugf(format string, args ...interface{}) { a.sugar.Debugf(format, args...) }
func (a *zapAdapter) Info(args ...interface{})                  { a.sugar.Info(args...) }
func (a *zapAdapter) Infof(format string, args ...interface{})  { a.sugar.Infof(format, args...) }
func (a *zapAdapter) Warn(args ...interface{})                  { a.sugar.Warn(args...) }
func (a *zapAdapter) Warnf(format string, args ...interface{})  { a.sugar.Warnf(format, args...) }
func (a *zapAdapter) Error(args ...interface{})                 { a.sugar.Error(args...) }
func (a *zapAdapter) Errorf(format string, args ...interface{}) { a.sugar.Errorf(format, args...) }
func (a *zapAdapter) Critical(args ...interface{})              { a.sugar.Error(args...) }
func (a *zapAdapter) Criticalf(format string, args ...interface{}) {
	a.sugar.Errorf(format, args...)
}

func (a *zapAdapter) Level() btclog.Level       { return a.level }
func (a *zapAdapter) SetLevel(level btclog.Level) { a.level = level }
