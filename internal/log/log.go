// Package log provides centralized logging for the daemon, backed by zap.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

var sugar *zap.SugaredLogger
var base *zap.Logger

// Init initializes the package-level logger. Debug mode switches to zap's
// development config (console encoder, DEBUG level).
func Init(debug bool) error {
	var logger *zap.Logger
	var err error

	if debug {
		logger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		logger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	base = logger
	sugar = logger.Sugar()
	return nil
}

// GetZapLogger returns the base zap logger for consumers that need the
// structured interface (like GORM's logger adapter).
func GetZapLogger() *zap.Logger {
	if base == nil {
		base, _ = zap.NewProduction(zap.AddCallerSkip(1))
		sugar = base.Sugar()
	}
	return base
}

// GetSugaredLogger returns the sugared logger instance
func GetSugaredLogger() *zap.SugaredLogger {
	if sugar == nil {
		base, _ = zap.NewProduction(zap.AddCallerSkip(1))
		sugar = base.Sugar()
	}
	return sugar
}

// Sync flushes any buffered log entries
func Sync() {
	if sugar != nil {
		sugar.Sync()
	}
}

// Package-level convenience functions

func Debug(args ...interface{}) {
	sugar.Debug(args...)
}

func Debugf(template string, args ...interface{}) {
	sugar.Debugf(template, args...)
}

func Info(args ...interface{}) {
	sugar.Info(args...)
}

func Infof(template string, args ...interface{}) {
	sugar.Infof(template, args...)
}

func Warn(args ...interface{}) {
	sugar.Warn(args...)
}

func Warnf(template string, args ...interface{}) {
	sugar.Warnf(template, args...)
}

func Error(args ...interface{}) {
	sugar.Error(args...)
}

func Errorf(template string, args ...interface{}) {
	sugar.Errorf(template, args...)
}

func Errorln(args ...interface{}) {
	sugar.Error(args...)
}

func Fatal(args ...interface{}) {
	sugar.Fatal(args...)
	os.Exit(1)
}

func Fatalf(template string, args ...interface{}) {
	sugar.Fatalf(template, args...)
	os.Exit(1)
}
