// Package logging builds the loggers a hook reports to.
//
// The json and text formats are log/slog handlers. The zap format writes
// through a go.uber.org/zap core with a JSON encoder and ISO8601 timestamps.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatZap  = "zap"
)

// Logger writes info and error lines with key/value attributes.
type Logger struct {
	slog  *slog.Logger
	sugar *zap.SugaredLogger
}

// New returns a Logger writing to w at the given level and format.
func New(w io.Writer, level, format string) (*Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", FormatJSON:
		return &Logger{slog: slog.New(slog.NewJSONHandler(w, handlerOpts))}, nil
	case FormatText:
		return &Logger{slog: slog.New(slog.NewTextHandler(w, handlerOpts))}, nil
	case FormatZap:
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.TimeKey = "ts"
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(zapcore.Lock(zapcore.AddSync(w))),
			zapLevel(lvl),
		)

		// Components that only speak slog share the writer through a JSON handler.
		return &Logger{
			slog:  slog.New(slog.NewJSONHandler(w, handlerOpts)),
			sugar: zap.New(core).Sugar(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l.sugar != nil {
		l.sugar.Infow(msg, args...)
		return
	}
	l.slog.Info(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	if l.sugar != nil {
		l.sugar.Errorw(msg, args...)
		return
	}
	l.slog.Error(msg, args...)
}

// Slog returns a *slog.Logger for components that take one directly,
// such as the transport and throttle packages.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Sync flushes buffered zap output. It is a no-op for slog formats.
// Terminals and pipes cannot be fsynced; those errors are not reported.
func (l *Logger) Sync() error {
	if l.sugar == nil {
		return nil
	}

	err := l.sugar.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}

	return 0, fmt.Errorf("unknown log level %q", level)
}

func zapLevel(lvl slog.Level) zapcore.Level {
	switch {
	case lvl <= slog.LevelDebug:
		return zapcore.DebugLevel
	case lvl <= slog.LevelInfo:
		return zapcore.InfoLevel
	case lvl <= slog.LevelWarn:
		return zapcore.WarnLevel
	}
	return zapcore.ErrorLevel
}
