// Package log builds the zap loggers used across mangatoc. Every core is a
// plugin with its own writer and level filter; the logger tees them.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Plugin = zapcore.Core

func DefaultEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func DefaultEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(DefaultEncoderConfig())
}

// ConsoleEncoder is used for terminal output where JSON is hard to read.
func ConsoleEncoder() zapcore.Encoder {
	cfg := DefaultEncoderConfig()
	cfg.EncodeCaller = nil
	cfg.CallerKey = ""
	return zapcore.NewConsoleEncoder(cfg)
}

func DefaultOption() []zap.Option {
	var stackTraceLevel zap.LevelEnablerFunc = func(level zapcore.Level) bool {
		return level >= zapcore.DPanicLevel
	}
	return []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(stackTraceLevel),
	}
}

func DefaultLumberjackLogger() *lumberjack.Logger {
	return &lumberjack.Logger{
		MaxSize:    50,
		MaxBackups: 3,
		LocalTime:  true,
		Compress:   true,
	}
}

// NewLogger tees the given plugins into one logger.
func NewLogger(plugins []Plugin, options ...zap.Option) *zap.Logger {
	return zap.New(zapcore.NewTee(plugins...), append(DefaultOption(), options...)...)
}

func NewPlugin(enc zapcore.Encoder, writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(enc, writer, enabler)
}

func NewStderrPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(ConsoleEncoder(), zapcore.Lock(zapcore.AddSync(os.Stderr)), enabler)
}

// NewFilePlugin returns a JSON core writing to a rotated file. lumberjack
// does not expose Sync, so the returned closer must be closed before exit
// to flush the file.
func NewFilePlugin(filePath string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	w := DefaultLumberjackLogger()
	w.Filename = filePath
	return NewPlugin(DefaultEncoder(), zapcore.AddSync(w), enabler), w
}

type Options struct {
	Debug   bool
	LogFile string
}

// New builds the process logger: warnings and errors to stderr (everything
// with Debug), plus every level to LogFile when set. The closer is never nil.
func New(opts Options) (*zap.Logger, io.Closer) {
	stderrLevel := zapcore.WarnLevel
	if opts.Debug {
		stderrLevel = zapcore.DebugLevel
	}

	plugins := []Plugin{NewStderrPlugin(stderrLevel)}
	var closer io.Closer = nopCloser{}

	if opts.LogFile != "" {
		p, c := NewFilePlugin(opts.LogFile, zapcore.DebugLevel)
		plugins = append(plugins, p)
		closer = c
	}

	return NewLogger(plugins), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
