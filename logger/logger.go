// Package logger provides the structured logging of the cgt command, using Zap.
package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init initializes the global logger. Verbose enables debug entries.
func Init(verbose bool) {
	once.Do(func() {
		cfg := zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
			cfg.DisableCaller = true
		}
		base, err := cfg.Build()
		if err != nil {
			// Fallback to nop logger if initialization fails.
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

// Get returns the global sugared logger, initializing it if needed.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init(false)
	}
	return sugar
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}

// ErrorLog writes one plain entry per error to a file.
type ErrorLog struct {
	*zap.Logger
	file *os.File
}

// NewErrorLog truncates or creates the file at path and returns a logger writing to it.
func NewErrorLog(path string) (*ErrorLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("could not create error log: %w", err)
	}
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "msg",
		TimeKey:    "ts",
		EncodeTime: zapcore.ISO8601TimeEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(f), zap.ErrorLevel)
	return &ErrorLog{Logger: zap.New(core), file: f}, nil
}

// Record writes err as an entry of the log.
func (l *ErrorLog) Record(err error) { l.Error(err.Error()) }

// Close flushes and closes the file.
func (l *ErrorLog) Close() error {
	_ = l.Sync()
	return l.file.Close()
}
