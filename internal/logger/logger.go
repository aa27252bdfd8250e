// Package logger is the process-wide leveled logger.
//
// Call sites use printf-style helpers (Debug, Info, Warn, Error). Output is
// produced by zap: a console encoder for "text" and a JSON encoder for
// "json". Until Init is called, messages go to stdout at INFO in text form.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config describes the logger output.
type Config struct {
	// Level is DEBUG, INFO, WARN or ERROR (case-insensitive)
	Level string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format is "text" or "json"
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`

	// Output is "stdout", "stderr" or a file path
	Output string `mapstructure:"output"`
}

var (
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	sugar  atomic.Pointer[zap.SugaredLogger]
	closer atomic.Pointer[func() error]
)

func init() {
	sugar.Store(newLogger(os.Stdout, "text").Sugar())
}

// Init replaces the process logger according to cfg.
//
// The previous output, if it was a file opened by Init, is closed.
func Init(cfg Config) error {
	if cfg.Level != "" {
		lvl, err := parseLevel(cfg.Level)
		if err != nil {
			return err
		}
		level.SetLevel(lvl)
	}

	var (
		ws      zapcore.WriteSyncer
		closeFn func() error
	)
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		ws = os.Stdout
	case "stderr":
		ws = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		ws = f
		closeFn = f.Close
	}

	_ = Sync()
	sugar.Store(newLogger(ws, cfg.Format).Sugar())

	if prev := closer.Swap(&closeFn); prev != nil && *prev != nil {
		_ = (*prev)()
	}
	return nil
}

func newLogger(ws zapcore.WriteSyncer, format string) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	if strings.EqualFold(format, "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	return zap.New(zapcore.NewCore(enc, zapcore.Lock(ws), level))
}

func parseLevel(s string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return lvl, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// SetLevel changes the minimum level at runtime. Unknown levels are ignored.
func SetLevel(lvl string) {
	if parsed, err := parseLevel(lvl); err == nil {
		level.SetLevel(parsed)
	}
}

// Enabled reports whether messages at lvl are currently emitted.
func Enabled(lvl string) bool {
	parsed, err := parseLevel(lvl)
	if err != nil {
		return false
	}
	return level.Enabled(parsed)
}

// Sync flushes buffered output.
func Sync() error {
	return sugar.Load().Sync()
}

func Debug(format string, v ...any) {
	sugar.Load().Debugf(format, v...)
}

func Info(format string, v ...any) {
	sugar.Load().Infof(format, v...)
}

func Warn(format string, v ...any) {
	sugar.Load().Warnf(format, v...)
}

func Error(format string, v ...any) {
	sugar.Load().Errorf(format, v...)
}
