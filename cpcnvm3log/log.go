// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cpcnvm3log wraps go.uber.org/zap. Each line reads "YYYY-MM-DD
// HH:MM:SS.mmm - <LEVEL> - <prefix> <message>\n": the prefix sits in front
// of the message, not between the timestamp and the level, and the level is
// followed by " - " rather than a colon. Init is idempotent — a second call
// is a no-op, mirroring the original's LOGGER_INITIALIZED-guarded bool.
package cpcnvm3log

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors the public cpcnvm3.LogLevel ordering so callers don't need
// to import the root package just to configure logging.
type Level int

const (
	Off Level = iota
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case ErrorLevel:
		return zapcore.ErrorLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case DebugLevel, TraceLevel:
		// zap has no trace level; trace collapses into debug.
		return zapcore.DebugLevel
	default:
		return zapcore.InvalidLevel
	}
}

var (
	once   sync.Once
	mu     sync.Mutex
	logger *zap.SugaredLogger
	prefix string
)

func init() {
	logger = fallbackLogger().Sugar()
}

// encoderConfig produces "YYYY-MM-DD HH:MM:SS.mmm - LEVEL - message" —
// the prefix itself is injected into the message at the call sites below,
// since zap's EncoderConfig has no per-line static-text slot.
func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "T",
		LevelKey:         "L",
		MessageKey:       "M",
		LineEnding:       "\n",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000"),
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " - ",
	}
}

func fallbackLogger() *zap.Logger {
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.AddSync(os.Stdout), zapcore.InfoLevel)
	return zap.New(core)
}

// Init configures the package-level logger exactly once; subsequent calls
// are no-ops regardless of arguments, matching the reference
// implementation's "already initialized" guard.
func Init(newPrefix string, level Level, filePath string, appendFile bool) error {
	var initErr error
	once.Do(func() {
		var sink zapcore.WriteSyncer
		if filePath == "" {
			sink = zapcore.AddSync(os.Stdout)
		} else {
			flags := os.O_CREATE | os.O_WRONLY
			if appendFile {
				flags |= os.O_APPEND
			} else {
				flags |= os.O_TRUNC
			}
			f, err := os.OpenFile(filePath, flags, 0o644)
			if err != nil {
				initErr = err
				return
			}
			sink = zapcore.AddSync(f)
		}
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), sink, level.zapLevel())
		mu.Lock()
		logger = zap.New(core).Sugar()
		prefix = newPrefix
		mu.Unlock()
	})
	return initErr
}

func current() (*zap.SugaredLogger, string) {
	mu.Lock()
	defer mu.Unlock()
	return logger, prefix
}

func line(p, format string, args ...any) string {
	if p == "" {
		return fmt.Sprintf(format, args...)
	}
	return p + " " + fmt.Sprintf(format, args...)
}

func Debugf(format string, args ...any) {
	l, p := current()
	l.Debugf("%s", line(p, format, args...))
}

func Infof(format string, args ...any) {
	l, p := current()
	l.Infof("%s", line(p, format, args...))
}

func Warnf(format string, args ...any) {
	l, p := current()
	l.Warnf("%s", line(p, format, args...))
}

func Errorf(format string, args ...any) {
	l, p := current()
	l.Errorf("%s", line(p, format, args...))
}
