// Package logbridge adapts a zap logger into the registry's Log
// capability façade.
package logbridge

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aclements/go-spa/support"
)

// Level mirrors the source's LogLevel enumeration.
type Level int

const (
	LevelNone Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelError:
		return zapcore.ErrorLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelDebug, LevelTrace:
		return zapcore.DebugLevel
	default:
		return zapcore.DPanicLevel
	}
}

// Topic names a logical subsystem, letting callers set a level that
// overrides the façade's default for just that topic.
type Topic struct {
	Name            string
	Level           Level
	HasCustomLevel  bool
}

// Log is the registry-facing Log façade. It wraps a *zap.Logger and
// exposes the same (level, file, line, func, message) call shape the
// native Log interface expects, instead of zap's structured-field
// API, since plugins format their own messages.
type Log struct {
	logger *zap.Logger
	level  Level
	handle unsafe.Pointer
}

// New wraps logger at the given default level.
func New(logger *zap.Logger, level Level) *Log {
	return &Log{logger: logger, level: level}
}

func (l *Log) Kind() support.Kind { return support.KindLog }

// Logf logs one message at level, formatted the way the plugin
// boundary supplies it (printf-style, already-rendered arguments)
// tagged with the call site.
func (l *Log) Logf(level Level, file string, line int, fn string, format string, args ...any) {
	if level > l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Check(level.zapLevel(), msg).Write(
		zap.String("file", file),
		zap.Int("line", line),
		zap.String("func", fn),
	)
}

// LogTopic logs one message at level, gated against topic's own level
// if it has set one, falling back to the façade's default level
// otherwise — the topic-scoped analogue of Logf.
func (l *Log) LogTopic(level Level, topic *Topic, file string, line int, fn string, format string, args ...any) {
	effective := l.level
	if topic.HasCustomLevel {
		effective = topic.Level
	}
	if level > effective {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Check(level.zapLevel(), msg).Write(
		zap.String("file", file),
		zap.Int("line", line),
		zap.String("func", fn),
		zap.String("topic", topic.Name),
	)
}

// NativeHandle returns a stable, non-nil pointer to the façade itself,
// cached on first use. It is not a C-callable function table; it serves
// the registry's bookkeeping (coherent dual-view, replace-by-name).
func (l *Log) NativeHandle() unsafe.Pointer {
	if l.handle == nil {
		l.handle = unsafe.Pointer(l)
	}
	return l.handle
}

func (l *Log) Close() error {
	return l.logger.Sync()
}
