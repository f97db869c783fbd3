package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Logger is the logging surface used by every mcnet package. Replace it with SetLogger
// to route output into the host application's logger.
type Logger interface {
	SetOutput(output io.Writer)
	SetLevel(level string)
	WithStack(err any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

var (
	mclog Logger
	mu    sync.RWMutex
)

func init() {
	mclog = newDefaultLogger(os.Stderr)
}

func getLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return mclog
}

// SetLogger replaces the package logger.
func SetLogger(logger Logger) {
	if logger == nil {
		return
	}
	mu.Lock()
	mclog = logger
	mu.Unlock()
}

func SetOutput(output io.Writer) {
	getLogger().SetOutput(output)
}

// SetLevel accepts debug, info, warn, error or off.
func SetLevel(level string) {
	getLogger().SetLevel(level)
}

// WithStack logs err (usually a recovered panic value) together with a stack trace.
func WithStack(err any) {
	getLogger().WithStack(err)
}

func Debugf(format string, args ...any) {
	getLogger().Debugf(format, args...)
}

func Infof(format string, args ...any) {
	getLogger().Infof(format, args...)
}

func Warnf(format string, args ...any) {
	getLogger().Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	getLogger().Errorf(format, args...)
}

const levelOff = slog.Level(100)

type defaultLog struct {
	mu    sync.Mutex
	level *slog.LevelVar
	log   *slog.Logger
}

func newDefaultLogger(output io.Writer) *defaultLog {
	l := &defaultLog{level: new(slog.LevelVar)}
	l.level.Set(slog.LevelInfo)
	l.log = l.newSlog(output)
	return l
}

func (l *defaultLog) newSlog(output io.Writer) *slog.Logger {
	h := slog.NewTextHandler(output, &slog.HandlerOptions{Level: l.level})
	return slog.New(h).With("lib", "mcnet")
}

func (l *defaultLog) SetOutput(output io.Writer) {
	l.mu.Lock()
	l.log = l.newSlog(output)
	l.mu.Unlock()
}

func (l *defaultLog) SetLevel(level string) {
	l.level.Set(ParseLevel(level))
}

func (l *defaultLog) logger() *slog.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.log
}

func (l *defaultLog) WithStack(err any) {
	er := errors.Errorf("%v", err)
	l.logf(slog.LevelError, "%+v", er)
}

func (l *defaultLog) Debugf(format string, args ...any) {
	l.logf(slog.LevelDebug, format, args...)
}

func (l *defaultLog) Infof(format string, args ...any) {
	l.logf(slog.LevelInfo, format, args...)
}

func (l *defaultLog) Warnf(format string, args ...any) {
	l.logf(slog.LevelWarn, format, args...)
}

func (l *defaultLog) Errorf(format string, args ...any) {
	l.logf(slog.LevelError, format, args...)
}

func (l *defaultLog) logf(level slog.Level, format string, args ...any) {
	lg := l.logger()
	if !lg.Enabled(context.Background(), level) {
		return
	}
	lg.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

// ParseLevel maps a level name to a slog level. Unknown names fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "off", "none", "disabled":
		return levelOff
	default:
		return slog.LevelInfo
	}
}
