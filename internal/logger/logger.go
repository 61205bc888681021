package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, err error, args ...any)
	Action(action string) Logger
	With(args ...any) Logger
}

// New builds a JSON logger writing to w (stdout when nil).
func New(level string, w io.Writer) Logger {
	if w == nil {
		w = os.Stdout
	}
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}

	lv := new(slog.LevelVar)
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case LevelDebug:
		lv.Set(slog.LevelDebug)
	case LevelWarn:
		lv.Set(slog.LevelWarn)
	case LevelError:
		lv.Set(slog.LevelError)
	default:
		lv.Set(slog.LevelInfo)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lv,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String("timestamp", t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	})
	return &logger{log: slog.New(handler).With("service", "wayfare", "hostname", host)}
}

// Discard drops everything. Used by tests.
func Discard() Logger {
	return &logger{log: slog.New(slog.NewJSONHandler(io.Discard, nil))}
}

type logger struct {
	log *slog.Logger
}

func (l *logger) Debug(msg string, args ...any) { l.log.Debug(msg, args...) }
func (l *logger) Info(msg string, args ...any)  { l.log.Info(msg, args...) }
func (l *logger) Warn(msg string, args ...any)  { l.log.Warn(msg, args...) }

// Error logs err together with the caller's stack.
func (l *logger) Error(msg string, err error, args ...any) {
	attrs := append(append(make([]any, 0, len(args)+1), args...), slog.Group("error",
		slog.Any("msg", err),
		slog.Any("stack", captureFrames(3, 6)),
	))
	l.log.Error(msg, attrs...)
}

func (l logger) Action(action string) Logger {
	l.log = l.log.With("action", action)
	return &l
}

func (l logger) With(args ...any) Logger {
	l.log = l.log.With(args...)
	return &l
}

type stackFrame struct {
	Func   string `json:"func"`
	Source string `json:"source"`
	Line   int    `json:"line"`
}

func captureFrames(skip, depth int) []stackFrame {
	pc := make([]uintptr, depth)
	n := runtime.Callers(skip, pc)
	frames := runtime.CallersFrames(pc[:n])

	var stack []stackFrame
	for {
		frame, more := frames.Next()
		stack = append(stack, stackFrame{
			Func:   filepath.Base(frame.Function),
			Source: filepath.Join(filepath.Base(filepath.Dir(frame.File)), filepath.Base(frame.File)),
			Line:   frame.Line,
		})
		if !more {
			break
		}
	}
	return stack
}
