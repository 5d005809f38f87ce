package appmap

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Level is the severity attached to a LogEvent.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// LogOp identifies what the library was doing when it logged.
type LogOp string

const (
	OpAssociate    LogOp = "associate"
	OpModify       LogOp = "modify"
	OpDisassociate LogOp = "disassociate"
	OpRestore      LogOp = "restore"
	OpRestart      LogOp = "restart"
	OpApplied      LogOp = "applied"
	OpLoad         LogOp = "load"
	OpCreate       LogOp = "create"
	OpSave         LogOp = "save"
	OpActivity     LogOp = "activity"
)

// LogEvent describes one mapping lifecycle step for logging.
type LogEvent struct {
	Level       Level
	Op          LogOp
	Application string
	Module      string
	Original    string
	Count       int
	Path        string
	Err         error
}

// Logger records mapping lifecycle events.
type Logger interface {
	Log(LogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(LogEvent)

// Log implements Logger.
func (f LoggerFunc) Log(event LogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) Log(LogEvent) {}

// NewSlogLogger forwards events to a slog.Logger. A nil logger uses
// slog.Default at call time.
func NewSlogLogger(logger *slog.Logger) Logger {
	return slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Log(event LogEvent) {
	logger := l.logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{slog.String("op", string(event.Op))}
	if event.Application != "" {
		attrs = append(attrs, slog.String("app", event.Application))
	}
	if event.Module != "" {
		attrs = append(attrs, slog.String("module", event.Module))
	}
	if event.Original != "" {
		attrs = append(attrs, slog.String("original_module", event.Original))
	}
	if event.Count > 0 {
		attrs = append(attrs, slog.Int("count", event.Count))
	}
	if event.Path != "" {
		attrs = append(attrs, slog.String("path", event.Path))
	}
	if event.Err != nil {
		attrs = append(attrs, slog.Any("error", event.Err))
	}
	logger.LogAttrs(context.Background(), event.Level.slog(), event.message(), attrs...)
}

func (l Level) slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (e LogEvent) message() string {
	switch e.Op {
	case OpAssociate:
		return "Associating mapping"
	case OpModify:
		return "Modifying mapping"
	case OpDisassociate:
		return "Disassociating mapping"
	case OpRestore:
		return "Restoring original mapping"
	case OpRestart:
		return "Restarting app module handler"
	case OpApplied:
		return "Custom mappings applied"
	case OpLoad:
		if e.Err != nil {
			return "Error loading custom mappings"
		}
		return "Custom mappings loaded from file"
	case OpCreate:
		return "Custom mappings created"
	case OpSave:
		return "Custom mappings saved to file"
	case OpActivity:
		return "Activity hook failed"
	default:
		return string(e.Op)
	}
}

// NewLogger builds a slog.Logger writing to w. Unknown levels fall back to
// info and unknown formats to text.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}
