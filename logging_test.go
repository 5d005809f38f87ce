package appmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestSlogLoggerWritesStructuredEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(NewLogger("debug", "json", &buf))

	logger.Log(LogEvent{Level: LevelInfo, Op: OpAssociate, Application: "notepad", Module: "code"})
	logger.Log(LogEvent{Level: LevelError, Op: OpLoad, Path: "/data/map", Err: errors.New("bad header")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", buf.String())
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first["msg"] != "Associating mapping" || first["op"] != "associate" || first["app"] != "notepad" || first["module"] != "code" {
		t.Fatalf("unexpected record %v", first)
	}
	if _, ok := first["error"]; ok {
		t.Fatalf("expected no error attribute, got %v", first)
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second["level"] != "ERROR" || second["msg"] != "Error loading custom mappings" || second["error"] != "bad header" {
		t.Fatalf("unexpected record %v", second)
	}
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(NewLogger("warn", "text", &buf))

	logger.Log(LogEvent{Level: LevelInfo, Op: OpSave})
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	logger.Log(LogEvent{Level: LevelWarn, Op: OpActivity, Err: errors.New("sink down")})
	if !strings.Contains(buf.String(), "Activity hook failed") || !strings.Contains(buf.String(), "op=activity") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestLoggerFuncNilIsSafe(t *testing.T) {
	LoggerFunc(nil).Log(LogEvent{Op: OpLoad})
}
