package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerLiftsComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	NewComponentLogger(logger, "watcher").Info("file stable", String("path", "scan_1.png"))

	line := buf.String()
	if !strings.Contains(line, "[watcher]") {
		t.Fatalf("component not lifted: %q", line)
	}
	if !strings.Contains(line, "file stable") {
		t.Fatalf("message missing: %q", line)
	}
	if !strings.Contains(line, "path=scan_1.png") {
		t.Fatalf("attr missing: %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("color codes written without TTY: %q", line)
	}
}

func TestConsoleHandlerQuotesSpacedValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger.Warn("transfer warning", String("reason", "no city code"))
	if !strings.Contains(buf.String(), `reason="no city code"`) {
		t.Fatalf("value not quoted: %q", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("info logged below level: %q", buf.String())
	}
	logger.Error("loud")
	if !strings.Contains(buf.String(), "ERROR") {
		t.Fatalf("error line missing: %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
