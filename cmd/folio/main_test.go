package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	scanDir := t.TempDir()
	booksDir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	body := fmt.Sprintf(`[paths]
scan_folder = %q
todays_books_folder = %q
log_dir = %q

[cities]
"123" = %q

[scanner]
mode = "dual_scan"
`, scanDir, booksDir, t.TempDir(), t.TempDir())
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := execute(t, "config", "init", "-p", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output = %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "scan_folder") {
		t.Fatal("sample config missing scan_folder")
	}

	// A second init without --overwrite refuses.
	if _, err := execute(t, "config", "init", "-p", target); err == nil {
		t.Fatal("overwrote existing config")
	}
}

func TestStatusEmptySession(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := execute(t, "--config", cfgPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Pending pages") {
		t.Fatalf("output = %q", out)
	}
}

func TestBooksListsStaged(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := execute(t, "--config", cfgPath, "books")
	if err != nil {
		t.Fatalf("books: %v", err)
	}
	if !strings.Contains(out, "No staged books") {
		t.Fatalf("output = %q", out)
	}
}

func TestTransferDryRunWarnsOnBadName(t *testing.T) {
	cfgPath := writeTestConfig(t)

	// Find the books dir back out of the config to stage a book in it.
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	var booksDir string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "todays_books_folder") {
			booksDir = strings.Trim(strings.SplitN(line, "=", 2)[1], ` "`)
		}
	}
	if booksDir == "" {
		t.Fatal("books dir not found in config")
	}
	if err := os.Mkdir(filepath.Join(booksDir, "NO-CODE"), 0o755); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", cfgPath, "transfer", "--dry-run")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !strings.Contains(out, "warning") || !strings.Contains(out, "NO-CODE") {
		t.Fatalf("output = %q", out)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, sub := range []string{"run", "status", "books", "transfer", "config"} {
		if !strings.Contains(out, sub) {
			t.Fatalf("help missing %q:\n%s", sub, out)
		}
	}
}
