package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"folio/internal/services"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndDerivedPaths(t *testing.T) {
	dir := t.TempDir()
	scanDir := filepath.Join(dir, "incoming")
	if err := os.MkdirAll(scanDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, dir, `
[paths]
scan_folder = "`+scanDir+`"
todays_books_folder = "`+filepath.Join(dir, "books")+`"
`)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Scanner.Mode != ModeDualScan {
		t.Fatalf("mode = %q", cfg.Scanner.Mode)
	}
	if cfg.Scanner.NavigationDebounceMS != 300 {
		t.Fatalf("debounce = %d", cfg.Scanner.NavigationDebounceMS)
	}
	if cfg.Paths.BackupDir != filepath.Join(scanDir, ".backups") {
		t.Fatalf("backup dir = %q", cfg.Paths.BackupDir)
	}
	wantLedger := filepath.Join(dir, "books", "books_complete_log.json")
	if cfg.Paths.LedgerPath != wantLedger {
		t.Fatalf("ledger = %q, want %q", cfg.Paths.LedgerPath, wantLedger)
	}
}

func TestLoadRejectsMissingScanFolder(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[paths]
scan_folder = "`+filepath.Join(dir, "nope")+`"
todays_books_folder = "`+filepath.Join(dir, "books")+`"
`)
	_, _, _, err := Load(path)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestLoadRejectsBadMode(t *testing.T) {
	dir := t.TempDir()
	scanDir := filepath.Join(dir, "incoming")
	if err := os.MkdirAll(scanDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, dir, `
[paths]
scan_folder = "`+scanDir+`"
todays_books_folder = "`+filepath.Join(dir, "books")+`"

[scanner]
mode = "triple_scan"
`)
	_, _, _, err := Load(path)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestLoadRejectsBadCityCode(t *testing.T) {
	dir := t.TempDir()
	scanDir := filepath.Join(dir, "incoming")
	if err := os.MkdirAll(scanDir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := writeConfig(t, dir, `
[paths]
scan_folder = "`+scanDir+`"
todays_books_folder = "`+filepath.Join(dir, "books")+`"

[cities]
"12" = "`+dir+`"
`)
	_, _, _, err := Load(path)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}

func TestCreateSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("sample config is empty")
	}
}
