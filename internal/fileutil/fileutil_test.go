package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	writeFile(t, src, "hello")

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("dst content = %q", data)
	}
}

func TestCopyFileVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFileVerified(filepath.Join(dir, "missing"), filepath.Join(dir, "dst"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestIsImage(t *testing.T) {
	cases := map[string]bool{
		"scan1.png":        true,
		"scan1.JPG":        true,
		"scan1.tiff":       true,
		"scan1.txt":        false,
		"layout_data.json": false,
	}
	for path, want := range cases {
		if got := IsImage(path); got != want {
			t.Errorf("IsImage(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestListImagesSortedNaturally(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"scan10.png", "scan2.png", "scan1.png", "notes.txt"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	paths, err := ListImages(dir)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	want := []string{"scan1.png", "scan2.png", "scan10.png"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestCountImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.png"), "x")
	writeFile(t, filepath.Join(dir, "b.jpeg"), "x")
	writeFile(t, filepath.Join(dir, "c.txt"), "x")
	if got := CountImages(dir); got != 2 {
		t.Fatalf("CountImages = %d, want 2", got)
	}
	if got := CountImages(filepath.Join(dir, "missing")); got != 0 {
		t.Fatalf("CountImages(missing) = %d, want 0", got)
	}
}

func TestMovePath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")
	writeFile(t, src, "img")

	if err := MovePath(src, dst); err != nil {
		t.Fatalf("MovePath: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source still exists after move")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
}

func TestEnsureBackupSkipsExisting(t *testing.T) {
	dir := t.TempDir()
	backups := filepath.Join(dir, "backups")
	src := filepath.Join(dir, "page.png")
	writeFile(t, src, "original")

	first, err := EnsureBackup(backups, src)
	if err != nil {
		t.Fatalf("EnsureBackup: %v", err)
	}

	// Later edits must not clobber the pristine backup.
	writeFile(t, src, "edited")
	second, err := EnsureBackup(backups, src)
	if err != nil {
		t.Fatalf("EnsureBackup again: %v", err)
	}
	if first != second {
		t.Fatalf("backup path changed: %q vs %q", first, second)
	}
	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original" {
		t.Fatalf("backup overwritten: %q", data)
	}
}

func TestRestoreBackup(t *testing.T) {
	dir := t.TempDir()
	backups := filepath.Join(dir, "backups")
	src := filepath.Join(dir, "page.png")
	writeFile(t, src, "original")

	if _, err := EnsureBackup(backups, src); err != nil {
		t.Fatal(err)
	}
	writeFile(t, src, "edited")
	if err := RestoreBackup(backups, src); err != nil {
		t.Fatalf("RestoreBackup: %v", err)
	}
	data, _ := os.ReadFile(src)
	if string(data) != "original" {
		t.Fatalf("restored content = %q", data)
	}

	if err := RestoreBackup(backups, filepath.Join(dir, "other.png")); err == nil {
		t.Fatal("expected error for missing backup")
	}
}
