package build

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFilePreservesMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tool")
	seedFile(t, src, "binary", 0o755)

	dest := filepath.Join(dir, "out", "bin", "tool")
	if err := copyPath(src, dest); err != nil {
		t.Fatalf("copyPath() error = %v", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("mode = %v, want 0755", info.Mode().Perm())
	}

	body, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "binary" {
		t.Fatalf("content = %q, want %q", body, "binary")
	}
}

func TestCopyFileReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "tool")
	seedFile(t, src, "new", 0o755)

	dest := filepath.Join(dir, "installed")
	seedFile(t, dest, "old", 0o600)

	if err := copyPath(src, dest); err != nil {
		t.Fatalf("copyPath() error = %v", err)
	}

	body, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "new" {
		t.Fatalf("content = %q, want %q", body, "new")
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o755 {
		t.Fatalf("mode = %v, want source mode 0755", info.Mode().Perm())
	}
}

func TestCopyTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "res")
	seedFile(t, filepath.Join(src, "sprites", "hero.png"), "png", 0o644)
	seedFile(t, filepath.Join(src, "readme.txt"), "docs", 0o644)

	dest := filepath.Join(dir, "out", "res")
	if err := copyPath(src, dest); err != nil {
		t.Fatalf("copyPath() error = %v", err)
	}

	for _, rel := range []string{"sprites/hero.png", "readme.txt"} {
		if _, err := os.Stat(filepath.Join(dest, rel)); err != nil {
			t.Fatalf("copied tree missing %s: %v", rel, err)
		}
	}
}

func TestCopyPathMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := copyPath(filepath.Join(dir, "absent"), filepath.Join(dir, "dest"))
	if err == nil {
		t.Fatal("copyPath() accepted a missing source")
	}
}
