package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomicReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.txt")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("new"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("content = %q", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, got %d entries", len(entries))
	}
}

func TestCopyFileAtomic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")
	if err := os.WriteFile(src, []byte{1, 2, 3}, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := CopyFileAtomic(src, dst, 0o644); err != nil {
		t.Fatalf("CopyFileAtomic: %v", err)
	}
	got, _ := os.ReadFile(dst)
	if len(got) != 3 || got[2] != 3 {
		t.Fatalf("copied = %v", got)
	}
	if err := CopyFileAtomic(filepath.Join(dir, "missing"), dst, 0o644); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestWriteFileAtomicPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "processed_articles.txt")
	if err := WriteFileAtomic(path, []byte("a\n"), 0o600); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("perm = %v", info.Mode().Perm())
	}

	dst := filepath.Join(dir, "copy.txt")
	if err := CopyFileAtomic(path, dst, 0o644); err != nil {
		t.Fatalf("CopyFileAtomic: %v", err)
	}
	info, err = os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("copy perm = %v", info.Mode().Perm())
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "feeds.txt")
	if err := WriteFileAtomic(path, []byte("x"), 0o644); err == nil {
		t.Fatal("expected error when the directory does not exist")
	}
}
