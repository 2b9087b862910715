package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openmailtools/zmigrate/internal/account"
)

func TestNewCreatesRoot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migration", "work")
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := os.Stat(s.Root()); err != nil {
		t.Errorf("root directory should exist: %v", err)
	}
}

func TestEnsureFolder(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	if err != nil {
		t.Fatal(err)
	}

	a := account.New("alice@example.com", "alice@new.example.com", "store1", s.Root())
	if err := s.EnsureFolder(a); err != nil {
		t.Fatalf("EnsureFolder: %v", err)
	}
	if _, err := os.Stat(a.Folder()); err != nil {
		t.Errorf("account folder should exist: %v", err)
	}

	// Idempotent.
	if err := s.EnsureFolder(a); err != nil {
		t.Errorf("second EnsureFolder: %v", err)
	}
}

func TestWriteAndReadFile(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(s.Root(), "alice@example.com", "alice@example.com-export.log")
	if err := s.WriteFile(path, []byte("HTTP/1.1 200 OK\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := s.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "HTTP/1.1 200 OK\n" {
		t.Errorf("content = %q", data)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestWriteFileOutsideRoot(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	outside := filepath.Join(os.TempDir(), "zmigrate-escape.log")
	if err := s.WriteFile(outside, []byte("x")); err == nil {
		os.Remove(outside)
		t.Error("writing outside the root should fail")
	}

	traversal := filepath.Join(s.Root(), "..", "escape.log")
	if err := s.WriteFile(traversal, []byte("x")); err == nil {
		t.Error("path traversal outside the root should fail")
	}
}

func TestEmpty(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	empty := filepath.Join(s.Root(), "empty.tgz")
	if err := s.WriteFile(empty, nil); err != nil {
		t.Fatal(err)
	}
	full := filepath.Join(s.Root(), "full.tgz")
	if err := s.WriteFile(full, []byte("data")); err != nil {
		t.Fatal(err)
	}

	if got, err := s.Empty(empty); err != nil || !got {
		t.Errorf("Empty(empty) = %v, %v; want true, nil", got, err)
	}
	if got, err := s.Empty(full); err != nil || got {
		t.Errorf("Empty(full) = %v, %v; want false, nil", got, err)
	}
	if _, err := s.Empty(filepath.Join(s.Root(), "missing.tgz")); err == nil {
		t.Error("Empty on a missing artifact should fail")
	}
}

func TestTouch(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(s.Root(), "session.txt")
	if err := s.Touch(path); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	// Touch must not truncate existing content.
	if err := s.WriteFile(path, []byte("entry\n")); err != nil {
		t.Fatal(err)
	}
	if err := s.Touch(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "entry\n" {
		t.Errorf("Touch truncated the file: %q", data)
	}
}
