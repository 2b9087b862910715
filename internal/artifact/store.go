// Package artifact manages the on-disk working tree of a migration run:
// one folder per account under a configured root, holding exported directory
// entries, backup archives, and verbatim transfer logs.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openmailtools/zmigrate/internal/account"
)

// Store confines all artifact writes under a single root directory.
type Store struct {
	root string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving artifact root %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("creating artifact root %s: %w", abs, err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute artifact root directory.
func (s *Store) Root() string { return s.root }

// EnsureFolder creates the account's working folder if it does not exist.
func (s *Store) EnsureFolder(a *account.Record) error {
	if err := os.MkdirAll(a.Folder(), 0755); err != nil {
		return fmt.Errorf("creating account folder for %s: %w", a.Mail, err)
	}
	return nil
}

// WriteFile atomically writes content to a path under the root using a temp
// file and rename, so a crash mid-write never leaves a partial artifact.
func (s *Store) WriteFile(path string, content []byte) error {
	if err := s.contain(path); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".zmigrate-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}

	success = true
	return nil
}

// ReadFile reads a file under the root.
func (s *Store) ReadFile(path string) ([]byte, error) {
	if err := s.contain(path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Empty reports whether the artifact at path has zero bytes.
// Returns an error if the artifact does not exist.
func (s *Store) Empty(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("checking artifact %s: %w", path, err)
	}
	return info.Size() == 0, nil
}

// Touch creates an empty file at a path under the root if it does not exist.
func (s *Store) Touch(path string) error {
	if err := s.contain(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("touching %s: %w", path, err)
	}
	return f.Close()
}

// contain rejects paths that resolve outside the artifact root.
func (s *Store) contain(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", path, err)
	}
	abs = filepath.Clean(abs)
	prefix := s.root + string(filepath.Separator)
	if abs != s.root && !strings.HasPrefix(abs, prefix) {
		return fmt.Errorf("path %s is outside the artifact root %s", path, s.root)
	}
	return nil
}
