// Package session implements the durable, append-only ledger of completed
// migration phases. The ledger is the sole source of truth for "has this
// phase already run"; per-account flags are rebuilt from it on every run.
package session

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Phase tags recorded in the ledger. The phase date is embedded in the same
// field, appended with Tag, so lookups prefix-match on the tag.
const (
	TagFullExport = "FULL-EXPORT"
	TagFullImport = "FULL-IMPORT"
	TagIncrExport = "INCR-EXPORT"
	TagIncrImport = "INCR-IMPORT"
)

// Tag combines a phase tag with its MM/DD/YYYY date into the ledger's
// tag-with-embedded-date form, e.g. "FULL-EXPORT;03/01/2024".
func Tag(tag, date string) string {
	return tag + ";" + date
}

// Ledger records completed phases to a plain-text file, one entry per line
// in the form "accountAddress;phaseTag;date". Entries are never mutated or
// deleted; corrections append a newer entry.
type Ledger struct {
	path string
	log  *slog.Logger

	mu sync.Mutex // serializes every read and append
}

// New creates a ledger backed by the given file. The file is created lazily
// on first append.
func New(path string, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{path: path, log: log.With("component", "session")}
}

// Path returns the backing file path.
func (l *Ledger) Path() string { return l.path }

// Record appends one entry for the account. Append failures are logged and
// swallowed: a lost entry only means the phase is redone on the next run,
// which every phase must tolerate.
func (l *Ledger) Record(mail, info string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		l.log.Error("failed to open session file", "path", l.path, "error", err)
		return
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s;%s\n", mail, info); err != nil {
		l.log.Error("failed to record session", "account", mail, "error", err)
		return
	}
	l.log.Debug("recorded session", "account", mail, "info", info)
}

// Check reports whether any entry for the account has a phase tag starting
// with prefix. The prefix match is deliberate: a lookup for "FULL-EXPORT"
// must match "FULL-EXPORT;03/01/2024" regardless of the embedded date.
// A missing backing file means no phase has completed, never an error.
func (l *Ledger) Check(mail, prefix string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.log.Error("failed to read session file", "path", l.path, "error", err)
		}
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.SplitN(strings.TrimSpace(scanner.Text()), ";", 2)
		if len(parts) < 2 {
			continue
		}
		if parts[0] == mail && strings.HasPrefix(parts[1], prefix) {
			return true
		}
	}
	if err := scanner.Err(); err != nil {
		l.log.Error("failed to scan session file", "path", l.path, "error", err)
	}
	return false
}
