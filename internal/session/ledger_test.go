package session

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "session.txt"), nil)
}

func TestRecordAndCheck(t *testing.T) {
	l := newTestLedger(t)

	l.Record("alice@example.com", Tag(TagFullExport, "03/01/2024"))

	if !l.Check("alice@example.com", TagFullExport) {
		t.Error("FULL-EXPORT entry should satisfy a FULL-EXPORT check")
	}
	if l.Check("alice@example.com", TagFullImport) {
		t.Error("FULL-EXPORT entry must not satisfy a FULL-IMPORT check")
	}
	if l.Check("bob@example.com", TagFullExport) {
		t.Error("entry for alice must not match bob")
	}
}

func TestCheckPrefixMatchesEmbeddedDate(t *testing.T) {
	l := newTestLedger(t)

	// The date lives in the same field as the tag, so "already done,
	// regardless of date" is a prefix lookup while "done for this date"
	// is a longer prefix.
	l.Record("alice@example.com", "FULL-EXPORT;03/01/2024")

	if !l.Check("alice@example.com", "FULL-EXPORT") {
		t.Error("prefix check without date should match")
	}
	if !l.Check("alice@example.com", "FULL-EXPORT;03/01/2024") {
		t.Error("full tag-with-date check should match")
	}
	if l.Check("alice@example.com", "FULL-EXPORT;04/01/2024") {
		t.Error("check for a different date must not match")
	}
}

func TestCheckMissingFile(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "does-not-exist.txt"), nil)
	if l.Check("alice@example.com", TagFullExport) {
		t.Error("missing session file should report false, not fail")
	}
}

func TestRecordAppendFailureIsSwallowed(t *testing.T) {
	// A directory path cannot be opened for append; Record must not panic
	// and the ledger stays usable.
	l := New(t.TempDir(), nil)
	l.Record("alice@example.com", Tag(TagFullExport, "03/01/2024"))
	if l.Check("alice@example.com", TagFullExport) {
		t.Error("failed append must not make the entry visible")
	}
}

func TestRecordIsAppendOnly(t *testing.T) {
	l := newTestLedger(t)

	l.Record("alice@example.com", Tag(TagFullExport, "03/01/2024"))
	l.Record("alice@example.com", Tag(TagFullImport, "03/01/2024"))
	l.Record("alice@example.com", Tag(TagFullExport, "04/02/2024"))

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("ledger has %d lines, want 3:\n%s", len(lines), data)
	}
	if lines[0] != "alice@example.com;FULL-EXPORT;03/01/2024" {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestConcurrentAppends(t *testing.T) {
	l := newTestLedger(t)

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				l.Record("user@example.com", Tag(TagIncrExport, "01/01/2024"))
			}
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(l.Path())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != writers*perWriter {
		t.Fatalf("ledger has %d lines, want %d", len(lines), writers*perWriter)
	}
	for i, line := range lines {
		if line != "user@example.com;INCR-EXPORT;01/01/2024" {
			t.Fatalf("line %d is interleaved or partial: %q", i, line)
		}
	}
}
