// Package account defines the per-mailbox migration record: stable identity,
// derived artifact paths, and the mutable per-phase state flags.
//
// Records are statically partitioned across workers, one owner at a time, so
// the flags need no locking. Durable phase history lives in the session
// ledger; the flags here are an advisory cache rebuilt every run.
package account

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DateLayout is the MM/DD/YYYY format the backup endpoints expect.
const DateLayout = "01/02/2006"

// PhaseState is the tri-state outcome of one migration phase for one account.
type PhaseState int

const (
	PhaseNotAttempted PhaseState = iota
	PhaseSucceeded
	PhaseFailed
)

// Succeeded reports whether the phase completed successfully.
func (s PhaseState) Succeeded() bool { return s == PhaseSucceeded }

func (s PhaseState) String() string {
	switch s {
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "not attempted"
	}
}

// Record represents one mailbox account being migrated.
// Identity fields are immutable after construction; only the migration
// engine that owns the record mutates the phase flags.
type Record struct {
	Mail       string // source address, primary key
	MailDst    string // destination address
	MailHost   string // resolved destination store host
	RootFolder string // base directory for this account's artifacts

	LdiffExported PhaseState
	LdiffImported PhaseState
	FullExported  PhaseState
	FullMigrated  PhaseState
	IncrExported  PhaseState
	IncrMigrated  PhaseState
}

// New constructs a record with identity fields set and all phases not attempted.
func New(mail, mailDst, mailHost, rootFolder string) *Record {
	return &Record{
		Mail:       mail,
		MailDst:    mailDst,
		MailHost:   mailHost,
		RootFolder: rootFolder,
	}
}

// Folder returns the account's working directory under the root folder.
func (r *Record) Folder() string {
	return filepath.Join(r.RootFolder, r.Mail)
}

// EntryPath returns the path of the exported directory entry.
func (r *Record) EntryPath() string {
	return filepath.Join(r.Folder(), r.Mail+".ldiff")
}

// BackupPath returns the path of the full backup archive.
func (r *Record) BackupPath() string {
	return filepath.Join(r.Folder(), r.Mail+".tgz")
}

// IncrBackupPath returns the path of the incremental archive for the given
// MM/DD/YYYY date.
func (r *Record) IncrBackupPath(date string) string {
	name := fmt.Sprintf("%s-%s.tgz", r.Mail, strings.ReplaceAll(date, "/", "-"))
	return filepath.Join(r.Folder(), name)
}

// ExportLogPath returns the path of the full-export transfer log.
func (r *Record) ExportLogPath() string {
	return filepath.Join(r.Folder(), r.Mail+"-export.log")
}

// ImportLogPath returns the path of the full-import transfer log.
func (r *Record) ImportLogPath() string {
	return filepath.Join(r.Folder(), r.Mail+"-import.log")
}

// IncrExportLogPath returns the path of the incremental-export transfer log.
func (r *Record) IncrExportLogPath() string {
	return filepath.Join(r.Folder(), r.Mail+"-incr-export.log")
}

// IncrImportLogPath returns the path of the incremental-import transfer log.
func (r *Record) IncrImportLogPath() string {
	return filepath.Join(r.Folder(), r.Mail+"-incr-import.log")
}

// LastFullDate returns the date of the last full backup in MM/DD/YYYY format.
// The archive's modification date is moved one calendar day back because the
// backup endpoint's after: query is inclusive; re-fetching the boundary day
// is cheaper than losing it. Returns false if no full backup archive exists.
func (r *Record) LastFullDate() (string, bool) {
	info, err := os.Stat(r.BackupPath())
	if err != nil {
		return "", false
	}
	y, m, d := info.ModTime().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return day.Format(DateLayout), true
}

func (r *Record) String() string {
	return fmt.Sprintf("Account(mail=%s, host=%s)", r.Mail, r.MailHost)
}
