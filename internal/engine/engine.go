// Package engine drives accounts through the migration phases and fans the
// account list out across a pool of workers.
package engine

import (
	"context"
	"log/slog"

	"github.com/openmailtools/zmigrate/internal/account"
	"github.com/openmailtools/zmigrate/internal/session"
	"github.com/openmailtools/zmigrate/internal/transfer"
)

// Transfer is the narrow surface the engine needs from the transfer layer.
type Transfer interface {
	ExportEntry(ctx context.Context, a *account.Record) transfer.Result
	RewriteEntry(a *account.Record, targetStore string) error
	ImportEntry(ctx context.Context, a *account.Record) transfer.Result
	ExportFull(ctx context.Context, a *account.Record) transfer.Result
	ImportFull(ctx context.Context, a *account.Record, host string) transfer.Result
	ExportIncr(ctx context.Context, a *account.Record, date string) transfer.Result
	ImportIncr(ctx context.Context, a *account.Record, date, host string) transfer.Result
}

// Options selects which migration types a run performs.
type Options struct {
	Ldiff bool
	Full  bool
	Incr  bool
}

// Engine runs one batch of accounts through the selected migration types:
// directory entries first, then full transfer, then incremental transfer
// with cutover. Within each type the export pass over the whole batch
// completes before the import pass begins, so import pre-checks always see
// durable export state. A single account's failure is logged, marked on its
// record, and never stops the batch.
//
// The engine consults the ledger before acting and records after acting;
// the account flags it mutates are only a per-run cache of that history.
type Engine struct {
	Transfer    Transfer
	Ledger      *session.Ledger
	TargetStore string // load-balancing target for directory imports; empty disables rewrite+import
	IncrDate    string // explicit incremental window start; empty falls back per account
	Log         *slog.Logger
}

func (e *Engine) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}

// Run processes the batch. Accounts are handled in the order supplied.
func (e *Engine) Run(ctx context.Context, accounts []*account.Record, opts Options) {
	if opts.Ldiff {
		e.runLdiff(ctx, accounts)
	}
	if opts.Full {
		e.runFull(ctx, accounts)
	}
	if opts.Incr {
		e.runIncremental(ctx, accounts)
	}
}

// runLdiff exports, rewrites and imports directory entries. There is no
// ledger gating here: directory entries are cheap and re-attempted every run.
func (e *Engine) runLdiff(ctx context.Context, accounts []*account.Record) {
	log := e.logger()
	log.Info("processing directory entries", "accounts", len(accounts))

	for _, a := range accounts {
		res := e.Transfer.ExportEntry(ctx, a)
		if !res.OK {
			a.LdiffExported = account.PhaseFailed
			continue
		}
		a.LdiffExported = account.PhaseSucceeded

		if e.TargetStore == "" {
			continue
		}
		if err := e.Transfer.RewriteEntry(a, e.TargetStore); err != nil {
			log.Error("entry rewrite failed", "account", a.Mail, "error", err)
			a.LdiffImported = account.PhaseFailed
			continue
		}
		if res := e.Transfer.ImportEntry(ctx, a); res.OK {
			a.LdiffImported = account.PhaseSucceeded
		} else {
			a.LdiffImported = account.PhaseFailed
		}
	}
}

// runFull performs the batched two-pass full migration.
func (e *Engine) runFull(ctx context.Context, accounts []*account.Record) {
	log := e.logger()
	log.Info("processing full migration", "accounts", len(accounts))

	// Export pass.
	for _, a := range accounts {
		if e.Ledger.Check(a.Mail, session.TagFullExport) {
			log.Info("full backup already exported", "account", a.Mail)
			a.FullExported = account.PhaseSucceeded
			continue
		}

		res := e.Transfer.ExportFull(ctx, a)
		if !res.OK {
			a.FullExported = account.PhaseFailed
			continue
		}
		a.FullExported = account.PhaseSucceeded
		if date, ok := a.LastFullDate(); ok {
			e.Ledger.Record(a.Mail, session.Tag(session.TagFullExport, date))
		}
	}

	// Import pass: only for accounts whose export succeeded this run or a
	// prior one.
	for _, a := range accounts {
		if e.Ledger.Check(a.Mail, session.TagFullImport) {
			log.Info("full backup already imported", "account", a.Mail)
			a.FullMigrated = account.PhaseSucceeded
			continue
		}
		if !a.FullExported.Succeeded() {
			continue
		}

		res := e.Transfer.ImportFull(ctx, a, a.MailHost)
		if !res.OK {
			a.FullMigrated = account.PhaseFailed
			continue
		}
		a.FullMigrated = account.PhaseSucceeded
		if date, ok := a.LastFullDate(); ok {
			e.Ledger.Record(a.Mail, session.Tag(session.TagFullImport, date))
		}
	}
}

// runIncremental performs the batched two-pass incremental migration and the
// per-account cutover on successful import.
func (e *Engine) runIncremental(ctx context.Context, accounts []*account.Record) {
	log := e.logger()
	log.Info("processing incremental migration", "accounts", len(accounts))

	// Export pass.
	for _, a := range accounts {
		date := e.incrDateFor(a)
		if date == "" {
			log.Warn("no full backup date, skipping incremental", "account", a.Mail)
			continue
		}

		res := e.Transfer.ExportIncr(ctx, a, date)
		if !res.OK {
			a.IncrExported = account.PhaseFailed
			continue
		}
		a.IncrExported = account.PhaseSucceeded
		e.Ledger.Record(a.Mail, session.Tag(session.TagIncrExport, date))
	}

	// Import pass. An import is attempted only when an incremental export
	// succeeded this run or a prior one: no import without export.
	for _, a := range accounts {
		date := e.incrDateFor(a)
		if date == "" {
			continue
		}
		if !a.IncrExported.Succeeded() && !e.Ledger.Check(a.Mail, session.TagIncrExport) {
			continue
		}

		res := e.Transfer.ImportIncr(ctx, a, date, a.MailHost)
		if !res.OK {
			a.IncrMigrated = account.PhaseFailed
			continue
		}
		a.IncrMigrated = account.PhaseSucceeded
		e.Ledger.Record(a.Mail, session.Tag(session.TagIncrImport, date))
	}
}

// incrDateFor resolves the incremental window start for an account: the
// explicitly supplied date wins, then the account's last full backup date.
// Empty means the window cannot be bounded and the account is skipped.
func (e *Engine) incrDateFor(a *account.Record) string {
	if e.IncrDate != "" {
		return e.IncrDate
	}
	if date, ok := a.LastFullDate(); ok {
		return date
	}
	return ""
}
