// Package transfer wraps the external commands that move account data
// between the clusters: directory entry export/import, full and incremental
// archive transfer over the stores' administrative HTTPS endpoints, and the
// final cutover command.
package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openmailtools/zmigrate/internal/account"
	"github.com/openmailtools/zmigrate/internal/artifact"
	"github.com/openmailtools/zmigrate/internal/config"
	"github.com/openmailtools/zmigrate/internal/transform"
)

// External binaries invoked per phase.
const (
	ldapSearchBin = "/opt/zimbra/common/bin/ldapsearch"
	ldapAddBin    = "/opt/zimbra/common/bin/ldapadd"
	curlBin       = "curl"
	sshBin        = "ssh"
	provBin       = "/opt/zimbra/bin/zmprov"
)

// The HTTPS transfers report failure through status lines embedded in the
// captured output, not through the process exit code; the output must carry
// a success marker and must not carry the server-error marker.
var successMarkers = []string{"HTTP/1.1 200 OK", "HTTP/1.1 204 No Content"}

const serverErrorMarker = "500 Server Error"

// Result is the outcome of one transfer invocation. Output is the combined
// diagnostic text, persisted verbatim next to the account's artifacts.
type Result struct {
	OK     bool
	Output string
}

// transferOK applies the uniform success predicate to captured output.
func transferOK(output string) bool {
	if strings.Contains(output, serverErrorMarker) {
		return false
	}
	for _, m := range successMarkers {
		if strings.Contains(output, m) {
			return true
		}
	}
	return false
}

// Executor performs the per-phase external calls for one migration run.
// It is stateless per call and safe for concurrent use by multiple workers.
type Executor struct {
	cfg    *config.Config
	store  *artifact.Store
	runner Runner
	log    *slog.Logger
}

// New creates an Executor backed by the given command runner.
func New(cfg *config.Config, store *artifact.Store, runner Runner, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{cfg: cfg, store: store, runner: runner, log: log.With("component", "transfer")}
}

// ExportEntry exports the account's directory entry from the source
// directory service to the account folder.
func (e *Executor) ExportEntry(ctx context.Context, a *account.Record) Result {
	e.log.Info("exporting directory entry", "account", a.Mail)
	if err := e.store.EnsureFolder(a); err != nil {
		return Result{Output: err.Error()}
	}

	d := e.cfg.Source.LDAP
	status, output := e.runner.Run(ctx, ldapSearchBin,
		"-x",
		"-H", d.URL(),
		"-D", d.BindUser,
		"-w", d.BindPassword,
		fmt.Sprintf("(mail=%s)", a.Mail),
		"-LLLLL",
	)
	if status != 0 {
		e.log.Error("directory entry export failed", "account", a.Mail, "status", status)
		return Result{Output: output}
	}

	if err := e.store.WriteFile(a.EntryPath(), []byte(output)); err != nil {
		e.log.Error("failed to write directory entry", "account", a.Mail, "error", err)
		return Result{Output: err.Error()}
	}
	return Result{OK: true, Output: output}
}

// RewriteEntry rewrites the exported directory entry so the account lands
// on the target store.
func (e *Executor) RewriteEntry(a *account.Record, targetStore string) error {
	raw, err := e.store.ReadFile(a.EntryPath())
	if err != nil {
		return fmt.Errorf("reading directory entry for %s: %w", a.Mail, err)
	}
	rewritten := transform.RewriteForStore(string(raw), targetStore)
	if err := e.store.WriteFile(a.EntryPath(), []byte(rewritten)); err != nil {
		return fmt.Errorf("writing rewritten entry for %s: %w", a.Mail, err)
	}
	return nil
}

// ImportEntry imports the account's directory entry into the destination
// directory service.
func (e *Executor) ImportEntry(ctx context.Context, a *account.Record) Result {
	e.log.Info("importing directory entry", "account", a.Mail)

	d := e.cfg.Destination.LDAP
	status, output := e.runner.Run(ctx, ldapAddBin,
		"-x",
		"-H", d.URL(),
		"-D", d.BindUser,
		"-w", d.BindPassword,
		"-f", a.EntryPath(),
	)
	if status != 0 {
		e.log.Error("directory entry import failed", "account", a.Mail, "status", status)
		return Result{Output: output}
	}
	return Result{OK: true, Output: output}
}

// ExportFull fetches the account's full backup archive from the source store.
func (e *Executor) ExportFull(ctx context.Context, a *account.Record) Result {
	e.log.Info("exporting full backup", "account", a.Mail)
	if err := e.store.EnsureFolder(a); err != nil {
		return Result{Output: err.Error()}
	}

	url := fmt.Sprintf("https://%s:%d/home/%s/?fmt=tgz",
		e.cfg.Source.Host, e.cfg.AdminPort(e.cfg.Source.Host), a.Mail)
	_, output := e.runner.Run(ctx, curlBin,
		"-kvv",
		"-u", e.cfg.Source.AdminUser+":"+e.cfg.Source.AdminPassword,
		"--insecure",
		url,
		"-o", a.BackupPath(),
	)
	e.saveLog(a.ExportLogPath(), output)

	if !transferOK(output) {
		e.log.Error("full backup export failed", "account", a.Mail)
		return Result{Output: output}
	}
	return Result{OK: true, Output: output}
}

// ImportFull uploads the account's full backup archive to its destination
// store host.
func (e *Executor) ImportFull(ctx context.Context, a *account.Record, host string) Result {
	e.log.Info("importing full backup", "account", a.Mail, "host", host)

	url := fmt.Sprintf("https://%s:%d/home/%s/?fmt=tgz&resolve=skip",
		host, e.cfg.AdminPort(host), a.MailDst)
	_, output := e.runner.Run(ctx, curlBin,
		"-kvv",
		"--upload-file", a.BackupPath(),
		"-u", e.cfg.Destination.AdminUser+":"+e.cfg.Destination.AdminPassword,
		url,
	)
	e.saveLog(a.ImportLogPath(), output)

	if !transferOK(output) {
		e.log.Error("full backup import failed", "account", a.Mail)
		return Result{Output: output}
	}
	return Result{OK: true, Output: output}
}

// ExportIncr fetches the archive of changes after the given MM/DD/YYYY date.
func (e *Executor) ExportIncr(ctx context.Context, a *account.Record, date string) Result {
	e.log.Info("exporting incremental backup", "account", a.Mail, "after", date)
	if err := e.store.EnsureFolder(a); err != nil {
		return Result{Output: err.Error()}
	}

	url := fmt.Sprintf("https://%s:%d/home/%s/?fmt=tgz&query=after:%s",
		e.cfg.Source.Host, e.cfg.AdminPort(e.cfg.Source.Host), a.Mail, date)
	_, output := e.runner.Run(ctx, curlBin,
		"-kvv",
		"-u", e.cfg.Source.AdminUser+":"+e.cfg.Source.AdminPassword,
		"--insecure",
		url,
		"-o", a.IncrBackupPath(date),
	)
	e.saveLog(a.IncrExportLogPath(), output)

	if !transferOK(output) {
		e.log.Error("incremental backup export failed", "account", a.Mail)
		return Result{Output: output}
	}
	return Result{OK: true, Output: output}
}

// ImportIncr uploads the incremental archive to the destination store and
// cuts the account over. A zero-byte archive means no changes since the
// last full backup: the upload is skipped, the account still cuts over, and
// the call succeeds.
func (e *Executor) ImportIncr(ctx context.Context, a *account.Record, date, host string) Result {
	path := a.IncrBackupPath(date)

	empty, err := e.store.Empty(path)
	if err != nil {
		e.log.Error("incremental archive missing", "account", a.Mail, "error", err)
		return Result{Output: err.Error()}
	}
	if empty {
		e.log.Info("no incremental changes", "account", a.Mail)
		e.Cutover(ctx, a)
		return Result{OK: true, Output: "no incremental changes"}
	}

	e.log.Info("importing incremental backup", "account", a.Mail, "host", host)
	url := fmt.Sprintf("https://%s:%d/home/%s/?fmt=tgz&resolve=skip",
		host, e.cfg.AdminPort(host), a.MailDst)
	_, output := e.runner.Run(ctx, curlBin,
		"-kvv",
		"--data-binary", "@"+path,
		"-u", e.cfg.Destination.AdminUser+":"+e.cfg.Destination.AdminPassword,
		url,
	)
	e.saveLog(a.IncrImportLogPath(), output)

	if !transferOK(output) {
		e.log.Error("incremental backup import failed", "account", a.Mail)
		return Result{Output: output}
	}

	e.Cutover(ctx, a)
	return Result{OK: true, Output: output}
}

// Cutover repoints the source account's canonical address at the
// destination address through the source cluster's administrative command.
// Best effort: re-running it is always safe, and a failure never rolls back
// the completed data transfer.
func (e *Executor) Cutover(ctx context.Context, a *account.Record) Result {
	e.log.Info("performing cutover", "account", a.Mail)

	remote := fmt.Sprintf("%s ma %s zimbraMailCanonicalAddress %s", provBin, a.Mail, a.MailDst)
	status, output := e.runner.Run(ctx, sshBin, e.cfg.Source.Host, remote)
	if status != 0 {
		e.log.Error("cutover failed", "account", a.Mail, "status", status)
		return Result{Output: output}
	}
	return Result{OK: true, Output: output}
}

// saveLog persists diagnostic output verbatim; a failed write only costs the
// log artifact, never the transfer outcome.
func (e *Executor) saveLog(path, output string) {
	if err := e.store.WriteFile(path, []byte(output)); err != nil {
		e.log.Error("failed to save transfer log", "path", path, "error", err)
	}
}
