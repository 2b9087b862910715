// Package report prints the post-run migration summary.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/openmailtools/zmigrate/internal/account"
	"github.com/openmailtools/zmigrate/pkg/zmigrate"
)

// Summarize collapses the account records of a finished run into the public
// summary shape.
func Summarize(runID string, accounts []*account.Record) zmigrate.Summary {
	s := zmigrate.Summary{RunID: runID, Total: len(accounts)}
	for _, a := range accounts {
		st := zmigrate.AccountStatus{
			Mail:          a.Mail,
			LdiffExported: a.LdiffExported.Succeeded(),
			FullyMigrated: a.FullMigrated.Succeeded(),
			IncrMigrated:  a.IncrMigrated.Succeeded(),
		}
		if date, ok := a.LastFullDate(); ok {
			st.LastFullDate = date
		}
		if st.LdiffExported {
			s.LdiffExported++
		}
		if st.FullyMigrated {
			s.FullyMigrated++
		}
		if st.IncrMigrated {
			s.IncrMigrated++
		}
		s.Accounts = append(s.Accounts, st)
	}
	return s
}

// Printer renders a summary to a writer.
type Printer struct {
	W io.Writer
}

func (p *Printer) banner(title string) {
	line := strings.Repeat("=", 60)
	fmt.Fprintf(p.W, "\n%s\n%s\n%s\n", line, title, line)
}

// PrintAll renders the totals and every per-category account listing.
func (p *Printer) PrintAll(s zmigrate.Summary) {
	p.PrintTotals(s)
	p.PrintFullMigrated(s)
	p.PrintFullNotMigrated(s)
	p.PrintIncrMigrated(s)
	p.PrintIncrNotMigrated(s)
}

// PrintTotals renders the summary banner.
func (p *Printer) PrintTotals(s zmigrate.Summary) {
	p.banner("MIGRATION SUMMARY")
	fmt.Fprintf(p.W, "  Run ID:                   %s\n", s.RunID)
	fmt.Fprintf(p.W, "  Total accounts:           %d\n", s.Total)
	fmt.Fprintf(p.W, "  LDIFF exported:           %d\n", s.LdiffExported)
	fmt.Fprintf(p.W, "  Fully migrated:           %d\n", s.FullyMigrated)
	fmt.Fprintf(p.W, "  Incrementally migrated:   %d\n", s.IncrMigrated)
	fmt.Fprintln(p.W, strings.Repeat("=", 60))
}

// PrintFullMigrated lists the fully migrated accounts.
func (p *Printer) PrintFullMigrated(s zmigrate.Summary) {
	p.banner("ACCOUNTS FULLY MIGRATED")
	for _, a := range s.Accounts {
		if !a.FullyMigrated {
			continue
		}
		fmt.Fprintf(p.W, "  + %s\n", a.Mail)
		if a.LastFullDate != "" {
			fmt.Fprintf(p.W, "    Last full backup: %s\n", a.LastFullDate)
		}
	}
}

// PrintFullNotMigrated lists accounts still needing a full migration, with a
// restart hint where a previous backup date is known.
func (p *Printer) PrintFullNotMigrated(s zmigrate.Summary) {
	p.banner("ACCOUNTS NOT FULLY MIGRATED")
	for _, a := range s.Accounts {
		if a.FullyMigrated {
			continue
		}
		fmt.Fprintf(p.W, "  - %s\n", a.Mail)
		if a.LastFullDate != "" {
			fmt.Fprintf(p.W, "    Last full backup: %s\n", a.LastFullDate)
			fmt.Fprintf(p.W, "    Please start a new full migration\n")
		}
	}
}

// PrintIncrMigrated lists the incrementally migrated accounts.
func (p *Printer) PrintIncrMigrated(s zmigrate.Summary) {
	p.banner("ACCOUNTS INCREMENTALLY MIGRATED")
	for _, a := range s.Accounts {
		if a.IncrMigrated {
			fmt.Fprintf(p.W, "  + %s\n", a.Mail)
		}
	}
}

// PrintIncrNotMigrated lists accounts without an incremental migration.
func (p *Printer) PrintIncrNotMigrated(s zmigrate.Summary) {
	p.banner("ACCOUNTS NOT INCREMENTALLY MIGRATED")
	for _, a := range s.Accounts {
		if !a.IncrMigrated {
			fmt.Fprintf(p.W, "  - %s\n", a.Mail)
		}
	}
}
