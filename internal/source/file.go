package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/openmailtools/zmigrate/internal/account"
	"github.com/openmailtools/zmigrate/internal/stores"
)

// FileLoader reads accounts from a semicolon-separated two-column file:
// "sourceAddress; destinationAddress". Rows with fewer than two fields are
// skipped with a warning; surrounding whitespace is trimmed.
type FileLoader struct {
	Path       string
	Stores     *stores.Map // destination address -> store host
	RootFolder string
	Log        *slog.Logger
}

// Load reads the account file.
func (l *FileLoader) Load(ctx context.Context) ([]*account.Record, error) {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}

	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("opening account file %s: %w", l.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing account file %s: %w", l.Path, err)
	}

	var accounts []*account.Record
	for i, row := range rows {
		if len(row) < 2 {
			log.Warn("skipping malformed account row", "file", l.Path, "line", i+1)
			continue
		}
		mail := strings.TrimSpace(row[0])
		dst := strings.TrimSpace(row[1])
		if mail == "" || dst == "" {
			log.Warn("skipping account row with empty address", "file", l.Path, "line", i+1)
			continue
		}

		a := account.New(mail, dst, l.Stores.Resolve(dst), l.RootFolder)
		accounts = append(accounts, a)
		log.Debug("loaded account from file", "account", mail)
	}
	return accounts, nil
}
