package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-ldap/ldap/v3"

	"github.com/openmailtools/zmigrate/internal/account"
	"github.com/openmailtools/zmigrate/internal/config"
)

// DirectoryLoader queries the source cluster's directory service for
// accounts matching a filter. Each matching entry must carry a delivery
// address and a mail host; entries missing either are skipped.
type DirectoryLoader struct {
	Directory  config.Directory
	Filter     string
	RootFolder string
	Log        *slog.Logger

	// dial is swappable in tests.
	dial func(url string) (ldapConn, error)
}

// ldapConn is the slice of *ldap.Conn the loader uses.
type ldapConn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// Load connects, binds, and searches the directory for account entries.
func (l *DirectoryLoader) Load(ctx context.Context) ([]*account.Record, error) {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}

	dial := l.dial
	if dial == nil {
		dial = func(url string) (ldapConn, error) { return ldap.DialURL(url) }
	}

	url := l.Directory.URL()
	log.Info("connecting to directory service", "url", url)
	conn, err := dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to directory %s: %w", url, err)
	}
	defer conn.Close()

	if err := conn.Bind(l.Directory.BindUser, l.Directory.BindPassword); err != nil {
		return nil, fmt.Errorf("binding to directory as %s: %w", l.Directory.BindUser, err)
	}

	filter := l.Filter
	if filter == "" {
		filter = "(objectClass=*)"
	}
	req := ldap.NewSearchRequest(
		l.Directory.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		filter,
		[]string{attrDeliveryAddress, attrMailHost},
		nil,
	)
	res, err := conn.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching directory with filter %s: %w", filter, err)
	}

	return l.entriesToAccounts(res.Entries, log), nil
}

func (l *DirectoryLoader) entriesToAccounts(entries []*ldap.Entry, log *slog.Logger) []*account.Record {
	var accounts []*account.Record
	for _, entry := range entries {
		mail := entry.GetAttributeValue(attrDeliveryAddress)
		host := entry.GetAttributeValue(attrMailHost)
		if mail == "" || host == "" {
			log.Warn("skipping directory entry without address or host", "dn", entry.DN)
			continue
		}

		// Directory-sourced accounts keep their address across clusters.
		a := account.New(mail, mail, host, l.RootFolder)
		accounts = append(accounts, a)
		log.Debug("loaded account from directory", "account", mail)
	}
	return accounts
}
