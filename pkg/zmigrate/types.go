// Package zmigrate holds the public result types of a migration run.
package zmigrate

// AccountStatus is the reported outcome for one account.
type AccountStatus struct {
	Mail          string
	LdiffExported bool
	FullyMigrated bool
	IncrMigrated  bool
	LastFullDate  string // MM/DD/YYYY, empty when no full backup exists
}

// Summary aggregates a run's outcome across all accounts.
type Summary struct {
	RunID         string
	Total         int
	LdiffExported int
	FullyMigrated int
	IncrMigrated  int
	Accounts      []AccountStatus
}
