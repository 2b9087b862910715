// Package stores resolves destination mailbox stores: the per-account
// destination-host mapping and the configured target-store list used for
// load balancing directory imports.
package stores

import (
	"encoding/csv"
	"fmt"
	"os"
)

// Map resolves destination addresses to their destination store host.
type Map struct {
	byMail   map[string]string
	fallback string
}

// NewMap creates a Map with the given fallback host for unmapped addresses.
func NewMap(fallback string) *Map {
	return &Map{byMail: make(map[string]string), fallback: fallback}
}

// LoadMap reads a comma-separated "email,host" mapping file.
// Rows with fewer than two fields are skipped.
func LoadMap(path, fallback string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening store mapping %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	m := NewMap(fallback)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing store mapping %s: %w", path, err)
	}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		m.Set(row[0], row[1])
	}
	return m, nil
}

// Set records the store host for a destination address.
func (m *Map) Set(mail, host string) {
	m.byMail[mail] = host
}

// Resolve returns the store host for a destination address, or the fallback
// host if the address is unmapped.
func (m *Map) Resolve(mail string) string {
	if host, ok := m.byMail[mail]; ok {
		return host
	}
	return m.fallback
}

// Len returns the number of explicit mappings.
func (m *Map) Len() int { return len(m.byMail) }

// Pick returns the target store at a zero-based index from the configured
// store list. An empty list yields no target store, which disables the
// load-balancing rewrite rather than failing the run.
func Pick(storeList []string, index int) (string, error) {
	if len(storeList) == 0 {
		return "", nil
	}
	if index < 0 || index >= len(storeList) {
		return "", fmt.Errorf("store index %d out of range: %d store(s) configured", index, len(storeList))
	}
	return storeList[index], nil
}
