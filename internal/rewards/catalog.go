// Package rewards loads the authoritative reward catalog and grants rewards
// to players with at-most-once semantics.
package rewards

import (
	"encoding/json"
	"fmt"
)

// Entry is static reference data for one grantable reward.
type Entry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// Catalog is the versioned set of valid reward identifiers. Loaded once at
// startup; read-only afterwards.
type Catalog struct {
	Version     string
	LastUpdated string
	Entries     []Entry

	index map[string]Entry
}

// catalogDocument mirrors the external catalog JSON. The rewards field is a
// pointer so its absence is distinguishable from an empty list.
type catalogDocument struct {
	Version     string   `json:"version"`
	LastUpdated string   `json:"lastUpdated"`
	Rewards     *[]Entry `json:"rewards"`
}

// ParseCatalog parses a catalog document. A document without a rewards field
// is rejected.
func ParseCatalog(data []byte) (Catalog, error) {
	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog document: %w", err)
	}
	if doc.Rewards == nil {
		return Catalog{}, fmt.Errorf("catalog document missing rewards field")
	}

	catalog := Catalog{
		Version:     doc.Version,
		LastUpdated: doc.LastUpdated,
		Entries:     *doc.Rewards,
		index:       make(map[string]Entry, len(*doc.Rewards)),
	}
	for _, entry := range catalog.Entries {
		catalog.index[entry.ID] = entry
	}
	return catalog, nil
}

// Contains reports whether the catalog has an entry with the given id.
func (c Catalog) Contains(rewardID string) bool {
	_, ok := c.index[rewardID]
	return ok
}

// Get returns the entry for a reward id.
func (c Catalog) Get(rewardID string) (Entry, bool) {
	entry, ok := c.index[rewardID]
	return entry, ok
}

// Len returns the number of catalog entries.
func (c Catalog) Len() int {
	return len(c.Entries)
}
