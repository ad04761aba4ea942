package legislator

import (
	"sort"
)

// DiffResult lists membership changes between two scrapes of a source.
type DiffResult struct {
	Added   []*Record `json:"added"`
	Removed []*Record `json:"removed"`
}

// Empty reports whether nothing changed.
func (d *DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Diff compares the current records against a previous scrape by ID.
// A nil previous slice means every current record is new.
func Diff(previous, current []*Record) *DiffResult {
	result := &DiffResult{
		Added:   make([]*Record, 0),
		Removed: make([]*Record, 0),
	}

	prevIDs := make(map[string]bool, len(previous))
	for _, r := range previous {
		prevIDs[r.ID] = true
	}
	currIDs := make(map[string]bool, len(current))
	for _, r := range current {
		currIDs[r.ID] = true
	}

	for _, r := range current {
		if !prevIDs[r.ID] {
			result.Added = append(result.Added, r)
		}
	}
	for _, r := range previous {
		if !currIDs[r.ID] {
			result.Removed = append(result.Removed, r)
		}
	}

	// Sort for consistent output
	sort.Slice(result.Added, func(i, j int) bool { return result.Added[i].Name < result.Added[j].Name })
	sort.Slice(result.Removed, func(i, j int) bool { return result.Removed[i].Name < result.Removed[j].Name })

	return result
}
