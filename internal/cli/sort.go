package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/legislator-ages/internal/legislator"
)

// SortOrder represents how to sort records
type SortOrder string

const (
	SortTable   SortOrder = "table"    // Order of the scraped table
	SortName    SortOrder = "name"     // Alphabetical by name
	SortAge     SortOrder = "age"      // Youngest first
	SortAgeDesc SortOrder = "age-desc" // Oldest first
)

func parseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case SortTable, SortName, SortAge, SortAgeDesc:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be table, name, age or age-desc)", s)
}

// sortRecords returns a sorted copy of records. Records without an age sort
// last for the age orders.
func sortRecords(records []*legislator.Record, order SortOrder) []*legislator.Record {
	sorted := make([]*legislator.Record, len(records))
	copy(sorted, records)

	switch order {
	case SortName:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
		})
	case SortAge, SortAgeDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i].Age, sorted[j].Age
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			if order == SortAge {
				return *a < *b
			}
			return *a > *b
		})
	}
	return sorted
}
