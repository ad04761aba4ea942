package ages

import (
	"sort"

	"github.com/pfrederiksen/legislator-ages/internal/legislator"
	"github.com/pfrederiksen/legislator-ages/internal/wikidate"
)

// Discrepancy is a record whose page declares a different age than the one
// computed from its birth date.
type Discrepancy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	wikidate.AgeDiscrepancy
	Delta int `json:"delta"`
}

// Discrepancies lists records whose declared and computed ages differ,
// largest difference first.
func Discrepancies(records []*legislator.Record) []Discrepancy {
	out := make([]Discrepancy, 0)
	for _, r := range records {
		if r.DeclaredAge == nil || r.Age == nil {
			continue
		}
		d := wikidate.AgeDiscrepancy{Declared: *r.DeclaredAge, Computed: *r.Age}
		if !d.Differs() {
			continue
		}
		out = append(out, Discrepancy{ID: r.ID, Name: r.Name, AgeDiscrepancy: d, Delta: d.Delta()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return abs(out[i].Delta) > abs(out[j].Delta)
	})
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
