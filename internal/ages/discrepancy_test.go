package ages

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pfrederiksen/legislator-ages/internal/legislator"
)

func intp(n int) *int { return &n }

func TestDiscrepancies(t *testing.T) {
	recs := []*legislator.Record{
		{ID: "a", Name: "Agrees", Age: intp(70), DeclaredAge: intp(70)},
		{ID: "b", Name: "One off", Age: intp(71), DeclaredAge: intp(70)},
		{ID: "c", Name: "Stale", Age: intp(60), DeclaredAge: intp(57)},
		{ID: "d", Name: "No declared", Age: intp(50)},
		{ID: "e", Name: "No computed", DeclaredAge: intp(50)},
		{ID: "f", Name: "Ahead", Age: intp(40), DeclaredAge: intp(41)},
	}

	got := Discrepancies(recs)
	names := make([]string, len(got))
	for i, d := range got {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"Stale", "One off", "Ahead"}, names)
	assert.Equal(t, 3, got[0].Delta)
	assert.Equal(t, 57, got[0].Declared)
	assert.Equal(t, 60, got[0].Computed)
	assert.Equal(t, -1, got[2].Delta)

	assert.Empty(t, Discrepancies(nil))
}
