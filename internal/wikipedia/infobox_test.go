package wikipedia

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoboxField(t *testing.T) {
	tests := []struct {
		name     string
		wikitext string
		field    string
		want     string
		wantOK   bool
	}{
		{
			name:     "officeholder infobox",
			wikitext: janeWikitext,
			field:    "birth_date",
			want:     "{{birth date and age|1950|3|4}}",
			wantOK:   true,
		},
		{
			name:     "space separated name",
			wikitext: "{{Infobox person|name=X|birth date={{Bbad|50|2020|12|31}}}}",
			field:    "birth_date",
			want:     "{{Bbad|50|2020|12|31}}",
			wantOK:   true,
		},
		{
			name:     "pipes in links and nested templates",
			wikitext: "{{infobox officeholder|office=[[A|B]]|predecessor={{nowrap|x|y}}|birth_date=1950}}",
			field:    "birth_date",
			want:     "1950",
			wantOK:   true,
		},
		{
			name:     "second infobox",
			wikitext: "{{Infobox military person|name=X}}\n{{Infobox officeholder|birth_date=c. 1950}}",
			field:    "birth_date",
			want:     "c. 1950",
			wantOK:   true,
		},
		{
			name:     "commented out value",
			wikitext: "{{Infobox person|birth_date=<!-- {{birth date|1950|3|4}} -->}}",
			field:    "birth_date",
			want:     "",
			wantOK:   true,
		},
		{
			name:     "no infobox",
			wikitext: "'''Jane''' is a politician.",
			field:    "birth_date",
			wantOK:   false,
		},
		{
			name:     "unterminated infobox",
			wikitext: "{{Infobox person|birth_date=1950",
			field:    "birth_date",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := InfoboxField(tt.wikitext, tt.field)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitParams(t *testing.T) {
	got := SplitParams("birth date and age|1950|3|4|df={{yes|y}}|note=[[a|b]]")
	assert.Equal(t, []string{"birth date and age", "1950", "3", "4", "df={{yes|y}}", "note=[[a|b]]"}, got)
}
