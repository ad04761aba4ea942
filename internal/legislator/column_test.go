package legislator

import "testing"

func TestResolveColumn(t *testing.T) {
	cols := []string{"Portrait", "Senator", "Party - 1", "Party - 2", "Born", "Mandatory retirement"}

	tests := []struct {
		name    string
		want    string
		expect  string
		wantErr bool
	}{
		{"exact", "Born", "Born", false},
		{"case-insensitive", "senator", "Senator", false},
		{"colspan prefix", "Party", "Party - 1", false},
		{"close typo", "Bron", "Born", false},
		{"retirement prefix", "Mandatory", "Mandatory retirement", false},
		{"too far", "Riding", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveColumn(cols, tt.want)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveColumn() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.expect {
				t.Errorf("ResolveColumn() = %q, want %q", got, tt.expect)
			}
		})
	}
}
