package wikidate

import (
	"errors"
	"testing"
)

func FuzzParse(f *testing.F) {
	seeds := []string{
		"{{birth date and age|1950|3|4}}",
		"{{birth date and age|df=y|1950|3|4}}",
		"{{birth date and age|March 4, 1950}}",
		"{{birth date and age|",
		"{{birth based on age as of date|73|2023|3|4}}",
		"{{birth year and age|1950}}",
		"{{Bbad|73|2023|3|4}}",
		"{{Bbad|99999999999999999999|2023|3|4}}",
		"{{circa|1950}}",
		"{{circa|",
		"1950",
		"c. 1950",
		"March 4, 1950",
		"",
		"\xff\xfe",
		"}}|{{",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		d, err := Parse(raw)
		if err != nil {
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) returned %T, want *ParseError", raw, err)
			}
			return
		}
		if d.IsZero() {
			t.Fatalf("Parse(%q) returned zero date without error", raw)
		}
		if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
			t.Fatalf("Parse(%q) = %v, invalid fields", raw, d)
		}
	})
}
