package wikidate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pfrederiksen/legislator-ages/internal/logger"
)

// Dialect classifies the textual convention a raw date string uses.
type Dialect int

const (
	BirthDateAndAge Dialect = iota
	BirthBasedOnAgeAsOfDate
	BirthYearAndAge
	Bbad
	CircaYear
	PlainYear
	CPrefixed
	FreeText
)

var dialectNames = [...]string{
	BirthDateAndAge:         "BirthDateAndAge",
	BirthBasedOnAgeAsOfDate: "BirthBasedOnAgeAsOfDate",
	BirthYearAndAge:         "BirthYearAndAge",
	Bbad:                    "Bbad",
	CircaYear:               "CircaYear",
	PlainYear:               "PlainYear",
	CPrefixed:               "CPrefixed",
	FreeText:                "FreeText",
}

// String returns the dialect name.
func (d Dialect) String() string {
	if int(d) >= 0 && int(d) < len(dialectNames) {
		return dialectNames[d]
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// MarshalJSON encodes the dialect as its name.
func (d Dialect) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a dialect name.
func (d *Dialect) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range dialectNames {
		if name == s {
			*d = Dialect(i)
			return nil
		}
	}
	return fmt.Errorf("wikidate: unknown dialect %q", truncate(s))
}

// Rule pairs a dialect with the predicate that selects it and the parser
// that reads it.
type Rule struct {
	Dialect  Dialect
	Prefixes []string // informational; empty for pattern-based rules
	Match    func(raw string) bool
	Parse    func(raw string) (CalendarDate, error)
}

// rules is evaluated top to bottom; the first matching rule wins even when a
// later one would also match.
var rules = []Rule{
	prefixRule(BirthDateAndAge, parseBirthDateAndAge,
		"{{birth date and age", "{{Birth date and age", "{{Birth-date and age", "{{nowrap|birth date and age"),
	prefixRule(BirthBasedOnAgeAsOfDate, parseBirthBasedOnAgeAsOf,
		"{{birth based on age as of date", "{{Birth based on age as of date"),
	prefixRule(BirthYearAndAge, parseBirthYearAndAge,
		"{{birth year and age", "{{Birth year and age"),
	prefixRule(Bbad, parseBbad, "{{Bbad"),
	{Dialect: PlainYear, Match: isPlainYear, Parse: parsePlainYear},
	prefixRule(CircaYear, parseCirca, "{{circa"),
	prefixRule(CPrefixed, parseCPrefixed, "c. "),
	{Dialect: FreeText, Match: func(string) bool { return true }, Parse: parseFreeTextFallback},
}

// Rules returns a copy of the dispatch table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

func prefixRule(d Dialect, parse func(string) (CalendarDate, error), prefixes ...string) Rule {
	return Rule{
		Dialect:  d,
		Prefixes: prefixes,
		Match: func(raw string) bool {
			for _, p := range prefixes {
				if strings.HasPrefix(raw, p) {
					return true
				}
			}
			return false
		},
		Parse: parse,
	}
}

// Classify returns the dialect raw would be parsed as.
func Classify(raw string) Dialect {
	return match(raw).Dialect
}

// Parse classifies raw and parses it with its dialect's parser.
func Parse(raw string) (CalendarDate, error) {
	d, _, err := ParseWithDialect(raw)
	return d, err
}

// ParseWithDialect is Parse that also reports the dialect that was used.
func ParseWithDialect(raw string) (CalendarDate, Dialect, error) {
	if raw == "" {
		return CalendarDate{}, FreeText, newParseError(ErrUnrecognizedDialect, FreeText, raw, fmt.Errorf("empty input"))
	}
	r := match(raw)
	logger.IncrCounter("dialect." + r.Dialect.String())
	d, err := r.Parse(raw)
	return d, r.Dialect, err
}

func match(raw string) Rule {
	for _, r := range rules {
		if r.Match(raw) {
			return r
		}
	}
	// unreachable: the FreeText rule matches everything
	return rules[len(rules)-1]
}
