package wikidate

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Wikitable "Born" cells look like "(1950-03-04) March 4, 1950 (age 73)".
var (
	reDeclaredAge = regexp.MustCompile(`age (\d+)`)
	reISODate     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// AgeDiscrepancy compares the age a page declares with the age computed from
// the birth date.
type AgeDiscrepancy struct {
	Declared int `json:"declared"`
	Computed int `json:"computed"`
}

// Delta is Computed minus Declared.
func (a AgeDiscrepancy) Delta() int { return a.Computed - a.Declared }

// Differs reports whether the two ages disagree.
func (a AgeDiscrepancy) Differs() bool { return a.Declared != a.Computed }

// DeclaredAge reads the "age N" annotation of a Born cell.
func DeclaredAge(born string) (int, bool) {
	m := reDeclaredAge.FindStringSubmatch(born)
	if m == nil {
		return 0, false
	}
	age, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return age, true
}

// ISODateIn returns the first YYYY-MM-DD date found in s.
func ISODateIn(s string) (CalendarDate, error) {
	match := reISODate.FindString(s)
	if match == "" {
		return CalendarDate{}, newParseError(ErrUnparsableFreeText, FreeText, s, fmt.Errorf("no ISO date"))
	}
	t, err := time.Parse(layoutISO, match)
	if err != nil {
		return CalendarDate{}, newParseError(ErrUnparsableFreeText, FreeText, s, err)
	}
	return DateOf(t), nil
}

// CompareBornCell parses the ISO birth date of a Born cell. When the cell
// also declares an age, the declared and computed ages are returned side by
// side; otherwise the discrepancy is nil.
func CompareBornCell(born string, now time.Time) (CalendarDate, *AgeDiscrepancy, error) {
	date, err := ISODateIn(born)
	if err != nil {
		return CalendarDate{}, nil, err
	}
	declared, ok := DeclaredAge(born)
	if !ok {
		return date, nil, nil
	}
	computed, _ := AgeFromDate(date, now)
	return date, &AgeDiscrepancy{Declared: declared, Computed: computed}, nil
}
