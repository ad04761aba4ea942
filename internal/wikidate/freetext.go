package wikidate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const layoutISO = "2006-01-02"

// freeTextLayouts are tried in order before handing the text to dateparse.
// They cover what English Wikipedia prose actually uses and keep partial
// dates deterministic (missing month or day becomes 1).
var freeTextLayouts = []string{
	layoutISO,
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"January 2006",
	"Jan 2006",
	"2006",
}

var reBorn = regexp.MustCompile(`\(.*?born (.*?)(in .*?)?\)`)

var reYear = regexp.MustCompile(`^\d{4}$`)

// ParseFreeText reads a natural-language date such as "March 4, 1950",
// "4 March 1950" or "1950-03-04". Errors match ErrUnparsableFreeText.
func ParseFreeText(s string) (CalendarDate, error) {
	text := strings.TrimSpace(s)
	text = strings.TrimRight(text, " ,;.")
	if text == "" {
		return CalendarDate{}, newParseError(ErrUnparsableFreeText, FreeText, s, fmt.Errorf("empty input"))
	}

	for _, layout := range freeTextLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return checkedDate(t, s)
		}
	}

	if !strings.ContainsAny(text, "0123456789") {
		return CalendarDate{}, newParseError(ErrUnparsableFreeText, FreeText, s, fmt.Errorf("no digits"))
	}
	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return CalendarDate{}, newParseError(ErrUnparsableFreeText, FreeText, s, err)
	}
	return checkedDate(t, s)
}

func checkedDate(t time.Time, input string) (CalendarDate, error) {
	if t.Year() < 1 || t.Year() > 9999 {
		return CalendarDate{}, newParseError(ErrUnparsableFreeText, FreeText, input,
			fmt.Errorf("year %d out of range", t.Year()))
	}
	return DateOf(t), nil
}

// ExtractBornDate finds the date inside a "(... born <date> [in <place>])"
// phrase of an article summary. A bare "(born in 1950)" yields "1950".
func ExtractBornDate(summary string) (string, bool) {
	m := reBorn.FindStringSubmatch(summary)
	if m == nil {
		return "", false
	}
	date := strings.TrimSpace(m[1])
	if date == "" {
		year := strings.TrimSpace(strings.TrimPrefix(m[2], "in "))
		if !reYear.MatchString(year) {
			return "", false
		}
		date = year
	}
	return date, true
}

// ParseBornPhrase extracts and parses the born date of an article summary.
func ParseBornPhrase(summary string) (CalendarDate, error) {
	date, ok := ExtractBornDate(summary)
	if !ok {
		return CalendarDate{}, newParseError(ErrUnparsableFreeText, FreeText, summary,
			fmt.Errorf("no (born ...) phrase"))
	}
	return ParseFreeText(date)
}
