package wikidate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/legislator-ages/internal/logger"
)

var (
	// year|month|day followed by the end of the macro or another parameter
	reDateAndAge = regexp.MustCompile(`(\d{4})\|(\d+)\|(\d+)[}|]`)

	// age|year|month|day; the age-as-of macro tolerates one space before the pipe
	reAgeAsOf = regexp.MustCompile(`(\d+)\s?\|(\d{4})\|(\d+)\|(\d+)`)
	reBbad    = regexp.MustCompile(`(\d+)\|(\d{4})\|(\d+)\|(\d+)`)
)

// parseBirthDateAndAge reads {{birth date and age|Y|M|D|...}}. When the
// numeric form is missing it falls back to the generic parser on the first
// parameter and logs a warning.
func parseBirthDateAndAge(raw string) (CalendarDate, error) {
	m := reDateAndAge.FindStringSubmatch(raw)
	if m == nil {
		body, ok := firstParam(raw)
		if !ok {
			return CalendarDate{}, newParseError(ErrUnrecognizedDialect, BirthDateAndAge, raw,
				fmt.Errorf("no parameter between '|' and '}'"))
		}
		logger.Warn("had to parse date in birth date and age macro", logger.Fields{"date": body})
		d, err := ParseFreeText(body)
		if err != nil {
			return CalendarDate{}, newParseError(ErrUnrecognizedDialect, BirthDateAndAge, raw, err)
		}
		return d, nil
	}

	d, err := dateFromGroups(m[1], m[2], m[3], 0)
	if err != nil {
		return CalendarDate{}, newParseError(ErrMalformedMacroBody, BirthDateAndAge, raw, err)
	}
	return d, nil
}

// parseBirthYearAndAge reads {{birth year and age|Y}}.
func parseBirthYearAndAge(raw string) (CalendarDate, error) {
	body, ok := firstParam(raw)
	if !ok {
		return CalendarDate{}, newParseError(ErrMalformedMacroBody, BirthYearAndAge, raw,
			fmt.Errorf("no parameter between '|' and '}'"))
	}
	d, err := yearOnly(body)
	if err != nil {
		return CalendarDate{}, newParseError(ErrMalformedMacroBody, BirthYearAndAge, raw, err)
	}
	return d, nil
}

// parseBirthBasedOnAgeAsOf reads {{birth based on age as of date|A|Y|M|D}}
// and back-calculates the birth year as Y-A. There is no fallback.
func parseBirthBasedOnAgeAsOf(raw string) (CalendarDate, error) {
	return parseAgeAsOf(raw, reAgeAsOf, BirthBasedOnAgeAsOfDate)
}

// parseBbad reads {{Bbad|A|Y|M|D}}, the short form of the age-as-of macro.
func parseBbad(raw string) (CalendarDate, error) {
	return parseAgeAsOf(raw, reBbad, Bbad)
}

func parseAgeAsOf(raw string, re *regexp.Regexp, dialect Dialect) (CalendarDate, error) {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return CalendarDate{}, newParseError(ErrMalformedMacroBody, dialect, raw,
			fmt.Errorf("expected age|year|month|day"))
	}
	age, err := strconv.Atoi(m[1])
	if err != nil {
		return CalendarDate{}, newParseError(ErrMalformedMacroBody, dialect, raw, err)
	}
	d, err := dateFromGroups(m[2], m[3], m[4], age)
	if err != nil {
		return CalendarDate{}, newParseError(ErrMalformedMacroBody, dialect, raw, err)
	}
	return d, nil
}

// parseCirca reads {{circa|Y}}.
func parseCirca(raw string) (CalendarDate, error) {
	body, ok := firstParam(raw)
	if !ok {
		return CalendarDate{}, newParseError(ErrMalformedMacroBody, CircaYear, raw,
			fmt.Errorf("no parameter between '|' and '}'"))
	}
	d, err := yearOnly(body)
	if err != nil {
		return CalendarDate{}, newParseError(ErrMalformedMacroBody, CircaYear, raw, err)
	}
	return d, nil
}

func isPlainYear(raw string) bool {
	if len(raw) != 4 {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return false
		}
	}
	return true
}

func parsePlainYear(raw string) (CalendarDate, error) {
	d, err := yearOnly(raw)
	if err != nil {
		// "0000"
		return CalendarDate{}, newParseError(ErrUnrecognizedDialect, PlainYear, raw, err)
	}
	return d, nil
}

func parseCPrefixed(raw string) (CalendarDate, error) {
	d, err := ParseFreeText(strings.TrimPrefix(raw, "c. "))
	if err != nil {
		return CalendarDate{}, newParseError(ErrUnrecognizedDialect, CPrefixed, raw, err)
	}
	return d, nil
}

func parseFreeTextFallback(raw string) (CalendarDate, error) {
	d, err := ParseFreeText(raw)
	if err != nil {
		return CalendarDate{}, newParseError(ErrUnrecognizedDialect, FreeText, raw, err)
	}
	return d, nil
}

// firstParam returns the trimmed text between the first '|' and the next '}'.
func firstParam(raw string) (string, bool) {
	i := strings.IndexByte(raw, '|')
	if i < 0 {
		return "", false
	}
	j := strings.IndexByte(raw[i+1:], '}')
	if j < 0 {
		return "", false
	}
	return strings.TrimSpace(raw[i+1 : i+1+j]), true
}

func yearOnly(s string) (CalendarDate, error) {
	year, err := strconv.Atoi(s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("year %q is not an integer", s)
	}
	return NewCalendarDate(year, 1, 1)
}

// dateFromGroups builds year-yearsBack/month/day from regex captures.
func dateFromGroups(year, month, day string, yearsBack int) (CalendarDate, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return CalendarDate{}, err
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return CalendarDate{}, err
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return CalendarDate{}, err
	}
	return NewCalendarDate(y-yearsBack, m, d)
}
