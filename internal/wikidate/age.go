package wikidate

import (
	"fmt"
	"math"
	"time"
)

const (
	// DaysPerYear is the average year length used for every age computation.
	// Ages computed this way can be a day or so off near a birthday; wiki
	// declared ages are compared against the same approximation.
	DaysPerYear = 365.25

	// DefaultRetirementAge is the mandatory retirement age of the Senate of Canada.
	DefaultRetirementAge = 75

	// maxYearsToRetirement bounds a plausible retirement window.
	maxYearsToRetirement = 50
)

const secondsPerDay = 24 * 60 * 60

// Clock supplies "now" to callers that do not pass it explicitly.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// AgeFromDate returns the whole years between date and now, computed as
// floor(days / 365.25). It returns false when date is the zero value.
// A birth date after now yields a negative age; callers decide whether
// that is an error.
func AgeFromDate(date CalendarDate, now time.Time) (int, bool) {
	if date.IsZero() {
		return 0, false
	}
	days := daysBetween(date, DateOf(now))
	return int(math.Floor(float64(days) / DaysPerYear)), true
}

// AgeFromYear is AgeFromDate for January 1 of year.
func AgeFromYear(year int, now time.Time) int {
	age, _ := AgeFromDate(CalendarDate{Year: year, Month: time.January, Day: 1}, now)
	return age
}

// AgeFromMandatoryRetirement derives an age from the date someone must
// retire at retirementAge. The retirement date has to lie strictly between
// 0 and 50 years after now; anything else is reported as
// ErrImplausibleRetirementWindow rather than guessed.
//
// The day count runs from the instant now to midnight of the retirement
// date in now's location, floored to whole days.
func AgeFromMandatoryRetirement(raw string, now time.Time, retirementAge int) (int, error) {
	date, err := ParseFreeText(raw)
	if err != nil {
		return 0, err
	}
	days := math.Floor(date.Time(now.Location()).Sub(now).Hours() / 24)
	years := days / DaysPerYear
	if years <= 0 || years >= maxYearsToRetirement {
		return 0, newParseError(ErrImplausibleRetirementWindow, FreeText, raw,
			fmt.Errorf("%.2f years to retirement", years))
	}
	return int(float64(retirementAge) - years), nil
}

// daysBetween counts calendar days from a to b. Both are taken as UTC
// midnights so daylight saving shifts never lose a day.
func daysBetween(a, b CalendarDate) int64 {
	return (b.Time(time.UTC).Unix() - a.Time(time.UTC).Unix()) / secondsPerDay
}
