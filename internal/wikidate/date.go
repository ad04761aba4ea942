package wikidate

import (
	"encoding/json"
	"fmt"
	"time"
)

// CalendarDate is a date without a time of day. Month and Day are 1 when the
// source only gave a year.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCalendarDate validates and builds a CalendarDate. It rejects exactly what
// a calendar would: months outside 1..12, days past the end of the month and
// years outside 1..9999.
func NewCalendarDate(year, month, day int) (CalendarDate, error) {
	if year < 1 || year > 9999 {
		return CalendarDate{}, fmt.Errorf("year %d out of range", year)
	}
	if month < 1 || month > 12 {
		return CalendarDate{}, fmt.Errorf("month %d out of range", month)
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return CalendarDate{}, fmt.Errorf("day %d out of range for %d-%02d", day, year, month)
	}
	return CalendarDate{Year: year, Month: time.Month(month), Day: day}, nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// IsZero reports whether d is the zero value, which stands for "no date".
func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

// Time returns midnight of d in loc. A nil loc means UTC.
func (d CalendarDate) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// String formats d as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes d as an ISO date string.
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes an ISO date string.
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(layoutISO, s)
	if err != nil {
		return fmt.Errorf("wikidate: invalid date %q: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
