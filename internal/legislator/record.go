package legislator

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/legislator-ages/internal/wikidate"
)

// LinkSuffix is appended to a column name to store the href of the first
// anchor in that cell.
const LinkSuffix = "_link"

// Row is one scraped table row keyed by column header.
type Row map[string]string

// Link returns the href stored for col, if any.
func (r Row) Link(col string) string {
	return r[col+LinkSuffix]
}

// Record is a legislator row plus its normalized birth date and age.
type Record struct {
	ID          string                 `json:"id" msgpack:"id"`
	Source      string                 `json:"source" msgpack:"source"`
	Name        string                 `json:"name" msgpack:"name"`
	Row         Row                    `json:"row" msgpack:"row"`
	BirthDate   *wikidate.CalendarDate `json:"birth_date,omitempty" msgpack:"birth_date,omitempty"`
	Age         *int                   `json:"age,omitempty" msgpack:"age,omitempty"`
	DeclaredAge *int                   `json:"declared_age,omitempty" msgpack:"declared_age,omitempty"`
	Dialect     string                 `json:"dialect,omitempty" msgpack:"dialect,omitempty"`
	AgeSource   string                 `json:"age_source,omitempty" msgpack:"age_source,omitempty"`
	Error       string                 `json:"error,omitempty" msgpack:"error,omitempty"`
	FetchedAt   time.Time              `json:"fetched_at" msgpack:"fetched_at"`
}

// GenerateID creates a deterministic ID for a legislator. When the name is
// unknown the row contents are hashed instead.
func GenerateID(source, name string, row Row) string {
	key := name
	if key == "" {
		key = canonicalRow(row)
	}
	h := sha1.New()
	h.Write([]byte(source + "|" + strings.ToLower(strings.TrimSpace(key))))
	return fmt.Sprintf("%x", h.Sum(nil))
}

func canonicalRow(row Row) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(row[k])
		b.WriteByte(';')
	}
	return b.String()
}

// NewRecord builds a Record with ID and Name populated. nameColumn may be
// empty, in which case the record is unnamed.
func NewRecord(source string, row Row, nameColumn string, fetchedAt time.Time) *Record {
	name := strings.TrimSpace(row[nameColumn])
	return &Record{
		ID:        GenerateID(source, name, row),
		Source:    source,
		Name:      name,
		Row:       row,
		FetchedAt: fetchedAt.UTC(),
	}
}

// NewRecords builds one record per row, resolving nameColumn against cols.
func NewRecords(source string, cols []string, rows []Row, nameColumn string, fetchedAt time.Time) []*Record {
	resolved, _ := ResolveColumn(cols, nameColumn)
	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, NewRecord(source, row, resolved, fetchedAt))
	}
	return records
}

// SetAge records a successful age computation.
func (r *Record) SetAge(date wikidate.CalendarDate, age int, dialect, source string) {
	d := date
	a := age
	r.BirthDate = &d
	r.Age = &a
	r.Dialect = dialect
	r.AgeSource = source
	r.Error = ""
}

// SetEstimatedAge records an age that was derived without a birth date.
func (r *Record) SetEstimatedAge(age int, source string) {
	a := age
	r.BirthDate = nil
	r.Age = &a
	r.Dialect = ""
	r.AgeSource = source
	r.Error = ""
}

// SetError records a failed age computation and clears any earlier result.
func (r *Record) SetError(source string, err error) {
	r.BirthDate = nil
	r.Age = nil
	r.Dialect = ""
	r.AgeSource = source
	r.Error = err.Error()
}

// HasAge reports whether an age was computed for the record.
func (r *Record) HasAge() bool {
	return r.Age != nil
}

// Ages returns the computed ages of records, skipping those without one.
func Ages(records []*Record) []int {
	ages := make([]int, 0, len(records))
	for _, r := range records {
		if r.Age != nil {
			ages = append(ages, *r.Age)
		}
	}
	return ages
}
