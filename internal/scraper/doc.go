// Package scraper provides HTTP fetching and HTML parsing for Wikipedia
// wikitables listing sitting legislators.
//
// A table's header row becomes its column list; a header spanning n columns
// is split into "<name> - 1" ... "<name> - n". Every following row becomes a
// legislator.Row keyed by those columns. Cells spanning two rows are carried
// into the next row, which then fills only the remaining columns. When links
// are requested, the href of a cell's first anchor is stored under
// "<column>_link".
package scraper
