// Package wikidate turns the many ways Wikipedia encodes a birth date into a
// single CalendarDate and, from there, into an age in whole years.
//
// Supported inputs fall into a fixed set of dialects:
//
//	{{birth date and age|1950|3|4}}                 BirthDateAndAge
//	{{birth based on age as of date|73|2023|3|4}}   BirthBasedOnAgeAsOfDate
//	{{birth year and age|1950}}                     BirthYearAndAge
//	{{Bbad|73|2023|3|4}}                            Bbad
//	{{circa|1950}}                                  CircaYear
//	1950                                            PlainYear
//	c. March 1950                                   CPrefixed
//	March 4, 1950                                   FreeText
//
// Dialects are checked in that order and the first match wins. Parse never
// reads the wall clock: every function that needs "today" takes it as a
// parameter, so results are reproducible.
//
// All functions are safe for concurrent use.
package wikidate
