// Package ages fills in birth dates and ages for scraped legislators.
//
// How an age is found depends on the source's strategy:
//
//   - born-column: the table's Born cell, "(1950-03-04) March 4, 1950 (age 73)".
//     The declared age is kept so stale pages can be reported.
//   - retirement-column: a mandatory retirement date, from which the age is
//     derived against the retirement age.
//   - page-summary: the "(born ...)" phrase of the legislator's article.
//   - infobox: the birth_date parameter of the article's infobox, falling
//     back to the summary when the infobox has none.
//
// Article lookups run on a bounded worker pool. A failure affects only the
// record it happened on.
package ages
