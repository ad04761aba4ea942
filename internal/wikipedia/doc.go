// Package wikipedia reads legislator articles through the MediaWiki action
// API: the plain-text introduction and the raw birth_date parameter of the
// article's infobox.
//
// Lookups can be wrapped in a Cache so repeated runs do not refetch every
// article.
package wikipedia
