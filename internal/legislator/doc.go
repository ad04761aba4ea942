// Package legislator provides the record type shared by the scraper, the age
// pipeline and storage.
//
// A Record is one row of a legislature's wikitable plus whatever the age
// pipeline learned about it. Each record is assigned a deterministic SHA1-based
// ID generated from its source key and name, so membership changes can be
// tracked across runs.
package legislator
