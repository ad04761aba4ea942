// Package storage provides JSON and MessagePack persistence for scraped
// legislator snapshots.
//
// Each source is stored under its own directory below the data dir:
// <dir>/<file>.json (indented JSON) and <dir>/<file>.msgpack. Snapshots with
// computed ages are written next to the raw scrape as <file>-with-ages.
// The default storage location is ~/.local/share/legislator-ages/.
package storage
