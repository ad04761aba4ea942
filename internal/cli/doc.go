// Package cli implements the command-line interface for legislator-ages.
//
// The cli package provides the Cobra-based CLI: scraping legislature tables
// from Wikipedia, computing ages, drawing age histograms and parsing single
// birth date strings. Output is text or JSON. It coordinates the config,
// scraper, wikipedia, ages and storage packages.
package cli
