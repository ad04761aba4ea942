package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pfrederiksen/legislator-ages/internal/ages"
	"github.com/pfrederiksen/legislator-ages/internal/config"
	"github.com/pfrederiksen/legislator-ages/internal/histogram"
	"github.com/pfrederiksen/legislator-ages/internal/legislator"
)

// OutputFormat represents the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// textWriter is implemented by every command result.
type textWriter interface {
	writeText(w io.Writer, verbose bool) error
}

// WriteOutput writes a command result in the specified format
func WriteOutput(w io.Writer, result textWriter, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return result.writeText(w, verbose)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// ScrapeResult is the outcome of scraping one source.
type ScrapeResult struct {
	Source    string                 `json:"source"`
	URL       string                 `json:"url"`
	RunID     string                 `json:"run_id"`
	Columns   []string               `json:"columns"`
	Rows      int                    `json:"rows"`
	Path      string                 `json:"path"`
	FirstRun  bool                   `json:"first_run"`
	Changes   *legislator.DiffResult `json:"changes,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ScrapeResults groups the results of one scrape command.
type ScrapeResults struct {
	Results []*ScrapeResult `json:"results"`
}

func (r *ScrapeResults) writeText(w io.Writer, verbose bool) error {
	for _, res := range r.Results {
		fmt.Fprintf(w, "%s: %d rows, %d columns -> %s.json\n", res.Source, res.Rows, len(res.Columns), res.Path)
		if verbose {
			fmt.Fprintf(w, "  Columns: %s\n", strings.Join(res.Columns, ", "))
			fmt.Fprintf(w, "  Run: %s\n", res.RunID)
		}
		if res.FirstRun || res.Changes == nil {
			continue
		}
		if res.Changes.Empty() {
			fmt.Fprintln(w, "  No membership changes")
			continue
		}
		for _, rec := range res.Changes.Added {
			fmt.Fprintf(w, "  + %s\n", displayName(rec))
		}
		for _, rec := range res.Changes.Removed {
			fmt.Fprintf(w, "  - %s\n", displayName(rec))
		}
	}
	return nil
}

// AgesResult is the outcome of computing ages for one source.
type AgesResult struct {
	Report  *ages.Report         `json:"report"`
	Path    string               `json:"path"`
	Records []*legislator.Record `json:"records"`
}

func (r *AgesResult) writeText(w io.Writer, verbose bool) error {
	rep := r.Report
	fmt.Fprintf(w, "%s (%s) as of %s: %d of %d ages computed",
		rep.Source, rep.Strategy, rep.AsOf, rep.WithAge, rep.Total)
	if rep.Failed > 0 {
		fmt.Fprintf(w, ", %d failed", rep.Failed)
	}
	fmt.Fprintf(w, "\nSaved to %s.json\n\n", r.Path)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, rec := range r.Records {
		age := "?"
		if rec.Age != nil {
			age = fmt.Sprintf("%d", *rec.Age)
		}
		born := ""
		if rec.BirthDate != nil {
			born = rec.BirthDate.String()
		}
		line := fmt.Sprintf("%s\t%s\t%s", displayName(rec), age, born)
		if verbose {
			line += "\t" + rec.Dialect
			if rec.Error != "" {
				line += "\t" + rec.Error
			}
		}
		fmt.Fprintln(tw, line)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if verbose && len(rep.Dialects) > 0 {
		fmt.Fprintln(w, "\nDialects:")
		names := make([]string, 0, len(rep.Dialects))
		for name := range rep.Dialects {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %d\n", name, rep.Dialects[name])
		}
	}

	if len(rep.Discrepancies) > 0 {
		fmt.Fprintln(w, "\nDeclared age differs from computed age:")
		for _, d := range rep.Discrepancies {
			fmt.Fprintf(w, "  %s: declared %d, computed %d (%+d)\n", d.Name, d.Declared, d.Computed, d.Delta)
		}
	}
	return nil
}

// HistogramResult is an age histogram for one source.
type HistogramResult struct {
	Source string          `json:"source"`
	Title  string          `json:"title"`
	YLabel string          `json:"y_label"`
	AsOf   string          `json:"as_of,omitempty"`
	Total  int             `json:"total"`
	Rows   []histogram.Row `json:"rows"`
}

func (r *HistogramResult) writeText(w io.Writer, verbose bool) error {
	if err := histogram.Render(w, r.Rows, r.Title, r.YLabel); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nTotal: %d\n", r.Total)
	return nil
}

// ParseResult is the normalization of a single raw date string.
type ParseResult struct {
	Input   string `json:"input"`
	Dialect string `json:"dialect,omitempty"`
	Date    string `json:"date,omitempty"`
	AsOf    string `json:"as_of"`
	Age     int    `json:"age"`
}

func (r *ParseResult) writeText(w io.Writer, verbose bool) error {
	if verbose {
		fmt.Fprintf(w, "Input:   %s\n", r.Input)
	}
	if r.Dialect != "" {
		fmt.Fprintf(w, "Dialect: %s\n", r.Dialect)
	}
	if r.Date != "" {
		fmt.Fprintf(w, "Date:    %s\n", r.Date)
	}
	fmt.Fprintf(w, "Age:     %d (as of %s)\n", r.Age, r.AsOf)
	return nil
}

// SourcesResult lists the configured sources.
type SourcesResult struct {
	Sources []config.Source `json:"sources"`
}

func (r *SourcesResult) writeText(w io.Writer, verbose bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSTRATEGY\tNAME")
	for _, src := range r.Sources {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", src.Key, src.AgeStrategy, src.Name)
		if verbose {
			fmt.Fprintf(tw, "\t\t%s\n", src.URL)
		}
	}
	return tw.Flush()
}

func displayName(r *legislator.Record) string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}
