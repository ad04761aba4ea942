package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/legislator-ages/internal/config"
	"github.com/pfrederiksen/legislator-ages/internal/legislator"
	"github.com/pfrederiksen/legislator-ages/internal/scraper"
	"github.com/pfrederiksen/legislator-ages/internal/storage"
)

// sourceFlags are the built-in sources that get a shortcut flag.
var sourceFlags = []string{"us-senators", "ca-senators", "us-reps", "ca-reps"}

func (a *app) scrapeCmd() *cobra.Command {
	var (
		all      bool
		picked   = make(map[string]*bool)
		sources  []string
		htmlFile string
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape legislator tables from Wikipedia",
		Long: `Scrape the selected legislature tables and save them as snapshots.

When a previous snapshot exists the members who joined or left since the last
scrape are listed.`,
		Example: `  legislator-ages scrape --us-senators --ca-senators
  legislator-ages scrape --source ca-reps
  legislator-ages scrape --source us-senators --html-file senators.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := sources
			if all {
				keys = a.cfg.Keys()
			}
			for _, key := range sourceFlags {
				if *picked[key] {
					keys = append(keys, key)
				}
			}
			keys = dedupe(keys)
			if len(keys) == 0 {
				return errors.New("no source selected, use --source, --all or a source flag such as --us-senators")
			}
			if htmlFile != "" && len(keys) != 1 {
				return errors.New("--html-file needs exactly one source")
			}

			store, err := a.storage()
			if err != nil {
				return err
			}
			s := scraper.New(a.httpClient())

			results := &ScrapeResults{Results: make([]*ScrapeResult, 0, len(keys))}
			for _, key := range keys {
				src, err := a.cfg.Source(key)
				if err != nil {
					return err
				}
				res, err := scrapeSource(cmd.Context(), s, store, src, htmlFile)
				if err != nil {
					return fmt.Errorf("scraping %s: %w", key, err)
				}
				results.Results = append(results.Results, res)
			}
			return WriteOutput(a.stdout, results, a.output(), a.verbose)
		},
	}

	for _, key := range sourceFlags {
		picked[key] = cmd.Flags().Bool(key, false, fmt.Sprintf("Scrape the %s source", key))
	}
	cmd.Flags().BoolVar(&all, "all", false, "Scrape every configured source")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "Source key to scrape (repeatable)")
	cmd.Flags().StringVar(&htmlFile, "html-file", "", "Parse a saved HTML page instead of fetching the source URL")
	return cmd
}

func scrapeSource(ctx context.Context, s *scraper.Scraper, store *storage.Storage, src config.Source, htmlFile string) (*ScrapeResult, error) {
	table, err := readTable(ctx, s, src, htmlFile)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	records := legislator.NewRecords(src.Key, table.Columns, table.Rows, src.NameColumn, now)

	var previous []*legislator.Record
	prev, err := store.Load(src.Dir, src.File)
	switch {
	case err == nil:
		previous = prev.Records
	case errors.Is(err, storage.ErrSnapshotNotFound):
	default:
		return nil, err
	}

	snap := storage.NewSnapshot(src.Key, src.URL, table.Columns, records, now)
	if err := store.Save(snap, src.Dir, src.File); err != nil {
		return nil, err
	}

	res := &ScrapeResult{
		Source:    src.Key,
		URL:       src.URL,
		RunID:     snap.RunID,
		Columns:   table.Columns,
		Rows:      len(records),
		Path:      store.Path(src.Dir, src.File),
		FirstRun:  prev == nil,
		Timestamp: snap.UpdatedAt,
	}
	if prev != nil {
		res.Changes = legislator.Diff(previous, records)
	}
	return res, nil
}

func readTable(ctx context.Context, s *scraper.Scraper, src config.Source, htmlFile string) (*scraper.Table, error) {
	if htmlFile == "" {
		return s.FetchTable(ctx, src.URL, src.TableID, src.WithLinks)
	}
	f, err := os.Open(htmlFile)
	if err != nil {
		return nil, fmt.Errorf("opening HTML file: %w", err)
	}
	defer f.Close()
	return scraper.ParseTable(f, src.TableID, src.WithLinks)
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
