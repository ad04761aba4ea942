package cli

import (
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/legislator-ages/internal/ages"
	"github.com/pfrederiksen/legislator-ages/internal/storage"
	"github.com/pfrederiksen/legislator-ages/internal/wikipedia"
)

func (a *app) agesCmd() *cobra.Command {
	var (
		source string
		now    string
		order  string
	)

	cmd := &cobra.Command{
		Use:   "ages",
		Short: "Compute ages for a scraped source",
		Long: `Compute every legislator's age from the last scrape of a source and save
the result next to it with a "-with-ages" suffix.

Sources whose strategy reads articles (page-summary, infobox) query the
MediaWiki API once per legislator. Lookups are cached in the data directory.`,
		Example: `  legislator-ages ages --source us-senators
  legislator-ages ages --source ca-reps --now 2021-06-01 --sort age-desc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.cfg.Source(source)
			if err != nil {
				return err
			}
			clock, err := clockFor(now)
			if err != nil {
				return err
			}
			sortOrder, err := parseSortOrder(order)
			if err != nil {
				return err
			}

			store, err := a.storage()
			if err != nil {
				return err
			}
			snap, err := store.Load(src.Dir, src.File)
			if err != nil {
				return notScraped(src.Key, err)
			}

			enricher := &ages.Enricher{
				Clock:         clock,
				RetirementAge: a.cfg.Settings.RetirementAge,
				Workers:       a.cfg.Settings.Workers,
			}
			var cache *wikipedia.Cache
			if src.AgeStrategy.NeedsPages() {
				cache, err = store.LoadCache()
				if err != nil {
					return err
				}
				client := wikipedia.NewClient(a.httpClient(), a.apiURL)
				enricher.Pages = wikipedia.NewCachedClient(client, cache)
			}

			report, err := enricher.Enrich(cmd.Context(), snap.Records, src)
			if cache != nil {
				if serr := store.SaveCache(cache); serr != nil && err == nil {
					err = serr
				}
			}
			if err != nil {
				return err
			}

			file := storage.EnrichedName(src.File)
			if err := store.Save(snap, src.Dir, file); err != nil {
				return err
			}

			return WriteOutput(a.stdout, &AgesResult{
				Report:  report,
				Path:    store.Path(src.Dir, file),
				Records: sortRecords(snap.Records, sortOrder),
			}, a.output(), a.verbose)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Source key (required)")
	cmd.Flags().StringVar(&now, "now", "", "Compute ages as of this date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&order, "sort", string(SortTable), "Sort order: table, name, age or age-desc")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
