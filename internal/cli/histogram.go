package cli

import (
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/legislator-ages/internal/histogram"
	"github.com/pfrederiksen/legislator-ages/internal/legislator"
	"github.com/pfrederiksen/legislator-ages/internal/storage"
)

func (a *app) histogramCmd() *cobra.Command {
	var (
		source string
		title  string
		yLabel string
	)

	cmd := &cobra.Command{
		Use:   "histogram",
		Short: "Draw an age histogram for a source",
		Long:  `Bucket the ages saved by the ages command and draw them as a bar chart.`,
		Example: `  legislator-ages histogram --source us-senators
  legislator-ages histogram --source ca-senators --title "Senate of Canada" --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.cfg.Source(source)
			if err != nil {
				return err
			}
			store, err := a.storage()
			if err != nil {
				return err
			}
			snap, err := store.Load(src.Dir, storage.EnrichedName(src.File))
			if err != nil {
				return notScraped(src.Key, err)
			}

			if title == "" {
				title = src.Name
			}
			rows := histogram.Count(legislator.Ages(snap.Records), histogram.DefaultBuckets)
			return WriteOutput(a.stdout, &HistogramResult{
				Source: src.Key,
				Title:  title,
				YLabel: yLabel,
				AsOf:   snap.UpdatedAt,
				Total:  histogram.Total(rows),
				Rows:   rows,
			}, a.output(), a.verbose)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Source key (required)")
	cmd.Flags().StringVar(&title, "title", "", "Chart title (default: the source name)")
	cmd.Flags().StringVar(&yLabel, "y-label", "# Legislators", "Label for the count axis")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
