package cli

import (
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/legislator-ages/internal/config"
)

func (a *app) sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := &SourcesResult{Sources: make([]config.Source, 0, len(a.cfg.Sources))}
			for _, key := range a.cfg.Keys() {
				src, err := a.cfg.Source(key)
				if err != nil {
					return err
				}
				result.Sources = append(result.Sources, src)
			}
			return WriteOutput(a.stdout, result, a.output(), a.verbose)
		},
	}
}
