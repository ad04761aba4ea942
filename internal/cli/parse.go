package cli

import (
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/legislator-ages/internal/wikidate"
)

func (a *app) parseCmd() *cobra.Command {
	var (
		now        string
		retirement bool
	)

	cmd := &cobra.Command{
		Use:   "parse <raw>",
		Short: "Normalize a single birth date string",
		Long: `Classify a raw birth date (a wiki template such as {{birth date and age|...}}
or free text such as "March 4, 1950") and print the date and age.

With --retirement the input is a mandatory retirement date and the age is
derived from the configured retirement age.`,
		Example: `  legislator-ages parse "{{birth date and age|1950|3|4}}"
  legislator-ages parse --now 2024-01-01 "{{Bbad|73|2023|3|4}}"
  legislator-ages parse --retirement "March 4, 2034"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clock, err := clockFor(now)
			if err != nil {
				return err
			}
			at := clock.Now()
			result := &ParseResult{
				Input: args[0],
				AsOf:  wikidate.DateOf(at).String(),
			}

			if retirement {
				age, err := wikidate.AgeFromMandatoryRetirement(args[0], at, a.cfg.Settings.RetirementAge)
				if err != nil {
					return err
				}
				result.Age = age
				return WriteOutput(a.stdout, result, a.output(), a.verbose)
			}

			date, dialect, err := wikidate.ParseWithDialect(args[0])
			if err != nil {
				return err
			}
			age, _ := wikidate.AgeFromDate(date, at)
			result.Dialect = dialect.String()
			result.Date = date.String()
			result.Age = age
			return WriteOutput(a.stdout, result, a.output(), a.verbose)
		},
	}

	cmd.Flags().StringVar(&now, "now", "", "Compute the age as of this date (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&retirement, "retirement", false, "Treat the input as a mandatory retirement date")
	return cmd
}
