package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epidash/backend/internal/service"
	"github.com/epidash/backend/pkg/utils"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List selectable states, diseases and the date range",
	Long: `Load the three filter domains the dashboard offers. States, diseases and
the date range are fetched together; if any of them fails nothing is shown.

Examples:
  epidash filters
  epidash filters --json`,
	Args: cobra.NoArgs,
	RunE: runFilters,
}

var weeksCmd = &cobra.Command{
	Use:   "weeks",
	Short: "List the selectable weeks",
	Long: `Fetch the dataset's date range and list every week from the first date
to the last in steps of 7 days. The last week is the dashboard default.

Examples:
  epidash weeks`,
	Args: cobra.NoArgs,
	RunE: runWeeks,
}

func runFilters(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)
	filters := service.NewFilterController(client, nil, newLogger(cmd))

	if _, err := filters.Load(cmd.Context()); err != nil {
		return apiError("filter options", err)
	}
	domains := filters.Domains()

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, domains)
	}

	fmt.Fprintf(out, "Date range: %s to %s (%d weeks)\n", domains.DateRange.MinDate, domains.DateRange.MaxDate, len(domains.Weeks))
	fmt.Fprintf(out, "\nStates (%d):\n", len(domains.States))
	for _, s := range domains.States {
		fmt.Fprintf(out, "  %s\n", s)
	}
	fmt.Fprintf(out, "\nDiseases (%d):\n", len(domains.Diseases))
	for _, d := range domains.Diseases {
		fmt.Fprintf(out, "  %s\n", d)
	}
	return nil
}

func runWeeks(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)

	dr, err := client.GetDateRange(cmd.Context())
	if err != nil {
		return apiError("date range", err)
	}
	weeks := utils.WeekList(dr.MinDate, dr.MaxDate)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, weeks)
	}
	for _, w := range weeks {
		fmt.Fprintln(out, w)
	}
	return nil
}
