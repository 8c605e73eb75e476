package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epidash/backend/internal/service"
)

var (
	mapWeek    string
	mapDisease string
)

var mapCmd = &cobra.Command{
	Use:   "map --week YYYY-MM-DD --disease DISEASE",
	Short: "List districts reporting a disease in a week",
	Long: `Fetch per-district case totals with coordinates for a week and disease.

Examples:
  epidash map --week 2024-01-08 --disease Dengue`,
	Args: cobra.NoArgs,
	RunE: runMap,
}

func init() {
	mapCmd.Flags().StringVar(&mapWeek, "week", "", "Week (YYYY-MM-DD)")
	mapCmd.Flags().StringVar(&mapDisease, "disease", "", "Disease name")
	mapCmd.MarkFlagRequired("week")
	mapCmd.MarkFlagRequired("disease")
}

func runMap(cmd *cobra.Command, args []string) error {
	if mapWeek == "" || mapDisease == "" {
		return fmt.Errorf("--week and --disease cannot be empty")
	}

	client := newClient(cmd)
	snapshot, err := client.GetMap(cmd.Context(), mapWeek, mapDisease)
	if err != nil {
		return apiError("map data", err)
	}
	summary := service.SummarizeMap(snapshot)

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, summary)
	}

	fmt.Fprintf(out, "%s, week %s: %d cases in %d districts\n\n",
		summary.Disease, summary.Week, summary.TotalCases, summary.DistrictCount)
	w := newTable(out)
	fmt.Fprintln(w, "DISTRICT\tSTATE/UT\tLAT\tLON\tCASES")
	for _, p := range summary.Points {
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\t%d\n", p.District, p.State, p.Latitude, p.Longitude, p.TotalCases)
	}
	return w.Flush()
}
