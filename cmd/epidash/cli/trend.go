package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epidash/backend/internal/domain"
	"github.com/epidash/backend/internal/service"
)

var (
	trendState   string
	trendDisease string
	topState     string
	topWeek      string
)

var trendCmd = &cobra.Command{
	Use:   "trend --state STATE --disease DISEASE",
	Short: "Show the weekly case trend for a state and disease",
	Long: `Fetch the weekly case counts for a state/UT and disease and print them
with the total and the rounded weekly average.

Examples:
  epidash trend --state Kerala --disease Dengue
  epidash trend --state "Tamil Nadu" --disease Malaria --json`,
	Args: cobra.NoArgs,
	RunE: runTrend,
}

var topCmd = &cobra.Command{
	Use:   "top --state STATE [--week YYYY-MM-DD]",
	Short: "Rank the diseases with the most cases in a state",
	Long: `Fetch the disease ranking for a state/UT. Without --week the latest week
of the dataset is used, matching the dashboard default.

Examples:
  epidash top --state Kerala
  epidash top --state Kerala --week 2024-01-08`,
	Args: cobra.NoArgs,
	RunE: runTop,
}

func init() {
	trendCmd.Flags().StringVar(&trendState, "state", "", "State/UT name")
	trendCmd.Flags().StringVar(&trendDisease, "disease", "", "Disease name")
	trendCmd.MarkFlagRequired("state")
	trendCmd.MarkFlagRequired("disease")

	topCmd.Flags().StringVar(&topState, "state", "", "State/UT name")
	topCmd.Flags().StringVar(&topWeek, "week", "", "Week (YYYY-MM-DD), defaults to the latest")
	topCmd.MarkFlagRequired("state")
}

// TrendReport is a trend with its derived metrics
type TrendReport struct {
	State         string              `json:"state_ut"`
	Disease       string              `json:"disease"`
	TotalCases    int                 `json:"total_cases"`
	WeeklyAverage int                 `json:"weekly_average"`
	Weeks         int                 `json:"weeks"`
	Data          []domain.TrendPoint `json:"data"`
}

func runTrend(cmd *cobra.Command, args []string) error {
	if trendState == "" || trendDisease == "" {
		return fmt.Errorf("--state and --disease cannot be empty")
	}

	client := newClient(cmd)
	trend, err := client.GetTrend(cmd.Context(), trendState, trendDisease)
	if err != nil {
		return apiError("trend data", err)
	}

	report := TrendReport{
		State:         trend.State,
		Disease:       trend.Disease,
		TotalCases:    service.TotalCases(trend.Points),
		WeeklyAverage: service.WeeklyAverage(trend.Points),
		Weeks:         len(trend.Points),
		Data:          trend.Points,
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, report)
	}

	fmt.Fprintf(out, "%s / %s\n", report.State, report.Disease)
	fmt.Fprintf(out, "Total cases:    %d\n", report.TotalCases)
	fmt.Fprintf(out, "Weekly average: %d\n\n", report.WeeklyAverage)

	w := newTable(out)
	fmt.Fprintln(w, "WEEK\tCASES")
	for _, p := range trend.Points {
		fmt.Fprintf(w, "%s\t%d\n", p.Week, p.Cases)
	}
	return w.Flush()
}

func runTop(cmd *cobra.Command, args []string) error {
	if topState == "" {
		return fmt.Errorf("--state cannot be empty")
	}

	client := newClient(cmd)
	week := topWeek
	if week == "" {
		dr, err := client.GetDateRange(cmd.Context())
		if err != nil {
			return apiError("date range", err)
		}
		week = dr.MaxDate
	}

	top, err := client.GetTopDiseases(cmd.Context(), topState, week)
	if err != nil {
		return apiError("top diseases data", err)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, top)
	}

	fmt.Fprintf(out, "%s, week %s\n\n", top.State, top.Week)
	if len(top.Rankings) == 0 {
		fmt.Fprintln(out, "No data available for the selected parameters")
		return nil
	}
	w := newTable(out)
	fmt.Fprintln(w, "RANK\tDISEASE\tCASES")
	for i, r := range top.Rankings {
		fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, r.Disease, r.TotalCases)
	}
	return w.Flush()
}
