package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epidash/backend/internal/domain"
	"github.com/epidash/backend/internal/service"
)

var climateDisease string

var climateCmd = &cobra.Command{
	Use:   "climate [--disease DISEASE]",
	Short: "Show climate covariates alongside cases for a disease",
	Long: `Fetch temperature, precipitation and leaf area index averages with the
weekly case series for a disease. Without --disease the first disease in
the dataset is used.

Examples:
  epidash climate
  epidash climate --disease Malaria`,
	Args: cobra.NoArgs,
	RunE: runClimate,
}

func init() {
	climateCmd.Flags().StringVar(&climateDisease, "disease", "", "Disease name, defaults to the first listed")
}

// ClimateReport is a climate series with its case total
type ClimateReport struct {
	domain.ClimateSeries
	TotalCases int `json:"total_cases"`
}

func runClimate(cmd *cobra.Command, args []string) error {
	client := newClient(cmd)

	disease := climateDisease
	if disease == "" {
		diseases, err := client.GetDiseases(cmd.Context())
		if err != nil {
			return apiError("diseases", err)
		}
		if len(diseases) == 0 {
			return fmt.Errorf("the analytics API lists no diseases")
		}
		disease = diseases[0]
	}

	series, err := client.GetClimateImpact(cmd.Context(), disease)
	if err != nil {
		return apiError("climate data", err)
	}
	report := ClimateReport{
		ClimateSeries: series,
		TotalCases:    service.ClimateTotalCases(series.Points),
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, report)
	}

	m := series.Metrics
	fmt.Fprintf(out, "%s\n", series.Disease)
	fmt.Fprintf(out, "Avg temperature:   %.1f°C\n", m.AvgTemp)
	fmt.Fprintf(out, "Avg precipitation: %.1fmm\n", m.AvgPrecipitation)
	fmt.Fprintf(out, "Avg LAI:           %.2f\n", m.AvgLAI)
	fmt.Fprintf(out, "Total cases:       %d\n\n", report.TotalCases)

	w := newTable(out)
	fmt.Fprintln(w, "WEEK\tCASES\tTEMP\tPRECIP\tLAI")
	for _, p := range series.Points {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.2f\t%.2f\n", p.Week, p.Cases, p.Temp, p.Precipitation, p.LAI)
	}
	return w.Flush()
}
