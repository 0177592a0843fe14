// Package analyze summarizes a month of daily register reports.
package analyze

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/Jeremy009/BMC/cmd/root"
	"github.com/Jeremy009/BMC/internal/analysis"
	"github.com/Jeremy009/BMC/internal/dateutils"
	"github.com/Jeremy009/BMC/internal/logging"
	"github.com/Jeremy009/BMC/internal/models"

	"github.com/spf13/cobra"
)

var (
	monthDir string
	xlsxPath string
)

// Cmd represents the analyze command
var Cmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarize a month of daily reports",
	Long: `Summarize the daily reports of one month directory (<reports>/<year>/<month>):
earnings, clients and cash errors per day with totals and averages. Sessions
held on the same day are combined. Reports whose item rows do not add up to
"Total rentrées" are listed for review. With --xlsx the summary is also
exported to a workbook.`,
	RunE: analyzeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&monthDir, "month-dir", "m", "", "Month directory to analyze")
	Cmd.Flags().StringVarP(&xlsxPath, "xlsx", "x", "", "Write the summary to this XLSX file")
	_ = Cmd.MarkFlagRequired("month-dir")
}

func analyzeFunc(cmd *cobra.Command, args []string) error {
	c, err := root.Container()
	if err != nil {
		return err
	}
	summary, err := c.GetAnalyzer().AnalyzeMonth(monthDir)
	if err != nil {
		return err
	}
	if err := PrintSummary(cmd.OutOrStdout(), summary); err != nil {
		return err
	}
	if xlsxPath != "" {
		if err := summary.WriteXLSX(xlsxPath); err != nil {
			return err
		}
		root.Log.Info("Exported period summary", logging.F("file", xlsxPath))
	}
	return nil
}

// PrintSummary renders the summary as an aligned table.
func PrintSummary(out io.Writer, s *analysis.Summary) error {
	_, _ = fmt.Fprintf(out, "Analyse des permanences de %s\n\n", s.Period)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "Date\tJour\tPermanents\tRentrées\tClients\tErreur caisse")
	for _, d := range s.Days {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			dateutils.FormatReportDate(d.Date), d.Weekday, d.SupervisorLabel(),
			models.FormatAmount(d.Earnings), d.Clients, models.FormatAmount(d.CashError))
	}
	_, _ = fmt.Fprintf(tw, "Total\t\t\t%s\t%d\t%s\n",
		models.FormatAmount(s.TotalEarnings), s.TotalClients, models.FormatAmount(s.TotalCashError))
	_, _ = fmt.Fprintf(tw, "Moyenne\t\t\t%s\t%s\t\n",
		models.FormatAmount(s.AverageEarnings), s.AverageClients.StringFixed(1))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.Mismatches) > 0 {
		_, _ = fmt.Fprintln(out, "\nRapports à vérifier (articles ≠ total rentrées):")
		for _, m := range s.Mismatches {
			_, _ = fmt.Fprintf(out, "  %s %s: articles %s, total %s (%s)\n",
				dateutils.FormatReportDate(m.Date), m.Supervisor,
				models.FormatAmount(m.ItemsTotal), models.FormatAmount(m.TotalEarnings), filepath.Base(m.Path))
		}
	}
	if len(s.Skipped) > 0 {
		_, _ = fmt.Fprintln(out, "\nRapports illisibles:")
		for _, path := range s.Skipped {
			_, _ = fmt.Fprintf(out, "  %s\n", path)
		}
	}
	return nil
}
