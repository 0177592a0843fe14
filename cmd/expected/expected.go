// Package expected prints the cash the next session should find in the register.
package expected

import (
	"errors"
	"fmt"

	"github.com/Jeremy009/BMC/cmd/root"
	"github.com/Jeremy009/BMC/internal/dateutils"
	"github.com/Jeremy009/BMC/internal/models"
	"github.com/Jeremy009/BMC/internal/registererror"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// Cmd represents the expected command
var Cmd = &cobra.Command{
	Use:   "expected",
	Short: "Show the expected opening cash",
	Long: `Show the most recently written report under the reports directory, its date
and the closing cash it declares, which is the cash the next session should
find in the register.`,
	RunE: expectedFunc,
}

func expectedFunc(cmd *cobra.Command, args []string) error {
	c, err := root.Container()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	symbol := c.GetConfig().Register.CurrencySymbol

	latest, err := c.GetReportReader().FindLatest(c.GetConfig().Register.ReportsDir)
	var notFound *registererror.ReportNotFoundError
	if errors.As(err, &notFound) {
		_, _ = fmt.Fprintf(out, "Aucun rapport trouvé: caisse attendue %s%s\n", symbol, models.FormatAmount(decimal.Zero))
		return nil
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Dernier rapport:\t%s\nDate:\t\t\t%s\nCaisse attendue:\t%s%s\n",
		latest.Path, dateutils.FormatReportDate(latest.Date), symbol, models.FormatAmount(latest.ClosingCash))
	return nil
}
