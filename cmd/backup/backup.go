// Package backup inspects and discards crash-recovery snapshots.
package backup

import (
	"fmt"
	"io"
	"time"

	"github.com/Jeremy009/BMC/cmd/root"
	"github.com/Jeremy009/BMC/internal/backup"
	"github.com/Jeremy009/BMC/internal/dateutils"
	"github.com/Jeremy009/BMC/internal/fileutils"
	"github.com/Jeremy009/BMC/internal/models"
	"github.com/Jeremy009/BMC/internal/report"
	"github.com/Jeremy009/BMC/internal/session"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var dateFlag string

// Cmd represents the backup command
var Cmd = &cobra.Command{
	Use:   "backup",
	Short: "Inspect or discard the backup of an interrupted session",
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the content of a session backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := backupPath()
		if err != nil {
			return err
		}
		if !fileutils.FileExists(path) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Aucune sauvegarde: %s\n", path)
			return nil
		}
		state, err := backup.Load(path)
		if err != nil {
			return err
		}
		PrintState(cmd.OutOrStdout(), path, state)
		return nil
	},
}

var discardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Delete a session backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := backupPath()
		if err != nil {
			return err
		}
		if err := backup.NewManager(path, root.Log).Discard(); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sauvegarde supprimée: %s\n", path)
		return nil
	},
}

func init() {
	Cmd.PersistentFlags().StringVarP(&dateFlag, "date", "d", "", "Session date, YYYY-MM-DD")
	_ = Cmd.MarkPersistentFlagRequired("date")
	Cmd.AddCommand(inspectCmd, discardCmd)
}

func backupPath() (string, error) {
	c, err := root.Container()
	if err != nil {
		return "", err
	}
	date, err := time.Parse(dateutils.DateLayoutISO, dateFlag)
	if err != nil {
		return "", fmt.Errorf("invalid --date: %w", err)
	}
	reportPath, err := report.Path(c.GetConfig().Register.ReportsDir, date)
	if err != nil {
		return "", err
	}
	return backup.PathForReport(reportPath), nil
}

// PrintState describes a recovered session state.
func PrintState(out io.Writer, path string, state session.State) {
	cash, card := decimal.Zero, decimal.Zero
	for _, t := range state.History {
		switch t.Modality {
		case models.ModalityCash:
			cash = cash.Add(t.Value)
		case models.ModalityCard:
			card = card.Add(t.Value)
		}
	}
	_, _ = fmt.Fprintf(out, "Sauvegarde:\t\t%s\nPermanent:\t\t%s\nDate:\t\t\t%s\nCaisse début:\t\t%s\nTransactions:\t\t%d\nRentrées cash:\t\t%s\nRentrées cartes:\t%s\n",
		path, state.Identity.Supervisor, dateutils.FormatReportDate(state.Identity.Date),
		models.FormatAmount(state.ObservedInitialCash), len(state.History),
		models.FormatAmount(cash), models.FormatAmount(card))
	if state.Current != nil {
		_, _ = fmt.Fprintf(out, "Vente en cours:\t\t%s\n", models.FormatAmount(state.Current.Value))
	}
}
