// Package open runs an interactive register session.
package open

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Jeremy009/BMC/cmd/root"
	"github.com/Jeremy009/BMC/internal/dateutils"
	"github.com/Jeremy009/BMC/internal/models"
	"github.com/Jeremy009/BMC/internal/register"

	"github.com/spf13/cobra"
)

var (
	dateFlag       string
	supervisorFlag string
	cashFlag       string
	recoverFlag    bool
	freshFlag      bool
)

// Cmd represents the open command
var Cmd = &cobra.Command{
	Use:   "open",
	Short: "Open a register session",
	Long: `Open a register session for a supervisor and read sales commands from the
terminal until "close" writes the end-of-day report. When the backup of an
interrupted session exists for the same day, it can be recovered (--recover)
or discarded (--fresh); without either flag the operator is asked.`,
	RunE: openFunc,
}

func init() {
	Cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "Session date, YYYY-MM-DD (default: today)")
	Cmd.Flags().StringVarP(&supervisorFlag, "supervisor", "s", "", "Supervisor name")
	Cmd.Flags().StringVar(&cashFlag, "cash", "", "Cash counted in the register at opening")
	Cmd.Flags().BoolVar(&recoverFlag, "recover", false, "Recover an interrupted session without asking")
	Cmd.Flags().BoolVar(&freshFlag, "fresh", false, "Discard an interrupted session without asking")
	_ = Cmd.MarkFlagRequired("supervisor")
	_ = Cmd.MarkFlagRequired("cash")
	Cmd.MarkFlagsMutuallyExclusive("recover", "fresh")
}

func openFunc(cmd *cobra.Command, args []string) error {
	c, err := root.Container()
	if err != nil {
		return err
	}
	date, err := parseSessionDate(dateFlag, time.Now())
	if err != nil {
		return err
	}
	cash, err := models.ParseAmount(cashFlag)
	if err != nil {
		return err
	}

	svc, err := c.NewRegisterService(cmd.Context())
	if err != nil {
		return err
	}
	sess, err := svc.Login(date, supervisorFlag, cash)
	if err != nil {
		return err
	}

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	if err := resolveRecovery(sess, in, out); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "%s\n", sess.Ledger.Recap())
	if details := sess.Ledger.Details(); details != "" {
		_, _ = fmt.Fprintf(out, "%s\n", details)
	}
	_, _ = fmt.Fprintln(out, `Tapez "help" pour la liste des commandes.`)
	return NewREPL(sess, c.GetReportWriter(), out, c.GetLogger()).Run(in)
}

// parseSessionDate reads a YYYY-MM-DD date, today when empty.
func parseSessionDate(value string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return dateutils.Day(now), nil
	}
	return time.Parse(dateutils.DateLayoutISO, strings.TrimSpace(value))
}

// resolveRecovery applies --recover / --fresh, or asks the operator.
func resolveRecovery(sess *register.Session, in *bufio.Reader, out io.Writer) error {
	if !sess.Recoverable() {
		return nil
	}
	switch {
	case recoverFlag:
		return sess.Recover()
	case freshFlag:
		return sess.DiscardRecovery()
	}

	for {
		_, _ = fmt.Fprintf(out, "Une session interrompue a été trouvée (%s). Récupérer les données? (o/n) ", sess.BackupPath())
		answer, err := in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "o", "oui", "y", "yes":
			return sess.Recover()
		case "n", "non", "no":
			return sess.DiscardRecovery()
		}
		if err != nil {
			return errors.New("no answer to the recovery question, session not opened")
		}
	}
}
