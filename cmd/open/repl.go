package open

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Jeremy009/BMC/internal/logging"
	"github.com/Jeremy009/BMC/internal/models"
	"github.com/Jeremy009/BMC/internal/register"
	"github.com/Jeremy009/BMC/internal/registererror"
	"github.com/Jeremy009/BMC/internal/report"
)

const helpText = `Commandes:
  sell <article>                     ajoute un article à la vente en cours
  reduce                             applique la réduction à la vente en cours
  pay cash|card                      enregistre la vente en cours
  cancel                             annule la vente en cours
  op <montant> <cash|card> <texte>   opération de caisse (montant négatif pour une sortie)
  status                             affiche le récapitulatif
  details                            affiche le détail de la vente en cours
  history                            liste les transactions de la session
  summary                            affiche le résumé de la session
  export <fichier>                   exporte l'historique en CSV
  close                              écrit le rapport et termine la session
  help                               affiche cette aide`

// REPL reads register commands line by line and applies them to a session.
type REPL struct {
	session *register.Session
	writer  *report.Writer
	out     io.Writer
	logger  logging.Logger
}

// NewREPL creates a command loop over sess writing its output to out.
func NewREPL(sess *register.Session, writer *report.Writer, out io.Writer, logger logging.Logger) *REPL {
	return &REPL{session: sess, writer: writer, out: out, logger: logger}
}

// Run reads commands from in until "close" succeeds or input ends. When input
// ends first the session stays open and its backup is kept for recovery.
func (r *REPL) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	r.prompt()
	for scanner.Scan() {
		done, err := r.Execute(scanner.Text())
		if err != nil {
			r.printf("Erreur: %v\n", err)
		}
		if done {
			return nil
		}
		r.prompt()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading commands: %w", err)
	}
	r.printf("\nSession non clôturée, la sauvegarde %s est conservée.\n", r.session.BackupPath())
	r.logger.Warn("Input closed before the session was closed",
		logging.F(logging.FieldBackupPath, r.session.BackupPath()))
	return nil
}

// Execute applies one command line. It reports done once the session is closed.
func (r *REPL) Execute(line string) (bool, error) {
	command, rest := splitCommand(line)
	ledger := r.session.Ledger

	switch command {
	case "":
		return false, nil
	case "sell":
		if rest == "" {
			return false, errors.New("usage: sell <article>")
		}
		if err := ledger.StartOrUpdate(rest); err != nil {
			return false, err
		}
		r.show()
	case "reduce":
		if !r.session.Reduce() {
			return false, errors.New("aucune vente en cours ou réduction déjà appliquée")
		}
		r.show()
	case "pay":
		modality, err := models.ParseModality(rest)
		if err != nil {
			return false, err
		}
		if err := ledger.Validate(modality); err != nil {
			return false, err
		}
		r.show()
	case "cancel":
		ledger.Cancel()
		r.show()
	case "op":
		if err := r.customOperation(rest); err != nil {
			return false, err
		}
		r.show()
	case "status":
		r.printf("%s\n", ledger.Recap())
	case "details":
		r.printf("%s\n", ledger.Details())
	case "history":
		r.printf("%s\n", ledger.TransactionsString())
	case "summary":
		r.printf("%s\n", ledger.SummaryString())
	case "export":
		if rest == "" {
			return false, errors.New("usage: export <fichier>")
		}
		if err := r.writer.ExportHistory(rest, ledger.History()); err != nil {
			return false, err
		}
		r.printf("Historique exporté vers %s\n", rest)
	case "close":
		if err := r.session.Logout(); err != nil {
			var writeErr *registererror.ReportWriteFailedError
			if errors.As(err, &writeErr) {
				return false, fmt.Errorf("%w (la session reste ouverte, réessayez)", err)
			}
			return false, err
		}
		r.printf("%s\nRapport écrit: %s\n", ledger.SummaryString(), r.session.ReportPath)
		return true, nil
	case "help":
		r.printf("%s\n", helpText)
	default:
		return false, fmt.Errorf("commande inconnue %q, tapez help", command)
	}
	return false, nil
}

// customOperation parses "<amount> <cash|card> <description...>".
func (r *REPL) customOperation(args string) error {
	fields := strings.Fields(args)
	if len(fields) < 3 {
		return errors.New("usage: op <montant> <cash|card> <description>")
	}
	amount, err := models.ParseAmount(fields[0])
	if err != nil {
		return err
	}
	modality, err := models.ParseModality(fields[1])
	if err != nil {
		return err
	}
	return r.session.Ledger.AddCustomTransaction(strings.Join(fields[2:], " "), amount, modality, 0)
}

func (r *REPL) show() {
	ledger := r.session.Ledger
	r.printf("%s\n", ledger.Recap())
	if details := ledger.Details(); details != "" {
		r.printf("%s\n", details)
	}
}

func (r *REPL) prompt() {
	r.printf("> ")
}

func (r *REPL) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// splitCommand returns the lower-cased first word and the trimmed remainder.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	command, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(command), strings.TrimSpace(rest)
}
