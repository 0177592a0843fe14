package session

import (
	"fmt"
	"strings"

	"github.com/Jeremy009/BMC/internal/dateutils"
	"github.com/Jeremy009/BMC/internal/models"

	"github.com/shopspring/decimal"
)

// Recap is the short status message of the last operation.
func (l *Ledger) Recap() string {
	return l.recap
}

// Details is the breakdown of the transaction in progress, or the recovery
// message right after a restore.
func (l *Ledger) Details() string {
	return l.details
}

func (l *Ledger) money(d decimal.Decimal) string {
	return l.currency + models.FormatAmount(d)
}

func (l *Ledger) initialRecap() string {
	lastDate := "-"
	if !l.state.LastReportDate.IsZero() {
		lastDate = dateutils.FormatReportDate(l.state.LastReportDate)
	}
	return fmt.Sprintf("En caisse le %s:\t%s\nEn caisse aujourd'hui:\t%s\n\nDifference caisse:\t%s",
		lastDate,
		l.money(l.state.ExpectedInitialCash),
		l.money(l.state.ObservedInitialCash),
		l.money(l.InitialCashError()))
}

func (l *Ledger) currentValueRecap() string {
	return "Total: " + l.money(l.state.Current.Value)
}

func (l *Ledger) validateRecap(modality models.Modality, value decimal.Decimal) string {
	if modality == models.ModalityCard {
		return fmt.Sprintf("Vente de %s enregistrée par carte", l.money(value))
	}
	return fmt.Sprintf("Vente de %s enregistrée en cash", l.money(value))
}

func (l *Ledger) recoverDetails() string {
	return fmt.Sprintf("Les données suivantes ont été récuperées:\nTransactions:\n%s\nRentrées cash:\t%s\nRentrées cartes:\t%s\n# clients:\t\t%d",
		l.Summary().Details(),
		l.money(l.CashEarnings()),
		l.money(l.CardEarnings()),
		l.ClientCount())
}

// SummaryString renders the whole session: identity, opening cash, merged
// transactions, earnings and closing cash.
func (l *Ledger) SummaryString() string {
	var sb strings.Builder
	date := l.state.Identity.Date
	fmt.Fprintf(&sb, "Jour : %s\n", dateutils.WeekdayFR(date))
	fmt.Fprintf(&sb, "Date : %s\n", dateutils.FormatReportDate(date))
	fmt.Fprintf(&sb, "Permanent : %s\n", l.state.Identity.Supervisor)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Caisse début : %s\n", l.money(l.state.ObservedInitialCash))
	fmt.Fprintf(&sb, "Erreur caisse : %s\n", l.money(l.InitialCashError()))
	sb.WriteString("\n\n")
	sb.WriteString("Transactions\n")
	sb.WriteString(l.Summary().Details())
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Total rentrées : %s", l.money(l.TotalEarnings()))
	fmt.Fprintf(&sb, "\n     - cash : %s", l.money(l.CashEarnings()))
	fmt.Fprintf(&sb, "\n     - cartes : %s", l.money(l.CardEarnings()))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Caisse fin : %s", l.money(l.CashCount()))
	return sb.String()
}

// TransactionsString lists every validated transaction with its modality and total.
func (l *Ledger) TransactionsString() string {
	if len(l.state.History) == 0 {
		return "Aucune transaction enregistrée pour cette session."
	}
	var sb strings.Builder
	for i, t := range l.state.History {
		fmt.Fprintf(&sb, "-------- Transaction nr. %d --------\n", i)
		sb.WriteString(t.Details())
		fmt.Fprintf(&sb, "Modalité: %s\n", t.Modality.Label())
		fmt.Fprintf(&sb, "Total: %s\n", l.money(t.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}
