package report

import (
	"time"

	"github.com/Jeremy009/BMC/internal/dateutils"
	"github.com/Jeremy009/BMC/internal/session"

	"github.com/shopspring/decimal"
)

// Summary field names, in file order.
const (
	FieldDay           = "Jour"
	FieldDate          = "Date"
	FieldSupervisor    = "Permanent"
	FieldOpeningCash   = "Caisse début"
	FieldCashError     = "Erreur caisse"
	FieldTotalCash     = "Total cash"
	FieldTotalCard     = "Total cartes"
	FieldTotalEarnings = "Total rentrées"
	FieldClientCount   = "# de clients"
	FieldClosingCash   = "Caisse fin"
)

// ItemRow is one sold item of the day.
type ItemRow struct {
	Quantity  int
	Label     string
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Record is the content of a daily report.
type Record struct {
	Weekday     string
	Date        time.Time
	Supervisor  string
	OpeningCash decimal.Decimal
	// CashError is expected minus observed opening cash.
	CashError     decimal.Decimal
	Items         []ItemRow
	TotalCash     decimal.Decimal
	TotalCard     decimal.Decimal
	TotalEarnings decimal.Decimal
	ClientCount   int
	ClosingCash   decimal.Decimal
}

// FromLedger builds the report of a session. Items are the merged history in
// catalog order, restricted to quantities above zero.
func FromLedger(l *session.Ledger) Record {
	identity := l.Identity()
	rec := Record{
		Weekday:       dateutils.WeekdayFR(identity.Date),
		Date:          identity.Date,
		Supervisor:    identity.Supervisor.String(),
		OpeningCash:   l.ObservedInitialCash(),
		CashError:     l.InitialCashError().Neg(),
		TotalCash:     l.CashEarnings(),
		TotalCard:     l.CardEarnings(),
		TotalEarnings: l.TotalEarnings(),
		ClientCount:   l.ClientCount(),
		ClosingCash:   l.CashCount(),
	}
	for _, item := range l.Summary().SoldItems() {
		rec.Items = append(rec.Items, ItemRow{
			Quantity:  item.Quantity,
			Label:     item.Key,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		})
	}
	return rec
}

// ItemsTotal is the sum of the item subtotals. It differs from TotalEarnings
// when reductions were applied.
func (r Record) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.Subtotal)
	}
	return total
}
