package backup

import (
	"fmt"
	"time"

	"github.com/Jeremy009/BMC/internal/dateutils"
	"github.com/Jeremy009/BMC/internal/models"
	"github.com/Jeremy009/BMC/internal/session"

	"github.com/shopspring/decimal"
)

// SchemaVersion is written in every snapshot. Readers reject other versions.
const SchemaVersion = 1

// snapshotFile is the on-disk shape of a snapshot. It only depends on plain
// values so it stays readable when the in-memory types change.
type snapshotFile struct {
	Version             int                 `json:"version"`
	SavedAt             time.Time           `json:"saved_at"`
	Supervisor          string              `json:"supervisor"`
	Date                string              `json:"date"`
	ObservedInitialCash decimal.Decimal     `json:"observed_initial_cash"`
	ExpectedInitialCash decimal.Decimal     `json:"expected_initial_cash"`
	LastReportDate      string              `json:"last_report_date,omitempty"`
	History             []transactionRecord `json:"history"`
	Current             *transactionRecord  `json:"current,omitempty"`
}

type transactionRecord struct {
	ID               string          `json:"id,omitempty"`
	Value            decimal.Decimal `json:"value"`
	ClientCount      int             `json:"client_count"`
	Modality         string          `json:"modality"`
	ReductionApplied bool            `json:"reduction_applied"`
	ValidatedAt      *time.Time      `json:"validated_at,omitempty"`
	Items            []itemRecord    `json:"items"`
}

type itemRecord struct {
	Key       string          `json:"key"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func fromState(state session.State, savedAt time.Time) snapshotFile {
	f := snapshotFile{
		Version:             SchemaVersion,
		SavedAt:             savedAt,
		Supervisor:          state.Identity.Supervisor.String(),
		Date:                state.Identity.Date.Format(dateutils.DateLayoutISO),
		ObservedInitialCash: state.ObservedInitialCash,
		ExpectedInitialCash: state.ExpectedInitialCash,
		History:             make([]transactionRecord, 0, len(state.History)),
	}
	if !state.LastReportDate.IsZero() {
		f.LastReportDate = state.LastReportDate.Format(dateutils.DateLayoutISO)
	}
	for _, t := range state.History {
		f.History = append(f.History, fromTransaction(t))
	}
	if state.Current != nil {
		rec := fromTransaction(state.Current)
		f.Current = &rec
	}
	return f
}

func fromTransaction(t *models.Transaction) transactionRecord {
	rec := transactionRecord{
		ID:               t.ID,
		Value:            t.Value,
		ClientCount:      t.ClientCount,
		Modality:         string(t.Modality),
		ReductionApplied: t.ReductionApplied,
		Items:            make([]itemRecord, 0, len(t.Items)),
	}
	if !t.ValidatedAt.IsZero() {
		at := t.ValidatedAt
		rec.ValidatedAt = &at
	}
	for _, item := range t.Items {
		rec.Items = append(rec.Items, itemRecord{Key: item.Key, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	return rec
}

// toState checks the decoded snapshot and rebuilds the ledger state.
// The returned string describes the first problem found.
func (f snapshotFile) toState() (session.State, string) {
	if f.Version != SchemaVersion {
		return session.State{}, fmt.Sprintf("unsupported schema version %d", f.Version)
	}
	if f.Supervisor == "" {
		return session.State{}, "missing supervisor"
	}
	date, err := time.Parse(dateutils.DateLayoutISO, f.Date)
	if err != nil {
		return session.State{}, fmt.Sprintf("invalid date %q", f.Date)
	}
	if f.ObservedInitialCash.IsNegative() {
		return session.State{}, "negative observed initial cash"
	}

	state := session.State{
		Identity:            session.Identity{Supervisor: session.Supervisor(f.Supervisor), Date: date},
		ObservedInitialCash: f.ObservedInitialCash,
		ExpectedInitialCash: f.ExpectedInitialCash,
		History:             make([]*models.Transaction, 0, len(f.History)),
	}
	if f.LastReportDate != "" {
		last, err := time.Parse(dateutils.DateLayoutISO, f.LastReportDate)
		if err != nil {
			return session.State{}, fmt.Sprintf("invalid last report date %q", f.LastReportDate)
		}
		state.LastReportDate = last
	}

	for i, rec := range f.History {
		t, problem := rec.toTransaction()
		if problem != "" {
			return session.State{}, fmt.Sprintf("history[%d]: %s", i, problem)
		}
		if !t.Modality.IsSettlement() {
			return session.State{}, fmt.Sprintf("history[%d]: modality %q is not cash or card", i, rec.Modality)
		}
		state.History = append(state.History, t)
	}
	if f.Current != nil {
		t, problem := f.Current.toTransaction()
		if problem != "" {
			return session.State{}, "current: " + problem
		}
		if t.Modality != models.ModalityUnset {
			return session.State{}, "current: in-progress transaction has a modality"
		}
		state.Current = t
	}
	return state, ""
}

func (rec transactionRecord) toTransaction() (*models.Transaction, string) {
	if rec.ClientCount < 0 {
		return nil, "negative client count"
	}
	t := &models.Transaction{
		ID:               rec.ID,
		Value:            rec.Value,
		ClientCount:      rec.ClientCount,
		Modality:         models.Modality(rec.Modality),
		ReductionApplied: rec.ReductionApplied,
		Items:            make([]models.LineItem, 0, len(rec.Items)),
	}
	switch t.Modality {
	case models.ModalityUnset, models.ModalityCash, models.ModalityCard, models.ModalityMultiple:
	default:
		return nil, fmt.Sprintf("unknown modality %q", rec.Modality)
	}
	if rec.ValidatedAt != nil {
		t.ValidatedAt = *rec.ValidatedAt
	}
	for _, item := range rec.Items {
		if item.Key == "" {
			return nil, "line item without key"
		}
		if item.Quantity < 0 {
			return nil, fmt.Sprintf("negative quantity for %q", item.Key)
		}
		t.Items = append(t.Items, models.LineItem{Key: item.Key, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	return t, ""
}
