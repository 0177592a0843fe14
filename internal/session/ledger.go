// Package session implements the ledger of one register session: the validated
// transaction history, the in-progress sale, cash reconciliation and the
// display strings shown to the operator.
//
// A Ledger is not safe for concurrent use. One ledger belongs to one register.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jeremy009/BMC/internal/logging"
	"github.com/Jeremy009/BMC/internal/models"
	"github.com/Jeremy009/BMC/internal/registererror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshotter durably persists ledger state. Snapshot must either write the
// whole state or return an error; the ledger commits a mutation only after a
// successful snapshot.
type Snapshotter interface {
	Snapshot(state State) error
}

// State is the durable part of a ledger, independent of display strings,
// configuration and collaborators.
type State struct {
	Identity            Identity
	ObservedInitialCash decimal.Decimal
	ExpectedInitialCash decimal.Decimal
	// LastReportDate is the date of the report ExpectedInitialCash was read
	// from; zero when there was none.
	LastReportDate time.Time
	History        []*models.Transaction
	// Current is nil when no sale is in progress.
	Current *models.Transaction
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := s
	c.History = make([]*models.Transaction, len(s.History))
	for i, t := range s.History {
		c.History[i] = t.Clone()
	}
	if s.Current != nil {
		c.Current = s.Current.Clone()
	}
	return c
}

// Config holds what a ledger is built from.
type Config struct {
	Prices              models.PriceList
	Identity            Identity
	ObservedInitialCash decimal.Decimal
	ExpectedInitialCash decimal.Decimal
	LastReportDate      time.Time
	Snapshotter         Snapshotter
	Logger              logging.Logger
	// CurrencySymbol prefixes amounts in display strings, "€" when empty.
	CurrencySymbol string
}

// Ledger tracks the transactions of one session.
type Ledger struct {
	prices      models.PriceList
	state       State
	snapshotter Snapshotter
	logger      logging.Logger
	currency    string

	recap   string
	details string

	now   func() time.Time
	newID func() string
}

// NewLedger creates a ledger with an empty history. The recap is set to the
// opening cash comparison.
func NewLedger(cfg Config) (*Ledger, error) {
	if cfg.Prices == nil {
		return nil, errors.New("session ledger requires a price list")
	}
	observed, err := NewCashCount(cfg.ObservedInitialCash)
	if err != nil {
		return nil, err
	}
	expected := models.RoundMoney(cfg.ExpectedInitialCash)

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	currency := cfg.CurrencySymbol
	if currency == "" {
		currency = "€"
	}

	l := &Ledger{
		prices: cfg.Prices,
		state: State{
			Identity:            cfg.Identity,
			ObservedInitialCash: observed,
			ExpectedInitialCash: expected,
			LastReportDate:      cfg.LastReportDate,
		},
		snapshotter: cfg.Snapshotter,
		logger: logger.WithFields(
			logging.F(logging.FieldSupervisor, cfg.Identity.Supervisor.String()),
			logging.F(logging.FieldSessionDate, cfg.Identity.Date.Format("2006-01-02")),
		),
		currency: currency,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	l.recap = l.initialRecap()
	return l, nil
}

// StartOrUpdate adds one unit of catalog item key to the current transaction,
// starting a new one if none is in progress. On error nothing changes.
func (l *Ledger) StartOrUpdate(key string) error {
	current := l.state.Current
	if current == nil {
		current = models.NewTransaction(l.prices)
	}
	if err := current.Update(l.prices, key); err != nil {
		l.logger.Debug("Rejected unknown item", logging.F(logging.FieldItemKey, key))
		return err
	}
	l.state.Current = current

	l.recap = l.currentValueRecap()
	l.details = current.Details()
	l.logger.Debug("Updated current transaction",
		logging.F(logging.FieldItemKey, key),
		logging.F(logging.FieldAmount, current.Value.String()))
	return nil
}

// ApplyReduction applies factor to the current transaction. It is a no-op
// without a current transaction or when a reduction was already applied, and
// reports whether the value changed.
func (l *Ledger) ApplyReduction(factor decimal.Decimal) bool {
	if l.state.Current == nil || !l.state.Current.ApplyReduction(factor) {
		return false
	}
	l.recap = l.currentValueRecap()
	l.details = l.state.Current.Details()
	l.logger.Debug("Applied reduction",
		logging.F("factor", factor.String()),
		logging.F(logging.FieldAmount, l.state.Current.Value.String()))
	return true
}

// Validate settles the current transaction with modality and appends it to
// the history. The new history is snapshotted first; if the snapshot fails the
// ledger is left exactly as it was and the BackupWriteFailedError is returned.
func (l *Ledger) Validate(modality models.Modality) error {
	if l.state.Current == nil {
		return &registererror.InvalidModalityError{Modality: string(modality), Reason: "no transaction in progress"}
	}
	if !modality.IsSettlement() {
		return &registererror.InvalidModalityError{Modality: string(modality), Reason: "must be cash or card"}
	}

	tx := l.state.Current.Clone()
	tx.Modality = modality
	tx.ID = l.newID()
	tx.ValidatedAt = l.now().UTC().Round(0)

	next := l.state
	next.History = append(append([]*models.Transaction(nil), l.state.History...), tx)
	next.Current = nil
	if err := l.commit(next); err != nil {
		return err
	}

	l.recap = l.validateRecap(modality, tx.Value)
	l.details = ""
	l.logger.Info("Validated transaction",
		logging.F(logging.FieldTransactionID, tx.ID),
		logging.F(logging.FieldModality, string(modality)),
		logging.F(logging.FieldAmount, tx.Value.String()))
	return nil
}

// Cancel discards the current transaction. History is never affected.
func (l *Ledger) Cancel() {
	if l.state.Current != nil {
		l.logger.Debug("Cancelled transaction", logging.F(logging.FieldAmount, l.state.Current.Value.String()))
	}
	l.state.Current = nil
	l.recap = "Vente annulée"
	l.details = ""
}

// AddCustomTransaction records an off-catalog operation (cash drop, correction)
// directly into the history. The description is lower-cased and numbered after
// the history length so repeated operations stay distinct line items. The
// current transaction, if any, is left in progress.
func (l *Ledger) AddCustomTransaction(description string, value decimal.Decimal, modality models.Modality, clientCount int) error {
	if !modality.IsSettlement() {
		return &registererror.InvalidModalityError{Modality: string(modality), Reason: "must be cash or card"}
	}
	if clientCount < 0 {
		return &registererror.InvalidIdentityError{Field: "client count", Value: fmt.Sprint(clientCount), Reason: "must not be negative"}
	}

	label := fmt.Sprintf("%s (op. caisse %d)", strings.ToLower(strings.TrimSpace(description)), len(l.state.History))
	tx := models.NewManualTransaction(label, value, clientCount, modality)
	tx.ID = l.newID()
	tx.ValidatedAt = l.now().UTC().Round(0)

	next := l.state
	next.History = append(append([]*models.Transaction(nil), l.state.History...), tx)
	if err := l.commit(next); err != nil {
		return err
	}

	l.recap = fmt.Sprintf("Operation caisse de %s%s effectuée", l.currency, models.FormatAmount(value))
	l.details = ""
	if l.state.Current != nil {
		l.details = l.state.Current.Details()
	}
	l.logger.Info("Recorded cash operation",
		logging.F(logging.FieldTransactionID, tx.ID),
		logging.F(logging.FieldItemKey, label),
		logging.F(logging.FieldModality, string(modality)),
		logging.F(logging.FieldAmount, value.String()))
	return nil
}

// Checkpoint snapshots the current state without changing it.
func (l *Ledger) Checkpoint() error {
	return l.snapshot(l.state)
}

// Restore replaces the ledger state with a recovered one and shows the
// recovery details. Nothing is snapshotted; callers Checkpoint when needed.
func (l *Ledger) Restore(state State) {
	l.state = state.Clone()
	l.recap = ""
	l.details = l.recoverDetails()
	l.logger.Info("Restored session state", logging.F(logging.FieldCount, len(l.state.History)))
}

// commit snapshots next and, on success, makes it the ledger state.
func (l *Ledger) commit(next State) error {
	if err := l.snapshot(next); err != nil {
		return err
	}
	l.state = next
	return nil
}

func (l *Ledger) snapshot(state State) error {
	if l.snapshotter == nil {
		return nil
	}
	if err := l.snapshotter.Snapshot(state.Clone()); err != nil {
		var writeErr *registererror.BackupWriteFailedError
		if !errors.As(err, &writeErr) {
			err = &registererror.BackupWriteFailedError{Err: err}
		}
		l.logger.WithError(err).Error("Snapshot failed, operation not applied")
		return err
	}
	return nil
}

// State returns a deep copy of the durable state.
func (l *Ledger) State() State {
	return l.state.Clone()
}

// Identity returns the session identity.
func (l *Ledger) Identity() Identity {
	return l.state.Identity
}

// History returns copies of the validated transactions in validation order.
func (l *Ledger) History() []*models.Transaction {
	return l.state.Clone().History
}

// Current returns a copy of the transaction in progress, or nil.
func (l *Ledger) Current() *models.Transaction {
	if l.state.Current == nil {
		return nil
	}
	return l.state.Current.Clone()
}

func (l *Ledger) ObservedInitialCash() decimal.Decimal { return l.state.ObservedInitialCash }
func (l *Ledger) ExpectedInitialCash() decimal.Decimal { return l.state.ExpectedInitialCash }
func (l *Ledger) LastReportDate() time.Time            { return l.state.LastReportDate }

// InitialCashError is observed minus expected opening cash.
func (l *Ledger) InitialCashError() decimal.Decimal {
	return models.RoundMoney(l.state.ObservedInitialCash.Sub(l.state.ExpectedInitialCash))
}

// CashCount is the opening cash plus every cash transaction.
func (l *Ledger) CashCount() decimal.Decimal {
	return models.RoundMoney(l.state.ObservedInitialCash.Add(l.sumByModality(models.ModalityCash)))
}

// CashEarnings is the cash taken during the session.
func (l *Ledger) CashEarnings() decimal.Decimal {
	return models.RoundMoney(l.CashCount().Sub(l.state.ObservedInitialCash))
}

// CardEarnings is the sum of card transactions.
func (l *Ledger) CardEarnings() decimal.Decimal {
	return models.RoundMoney(l.sumByModality(models.ModalityCard))
}

// TotalEarnings is cash plus card earnings.
func (l *Ledger) TotalEarnings() decimal.Decimal {
	return models.RoundMoney(l.CashEarnings().Add(l.CardEarnings()))
}

// ClientCount is the number of clients admitted during the session.
func (l *Ledger) ClientCount() int {
	n := 0
	for _, t := range l.state.History {
		n += t.ClientCount
	}
	return n
}

// Summary merges the history into one transaction, seeded with the catalog so
// items keep catalog order.
func (l *Ledger) Summary() *models.Transaction {
	return models.Aggregate(models.NewTransaction(l.prices), l.state.History)
}

func (l *Ledger) sumByModality(m models.Modality) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range l.state.History {
		if t.Modality == m {
			sum = sum.Add(t.Value)
		}
	}
	return sum
}
