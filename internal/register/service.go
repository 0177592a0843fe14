// Package register ties a session ledger to its crash-recovery snapshot and
// its end-of-day report: it opens sessions, recovers interrupted ones and
// closes them.
package register

import (
	"errors"
	"fmt"
	"time"

	"github.com/Jeremy009/BMC/internal/backup"
	"github.com/Jeremy009/BMC/internal/logging"
	"github.com/Jeremy009/BMC/internal/models"
	"github.com/Jeremy009/BMC/internal/registererror"
	"github.com/Jeremy009/BMC/internal/report"
	"github.com/Jeremy009/BMC/internal/session"

	"github.com/shopspring/decimal"
)

// Options are the register settings a service needs.
type Options struct {
	ReportsDir      string
	Supervisors     []string
	ReductionFactor decimal.Decimal
	CurrencySymbol  string
}

// Service opens register sessions.
type Service struct {
	prices models.PriceList
	writer *report.Writer
	reader *report.Reader
	opts   Options
	logger logging.Logger
	now    func() time.Time
}

// NewService creates a service selling from prices and writing reports under
// opts.ReportsDir.
func NewService(prices models.PriceList, writer *report.Writer, reader *report.Reader, opts Options, logger logging.Logger) (*Service, error) {
	if prices == nil {
		return nil, errors.New("register service requires a price list")
	}
	if opts.ReportsDir == "" {
		return nil, errors.New("register service requires a reports directory")
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if writer == nil {
		writer = report.NewWriter(report.DefaultDelimiter, logger)
	}
	if reader == nil {
		reader = report.NewReader(report.DefaultDelimiter)
	}
	if opts.ReductionFactor.IsZero() {
		opts.ReductionFactor = decimal.RequireFromString("0.8")
	}
	return &Service{
		prices: prices,
		writer: writer,
		reader: reader,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Session is an open register session.
type Session struct {
	Ledger     *session.Ledger
	ReportPath string
	// ArchivedReport is where a same-day report was moved at login, or "".
	ArchivedReport string
	// PriorReport is the report the expected opening cash was read from, or "".
	PriorReport string

	backup      *backup.Manager
	gate        *pendingRecoveryGate
	recoverable bool
	closed      bool
	factor      decimal.Decimal
	writer      *report.Writer
	logger      logging.Logger
}

// Login opens a session: it resolves the report and snapshot paths, archives
// an existing report of the same day, reads the expected opening cash from
// the most recent report (zero when there is none) and builds the ledger.
//
// When a snapshot of an interrupted session exists it is left untouched and
// Recoverable reports true; the caller then picks Recover or DiscardRecovery.
// Until then validating mutations fail with BackupWriteFailedError. Otherwise an initial snapshot is written.
func (s *Service) Login(date time.Time, supervisor string, observedCash decimal.Decimal) (*Session, error) {
	identity, err := session.NewIdentity(date, supervisor, s.opts.Supervisors)
	if err != nil {
		return nil, err
	}
	if _, err := session.NewCashCount(observedCash); err != nil {
		return nil, err
	}

	reportPath, err := report.PreparePath(s.opts.ReportsDir, identity.Date)
	if err != nil {
		return nil, fmt.Errorf("error preparing report path: %w", err)
	}
	archived, err := report.ArchiveExisting(reportPath, s.now())
	if err != nil {
		return nil, err
	}
	if archived != "" {
		s.logger.Info("Archived existing report for the same day", logging.F(logging.FieldReportPath, archived))
	}

	expected := decimal.Zero
	var lastDate time.Time
	var priorPath string
	latest, err := s.reader.FindLatest(s.opts.ReportsDir)
	var notFound *registererror.ReportNotFoundError
	switch {
	case errors.As(err, &notFound):
		s.logger.Info("No previous report found, expecting an empty register")
	case err != nil:
		return nil, fmt.Errorf("error reading previous report: %w", err)
	default:
		expected, lastDate, priorPath = latest.ClosingCash, latest.Date, latest.Path
	}

	manager := backup.NewManager(backup.PathForReport(reportPath), s.logger)
	recoverable := manager.Exists()
	gate := &pendingRecoveryGate{next: manager, path: manager.Path(), held: recoverable}

	ledger, err := session.NewLedger(session.Config{
		Prices:              s.prices,
		Identity:            identity,
		ObservedInitialCash: observedCash,
		ExpectedInitialCash: expected,
		LastReportDate:      lastDate,
		Snapshotter:         gate,
		Logger:              s.logger,
		CurrencySymbol:      s.opts.CurrencySymbol,
	})
	if err != nil {
		return nil, err
	}
	if !recoverable {
		if err := ledger.Checkpoint(); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Session opened",
		logging.F(logging.FieldSupervisor, identity.Supervisor.String()),
		logging.F(logging.FieldSessionDate, identity.Date.Format("2006-01-02")),
		logging.F(logging.FieldReportPath, reportPath),
		logging.F("recoverable", recoverable))

	return &Session{
		Ledger:         ledger,
		ReportPath:     reportPath,
		ArchivedReport: archived,
		PriorReport:    priorPath,
		backup:         manager,
		gate:           gate,
		recoverable:    recoverable,
		factor:         s.opts.ReductionFactor,
		writer:         s.writer,
		logger:         s.logger,
	}, nil
}

// pendingRecoveryGate refuses snapshots while an interrupted session's
// snapshot awaits a decision, so no mutation can overwrite it.
type pendingRecoveryGate struct {
	next session.Snapshotter
	path string
	held bool
}

func (g *pendingRecoveryGate) Snapshot(state session.State) error {
	if g.held {
		return &registererror.BackupWriteFailedError{
			Path: g.path,
			Err:  errors.New("an interrupted session must be recovered or discarded first"),
		}
	}
	return g.next.Snapshot(state)
}

// Recoverable reports whether an interrupted session's snapshot awaits a
// Recover or DiscardRecovery decision.
func (s *Session) Recoverable() bool {
	return s.recoverable
}

// BackupPath returns the path of the session snapshot.
func (s *Session) BackupPath() string {
	return s.backup.Path()
}

// Recover restores the interrupted session into the ledger and snapshots it
// again. A corrupt snapshot is reported as CorruptBackupError and the ledger
// keeps its fresh state.
func (s *Session) Recover() error {
	if !s.recoverable {
		return errors.New("no interrupted session to recover")
	}
	state, err := s.backup.Restore()
	if err != nil {
		return err
	}
	s.Ledger.Restore(state)
	s.gate.held = false
	if err := s.Ledger.Checkpoint(); err != nil {
		s.gate.held = true
		return err
	}
	s.recoverable = false
	s.logger.Info("Recovered interrupted session", logging.F(logging.FieldCount, len(state.History)))
	return nil
}

// DiscardRecovery deletes the interrupted session's snapshot and starts from
// the fresh ledger.
func (s *Session) DiscardRecovery() error {
	if err := s.backup.Discard(); err != nil {
		return err
	}
	s.gate.held = false
	if err := s.Ledger.Checkpoint(); err != nil {
		return err
	}
	s.recoverable = false
	return nil
}

// Reduce applies the configured reduction factor to the sale in progress.
func (s *Session) Reduce() bool {
	return s.Ledger.ApplyReduction(s.factor)
}

// Logout writes the day's report and then deletes the snapshot. When the
// report cannot be written the snapshot and the ledger are kept so the
// operator can retry. A sale still in progress is not reported.
func (s *Session) Logout() error {
	if s.closed {
		return errors.New("session already closed")
	}
	if s.recoverable {
		return errors.New("recover or discard the interrupted session before closing")
	}
	if current := s.Ledger.Current(); current != nil {
		s.logger.Warn("Closing with a sale in progress, it is not reported",
			logging.F(logging.FieldAmount, current.Value.String()))
	}

	if err := s.writer.Write(s.ReportPath, report.FromLedger(s.Ledger)); err != nil {
		return err
	}
	if err := s.backup.Discard(); err != nil {
		s.logger.WithError(err).Warn("Report written but snapshot could not be removed")
	}
	s.closed = true
	s.logger.Info("Session closed",
		logging.F(logging.FieldReportPath, s.ReportPath),
		logging.F(logging.FieldAmount, s.Ledger.TotalEarnings().String()))
	return nil
}

// Closed reports whether Logout succeeded.
func (s *Session) Closed() bool {
	return s.closed
}
