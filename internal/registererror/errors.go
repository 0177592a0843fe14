// Package registererror defines the error kinds returned by the register core.
// Callers discriminate with errors.As; durability errors wrap the underlying I/O error.
package registererror

import "fmt"

// UnknownTransactionTypeError is returned when a sale references a key that is not in the catalog.
type UnknownTransactionTypeError struct {
	Key string
}

func (e *UnknownTransactionTypeError) Error() string {
	return fmt.Sprintf("unknown transaction type '%s': not in the pricing catalog", e.Key)
}

// InvalidModalityError is returned when a transaction is validated without a
// current transaction or with a payment modality other than cash or card.
type InvalidModalityError struct {
	Modality string
	Reason   string
}

func (e *InvalidModalityError) Error() string {
	if e.Modality == "" {
		return fmt.Sprintf("invalid modality: %s", e.Reason)
	}
	return fmt.Sprintf("invalid modality '%s': %s", e.Modality, e.Reason)
}

// BackupWriteFailedError means a crash-recovery snapshot could not be durably written.
// The operation that triggered the snapshot has not been applied.
type BackupWriteFailedError struct {
	Path string
	Err  error
}

func (e *BackupWriteFailedError) Error() string {
	return fmt.Sprintf("failed to write backup '%s': %v", e.Path, e.Err)
}

func (e *BackupWriteFailedError) Unwrap() error {
	return e.Err
}

// CorruptBackupError means a snapshot exists but cannot be decoded into a ledger.
type CorruptBackupError struct {
	Path   string
	Reason string
	Err    error
}

func (e *CorruptBackupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt backup '%s': %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("corrupt backup '%s': %s", e.Path, e.Reason)
}

func (e *CorruptBackupError) Unwrap() error {
	return e.Err
}

// InvalidIdentityError rejects a session identity field (supervisor, date, cash count).
type InvalidIdentityError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidIdentityError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Value, e.Reason)
}

// ReportWriteFailedError means the end-of-day report was not published.
// The in-memory ledger is untouched and the export can be retried.
type ReportWriteFailedError struct {
	Path string
	Err  error
}

func (e *ReportWriteFailedError) Error() string {
	return fmt.Sprintf("failed to write report '%s': %v", e.Path, e.Err)
}

func (e *ReportWriteFailedError) Unwrap() error {
	return e.Err
}

// ReportNotFoundError is returned when no dated report exists under the reports root.
type ReportNotFoundError struct {
	Root string
}

func (e *ReportNotFoundError) Error() string {
	return fmt.Sprintf("no report found under '%s'", e.Root)
}

// MalformedReportError is returned when a report file does not follow the line layout.
type MalformedReportError struct {
	Path   string
	Line   int
	Reason string
}

func (e *MalformedReportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed report '%s' at line %d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("malformed report '%s': %s", e.Path, e.Reason)
}
