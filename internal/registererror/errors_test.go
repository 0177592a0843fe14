package registererror

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "unknown transaction type",
			err:      &UnknownTransactionTypeError{Key: "sauna"},
			expected: "unknown transaction type 'sauna': not in the pricing catalog",
		},
		{
			name:     "invalid modality with value",
			err:      &InvalidModalityError{Modality: "cheque", Reason: "must be cash or card"},
			expected: "invalid modality 'cheque': must be cash or card",
		},
		{
			name:     "invalid modality without value",
			err:      &InvalidModalityError{Reason: "no current transaction"},
			expected: "invalid modality: no current transaction",
		},
		{
			name:     "backup write failed",
			err:      &BackupWriteFailedError{Path: "a.bcp", Err: errors.New("disk full")},
			expected: "failed to write backup 'a.bcp': disk full",
		},
		{
			name:     "corrupt backup without cause",
			err:      &CorruptBackupError{Path: "a.bcp", Reason: "unsupported version 9"},
			expected: "corrupt backup 'a.bcp': unsupported version 9",
		},
		{
			name:     "invalid identity",
			err:      &InvalidIdentityError{Field: "supervisor", Value: "Bob", Reason: "not in whitelist"},
			expected: "invalid supervisor 'Bob': not in whitelist",
		},
		{
			name:     "report not found",
			err:      &ReportNotFoundError{Root: "/reports"},
			expected: "no report found under '/reports'",
		},
		{
			name:     "malformed report with line",
			err:      &MalformedReportError{Path: "r.csv", Line: 3, Reason: "bad amount"},
			expected: "malformed report 'r.csv' at line 3: bad amount",
		},
		{
			name:     "malformed report without line",
			err:      &MalformedReportError{Path: "r.csv", Reason: "missing Caisse fin"},
			expected: "malformed report 'r.csv': missing Caisse fin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestUnwrapChains(t *testing.T) {
	backupErr := fmt.Errorf("validate: %w", &BackupWriteFailedError{Path: "x", Err: fs.ErrPermission})
	assert.True(t, errors.Is(backupErr, fs.ErrPermission))

	var target *BackupWriteFailedError
	assert.True(t, errors.As(backupErr, &target))
	assert.Equal(t, "x", target.Path)

	corrupt := &CorruptBackupError{Path: "x", Reason: "decode", Err: errors.New("unexpected EOF")}
	assert.Contains(t, corrupt.Error(), "unexpected EOF")
	assert.EqualError(t, corrupt.Unwrap(), "unexpected EOF")

	reportErr := &ReportWriteFailedError{Path: "r.csv", Err: fs.ErrExist}
	assert.True(t, errors.Is(reportErr, fs.ErrExist))
}
