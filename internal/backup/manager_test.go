package backup

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jeremy009/BMC/internal/catalog"
	"github.com/Jeremy009/BMC/internal/logging"
	"github.com/Jeremy009/BMC/internal/models"
	"github.com/Jeremy009/BMC/internal/registererror"
	"github.com/Jeremy009/BMC/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLedger(t *testing.T, snap session.Snapshotter) *session.Ledger {
	t.Helper()
	c, err := catalog.New(
		[]catalog.Item{{Key: "entry", Price: dec("8.0")}},
		[]catalog.Item{{Key: "rental", Price: dec("3.0")}},
		nil,
	)
	require.NoError(t, err)
	identity, err := session.NewIdentity(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), "Alice", []string{"Alice"})
	require.NoError(t, err)

	l, err := session.NewLedger(session.Config{
		Prices:              c,
		Identity:            identity,
		ObservedInitialCash: dec("120.50"),
		ExpectedInitialCash: dec("121"),
		LastReportDate:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Snapshotter:         snap,
		Logger:              logging.NewMockLogger(),
	})
	require.NoError(t, err)
	return l
}

func assertStatesEqual(t *testing.T, expected, actual session.State) {
	t.Helper()
	assert.Equal(t, expected.Identity.Supervisor, actual.Identity.Supervisor)
	assert.True(t, expected.Identity.Date.Equal(actual.Identity.Date))
	assert.True(t, expected.LastReportDate.Equal(actual.LastReportDate))
	assert.True(t, expected.ObservedInitialCash.Equal(actual.ObservedInitialCash))
	assert.True(t, expected.ExpectedInitialCash.Equal(actual.ExpectedInitialCash))

	require.Len(t, actual.History, len(expected.History))
	for i := range expected.History {
		assertTransactionsEqual(t, expected.History[i], actual.History[i])
	}
	if expected.Current == nil {
		assert.Nil(t, actual.Current)
	} else {
		require.NotNil(t, actual.Current)
		assertTransactionsEqual(t, expected.Current, actual.Current)
	}
}

func assertTransactionsEqual(t *testing.T, expected, actual *models.Transaction) {
	t.Helper()
	assert.Equal(t, expected.ID, actual.ID)
	assert.True(t, expected.Value.Equal(actual.Value), "value %s != %s", expected.Value, actual.Value)
	assert.Equal(t, expected.ClientCount, actual.ClientCount)
	assert.Equal(t, expected.Modality, actual.Modality)
	assert.Equal(t, expected.ReductionApplied, actual.ReductionApplied)
	assert.True(t, expected.ValidatedAt.Equal(actual.ValidatedAt))
	require.Len(t, actual.Items, len(expected.Items))
	for i := range expected.Items {
		assert.Equal(t, expected.Items[i].Key, actual.Items[i].Key)
		assert.Equal(t, expected.Items[i].Quantity, actual.Items[i].Quantity)
		assert.True(t, expected.Items[i].UnitPrice.Equal(actual.Items[i].UnitPrice))
	}
}

func TestPathForReport(t *testing.T) {
	assert.Equal(t, filepath.Join("r", "2024", "juin", "2024-6-2.bcp"), PathForReport(filepath.Join("r", "2024", "juin", "2024-6-2.csv")))
	assert.Equal(t, "noext.bcp", PathForReport("noext"))
}

func TestManager_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2024", "juin", "2024-6-2.bcp")
	m := NewManager(path, logging.NewMockLogger())
	l := newLedger(t, m)

	require.NoError(t, l.StartOrUpdate("entry"))
	require.NoError(t, l.StartOrUpdate("rental"))
	require.NoError(t, l.Validate(models.ModalityCash))
	require.NoError(t, l.StartOrUpdate("entry"))
	l.ApplyReduction(dec("0.8"))
	require.NoError(t, l.Validate(models.ModalityCard))
	require.NoError(t, l.AddCustomTransaction("cash drop", dec("-50"), models.ModalityCash, 0))
	require.NoError(t, l.StartOrUpdate("rental"))
	require.NoError(t, l.Checkpoint())

	assert.True(t, m.Exists())
	restored, err := m.Restore()
	require.NoError(t, err)
	assertStatesEqual(t, l.State(), restored)

	// a ledger rebuilt from the snapshot reports the same figures
	other := newLedger(t, nil)
	other.Restore(restored)
	assert.True(t, l.CashCount().Equal(other.CashCount()))
	assert.True(t, l.CardEarnings().Equal(other.CardEarnings()))
	assert.Equal(t, l.ClientCount(), other.ClientCount())
	assert.Equal(t, "6.40", models.FormatAmount(other.History()[1].Value))
}

func TestManager_RoundTripEmptyLedger(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "empty.bcp"), logging.NewMockLogger())
	l := newLedger(t, m)
	require.NoError(t, l.Checkpoint())

	restored, err := m.Restore()
	require.NoError(t, err)
	assertStatesEqual(t, l.State(), restored)
	assert.Empty(t, restored.History)
}

func TestManager_SnapshotWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// the parent "directory" is a regular file, so nothing can be written
	m := NewManager(filepath.Join(blocker, "2024-6-2.bcp"), logging.NewMockLogger())
	l := newLedger(t, m)
	require.NoError(t, l.StartOrUpdate("entry"))

	err := l.Validate(models.ModalityCash)
	var writeErr *registererror.BackupWriteFailedError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, m.Path(), writeErr.Path)
	assert.Empty(t, l.History())
}

func TestManager_RestoreCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		reason  string
	}{
		{name: "not json", content: "\x80\x04pickle", reason: "invalid JSON"},
		{name: "wrong version", content: `{"version": 7, "supervisor": "Alice", "date": "2024-06-02"}`, reason: "unsupported schema version 7"},
		{name: "missing supervisor", content: `{"version": 1, "date": "2024-06-02"}`, reason: "missing supervisor"},
		{name: "bad date", content: `{"version": 1, "supervisor": "Alice", "date": "02/06/2024"}`, reason: "invalid date"},
		{name: "bad amount", content: `{"version": 1, "supervisor": "Alice", "date": "2024-06-02", "observed_initial_cash": "abc"}`, reason: "invalid JSON"},
		{
			name:    "unsettled history",
			content: `{"version": 1, "supervisor": "Alice", "date": "2024-06-02", "history": [{"value": "8", "modality": "", "items": []}]}`,
			reason:  "history[0]: modality \"\" is not cash or card",
		},
		{
			name:    "negative quantity",
			content: `{"version": 1, "supervisor": "Alice", "date": "2024-06-02", "history": [{"value": "8", "modality": "cash", "items": [{"key": "entry", "quantity": -1, "unit_price": "8"}]}]}`,
			reason:  "negative quantity",
		},
		{
			name:    "settled current",
			content: `{"version": 1, "supervisor": "Alice", "date": "2024-06-02", "history": [], "current": {"value": "8", "modality": "card", "items": []}}`,
			reason:  "in-progress transaction has a modality",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "s.bcp")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := NewManager(path, logging.NewMockLogger()).Restore()
			var corrupt *registererror.CorruptBackupError
			require.True(t, errors.As(err, &corrupt), "got %v", err)
			assert.Equal(t, path, corrupt.Path)
			assert.Contains(t, corrupt.Reason, tt.reason)
		})
	}
}

func TestManager_RestoreMissing(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "none.bcp"), logging.NewMockLogger())
	assert.False(t, m.Exists())

	_, err := m.Restore()
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	var corrupt *registererror.CorruptBackupError
	assert.False(t, errors.As(err, &corrupt))
}

func TestManager_Discard(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "s.bcp"), logging.NewMockLogger())
	l := newLedger(t, m)
	require.NoError(t, l.Checkpoint())
	require.True(t, m.Exists())

	require.NoError(t, m.Discard())
	assert.False(t, m.Exists())
	assert.NoError(t, m.Discard(), "discarding twice is fine")
}
