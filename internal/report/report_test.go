package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
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

var saturday = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

const expectedReport = "Jour;Samedi\n" +
	"Date;09/03/2024\n" +
	"Permanent;Alice\n" +
	"Caisse début;100.00\n" +
	"Erreur caisse;5.00\n" +
	"2;entry;8.00;16.00\n" +
	"1;rental;3.00;3.00\n" +
	"1;cash drop (op. caisse 2);-50.00;-50.00\n" +
	"Total cash;-39.00\n" +
	"Total cartes;6.40\n" +
	"Total rentrées;-32.60\n" +
	"# de clients;2\n" +
	"Caisse fin;61.00\n"

// dayLedger plays a short session: a cash sale, a reduced card sale and a cash drop.
func dayLedger(t *testing.T) *session.Ledger {
	t.Helper()
	c, err := catalog.New(
		[]catalog.Item{{Key: "entry", Price: dec("8.0")}},
		[]catalog.Item{{Key: "rental", Price: dec("3.0")}},
		[]catalog.Item{{Key: "chalk", Price: dec("2.5")}},
	)
	require.NoError(t, err)
	identity, err := session.NewIdentity(saturday, "Alice", []string{"Alice"})
	require.NoError(t, err)
	l, err := session.NewLedger(session.Config{
		Prices:              c,
		Identity:            identity,
		ObservedInitialCash: dec("100"),
		ExpectedInitialCash: dec("105"),
		Logger:              logging.NewMockLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, l.StartOrUpdate("entry"))
	require.NoError(t, l.StartOrUpdate("rental"))
	require.NoError(t, l.Validate(models.ModalityCash))
	require.NoError(t, l.StartOrUpdate("entry"))
	l.ApplyReduction(dec("0.8"))
	require.NoError(t, l.Validate(models.ModalityCard))
	require.NoError(t, l.AddCustomTransaction("Cash drop", dec("-50"), models.ModalityCash, 0))
	return l
}

func TestPath(t *testing.T) {
	tests := []struct {
		date     time.Time
		expected string
	}{
		{date: saturday, expected: filepath.Join("root", "2024", "mars", "2024-3-9.csv")},
		{date: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), expected: filepath.Join("root", "2023", "decembre", "2023-12-31.csv")},
		{date: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), expected: filepath.Join("root", "2025", "aout", "2025-8-1.csv")},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got, err := Path("root", tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPreparePath(t *testing.T) {
	root := t.TempDir()
	path, err := PreparePath(root, saturday)
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(root, "2024", "mars"))
	assert.Equal(t, filepath.Join(root, "2024", "mars", "2024-3-9.csv"), path)

	_, err = PreparePath(filepath.Join(root, "missing"), saturday)
	assert.Error(t, err)
}

func TestArchiveExisting(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "2024-3-9.csv")
	at := time.Date(2024, 3, 9, 14, 5, 9, 0, time.UTC)

	archived, err := ArchiveExisting(path, at)
	require.NoError(t, err)
	assert.Empty(t, archived, "nothing to archive")

	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))
	archived, err = ArchiveExisting(path, at)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "2024-3-9-version-14h05m09s.csv"), archived)
	assert.NoFileExists(t, path)
	content, err := os.ReadFile(archived)
	require.NoError(t, err)
	assert.Equal(t, "old", string(content))
}

func TestFromLedger(t *testing.T) {
	rec := FromLedger(dayLedger(t))

	assert.Equal(t, "Samedi", rec.Weekday)
	assert.Equal(t, "Alice", rec.Supervisor)
	assert.Equal(t, "5.00", models.FormatAmount(rec.CashError), "expected minus observed")
	require.Len(t, rec.Items, 3)
	assert.Equal(t, "-31.00", models.FormatAmount(rec.ItemsTotal()))
	assert.Equal(t, "-32.60", models.FormatAmount(rec.TotalEarnings))
}

func TestWriter_Encode(t *testing.T) {
	data, err := NewWriter(';', logging.NewMockLogger()).Encode(FromLedger(dayLedger(t)))
	require.NoError(t, err)
	assert.Equal(t, expectedReport, string(data))
}

func TestWriter_WriteAndRead(t *testing.T) {
	root := t.TempDir()
	path, err := PreparePath(root, saturday)
	require.NoError(t, err)

	logger := logging.NewMockLogger()
	rec := FromLedger(dayLedger(t))
	require.NoError(t, NewWriter(';', logger).Write(path, rec))
	assert.True(t, logger.HasEntry("INFO", "Wrote daily report"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, expectedReport, string(content))

	got, err := NewReader(';').Read(path)
	require.NoError(t, err)
	assert.Equal(t, rec.Weekday, got.Weekday)
	assert.True(t, rec.Date.Equal(got.Date))
	assert.Equal(t, rec.Supervisor, got.Supervisor)
	assert.True(t, rec.OpeningCash.Equal(got.OpeningCash))
	assert.True(t, rec.CashError.Equal(got.CashError))
	assert.True(t, rec.TotalCash.Equal(got.TotalCash))
	assert.True(t, rec.TotalCard.Equal(got.TotalCard))
	assert.True(t, rec.TotalEarnings.Equal(got.TotalEarnings))
	assert.Equal(t, rec.ClientCount, got.ClientCount)
	assert.True(t, rec.ClosingCash.Equal(got.ClosingCash))
	require.Len(t, got.Items, 3)
	assert.Equal(t, "cash drop (op. caisse 2)", got.Items[2].Label)
	assert.Equal(t, 2, got.Items[0].Quantity)

	// no temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriter_WriteFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewWriter(';', logging.NewMockLogger()).Write(filepath.Join(blocker, "r.csv"), FromLedger(dayLedger(t)))
	var writeErr *registererror.ReportWriteFailedError
	require.True(t, errors.As(err, &writeErr))
}

func TestReader_Parse(t *testing.T) {
	r := NewReader(';')

	legacy := "Jour;Lundi\nDate;04/03/2024\nPermanent;Bob\nCaisse début;80.0\nErreur caisse;0.0\n" +
		"3.0;entree adulte;8.0;24.0\n" +
		"Total cash;24.0\nTotal cartes;0.0\nTotal rentrées;24.0\n# de clients;3\nCaisse fin;â‚¬104.0\n"
	rec, err := r.Parse("legacy.csv", []byte(legacy))
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Items[0].Quantity)
	assert.Equal(t, "104.00", models.FormatAmount(rec.ClosingCash))

	tests := []struct {
		name    string
		content string
		reason  string
	}{
		{name: "missing field", content: strings.Replace(legacy, "# de clients;3\n", "", 1), reason: `missing field "# de clients"`},
		{name: "item before marker", content: "1;entry;8;8\n" + legacy, reason: "item row outside the item section"},
		{name: "bad amount", content: strings.Replace(legacy, "Total cash;24.0", "Total cash;beaucoup", 1), reason: "Total cash"},
		{name: "unknown key", content: "Météo;pluie\n" + legacy, reason: "unknown field"},
		{name: "three fields", content: legacy + "a;b;c\n", reason: "unexpected number of fields: 3"},
		{name: "fractional quantity", content: strings.Replace(legacy, "3.0;entree", "2.5;entree", 1), reason: "invalid count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Parse("r.csv", []byte(tt.content))
			var malformed *registererror.MalformedReportError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Contains(t, malformed.Reason, tt.reason)
		})
	}
}

func TestReader_FindLatest(t *testing.T) {
	root := t.TempDir()
	r := NewReader(';')

	_, err := r.FindLatest(root)
	var notFound *registererror.ReportNotFoundError
	require.True(t, errors.As(err, &notFound))

	write := func(date time.Time, closing string, mtime time.Time) string {
		path, err := PreparePath(root, date)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, []byte("Jour;x\nCaisse fin;"+closing+"\n"), 0644))
		require.NoError(t, os.Chtimes(path, mtime, mtime))
		return path
	}
	write(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), "50.00", time.Now().Add(-2*time.Hour))
	newest := write(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), "75.50", time.Now().Add(-time.Hour))

	latest, err := r.FindLatest(root)
	require.NoError(t, err)
	assert.Equal(t, newest, latest.Path, "modification time wins over the date in the name")
	assert.Equal(t, time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), latest.Date)
	assert.Equal(t, "75.50", models.FormatAmount(latest.ClosingCash))
}

func TestReader_ClosingCashMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2024-1-1.csv")
	require.NoError(t, os.WriteFile(path, []byte("Jour;Lundi\n"), 0644))

	_, err := NewReader(';').ClosingCash(path)
	var malformed *registererror.MalformedReportError
	assert.True(t, errors.As(err, &malformed))
}

func TestDateFromFileName(t *testing.T) {
	d, err := DateFromFileName("/r/2024/mars/2024-3-9-version-14h05m09s.csv")
	require.NoError(t, err)
	assert.Equal(t, saturday, d)

	_, err = DateFromFileName("notes.csv")
	assert.Error(t, err)
}

func TestWriter_ExportHistory(t *testing.T) {
	l := dayLedger(t)
	path := filepath.Join(t.TempDir(), "history.csv")

	require.NoError(t, NewWriter(';', logging.NewMockLogger()).ExportHistory(path, l.History()))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "index;id;validated_at;modality;value;clients;items", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0;"))
	assert.True(t, strings.HasSuffix(lines[1], ";cash;11.00;1;1 x entry, 1 x rental"))
	assert.True(t, strings.HasSuffix(lines[2], ";card;6.40;1;1 x entry"))
	assert.True(t, strings.HasSuffix(lines[3], ";cash;-50.00;0;1 x cash drop (op. caisse 2)"))
}
