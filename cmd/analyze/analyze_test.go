package analyze

import (
	"bytes"
	"testing"
	"time"

	"github.com/Jeremy009/BMC/internal/analysis"
	"github.com/Jeremy009/BMC/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeCommand_Metadata(t *testing.T) {
	assert.Equal(t, "analyze", Cmd.Use)
	assert.NotNil(t, Cmd.RunE)
	assert.NotNil(t, Cmd.Flags().Lookup("month-dir"))
	assert.NotNil(t, Cmd.Flags().Lookup("xlsx"))
}

func TestPrintSummary(t *testing.T) {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	rec := report.Record{
		Weekday: "Samedi", Date: date, Supervisor: "Alice",
		CashError:     d("1.5"),
		Items:         []report.ItemRow{{Quantity: 2, Label: "entry", UnitPrice: d("8"), Subtotal: d("16")}},
		TotalEarnings: d("12.8"),
		ClientCount:   2,
	}
	summary := analysis.Summarize("mars 2024", []analysis.Source{{Path: "/r/2024/mars/2024-3-9.csv", Record: rec}})
	summary.Skipped = []string{"/r/2024/mars/2024-3-11.csv"}

	var out bytes.Buffer
	require.NoError(t, PrintSummary(&out, summary))

	text := out.String()
	assert.Contains(t, text, "Analyse des permanences de mars 2024")
	assert.Contains(t, text, "09/03/2024")
	assert.Contains(t, text, "12.80")
	assert.Contains(t, text, "articles 16.00, total 12.80 (2024-3-9.csv)")
	assert.Contains(t, text, "2024-3-11.csv")
}
