package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/Jeremy009/BMC/internal/dateutils"
	"github.com/Jeremy009/BMC/internal/fileutils"
	"github.com/Jeremy009/BMC/internal/logging"
	"github.com/Jeremy009/BMC/internal/models"
	"github.com/Jeremy009/BMC/internal/registererror"

	"github.com/gocarina/gocsv"
)

// DefaultDelimiter separates the fields of a report line.
const DefaultDelimiter = ';'

// Writer renders reports and publishes them atomically.
type Writer struct {
	delimiter rune
	logger    logging.Logger
}

// NewWriter creates a writer using delimiter between fields.
func NewWriter(delimiter rune, logger logging.Logger) *Writer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	return &Writer{delimiter: delimiter, logger: logger}
}

// Encode renders rec in the report line layout.
func (w *Writer) Encode(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	csvWriter := csv.NewWriter(&buf)
	csvWriter.Comma = w.delimiter
	out := gocsv.NewSafeCSVWriter(csvWriter)

	lines := [][]string{
		{FieldDay, rec.Weekday},
		{FieldDate, dateutils.FormatReportDate(rec.Date)},
		{FieldSupervisor, rec.Supervisor},
		{FieldOpeningCash, models.FormatAmount(rec.OpeningCash)},
		{FieldCashError, models.FormatAmount(rec.CashError)},
	}
	for _, item := range rec.Items {
		lines = append(lines, []string{
			strconv.Itoa(item.Quantity),
			item.Label,
			models.FormatAmount(item.UnitPrice),
			models.FormatAmount(item.Subtotal),
		})
	}
	lines = append(lines,
		[]string{FieldTotalCash, models.FormatAmount(rec.TotalCash)},
		[]string{FieldTotalCard, models.FormatAmount(rec.TotalCard)},
		[]string{FieldTotalEarnings, models.FormatAmount(rec.TotalEarnings)},
		[]string{FieldClientCount, strconv.Itoa(rec.ClientCount)},
		[]string{FieldClosingCash, models.FormatAmount(rec.ClosingCash)},
	)

	for _, line := range lines {
		if err := out.Write(line); err != nil {
			return nil, fmt.Errorf("error writing report line: %w", err)
		}
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return nil, fmt.Errorf("error writing report: %w", err)
	}
	return buf.Bytes(), nil
}

// Write publishes rec at path. Either the complete report is visible at path
// or the previous content is left untouched.
func (w *Writer) Write(path string, rec Record) error {
	data, err := w.Encode(rec)
	if err != nil {
		return &registererror.ReportWriteFailedError{Path: path, Err: err}
	}
	if err := fileutils.WriteFileAtomic(path, data, 0644); err != nil {
		w.logger.WithError(err).Error("Failed to write report", logging.F(logging.FieldReportPath, path))
		return &registererror.ReportWriteFailedError{Path: path, Err: err}
	}
	w.logger.Info("Wrote daily report",
		logging.F(logging.FieldReportPath, path),
		logging.F(logging.FieldCount, len(rec.Items)))
	return nil
}

// historyRow is one line of the history export.
type historyRow struct {
	Index       int    `csv:"index"`
	ID          string `csv:"id"`
	ValidatedAt string `csv:"validated_at"`
	Modality    string `csv:"modality"`
	Value       string `csv:"value"`
	Clients     int    `csv:"clients"`
	Items       string `csv:"items"`
}

// ExportHistory writes one CSV row per validated transaction, for auditing.
func (w *Writer) ExportHistory(path string, history []*models.Transaction) error {
	rows := make([]historyRow, 0, len(history))
	for i, t := range history {
		var items []string
		for _, item := range t.SoldItems() {
			items = append(items, fmt.Sprintf("%d x %s", item.Quantity, item.Key))
		}
		row := historyRow{
			Index:    i,
			ID:       t.ID,
			Modality: string(t.Modality),
			Value:    models.FormatAmount(t.Value),
			Clients:  t.ClientCount,
			Items:    strings.Join(items, ", "),
		}
		if !t.ValidatedAt.IsZero() {
			row.ValidatedAt = t.ValidatedAt.Local().Format("2006-01-02 15:04:05")
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	csvWriter := csv.NewWriter(&buf)
	csvWriter.Comma = w.delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing history CSV: %w", err)
	}
	if err := fileutils.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("error writing history CSV: %w", err)
	}
	w.logger.Info("Exported transaction history",
		logging.F("file", path),
		logging.F(logging.FieldCount, len(rows)))
	return nil
}
