package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Jeremy009/BMC/internal/dateutils"
	"github.com/Jeremy009/BMC/internal/models"
	"github.com/Jeremy009/BMC/internal/registererror"

	"github.com/shopspring/decimal"
)

// Reader parses report files back into records.
type Reader struct {
	delimiter rune
}

// NewReader creates a reader for reports using delimiter between fields.
func NewReader(delimiter rune) *Reader {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	return &Reader{delimiter: delimiter}
}

// lines splits a report into its fields, one slice per line.
func (r *Reader) lines(data []byte) ([][]string, error) {
	csvReader := csv.NewReader(bytes.NewReader(data))
	csvReader.Comma = r.delimiter
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	var lines [][]string
	for {
		fields, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, fields)
	}
}

// Read parses the report at path. Every summary field must be present.
func (r *Reader) Read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("error reading report: %w", err)
	}
	return r.Parse(path, data)
}

// Parse parses report data; path is only used in errors.
func (r *Reader) Parse(path string, data []byte) (Record, error) {
	lines, err := r.lines(data)
	if err != nil {
		return Record{}, &registererror.MalformedReportError{Path: path, Reason: err.Error()}
	}

	var rec Record
	seen := make(map[string]bool)
	malformed := func(line int, format string, args ...interface{}) error {
		return &registererror.MalformedReportError{Path: path, Line: line, Reason: fmt.Sprintf(format, args...)}
	}

	for i, fields := range lines {
		lineNo := i + 1
		switch len(fields) {
		case 2:
			key, value := fields[0], strings.TrimSpace(fields[1])
			if err := rec.setField(key, value); err != nil {
				return Record{}, malformed(lineNo, "%s: %v", key, err)
			}
			seen[key] = true
		case 4:
			if !seen[FieldCashError] || seen[FieldTotalCash] {
				return Record{}, malformed(lineNo, "item row outside the item section")
			}
			item, err := parseItemRow(fields)
			if err != nil {
				return Record{}, malformed(lineNo, "%v", err)
			}
			rec.Items = append(rec.Items, item)
		default:
			return Record{}, malformed(lineNo, "unexpected number of fields: %d", len(fields))
		}
	}

	for _, key := range []string{
		FieldDay, FieldDate, FieldSupervisor, FieldOpeningCash, FieldCashError,
		FieldTotalCash, FieldTotalCard, FieldTotalEarnings, FieldClientCount, FieldClosingCash,
	} {
		if !seen[key] {
			return Record{}, malformed(0, "missing field %q", key)
		}
	}
	return rec, nil
}

func (rec *Record) setField(key, value string) error {
	var err error
	switch key {
	case FieldDay:
		rec.Weekday = value
	case FieldDate:
		rec.Date, err = time.Parse(dateutils.DateLayoutReport, value)
	case FieldSupervisor:
		rec.Supervisor = value
	case FieldOpeningCash:
		rec.OpeningCash, err = models.ParseAmount(value)
	case FieldCashError:
		rec.CashError, err = models.ParseAmount(value)
	case FieldTotalCash:
		rec.TotalCash, err = models.ParseAmount(value)
	case FieldTotalCard:
		rec.TotalCard, err = models.ParseAmount(value)
	case FieldTotalEarnings:
		rec.TotalEarnings, err = models.ParseAmount(value)
	case FieldClientCount:
		rec.ClientCount, err = parseCount(value)
	case FieldClosingCash:
		rec.ClosingCash, err = models.ParseAmount(value)
	default:
		return errors.New("unknown field")
	}
	return err
}

func parseItemRow(fields []string) (ItemRow, error) {
	qty, err := parseCount(fields[0])
	if err != nil {
		return ItemRow{}, fmt.Errorf("quantity: %w", err)
	}
	unit, err := models.ParseAmount(fields[2])
	if err != nil {
		return ItemRow{}, fmt.Errorf("unit price: %w", err)
	}
	subtotal, err := models.ParseAmount(fields[3])
	if err != nil {
		return ItemRow{}, fmt.Errorf("subtotal: %w", err)
	}
	return ItemRow{Quantity: qty, Label: fields[1], UnitPrice: unit, Subtotal: subtotal}, nil
}

// parseCount accepts integers written as "3" or "3.0".
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("invalid count %q", s)
	}
	return int(d.IntPart()), nil
}

// ClosingCash reads only the "Caisse fin" line of a report, which is all the
// next session needs and is present in reports of every vintage.
func (r *Reader) ClosingCash(path string) (decimal.Decimal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error reading report: %w", err)
	}
	lines, err := r.lines(data)
	if err != nil {
		return decimal.Zero, &registererror.MalformedReportError{Path: path, Reason: err.Error()}
	}
	for i, fields := range lines {
		if len(fields) == 2 && fields[0] == FieldClosingCash {
			amount, err := models.ParseAmount(fields[1])
			if err != nil {
				return decimal.Zero, &registererror.MalformedReportError{Path: path, Line: i + 1, Reason: err.Error()}
			}
			return amount, nil
		}
	}
	return decimal.Zero, &registererror.MalformedReportError{Path: path, Reason: fmt.Sprintf("missing field %q", FieldClosingCash)}
}

// Latest describes the most recent report under a root directory.
type Latest struct {
	Path        string
	Date        time.Time
	ClosingCash decimal.Decimal
}

// FindLatest returns the most recently modified report under root
// (root/*/*/*.csv), its date taken from the file name and its closing cash.
func (r *Reader) FindLatest(root string) (Latest, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*", "*", "*"+Extension))
	if err != nil {
		return Latest{}, fmt.Errorf("error listing reports: %w", err)
	}

	var (
		latest  string
		latestT time.Time
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if latest == "" || info.ModTime().After(latestT) {
			latest, latestT = m, info.ModTime()
		}
	}
	if latest == "" {
		return Latest{}, &registererror.ReportNotFoundError{Root: root}
	}

	date, err := DateFromFileName(latest)
	if err != nil {
		return Latest{}, &registererror.MalformedReportError{Path: latest, Reason: err.Error()}
	}
	cash, err := r.ClosingCash(latest)
	if err != nil {
		return Latest{}, err
	}
	return Latest{Path: latest, Date: date, ClosingCash: cash}, nil
}

// DateFromFileName reads the date of a report from its "<y>-<m>-<d>" file
// name prefix. Archived versions ("...-version-...") are accepted.
func DateFromFileName(path string) (time.Time, error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parts := strings.SplitN(stem, "-", 4)
	if len(parts) < 3 {
		return time.Time{}, fmt.Errorf("file name %q is not a report date", filepath.Base(path))
	}
	return time.Parse("2006-1-2", strings.Join(parts[:3], "-"))
}
