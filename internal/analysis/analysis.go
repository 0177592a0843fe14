// Package analysis rolls the daily register reports of a month up into a
// period summary: earnings, clients and cash errors per day, with totals and
// averages, and the days whose item rows do not add up to the declared
// earnings.
package analysis

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Jeremy009/BMC/internal/fileutils"
	"github.com/Jeremy009/BMC/internal/logging"
	"github.com/Jeremy009/BMC/internal/models"
	"github.com/Jeremy009/BMC/internal/report"

	"github.com/shopspring/decimal"
)

// Day combines every session held on one date.
type Day struct {
	Date        time.Time
	Weekday     string
	Supervisors []string
	Sessions    int
	CashError   decimal.Decimal
	Earnings    decimal.Decimal
	ItemsTotal  decimal.Decimal
	Clients     int
}

// SupervisorLabel joins the supervisors of the day, e.g. "Alice et Bob".
func (d Day) SupervisorLabel() string {
	return strings.Join(d.Supervisors, " et ")
}

// Mismatch is a report whose item subtotals differ from its declared earnings.
// Reductions and refused cash operations both cause one.
type Mismatch struct {
	Path          string
	Date          time.Time
	Supervisor    string
	ItemsTotal    decimal.Decimal
	TotalEarnings decimal.Decimal
}

// Difference is the declared earnings minus the item subtotals.
func (m Mismatch) Difference() decimal.Decimal {
	return m.TotalEarnings.Sub(m.ItemsTotal)
}

// Summary is the roll-up of a period.
type Summary struct {
	Period          string
	Days            []Day
	TotalEarnings   decimal.Decimal
	AverageEarnings decimal.Decimal
	TotalClients    int
	AverageClients  decimal.Decimal
	TotalCashError  decimal.Decimal
	Mismatches      []Mismatch
	// Skipped lists the report files that could not be parsed.
	Skipped []string
}

// Source is a parsed report and the file it came from.
type Source struct {
	Path   string
	Record report.Record
}

// Analyzer reads report directories.
type Analyzer struct {
	reader *report.Reader
	logger logging.Logger
}

// NewAnalyzer creates an analyzer reading reports with reader.
func NewAnalyzer(reader *report.Reader, logger logging.Logger) *Analyzer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if reader == nil {
		reader = report.NewReader(report.DefaultDelimiter)
	}
	return &Analyzer{reader: reader, logger: logger}
}

// AnalyzeMonth summarizes the reports directly inside dir, a
// <root>/<year>/<month> directory. Archived versions are earlier sessions of
// the same day and count as such. Reports that fail to parse are logged and
// listed in Summary.Skipped.
func (a *Analyzer) AnalyzeMonth(dir string) (*Summary, error) {
	files, err := fileutils.ListFilesWithExtension(dir, report.Extension)
	if err != nil {
		return nil, fmt.Errorf("error listing reports: %w", err)
	}

	var (
		sources []Source
		skipped []string
	)
	for _, file := range files {
		rec, err := a.reader.Read(file)
		if err != nil {
			a.logger.WithError(err).Warn("Skipping unreadable report", logging.F(logging.FieldReportPath, file))
			skipped = append(skipped, file)
			continue
		}
		sources = append(sources, Source{Path: file, Record: rec})
	}

	summary := Summarize(PeriodName(dir), sources)
	summary.Skipped = skipped
	a.logger.Info("Analyzed month of reports",
		logging.F(logging.FieldDirectory, dir),
		logging.F(logging.FieldCount, len(sources)),
		logging.F("days", len(summary.Days)),
		logging.F("mismatches", len(summary.Mismatches)))
	return summary, nil
}

// PeriodName names a month directory as "<month> <year>", e.g. "mars 2024".
func PeriodName(dir string) string {
	dir = filepath.Clean(dir)
	month := filepath.Base(dir)
	year := filepath.Base(filepath.Dir(dir))
	if year == "." || year == string(filepath.Separator) {
		return month
	}
	return month + " " + year
}

// Summarize groups sources by date, in date order, and computes the totals.
func Summarize(period string, sources []Source) *Summary {
	summary := &Summary{
		Period:          period,
		TotalEarnings:   decimal.Zero,
		AverageEarnings: decimal.Zero,
		AverageClients:  decimal.Zero,
		TotalCashError:  decimal.Zero,
	}

	byDate := make(map[time.Time]*Day)
	for _, src := range sources {
		rec := src.Record
		itemsTotal := rec.ItemsTotal()
		if !itemsTotal.Equal(rec.TotalEarnings) {
			summary.Mismatches = append(summary.Mismatches, Mismatch{
				Path:          src.Path,
				Date:          rec.Date,
				Supervisor:    rec.Supervisor,
				ItemsTotal:    itemsTotal,
				TotalEarnings: rec.TotalEarnings,
			})
		}

		day, ok := byDate[rec.Date]
		if !ok {
			day = &Day{
				Date:       rec.Date,
				Weekday:    rec.Weekday,
				CashError:  decimal.Zero,
				Earnings:   decimal.Zero,
				ItemsTotal: decimal.Zero,
			}
			byDate[rec.Date] = day
		}
		day.Supervisors = append(day.Supervisors, rec.Supervisor)
		day.Sessions++
		day.CashError = day.CashError.Add(rec.CashError)
		day.Earnings = day.Earnings.Add(rec.TotalEarnings)
		day.ItemsTotal = day.ItemsTotal.Add(itemsTotal)
		day.Clients += rec.ClientCount
	}

	for _, day := range byDate {
		summary.Days = append(summary.Days, *day)
		summary.TotalEarnings = summary.TotalEarnings.Add(day.Earnings)
		summary.TotalClients += day.Clients
		summary.TotalCashError = summary.TotalCashError.Add(day.CashError)
	}
	sort.Slice(summary.Days, func(i, j int) bool {
		return summary.Days[i].Date.Before(summary.Days[j].Date)
	})
	sort.SliceStable(summary.Mismatches, func(i, j int) bool {
		return summary.Mismatches[i].Date.Before(summary.Mismatches[j].Date)
	})

	if n := len(summary.Days); n > 0 {
		count := decimal.NewFromInt(int64(n))
		summary.AverageEarnings = models.RoundMoney(summary.TotalEarnings.Div(count))
		summary.AverageClients = decimal.NewFromInt(int64(summary.TotalClients)).Div(count).Round(1)
	}
	return summary
}

// TotalSessions is the number of sessions over the period.
func (s *Summary) TotalSessions() int {
	n := 0
	for _, d := range s.Days {
		n += d.Sessions
	}
	return n
}
