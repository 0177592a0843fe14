// Package dateutils holds the date layouts and French calendar names used by
// the register's reports and file layout.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	DateLayoutISO    = "2006-01-02"
	DateLayoutReport = "02/01/2006"
	TimeLayoutFile   = "15h04m05s"
)

// CommonFormats are tried in order by ParseDate.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutReport,
	"2006-1-2",
	"02.01.2006",
	"2/1/2006",
}

var weekdaysFR = map[time.Weekday]string{
	time.Monday:    "Lundi",
	time.Tuesday:   "Mardi",
	time.Wednesday: "Mercredi",
	time.Thursday:  "Jeudi",
	time.Friday:    "Vendredi",
	time.Saturday:  "Samedi",
	time.Sunday:    "Dimanche",
}

var monthsFR = [...]string{
	"janvier", "fevrier", "mars", "avril", "mai", "juin",
	"juillet", "aout", "septembre", "octobre", "novembre", "decembre",
}

var spaces = regexp.MustCompile(`\s+`)

// ParseDate parses a day using the first matching layout in CommonFormats.
// The result is at midnight UTC.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(spaces.ReplaceAllString(dateStr, " "))
	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// Day truncates t to its calendar day, keeping the wall-clock date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekdayFR returns the French name of the day of the week ("Lundi" ... "Dimanche").
func WeekdayFR(t time.Time) string {
	return weekdaysFR[t.Weekday()]
}

// MonthNameFR returns the lowercase, unaccented French month name used for report directories.
func MonthNameFR(month time.Month) (string, error) {
	if month < time.January || month > time.December {
		return "", fmt.Errorf("month must be in the range [1 - 12], got %d", int(month))
	}
	return monthsFR[month-1], nil
}

// FormatReportDate formats a day as dd/MM/yyyy.
func FormatReportDate(t time.Time) string {
	return t.Format(DateLayoutReport)
}
