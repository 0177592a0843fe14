package analysis

import (
	"fmt"

	"github.com/Jeremy009/BMC/internal/dateutils"
	"github.com/Jeremy009/BMC/internal/fileutils"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the per-day rows.
const SheetName = "Permanences"

// Column headers of the workbook, in order.
var Headers = []string{"Date", "Jour", "Permanents", "Sessions", "Rentrées", "Nom. clients", "Erreurs caisse"}

// WriteXLSX exports s as a workbook: a header row, one row per day, then a
// totals row and an averages row. The file is published atomically.
func (s *Summary) WriteXLSX(path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("error naming worksheet: %w", err)
	}

	rows := [][]interface{}{toRow(Headers)}
	for _, d := range s.Days {
		rows = append(rows, []interface{}{
			dateutils.FormatReportDate(d.Date),
			d.Weekday,
			d.SupervisorLabel(),
			d.Sessions,
			d.Earnings.InexactFloat64(),
			d.Clients,
			d.CashError.InexactFloat64(),
		})
	}
	rows = append(rows,
		[]interface{}{"Total", "", "", s.TotalSessions(), s.TotalEarnings.InexactFloat64(), s.TotalClients, s.TotalCashError.InexactFloat64()},
		[]interface{}{"Moyenne", "", "", "", s.AverageEarnings.InexactFloat64(), s.AverageClients.InexactFloat64(), ""},
	)

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+1, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(Headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("error styling header: %w", err)
	}
	totalRow := len(s.Days) + 2
	if err := f.SetCellStyle(SheetName, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow+1), bold); err != nil {
		return fmt.Errorf("error styling totals: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, 16); err != nil {
		return fmt.Errorf("error sizing columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("error rendering workbook: %w", err)
	}
	if err := fileutils.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
