// Package export renders a resolved board as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"presence/internal/attendance/models"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetName is the title of the single sheet for board.
func SheetName(board models.Board) string {
	return fmt.Sprintf("Week %d", board.ISOWeek)
}

// Filename is the attachment name for board.
func Filename(board models.Board) string {
	return fmt.Sprintf("attendance-%s.xlsx", board.WeekStart)
}

var fills = map[string]string{
	"office": "C6EFCE",
	"home":   "FFEB9C",
	"away":   "D9D9D9",
}

// WriteBoard writes one row per member and one column per workday.
func WriteBoard(w io.Writer, board models.Board) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := SheetName(board)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := []any{"Initials", "Name", "Level"}
	for _, d := range board.Days {
		header = append(header, fmt.Sprintf("%s %s", d.Label, d.Date))
	}
	header = append(header, "Confirmed")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	styles := make(map[string]int, len(fills))
	for status, color := range fills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return fmt.Errorf("status style: %w", err)
		}
		styles[status] = id
	}

	for i, r := range board.Rows {
		rowNum := i + 2
		row := []any{r.Initials.String(), r.DisplayName, r.Level}
		for _, st := range r.Statuses {
			row = append(row, st)
		}
		if r.Confirmed {
			row = append(row, "yes")
		} else {
			row = append(row, "no")
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", rowNum, err)
		}
		for j, st := range r.Statuses {
			styleID, ok := styles[st]
			if !ok {
				continue
			}
			c, err := excelize.CoordinatesToCellName(4+j, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, c, c, styleID); err != nil {
				return fmt.Errorf("style cell %s: %w", c, err)
			}
		}
	}

	if err := f.SetColWidth(sheet, "B", "B", 24); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
