// Package excel refreshes the reporting spreadsheet after a new artifact
// lands: the week-start cell is rewritten to the current Monday, and an
// optional external updater binary is run for refresh steps (data
// connections, pivots) that have to happen inside a spreadsheet application.
package excel

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// weekStartCell holds the reporting week's start date on the first sheet.
const weekStartCell = "A2"

// MondayOf returns the Monday of the week containing t.
func MondayOf(t time.Time) time.Time {
	delta := (int(t.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	day := t.AddDate(0, 0, -delta)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// UpdateWeekStart rewrites the week-start cell of the workbook's first sheet
// to the Monday of the week containing now, saving in place.
func UpdateWeekStart(path string, now time.Time) error {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	if sheet == "" {
		return fmt.Errorf("workbook %s has no sheets", path)
	}
	if err := wb.SetCellValue(sheet, weekStartCell, MondayOf(now)); err != nil {
		return fmt.Errorf("set week-start cell: %w", err)
	}
	if err := wb.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// RunUpdater invokes the external refresh helper with the spreadsheet path as
// its single argument and returns its combined output.
func RunUpdater(ctx context.Context, updaterPath, spreadsheetPath string) (string, error) {
	cmd := exec.CommandContext(ctx, updaterPath, spreadsheetPath)
	out, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil {
		if text != "" {
			return text, fmt.Errorf("updater failed: %s: %w", text, err)
		}
		return text, fmt.Errorf("updater failed: %w", err)
	}
	return text, nil
}

// Refresh applies the week-start update and, when updaterPath is set, runs
// the external helper. The returned message summarizes what happened.
func Refresh(ctx context.Context, spreadsheetPath, updaterPath string, now time.Time) (string, error) {
	if spreadsheetPath == "" {
		return "spreadsheet refresh skipped: no spreadsheet configured", nil
	}
	if err := UpdateWeekStart(spreadsheetPath, now); err != nil {
		return "", err
	}
	if updaterPath == "" {
		return "spreadsheet week-start updated", nil
	}
	out, err := RunUpdater(ctx, updaterPath, spreadsheetPath)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "spreadsheet refreshed", nil
	}
	return "spreadsheet refreshed: " + out, nil
}
