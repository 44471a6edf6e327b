package excel

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestMondayOf(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"wednesday", "2025-06-11", "2025-06-09"},
		{"monday stays", "2025-06-09", "2025-06-09"},
		{"sunday goes back six days", "2025-06-15", "2025-06-09"},
		{"saturday", "2025-06-14", "2025-06-09"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := time.Parse("2006-01-02", tt.in)
			if err != nil {
				t.Fatal(err)
			}
			got := MondayOf(in).Format("2006-01-02")
			if got != tt.want {
				t.Errorf("MondayOf(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestUpdateWeekStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")

	wb := excelize.NewFile()
	if err := wb.SetCellValue("Sheet1", "A1", "Week Starting"); err != nil {
		t.Fatal(err)
	}
	if err := wb.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	wb.Close()

	now := time.Date(2025, 6, 12, 15, 4, 0, 0, time.UTC) // a Thursday
	if err := UpdateWeekStart(path, now); err != nil {
		t.Fatal(err)
	}

	wb2, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer wb2.Close()

	got, err := wb2.GetCellValue("Sheet1", weekStartCell)
	if err != nil {
		t.Fatal(err)
	}
	// The rendered form depends on the cell's numeric format; it is enough
	// that the value was written.
	if got == "" {
		t.Fatal("week-start cell is empty")
	}
}

func TestUpdateWeekStartMissingFile(t *testing.T) {
	if err := UpdateWeekStart(filepath.Join(t.TempDir(), "nope.xlsx"), time.Now()); err == nil {
		t.Error("expected error for missing workbook")
	}
}
