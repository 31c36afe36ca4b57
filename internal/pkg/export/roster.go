package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/monchobi/artschool/internal/app/models"
)

// SheetSpec describes one worksheet: a bold, filtered header row followed by data rows.
type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]string
}

// Workbook is an in-memory XLSX document.
type Workbook struct {
	File *excelize.File
}

// NewWorkbook lays out sheets in order. The first sheet replaces the default "Sheet1".
func NewWorkbook(sheets []SheetSpec) (*Workbook, error) {
	f := excelize.NewFile()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("new header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Title); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Title); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", s.Title, err)
		}

		if err := writeRow(f, s.Title, 1, s.Header); err != nil {
			return nil, err
		}
		if len(s.Header) > 0 {
			end, _ := excelize.CoordinatesToCellName(len(s.Header), 1)
			_ = f.SetCellStyle(s.Title, "A1", end, bold)
			_ = f.AutoFilter(s.Title, "A1:"+end, nil)
		}

		for r, row := range s.Rows {
			if err := writeRow(f, s.Title, r+2, row); err != nil {
				return nil, err
			}
		}
		fitColumns(f, s)
	}
	return &Workbook{File: f}, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for c, v := range values {
		cell, err := excelize.CoordinatesToCellName(c+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}

// fitColumns sizes columns by header and the first rows, clamped to [12, 40].
func fitColumns(f *excelize.File, s SheetSpec) {
	for c := range s.Header {
		width := len(s.Header[c])
		for r := 0; r < len(s.Rows) && r < 50; r++ {
			if c < len(s.Rows[r]) && len(s.Rows[r][c]) > width {
				width = len(s.Rows[r][c])
			}
		}
		w := float64(width) * 0.9
		if w < 12 {
			w = 12
		}
		if w > 40 {
			w = 40
		}
		col, _ := excelize.ColumnNumberToName(c + 1)
		_ = f.SetColWidth(s.Title, col, col, w)
	}
}

// WriteTo streams the workbook as XLSX.
func (w *Workbook) WriteTo(out io.Writer) (int64, error) {
	return w.File.WriteTo(out)
}

// Close releases temporary files held by the workbook.
func (w *Workbook) Close() error {
	return w.File.Close()
}

// ClassRoster builds the admin roster for a class: open enrollments on one
// sheet, recorded payments on the other.
func ClassRoster(class *models.Class, enrollments []*models.Enrollment, payments []*models.Payment) (*Workbook, error) {
	enrolled := SheetSpec{
		Title:  "Enrollments",
		Header: []string{"Enrollment ID", "Email", "Price", "Reserved At"},
	}
	for _, e := range enrollments {
		enrolled.Rows = append(enrolled.Rows, []string{
			e.ID, e.Email, formatCents(e.Price), e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	paid := SheetSpec{
		Title:  "Payments",
		Header: []string{"Payment ID", "Email", "Amount", "Currency", "Transaction", "Paid At"},
	}
	for _, p := range payments {
		paid.Rows = append(paid.Rows, []string{
			p.ID, p.Email, formatCents(p.Amount), p.Currency, p.TransactionID, p.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	summary := SheetSpec{
		Title:  "Class",
		Header: []string{"Class ID", "Title", "Instructor", "Status", "Seats Available", "Enrolled", "Paid"},
		Rows: [][]string{{
			class.ID, class.Title, class.InstructorName, string(class.Status),
			strconv.Itoa(class.SeatsAvailable), strconv.Itoa(len(enrollments)), strconv.Itoa(len(payments)),
		}},
	}

	return NewWorkbook([]SheetSpec{summary, enrolled, paid})
}

// RosterFilename is the download name of a class roster.
func RosterFilename(class *models.Class, at time.Time) string {
	return fmt.Sprintf("roster_%s_%s.xlsx", class.ID, at.Format("2006-01-02"))
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
