package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

// PerformanceHeader is the fixed header row of the performance export.
var PerformanceHeader = []string{"Student", "Question ID", "Score", "Graded", "Submitted At"}

const performanceSheet = "Performance"

// PerformanceRow is one submission as exported; a missing score is exported as 0.
type PerformanceRow struct {
	Student     string
	QuestionID  uint
	Score       int
	Graded      bool
	SubmittedAt time.Time
}

// PerformanceRows maps every record, graded or not, to one export row.
func PerformanceRows(records []models.SubmissionRecord) []PerformanceRow {
	out := make([]PerformanceRow, 0, len(records))
	for _, r := range records {
		row := PerformanceRow{
			Student:     r.StudentUsername,
			QuestionID:  r.QuestionID,
			Graded:      r.Graded,
			SubmittedAt: r.SubmittedAt,
		}
		if r.Score != nil {
			row.Score = *r.Score
		}
		out = append(out, row)
	}
	return out
}

func (r PerformanceRow) strings() []string {
	return []string{
		r.Student,
		strconv.FormatUint(uint64(r.QuestionID), 10),
		strconv.Itoa(r.Score),
		strconv.FormatBool(r.Graded),
		r.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

// WriteCSV writes the header followed by one line per row.
func WriteCSV(w io.Writer, rows []PerformanceRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PerformanceHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.strings()); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders the same table as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []PerformanceRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", performanceSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(PerformanceHeader))
	for i, h := range PerformanceHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(performanceSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(performanceSheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.Student,
			int(row.QuestionID),
			row.Score,
			strconv.FormatBool(row.Graded),
			row.SubmittedAt.UTC().Format(time.RFC3339),
		}
		if err := f.SetSheetRow(performanceSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
