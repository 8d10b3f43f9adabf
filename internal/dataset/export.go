package dataset

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"callcenter-insights-go/internal/types"
)

const (
	recordsSheet = "Calls"
	maxSheetName = 31
)

// WriteRecords writes records as a workbook in the layout LoadWorkbook reads.
func WriteRecords(w io.Writer, records []types.CallRecord) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(recordColumns))
	for i, c := range recordColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(recordsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range records {
		row := []any{
			r.ID, r.CustomerID, r.AgentID, r.AgentName, r.Department, string(r.CallType), r.Category,
			string(r.Priority), string(r.Status), r.StartTime.UTC().Format(time.RFC3339),
			optionalTime(r.EndTime), optionalCell(r.Duration), optionalCell(r.ResolutionTime),
			optionalCell(r.CustomerSatisfaction), strconv.FormatBool(r.FirstCallResolution),
			r.TransferCount, r.Notes,
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(recordsSheet, cellRef, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteTable writes the display rows of a table, headers first, as a workbook.
func WriteTable(w io.Writer, table types.TableSpec) error {
	if err := table.Validate(); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	sheet := table.Title
	if sheet == "" {
		sheet = "Table"
	}
	if len(sheet) > maxSheetName {
		sheet = sheet[:maxSheetName]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range table.Rows {
		row := make([]any, len(r))
		for j, v := range r {
			if v.IsNumber() {
				row[j] = v.Number()
			} else {
				row[j] = v.String()
			}
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func optionalCell(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
