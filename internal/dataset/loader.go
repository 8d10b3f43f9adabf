package dataset

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"callcenter-insights-go/internal/types"
)

// recordColumns is the workbook layout, in write order.
var recordColumns = []string{
	"id", "customerId", "agentId", "agentName", "department", "callType", "category",
	"priority", "status", "startTime", "endTime", "duration", "resolutionTime",
	"customerSatisfaction", "firstCallResolution", "transferCount", "notes",
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "01-02-06 15:04"}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// columnIndex maps the normalized column names to their position in header.
// A few common spellings are recognised by heuristics.
func columnIndex(header []string) map[string]int {
	idx := map[string]int{}
	for i, h := range header {
		n := normalizeHeader(h)
		key := ""
		for _, c := range recordColumns {
			if n == strings.ToLower(c) {
				key = c
				break
			}
		}
		if key == "" {
			switch {
			case n == "callid":
				key = "id"
			case n == "agent":
				key = "agentName"
			case n == "type" || n == "direction":
				key = "callType"
			case strings.Contains(n, "satisfaction") || n == "csat":
				key = "customerSatisfaction"
			case n == "fcr" || strings.Contains(n, "firstcall"):
				key = "firstCallResolution"
			case strings.Contains(n, "transfer"):
				key = "transferCount"
			}
		}
		if key == "" {
			continue
		}
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// LoadWorkbook reads call records from the first sheet of an xlsx workbook.
// Columns are detected by header name; rows without an id are skipped.
func LoadWorkbook(path string) ([]types.CallRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	idx := columnIndex(rows[0])
	if _, ok := idx["id"]; !ok {
		return nil, fmt.Errorf("no id column in header")
	}

	var out []types.CallRecord
	for i, r := range rows {
		if i == 0 {
			continue
		}
		cell := func(key string) string {
			j, ok := idx[key]
			if !ok || j >= len(r) {
				return ""
			}
			return strings.TrimSpace(r[j])
		}
		if cell("id") == "" {
			continue
		}
		rec, err := parseRow(cell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRow(cell func(string) string) (types.CallRecord, error) {
	rec := types.CallRecord{
		ID:         cell("id"),
		CustomerID: cell("customerId"),
		AgentID:    cell("agentId"),
		AgentName:  cell("agentName"),
		Department: cell("department"),
		CallType:   types.CallType(strings.ToLower(cell("callType"))),
		Category:   cell("category"),
		Priority:   types.Priority(strings.ToLower(cell("priority"))),
		Status:     types.Status(strings.ToLower(cell("status"))),
		Notes:      cell("notes"),
	}
	var err error
	if rec.StartTime, err = parseTime(cell("startTime")); err != nil {
		return rec, fmt.Errorf("startTime: %w", err)
	}
	if v := cell("endTime"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return rec, fmt.Errorf("endTime: %w", err)
		}
		rec.EndTime = &t
	}
	if rec.Duration, err = optionalInt(cell("duration")); err != nil {
		return rec, fmt.Errorf("duration: %w", err)
	}
	if rec.ResolutionTime, err = optionalInt(cell("resolutionTime")); err != nil {
		return rec, fmt.Errorf("resolutionTime: %w", err)
	}
	if rec.CustomerSatisfaction, err = optionalInt(cell("customerSatisfaction")); err != nil {
		return rec, fmt.Errorf("customerSatisfaction: %w", err)
	}
	switch strings.ToLower(cell("firstCallResolution")) {
	case "true", "yes", "1", "y":
		rec.FirstCallResolution = true
	}
	if v := cell("transferCount"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return rec, fmt.Errorf("transferCount: %w", err)
		}
		rec.TransferCount = n
	}
	return rec, nil
}

func parseTime(v string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", v)
}

func optionalInt(v string) (*int, error) {
	if v == "" || strings.EqualFold(v, "n/a") {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(v, "m"))
	if err != nil {
		return nil, err
	}
	return &n, nil
}
