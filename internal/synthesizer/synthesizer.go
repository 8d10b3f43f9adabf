// Package synthesizer renders an analytics snapshot into the chart, table,
// narrative and KPI tiles for one intent.
package synthesizer

import (
	"math"
	"sort"
	"strconv"

	"callcenter-insights-go/internal/aggregator"
	"callcenter-insights-go/internal/intent"
	"callcenter-insights-go/internal/types"
)

var defaultArea = &types.ChartArea{Width: "80%", Height: "70%"}

// Synthesize builds the response for in. It is pure and total: every intent
// yields a response, including for an empty record set.
func Synthesize(in intent.Intent, s aggregator.Snapshot, records []types.CallRecord) types.AnalyticsResponse {
	switch in {
	case intent.TestFixture:
		return testFixture()
	case intent.DepartmentBreakdown:
		return departmentBreakdown(s)
	case intent.CategoryBreakdown:
		return categoryBreakdown(s)
	case intent.PriorityAnalysis:
		return priorityAnalysis(s)
	case intent.PerformanceMetrics:
		return performanceMetrics(s)
	case intent.TimeTrends:
		return timeTrends(s)
	case intent.AgentPerformance:
		return agentPerformance(s, records)
	case intent.CallRecords:
		return callRecords(s, records)
	default:
		return Overview(s)
	}
}

// KPIs returns the four headline tiles shared by every non-test response.
func KPIs(s aggregator.Snapshot) []types.KPI {
	return []types.KPI{
		{Label: "Total Calls", Value: strconv.Itoa(s.TotalCalls), Trend: types.TrendNeutral},
		{Label: "Resolution Rate", Value: pct(s.ResolutionRate), Trend: types.TrendUp},
		{Label: "Avg Handle Time", Value: f1(s.AvgHandleTime) + "m", Trend: types.TrendDown},
		{Label: "Customer Satisfaction", Value: f1(s.AvgSatisfaction) + "/5", Trend: types.TrendUp},
	}
}

// f1 formats with one decimal place.
func f1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// roundTo1 rounds to one decimal place, matching the displayed value.
func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

func pct(v float64) string {
	return f1(v) + "%"
}

// sortedDesc orders a breakdown by descending count, keeping first-seen
// order between equal counts.
func sortedDesc(b aggregator.Breakdown) aggregator.Breakdown {
	out := make(aggregator.Breakdown, len(b))
	copy(out, b)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// table accumulates display rows and their structured twins together so the
// two never drift apart.
type table struct {
	spec types.TableSpec
}

func newTable(title string, headers ...string) *table {
	return &table{spec: types.TableSpec{
		Title:   title,
		Headers: headers,
		Rows:    [][]types.Value{},
		Data:    []types.Row{},
	}}
}

// add appends one row; extra carries numeric shadow fields and any
// structured-only columns.
func (t *table) add(cells []types.Value, extra types.Row) {
	obj := types.Row{}
	for i, h := range t.spec.Headers {
		if i < len(cells) {
			obj[h] = cells[i]
		}
	}
	for k, v := range extra {
		obj[k] = v
	}
	t.spec.Rows = append(t.spec.Rows, cells)
	t.spec.Data = append(t.spec.Data, obj)
}

func (t *table) build() *types.TableSpec {
	out := t.spec
	return &out
}

func header(cols ...string) []types.Value {
	out := make([]types.Value, len(cols))
	for i, c := range cols {
		out[i] = types.S(c)
	}
	return out
}

func breakdownRows(b aggregator.Breakdown) [][]types.Value {
	rows := make([][]types.Value, 0, len(b))
	for _, c := range b {
		rows = append(rows, []types.Value{types.S(c.Key), types.I(c.Count)})
	}
	return rows
}

func num(v float64) *float64 { return &v }
