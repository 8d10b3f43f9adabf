package synthesizer

import (
	"fmt"
	"strconv"

	"callcenter-insights-go/internal/aggregator"
	"callcenter-insights-go/internal/types"
)

const timeLayout = "2006-01-02 15:04"

func statusChart(s aggregator.Snapshot) [][]types.Value {
	return [][]types.Value{
		header("Status", "Count"),
		{types.S("Resolved"), types.I(s.ResolvedCalls)},
		{types.S("In Progress"), types.I(s.InProgressCalls)},
		{types.S("Escalated"), types.I(s.EscalatedCalls)},
	}
}

func callRecords(s aggregator.Snapshot, records []types.CallRecord) types.AnalyticsResponse {
	t := newTable("Call Center Records",
		"Call ID", "Agent", "Department", "Category", "Priority", "Status", "Duration", "Satisfaction", "FCR")

	for _, r := range records {
		duration, durationValue := "N/A", 0
		if r.Duration != nil {
			duration, durationValue = strconv.Itoa(*r.Duration)+"m", *r.Duration
		}
		sat, satValue := "N/A", 0
		if r.CustomerSatisfaction != nil {
			sat, satValue = strconv.Itoa(*r.CustomerSatisfaction)+"/5", *r.CustomerSatisfaction
		}
		fcr, fcrValue := "No", 0
		if r.FirstCallResolution {
			fcr, fcrValue = "Yes", 1
		}
		end := "N/A"
		if r.EndTime != nil {
			end = r.EndTime.UTC().Format(timeLayout)
		}

		t.add(
			[]types.Value{
				types.S(r.ID), types.S(r.AgentName), types.S(r.Department), types.S(r.Category),
				types.S(string(r.Priority)), types.S(string(r.Status)),
				types.S(duration), types.S(sat), types.S(fcr),
			},
			types.Row{
				"DurationValue":     types.I(durationValue),
				"SatisfactionValue": types.I(satValue),
				"FCRValue":          types.I(fcrValue),
				"Start Time":        types.S(r.StartTime.UTC().Format(timeLayout)),
				"End Time":          types.S(end),
				"Notes":             types.S(r.Notes),
			},
		)
	}

	text := fmt.Sprintf("📋 **Call Records Analysis:**\n\n"+
		"• Total Records: %d\n"+
		"• Resolved: %d\n"+
		"• In Progress: %d\n"+
		"• Escalated: %d\n\n"+
		"**Use the table filters to:**\n"+
		"• Filter by department, status, or priority\n"+
		"• Search for specific agents or call IDs\n"+
		"• Sort by duration, satisfaction, or any column\n"+
		"• View detailed call information",
		len(records), s.ResolvedCalls, s.InProgressCalls, s.EscalatedCalls)

	return types.AnalyticsResponse{
		ChartData: &types.ChartSpec{
			Kind:  types.ColumnChart,
			Title: "Call Status Distribution",
			Data:  statusChart(s),
			Options: types.ChartOptions{
				Title:     "Call Status Distribution",
				VAxis:     &types.Axis{Title: "Number of Calls"},
				Colors:    []string{"#34A853", "#FBBC04", "#EA4335"},
				ChartArea: defaultArea,
			},
		},
		TableData:    t.build(),
		TextResponse: text,
		KPIs:         KPIs(s),
	}
}

// Overview is the general dashboard response. It doubles as the local
// answer when the reasoning backend cannot be used.
func Overview(s aggregator.Snapshot) types.AnalyticsResponse {
	t := newTable("Call Center Summary", "Metric", "Value")
	counts := []struct {
		name string
		n    int
	}{
		{"Total Calls", s.TotalCalls},
		{"Resolved Calls", s.ResolvedCalls},
		{"In Progress", s.InProgressCalls},
		{"Escalated Calls", s.EscalatedCalls},
	}
	for _, c := range counts {
		t.add([]types.Value{types.S(c.name), types.I(c.n)}, types.Row{"ValueNumber": types.I(c.n)})
	}
	rates := []struct {
		name    string
		display string
		value   float64
	}{
		{"Resolution Rate", pct(s.ResolutionRate), s.ResolutionRate},
		{"Avg Handle Time", f1(s.AvgHandleTime) + " minutes", s.AvgHandleTime},
		{"Customer Satisfaction", f1(s.AvgSatisfaction) + "/5", s.AvgSatisfaction},
		{"First Call Resolution", pct(s.FirstCallResolutionRate), s.FirstCallResolutionRate},
	}
	for _, r := range rates {
		t.add([]types.Value{types.S(r.name), types.S(r.display)}, types.Row{"ValueNumber": types.N(r.value)})
	}

	text := fmt.Sprintf("📞 **Call Center Dashboard Overview:**\n\n"+
		"**Key Metrics:**\n"+
		"• Total Calls: %d\n"+
		"• Resolution Rate: %s%%\n"+
		"• Avg Handle Time: %s minutes\n"+
		"• Customer Satisfaction: %s/5\n\n"+
		"**Ask me about:**\n"+
		"• \"Show department breakdown\"\n"+
		"• \"Analyze call categories\"\n"+
		"• \"Performance metrics\"\n"+
		"• \"Priority analysis\"\n"+
		"• \"Hourly call trends\"",
		s.TotalCalls, f1(s.ResolutionRate), f1(s.AvgHandleTime), f1(s.AvgSatisfaction))

	return types.AnalyticsResponse{
		ChartData: &types.ChartSpec{
			Kind:  types.ColumnChart,
			Title: "Call Center Overview",
			Data: [][]types.Value{
				header("Metric", "Count"),
				{types.S("Total Calls"), types.I(s.TotalCalls)},
				{types.S("Resolved"), types.I(s.ResolvedCalls)},
				{types.S("In Progress"), types.I(s.InProgressCalls)},
				{types.S("Escalated"), types.I(s.EscalatedCalls)},
			},
			Options: types.ChartOptions{
				Title:     "Call Status Overview",
				VAxis:     &types.Axis{Title: "Number of Calls"},
				Colors:    []string{"#4285F4", "#34A853", "#FBBC04", "#EA4335"},
				ChartArea: defaultArea,
			},
		},
		TableData:    t.build(),
		TextResponse: text,
		KPIs:         KPIs(s),
	}
}

func testFixture() types.AnalyticsResponse {
	t := newTable("Test Table", "Name", "Value", "Status")
	for _, r := range []struct {
		name   string
		value  int
		status string
	}{
		{"Test Item 1", 100, "Active"},
		{"Test Item 2", 200, "Inactive"},
		{"Test Item 3", 300, "Pending"},
	} {
		t.add(
			[]types.Value{types.S(r.name), types.S(strconv.Itoa(r.value)), types.S(r.status)},
			types.Row{"ValueNumber": types.I(r.value)},
		)
	}

	return types.AnalyticsResponse{
		ChartData: &types.ChartSpec{
			Kind:  types.ColumnChart,
			Title: "Test Chart",
			Data: [][]types.Value{
				header("Item", "Count"),
				{types.S("Test 1"), types.I(10)},
				{types.S("Test 2"), types.I(20)},
			},
			Options: types.ChartOptions{
				Title:     "Test Chart",
				VAxis:     &types.Axis{Title: "Count"},
				ChartArea: defaultArea,
			},
		},
		TableData:    t.build(),
		TextResponse: "This is a test response with both chart and table data.",
		KPIs: []types.KPI{
			{Label: "Test KPI 1", Value: "100", Trend: types.TrendUp},
			{Label: "Test KPI 2", Value: "200", Trend: types.TrendDown},
		},
	}
}
