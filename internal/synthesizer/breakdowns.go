package synthesizer

import (
	"fmt"
	"strings"

	"callcenter-insights-go/internal/aggregator"
	"callcenter-insights-go/internal/types"
)

func departmentBreakdown(s aggregator.Snapshot) types.AnalyticsResponse {
	depts := sortedDesc(s.DepartmentBreakdown)

	t := newTable("Department Performance", "Department", "Total Calls", "Percentage")
	var lines []string
	for _, d := range depts {
		share := aggregator.Percent(d.Count, s.TotalCalls)
		t.add(
			[]types.Value{types.S(d.Key), types.I(d.Count), types.S(pct(share))},
			types.Row{"PercentageValue": types.N(share)},
		)
		lines = append(lines, fmt.Sprintf("• %s: %d calls", d.Key, d.Count))
	}

	return types.AnalyticsResponse{
		ChartData: &types.ChartSpec{
			Kind:  types.PieChart,
			Title: "Call Volume by Department",
			Data:  append([][]types.Value{header("Department", "Calls")}, breakdownRows(depts)...),
			Options: types.ChartOptions{
				Title:     "Call Distribution by Department",
				PieHole:   0.4,
				Colors:    []string{"#4285F4", "#34A853", "#FBBC04", "#EA4335", "#9AA0A6"},
				ChartArea: &types.ChartArea{Width: "90%", Height: "80%"},
			},
		},
		TableData: t.build(),
		TextResponse: "📊 **Department Analysis:**\n\nCall volume by department:\n" +
			strings.Join(lines, "\n") +
			"\n\nThis shows workload distribution across departments and can help with resource allocation.",
		KPIs: KPIs(s),
	}
}

func categoryBreakdown(s aggregator.Snapshot) types.AnalyticsResponse {
	cats := sortedDesc(s.CategoryBreakdown)

	t := newTable("Call Categories Breakdown", "Category", "Count", "Percentage")
	var lines []string
	for i, c := range cats {
		share := aggregator.Percent(c.Count, s.TotalCalls)
		t.add(
			[]types.Value{types.S(c.Key), types.I(c.Count), types.S(pct(share))},
			types.Row{"PercentageValue": types.N(share)},
		)
		if i < 3 {
			lines = append(lines, fmt.Sprintf("• %s: %d calls", c.Key, c.Count))
		}
	}

	return types.AnalyticsResponse{
		ChartData: &types.ChartSpec{
			Kind:  types.ColumnChart,
			Title: "Call Categories",
			Data:  append([][]types.Value{header("Category", "Count")}, breakdownRows(cats)...),
			Options: types.ChartOptions{
				Title:     "Call Volume by Category",
				VAxis:     &types.Axis{Title: "Number of Calls"},
				HAxis:     &types.Axis{Title: "Category"},
				Colors:    []string{"#4285F4", "#34A853", "#FBBC04", "#EA4335"},
				ChartArea: defaultArea,
			},
		},
		TableData: t.build(),
		TextResponse: "📋 **Category Analysis:**\n\nTop call categories:\n" +
			strings.Join(lines, "\n") +
			"\n\nThis helps identify common customer issues and training needs.",
		KPIs: KPIs(s),
	}
}

// escalationBenchmark is the editorial escalation rate shown per priority.
// It is a fixed benchmark and is not derived from the records.
func escalationBenchmark(p string) float64 {
	switch types.Priority(p) {
	case types.PriorityUrgent:
		return 45
	case types.PriorityHigh:
		return 25
	default:
		return 5
	}
}

func priorityAnalysis(s aggregator.Snapshot) types.AnalyticsResponse {
	prios := sortedDesc(s.PriorityBreakdown)

	t := newTable("Priority Analysis", "Priority", "Count", "Percentage", "Escalation Rate")
	for _, p := range prios {
		share := aggregator.Percent(p.Count, s.TotalCalls)
		bench := escalationBenchmark(p.Key)
		t.add(
			[]types.Value{types.S(p.Key), types.I(p.Count), types.S(pct(share)), types.S(fmt.Sprintf("%.0f%%", bench))},
			types.Row{"PercentageValue": types.N(roundTo1(share)), "EscalationRateValue": types.N(bench)},
		)
	}

	text := fmt.Sprintf("🚨 **Priority Analysis:**\n\n"+
		"• Escalation Rate: %s%%\n"+
		"• High Priority Calls: %d\n"+
		"• Urgent Calls: %d\n\n"+
		"**Action Items:**\n"+
		"• Monitor urgent calls closely\n"+
		"• Ensure proper escalation procedures\n"+
		"• Review high-priority resolution times",
		f1(s.EscalationRate),
		s.PriorityBreakdown.Get(string(types.PriorityHigh)),
		s.PriorityBreakdown.Get(string(types.PriorityUrgent)),
	)

	return types.AnalyticsResponse{
		ChartData: &types.ChartSpec{
			Kind:  types.PieChart,
			Title: "Call Priority Distribution",
			Data:  append([][]types.Value{header("Priority", "Count")}, breakdownRows(prios)...),
			Options: types.ChartOptions{
				Title:     "Calls by Priority Level",
				Colors:    []string{"#EA4335", "#FBBC04", "#4285F4", "#34A853"},
				PieHole:   0.3,
				ChartArea: &types.ChartArea{Width: "90%", Height: "80%"},
			},
		},
		TableData:    t.build(),
		TextResponse: text,
		KPIs:         KPIs(s),
	}
}
