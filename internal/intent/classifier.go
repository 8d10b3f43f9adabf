package intent

import "strings"

// Intent is the presentation shape chosen for a query.
type Intent string

const (
	DepartmentBreakdown Intent = "department_breakdown"
	CategoryBreakdown   Intent = "category_breakdown"
	PriorityAnalysis    Intent = "priority_analysis"
	PerformanceMetrics  Intent = "performance_metrics"
	TimeTrends          Intent = "time_trends"
	AgentPerformance    Intent = "agent_performance"
	CallRecords         Intent = "call_records"
	TestFixture         Intent = "test_fixture"
	DefaultOverview     Intent = "default_overview"
)

// Rule maps any of its keywords to an intent.
type Rule struct {
	Intent   Intent
	Keywords []string
}

// Rules are evaluated in order; the first rule with a keyword contained in
// the lower-cased query wins.
var Rules = []Rule{
	{TestFixture, []string{"test table"}},
	{DepartmentBreakdown, []string{"department", "team", "breakdown"}},
	{CategoryBreakdown, []string{"category", "issue", "type"}},
	{PriorityAnalysis, []string{"priority", "urgent", "escalation"}},
	{PerformanceMetrics, []string{"performance", "resolution", "satisfaction", "fcr"}},
	{TimeTrends, []string{"time", "trend", "daily", "hourly"}},
	{AgentPerformance, []string{"agent performance", "agent data", "agent metrics"}},
	{CallRecords, []string{"call details", "call records", "all calls", "call list"}},
}

// Classify picks the intent for query. It never fails; unmatched queries
// get DefaultOverview.
func Classify(query string) Intent {
	q := strings.ToLower(query)
	for _, r := range Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(q, kw) {
				return r.Intent
			}
		}
	}
	return DefaultOverview
}
