package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  Intent
	}{
		{"Show department breakdown", DepartmentBreakdown},
		{"How is each TEAM doing?", DepartmentBreakdown},
		{"Analyze call category mix", CategoryBreakdown},
		{"Analyze call categories", DefaultOverview},
		{"What issue comes up most?", CategoryBreakdown},
		{"Priority analysis", PriorityAnalysis},
		{"any urgent calls?", PriorityAnalysis},
		{"Performance metrics", PerformanceMetrics},
		{"what is our FCR", PerformanceMetrics},
		{"Hourly call trends", TimeTrends},
		{"daily volume", TimeTrends},
		{"show agent data", AgentPerformance},
		{"agent metrics please", AgentPerformance},
		{"show call records", CallRecords},
		{"list all calls", CallRecords},
		{"render the test table", TestFixture},
		{"hello", DefaultOverview},
		{"", DefaultOverview},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestClassify_FirstRuleWins(t *testing.T) {
	// "test table" precedes "breakdown".
	assert.Equal(t, TestFixture, Classify("test table breakdown"))
	// "performance" is matched before "agent performance".
	assert.Equal(t, PerformanceMetrics, Classify("Agent performance"))
	// "type" in "call types" is a category keyword even though "call" is present.
	assert.Equal(t, CategoryBreakdown, Classify("call types in all calls"))
}

func TestRules_Order(t *testing.T) {
	want := []Intent{
		TestFixture, DepartmentBreakdown, CategoryBreakdown, PriorityAnalysis,
		PerformanceMetrics, TimeTrends, AgentPerformance, CallRecords,
	}
	got := make([]Intent, len(Rules))
	for i, r := range Rules {
		got[i] = r.Intent
	}
	assert.Equal(t, want, got)
}
