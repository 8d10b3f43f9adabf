package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_MarshalJSON(t *testing.T) {
	row := []Value{S("Billing"), I(2), N(33.3)}
	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `["Billing", 2, 33.3]`, string(b))

	var back []Value
	require.NoError(t, json.Unmarshal(b, &back))
	assert.False(t, back[0].IsNumber())
	assert.True(t, back[1].IsNumber())
	assert.Equal(t, 33.3, back[2].Number())
	assert.Equal(t, "2", back[1].String())
}

func TestTableSpec_Validate(t *testing.T) {
	table := TableSpec{
		Title:   "t",
		Headers: []string{"A", "B"},
		Rows:    [][]Value{{S("x"), I(1)}},
		Data:    []Row{{"A": S("x"), "B": I(1)}},
	}
	assert.NoError(t, table.Validate())

	table.Data = nil
	assert.Error(t, table.Validate())

	table.Data = []Row{{}}
	table.Rows = [][]Value{{S("x")}}
	assert.Error(t, table.Validate())
}

func TestCallRecord_Validate(t *testing.T) {
	start := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
	end := start.Add(15 * time.Minute)

	tests := []struct {
		name    string
		record  CallRecord
		wantErr bool
	}{
		{
			name: "resolved call",
			record: CallRecord{ID: "c1", CallType: CallInbound, Priority: PriorityHigh, Status: StatusResolved, StartTime: start, EndTime: &end,
				Duration: IntPtr(15), CustomerSatisfaction: IntPtr(5)},
		},
		{
			name:   "in progress call",
			record: CallRecord{ID: "c2", CallType: CallOutbound, Priority: PriorityLow, Status: StatusInProgress, StartTime: start},
		},
		{
			name: "duration mismatch",
			record: CallRecord{ID: "c3", CallType: CallInbound, Priority: PriorityMedium, Status: StatusResolved, StartTime: start, EndTime: &end,
				Duration: IntPtr(10)},
			wantErr: true,
		},
		{
			name:    "open call with satisfaction",
			record:  CallRecord{ID: "c4", CallType: CallInbound, Priority: PriorityMedium, Status: StatusOpen, StartTime: start, CustomerSatisfaction: IntPtr(3)},
			wantErr: true,
		},
		{
			name:    "closed call without duration",
			record:  CallRecord{ID: "c5", CallType: CallInbound, Priority: PriorityMedium, Status: StatusClosed, StartTime: start},
			wantErr: true,
		},
		{
			name: "satisfaction out of range",
			record: CallRecord{ID: "c6", CallType: CallInbound, Priority: PriorityMedium, Status: StatusResolved, StartTime: start, EndTime: &end,
				Duration: IntPtr(15), CustomerSatisfaction: IntPtr(9)},
			wantErr: true,
		},
		{
			name:    "unknown status",
			record:  CallRecord{ID: "c7", CallType: CallInbound, Priority: PriorityLow, Status: "done", StartTime: start},
			wantErr: true,
		},
		{
			name:    "unknown priority",
			record:  CallRecord{ID: "c8", CallType: CallInbound, Priority: "critical", Status: StatusOpen, StartTime: start},
			wantErr: true,
		},
		{
			name:    "missing call type",
			record:  CallRecord{ID: "c9", Priority: PriorityLow, Status: StatusOpen, StartTime: start},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
