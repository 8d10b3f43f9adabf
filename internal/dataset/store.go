package dataset

import (
	"fmt"
	"time"

	"callcenter-insights-go/internal/types"
)

// Store hands out the call records the analytics run over.
// Callers get their own copy and may not mutate the store through it.
type Store interface {
	ListRecords() []types.CallRecord
}

type memStore struct {
	records []types.CallRecord
}

// NewStore wraps records in a read-only store. Every record must validate
// and ids must be unique.
func NewStore(records []types.CallRecord) (Store, error) {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("dataset: duplicate call id %s", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return &memStore{records: cloneRecords(records)}, nil
}

func (s *memStore) ListRecords() []types.CallRecord {
	return cloneRecords(s.records)
}

// NewFixtureStore returns the canned six-call dataset. It panics if the
// fixture is inconsistent, which is a programming error.
func NewFixtureStore() Store {
	s, err := NewStore(Fixture())
	if err != nil {
		panic(err)
	}
	return s
}

// Open returns the fixture store when path is empty, otherwise a store over
// the records of the workbook at path.
func Open(path string) (Store, error) {
	if path == "" {
		return NewFixtureStore(), nil
	}
	records, err := LoadWorkbook(path)
	if err != nil {
		return nil, err
	}
	return NewStore(records)
}

func cloneRecords(in []types.CallRecord) []types.CallRecord {
	out := make([]types.CallRecord, len(in))
	for i, r := range in {
		c := r
		if r.EndTime != nil {
			t := *r.EndTime
			c.EndTime = &t
		}
		if r.Duration != nil {
			c.Duration = types.IntPtr(*r.Duration)
		}
		if r.ResolutionTime != nil {
			c.ResolutionTime = types.IntPtr(*r.ResolutionTime)
		}
		if r.CustomerSatisfaction != nil {
			c.CustomerSatisfaction = types.IntPtr(*r.CustomerSatisfaction)
		}
		out[i] = c
	}
	return out
}

// Fixture returns a fresh copy of the canned call records.
func Fixture() []types.CallRecord {
	day := func(h, m int) time.Time {
		return time.Date(2024, time.January, 15, h, m, 0, 0, time.UTC)
	}
	finished := func(start time.Time, minutes int) (*time.Time, *int) {
		end := start.Add(time.Duration(minutes) * time.Minute)
		return &end, types.IntPtr(minutes)
	}

	end1, dur1 := finished(day(9, 30), 15)
	end2, dur2 := finished(day(10, 15), 13)
	end3, dur3 := finished(day(11, 0), 12)
	end4, dur4 := finished(day(14, 30), 45)
	end5, dur5 := finished(day(16, 0), 8)

	return []types.CallRecord{
		{
			ID: "call_001", CustomerID: "cust_123", AgentID: "agent_001", AgentName: "Sarah Johnson",
			Department: "Technical Support", CallType: types.CallInbound, Category: "Technical Issue",
			Priority: types.PriorityHigh, Status: types.StatusResolved,
			StartTime: day(9, 30), EndTime: end1, Duration: dur1, ResolutionTime: types.IntPtr(15),
			CustomerSatisfaction: types.IntPtr(5), FirstCallResolution: true,
			Notes: "Customer had login issues, resolved by password reset",
		},
		{
			ID: "call_002", CustomerID: "cust_456", AgentID: "agent_002", AgentName: "Mike Chen",
			Department: "Billing", CallType: types.CallInbound, Category: "Billing Inquiry",
			Priority: types.PriorityMedium, Status: types.StatusResolved,
			StartTime: day(10, 15), EndTime: end2, Duration: dur2, ResolutionTime: types.IntPtr(13),
			CustomerSatisfaction: types.IntPtr(4), FirstCallResolution: true,
			Notes: "Billing dispute resolved, refund processed",
		},
		{
			ID: "call_003", CustomerID: "cust_789", AgentID: "agent_003", AgentName: "Emily Rodriguez",
			Department: "Sales", CallType: types.CallOutbound, Category: "Follow-up",
			Priority: types.PriorityLow, Status: types.StatusClosed,
			StartTime: day(11, 0), EndTime: end3, Duration: dur3, ResolutionTime: types.IntPtr(12),
			CustomerSatisfaction: types.IntPtr(4), FirstCallResolution: true,
			Notes: "Follow-up on recent purchase, customer satisfied",
		},
		{
			ID: "call_004", CustomerID: "cust_101", AgentID: "agent_001", AgentName: "Sarah Johnson",
			Department: "Technical Support", CallType: types.CallInbound, Category: "Technical Issue",
			Priority: types.PriorityUrgent, Status: types.StatusEscalated,
			StartTime: day(14, 30), EndTime: end4, Duration: dur4,
			CustomerSatisfaction: types.IntPtr(2), TransferCount: 2,
			Notes: "Complex technical issue escalated to Level 2 support",
		},
		{
			ID: "call_005", CustomerID: "cust_202", AgentID: "agent_004", AgentName: "David Kim",
			Department: "Customer Service", CallType: types.CallInbound, Category: "General Inquiry",
			Priority: types.PriorityLow, Status: types.StatusResolved,
			StartTime: day(16, 0), EndTime: end5, Duration: dur5, ResolutionTime: types.IntPtr(8),
			CustomerSatisfaction: types.IntPtr(5), FirstCallResolution: true,
			Notes: "Product information inquiry, customer satisfied",
		},
		{
			ID: "call_006", CustomerID: "cust_303", AgentID: "agent_002", AgentName: "Mike Chen",
			Department: "Billing", CallType: types.CallInbound, Category: "Billing Inquiry",
			Priority: types.PriorityMedium, Status: types.StatusInProgress,
			StartTime: day(16, 30),
			Notes:     "Currently investigating billing discrepancy",
		},
	}
}
