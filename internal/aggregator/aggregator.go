package aggregator

import (
	"bytes"
	"encoding/json"
	"strconv"

	"callcenter-insights-go/internal/types"
)

// Count is one key of a breakdown.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Breakdown is a tally kept in first-seen key order.
type Breakdown []Count

func (b *Breakdown) add(key string) {
	for i := range *b {
		if (*b)[i].Key == key {
			(*b)[i].Count++
			return
		}
	}
	*b = append(*b, Count{Key: key, Count: 1})
}

// Get returns the count for key, 0 when absent.
func (b Breakdown) Get(key string) int {
	for _, c := range b {
		if c.Key == key {
			return c.Count
		}
	}
	return 0
}

func (b Breakdown) Total() int {
	n := 0
	for _, c := range b {
		n += c.Count
	}
	return n
}

// MarshalJSON encodes the breakdown as an object, keys in first-seen order.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Snapshot is the aggregate view of a record set. Rates are percentages.
type Snapshot struct {
	TotalCalls              int       `json:"totalCalls"`
	ResolvedCalls           int       `json:"resolvedCalls"`
	InProgressCalls         int       `json:"inProgressCalls"`
	EscalatedCalls          int       `json:"escalatedCalls"`
	AvgHandleTime           float64   `json:"avgHandleTime"`
	FirstCallResolutionRate float64   `json:"firstCallResolutionRate"`
	AvgSatisfaction         float64   `json:"avgSatisfaction"`
	CategoryBreakdown       Breakdown `json:"categoryBreakdown"`
	DepartmentBreakdown     Breakdown `json:"departmentBreakdown"`
	PriorityBreakdown       Breakdown `json:"priorityBreakdown"`
	ResolutionRate          float64   `json:"resolutionRate"`
	EscalationRate          float64   `json:"escalationRate"`
}

// Compute derives the snapshot in one pass. It is pure; an empty input
// yields zero counts and zero rates.
func Compute(records []types.CallRecord) Snapshot {
	s := Snapshot{
		TotalCalls:          len(records),
		CategoryBreakdown:   Breakdown{},
		DepartmentBreakdown: Breakdown{},
		PriorityBreakdown:   Breakdown{},
	}

	fcr := 0
	durSum, durN := 0, 0
	satSum, satN := 0, 0
	for _, r := range records {
		switch r.Status {
		case types.StatusResolved:
			s.ResolvedCalls++
		case types.StatusInProgress:
			s.InProgressCalls++
		case types.StatusEscalated:
			s.EscalatedCalls++
		}
		if r.FirstCallResolution {
			fcr++
		}
		if r.Duration != nil {
			durSum += *r.Duration
			durN++
		}
		if r.CustomerSatisfaction != nil {
			satSum += *r.CustomerSatisfaction
			satN++
		}
		s.CategoryBreakdown.add(r.Category)
		s.DepartmentBreakdown.add(r.Department)
		s.PriorityBreakdown.add(string(r.Priority))
	}

	s.AvgHandleTime = ratio(durSum, durN)
	s.AvgSatisfaction = ratio(satSum, satN)
	s.FirstCallResolutionRate = Percent(fcr, s.TotalCalls)
	s.ResolutionRate = Percent(s.ResolvedCalls, s.TotalCalls)
	s.EscalationRate = Percent(s.EscalatedCalls, s.TotalCalls)
	return s
}

// Percent returns part/total*100, or 0 when total is 0.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func ratio(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
