package types

import (
	"fmt"
	"time"
)

type CallType string

const (
	CallInbound  CallType = "inbound"
	CallOutbound CallType = "outbound"
)

func (t CallType) Valid() bool {
	return t == CallInbound || t == CallOutbound
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusResolved   Status = "resolved"
	StatusEscalated  Status = "escalated"
	StatusClosed     Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusEscalated, StatusClosed:
		return true
	}
	return false
}

// CallRecord is one handled (or in-flight) customer call.
// Duration, ResolutionTime and CustomerSatisfaction are minutes / 1-5 scores
// and are nil when unknown.
type CallRecord struct {
	ID                   string     `json:"id"`
	CustomerID           string     `json:"customerId"`
	AgentID              string     `json:"agentId"`
	AgentName            string     `json:"agentName"`
	Department           string     `json:"department"`
	CallType             CallType   `json:"callType"`
	Category             string     `json:"category"`
	Priority             Priority   `json:"priority"`
	Status               Status     `json:"status"`
	StartTime            time.Time  `json:"startTime"`
	EndTime              *time.Time `json:"endTime,omitempty"`
	Duration             *int       `json:"duration,omitempty"`
	ResolutionTime       *int       `json:"resolutionTime,omitempty"`
	CustomerSatisfaction *int       `json:"customerSatisfaction,omitempty"`
	FirstCallResolution  bool       `json:"firstCallResolution"`
	TransferCount        int        `json:"transferCount"`
	Notes                string     `json:"notes"`
}

// Open reports whether the call has no outcome yet.
func (c CallRecord) Open() bool {
	return c.Status == StatusOpen || c.Status == StatusInProgress
}

// Validate checks the enum fields and the timing and scoring invariants of
// a record.
func (c CallRecord) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("call record: missing id")
	}
	if !c.CallType.Valid() {
		return fmt.Errorf("call %s: unknown call type %q", c.ID, c.CallType)
	}
	if !c.Priority.Valid() {
		return fmt.Errorf("call %s: unknown priority %q", c.ID, c.Priority)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("call %s: unknown status %q", c.ID, c.Status)
	}
	if c.EndTime != nil {
		if c.Duration == nil {
			return fmt.Errorf("call %s: end time without duration", c.ID)
		}
		elapsed := int(c.EndTime.Sub(c.StartTime).Minutes())
		if elapsed != *c.Duration {
			return fmt.Errorf("call %s: duration %dm does not match elapsed %dm", c.ID, *c.Duration, elapsed)
		}
	}
	if c.Open() && c.Duration != nil {
		return fmt.Errorf("call %s: %s call has a duration", c.ID, c.Status)
	}
	if !c.Open() && c.Duration == nil {
		return fmt.Errorf("call %s: %s call has no duration", c.ID, c.Status)
	}
	if s := c.CustomerSatisfaction; s != nil {
		if *s < 1 || *s > 5 {
			return fmt.Errorf("call %s: satisfaction %d out of range", c.ID, *s)
		}
		if c.Open() {
			return fmt.Errorf("call %s: satisfaction on a call without outcome", c.ID)
		}
	}
	return nil
}

// IntPtr is a small helper for optional minute/score fields.
func IntPtr(v int) *int { return &v }
