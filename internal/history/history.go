// Package history keeps the recent analytics answers for redisplay.
package history

import (
	"sync"
	"time"
)

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 10

// Entry is one answered query.
type Entry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	// Payload is the full response, kept so a client can redraw it.
	Payload any `json:"payload,omitempty"`
}

// Log is a bounded, newest-first list of entries. Appending a query that is
// already present replaces the older entry. Safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	limit   int
	entries []Entry
}

func New(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]Entry, 0, l.limit)
	next = append(next, e)
	for _, old := range l.entries {
		if len(next) == l.limit {
			break
		}
		if old.Query == e.Query {
			continue
		}
		next = append(next, old)
	}
	l.entries = next
}

// List returns a copy of the entries, newest first.
func (l *Log) List() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Get looks an entry up by id.
func (l *Log) Get(id string) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
