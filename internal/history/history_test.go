package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, query string) Entry {
	return Entry{ID: id, Query: query, Text: "answer to " + query, Timestamp: time.Now()}
}

func TestLog_NewestFirst(t *testing.T) {
	l := New(10)
	l.Append(entry("1", "a"))
	l.Append(entry("2", "b"))
	l.Append(entry("3", "c"))

	got := l.List()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"3", "2", "1"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestLog_DedupesByQuery(t *testing.T) {
	l := New(10)
	l.Append(entry("1", "department breakdown"))
	l.Append(entry("2", "priority"))
	l.Append(entry("3", "department breakdown"))

	got := l.List()
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
	_, ok := l.Get("1")
	assert.False(t, ok)
}

func TestLog_Bounded(t *testing.T) {
	l := New(3)
	for i := 0; i < 5; i++ {
		l.Append(entry(fmt.Sprint(i), fmt.Sprint("q", i)))
	}

	got := l.List()
	require.Len(t, got, 3)
	assert.Equal(t, "4", got[0].ID)
	assert.Equal(t, "2", got[2].ID)
}

func TestLog_DefaultLimit(t *testing.T) {
	l := New(0)
	for i := 0; i < 15; i++ {
		l.Append(entry(fmt.Sprint(i), fmt.Sprint("q", i)))
	}
	assert.Equal(t, DefaultLimit, l.Len())
}

func TestLog_Get(t *testing.T) {
	l := New(5)
	l.Append(entry("abc", "x"))

	e, ok := l.Get("abc")
	require.True(t, ok)
	assert.Equal(t, "x", e.Query)

	_, ok = l.Get("missing")
	assert.False(t, ok)
}

func TestLog_ListIsCopy(t *testing.T) {
	l := New(5)
	l.Append(entry("1", "x"))
	got := l.List()
	got[0].Query = "mutated"
	assert.Equal(t, "x", l.List()[0].Query)
}

func TestLog_Concurrent(t *testing.T) {
	l := New(10)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Append(entry(fmt.Sprint(i), fmt.Sprint("q", i%7)))
			_ = l.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 7, l.Len())
}
