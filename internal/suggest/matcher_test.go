package suggest

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitbook/internal/domain"
)

// countingSource serves a fixed set of buildings and counts FindAll calls.
type countingSource struct {
	buildings []domain.Building
	calls     atomic.Int64
}

func (c *countingSource) FindAll(context.Context) ([]domain.Building, error) {
	c.calls.Add(1)
	return c.buildings, nil
}

func testMatcher(t *testing.T, src *countingSource, window time.Duration) *Matcher {
	t.Helper()
	m := NewMatcher(src, window, slog.Default())
	t.Cleanup(m.Close)
	return m
}

func collect(t *testing.T) (func([]domain.Building), <-chan []domain.Building) {
	t.Helper()
	ch := make(chan []domain.Building, 8)
	return func(bs []domain.Building) { ch <- bs }, ch
}

func TestSearchSubstringMatch(t *testing.T) {
	src := &countingSource{buildings: []domain.Building{
		{ID: 1, Name: "A Tower", Address: "1 Main St"},
		{ID: 2, Name: "B House", Address: "2 Side St"},
	}}
	m := testMatcher(t, src, 5*time.Millisecond)
	consumer, results := collect(t)

	m.Search("to", consumer)

	select {
	case got := <-results:
		require.Len(t, got, 1)
		assert.Equal(t, "A Tower", got[0].Name)
	case <-time.After(time.Second):
		t.Fatal("no suggestion delivered")
	}
}

func TestSearchMatchesAddressToo(t *testing.T) {
	src := &countingSource{buildings: []domain.Building{
		{ID: 1, Name: "A Tower", Address: "1 Main St"},
		{ID: 2, Name: "B House", Address: "2 Main St"},
	}}
	m := testMatcher(t, src, 5*time.Millisecond)
	consumer, results := collect(t)

	m.Search("Main", consumer)

	select {
	case got := <-results:
		assert.Len(t, got, 2)
	case <-time.After(time.Second):
		t.Fatal("no suggestion delivered")
	}
}

func TestSearchCaseSensitive(t *testing.T) {
	src := &countingSource{buildings: []domain.Building{
		{ID: 1, Name: "A Tower", Address: "1 Main St"},
	}}
	m := testMatcher(t, src, 5*time.Millisecond)
	consumer, results := collect(t)

	m.Search("tower", consumer)

	select {
	case got := <-results:
		assert.Empty(t, got)
	case <-time.After(time.Second):
		t.Fatal("no suggestion delivered")
	}
}

func TestSearchDebounceLastCallWins(t *testing.T) {
	src := &countingSource{buildings: []domain.Building{
		{ID: 1, Name: "xylophone hall", Address: ""},
	}}
	m := testMatcher(t, src, 50*time.Millisecond)
	consumer, results := collect(t)

	m.Search("xy", consumer)
	m.Search("xyl", consumer) // supersedes within the window

	select {
	case got := <-results:
		require.Len(t, got, 1)
	case <-time.After(time.Second):
		t.Fatal("no suggestion delivered")
	}

	// Exactly one lookup ran, for the later query; the first call produced
	// no consumer invocation.
	assert.Equal(t, int64(1), src.calls.Load())
	select {
	case <-results:
		t.Fatal("superseded search must not deliver")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSearchShortQueryClearsImmediately(t *testing.T) {
	src := &countingSource{buildings: []domain.Building{
		{ID: 1, Name: "A Tower", Address: "1 Main St"},
	}}
	m := testMatcher(t, src, time.Hour) // would never fire on its own
	consumer, results := collect(t)

	m.Search("a", consumer)

	select {
	case got := <-results:
		assert.Empty(t, got)
	case <-time.After(time.Second):
		t.Fatal("short query must deliver immediately")
	}
	assert.Zero(t, src.calls.Load(), "short query must not touch the store")
}

func TestSearchShortQueryCancelsPending(t *testing.T) {
	src := &countingSource{buildings: []domain.Building{
		{ID: 1, Name: "A Tower", Address: "1 Main St"},
	}}
	m := testMatcher(t, src, 30*time.Millisecond)
	consumer, results := collect(t)

	m.Search("To", consumer)
	m.Search("T", consumer) // clears and cancels the pending lookup

	got := <-results
	assert.Empty(t, got)

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, src.calls.Load())
	select {
	case <-results:
		t.Fatal("cancelled search must not deliver")
	default:
	}
}
