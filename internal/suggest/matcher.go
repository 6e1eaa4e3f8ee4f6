// Package suggest answers "did you mean this building" lookups while a user
// types an address or building name. Rapid successive calls are coalesced:
// only the last call inside the debounce window ever touches the store.
package suggest

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"visitbook/internal/domain"
)

// DefaultWindow is the debounce window between a keystroke and the lookup.
const DefaultWindow = 300 * time.Millisecond

// MinQueryLen is the minimum query length (in runes) that triggers a lookup.
const MinQueryLen = 2

// buildingSource is the subset of refstore.Store that Matcher requires.
type buildingSource interface {
	FindAll(ctx context.Context) ([]domain.Building, error)
}

// Matcher is a single-slot debounced lookup. Each Search call cancels any
// pending one; a superseded call produces no consumer invocation and no
// side effect, so overlapping lookups can never deliver out of order.
type Matcher struct {
	store  buildingSource
	window time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	pending *time.Timer
	gen     uint64
}

func NewMatcher(store buildingSource, window time.Duration, logger *slog.Logger) *Matcher {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Matcher{store: store, window: window, logger: logger}
}

// Search schedules a lookup for query and delivers the matching buildings to
// consumer after the debounce window elapses, unless a newer Search call
// supersedes it first. Queries shorter than MinQueryLen clear any pending
// lookup and deliver an empty result immediately, without store access.
//
// Matching is a case-sensitive substring test against name and address, in
// store order. Consumer is invoked on the timer goroutine.
func (m *Matcher) Search(query string, consumer func([]domain.Building)) {
	m.mu.Lock()
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	m.gen++
	gen := m.gen

	if utf8.RuneCountInString(query) < MinQueryLen {
		m.mu.Unlock()
		consumer(nil)
		return
	}

	m.pending = time.AfterFunc(m.window, func() {
		// Stop cannot cancel a timer whose callback is already running, so a
		// superseded call is filtered by generation as well.
		m.mu.Lock()
		current := m.gen == gen
		m.mu.Unlock()
		if !current {
			return
		}
		m.lookup(query, consumer)
	})
	m.mu.Unlock()
}

// Close cancels any pending lookup.
func (m *Matcher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}

func (m *Matcher) lookup(query string, consumer func([]domain.Building)) {
	buildings, err := m.store.FindAll(context.Background())
	if err != nil {
		m.logger.Error("suggestion lookup failed", "query", query, "error", err)
		return
	}

	var matches []domain.Building
	for _, b := range buildings {
		if strings.Contains(b.Name, query) || strings.Contains(b.Address, query) {
			matches = append(matches, b)
		}
	}
	consumer(matches)
}
