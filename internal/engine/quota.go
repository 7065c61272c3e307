package engine

import (
	"context"
	"sync"
	"time"
)

// Action is a quota-governed operation.
type Action string

const (
	ActionSwipe     Action = "swipe"
	ActionSuperLike Action = "super_like"
	ActionRewind    Action = "rewind"
)

// Unlimited disables the daily cap for an action.
const Unlimited = -1

// Limits is the per-day cap for each action, derived from the viewer's
// subscription tier.
type Limits struct {
	Swipes     int
	SuperLikes int
	Rewinds    int
}

// Counters is the per-day usage for each action. Counters only ever grow;
// the sole reset is the daily rollover.
type Counters struct {
	Swipes     int
	SuperLikes int
	Rewinds    int
}

// CounterStore optionally persists daily counters across sessions so a
// restart does not hand out a fresh daily budget. Implemented by the Redis
// cache; persistence is best-effort and never blocks a decision.
type CounterStore interface {
	LoadCounters(ctx context.Context, viewerID uint64, day string) (Counters, error)
	SaveCounters(ctx context.Context, viewerID uint64, day string, counters Counters) error
}

// QuotaConfig configures a quota Manager.
type QuotaConfig struct {
	ViewerID uint64
	Limits   Limits
	// Location is the backend's reference timezone for the daily reset.
	// Nil means UTC.
	Location *time.Location
	// Now is the clock; nil means time.Now. Injected for day-rollover
	// tests.
	Now func() time.Time
	// Store persists counters across sessions. Optional.
	Store CounterStore
}

// Manager tracks per-day counters against tier limits. Safe for concurrent
// use: the owning session mutates counters while handlers read them from
// request goroutines.
type Manager struct {
	viewerID uint64
	limits   Limits

	mu       sync.Mutex
	counters Counters
	day      string
	loc      *time.Location
	now      func() time.Time
	store    CounterStore
}

func NewQuotaManager(cfg QuotaConfig) *Manager {
	m := &Manager{
		viewerID: cfg.ViewerID,
		limits:   cfg.Limits,
		loc:      cfg.Location,
		now:      cfg.Now,
		store:    cfg.Store,
	}
	if m.loc == nil {
		m.loc = time.UTC
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// CanPerform reports whether the action is still within today's limit.
// Must be called before any backend write for the action.
func (m *Manager) CanPerform(ctx context.Context, action Action) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover(ctx)
	limit := m.limitFor(action)
	if limit == Unlimited {
		return true
	}
	return m.counterFor(action) < limit
}

// Increment records one successful commitment of the action.
func (m *Manager) Increment(ctx context.Context, action Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover(ctx)
	switch action {
	case ActionSwipe:
		m.counters.Swipes++
	case ActionSuperLike:
		m.counters.SuperLikes++
	case ActionRewind:
		m.counters.Rewinds++
	}
	if m.store != nil {
		// best-effort persistence
		_ = m.store.SaveCounters(ctx, m.viewerID, m.day, m.counters)
	}
}

// Counters returns today's usage.
func (m *Manager) Counters(ctx context.Context) Counters {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover(ctx)
	return m.counters
}

// Limits returns the configured caps.
func (m *Manager) Limits() Limits { return m.limits }

// rollover zeroes the counters when the wall-clock date (in the reference
// timezone) has changed since the last check, re-hydrating from the store
// when one is configured. Caller holds m.mu.
func (m *Manager) rollover(ctx context.Context) {
	day := m.now().In(m.loc).Format("2006-01-02")
	if day == m.day {
		return
	}
	m.day = day
	m.counters = Counters{}
	if m.store != nil {
		if persisted, err := m.store.LoadCounters(ctx, m.viewerID, day); err == nil {
			m.counters = persisted
		}
	}
}

func (m *Manager) limitFor(action Action) int {
	switch action {
	case ActionSuperLike:
		return m.limits.SuperLikes
	case ActionRewind:
		return m.limits.Rewinds
	default:
		return m.limits.Swipes
	}
}

func (m *Manager) counterFor(action Action) int {
	switch action {
	case ActionSuperLike:
		return m.counters.SuperLikes
	case ActionRewind:
		return m.counters.Rewinds
	default:
		return m.counters.Swipes
	}
}
