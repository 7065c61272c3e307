package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// SessionStatus is the forward state of the deck.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusExhausted SessionStatus = "exhausted"
)

// SessionConfig wires a discovery session together.
type SessionConfig struct {
	ViewerID   uint64
	Backend    Backend
	Quota      *Manager
	Reconciler *Reconciler
	Criteria   Criteria
	UndoDepth  int
	// Rand drives the candidate shuffle; nil gets a time-seeded source.
	Rand *rand.Rand
	// Sink receives session events; nil discards them.
	Sink   EventSink
	Logger *slog.Logger
}

// Session is the top-level orchestrator for one viewer's discovery deck.
// It owns the cursor, the filtered ordering, the undo stack and the quota
// counters, and serializes decisions: at most one commit is in flight.
type Session struct {
	viewerID   uint64
	backend    Backend
	quota      *Manager
	reconciler *Reconciler
	store      *Store
	undo       *UndoStack
	rng        *rand.Rand
	sink       EventSink
	log        *slog.Logger

	mu         sync.Mutex
	criteria   Criteria
	order      []Candidate
	cursor     int
	committing bool
	// liked tracks candidates already liked in this session, so a rewound
	// candidate cannot produce a second like write for the same pair.
	liked map[uint64]bool
}

// OutcomeKind is what a committed swipe resolved to.
type OutcomeKind string

const (
	OutcomePassed         OutcomeKind = "passed"
	OutcomeLikeSent       OutcomeKind = "like_sent"
	OutcomeMatchFound     OutcomeKind = "match_found"
	OutcomeAlreadyMatched OutcomeKind = "already_matched"
)

// Outcome is the resolution of one swipe, returned to the caller in
// addition to any events published to the sink.
type Outcome struct {
	Kind      OutcomeKind
	Candidate Candidate
}

// NewSession builds a session and performs the initial candidate fetch.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink{}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Session{
		viewerID:   cfg.ViewerID,
		backend:    cfg.Backend,
		quota:      cfg.Quota,
		reconciler: cfg.Reconciler,
		store:      NewStore(nil),
		undo:       NewUndoStack(cfg.UndoDepth),
		rng:        rng,
		sink:       sink,
		log:        log,
		criteria:   cfg.Criteria,
		liked:      make(map[uint64]bool),
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the candidate under the cursor, or ErrExhausted when the
// filtered sequence has run out.
func (s *Session) Current() (Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.order) {
		return Candidate{}, ErrExhausted
	}
	return s.order[s.cursor], nil
}

// Status reports whether the deck still has candidates under the cursor.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.order) {
		return StatusExhausted
	}
	return StatusActive
}

// Cursor returns the current index into the filtered sequence.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Criteria returns the active filter criteria.
func (s *Session) Criteria() Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.criteria
}

// Quota exposes the session's quota manager.
func (s *Session) Quota() *Manager { return s.quota }

// UndoPositions returns the recorded rewind positions oldest-first.
func (s *Session) UndoPositions() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undo.Entries()
}

// Swipe classifies a raw gesture displacement and commits the decision.
func (s *Session) Swipe(ctx context.Context, g Gesture) (Outcome, error) {
	dir, ok := g.Classify()
	if !ok {
		return Outcome{}, ErrGestureNotRecognized
	}
	return s.SwipeDirection(ctx, dir)
}

// SwipeDirection commits a decision on the current candidate.
//
// Every direction consumes one swipe quota unit; super-likes additionally
// consume a super-like unit and are checked against that counter first.
// A pass never touches the backend. Likes are guarded by an authoritative
// existing-match check so a stale cursor cannot write a duplicate like.
// The cursor advances and the undo entry is pushed only once the decision
// is durably committed; any failure before that leaves the candidate
// presented, the quota untouched and the gesture retryable.
func (s *Session) SwipeDirection(ctx context.Context, dir Direction) (Outcome, error) {
	s.mu.Lock()
	if s.committing {
		s.mu.Unlock()
		return Outcome{}, ErrDecisionInFlight
	}
	if s.cursor >= len(s.order) {
		s.mu.Unlock()
		return Outcome{}, ErrExhausted
	}
	cand := s.order[s.cursor]
	idx := s.cursor

	isSuper := dir == DirectionSuperLike
	if isSuper && !s.quota.CanPerform(ctx, ActionSuperLike) {
		s.mu.Unlock()
		s.sink.Publish(Event{Kind: EventQuotaExceeded, Action: ActionSuperLike})
		return Outcome{}, &QuotaExceededError{Action: ActionSuperLike}
	}
	if !s.quota.CanPerform(ctx, ActionSwipe) {
		s.mu.Unlock()
		s.sink.Publish(Event{Kind: EventQuotaExceeded, Action: ActionSwipe})
		return Outcome{}, &QuotaExceededError{Action: ActionSwipe}
	}

	if dir == DirectionPass {
		// No backend write; the decision resolves immediately.
		s.quota.Increment(ctx, ActionSwipe)
		exhausted := s.advanceLocked(idx)
		s.mu.Unlock()
		if exhausted {
			s.sink.Publish(Event{Kind: EventSessionExhausted})
		}
		return Outcome{Kind: OutcomePassed, Candidate: cand}, nil
	}

	s.committing = true
	s.mu.Unlock()

	outcome, err := s.commitLike(ctx, cand, idx, isSuper)
	if err != nil {
		s.mu.Lock()
		s.committing = false
		s.mu.Unlock()
		return Outcome{}, err
	}
	return outcome, nil
}

// commitLike runs the backend side of a like/super-like. Called with the
// committing flag held; clears it itself on the success paths.
func (s *Session) commitLike(ctx context.Context, cand Candidate, idx int, isSuper bool) (Outcome, error) {
	// Guard against double-processing after a cursor replay: if a match
	// already exists no new like record may be created.
	matched, err := s.backend.HasExistingMatch(ctx, s.viewerID, cand.ID)
	if err != nil {
		return Outcome{}, &BackendError{Op: "existing match check", Err: err}
	}
	if matched {
		s.mu.Lock()
		s.quota.Increment(ctx, ActionSwipe)
		if isSuper {
			s.quota.Increment(ctx, ActionSuperLike)
		}
		exhausted := s.advanceLocked(idx)
		s.committing = false
		s.mu.Unlock()

		s.sink.Publish(Event{Kind: EventAlreadyMatched, Candidate: &cand})
		if exhausted {
			s.sink.Publish(Event{Kind: EventSessionExhausted})
		}
		return Outcome{Kind: OutcomeAlreadyMatched, Candidate: cand}, nil
	}

	// A like record is written at most once per pair per session; a
	// candidate re-seen via rewind keeps the edge already sent.
	s.mu.Lock()
	alreadyLiked := s.liked[cand.ID]
	s.mu.Unlock()

	if !alreadyLiked {
		if err := s.backend.CreateLike(ctx, s.viewerID, cand.ID, isSuper); err != nil {
			return Outcome{}, &BackendError{Op: "like write", Err: err}
		}
	}

	// The like is durable: the decision is final from the viewer's
	// perspective regardless of how reconciliation goes.
	s.mu.Lock()
	s.liked[cand.ID] = true
	s.quota.Increment(ctx, ActionSwipe)
	if isSuper {
		s.quota.Increment(ctx, ActionSuperLike)
	}
	exhausted := s.advanceLocked(idx)
	s.mu.Unlock()

	result := s.reconciler.Reconcile(ctx, s.viewerID, cand)

	s.mu.Lock()
	s.committing = false
	s.mu.Unlock()

	outcome := Outcome{Kind: OutcomeLikeSent, Candidate: cand}
	if result == ResultMatchFound {
		outcome.Kind = OutcomeMatchFound
		s.sink.Publish(Event{Kind: EventMatchFound, Candidate: &cand})
	} else {
		s.sink.Publish(Event{Kind: EventLikeSent, Candidate: &cand})
	}
	if exhausted {
		s.sink.Publish(Event{Kind: EventSessionExhausted})
	}
	return outcome, nil
}

// Rewind pops the most recent position and moves the cursor back to it.
// Purely a presentation undo: a like already written for the rewound
// candidate stays written.
func (s *Session) Rewind(ctx context.Context) (Candidate, error) {
	s.mu.Lock()
	if s.committing {
		s.mu.Unlock()
		return Candidate{}, ErrDecisionInFlight
	}
	if s.undo.Len() == 0 {
		s.mu.Unlock()
		return Candidate{}, ErrNothingToRewind
	}
	if !s.quota.CanPerform(ctx, ActionRewind) {
		s.mu.Unlock()
		s.sink.Publish(Event{Kind: EventQuotaExceeded, Action: ActionRewind})
		return Candidate{}, &QuotaExceededError{Action: ActionRewind}
	}

	idx, _ := s.undo.Pop()
	s.cursor = idx
	s.quota.Increment(ctx, ActionRewind)
	cand := s.order[idx]
	s.mu.Unlock()
	return cand, nil
}

// SetFilters applies new criteria over the stored pool. Membership and
// ordering both change, so the cursor resets to 0 and the undo history is
// dropped.
func (s *Session) SetFilters(criteria Criteria) error {
	s.mu.Lock()
	if s.committing {
		s.mu.Unlock()
		return ErrDecisionInFlight
	}
	s.criteria = criteria
	s.order = ApplyFilters(s.store.All(), criteria, s.rng)
	s.cursor = 0
	s.undo.Clear()
	exhausted := len(s.order) == 0
	s.mu.Unlock()

	if exhausted {
		s.sink.Publish(Event{Kind: EventSessionExhausted})
	}
	return nil
}

// Refresh re-fetches the pool and resets all positional state together:
// cursor to 0, undo history cleared, ordering rebuilt. Gestures arriving
// mid-refresh are rejected the same way as during a commit.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.committing {
		s.mu.Unlock()
		return ErrDecisionInFlight
	}
	s.committing = true
	s.mu.Unlock()

	pool, err := s.backend.FetchCandidates(ctx, s.viewerID)

	s.mu.Lock()
	s.committing = false
	if err != nil {
		s.mu.Unlock()
		return &BackendError{Op: "candidate fetch", Err: err}
	}
	s.store.Swap(pool)
	s.order = ApplyFilters(pool, s.criteria, s.rng)
	s.cursor = 0
	s.undo.Clear()
	exhausted := len(s.order) == 0
	s.mu.Unlock()

	if exhausted {
		s.sink.Publish(Event{Kind: EventSessionExhausted})
	}
	return nil
}

// advanceLocked pushes the decided position and moves the cursor forward.
// Caller holds s.mu. Reports whether the deck is now exhausted.
func (s *Session) advanceLocked(idx int) bool {
	s.undo.Push(idx)
	s.cursor++
	return s.cursor >= len(s.order)
}
