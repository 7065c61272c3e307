package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fanspark/discovery/internal/app"
	"github.com/fanspark/discovery/internal/config"
	"github.com/fanspark/discovery/internal/engine"
)

// Service hosts live discovery sessions over the Discovery HTTP API.
// It contains the business logic on top of the engine and the backend
// gateway. Each live session is keyed by an opaque session ID and owns its
// quota manager, undo stack and reconciler.
type Service struct {
	appCtx  *app.AppContext
	cfg     *config.Config
	backend engine.Backend
	resetTZ *time.Location
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// liveSession pairs an engine session with its event buffer.
type liveSession struct {
	ID       string
	ViewerID uint64
	Session  *engine.Session
	Events   *eventLog

	lastSeen time.Time // guarded by Service.mu
}

// NewDiscoveryService creates a new Discovery service with dependencies
// from AppContext. The backend is injected so tests can substitute fakes
// with controllable timing.
func NewDiscoveryService(appCtx *app.AppContext, cfg *config.Config, backend engine.Backend) *Service {
	loc, err := time.LoadLocation(cfg.Engine.ResetTimezone)
	if err != nil {
		appCtx.Logger.Warn("invalid reset timezone, falling back to UTC",
			"tz", cfg.Engine.ResetTimezone, "err", err)
		loc = time.UTC
	}
	return &Service{
		appCtx:   appCtx,
		cfg:      cfg,
		backend:  backend,
		resetTZ:  loc,
		idleTTL:  cfg.Engine.SessionIdleTTL,
		now:      time.Now,
		sessions: make(map[string]*liveSession),
	}
}

// StartSession resolves the viewer's tier limits, builds the quota manager
// and reconciler, performs the initial candidate fetch and registers the
// session.
func (s *Service) StartSession(ctx context.Context, viewerID uint64, criteria engine.Criteria) (*liveSession, error) {
	tier, err := s.backend.GetSubscriptionTier(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tier: %w", err)
	}
	limits, err := s.backend.GetTierLimits(ctx, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tier limits: %w", err)
	}

	quota := engine.NewQuotaManager(engine.QuotaConfig{
		ViewerID: viewerID,
		Limits:   limits,
		Location: s.resetTZ,
		Store:    s.appCtx.RedisCache,
	})
	reconciler := engine.NewReconciler(
		s.backend,
		s.cfg.Engine.LikeSettleDelay,
		s.cfg.Engine.MatchSettleDelay,
		s.appCtx.Logger,
	)

	events := newEventLog()
	session, err := engine.NewSession(ctx, engine.SessionConfig{
		ViewerID:   viewerID,
		Backend:    s.backend,
		Quota:      quota,
		Reconciler: reconciler,
		Criteria:   criteria,
		UndoDepth:  s.cfg.Engine.UndoDepth,
		Sink:       events,
		Logger:     s.appCtx.Logger,
	})
	if err != nil {
		return nil, err
	}

	live := &liveSession{
		ID:       uuid.NewString(),
		ViewerID: viewerID,
		Session:  session,
		Events:   events,
	}

	s.mu.Lock()
	s.sweepIdleLocked()
	live.lastSeen = s.now()
	s.sessions[live.ID] = live
	s.mu.Unlock()

	s.appCtx.Logger.Info("discovery session started",
		"session", live.ID, "viewer", viewerID, "tier", tier)
	return live, nil
}

// GetSession looks up a live session by ID, refreshing its idle deadline.
// An expired session is dropped and reported as unknown.
func (s *Service) GetSession(id string) (*liveSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.expiredLocked(live) {
		delete(s.sessions, id)
		return nil, false
	}
	live.lastSeen = s.now()
	return live, true
}

// sweepIdleLocked evicts sessions whose clients stopped talking to us, so
// abandoned sessions do not accumulate. Caller holds s.mu.
func (s *Service) sweepIdleLocked() {
	for id, live := range s.sessions {
		if s.expiredLocked(live) {
			delete(s.sessions, id)
		}
	}
}

func (s *Service) expiredLocked(live *liveSession) bool {
	return s.idleTTL > 0 && s.now().Sub(live.lastSeen) > s.idleTTL
}

// EndSession drops a live session. In-flight decisions run to completion
// on their own goroutine; teardown only stops new ones from being issued.
func (s *Service) EndSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// eventLog buffers session events for delivery to the client. Bounded so
// an idle client cannot grow it without bound.
type eventLog struct {
	mu     sync.Mutex
	events []engine.Event
}

const eventLogCap = 64

func newEventLog() *eventLog {
	return &eventLog{}
}

func (l *eventLog) Publish(ev engine.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == eventLogCap {
		copy(l.events, l.events[1:])
		l.events = l.events[:len(l.events)-1]
	}
	l.events = append(l.events, ev)
}

// Drain returns and clears the buffered events, oldest first.
func (l *eventLog) Drain() []engine.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.events
	l.events = nil
	return out
}
