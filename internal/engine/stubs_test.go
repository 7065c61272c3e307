package engine_test

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fanspark/discovery/internal/engine"
)

// likeCall records one CreateLike invocation.
type likeCall struct {
	sender    uint64
	recipient uint64
	isSuper   bool
}

// fakeBackend is a controllable in-memory engine.Backend.
type fakeBackend struct {
	mu         sync.Mutex
	candidates []engine.Candidate
	tier       string
	limits     engine.Limits
	matches    map[uint64]bool // candidateID -> match exists with viewer
	reciprocal map[uint64]bool // candidateID -> reciprocal like present
	matchList  []engine.Match

	fetchErr      error
	likeErr       error
	matchCheckErr error
	reciprocalErr error
	listErr       error

	likeCalls []likeCall

	// when set, CreateLike signals likeEntered and then blocks until
	// likeRelease is closed; used by the serialization test.
	likeEntered chan struct{}
	likeRelease chan struct{}
}

func newFakeBackend(candidates ...engine.Candidate) *fakeBackend {
	return &fakeBackend{
		candidates: candidates,
		tier:       "free",
		matches:    make(map[uint64]bool),
		reciprocal: make(map[uint64]bool),
	}
}

func (f *fakeBackend) FetchCandidates(context.Context, uint64) ([]engine.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]engine.Candidate, len(f.candidates))
	copy(out, f.candidates)
	return out, nil
}

func (f *fakeBackend) CreateLike(_ context.Context, senderID, recipientID uint64, isSuper bool) error {
	f.mu.Lock()
	entered, release, err := f.likeEntered, f.likeRelease, f.likeErr
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.likeCalls = append(f.likeCalls, likeCall{sender: senderID, recipient: recipientID, isSuper: isSuper})
	f.mu.Unlock()
	return nil
}

func (f *fakeBackend) HasExistingMatch(_ context.Context, _, candidateID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.matchCheckErr != nil {
		return false, f.matchCheckErr
	}
	return f.matches[candidateID], nil
}

func (f *fakeBackend) HasReciprocalLike(_ context.Context, _, candidateID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reciprocalErr != nil {
		return false, f.reciprocalErr
	}
	return f.reciprocal[candidateID], nil
}

func (f *fakeBackend) ListMatches(context.Context, uint64) ([]engine.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]engine.Match, len(f.matchList))
	copy(out, f.matchList)
	return out, nil
}

func (f *fakeBackend) GetSubscriptionTier(context.Context, uint64) (string, error) {
	return f.tier, nil
}

func (f *fakeBackend) GetTierLimits(context.Context, string) (engine.Limits, error) {
	return f.limits, nil
}

func (f *fakeBackend) likeCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.likeCalls)
}

// recordSink captures published events.
type recordSink struct {
	mu     sync.Mutex
	events []engine.Event
}

func (s *recordSink) Publish(ev engine.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordSink) kinds() []engine.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]engine.EventKind, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (s *recordSink) has(kind engine.EventKind) bool {
	for _, k := range s.kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// poolOf builds n interchangeable candidates.
func poolOf(n int) []engine.Candidate {
	out := make([]engine.Candidate, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, engine.Candidate{
			ID:           uint64(i),
			DisplayName:  "Candidate",
			Age:          25,
			Gender:       "female",
			AudienceType: "creator",
			State:        "California",
		})
	}
	return out
}

// newTestSession wires a session against the fake backend with an instant
// reconciler, a fixed clock and a seeded shuffle.
func newTestSession(t *testing.T, fb *fakeBackend, limits engine.Limits) (*engine.Session, *recordSink) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	quota := engine.NewQuotaManager(engine.QuotaConfig{
		ViewerID: 100,
		Limits:   limits,
		Now:      clock.Now,
	})

	rec := engine.NewReconciler(fb, time.Millisecond, time.Millisecond, discardLogger())
	rec.Sleep = func(context.Context, time.Duration) error { return nil }

	sink := &recordSink{}
	sess, err := engine.NewSession(context.Background(), engine.SessionConfig{
		ViewerID:   100,
		Backend:    fb,
		Quota:      quota,
		Reconciler: rec,
		Rand:       rand.New(rand.NewSource(1)),
		Sink:       sink,
		Logger:     discardLogger(),
	})
	require.NoError(t, err)
	return sess, sink
}
