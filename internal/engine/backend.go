package engine

import (
	"context"
	"time"
)

// Match is a confirmed bidirectional relationship, as reported by the
// backend's match list. The engine never synthesizes one locally.
type Match struct {
	CandidateID uint64
	CreatedAt   time.Time
}

// Backend is the collaborator contract the engine runs against. The
// production implementation lives in internal/backend; tests substitute
// fakes with controllable timing.
//
// CreateLike is not idempotent; callers must guard against redundant
// writes per pair (the session does this via HasExistingMatch).
type Backend interface {
	// FetchCandidates returns the discoverable pool for the viewer. The
	// backend may apply coarse narrowing (e.g. home-state-only for free
	// tier) that the filter engine further refines.
	FetchCandidates(ctx context.Context, viewerID uint64) ([]Candidate, error)

	// CreateLike writes a directed like edge sender -> recipient.
	CreateLike(ctx context.Context, senderID, recipientID uint64, isSuper bool) error

	// HasExistingMatch is the authoritative pre-commit check for an
	// already-materialized match between viewer and candidate.
	HasExistingMatch(ctx context.Context, viewerID, candidateID uint64) (bool, error)

	// HasReciprocalLike reports whether candidate -> viewer exists. Used
	// only inside the reconciler's delayed poll.
	HasReciprocalLike(ctx context.Context, viewerID, candidateID uint64) (bool, error)

	// ListMatches returns the viewer's match list from source of truth.
	ListMatches(ctx context.Context, viewerID uint64) ([]Match, error)

	// GetSubscriptionTier returns the viewer's tier name.
	GetSubscriptionTier(ctx context.Context, viewerID uint64) (string, error)

	// GetTierLimits returns the daily limits for a tier.
	GetTierLimits(ctx context.Context, tier string) (Limits, error)
}
