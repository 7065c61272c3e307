package engine

import (
	"context"
	"log/slog"
	"time"
)

// Default settle delays. The backend's mutual-like detection runs
// asynchronously relative to our like write; an immediate reciprocal check
// can produce a false negative, so the reconciler waits a short beat before
// polling and a longer one before trusting the materialized match list.
const (
	DefaultLikeSettleDelay  = 500 * time.Millisecond
	DefaultMatchSettleDelay = time.Second
)

// ReconcileResult is the terminal outcome of reconciling one like.
type ReconcileResult int

const (
	// ResultLikeSent: no confirmed match in-session. Best effort; if the
	// match appears later it is discovered when the match list is
	// independently refreshed.
	ResultLikeSent ReconcileResult = iota
	// ResultMatchFound: the match was confirmed against the backend's
	// match list, never synthesized locally.
	ResultMatchFound
)

// Reconciler resolves whether a freshly written like produced a mutual
// match. Errors after the like write never propagate as failures: the like
// itself is durable, reconciliation is advisory.
type Reconciler struct {
	backend          Backend
	likeSettleDelay  time.Duration
	matchSettleDelay time.Duration
	log              *slog.Logger

	// Sleep is the delay primitive, injectable so tests do not wait out
	// real settle windows.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewReconciler(backend Backend, likeSettle, matchSettle time.Duration, log *slog.Logger) *Reconciler {
	if likeSettle <= 0 {
		likeSettle = DefaultLikeSettleDelay
	}
	if matchSettle <= 0 {
		matchSettle = DefaultMatchSettleDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{
		backend:          backend,
		likeSettleDelay:  likeSettle,
		matchSettleDelay: matchSettle,
		log:              log,
		Sleep:            sleepCtx,
	}
}

// Reconcile runs the delayed two-step poll for a like that was just
// written: wait for the backend's like detection to settle, check for the
// reciprocal edge, and on a hit wait again and confirm against the match
// list from source of truth.
func (r *Reconciler) Reconcile(ctx context.Context, viewerID uint64, candidate Candidate) ReconcileResult {
	if err := r.Sleep(ctx, r.likeSettleDelay); err != nil {
		return ResultLikeSent
	}

	reciprocal, err := r.backend.HasReciprocalLike(ctx, viewerID, candidate.ID)
	if err != nil {
		r.log.Warn("reciprocal like poll failed, downgrading to like_sent",
			"viewer", viewerID, "candidate", candidate.ID, "err", err)
		return ResultLikeSent
	}
	if !reciprocal {
		return ResultLikeSent
	}

	// Give the backend's match materialization time to complete before
	// trusting its match list.
	if err := r.Sleep(ctx, r.matchSettleDelay); err != nil {
		return ResultLikeSent
	}

	matches, err := r.backend.ListMatches(ctx, viewerID)
	if err != nil {
		r.log.Warn("match list fetch failed, downgrading to like_sent",
			"viewer", viewerID, "candidate", candidate.ID, "err", err)
		return ResultLikeSent
	}
	for _, m := range matches {
		if m.CandidateID == candidate.ID {
			return ResultMatchFound
		}
	}
	return ResultLikeSent
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
