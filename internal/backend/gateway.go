package backend

import (
	"context"
	"strings"
	"time"

	"github.com/fanspark/discovery/internal/app"
	"github.com/fanspark/discovery/internal/db"
	"github.com/fanspark/discovery/internal/engine"
	"github.com/fanspark/discovery/internal/repository"
)

// GormGateway implements engine.Backend over the gorm repositories, with
// the Redis admirer-count cache maintained on like writes.
type GormGateway struct {
	appCtx   *app.AppContext
	profiles *repository.ProfileRepository
	likes    *repository.LikeRepository
	matches  *repository.MatchRepository
}

var _ engine.Backend = (*GormGateway)(nil)

func NewGormGateway(appCtx *app.AppContext) *GormGateway {
	return &GormGateway{
		appCtx:   appCtx,
		profiles: repository.NewProfileRepository(appCtx.DB),
		likes:    repository.NewLikeRepository(appCtx.DB),
		matches:  repository.NewMatchRepository(appCtx.DB),
	}
}

// FetchCandidates returns the viewer's discoverable pool.
func (g *GormGateway) FetchCandidates(ctx context.Context, viewerID uint64) ([]engine.Candidate, error) {
	profiles, err := g.profiles.GetDiscoverable(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	out := make([]engine.Candidate, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toCandidate(p))
	}
	return out, nil
}

// CreateLike writes the directed edge, bumps the recipient's cached
// admirer count and materializes the match row if the edge turned out to
// be reciprocal. Cache maintenance is best-effort.
func (g *GormGateway) CreateLike(ctx context.Context, senderID, recipientID uint64, isSuper bool) error {
	if err := g.likes.CreateLike(ctx, senderID, recipientID, isSuper); err != nil {
		return err
	}

	key := g.appCtx.RedisCache.KeyForAdmirerCount(recipientID)
	_, _ = g.appCtx.RedisCache.Incr(ctx, key)
	_ = g.appCtx.RedisCache.Client.Expire(ctx, key, time.Hour).Err()

	if err := g.matches.MaterializeIfReciprocal(ctx, senderID, recipientID); err != nil {
		// The like itself is durable; materialization will be retried by
		// the next reciprocal write or reconciliation pass.
		g.appCtx.Logger.Warn("match materialization failed",
			"sender", senderID, "recipient", recipientID, "err", err)
	}
	return nil
}

// HasExistingMatch checks for a materialized match between the pair.
func (g *GormGateway) HasExistingMatch(ctx context.Context, viewerID, candidateID uint64) (bool, error) {
	return g.matches.HasMatch(ctx, viewerID, candidateID)
}

// HasReciprocalLike reports whether candidate -> viewer exists.
func (g *GormGateway) HasReciprocalLike(ctx context.Context, viewerID, candidateID uint64) (bool, error) {
	return g.likes.HasLiked(ctx, candidateID, viewerID)
}

// ListMatches returns the viewer's matches from source of truth.
func (g *GormGateway) ListMatches(ctx context.Context, viewerID uint64) ([]engine.Match, error) {
	rows, err := g.matches.ListMatches(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	out := make([]engine.Match, 0, len(rows))
	for _, m := range rows {
		other := m.UserLowID
		if other == viewerID {
			other = m.UserHighID
		}
		out = append(out, engine.Match{CandidateID: other, CreatedAt: m.CreatedAt})
	}
	return out, nil
}

// GetSubscriptionTier returns the viewer's tier name.
func (g *GormGateway) GetSubscriptionTier(ctx context.Context, viewerID uint64) (string, error) {
	return g.profiles.GetTier(ctx, viewerID)
}

// GetTierLimits returns the tier's daily limits from the configuration
// table.
func (g *GormGateway) GetTierLimits(ctx context.Context, tier string) (engine.Limits, error) {
	tl, err := g.profiles.GetTierLimits(ctx, tier)
	if err != nil {
		return engine.Limits{}, err
	}
	return engine.Limits{
		Swipes:     tl.Swipes,
		SuperLikes: tl.SuperLikes,
		Rewinds:    tl.Rewinds,
	}, nil
}

func toCandidate(p db.Profile) engine.Candidate {
	var interests []string
	if p.Interests != "" {
		interests = strings.Split(p.Interests, ",")
	}
	return engine.Candidate{
		ID:           p.ID,
		DisplayName:  p.DisplayName,
		Age:          p.Age,
		Gender:       p.Gender,
		AudienceType: p.AudienceType,
		State:        p.State,
		City:         p.City,
		Interests:    interests,
		MediaRef:     p.MediaRef,
		Verified:     p.Verified,
		LastActiveAt: p.LastActiveAt,
	}
}
