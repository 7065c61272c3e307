package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fanspark/discovery/internal/db"
)

// ProfileRepository provides data access methods for the Profile model.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// GetByID fetches a single profile.
func (r *ProfileRepository) GetByID(ctx context.Context, id uint64) (*db.Profile, error) {
	var p db.Profile
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetDiscoverable returns the pool of profiles the viewer may discover.
//
// Behavior:
//   - Excludes the viewer and inactive profiles.
//   - Free-tier viewers only see profiles in their home state (coarse
//     server-side narrowing; the filter engine refines further).
func (r *ProfileRepository) GetDiscoverable(
	ctx context.Context,
	viewerID uint64,
) ([]db.Profile, error) {
	viewer, err := r.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Where("id <> ? AND active = ?", viewerID, true)
	if viewer.Tier == "free" && viewer.State != "" {
		query = query.Where("state = ?", viewer.State)
	}

	var profiles []db.Profile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetTier returns the viewer's subscription tier name.
func (r *ProfileRepository) GetTier(ctx context.Context, viewerID uint64) (string, error) {
	var p db.Profile
	err := r.db.WithContext(ctx).
		Select("tier").
		First(&p, viewerID).Error
	if err != nil {
		return "", err
	}
	return p.Tier, nil
}

// GetTierLimits returns the daily limits configured for a tier.
func (r *ProfileRepository) GetTierLimits(ctx context.Context, tier string) (*db.TierLimit, error) {
	var tl db.TierLimit
	err := r.db.WithContext(ctx).
		Where("tier = ?", tier).
		First(&tl).Error
	if err != nil {
		return nil, err
	}
	return &tl, nil
}
