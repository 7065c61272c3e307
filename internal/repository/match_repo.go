package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fanspark/discovery/internal/db"
)

// MatchRepository provides data access methods for the Match model.
// Matches are materialized rows; the pair is stored ordered low/high so
// each pair occupies exactly one row regardless of like direction.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// HasMatch checks whether a materialized match exists between two users.
func (r *MatchRepository) HasMatch(
	ctx context.Context,
	userA, userB uint64,
) (bool, error) {
	low, high := orderPair(userA, userB)
	var count int64
	err := r.db.WithContext(ctx).
		Table("matches m").
		Where("m.user_low_id = ? AND m.user_high_id = ?", low, high).
		Count(&count).Error
	return count > 0, err
}

// ListMatches returns all matches involving the given user, most recent
// first.
func (r *MatchRepository) ListMatches(
	ctx context.Context,
	userID uint64,
) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Table("matches m").
		Where("m.user_low_id = ? OR m.user_high_id = ?", userID, userID).
		Order("m.created_at DESC").
		Find(&matches).Error
	return matches, err
}

// MaterializeIfReciprocal creates the match row for a pair when like edges
// exist in both directions. Idempotent: re-running for an existing pair is
// a no-op.
func (r *MatchRepository) MaterializeIfReciprocal(
	ctx context.Context,
	userA, userB uint64,
) error {
	var count int64
	err := r.db.WithContext(ctx).
		Table("like_records l").
		Where("(l.sender_id = ? AND l.recipient_id = ?) OR (l.sender_id = ? AND l.recipient_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count < 2 {
		return nil
	}

	low, high := orderPair(userA, userB)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.Match{UserLowID: low, UserHighID: high}).Error
}

func orderPair(a, b uint64) (low, high uint64) {
	if a < b {
		return a, b
	}
	return b, a
}
