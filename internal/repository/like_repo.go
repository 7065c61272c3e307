package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fanspark/discovery/internal/db"
	"github.com/fanspark/discovery/internal/utils/pagination"
)

// LikeRepository provides data access methods for the LikeRecord model.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// CreateLike inserts or refreshes the directed edge sender -> recipient.
//
// Behavior:
//   - If the (sender_id, recipient_id) pair exists the row is updated with
//     the new is_super value; the composite PK guarantees one live edge
//     per pair.
//   - The call itself is not idempotence-guarded; the engine avoids
//     redundant writes via its existing-match check.
func (r *LikeRepository) CreateLike(
	ctx context.Context,
	senderID, recipientID uint64,
	isSuper bool,
) error {
	like := db.LikeRecord{
		SenderID:    senderID,
		RecipientID: recipientID,
		IsSuper:     isSuper,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sender_id"}, {Name: "recipient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_super", "updated_at"}),
		}).
		Create(&like).Error
}

// HasLiked checks whether sender holds a live like edge toward recipient.
//
// Used for the reciprocal-like poll during match reconciliation.
func (r *LikeRepository) HasLiked(
	ctx context.Context,
	senderID, recipientID uint64,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("like_records l").
		Where("l.sender_id = ? AND l.recipient_id = ?", senderID, recipientID).
		Count(&count).Error
	return count > 0, err
}

// GetAdmirers returns the users who liked the given recipient, most recent
// first, with cursor-based pagination.
//
// Behavior:
//   - Ordered by updated_at DESC, sender_id DESC.
//   - Supports cursor-based pagination via paginationToken.
func (r *LikeRepository) GetAdmirers(
	ctx context.Context,
	recipientID uint64,
	paginationToken *string,
	limit int,
) ([]db.LikeRecord, *string, error) {
	var likes []db.LikeRecord

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("like_records l").
		Where("l.recipient_id = ?", recipientID).
		Order("l.updated_at DESC, l.sender_id DESC").
		Limit(limit + 1)

	if cursor.SenderID > 0 && cursor.UpdatedUnix > 0 {
		ts := time.UnixMilli(cursor.UpdatedUnix)
		query = query.Where(
			"(l.updated_at < ? OR (l.updated_at = ? AND l.sender_id < ?))",
			ts, ts, cursor.SenderID,
		)
	}

	if err := query.Find(&likes).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(likes) > limit {
		last := likes[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			SenderID:    last.SenderID,
			UpdatedUnix: last.UpdatedAt.UnixMilli(),
		})
		nextToken = &token
		likes = likes[:limit]
	}

	return likes, nextToken, nil
}

// CountAdmirers returns how many users liked the given recipient.
// Used in conjunction with the Redis cache (DB is fallback).
func (r *LikeRepository) CountAdmirers(
	ctx context.Context,
	recipientID uint64,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("like_records l").
		Where("l.recipient_id = ?", recipientID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
