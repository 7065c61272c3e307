package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultTierLimits is the shipped tier configuration. -1 means unlimited.
var DefaultTierLimits = []TierLimit{
	{Tier: "free", Swipes: 20, SuperLikes: 0, Rewinds: 0},
	{Tier: "plus", Swipes: 100, SuperLikes: 5, Rewinds: 3},
	{Tier: "premium", Swipes: -1, SuperLikes: 20, Rewinds: -1},
}

// SeedTierLimits upserts the tier configuration table. Safe to run on every
// boot; existing rows are refreshed to current defaults.
func SeedTierLimits(db *gorm.DB) error {
	for _, tl := range DefaultTierLimits {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tier"}},
			DoUpdates: clause.AssignmentColumns([]string{"swipes", "super_likes", "rewinds"}),
		}).Create(&tl).Error
		if err != nil {
			return fmt.Errorf("failed to seed tier %s: %w", tl.Tier, err)
		}
	}
	return nil
}

// SeedTestData resets the database and populates it with demo profiles and
// like edges.
//
// Behavior:
//  1. Clears existing data in `profiles`, `like_records` and `matches`.
//  2. Creates 24 profiles (half creators, half consumers) with hashed
//     passwords, spread across a few states.
//  3. Generates like edges with ~70% like probability, forcing a reciprocal
//     pair (and its materialized match) every 3rd edge.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"like_records", "matches", "profiles"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE profiles AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'profiles'")
	}

	log.Println("Cleared existing data")

	states := []string{"California", "Texas", "New York", "Florida"}
	cities := []string{"Los Angeles", "Austin", "New York", "Miami"}
	tiers := []string{"free", "plus", "premium"}

	// --- Seed Profiles ---
	for i := 1; i <= 24; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender := "male"
		if i%2 == 0 {
			gender = "female"
		}
		audience := "consumer"
		if i > 12 {
			audience = "creator"
		}
		loc := r.Intn(len(states))

		profile := Profile{
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			DisplayName:  fmt.Sprintf("User %d", i),
			Age:          18 + r.Intn(30),
			Gender:       gender,
			AudienceType: audience,
			State:        states[loc],
			City:         cities[loc],
			Interests:    "music,travel,fitness",
			MediaRef:     fmt.Sprintf("media/user%d/avatar.jpg", i),
			Tier:         tiers[r.Intn(len(tiers))],
			Verified:     i%5 == 0,
			Active:       true,
			LastActiveAt: time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}

		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
	}
	log.Println("Seeded 24 profiles.")

	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "sender_id"}, {Name: "recipient_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_super", "updated_at"}),
	}

	// --- Seed Likes (~200) ---
	counter := 0
	for senderID := uint64(1); senderID <= 24; senderID++ {
		for j := 0; j < 12; j++ {
			recipientID := uint64(r.Intn(24) + 1)
			if senderID == recipientID {
				continue
			}

			// like probability 70%
			if r.Intn(100) >= 70 {
				continue
			}

			like := LikeRecord{
				SenderID:    senderID,
				RecipientID: recipientID,
				IsSuper:     r.Intn(100) < 10,
			}
			if err := db.Clauses(upsert).Create(&like).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}

			// guarantee a reciprocal like (and match) every 3rd edge
			if counter%3 == 0 {
				recip := LikeRecord{
					SenderID:    recipientID,
					RecipientID: senderID,
				}
				db.Clauses(upsert).Create(&recip)

				low, high := senderID, recipientID
				if low > high {
					low, high = high, low
				}
				db.Clauses(clause.OnConflict{DoNothing: true}).
					Create(&Match{UserLowID: low, UserHighID: high})
			}

			counter++
		}
	}

	return SeedTierLimits(db)
}
