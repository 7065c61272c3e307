package admirers_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fanspark/discovery/internal/app"
	"github.com/fanspark/discovery/internal/cache"
	"github.com/fanspark/discovery/internal/config"
	"github.com/fanspark/discovery/internal/db"
	"github.com/fanspark/discovery/internal/service/admirers"
)

// setupRouter spins up an in-memory SQLite DB, a miniredis, and mounts the
// Admirers routes through the Registrar.
func setupRouter(t *testing.T) (*mux.Router, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&db.LikeRecord{}, &db.Match{}))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	appCtx := app.New(gdb, cache.NewRedisCache(cfg), logger)

	router := mux.NewRouter()
	admirers.NewRegistrar(appCtx).Register(router)
	return router, gdb, mr
}

func get(t *testing.T, router *mux.Router, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func seedLikes(t *testing.T, gdb *gorm.DB, recipient uint64, senders ...uint64) {
	t.Helper()
	base := time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)
	for i, sender := range senders {
		// spread updated_at so ordering is deterministic
		like := db.LikeRecord{
			SenderID:    sender,
			RecipientID: recipient,
			UpdatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, gdb.Create(&like).Error)
	}
}

func TestListAdmirersOrderedAndPaginated(t *testing.T) {
	router, gdb, _ := setupRouter(t)

	// 7 admirers, pageSize is 5
	seedLikes(t, gdb, 1, 10, 11, 12, 13, 14, 15, 16)

	rec, resp := get(t, router, "/v1/users/1/admirers")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	page1 := resp["admirers"].([]interface{})
	require.Len(t, page1, 5)
	// most recently updated first
	assert.Equal(t, float64(16), page1[0].(map[string]interface{})["sender_id"])

	token, ok := resp["next_page_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	rec, resp = get(t, router, "/v1/users/1/admirers?page_token="+token)
	require.Equal(t, http.StatusOK, rec.Code)
	page2 := resp["admirers"].([]interface{})
	require.Len(t, page2, 2)
	assert.Equal(t, float64(11), page2[0].(map[string]interface{})["sender_id"])
	assert.Equal(t, float64(10), page2[1].(map[string]interface{})["sender_id"])
	assert.Nil(t, resp["next_page_token"])
}

func TestListAdmirersEmpty(t *testing.T) {
	router, _, _ := setupRouter(t)

	rec, resp := get(t, router, "/v1/users/9/admirers")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp["admirers"])
}

func TestListAdmirersRejectsBadID(t *testing.T) {
	router, _, _ := setupRouter(t)

	rec, _ := get(t, router, "/v1/users/abc/admirers")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCountFallsBackToDBAndWarmsCache(t *testing.T) {
	router, gdb, mr := setupRouter(t)

	seedLikes(t, gdb, 2, 20, 21, 22)

	rec, resp := get(t, router, "/v1/users/2/admirers/count")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), resp["count"])

	// the miss warmed the cache
	cached, err := mr.Get("admirers:count:2")
	require.NoError(t, err)
	assert.Equal(t, "3", cached)
}

func TestCountPrefersCache(t *testing.T) {
	router, _, mr := setupRouter(t)

	// stale cached value wins over the (empty) DB
	require.NoError(t, mr.Set("admirers:count:3", "42"))

	rec, resp := get(t, router, "/v1/users/3/admirers/count")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(42), resp["count"])
}

func TestListMatchesReturnsOtherSide(t *testing.T) {
	router, gdb, _ := setupRouter(t)

	require.NoError(t, gdb.Create(&db.Match{UserLowID: 1, UserHighID: 5}).Error)
	require.NoError(t, gdb.Create(&db.Match{UserLowID: 1, UserHighID: 8}).Error)

	rec, resp := get(t, router, "/v1/users/1/matches")
	require.Equal(t, http.StatusOK, rec.Code)

	matches := resp["matches"].([]interface{})
	require.Len(t, matches, 2)
	seen := map[float64]bool{}
	for _, m := range matches {
		seen[m.(map[string]interface{})["user_id"].(float64)] = true
	}
	assert.True(t, seen[5])
	assert.True(t, seen[8])
}
