package admirers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fanspark/discovery/internal/app"
	svcErr "github.com/fanspark/discovery/internal/errors"
	"github.com/fanspark/discovery/internal/repository"
	"github.com/fanspark/discovery/internal/server"
)

const pageSize = 5

// Service implements the Admirers HTTP API: who liked a user, how many,
// and the user's confirmed matches. The count endpoint is cache-first with
// the DB as fallback.
type Service struct {
	appCtx    *app.AppContext
	likeRepo  *repository.LikeRepository
	matchRepo *repository.MatchRepository
}

// NewAdmirersService creates a new Admirers service with dependencies from
// AppContext.
func NewAdmirersService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:    appCtx,
		likeRepo:  repository.NewLikeRepository(appCtx.DB),
		matchRepo: repository.NewMatchRepository(appCtx.DB),
	}
}

func userID(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

// HandleList implements GET /v1/users/{id}/admirers.
//
// Behavior:
//   - Returns sender_id + timestamp pairs, most recent first.
//   - Supports cursor-based pagination via the page_token query param.
func (s *Service) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		server.WriteError(w, http.StatusBadRequest, "id must be a valid uint64")
		return
	}

	var token *string
	if t := r.URL.Query().Get("page_token"); t != "" {
		token = &t
	}

	s.appCtx.Logger.Debug("ListAdmirers called", "recipient", id, "token", token)

	likes, nextToken, err := s.likeRepo.GetAdmirers(r.Context(), id, token, pageSize)
	if err != nil {
		s.appCtx.Logger.Error("GetAdmirers failed", "err", err)
		server.WriteError(w, svcErr.Status(err), err.Error())
		return
	}

	type admirerJSON struct {
		SenderID      uint64 `json:"sender_id"`
		IsSuper       bool   `json:"is_super"`
		UnixTimestamp int64  `json:"unix_timestamp"`
	}
	out := make([]admirerJSON, 0, len(likes))
	for _, l := range likes {
		out = append(out, admirerJSON{
			SenderID:      l.SenderID,
			IsSuper:       l.IsSuper,
			UnixTimestamp: l.UpdatedAt.UnixMilli(),
		})
	}

	resp := map[string]interface{}{"admirers": out}
	if nextToken != nil {
		resp["next_page_token"] = *nextToken
	}
	server.WriteJSON(w, http.StatusOK, resp)
}

// HandleCount implements GET /v1/users/{id}/admirers/count.
// Cache-first strategy:
//  1. Attempts to read from Redis (admirers:count:userID).
//  2. On cache miss, falls back to the DB.
//  3. On DB fetch, updates Redis with a 1h TTL.
func (s *Service) HandleCount(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		server.WriteError(w, http.StatusBadRequest, "id must be a valid uint64")
		return
	}

	s.appCtx.Logger.Debug("CountAdmirers called", "recipient", id)

	if n, hit, err := s.appCtx.RedisCache.GetAdmirerCount(r.Context(), id); err == nil && hit {
		server.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
		return
	}

	count, err := s.likeRepo.CountAdmirers(r.Context(), id)
	if err != nil {
		server.WriteError(w, svcErr.Status(err), err.Error())
		return
	}

	_ = s.appCtx.RedisCache.UpdateAdmirerCount(r.Context(), id, count)
	server.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// HandleMatches implements GET /v1/users/{id}/matches.
func (s *Service) HandleMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		server.WriteError(w, http.StatusBadRequest, "id must be a valid uint64")
		return
	}

	matches, err := s.matchRepo.ListMatches(r.Context(), id)
	if err != nil {
		server.WriteError(w, svcErr.Status(err), err.Error())
		return
	}

	type matchJSON struct {
		UserID    uint64 `json:"user_id"`
		MatchedAt string `json:"matched_at"`
	}
	out := make([]matchJSON, 0, len(matches))
	for _, m := range matches {
		other := m.UserLowID
		if other == id {
			other = m.UserHighID
		}
		out = append(out, matchJSON{
			UserID:    other,
			MatchedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	server.WriteJSON(w, http.StatusOK, map[string]interface{}{"matches": out})
}
