package discovery

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fanspark/discovery/internal/engine"
	svcErr "github.com/fanspark/discovery/internal/errors"
	"github.com/fanspark/discovery/internal/server"
)

type candidateJSON struct {
	ID           uint64   `json:"id"`
	DisplayName  string   `json:"display_name"`
	Age          int      `json:"age"`
	Gender       string   `json:"gender"`
	AudienceType string   `json:"audience_type"`
	State        string   `json:"state,omitempty"`
	City         string   `json:"city,omitempty"`
	Interests    []string `json:"interests,omitempty"`
	MediaRef     string   `json:"media_ref,omitempty"`
	Verified     bool     `json:"verified"`
	LastActiveAt string   `json:"last_active_at,omitempty"`
}

type criteriaJSON struct {
	AgeMin   int    `json:"age_min"`
	AgeMax   int    `json:"age_max"`
	Gender   string `json:"gender"`
	Location string `json:"location"`
	Audience string `json:"audience"`
	RadiusKM int    `json:"radius_km"`
}

type countersJSON struct {
	Swipes     int `json:"swipes_used"`
	SuperLikes int `json:"super_likes_used"`
	Rewinds    int `json:"rewinds_used"`
}

type limitsJSON struct {
	Swipes     int `json:"swipes"`
	SuperLikes int `json:"super_likes"`
	Rewinds    int `json:"rewinds"`
}

type deckJSON struct {
	Status    string         `json:"status"`
	Candidate *candidateJSON `json:"candidate,omitempty"`
}

func toCandidateJSON(c engine.Candidate) *candidateJSON {
	out := &candidateJSON{
		ID:           c.ID,
		DisplayName:  c.DisplayName,
		Age:          c.Age,
		Gender:       c.Gender,
		AudienceType: c.AudienceType,
		State:        c.State,
		City:         c.City,
		Interests:    c.Interests,
		MediaRef:     c.MediaRef,
		Verified:     c.Verified,
	}
	if !c.LastActiveAt.IsZero() {
		out.LastActiveAt = c.LastActiveAt.UTC().Format(time.RFC3339)
	}
	return out
}

func toCriteria(c criteriaJSON) engine.Criteria {
	return engine.Criteria{
		AgeMin:   c.AgeMin,
		AgeMax:   c.AgeMax,
		Gender:   c.Gender,
		Location: c.Location,
		Audience: c.Audience,
		RadiusKM: c.RadiusKM,
	}
}

func (s *Service) deck(live *liveSession) deckJSON {
	cand, err := live.Session.Current()
	if err != nil {
		return deckJSON{Status: string(engine.StatusExhausted)}
	}
	return deckJSON{Status: string(engine.StatusActive), Candidate: toCandidateJSON(cand)}
}

func (s *Service) counters(r *http.Request, live *liveSession) countersJSON {
	c := live.Session.Quota().Counters(r.Context())
	return countersJSON{Swipes: c.Swipes, SuperLikes: c.SuperLikes, Rewinds: c.Rewinds}
}

// HandleStartSession implements POST /v1/discovery/sessions.
func (s *Service) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ViewerID uint64       `json:"viewer_id"`
		Filters  criteriaJSON `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ViewerID == 0 {
		server.WriteError(w, http.StatusBadRequest, "viewer_id is required")
		return
	}

	s.appCtx.Logger.Debug("StartSession called", "viewer", req.ViewerID)

	live, err := s.StartSession(r.Context(), req.ViewerID, toCriteria(req.Filters))
	if err != nil {
		s.appCtx.Logger.Error("StartSession failed", "viewer", req.ViewerID, "err", err)
		server.WriteError(w, svcErr.Status(err), err.Error())
		return
	}

	limits := live.Session.Quota().Limits()
	server.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"session_id": live.ID,
		"deck":       s.deck(live),
		"limits":     limitsJSON{Swipes: limits.Swipes, SuperLikes: limits.SuperLikes, Rewinds: limits.Rewinds},
		"counters":   s.counters(r, live),
	})
}

// HandleCurrent implements GET /v1/discovery/sessions/{id}/current.
func (s *Service) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	live, ok := s.GetSession(mux.Vars(r)["id"])
	if !ok {
		server.WriteError(w, http.StatusNotFound, "unknown session")
		return
	}
	server.WriteJSON(w, http.StatusOK, s.deck(live))
}

// HandleSwipe implements POST /v1/discovery/sessions/{id}/swipes.
//
// The body carries either an explicit direction (button press) or a raw
// drag displacement that the engine classifies.
func (s *Service) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	live, ok := s.GetSession(mux.Vars(r)["id"])
	if !ok {
		server.WriteError(w, http.StatusNotFound, "unknown session")
		return
	}

	var req struct {
		Direction string   `json:"direction"`
		DX        *float64 `json:"dx"`
		DY        *float64 `json:"dy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.appCtx.Logger.Debug("Swipe called",
		"session", live.ID, "viewer", live.ViewerID, "direction", req.Direction)

	var (
		outcome engine.Outcome
		err     error
	)
	switch {
	case req.Direction != "":
		dir := engine.Direction(req.Direction)
		switch dir {
		case engine.DirectionPass, engine.DirectionLike, engine.DirectionSuperLike:
			outcome, err = live.Session.SwipeDirection(r.Context(), dir)
		default:
			server.WriteError(w, http.StatusBadRequest, "direction must be pass, like or super_like")
			return
		}
	case req.DX != nil || req.DY != nil:
		var g engine.Gesture
		if req.DX != nil {
			g.DX = *req.DX
		}
		if req.DY != nil {
			g.DY = *req.DY
		}
		outcome, err = live.Session.Swipe(r.Context(), g)
	default:
		server.WriteError(w, http.StatusBadRequest, "direction or displacement is required")
		return
	}

	if err != nil {
		server.WriteError(w, svcErr.Status(err), err.Error())
		return
	}

	server.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"outcome":   string(outcome.Kind),
		"candidate": toCandidateJSON(outcome.Candidate),
		"deck":      s.deck(live),
		"counters":  s.counters(r, live),
	})
}

// HandleRewind implements POST /v1/discovery/sessions/{id}/rewind.
func (s *Service) HandleRewind(w http.ResponseWriter, r *http.Request) {
	live, ok := s.GetSession(mux.Vars(r)["id"])
	if !ok {
		server.WriteError(w, http.StatusNotFound, "unknown session")
		return
	}

	cand, err := live.Session.Rewind(r.Context())
	if err != nil {
		server.WriteError(w, svcErr.Status(err), err.Error())
		return
	}

	server.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"candidate": toCandidateJSON(cand),
		"counters":  s.counters(r, live),
	})
}

// HandleSetFilters implements PUT /v1/discovery/sessions/{id}/filters.
func (s *Service) HandleSetFilters(w http.ResponseWriter, r *http.Request) {
	live, ok := s.GetSession(mux.Vars(r)["id"])
	if !ok {
		server.WriteError(w, http.StatusNotFound, "unknown session")
		return
	}

	var req criteriaJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := live.Session.SetFilters(toCriteria(req)); err != nil {
		server.WriteError(w, svcErr.Status(err), err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, s.deck(live))
}

// HandleRefresh implements POST /v1/discovery/sessions/{id}/refresh.
func (s *Service) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	live, ok := s.GetSession(mux.Vars(r)["id"])
	if !ok {
		server.WriteError(w, http.StatusNotFound, "unknown session")
		return
	}

	if err := live.Session.Refresh(r.Context()); err != nil {
		server.WriteError(w, svcErr.Status(err), err.Error())
		return
	}
	server.WriteJSON(w, http.StatusOK, s.deck(live))
}

// HandleEvents implements GET /v1/discovery/sessions/{id}/events. Buffered
// events are delivered once, oldest first.
func (s *Service) HandleEvents(w http.ResponseWriter, r *http.Request) {
	live, ok := s.GetSession(mux.Vars(r)["id"])
	if !ok {
		server.WriteError(w, http.StatusNotFound, "unknown session")
		return
	}

	type eventJSON struct {
		Kind        string `json:"kind"`
		CandidateID uint64 `json:"candidate_id,omitempty"`
		Action      string `json:"action,omitempty"`
	}
	events := live.Events.Drain()
	out := make([]eventJSON, 0, len(events))
	for _, ev := range events {
		e := eventJSON{Kind: string(ev.Kind), Action: string(ev.Action)}
		if ev.Candidate != nil {
			e.CandidateID = ev.Candidate.ID
		}
		out = append(out, e)
	}
	server.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": out})
}

// HandleEndSession implements DELETE /v1/discovery/sessions/{id}.
func (s *Service) HandleEndSession(w http.ResponseWriter, r *http.Request) {
	if !s.EndSession(mux.Vars(r)["id"]) {
		server.WriteError(w, http.StatusNotFound, "unknown session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
