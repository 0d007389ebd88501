package players

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/oggyb/tennis-connect/internal/discovery"
	"github.com/oggyb/tennis-connect/internal/identity"
	"github.com/oggyb/tennis-connect/internal/server"
)

// Handler exposes player discovery and like intents over HTTP.
type Handler struct {
	svc      *Service
	provider identity.Provider
}

func NewHandler(svc *Service, provider identity.Provider) *Handler {
	return &Handler{svc: svc, provider: provider}
}

// Nearby handles GET /users/nearby. Query parameters mirror the remote
// directory's: latitude, longitude, radius, skill_level, game_styles,
// preferred_days, is_newcomer, gender.
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	actor, err := h.provider.CurrentActor(r.Context())
	if err != nil {
		server.WriteError(w, err)
		return
	}

	q := queryFromRequest(r, actor)
	result, err := h.svc.Search(r.Context(), actor, q)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, result)
}

// Like handles POST /users/like/{id}.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	actor, err := h.provider.CurrentActor(r.Context())
	if err != nil {
		server.WriteError(w, err)
		return
	}

	req := LikeRequest{PlayerID: mux.Vars(r)["id"]}
	// optional display fields for the match notification
	if r.Body != nil {
		var body LikeRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			req.PlayerName = body.PlayerName
			req.AvatarRef = body.AvatarRef
		}
	}

	result, err := h.svc.Like(r.Context(), actor, req)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, result)
}

// Unlike handles DELETE /users/like/{id}.
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	actor, err := h.provider.CurrentActor(r.Context())
	if err != nil {
		server.WriteError(w, err)
		return
	}
	if err := h.svc.Unlike(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]bool{"success": true, "liked": false})
}

// Liked handles GET /users/like/{id}.
func (h *Handler) Liked(w http.ResponseWriter, r *http.Request) {
	actor, err := h.provider.CurrentActor(r.Context())
	if err != nil {
		server.WriteError(w, err)
		return
	}
	liked, err := h.svc.IsLiked(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

// LikedCount handles GET /users/likes/count.
func (h *Handler) LikedCount(w http.ResponseWriter, r *http.Request) {
	actor, err := h.provider.CurrentActor(r.Context())
	if err != nil {
		server.WriteError(w, err)
		return
	}
	count, err := h.svc.LikedCount(r.Context(), actor)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// Matches handles GET /users/matches.
func (h *Handler) Matches(w http.ResponseWriter, r *http.Request) {
	actor, err := h.provider.CurrentActor(r.Context())
	if err != nil {
		server.WriteError(w, err)
		return
	}
	records, err := h.svc.Matches(r.Context(), actor)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]interface{}{"matches": records})
}

// queryFromRequest builds a discovery query from URL parameters,
// defaulting the origin to the actor's own location.
func queryFromRequest(r *http.Request, actor *identity.Actor) discovery.Query {
	params := r.URL.Query()

	q := discovery.Query{
		Origin: actor.Location,
		Radius: 10,
	}
	if lat, err := strconv.ParseFloat(params.Get("latitude"), 64); err == nil {
		q.Origin.Latitude = lat
	}
	if lng, err := strconv.ParseFloat(params.Get("longitude"), 64); err == nil {
		q.Origin.Longitude = lng
	}
	if radius, err := strconv.ParseFloat(params.Get("radius"), 64); err == nil && radius > 0 {
		q.Radius = radius
	}

	if skill, err := strconv.ParseFloat(params.Get("skill_level"), 64); err == nil {
		q.Filters.SkillLevel = skill
	}
	if styles := params.Get("game_styles"); styles != "" {
		q.Filters.GameStyles = strings.Split(styles, ",")
	}
	if days := params.Get("preferred_days"); days != "" {
		q.Filters.PreferredDays = strings.Split(days, ",")
	}
	q.Filters.Gender = params.Get("gender")
	q.Filters.NewcomerOnly = params.Get("is_newcomer") == "true"

	return q
}
