package notifications

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/oggyb/tennis-connect/internal/db"
	svcErr "github.com/oggyb/tennis-connect/internal/errors"
	"github.com/oggyb/tennis-connect/internal/identity"
	"github.com/oggyb/tennis-connect/internal/server"
)

// Handler exposes the notification center over HTTP. Presentation
// observes {notifications, unread_count} through List and never
// computes the unread count independently.
type Handler struct {
	svc      *Service
	provider identity.Provider
}

func NewHandler(svc *Service, provider identity.Provider) *Handler {
	return &Handler{svc: svc, provider: provider}
}

func (h *Handler) actorID(r *http.Request) (string, error) {
	actor, err := h.provider.CurrentActor(r.Context())
	if err != nil {
		return "", err
	}
	return actor.ID, nil
}

// List handles GET /notifications.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actorID, err := h.actorID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	var token *string
	if t := r.URL.Query().Get("page_token"); t != "" {
		token = &t
	}
	limit := 20
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	list, nextToken, err := h.svc.List(r.Context(), actorID, token, limit)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	unread, err := h.svc.UnreadCount(r.Context(), actorID)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	if list == nil {
		list = []db.Notification{}
	}
	resp := map[string]interface{}{
		"notifications": list,
		"unread_count":  unread,
	}
	if nextToken != nil {
		resp["next_page_token"] = *nextToken
	}
	server.WriteJSON(w, http.StatusOK, resp)
}

// Add handles POST /notifications, the single producer entry point used
// by the booking and bulletin flows.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	actorID, err := h.actorID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		server.WriteError(w, svcErr.InvalidArgument("invalid notification payload"))
		return
	}

	n, err := h.svc.Add(r.Context(), actorID, payload)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusCreated, n)
}

// MarkAsRead handles POST /notifications/{id}/read.
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	actorID, err := h.actorID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	if err := h.svc.MarkAsRead(r.Context(), actorID, mux.Vars(r)["id"]); err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// MarkAllAsRead handles POST /notifications/read-all.
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	actorID, err := h.actorID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	if err := h.svc.MarkAllAsRead(r.Context(), actorID); err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Respond handles POST /notifications/{id}/respond.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	actorID, err := h.actorID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}

	var body struct {
		Accept bool `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		server.WriteError(w, svcErr.InvalidArgument("invalid response payload"))
		return
	}

	n, err := h.svc.Respond(r.Context(), actorID, mux.Vars(r)["id"], body.Accept)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, n)
}

// Remove handles DELETE /notifications/{id}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	actorID, err := h.actorID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	if err := h.svc.Remove(r.Context(), actorID, mux.Vars(r)["id"]); err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ClearAll handles DELETE /notifications.
func (h *Handler) ClearAll(w http.ResponseWriter, r *http.Request) {
	actorID, err := h.actorID(r)
	if err != nil {
		server.WriteError(w, err)
		return
	}
	if err := h.svc.ClearAll(r.Context(), actorID); err != nil {
		server.WriteError(w, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
