package notifications

import (
	"github.com/gorilla/mux"

	"github.com/oggyb/tennis-connect/internal/identity"
)

// Registrar ties the notification center into the HTTP server
type Registrar struct {
	handler *Handler
}

// NewRegistrar creates a new Registrar for the notification routes
func NewRegistrar(svc *Service, provider identity.Provider) *Registrar {
	return &Registrar{handler: NewHandler(svc, provider)}
}

// Register mounts the notification routes on the router
func (r *Registrar) Register(router *mux.Router) {
	router.HandleFunc("/notifications", r.handler.List).Methods("GET")
	router.HandleFunc("/notifications", r.handler.Add).Methods("POST")
	router.HandleFunc("/notifications", r.handler.ClearAll).Methods("DELETE")
	router.HandleFunc("/notifications/read-all", r.handler.MarkAllAsRead).Methods("POST")
	router.HandleFunc("/notifications/{id}/read", r.handler.MarkAsRead).Methods("POST")
	router.HandleFunc("/notifications/{id}/respond", r.handler.Respond).Methods("POST")
	router.HandleFunc("/notifications/{id}", r.handler.Remove).Methods("DELETE")
}
