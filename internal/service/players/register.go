package players

import (
	"github.com/gorilla/mux"

	"github.com/oggyb/tennis-connect/internal/identity"
)

// Registrar ties the players service into the HTTP server
type Registrar struct {
	handler *Handler
}

// NewRegistrar creates a new Registrar for the player routes
func NewRegistrar(svc *Service, provider identity.Provider) *Registrar {
	return &Registrar{handler: NewHandler(svc, provider)}
}

// Register mounts the player routes on the router
func (r *Registrar) Register(router *mux.Router) {
	router.HandleFunc("/users/nearby", r.handler.Nearby).Methods("GET")
	router.HandleFunc("/users/matches", r.handler.Matches).Methods("GET")
	router.HandleFunc("/users/likes/count", r.handler.LikedCount).Methods("GET")
	router.HandleFunc("/users/like/{id}", r.handler.Liked).Methods("GET")
	router.HandleFunc("/users/like/{id}", r.handler.Like).Methods("POST")
	router.HandleFunc("/users/like/{id}", r.handler.Unlike).Methods("DELETE")
}
