package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/oggyb/tennis-connect/internal/config"
	svcErr "github.com/oggyb/tennis-connect/internal/errors"
)

// StartHTTPServer boots the presentation-boundary HTTP server and
// registers all provided services.
func StartHTTPServer(cfg *config.Config, registrars ...Registrar) error {
	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)

	router := mux.NewRouter()

	// health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods("GET")

	// register all services
	for _, reg := range registrars {
		reg.Register(router)
	}

	// the browser client runs on a different origin
	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(router)

	return http.ListenAndServe(addr, handler)
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError converts an engine error into a JSON error response using
// the central status mapping.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, svcErr.HTTPStatus(err), map[string]string{"error": err.Error()})
}
