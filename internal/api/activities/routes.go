package activities

import (
	"net/http"

	"github.com/johnwards/leaddesk/internal/store"
)

// RegisterRoutes adds the activity timeline endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store) {
	h := &Handler{store: s}

	mux.HandleFunc("GET /api/v1/activities", h.List)
	mux.HandleFunc("POST /api/v1/activities", h.Create)
}
