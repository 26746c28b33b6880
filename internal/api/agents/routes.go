package agents

import (
	"net/http"

	"github.com/johnwards/leaddesk/internal/store"
)

// RegisterRoutes adds all agent endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, s *store.Store) {
	h := &Handler{store: s}

	mux.HandleFunc("GET /api/v1/agents", h.List)
	mux.HandleFunc("POST /api/v1/agents", h.Create)
	mux.HandleFunc("GET /api/v1/agents/{agentId}", h.Get)
}
