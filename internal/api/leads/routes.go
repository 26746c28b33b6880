package leads

import (
	"context"
	"net/http"
	"time"

	"github.com/johnwards/leaddesk/internal/events"
	"github.com/johnwards/leaddesk/internal/store"
)

// Config wires the lead endpoints' collaborators.
type Config struct {
	Store     *store.Store
	Publisher events.Publisher
	// Changed is called after a lead was written so live views can reload.
	Changed func(ctx context.Context)
	// Now defaults to time.Now.
	Now func() time.Time
}

// RegisterRoutes adds all lead endpoints to the given mux.
func RegisterRoutes(mux *http.ServeMux, cfg Config) {
	h := &Handler{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		changed:   cfg.Changed,
		now:       cfg.Now,
	}
	if h.now == nil {
		h.now = time.Now
	}

	mux.HandleFunc("GET /api/v1/agents/{agentId}/leads", h.List)
	mux.HandleFunc("POST /api/v1/agents/{agentId}/leads", h.Create)
	mux.HandleFunc("GET /api/v1/agents/{agentId}/sources", h.Sources)
	mux.HandleFunc("GET /api/v1/agents/{agentId}/summary", h.Summary)
	mux.HandleFunc("GET /api/v1/leads/{leadId}", h.Get)
	mux.HandleFunc("PATCH /api/v1/leads/{leadId}", h.Update)
}
