package agents

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/johnwards/leaddesk/internal/api"
	"github.com/johnwards/leaddesk/internal/domain"
	"github.com/johnwards/leaddesk/internal/store"
)

// Handler handles agent HTTP requests.
type Handler struct {
	store *store.Store
}

type agentResponse struct {
	*store.Agent
	Name string `json:"name"`
}

// List handles GET /api/v1/agents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	limit := api.QueryLimit(r, 100, 500)
	after := r.URL.Query().Get("after")
	archived := r.URL.Query().Get("archived") == "true"

	agents, hasMore, nextAfter, err := h.store.Agents.List(r.Context(), limit, after, archived)
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}

	results := make([]any, len(agents))
	for i, a := range agents {
		results[i] = agentResponse{Agent: a, Name: a.Name()}
	}

	resp := api.CollectionResponse{Results: results}
	if hasMore {
		resp.Paging = &api.Paging{
			Next: &api.PagingNext{After: nextAfter},
		}
	}

	api.WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/agents/{agentId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("agentId")
	corrID := api.CorrelationID(r.Context())

	agent, err := h.store.Agents.Get(r.Context(), agentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.NewNotFoundError("Agent not found", corrID))
			return
		}
		api.WriteError(w, http.StatusInternalServerError, api.NewInternalError(err.Error(), corrID))
		return
	}

	api.WriteJSON(w, http.StatusOK, agentResponse{Agent: agent, Name: agent.Name()})
}

type createRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Create handles POST /api/v1/agents. A duplicate email is a conflict.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	var req createRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	email := strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		api.WriteSessionError(w, corrID, &domain.ValidationError{Field: "email", Message: "is invalid"})
		return
	}
	first := strings.TrimSpace(req.FirstName)
	if first == "" {
		api.WriteSessionError(w, corrID, &domain.ValidationError{Field: "firstName", Message: "is required"})
		return
	}

	agent, err := h.store.Agents.Create(r.Context(), email, first, strings.TrimSpace(req.LastName))
	if err != nil {
		api.WriteSessionError(w, corrID, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, agentResponse{Agent: agent, Name: agent.Name()})
}
