package activities

import (
	"errors"
	"net/http"
	"strings"

	"github.com/johnwards/leaddesk/internal/api"
	"github.com/johnwards/leaddesk/internal/domain"
	"github.com/johnwards/leaddesk/internal/session"
	"github.com/johnwards/leaddesk/internal/store"
)

// DefaultLimit is the number of entries the dashboard timeline shows.
const DefaultLimit = 6

const maxLimit = 100

// Handler handles activity HTTP requests.
type Handler struct {
	store *store.Store
}

// List handles GET /api/v1/activities. Entries are newest first; leadId
// narrows the timeline to one lead.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())
	limit := api.QueryLimit(r, DefaultLimit, maxLimit)

	var (
		activities []domain.Activity
		err        error
	)
	if leadID := r.URL.Query().Get("leadId"); leadID != "" {
		activities, err = h.store.Activities.ListForLead(r.Context(), leadID, limit)
	} else {
		activities, err = h.store.Activities.ListRecent(r.Context(), limit)
	}
	if err != nil {
		api.WriteSessionError(w, corrID, &session.StoreUnavailableError{Op: "list activities", Err: err})
		return
	}

	api.WriteJSON(w, http.StatusOK, api.Collection(activities))
}

type createRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	LeadID  string `json:"leadId"`
}

// Create handles POST /api/v1/activities. It logs a call, email, meeting or
// note, optionally against a lead.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())

	var req createRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	typ, err := domain.ParseActivityType(req.Type)
	if err != nil {
		api.WriteSessionError(w, corrID, &domain.ValidationError{Field: "type", Message: "must be one of call, email, meeting, note"})
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		api.WriteSessionError(w, corrID, &domain.ValidationError{Field: "message", Message: "is required"})
		return
	}

	created, err := h.store.Activities.Append(r.Context(), domain.Activity{Type: typ, Message: msg, LeadID: req.LeadID})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteSessionError(w, corrID, &session.NotFoundError{Resource: "lead", ID: req.LeadID, Err: err})
			return
		}
		api.WriteSessionError(w, corrID, &session.StoreUnavailableError{Op: "append activity", Err: err})
		return
	}

	api.WriteJSON(w, http.StatusCreated, created)
}
