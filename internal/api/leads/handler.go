package leads

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/johnwards/leaddesk/internal/api"
	"github.com/johnwards/leaddesk/internal/domain"
	"github.com/johnwards/leaddesk/internal/events"
	leadtable "github.com/johnwards/leaddesk/internal/leads"
	"github.com/johnwards/leaddesk/internal/session"
	"github.com/johnwards/leaddesk/internal/store"
)

// Handler handles lead HTTP requests.
type Handler struct {
	store     *store.Store
	publisher events.Publisher
	changed   func(ctx context.Context)
	now       func() time.Time
}

// tableResponse is the filtered lead table.
type tableResponse struct {
	Results       []domain.Lead         `json:"results"`
	Shown         int                   `json:"shown"`
	Total         int                   `json:"total"`
	Criteria      domain.FilterCriteria `json:"criteria"`
	ActiveFilters []domain.ActiveFilter `json:"activeFilters"`
}

// List handles GET /api/v1/agents/{agentId}/leads.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	corrID := api.CorrelationID(r.Context())
	q := r.URL.Query()

	c, err := domain.ParseCriteria(q.Get("search"), q.Get("status"), q.Get("source"), q.Get("sort"))
	if err != nil {
		api.WriteSessionError(w, corrID, err)
		return
	}

	agentID, all, ok := h.agentLeads(w, r)
	if !ok {
		return
	}

	visible := leadtable.Filter(agentID, all, c)
	api.WriteJSON(w, http.StatusOK, tableResponse{
		Results:       visible,
		Shown:         len(visible),
		Total:         len(all),
		Criteria:      c,
		ActiveFilters: c.Active(),
	})
}

// Sources handles GET /api/v1/agents/{agentId}/sources.
func (h *Handler) Sources(w http.ResponseWriter, r *http.Request) {
	_, all, ok := h.agentLeads(w, r)
	if !ok {
		return
	}
	api.WriteJSON(w, http.StatusOK, api.Collection(leadtable.Sources(all)))
}

// Summary handles GET /api/v1/agents/{agentId}/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	agentID, all, ok := h.agentLeads(w, r)
	if !ok {
		return
	}
	api.WriteJSON(w, http.StatusOK, leadtable.Summarize(agentID, all, domain.DateOf(h.now())))
}

// agentLeads loads the path agent's leads, writing a 404 for an unknown
// agent.
func (h *Handler) agentLeads(w http.ResponseWriter, r *http.Request) (string, []domain.Lead, bool) {
	agentID := r.PathValue("agentId")
	corrID := api.CorrelationID(r.Context())

	if _, err := h.store.Agents.Get(r.Context(), agentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.NewNotFoundError("Agent not found", corrID))
			return "", nil, false
		}
		api.WriteSessionError(w, corrID, &session.StoreUnavailableError{Op: "get agent", Err: err})
		return "", nil, false
	}

	all, err := h.store.Leads.ListForAgent(r.Context(), agentID)
	if err != nil {
		api.WriteSessionError(w, corrID, &session.StoreUnavailableError{Op: "list leads", Err: err})
		return "", nil, false
	}
	return agentID, all, true
}

// Get handles GET /api/v1/leads/{leadId}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	leadID := r.PathValue("leadId")
	corrID := api.CorrelationID(r.Context())

	lead, err := h.store.Leads.Get(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.NewNotFoundError("Lead not found", corrID))
			return
		}
		api.WriteSessionError(w, corrID, &session.StoreUnavailableError{Op: "get lead", Err: err})
		return
	}

	api.WriteJSON(w, http.StatusOK, lead)
}

// updateRequest overlays the lead's current values. An absent field keeps
// the current value; an empty nextFollowUp clears the follow-up.
type updateRequest struct {
	Status       *domain.Status `json:"status"`
	Notes        string         `json:"notes"`
	NextFollowUp *string        `json:"nextFollowUp"`
}

// Update handles PATCH /api/v1/leads/{leadId}. It saves the same way the
// detail modal does: status and follow-up are overwritten, notes become a
// note activity.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	leadID := r.PathValue("leadId")
	corrID := api.CorrelationID(r.Context())

	var body updateRequest
	if !api.DecodeJSON(w, r, &body) {
		return
	}

	current, err := h.store.Leads.Get(r.Context(), leadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.WriteError(w, http.StatusNotFound, api.NewNotFoundError("Lead not found", corrID))
			return
		}
		api.WriteSessionError(w, corrID, &session.StoreUnavailableError{Op: "get lead", Err: err})
		return
	}

	draft := session.NewDraft(*current)
	if body.Status != nil {
		draft.Status = *body.Status
	}
	if body.NextFollowUp != nil {
		draft.FollowUp = *body.NextFollowUp
	}
	draft.Notes = body.Notes

	updated, err := session.Save(r.Context(), h.store.Leads, *current, draft)
	api.RecordLeadWrite("update", err)
	if err != nil {
		api.WriteSessionError(w, corrID, err)
		return
	}

	h.written(r.Context(), events.Event{Kind: events.LeadUpdated, Lead: *updated, Notes: body.Notes})
	api.WriteJSON(w, http.StatusOK, updated)
}

// Create handles POST /api/v1/agents/{agentId}/leads.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("agentId")
	corrID := api.CorrelationID(r.Context())

	var form session.Form
	if !api.DecodeJSON(w, r, &form) {
		return
	}

	created, err := session.Submit(r.Context(), h.store.Leads, agentID, form)
	api.RecordLeadWrite("create", err)
	if err != nil {
		api.WriteSessionError(w, corrID, err)
		return
	}

	h.written(r.Context(), events.Event{Kind: events.LeadCreated, Lead: *created})
	api.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) written(ctx context.Context, e events.Event) {
	if h.changed != nil {
		h.changed(ctx)
	}
	if h.publisher == nil {
		return
	}
	e.OccurredAt = h.now().UTC()
	if err := h.publisher.Publish(ctx, e); err != nil {
		slog.Error("publish lead event", "kind", e.Kind, "lead_id", e.Lead.ID, "error", err)
	}
}
