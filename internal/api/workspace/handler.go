package workspace

import (
	"net/http"

	"github.com/johnwards/leaddesk/internal/api"
	"github.com/johnwards/leaddesk/internal/domain"
	"github.com/johnwards/leaddesk/internal/session"
	"github.com/johnwards/leaddesk/internal/workspace"
)

// Handler translates HTTP requests into workspace intents. Every response
// carries the resulting view.
type Handler struct {
	ws *workspace.Workspace
}

// writeResponse is returned by save and submit.
type writeResponse struct {
	Lead *domain.Lead   `json:"lead"`
	View workspace.View `json:"view"`
}

// View handles GET /api/v1/workspace.
func (h *Handler) View(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusOK, h.ws.View())
}

type criteriaRequest struct {
	Search string `json:"search"`
	Status string `json:"status"`
	Source string `json:"source"`
	Sort   string `json:"sort"`
}

// SetCriteria handles PUT /api/v1/workspace/criteria.
func (h *Handler) SetCriteria(w http.ResponseWriter, r *http.Request) {
	var body criteriaRequest
	if !api.DecodeJSON(w, r, &body) {
		return
	}

	c, err := domain.ParseCriteria(body.Search, body.Status, body.Source, body.Sort)
	if err != nil {
		api.WriteSessionError(w, api.CorrelationID(r.Context()), err)
		return
	}

	api.WriteJSON(w, http.StatusOK, h.ws.SetCriteria(c))
}

type selectRequest struct {
	LeadID string `json:"leadId"`
}

// Select handles POST /api/v1/workspace/select.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var body selectRequest
	if !api.DecodeJSON(w, r, &body) {
		return
	}

	v, err := h.ws.Select(body.LeadID)
	if err != nil {
		api.WriteSessionError(w, api.CorrelationID(r.Context()), err)
		return
	}
	api.WriteJSON(w, http.StatusOK, v)
}

// Close handles POST /api/v1/workspace/close.
func (h *Handler) Close(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusOK, h.ws.Close())
}

// OpenAdd handles POST /api/v1/workspace/add.
func (h *Handler) OpenAdd(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusOK, h.ws.OpenAdd())
}

type draftRequest struct {
	Status       *domain.Status `json:"status"`
	Notes        *string        `json:"notes"`
	NextFollowUp *string        `json:"nextFollowUp"`
}

// EditDraft handles PATCH /api/v1/workspace/draft. Absent fields are left
// as they are.
func (h *Handler) EditDraft(w http.ResponseWriter, r *http.Request) {
	var body draftRequest
	if !api.DecodeJSON(w, r, &body) {
		return
	}

	v, err := h.ws.EditDraft(func(d *session.Draft) {
		setIf(&d.Status, body.Status)
		setIf(&d.Notes, body.Notes)
		setIf(&d.FollowUp, body.NextFollowUp)
	})
	if err != nil {
		api.WriteSessionError(w, api.CorrelationID(r.Context()), err)
		return
	}
	api.WriteJSON(w, http.StatusOK, v)
}

type formRequest struct {
	Name         *string        `json:"name"`
	Company      *string        `json:"company"`
	Email        *string        `json:"email"`
	Phone        *string        `json:"phone"`
	Source       *string        `json:"source"`
	Status       *domain.Status `json:"status"`
	NextFollowUp *string        `json:"nextFollowUp"`
}

// EditForm handles PATCH /api/v1/workspace/form. Absent fields are left as
// they are.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	var body formRequest
	if !api.DecodeJSON(w, r, &body) {
		return
	}

	v, err := h.ws.EditForm(func(f *session.Form) {
		setIf(&f.Name, body.Name)
		setIf(&f.Company, body.Company)
		setIf(&f.Email, body.Email)
		setIf(&f.Phone, body.Phone)
		setIf(&f.Source, body.Source)
		setIf(&f.Status, body.Status)
		setIf(&f.FollowUp, body.NextFollowUp)
	})
	if err != nil {
		api.WriteSessionError(w, api.CorrelationID(r.Context()), err)
		return
	}
	api.WriteJSON(w, http.StatusOK, v)
}

// Save handles POST /api/v1/workspace/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	lead, v, err := h.ws.Save(r.Context())
	api.RecordLeadWrite("save", err)
	if err != nil {
		api.WriteSessionError(w, api.CorrelationID(r.Context()), err)
		return
	}
	api.WriteJSON(w, http.StatusOK, writeResponse{Lead: lead, View: v})
}

// Submit handles POST /api/v1/workspace/submit.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	lead, v, err := h.ws.SubmitAdd(r.Context())
	api.RecordLeadWrite("submit", err)
	if err != nil {
		api.WriteSessionError(w, api.CorrelationID(r.Context()), err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, writeResponse{Lead: lead, View: v})
}

// Reload handles POST /api/v1/workspace/reload.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.ws.Reload(r.Context()); err != nil {
		api.WriteSessionError(w, api.CorrelationID(r.Context()), err)
		return
	}
	api.WriteJSON(w, http.StatusOK, h.ws.View())
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
