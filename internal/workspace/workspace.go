// Package workspace dispatches a viewer's intents to the filter engine and
// the selection controller, and assembles the view the dashboard renders.
package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/johnwards/leaddesk/internal/domain"
	"github.com/johnwards/leaddesk/internal/events"
	"github.com/johnwards/leaddesk/internal/leads"
	"github.com/johnwards/leaddesk/internal/session"
)

// LeadStore is the part of the lead store a workspace needs.
type LeadStore interface {
	ListForAgent(ctx context.Context, agentID string) ([]domain.Lead, error)
	session.LeadWriter
}

// View is everything the dashboard renders for one viewer.
type View struct {
	AgentID       string                `json:"agentId"`
	Leads         []domain.Lead         `json:"leads"`
	Shown         int                   `json:"shown"`
	Total         int                   `json:"total"`
	Sources       []string              `json:"sources"`
	Criteria      domain.FilterCriteria `json:"criteria"`
	ActiveFilters []domain.ActiveFilter `json:"activeFilters"`
	Summary       leads.Summary         `json:"summary"`

	Mode           session.Mode   `json:"mode"`
	Selected       *domain.Lead   `json:"selected,omitempty"`
	Draft          *session.Draft `json:"draft,omitempty"`
	NotesOverLimit bool           `json:"notesOverLimit"`
	Form           *session.Form  `json:"form,omitempty"`
	Saving         bool           `json:"saving"`
}

// Workspace holds one viewing agent's criteria, lead set and selection.
// Intents are serialized; Save and SubmitAdd release the lock while the
// store call runs so a concurrent save can be rejected rather than queued.
type Workspace struct {
	mu        sync.Mutex
	agentID   string
	store     LeadStore
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time

	criteria   domain.FilterCriteria
	all        []domain.Lead
	revision   uint64
	projection leads.Projection
	ctrl       *session.Controller
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithClock overrides the clock used for the follow-ups-today count.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) { w.logger = l }
}

// New returns an empty workspace for agentID. Call Reload to load leads.
// A nil publisher drops events.
func New(agentID string, store LeadStore, publisher events.Publisher, opts ...Option) *Workspace {
	w := &Workspace{
		agentID:   agentID,
		store:     store,
		publisher: publisher,
		logger:    slog.Default(),
		now:       time.Now,
		criteria:  domain.DefaultCriteria(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("agent_id", agentID)
	w.ctrl = session.NewController(store, agentID, w.logger)
	return w
}

// AgentID returns the viewing agent.
func (w *Workspace) AgentID() string { return w.agentID }

// Reload fetches the agent's leads from the store. A selected lead that no
// longer exists closes the detail modal. A selected lead whose record
// changed is re-seeded from it; an unchanged one keeps its draft.
func (w *Workspace) Reload(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reload(ctx)
}

func (w *Workspace) reload(ctx context.Context) error {
	all, err := w.store.ListForAgent(ctx, w.agentID)
	if err != nil {
		return &session.StoreUnavailableError{Op: "list leads", Err: err}
	}
	w.all = all
	w.revision++

	if st, ok := w.ctrl.State().(session.Detail); ok {
		if fresh, found := w.find(st.Lead.ID); found {
			if w.ctrl.Reseed(fresh) {
				w.logger.Info("selected lead changed, draft re-seeded", "lead_id", fresh.ID)
			}
		} else {
			w.logger.Info("selected lead vanished on reload", "lead_id", st.Lead.ID)
			w.ctrl.Close()
		}
	}

	w.logger.Debug("lead set reloaded", "count", len(all), "revision", w.revision)
	return nil
}

func (w *Workspace) find(id string) (domain.Lead, bool) {
	for _, l := range w.all {
		if l.ID == id {
			return l, true
		}
	}
	return domain.Lead{}, false
}

// View derives the current view.
func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view()
}

func (w *Workspace) view() View {
	visible := w.project()
	summary := leads.Summarize(w.agentID, w.all, domain.DateOf(w.now()))

	v := View{
		AgentID:       w.agentID,
		Leads:         visible,
		Shown:         len(visible),
		Total:         summary.Total,
		Sources:       leads.Sources(w.all),
		Criteria:      w.criteria,
		ActiveFilters: w.criteria.Active(),
		Summary:       summary,
		Saving:        w.ctrl.Saving(),
	}

	st := w.ctrl.State()
	v.Mode = st.Mode()
	switch st := st.(type) {
	case session.Detail:
		v.Selected = &st.Lead
		v.Draft = &st.Draft
		v.NotesOverLimit = st.Draft.NotesOverLimit()
	case session.AddNew:
		v.Form = &st.Form
	}
	return v
}

func (w *Workspace) project() []domain.Lead {
	return w.projection.Project(w.agentID, w.revision, w.all, w.criteria)
}

// SetCriteria replaces all filter criteria at once.
func (w *Workspace) SetCriteria(c domain.FilterCriteria) View {
	return w.updateCriteria(func(cur *domain.FilterCriteria) { *cur = c })
}

// SetSearch sets the free-text search term.
func (w *Workspace) SetSearch(term string) View {
	return w.updateCriteria(func(c *domain.FilterCriteria) { c.Search = term })
}

// SetStatusFilter narrows the table to one status. The empty status shows
// all.
func (w *Workspace) SetStatusFilter(s domain.Status) View {
	return w.updateCriteria(func(c *domain.FilterCriteria) { c.Status = s })
}

// SetSourceFilter narrows the table to one source. The empty source shows
// all.
func (w *Workspace) SetSourceFilter(source string) View {
	return w.updateCriteria(func(c *domain.FilterCriteria) { c.Source = source })
}

// SetSort changes the table ordering.
func (w *Workspace) SetSort(key domain.SortKey) View {
	return w.updateCriteria(func(c *domain.FilterCriteria) { c.Sort = key })
}

func (w *Workspace) updateCriteria(fn func(*domain.FilterCriteria)) View {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.criteria)
	if w.criteria.Sort == "" {
		w.criteria.Sort = domain.SortByDate
	}
	w.logger.Debug("criteria changed", "search", w.criteria.Search, "status", w.criteria.Status,
		"source", w.criteria.Source, "sort", w.criteria.Sort)
	return w.view()
}

// Select opens the detail modal for a lead in the visible table.
func (w *Workspace) Select(id string) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.project()
	l, ok := w.projection.Contains(id)
	if !ok {
		return View{}, &session.NotFoundError{Resource: "lead", ID: id}
	}
	w.ctrl.Select(l)
	return w.view(), nil
}

// Close closes whichever modal is open.
func (w *Workspace) Close() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ctrl.Close()
	return w.view()
}

// OpenAdd opens the add-lead modal.
func (w *Workspace) OpenAdd() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ctrl.OpenAdd()
	return w.view()
}

// EditDraft applies fn to the open edit draft.
func (w *Workspace) EditDraft(fn func(*session.Draft)) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.ctrl.EditDraft(fn); err != nil {
		return View{}, err
	}
	return w.view(), nil
}

// EditForm applies fn to the open add-lead form.
func (w *Workspace) EditForm(fn func(*session.Form)) (View, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.ctrl.EditForm(fn); err != nil {
		return View{}, err
	}
	return w.view(), nil
}

// Save writes the open draft. On success a lead.updated event is published
// and the lead set is reloaded.
func (w *Workspace) Save(ctx context.Context) (*domain.Lead, View, error) {
	updated, applied, err := w.ctrl.Save(ctx)
	if err != nil {
		return nil, w.afterFailedWrite(ctx, err), err
	}

	v := w.afterWrite(ctx, events.Event{Kind: events.LeadUpdated, Lead: *updated, Notes: applied.NotesAppend})
	return updated, v, nil
}

// SubmitAdd creates a lead from the open form. On success a lead.created
// event is published and the lead set is reloaded.
func (w *Workspace) SubmitAdd(ctx context.Context) (*domain.Lead, View, error) {
	created, err := w.ctrl.SubmitAdd(ctx)
	if err != nil {
		return nil, w.afterFailedWrite(ctx, err), err
	}

	v := w.afterWrite(ctx, events.Event{Kind: events.LeadCreated, Lead: *created})
	return created, v, nil
}

// afterWrite runs once a write has been committed. Neither the event nor
// the reload can undo it, so their failures are only logged; a failed
// reload leaves the previous lead set in the view until the next one.
func (w *Workspace) afterWrite(ctx context.Context, e events.Event) View {
	w.publish(ctx, e)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.reload(ctx); err != nil {
		w.logger.Warn("reload after committed write failed", "kind", e.Kind, "lead_id", e.Lead.ID, "error", err)
	}
	return w.view()
}

// afterFailedWrite refreshes the lead set when the record turned out to be
// missing, so the table stops offering it.
func (w *Workspace) afterFailedWrite(ctx context.Context, err error) View {
	w.mu.Lock()
	defer w.mu.Unlock()

	var notFound *session.NotFoundError
	if errors.As(err, &notFound) {
		if rerr := w.reload(ctx); rerr != nil {
			w.logger.Warn("reload after missing record failed", "error", rerr)
		}
	}
	return w.view()
}

// publish delivers e. Delivery failures are logged; the write has already
// been committed.
func (w *Workspace) publish(ctx context.Context, e events.Event) {
	if w.publisher == nil {
		return
	}
	e.OccurredAt = w.now().UTC()
	if err := w.publisher.Publish(ctx, e); err != nil {
		w.logger.Error("publish lead event", "kind", e.Kind, "lead_id", e.Lead.ID, "error", err)
	}
}
