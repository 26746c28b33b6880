// Package session tracks which lead is open for editing and which modal is
// showing, and writes edit drafts and new-lead forms back to the store.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/johnwards/leaddesk/internal/domain"
)

// State is the controller's configuration: exactly one of Idle, Detail or
// AddNew. At most one modal is ever open.
type State interface {
	Mode() Mode
}

// Mode names a State variant.
type Mode string

// Modes.
const (
	ModeIdle   Mode = "idle"
	ModeDetail Mode = "detail"
	ModeAddNew Mode = "add"
)

// Idle means no lead is selected and no modal is open.
type Idle struct{}

// Detail means Lead is selected and its detail modal is open with Draft.
type Detail struct {
	Lead  domain.Lead
	Draft Draft
}

// AddNew means the add-lead modal is open with Form.
type AddNew struct {
	Form Form
}

// Mode implements State.
func (Idle) Mode() Mode { return ModeIdle }

// Mode implements State.
func (Detail) Mode() Mode { return ModeDetail }

// Mode implements State.
func (AddNew) Mode() Mode { return ModeAddNew }

// Controller is the selection state machine for one viewer.
//
// Every transition replaces the whole State value, so the detail and add
// modals can never be open together. Only one store write may be in flight
// per open modal; a second Save or SubmitAdd from the same modal returns
// ErrSaveInProgress.
type Controller struct {
	mu      sync.Mutex
	leads   LeadWriter
	agentID string
	logger  *slog.Logger

	state State
	// gen changes on every transition so a store call that finishes after
	// the modal was closed or replaced does not touch the new state.
	gen uint64
	// savingGen is the gen of the modal whose write is in flight. A write
	// left behind by a replaced modal does not block the new one.
	saving    bool
	savingGen uint64
}

// NewController returns an Idle controller that creates leads for agentID.
func NewController(leads LeadWriter, agentID string, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		leads:   leads,
		agentID: agentID,
		logger:  logger,
		state:   Idle{},
	}
}

// State returns the current configuration.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Saving reports whether a store write is in flight for the open modal.
func (c *Controller) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.savingCurrent()
}

// savingCurrent must hold c.mu.
func (c *Controller) savingCurrent() bool {
	return c.saving && c.savingGen == c.gen
}

// Select opens the detail modal for l with a freshly seeded draft. Any
// other open modal is closed first.
func (c *Controller) Select(l domain.Lead) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transition(Detail{Lead: l, Draft: NewDraft(l)})
}

// Reseed replaces the selected lead with a fresher copy of the same record
// and re-seeds the draft from it. It does nothing unless l is the lead
// currently open and differs from the copy the draft was seeded from, so
// an unrelated reload keeps whatever the user has typed. It reports
// whether the draft was re-seeded.
func (c *Controller) Reseed(l domain.Lead) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.state.(Detail)
	if !ok || st.Lead.ID != l.ID || st.Lead.Equal(l) {
		return false
	}
	c.state = Detail{Lead: l, Draft: NewDraft(l)}
	return true
}

// Close closes whichever modal is open and discards its draft or form.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transition(Idle{})
}

// OpenAdd opens the add-lead modal with a blank form.
func (c *Controller) OpenAdd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transition(AddNew{Form: Form{Status: domain.StatusNew}})
}

// EditDraft applies fn to the open draft.
func (c *Controller) EditDraft(fn func(*Draft)) (Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.state.(Detail)
	if !ok {
		return Draft{}, ErrNoSelection
	}
	fn(&st.Draft)
	c.state = st
	return st.Draft, nil
}

// EditForm applies fn to the open add-lead form.
func (c *Controller) EditForm(fn func(*Form)) (Form, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.state.(AddNew)
	if !ok {
		return Form{}, ErrNoAddForm
	}
	fn(&st.Form)
	c.state = st
	return st.Form, nil
}

// Save writes the open draft to the store and returns the stored lead with
// the update that was applied. On success the controller returns to Idle.
// A ValidationError or StoreUnavailableError leaves the modal open with its
// draft; a NotFoundError closes it.
func (c *Controller) Save(ctx context.Context) (*domain.Lead, domain.LeadUpdate, error) {
	c.mu.Lock()
	st, ok := c.state.(Detail)
	if !ok {
		c.mu.Unlock()
		return nil, domain.LeadUpdate{}, ErrNoSelection
	}
	if c.savingCurrent() {
		c.mu.Unlock()
		return nil, domain.LeadUpdate{}, ErrSaveInProgress
	}
	u, err := st.Draft.Validate()
	if err != nil {
		c.mu.Unlock()
		return nil, domain.LeadUpdate{}, err
	}
	gen := c.begin()
	c.mu.Unlock()

	updated, err := update(ctx, c.leads, st.Lead.ID, u)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finish(gen)
	c.settle(gen, err, "save")
	if err != nil {
		return nil, domain.LeadUpdate{}, err
	}
	return updated, u, nil
}

// SubmitAdd creates a lead from the open form. The error policy matches
// Save.
func (c *Controller) SubmitAdd(ctx context.Context) (*domain.Lead, error) {
	c.mu.Lock()
	st, ok := c.state.(AddNew)
	if !ok {
		c.mu.Unlock()
		return nil, ErrNoAddForm
	}
	if c.savingCurrent() {
		c.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	gen := c.begin()
	c.mu.Unlock()

	created, err := Submit(ctx, c.leads, c.agentID, st.Form)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finish(gen)
	c.settle(gen, err, "submit")
	return created, err
}

// begin marks a write in flight for the open modal. Must hold c.mu.
func (c *Controller) begin() uint64 {
	c.saving = true
	c.savingGen = c.gen
	return c.gen
}

// finish clears the in-flight mark unless a newer modal's write owns it.
// Must hold c.mu.
func (c *Controller) finish(gen uint64) {
	if c.savingGen == gen {
		c.saving = false
	}
}

// settle moves to Idle after a confirmed write or a NotFoundError, unless
// the modal changed while the store call was running. Must hold c.mu.
func (c *Controller) settle(gen uint64, err error, op string) {
	if gen != c.gen {
		c.logger.Debug("store call finished after modal changed", "op", op, "error", err)
		return
	}

	var notFound *NotFoundError
	switch {
	case err == nil:
		c.transition(Idle{})
	case errors.As(err, &notFound):
		c.logger.Warn("record vanished, closing modal", "op", op, "resource", notFound.Resource, "id", notFound.ID)
		c.transition(Idle{})
	default:
		c.logger.Debug("modal kept open", "op", op, "error", err)
	}
}

// transition replaces the state. Must hold c.mu.
func (c *Controller) transition(next State) {
	c.logger.Debug("selection transition", "from", c.state.Mode(), "to", next.Mode())
	c.state = next
	c.gen++
}
