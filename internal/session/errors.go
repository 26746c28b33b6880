package session

import (
	"errors"
	"fmt"

	"github.com/johnwards/leaddesk/internal/domain"
	"github.com/johnwards/leaddesk/internal/store"
)

// ValidationError is returned when a draft or form field is malformed.
// The modal stays open and the store is not called.
type ValidationError = domain.ValidationError

var (
	// ErrSaveInProgress is returned by Save or SubmitAdd while an earlier
	// request from the same modal is still waiting on the store.
	ErrSaveInProgress = errors.New("a save is already in progress")

	// ErrNoSelection is returned when an edit or save needs an open
	// detail modal and none is open.
	ErrNoSelection = errors.New("no lead is open for editing")

	// ErrNoAddForm is returned when a form edit or submit needs the
	// add-lead modal and it is not open.
	ErrNoAddForm = errors.New("add-lead form is not open")
)

// NotFoundError reports that the record a modal refers to no longer exists
// in the store. The controller returns to Idle.
type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// StoreUnavailableError reports that the store call failed for reasons
// outside the core. The draft is kept so the user can retry.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("%s: lead store unavailable: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// classify maps a store error onto the session error taxonomy.
func classify(op, resource, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id, Err: err}
	}
	return &StoreUnavailableError{Op: op, Err: err}
}
