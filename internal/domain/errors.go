package domain

import "fmt"

// ValidationError reports a malformed field in a draft, form or query.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
