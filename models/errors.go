package models

import "fmt"

// ValidationError reports a feed row whose field is missing or malformed.
type ValidationError struct {
	Row    int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d: field %q: %s", e.Row, e.Field, e.Reason)
}
