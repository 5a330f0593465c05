package models

import (
	"errors"
	"fmt"
)

var (
	// ErrAdminNotFound is returned when an admin id is not in the store.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrAccessDenied is returned when a request names data outside the admin's scope.
	ErrAccessDenied = errors.New("access denied")
)

// DataLoadError reports a missing, malformed or invalid record source.
type DataLoadError struct {
	Source string
	Index  int // -1 when the error is not tied to one entry
	Field  string
	Err    error
}

func (e *DataLoadError) Error() string {
	switch {
	case e.Index >= 0 && e.Field != "":
		return fmt.Sprintf("load %s: entry %d: field %s: %v", e.Source, e.Index, e.Field, e.Err)
	case e.Index >= 0:
		return fmt.Sprintf("load %s: entry %d: %v", e.Source, e.Index, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// QueryParseError reports that a question could not be turned into a QuerySpec.
type QueryParseError struct {
	Question string
	Err      error
}

func (e *QueryParseError) Error() string {
	return fmt.Sprintf("could not interpret %q: %v", e.Question, e.Err)
}

func (e *QueryParseError) Unwrap() error { return e.Err }

// UserMessage is what the front ends show for a parse failure.
func (e *QueryParseError) UserMessage() string {
	return "Could not understand the question, please rephrase your question"
}
