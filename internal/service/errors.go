package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidArgument is returned when a command misses a required field.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidYear is returned when a tree cannot be filled from the previous year.
	ErrInvalidYear = errors.New("invalid academic year")
)

// BulkUpdateLinkError gathers the failures of a bulk link update, keyed by link.
type BulkUpdateLinkError struct {
	Errors map[string]error
}

func (e *BulkUpdateLinkError) Error() string {
	keys := make([]string, 0, len(e.Errors))
	for key := range e.Errors {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	messages := make([]string, 0, len(keys))
	for _, key := range keys {
		messages = append(messages, key+": "+e.Errors[key].Error())
	}
	return strings.Join(messages, "; ")
}

func (e *BulkUpdateLinkError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, err := range e.Errors {
		errs = append(errs, err)
	}
	return errs
}
