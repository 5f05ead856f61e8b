package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound signals that the addressed record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrStorage marks file-storage failures so callers can tell them apart
// from database failures.
var ErrStorage = errors.New("storage failure")

// ValidationErrors is a field -> messages set returned before any write
// is attempted. It never reaches the database.
type ValidationErrors map[string][]string

func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(v[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidation unwraps a ValidationErrors from err, if present.
func AsValidation(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
