package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates every failed field check of one record. Fields
// are reported in declaration order; within a field only the first failed
// check is reported.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(parts, "; ")
}

// dateInBounds reports whether t is no later than tomorrow 23:59:59.999
// local time (absorbing timezone skew) and no earlier than 100 years before
// now.
func dateInBounds(t, now time.Time) bool {
	tomorrowEnd := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999_000_000, now.Location()).AddDate(0, 0, 1)
	earliest := now.AddDate(-100, 0, 0)
	return !t.After(tomorrowEnd) && !t.Before(earliest)
}

// hasCentPrecision reports whether v has at most two decimal places.
func hasCentPrecision(v float64) bool {
	return math.Round(v*100)/100 == v
}

// checkName validates a required 1-100 character string field and appends
// any failure to errs.
func checkName(errs ValidationErrors, field, value string) ValidationErrors {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return append(errs, FieldError{Field: field, Message: field + " is required"})
	}
	if len(trimmed) > 100 {
		return append(errs, FieldError{Field: field, Message: field + " must be between 1 and 100 characters"})
	}
	return errs
}
