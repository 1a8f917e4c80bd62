package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"private-scribe-server/internal/repository"
)

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrAccessDenied        = errors.New("access denied")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoteNotFound        = errors.New("note not found")
	ErrTemplateNotFound    = errors.New("template not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrTranscriptionFailed = errors.New("transcription failed")
	ErrFormattingFailed    = errors.New("formatting failed")
)

// ValidationError carries user-correctable problems keyed by JSON field path.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func notFoundAs(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}

// timestampPrecision is the coarsest datetime precision among the supported
// stores (MySQL datetime(3)).
const timestampPrecision = time.Millisecond

// nextUpdate returns a timestamp strictly after prev at store precision, so
// updatedAt never repeats even when the clock has not moved.
func nextUpdate(prev time.Time) time.Time {
	prev = prev.Truncate(timestampPrecision)
	now := time.Now().UTC().Truncate(timestampPrecision)
	if !now.After(prev) {
		return prev.Add(timestampPrecision)
	}
	return now
}
