package services

import (
	"context"
	"errors"
	"fmt"

	"eJournalAPI/internal/journal"
	"eJournalAPI/internal/store"
)

var (
	ErrSubjectExists   = errors.New("Subject already exists")
	ErrSubjectNotFound = errors.New("subject not found")
)

// ValidationError is returned when user input fails a check. Message is the
// text shown next to the form.
type ValidationError struct {
	Field   string               `json:"field,omitempty"`
	Message string               `json:"message"`
	Fields  []journal.FieldError `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DocumentCache is the data-access layer the services talk to. *store.Cache
// implements it.
type DocumentCache interface {
	Get(ctx context.Context, userID, collection, key string) (store.Document, error)
	GetAll(ctx context.Context, userID, collection string) (map[string]store.Document, error)
	Put(ctx context.Context, userID, collection, key string, partial store.Document) error
	Delete(ctx context.Context, userID, collection, key string) error
	Invalidate(userID string)
}

func isSubjectNotFound(err error) bool {
	return errors.Is(err, ErrSubjectNotFound)
}
