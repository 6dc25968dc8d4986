package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"teamtasks/internal/apperr"
	"teamtasks/internal/docstore"
)

// newID returns a time-ordered id so that listings sorted by id follow
// creation order.
func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return id.String(), nil
}

// mapErr turns store sentinels into application errors.
func mapErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, docstore.ErrNotFound):
		return apperr.NotFound("%s not found", entity)
	case errors.Is(err, docstore.ErrConflict):
		return apperr.StaleState("%s already exists", entity)
	}
	return fmt.Errorf("%s store: %w", entity, err)
}
