package models

import "github.com/google/uuid"

// newID returns a time-ordered UUIDv7 so that sorting by id descending yields
// newest rows first.
func newID(current uuid.UUID) (uuid.UUID, error) {
	if current != uuid.Nil {
		return current, nil
	}
	return uuid.NewV7()
}
