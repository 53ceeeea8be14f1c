// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"timetable_bot/internal/model"
)

// Storage persists the dedupe state as a single unit.
type Storage interface {
	// LoadState returns every stored stamp. An empty store yields an empty,
	// non-nil state.
	LoadState(ctx context.Context) (model.State, error)
	// SaveState writes the full state atomically.
	SaveState(ctx context.Context, state model.State) error

	Close() error
}
