package store

import (
	"context"
	"errors"

	"brokemate/internal/core"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Ports for persistence adapters.
type (
	// StateStore keeps one whole-state blob per user partition. Load of a
	// partition that was never saved returns the default state, not an error.
	StateStore interface {
		Load(ctx context.Context, userID string) (core.State, error)
		Save(ctx context.Context, userID string, s core.State) error
		// Users lists the partitions that have a saved blob.
		Users(ctx context.Context) ([]string, error)
	}

	// ProfileStore is the separate partition holding known user profiles.
	ProfileStore interface {
		ListProfiles(ctx context.Context) ([]core.Profile, error)
		GetProfile(ctx context.Context, id string) (core.Profile, error)
		// SaveProfile inserts p; usernames are unique case-insensitively.
		SaveProfile(ctx context.Context, p core.Profile) error
	}

	Store interface {
		StateStore
		ProfileStore
		Close() error
	}
)
