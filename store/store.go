package store

import (
	"context"

	"go-dispensary/models"
)

// SnapshotStore persists shopper-session snapshots. The storefront
// treats it as: load on first access if present, save after every
// mutation, absence means fresh default state. Saves are best-effort;
// a failed save never rolls back the in-memory mutation.
type SnapshotStore interface {
	// Load returns the snapshot for a session, or (nil, nil) when none
	// exists.
	Load(ctx context.Context, sessionID string) (*models.SessionSnapshot, error)
	Save(ctx context.Context, snapshot *models.SessionSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}
