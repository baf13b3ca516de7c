package api

import (
	"context"

	"kanban-board/domain"
	"kanban-board/session"
)

// Sessions hands out per-user runtime state.
type Sessions interface {
	Get(ctx context.Context, userID string) *session.Session
	End(userID string)
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// Deduper prevents double-processing of repeated task submissions.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, userID, key string) (bool, error)
	// Remove deletes a previously added key, used when the save fails so the
	// client may retry.
	Remove(ctx context.Context, userID, key string) error
}

// Streamer delivers full task snapshots for the SSE endpoint.
type Streamer interface {
	Subscribe(ctx context.Context, userID string, onChange func([]domain.Task))
}
