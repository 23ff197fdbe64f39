package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
)

// Repo defines storage operations for the chat-to-owner mapping and the
// local authoritative alarm records.
type Repo interface {
	// EnsureUser returns the owner id for a chat, creating the mapping on
	// first contact.
	EnsureUser(ctx context.Context, chatID int64) (uuid.UUID, error)
	// ChatForOwner resolves an owner id back to its chat.
	ChatForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	InsertAlarm(ctx context.Context, a *alarm.Alarm) error
	// UpsertAlarm inserts or overwrites a record; used when syncing the
	// remote backend down into the local store.
	UpsertAlarm(ctx context.Context, a *alarm.Alarm) error
	GetAlarm(ctx context.Context, id uuid.UUID) (*alarm.Alarm, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]alarm.Alarm, error)
	// ListActive returns every active alarm across owners; the app re-derives
	// pending firings from it at boot.
	ListActive(ctx context.Context) ([]alarm.Alarm, error)
	UpdateAlarm(ctx context.Context, a *alarm.Alarm) error
	DeleteAlarm(ctx context.Context, id uuid.UUID) error

	Close() error
}
