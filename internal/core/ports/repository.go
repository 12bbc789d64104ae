package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
)

// InventoryRepository persists inventory records. WithTx runs fn inside a
// single storage transaction; repository calls made with the ctx it passes
// join that transaction, so a record update, a ledger append and a token
// write commit or roll back together.
type InventoryRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateRecord(ctx context.Context, rec domain.InventoryRecord) error
	GetRecord(ctx context.Context, eventID uuid.UUID) (domain.InventoryRecord, error)
	GetRecordForUpdate(ctx context.Context, eventID uuid.UUID) (domain.InventoryRecord, error)
	UpdateRecord(ctx context.Context, rec domain.InventoryRecord) error
}

// LedgerRepository is the append-only reservation ledger. Append assigns
// the entry's monotonic ID; nothing ever updates or deletes an entry.
// EntriesFor pages in insertion order starting after afterID, so readers
// can restart from wherever they left off.
type LedgerRepository interface {
	Append(ctx context.Context, entry domain.ReservationEntry) (domain.ReservationEntry, error)
	EntriesFor(ctx context.Context, eventID uuid.UUID, afterID int64, limit int) ([]domain.ReservationEntry, error)
}

// TokenRepository persists reservation tokens (checkout holds).
type TokenRepository interface {
	Create(ctx context.Context, token domain.ReservationToken) error
	GetForUpdate(ctx context.Context, tokenID uuid.UUID) (domain.ReservationToken, error)
	UpdateStatus(ctx context.Context, tokenID uuid.UUID, status domain.TokenStatus) error
	ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]domain.ReservationToken, error)
}

// SnapshotCache holds the derived read models served to listing cards and
// dashboards. The engine invalidates an event's snapshots after every
// committed mutation; the projector repopulates them on demand.
type SnapshotCache interface {
	GetAvailability(ctx context.Context, eventID uuid.UUID) (domain.Availability, bool, error)
	SetAvailability(ctx context.Context, av domain.Availability) error
	GetAnalytics(ctx context.Context, eventID uuid.UUID) (domain.EventAnalytics, bool, error)
	SetAnalytics(ctx context.Context, an domain.EventAnalytics) error
	Invalidate(ctx context.Context, eventID uuid.UUID) error
}
