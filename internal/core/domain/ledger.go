package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryReserve EntryKind = "RESERVE"
	EntryConfirm EntryKind = "CONFIRM"
	EntryRelease EntryKind = "RELEASE"
	EntryCancel  EntryKind = "CANCEL"
)

// ReservationEntry is one immutable fact in the reservation ledger.
// Entries are appended, never edited or deleted; the ledger is the source
// of truth for analytics and for reconstructing counters after a crash.
//
// ID is assigned by the ledger as a monotonic counter and breaks ordering
// ties between entries that share a timestamp, so readers never depend on
// wall-clock precision.
type ReservationEntry struct {
	ID           int64
	EventID      uuid.UUID
	Kind         EntryKind
	Quantity     int
	UnitPrice    decimal.Decimal
	RefundAmount decimal.Decimal
	TokenID      *uuid.UUID
	ActorRef     string
	CreatedAt    time.Time
}
