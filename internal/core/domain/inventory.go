package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryRecord is the canonical ticket pool for one event. It is owned
// exclusively by the inventory engine; nothing else writes its counters.
type InventoryRecord struct {
	EventID       uuid.UUID
	TotalCapacity int
	Reserved      int
	Confirmed     int
	UnitPrice     decimal.Decimal
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Remaining is always derived, never stored.
func (r InventoryRecord) Remaining() int {
	return r.TotalCapacity - r.Reserved - r.Confirmed
}

func (r InventoryRecord) SoldCount() int {
	return r.Confirmed
}

// PercentageSold returns confirmed/totalCapacity in [0, 1].
// A zero-capacity event is 0% sold.
func (r InventoryRecord) PercentageSold() float64 {
	if r.TotalCapacity == 0 {
		return 0
	}
	return float64(r.Confirmed) / float64(r.TotalCapacity)
}

func (r InventoryRecord) SoldOut() bool {
	return r.Remaining() <= 0
}
