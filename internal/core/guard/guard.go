// Package guard validates inventory transitions. Every engine mutation is
// expressed as a Delta and checked here before anything is written; there
// is no privileged path that skips validation.
package guard

import (
	"github.com/eventlane/ticket-inventory/internal/core/domain"
)

// Delta is a proposed change to one inventory record. Reserved and
// Confirmed are signed adjustments; NewCapacity, when set, replaces the
// record's total capacity.
type Delta struct {
	Reserved    int
	Confirmed   int
	NewCapacity *int
}

// Validate re-derives the record invariant under the proposed delta and
// returns nil when the transition is legal. It is pure: no I/O, no
// mutation, deterministic for a given record and delta.
func Validate(rec domain.InventoryRecord, d Delta) error {
	reserved := rec.Reserved + d.Reserved
	confirmed := rec.Confirmed + d.Confirmed

	capacity := rec.TotalCapacity
	if d.NewCapacity != nil {
		capacity = *d.NewCapacity
	}

	if reserved < 0 || confirmed < 0 {
		return domain.ErrInvalidQuantity
	}
	if capacity < 0 {
		return domain.ErrInvalidCapacity
	}
	if d.NewCapacity != nil && *d.NewCapacity < confirmed {
		return domain.ErrCapacityBelowSold
	}
	if reserved+confirmed > capacity {
		return domain.ErrInsufficientInventory
	}
	return nil
}

// Apply returns the record with the delta applied. Callers must Validate
// first; Apply does not re-check.
func Apply(rec domain.InventoryRecord, d Delta) domain.InventoryRecord {
	rec.Reserved += d.Reserved
	rec.Confirmed += d.Confirmed
	if d.NewCapacity != nil {
		rec.TotalCapacity = *d.NewCapacity
	}
	return rec
}
