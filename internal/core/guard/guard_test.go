package guard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
	"github.com/eventlane/ticket-inventory/internal/core/guard"
)

func intPtr(v int) *int { return &v }

func TestValidate(t *testing.T) {
	base := domain.InventoryRecord{TotalCapacity: 10, Reserved: 2, Confirmed: 3}

	tests := []struct {
		name    string
		rec     domain.InventoryRecord
		delta   guard.Delta
		wantErr error
	}{
		{"reserve within remaining", base, guard.Delta{Reserved: 5}, nil},
		{"reserve fills remaining exactly", base, guard.Delta{Reserved: 5, Confirmed: 0}, nil},
		{"reserve beyond remaining", base, guard.Delta{Reserved: 6}, domain.ErrInsufficientInventory},
		{"confirm moves hold to sale", base, guard.Delta{Reserved: -2, Confirmed: 2}, nil},
		{"release full hold", base, guard.Delta{Reserved: -2}, nil},
		{"release below zero", base, guard.Delta{Reserved: -3}, domain.ErrInvalidQuantity},
		{"cancel within confirmed", base, guard.Delta{Confirmed: -3}, nil},
		{"cancel below zero", base, guard.Delta{Confirmed: -4}, domain.ErrInvalidQuantity},
		{"grow capacity", base, guard.Delta{NewCapacity: intPtr(100)}, nil},
		{"shrink capacity to sold plus held", base, guard.Delta{NewCapacity: intPtr(5)}, nil},
		{"shrink capacity below sold", base, guard.Delta{NewCapacity: intPtr(2)}, domain.ErrCapacityBelowSold},
		{"shrink capacity between sold and sold plus held", base, guard.Delta{NewCapacity: intPtr(4)}, domain.ErrInsufficientInventory},
		{"negative capacity", base, guard.Delta{NewCapacity: intPtr(-1)}, domain.ErrInvalidCapacity},
		{"no-op delta", base, guard.Delta{}, nil},
		{"zero capacity record reserve", domain.InventoryRecord{}, guard.Delta{Reserved: 1}, domain.ErrInsufficientInventory},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := guard.Validate(tc.rec, tc.delta)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

// Sweep every delta in a small cube and verify that whenever Validate
// accepts, the applied record satisfies the invariant, and whenever the
// applied record would violate it, Validate rejects.
func TestValidateMatchesInvariant(t *testing.T) {
	rec := domain.InventoryRecord{TotalCapacity: 4, Reserved: 1, Confirmed: 2}

	for dr := -3; dr <= 3; dr++ {
		for dc := -3; dc <= 3; dc++ {
			for _, capDelta := range []*int{nil, intPtr(0), intPtr(2), intPtr(3), intPtr(8)} {
				d := guard.Delta{Reserved: dr, Confirmed: dc, NewCapacity: capDelta}
				err := guard.Validate(rec, d)
				applied := guard.Apply(rec, d)

				legal := applied.Reserved >= 0 &&
					applied.Confirmed >= 0 &&
					applied.Reserved+applied.Confirmed <= applied.TotalCapacity

				if legal {
					assert.NoError(t, err, "legal delta %+v rejected", d)
				} else {
					assert.Error(t, err, "illegal delta %+v accepted (state %+v)", d, applied)
				}
			}
		}
	}
}

func TestApply(t *testing.T) {
	rec := domain.InventoryRecord{TotalCapacity: 10, Reserved: 2, Confirmed: 3}

	out := guard.Apply(rec, guard.Delta{Reserved: -2, Confirmed: 2, NewCapacity: intPtr(12)})
	assert.Equal(t, 0, out.Reserved)
	assert.Equal(t, 5, out.Confirmed)
	assert.Equal(t, 12, out.TotalCapacity)
	assert.Equal(t, 7, out.Remaining())

	// Apply never mutates its input.
	assert.Equal(t, 2, rec.Reserved)
	assert.Equal(t, 3, rec.Confirmed)
	assert.Equal(t, 10, rec.TotalCapacity)
}
