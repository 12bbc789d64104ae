package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
	"github.com/eventlane/ticket-inventory/internal/core/guard"
	"github.com/eventlane/ticket-inventory/internal/core/ports"
	"github.com/eventlane/ticket-inventory/internal/platform/clock"
)

const defaultHoldTTL = 10 * time.Minute

// InventoryEngine owns every mutation of inventory records. Each operation
// serializes per event, validates its transition through the guard, and
// commits the record update, the ledger append and the token write in one
// storage transaction. Nothing external runs while the per-event lock is
// held except that commit and the snapshot-cache invalidation.
type InventoryEngine struct {
	records ports.InventoryRepository
	ledger  ports.LedgerRepository
	tokens  ports.TokenRepository
	cache   ports.SnapshotCache
	clock   clock.Clock
	locks   *eventLocks
	holdTTL time.Duration
}

type EngineOption func(*InventoryEngine)

// WithHoldTTL overrides how long a reservation holds tickets before the
// expiry sweep may release it.
func WithHoldTTL(d time.Duration) EngineOption {
	return func(e *InventoryEngine) {
		if d > 0 {
			e.holdTTL = d
		}
	}
}

func NewInventoryEngine(
	records ports.InventoryRepository,
	ledger ports.LedgerRepository,
	tokens ports.TokenRepository,
	cache ports.SnapshotCache,
	clk clock.Clock,
	opts ...EngineOption,
) *InventoryEngine {
	e := &InventoryEngine{
		records: records,
		ledger:  ledger,
		tokens:  tokens,
		cache:   cache,
		clock:   clk,
		locks:   newEventLocks(),
		holdTTL: defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateInventory establishes the ticket pool for a newly created event.
// Remaining starts equal to the total capacity.
func (e *InventoryEngine) CreateInventory(ctx context.Context, eventID uuid.UUID, totalCapacity int, unitPrice decimal.Decimal) (domain.InventoryRecord, error) {
	if totalCapacity < 0 {
		return domain.InventoryRecord{}, domain.ErrInvalidCapacity
	}
	if unitPrice.IsNegative() {
		return domain.InventoryRecord{}, domain.ErrInvalidPrice
	}

	now := e.clock.Now()
	rec := domain.InventoryRecord{
		EventID:       eventID,
		TotalCapacity: totalCapacity,
		UnitPrice:     unitPrice,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.records.CreateRecord(ctx, rec); err != nil {
		return domain.InventoryRecord{}, err
	}
	return rec, nil
}

type ReserveInput struct {
	EventID  uuid.UUID
	Quantity int
	ActorRef string
}

// Reserve places a temporary hold on tickets for a checkout in progress.
// The hold counts against remaining immediately; capacity is untouched.
func (e *InventoryEngine) Reserve(ctx context.Context, in ReserveInput) (domain.ReservationToken, error) {
	if in.Quantity <= 0 {
		return domain.ReservationToken{}, domain.ErrInvalidQuantity
	}

	mu := e.locks.lock(in.EventID)
	defer mu.Unlock()

	now := e.clock.Now()
	token := domain.ReservationToken{
		ID:        uuid.New(),
		EventID:   in.EventID,
		Quantity:  in.Quantity,
		Status:    domain.TokenActive,
		ActorRef:  in.ActorRef,
		ExpiresAt: now.Add(e.holdTTL),
		CreatedAt: now,
	}

	err := e.records.WithTx(ctx, func(txCtx context.Context) error {
		rec, err := e.records.GetRecordForUpdate(txCtx, in.EventID)
		if err != nil {
			return err
		}

		delta := guard.Delta{Reserved: in.Quantity}
		if err := guard.Validate(rec, delta); err != nil {
			return err
		}

		if _, err := e.ledger.Append(txCtx, domain.ReservationEntry{
			EventID:   in.EventID,
			Kind:      domain.EntryReserve,
			Quantity:  in.Quantity,
			UnitPrice: rec.UnitPrice,
			TokenID:   &token.ID,
			ActorRef:  in.ActorRef,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		rec = guard.Apply(rec, delta)
		rec.UpdatedAt = now
		if err := e.records.UpdateRecord(txCtx, rec); err != nil {
			return err
		}

		return e.tokens.Create(txCtx, token)
	})
	if err != nil {
		return domain.ReservationToken{}, err
	}

	e.invalidate(ctx, in.EventID)
	return token, nil
}

// Confirm turns a hold into a completed sale at the unit price in effect
// now, not at reserve time. It is the only operation that produces
// billable sales.
func (e *InventoryEngine) Confirm(ctx context.Context, tokenID uuid.UUID) (domain.ReservationToken, error) {
	token, err := e.tokens.GetForUpdate(ctx, tokenID)
	if err != nil {
		return domain.ReservationToken{}, err
	}

	mu := e.locks.lock(token.EventID)
	defer mu.Unlock()

	now := e.clock.Now()

	err = e.records.WithTx(ctx, func(txCtx context.Context) error {
		token, err = e.tokens.GetForUpdate(txCtx, tokenID)
		if err != nil {
			return err
		}

		switch token.Status {
		case domain.TokenConfirmed:
			return domain.ErrAlreadyConfirmed
		case domain.TokenReleased:
			return domain.ErrTokenExpired
		}
		if token.Expired(now) {
			return domain.ErrTokenExpired
		}

		rec, err := e.records.GetRecordForUpdate(txCtx, token.EventID)
		if err != nil {
			return err
		}

		delta := guard.Delta{Reserved: -token.Quantity, Confirmed: token.Quantity}
		if err := guard.Validate(rec, delta); err != nil {
			return err
		}

		if _, err := e.ledger.Append(txCtx, domain.ReservationEntry{
			EventID:   token.EventID,
			Kind:      domain.EntryConfirm,
			Quantity:  token.Quantity,
			UnitPrice: rec.UnitPrice,
			TokenID:   &token.ID,
			ActorRef:  token.ActorRef,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		rec = guard.Apply(rec, delta)
		rec.UpdatedAt = now
		if err := e.records.UpdateRecord(txCtx, rec); err != nil {
			return err
		}

		token.Status = domain.TokenConfirmed
		return e.tokens.UpdateStatus(txCtx, token.ID, domain.TokenConfirmed)
	})
	if err != nil {
		return domain.ReservationToken{}, err
	}

	e.invalidate(ctx, token.EventID)
	return token, nil
}

// Release returns a hold's tickets to the pool. It is idempotent: a token
// that was already released is a no-op success, so a late cleanup sweep can
// never free the same tickets twice. Releasing a confirmed token fails
// instead of silently destroying the sale.
func (e *InventoryEngine) Release(ctx context.Context, tokenID uuid.UUID, actorRef string) error {
	token, err := e.tokens.GetForUpdate(ctx, tokenID)
	if err != nil {
		return err
	}

	mu := e.locks.lock(token.EventID)
	defer mu.Unlock()

	now := e.clock.Now()

	err = e.records.WithTx(ctx, func(txCtx context.Context) error {
		token, err = e.tokens.GetForUpdate(txCtx, tokenID)
		if err != nil {
			return err
		}

		switch token.Status {
		case domain.TokenReleased:
			return nil
		case domain.TokenConfirmed:
			return domain.ErrAlreadyConfirmed
		}

		rec, err := e.records.GetRecordForUpdate(txCtx, token.EventID)
		if err != nil {
			return err
		}

		delta := guard.Delta{Reserved: -token.Quantity}
		if err := guard.Validate(rec, delta); err != nil {
			return err
		}

		if _, err := e.ledger.Append(txCtx, domain.ReservationEntry{
			EventID:   token.EventID,
			Kind:      domain.EntryRelease,
			Quantity:  token.Quantity,
			UnitPrice: rec.UnitPrice,
			TokenID:   &token.ID,
			ActorRef:  actorRef,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		rec = guard.Apply(rec, delta)
		rec.UpdatedAt = now
		if err := e.records.UpdateRecord(txCtx, rec); err != nil {
			return err
		}

		return e.tokens.UpdateStatus(txCtx, token.ID, domain.TokenReleased)
	})
	if err != nil {
		return err
	}

	e.invalidate(ctx, token.EventID)
	return nil
}

type CancelInput struct {
	EventID      uuid.UUID
	Quantity     int
	RefundAmount decimal.Decimal
	ActorRef     string
}

// Cancel refunds confirmed tickets after the fact, returning them to the
// pool. The refund amount comes from the payment subsystem and is recorded
// for audit, never computed here.
func (e *InventoryEngine) Cancel(ctx context.Context, in CancelInput) error {
	if in.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if in.RefundAmount.IsNegative() {
		return domain.ErrInvalidRefund
	}

	mu := e.locks.lock(in.EventID)
	defer mu.Unlock()

	now := e.clock.Now()

	err := e.records.WithTx(ctx, func(txCtx context.Context) error {
		rec, err := e.records.GetRecordForUpdate(txCtx, in.EventID)
		if err != nil {
			return err
		}

		if in.Quantity > rec.Confirmed {
			return domain.ErrInvalidQuantity
		}

		delta := guard.Delta{Confirmed: -in.Quantity}
		if err := guard.Validate(rec, delta); err != nil {
			return err
		}

		if _, err := e.ledger.Append(txCtx, domain.ReservationEntry{
			EventID:      in.EventID,
			Kind:         domain.EntryCancel,
			Quantity:     in.Quantity,
			UnitPrice:    rec.UnitPrice,
			RefundAmount: in.RefundAmount,
			ActorRef:     in.ActorRef,
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		rec = guard.Apply(rec, delta)
		rec.UpdatedAt = now
		return e.records.UpdateRecord(txCtx, rec)
	})
	if err != nil {
		return err
	}

	e.invalidate(ctx, in.EventID)
	return nil
}

// ResizeCapacity changes the total capacity of an event. Tickets already
// sold or held are never invalidated: the operation only moves the ceiling,
// and it refuses to move it below what has been sold.
func (e *InventoryEngine) ResizeCapacity(ctx context.Context, eventID uuid.UUID, newTotalCapacity int) (domain.InventoryRecord, error) {
	mu := e.locks.lock(eventID)
	defer mu.Unlock()

	now := e.clock.Now()
	var updated domain.InventoryRecord

	err := e.records.WithTx(ctx, func(txCtx context.Context) error {
		rec, err := e.records.GetRecordForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}

		delta := guard.Delta{NewCapacity: &newTotalCapacity}
		if err := guard.Validate(rec, delta); err != nil {
			return err
		}

		rec = guard.Apply(rec, delta)
		rec.UpdatedAt = now
		if err := e.records.UpdateRecord(txCtx, rec); err != nil {
			return err
		}

		updated = rec
		return nil
	})
	if err != nil {
		return domain.InventoryRecord{}, err
	}

	e.invalidate(ctx, eventID)
	return updated, nil
}

// RebuildRecord folds the event's full ledger from zero and returns the
// reconstructed record. Replaying must reproduce the stored counters
// exactly; callers use this after a crash or as a consistency cross-check.
func (e *InventoryEngine) RebuildRecord(ctx context.Context, eventID uuid.UUID) (domain.InventoryRecord, error) {
	rec, err := e.records.GetRecord(ctx, eventID)
	if err != nil {
		return domain.InventoryRecord{}, err
	}

	rec.Reserved = 0
	rec.Confirmed = 0

	var afterID int64
	for {
		entries, err := e.ledger.EntriesFor(ctx, eventID, afterID, ledgerPageSize)
		if err != nil {
			return domain.InventoryRecord{}, err
		}
		if len(entries) == 0 {
			return rec, nil
		}
		for _, entry := range entries {
			rec = foldEntry(rec, entry)
			afterID = entry.ID
		}
	}
}

// foldEntry applies one ledger entry to the running counters. The record
// at any instant equals the fold of all its entries.
func foldEntry(rec domain.InventoryRecord, entry domain.ReservationEntry) domain.InventoryRecord {
	switch entry.Kind {
	case domain.EntryReserve:
		rec.Reserved += entry.Quantity
	case domain.EntryConfirm:
		rec.Reserved -= entry.Quantity
		rec.Confirmed += entry.Quantity
	case domain.EntryRelease:
		rec.Reserved -= entry.Quantity
	case domain.EntryCancel:
		rec.Confirmed -= entry.Quantity
	}
	return rec
}

// invalidate drops the event's cached snapshots after a committed
// mutation. Cache trouble is logged and swallowed: the cache repopulates
// with a short TTL and must never fail a committed operation.
func (e *InventoryEngine) invalidate(ctx context.Context, eventID uuid.UUID) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Invalidate(ctx, eventID); err != nil {
		log.Printf("failed to invalidate snapshots for event %s: %v", eventID, err)
	}
}
