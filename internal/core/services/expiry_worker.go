package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
	"github.com/eventlane/ticket-inventory/internal/core/ports"
	"github.com/eventlane/ticket-inventory/internal/platform/clock"
)

const (
	expiryActor     = "system:expiry-worker"
	expirySweepSize = 100
)

// ExpiryWorker sweeps expired, unconfirmed reservation tokens and releases
// them through the engine. The engine itself runs no timers; release going
// through the normal idempotent path means a sweep racing a late Confirm
// or a second sweep can never double-free inventory.
type ExpiryWorker struct {
	engine   *InventoryEngine
	tokens   ports.TokenRepository
	clock    clock.Clock
	interval time.Duration
}

func NewExpiryWorker(engine *InventoryEngine, tokens ports.TokenRepository, clk clock.Clock, interval time.Duration) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpiryWorker{
		engine:   engine,
		tokens:   tokens,
		clock:    clk,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (w *ExpiryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Printf("expiry worker started: sweeping expired holds every %s", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("expiry worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep releases one batch of expired holds.
func (w *ExpiryWorker) Sweep(ctx context.Context) {
	expired, err := w.tokens.ListExpiredActive(ctx, w.clock.Now(), expirySweepSize)
	if err != nil {
		log.Printf("error listing expired holds: %v", err)
		return
	}
	if len(expired) == 0 {
		return
	}

	log.Printf("found %d expired holds, releasing", len(expired))

	for _, token := range expired {
		err := w.engine.Release(ctx, token.ID, expiryActor)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrAlreadyConfirmed):
			// A late confirm won the race; the sale stands.
		default:
			log.Printf("failed to release expired hold %s: %v", token.ID, err)
		}
	}
}
