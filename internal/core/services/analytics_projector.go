package services

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
	"github.com/eventlane/ticket-inventory/internal/core/ports"
)

const ledgerPageSize = 500

// AnalyticsProjector derives the read-only views behind dashboards and
// listing cards. It folds the immutable ledger plus the current record and
// never mutates either, so projections are safe to recompute at any time;
// the cache is purely an optimization and the engine invalidates it on
// every committed mutation.
type AnalyticsProjector struct {
	records ports.InventoryRepository
	ledger  ports.LedgerRepository
	cache   ports.SnapshotCache
}

func NewAnalyticsProjector(records ports.InventoryRepository, ledger ports.LedgerRepository, cache ports.SnapshotCache) *AnalyticsProjector {
	return &AnalyticsProjector{
		records: records,
		ledger:  ledger,
		cache:   cache,
	}
}

// Availability computes the listing-card view from the record snapshot.
// It requires no lock: the record read is a consistent snapshot.
func (p *AnalyticsProjector) Availability(ctx context.Context, eventID uuid.UUID) (domain.Availability, error) {
	if p.cache != nil {
		if av, ok, err := p.cache.GetAvailability(ctx, eventID); err != nil {
			log.Printf("availability cache read for event %s: %v", eventID, err)
		} else if ok {
			return av, nil
		}
	}

	rec, err := p.records.GetRecord(ctx, eventID)
	if err != nil {
		return domain.Availability{}, err
	}

	av := domain.Availability{
		EventID:        rec.EventID,
		TotalCapacity:  rec.TotalCapacity,
		Remaining:      rec.Remaining(),
		PercentageSold: rec.PercentageSold(),
		SoldOut:        rec.SoldOut(),
	}

	if p.cache != nil {
		if err := p.cache.SetAvailability(ctx, av); err != nil {
			log.Printf("availability cache write for event %s: %v", eventID, err)
		}
	}
	return av, nil
}

// Summary computes the dashboard projection for one event: tickets sold,
// gross and net revenue, refunds, and the cancellation log. Revenue sums
// each Confirm entry at the unit price captured when it was appended, so a
// later price change never rewrites past sales.
func (p *AnalyticsProjector) Summary(ctx context.Context, eventID uuid.UUID) (domain.EventAnalytics, error) {
	if p.cache != nil {
		if an, ok, err := p.cache.GetAnalytics(ctx, eventID); err != nil {
			log.Printf("analytics cache read for event %s: %v", eventID, err)
		} else if ok {
			return an, nil
		}
	}

	rec, err := p.records.GetRecord(ctx, eventID)
	if err != nil {
		return domain.EventAnalytics{}, err
	}

	an := domain.EventAnalytics{
		EventID:        eventID,
		TicketsSold:    rec.SoldCount(),
		GrossRevenue:   decimal.Zero,
		TotalRefunded:  decimal.Zero,
		PercentageSold: rec.PercentageSold(),
		Cancellations:  []domain.CancellationRecord{},
	}

	var afterID int64
	for {
		entries, err := p.ledger.EntriesFor(ctx, eventID, afterID, ledgerPageSize)
		if err != nil {
			return domain.EventAnalytics{}, err
		}
		if len(entries) == 0 {
			break
		}
		for _, entry := range entries {
			switch entry.Kind {
			case domain.EntryConfirm:
				amount := entry.UnitPrice.Mul(decimal.NewFromInt(int64(entry.Quantity)))
				an.GrossRevenue = an.GrossRevenue.Add(amount)
			case domain.EntryCancel:
				an.TotalRefunded = an.TotalRefunded.Add(entry.RefundAmount)
				an.Cancellations = append(an.Cancellations, domain.CancellationRecord{
					EntryID:      entry.ID,
					ActorRef:     entry.ActorRef,
					Quantity:     entry.Quantity,
					RefundAmount: entry.RefundAmount,
					OccurredAt:   entry.CreatedAt,
				})
			}
			afterID = entry.ID
		}
	}

	an.NetRevenue = an.GrossRevenue.Sub(an.TotalRefunded)

	if p.cache != nil {
		if err := p.cache.SetAnalytics(ctx, an); err != nil {
			log.Printf("analytics cache write for event %s: %v", eventID, err)
		}
	}
	return an, nil
}
