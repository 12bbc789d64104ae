package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Availability is the read model behind listing cards and the checkout page.
type Availability struct {
	EventID        uuid.UUID `json:"event_id"`
	TotalCapacity  int       `json:"total_capacity"`
	Remaining      int       `json:"remaining"`
	PercentageSold float64   `json:"percentage_sold"`
	SoldOut        bool      `json:"sold_out"`
}

// CancellationRecord is one refunded cancellation, taken verbatim from a
// Cancel ledger entry.
type CancellationRecord struct {
	EntryID      int64           `json:"entry_id"`
	ActorRef     string          `json:"actor_ref"`
	Quantity     int             `json:"quantity"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// EventAnalytics is the dashboard projection for one event, derived from
// the ledger plus the current record. It never feeds back into the engine.
type EventAnalytics struct {
	EventID        uuid.UUID            `json:"event_id"`
	TicketsSold    int                  `json:"tickets_sold"`
	GrossRevenue   decimal.Decimal      `json:"gross_revenue"`
	TotalRefunded  decimal.Decimal      `json:"total_refunded"`
	NetRevenue     decimal.Decimal      `json:"net_revenue"`
	PercentageSold float64              `json:"percentage_sold"`
	Cancellations  []CancellationRecord `json:"cancellations"`
}
