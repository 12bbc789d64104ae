package domain

import (
	"time"

	"github.com/google/uuid"
)

type TokenStatus string

const (
	TokenActive    TokenStatus = "ACTIVE"
	TokenConfirmed TokenStatus = "CONFIRMED"
	TokenReleased  TokenStatus = "RELEASED"
)

// ReservationToken is a temporary hold on tickets during checkout.
// The hold counts against remaining inventory until it is confirmed
// (becoming a sale) or released (returning the tickets to the pool).
// An expired token still holds its tickets until something releases it;
// the engine runs no timers of its own.
type ReservationToken struct {
	ID        uuid.UUID
	EventID   uuid.UUID
	Quantity  int
	Status    TokenStatus
	ActorRef  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t ReservationToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
