package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
)

// LedgerRepository is the append-only reservation ledger. The table has no
// UPDATE or DELETE path anywhere in this package; BIGSERIAL ids give the
// monotonic tie-breaker for entries sharing a timestamp.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) Append(ctx context.Context, entry domain.ReservationEntry) (domain.ReservationEntry, error) {
	query := `
	INSERT INTO reservation_ledger (event_id, kind, quantity, unit_price, refund_amount, token_id, actor_ref, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
	`

	var tokenID any
	if entry.TokenID != nil {
		tokenID = *entry.TokenID
	}

	err := q(ctx, r.db).QueryRowContext(ctx, query,
		entry.EventID,
		entry.Kind,
		entry.Quantity,
		entry.UnitPrice,
		entry.RefundAmount,
		tokenID,
		entry.ActorRef,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return domain.ReservationEntry{}, storageErr("append ledger entry", err)
	}
	return entry, nil
}

// EntriesFor returns up to limit entries for the event in insertion order,
// starting after afterID. Callers page until they receive an empty slice;
// a restarted reader resumes from the last id it saw.
func (r *LedgerRepository) EntriesFor(ctx context.Context, eventID uuid.UUID, afterID int64, limit int) ([]domain.ReservationEntry, error) {
	query := `
	SELECT id, event_id, kind, quantity, unit_price, refund_amount, token_id, actor_ref, created_at
	FROM reservation_ledger
	WHERE event_id = $1 AND id > $2
	ORDER BY id
	LIMIT $3
	`

	rows, err := q(ctx, r.db).QueryContext(ctx, query, eventID, afterID, limit)
	if err != nil {
		return nil, storageErr("query ledger entries", err)
	}
	defer rows.Close()

	var entries []domain.ReservationEntry
	for rows.Next() {
		var entry domain.ReservationEntry
		var tokenID sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.EventID,
			&entry.Kind,
			&entry.Quantity,
			&entry.UnitPrice,
			&entry.RefundAmount,
			&tokenID,
			&entry.ActorRef,
			&entry.CreatedAt,
		); err != nil {
			return nil, storageErr("scan ledger entry", err)
		}

		if tokenID.Valid && tokenID.String != "" {
			uid, err := uuid.Parse(tokenID.String)
			if err == nil {
				entry.TokenID = &uid
			}
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate ledger entries", err)
	}
	return entries, nil
}
