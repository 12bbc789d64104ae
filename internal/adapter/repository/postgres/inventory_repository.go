package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
)

type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

func (r *InventoryRepository) CreateRecord(ctx context.Context, rec domain.InventoryRecord) error {
	query := `
	INSERT INTO inventory_records (event_id, total_capacity, reserved, confirmed, unit_price, version, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := q(ctx, r.db).ExecContext(ctx, query,
		rec.EventID,
		rec.TotalCapacity,
		rec.Reserved,
		rec.Confirmed,
		rec.UnitPrice,
		rec.Version,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrInventoryExists
		}
		return storageErr("insert inventory record", err)
	}
	return nil
}

func (r *InventoryRepository) GetRecord(ctx context.Context, eventID uuid.UUID) (domain.InventoryRecord, error) {
	return r.getRecord(ctx, eventID, false)
}

func (r *InventoryRepository) GetRecordForUpdate(ctx context.Context, eventID uuid.UUID) (domain.InventoryRecord, error) {
	return r.getRecord(ctx, eventID, true)
}

func (r *InventoryRepository) getRecord(ctx context.Context, eventID uuid.UUID, forUpdate bool) (domain.InventoryRecord, error) {
	query := `
	SELECT event_id, total_capacity, reserved, confirmed, unit_price, version, created_at, updated_at
	FROM inventory_records
	WHERE event_id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var rec domain.InventoryRecord
	err := q(ctx, r.db).QueryRowContext(ctx, query, eventID).Scan(
		&rec.EventID,
		&rec.TotalCapacity,
		&rec.Reserved,
		&rec.Confirmed,
		&rec.UnitPrice,
		&rec.Version,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.InventoryRecord{}, domain.ErrInventoryNotFound
		}
		return domain.InventoryRecord{}, storageErr("get inventory record", err)
	}
	return rec, nil
}

// UpdateRecord writes the counters with an optimistic version check. Under
// the engine's per-event lock the check never fires in one process; it
// protects against a second process mutating the same row.
func (r *InventoryRepository) UpdateRecord(ctx context.Context, rec domain.InventoryRecord) error {
	query := `
	UPDATE inventory_records
	SET total_capacity = $1,
		reserved = $2,
		confirmed = $3,
		unit_price = $4,
		version = version + 1,
		updated_at = $5
	WHERE event_id = $6 AND version = $7
	`

	result, err := q(ctx, r.db).ExecContext(ctx, query,
		rec.TotalCapacity,
		rec.Reserved,
		rec.Confirmed,
		rec.UnitPrice,
		rec.UpdatedAt,
		rec.EventID,
		rec.Version,
	)
	if err != nil {
		return storageErr("update inventory record", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr("update inventory record", err)
	}
	if rowsAffected == 0 {
		return errors.New("optimistic lock failed: inventory record was modified concurrently")
	}
	return nil
}
