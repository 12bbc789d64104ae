package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
)

type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token domain.ReservationToken) error {
	query := `
	INSERT INTO reservation_tokens (id, event_id, quantity, status, actor_ref, expires_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := q(ctx, r.db).ExecContext(ctx, query,
		token.ID,
		token.EventID,
		token.Quantity,
		token.Status,
		token.ActorRef,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return storageErr("insert reservation token", err)
	}
	return nil
}

func (r *TokenRepository) GetForUpdate(ctx context.Context, tokenID uuid.UUID) (domain.ReservationToken, error) {
	query := `
	SELECT id, event_id, quantity, status, actor_ref, expires_at, created_at
	FROM reservation_tokens
	WHERE id = $1
	`
	if txFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}

	var token domain.ReservationToken
	err := q(ctx, r.db).QueryRowContext(ctx, query, tokenID).Scan(
		&token.ID,
		&token.EventID,
		&token.Quantity,
		&token.Status,
		&token.ActorRef,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ReservationToken{}, domain.ErrTokenNotFound
		}
		return domain.ReservationToken{}, storageErr("get reservation token", err)
	}
	return token, nil
}

func (r *TokenRepository) UpdateStatus(ctx context.Context, tokenID uuid.UUID, status domain.TokenStatus) error {
	query := `
	UPDATE reservation_tokens
	SET status = $1
	WHERE id = $2
	`

	result, err := q(ctx, r.db).ExecContext(ctx, query, status, tokenID)
	if err != nil {
		return storageErr("update token status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storageErr("update token status", err)
	}
	if rowsAffected == 0 {
		return domain.ErrTokenNotFound
	}
	return nil
}

func (r *TokenRepository) ListExpiredActive(ctx context.Context, now time.Time, limit int) ([]domain.ReservationToken, error) {
	query := `
	SELECT id, event_id, quantity, status, actor_ref, expires_at, created_at
	FROM reservation_tokens
	WHERE status = 'ACTIVE' AND expires_at < $1
	ORDER BY expires_at
	LIMIT $2
	`

	rows, err := q(ctx, r.db).QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, storageErr("list expired tokens", err)
	}
	defer rows.Close()

	var tokens []domain.ReservationToken
	for rows.Next() {
		var token domain.ReservationToken
		if err := rows.Scan(
			&token.ID,
			&token.EventID,
			&token.Quantity,
			&token.Status,
			&token.ActorRef,
			&token.ExpiresAt,
			&token.CreatedAt,
		); err != nil {
			return nil, storageErr("scan reservation token", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate reservation tokens", err)
	}
	return tokens, nil
}
