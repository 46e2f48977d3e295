package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Repository persists checkout attempts. Transitions into SUBMITTING are
// conditional updates so concurrent submissions of one attempt exclude
// each other at the database.
type Repository interface {
	Create(ctx context.Context, a *Attempt) error
	Get(ctx context.Context, id string) (*Attempt, error)
	SetShipping(ctx context.Context, id string, s ShippingInfo) error
	MarkSubmitting(ctx context.Context, id string) error
	MarkConfirmed(ctx context.Context, id, orderID string) error
	RecordFailure(ctx context.Context, id, message string, terminal bool) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, a *Attempt) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO checkout_attempts (id, user_id, status, token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING created_at, updated_at
	`, a.ID, a.UserID, a.Status, a.Token).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create checkout attempt: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Attempt, error) {
	var (
		a        Attempt
		shipping []byte
		orderID  *string
		lastErr  *string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, status, token, shipping, order_id, last_error, created_at, updated_at
		FROM checkout_attempts WHERE id=$1
	`, id).Scan(&a.ID, &a.UserID, &a.Status, &a.Token, &shipping, &orderID, &lastErr, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}

	if len(shipping) > 0 {
		var s ShippingInfo
		if err := json.Unmarshal(shipping, &s); err != nil {
			return nil, fmt.Errorf("decode stored shipping info: %w", err)
		}
		a.Shipping = &s
	}
	if orderID != nil {
		a.OrderID = *orderID
	}
	if lastErr != nil {
		a.LastError = *lastErr
	}
	return &a, nil
}

func (r *PostgresRepository) SetShipping(ctx context.Context, id string, s ShippingInfo) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode shipping info: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE checkout_attempts
		SET shipping=$2, status=$3, updated_at=now()
		WHERE id=$1 AND status IN ($4, $3)
	`, id, payload, StatusAwaitingPayment, StatusCollectingShipping)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIllegalTransition
	}
	return nil
}

func (r *PostgresRepository) MarkSubmitting(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE checkout_attempts SET status=$2, updated_at=now()
		WHERE id=$1 AND status=$3
	`, id, StatusSubmitting, StatusAwaitingPayment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubmissionInFlight
	}
	return nil
}

func (r *PostgresRepository) MarkConfirmed(ctx context.Context, id, orderID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE checkout_attempts SET status=$2, order_id=$3, last_error=NULL, updated_at=now()
		WHERE id=$1 AND status=$4
	`, id, StatusConfirmed, orderID, StatusSubmitting)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIllegalTransition
	}
	return nil
}

// RecordFailure stores the failure message. Non-terminal failures return
// the attempt to AWAITING_PAYMENT so the shopper can retry; terminal ones
// (authorization) end the attempt.
func (r *PostgresRepository) RecordFailure(ctx context.Context, id, message string, terminal bool) error {
	next := StatusAwaitingPayment
	if terminal {
		next = StatusFailed
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE checkout_attempts SET status=$2, last_error=$3, updated_at=now()
		WHERE id=$1
	`, id, next, message)
	return err
}
