package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository is the durable mirror of the cart aggregate: Load at session
// start, Save after every mutation, Clear on confirmation.
type Repository interface {
	Load(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Clear(ctx context.Context, userID string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Load returns nil when the shopper has no stored cart.
func (r *PostgresRepository) Load(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, updated_at FROM carts WHERE user_id=$1`, userID)
	if err := row.Scan(&c.ID, &c.UserID, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT item_id, title, unit_price, quantity FROM cart_items WHERE cart_id=$1 ORDER BY position`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ItemID, &l.Title, &l.UnitPrice, &l.Quantity); err != nil {
			return nil, err
		}
		if l.UnitPrice.IsNegative() {
			l.UnitPrice = decimal.Zero
		}
		c.Lines = append(c.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save upserts the cart row and rewrites its lines in one transaction.
func (r *PostgresRepository) Save(ctx context.Context, c *Cart) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO carts (id, user_id, total, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE
		SET total = EXCLUDED.total, updated_at = now()
		RETURNING id, updated_at
	`, c.ID, c.UserID, c.Total()).Scan(&c.ID, &c.UpdatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, c.ID); err != nil {
		return err
	}

	for i, l := range c.Lines {
		_, err := tx.Exec(ctx, `
			INSERT INTO cart_items (id, cart_id, item_id, title, unit_price, quantity, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), c.ID, l.ItemID, l.Title, l.UnitPrice, l.Quantity, i)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM carts WHERE user_id=$1`, userID)
	return err
}
