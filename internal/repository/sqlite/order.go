package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sebcun/ysws-tracker/internal/apperror"
	"github.com/sebcun/ysws-tracker/internal/model"
	"github.com/sebcun/ysws-tracker/internal/repository"
)

// OrderStore persists order rows in the identity store. It also owns the
// hour-balance debit, which spans the projects table.
type OrderStore struct {
	conn *sql.DB
}

var _ repository.OrderRepository = (*OrderStore)(nil)

const orderColumns = `id, user_id, reward_id, reward_name, quantity, contact,
	total_cost, status, notes, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.RewardID, &o.RewardName, &o.Quantity, &o.Contact,
		&o.TotalCost, &o.Status, &o.Notes, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateWithDebit is the one path in the system that needs cross-row
// transactional isolation: two simultaneous orders must not spend the same
// hours twice. The store opens transactions with _txlock=immediate, so the
// balance read below already holds the write lock — a concurrent order waits
// at BeginTx and sees the debited balance.
//
// The debit walks the caller's projects oldest-first, raising hours_paid on
// each until the total is covered. On insufficient balance nothing is
// written.
func (db *OrderStore) CreateWithDebit(ctx context.Context, order *model.Order) (float64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: beginning order transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, hours, hours_paid FROM projects
		 WHERE user_id = ?
		 ORDER BY created_at ASC`,
		order.UserID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading balance: %w", err)
	}

	type slice struct {
		id        string
		available float64
	}
	var (
		balance float64
		slices  []slice
	)
	for rows.Next() {
		var id string
		var hours, paid float64
		if err := rows.Scan(&id, &hours, &paid); err != nil {
			rows.Close()
			return 0, fmt.Errorf("sqlite: scanning balance row: %w", err)
		}
		if avail := hours - paid; avail > 0 {
			balance += avail
			slices = append(slices, slice{id: id, available: avail})
		}
	}
	if err := rows.Close(); err != nil {
		return 0, fmt.Errorf("sqlite: closing balance rows: %w", err)
	}

	if balance < order.TotalCost {
		return 0, apperror.ValidationFailed("quantity",
			fmt.Sprintf("insufficient balance: need %.2f hours, have %.2f", order.TotalCost, balance))
	}

	remaining := order.TotalCost
	for _, s := range slices {
		if remaining <= 0 {
			break
		}
		debit := s.available
		if debit > remaining {
			debit = remaining
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE projects SET hours_paid = hours_paid + ? WHERE id = ?`,
			debit, s.id,
		); err != nil {
			return 0, fmt.Errorf("sqlite: debiting project %s: %w", s.id, err)
		}
		remaining -= debit
	}

	order.ID = xid.New().String()
	order.CreatedAt = time.Now()
	if order.Status == "" {
		order.Status = model.OrderPending
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, reward_id, reward_name, quantity, contact,
		     total_cost, status, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.RewardID, order.RewardName, order.Quantity,
		order.Contact, order.TotalCost, order.Status, order.Notes, order.CreatedAt,
	); err != nil {
		return 0, fmt.Errorf("sqlite: creating order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: committing order: %w", err)
	}

	return balance - order.TotalCost, nil
}

func (db *OrderStore) Balance(ctx context.Context, userID string) (float64, error) {
	var balance float64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(MAX(hours - hours_paid, 0)), 0)
		 FROM projects WHERE user_id = ?`,
		userID,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading balance: %w", err)
	}
	return balance, nil
}

func (db *OrderStore) GetByID(ctx context.Context, id string) (*model.Order, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)

	o, err := scanOrder(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("order", id)
		}
		return nil, fmt.Errorf("sqlite: getting order %s: %w", id, err)
	}
	return o, nil
}

func (db *OrderStore) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return db.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
}

func (db *OrderStore) ListAll(ctx context.Context) ([]model.Order, error) {
	return db.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (db *OrderStore) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating orders: %w", err)
	}

	return orders, nil
}

func (db *OrderStore) Update(ctx context.Context, order *model.Order) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE orders SET status = ?, notes = ? WHERE id = ?`,
		order.Status, order.Notes, order.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating order %s: %w", order.ID, err)
	}
	return checkFound(result, "order", order.ID)
}
