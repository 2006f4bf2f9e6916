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

// UserStore persists user rows in the identity store.
type UserStore struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserStore)(nil)

// GetOrCreate looks the user up by email and inserts a new row when none
// exists. Login is the only writer of user rows, so a plain select-then-insert
// is enough here; the UNIQUE constraint on email backstops a race between two
// first logins of the same account.
func (db *UserStore) GetOrCreate(ctx context.Context, user *model.User) error {
	existing, err := db.getUserByEmail(ctx, user.Email)
	if err == nil {
		*user = *existing
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: looking up user by email: %w", err)
	}

	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, nickname, slack_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Nickname, user.SlackID, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		// Lost the race to another first login — read the winner's row.
		if existing, lookupErr := db.getUserByEmail(ctx, user.Email); lookupErr == nil {
			*user = *existing
			return nil
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

func (db *UserStore) getUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, nickname, slack_id, created_at, updated_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &u.Nickname, &u.SlackID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, nickname, slack_id, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Email, &u.Nickname, &u.SlackID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return &u, nil
}

func (db *UserStore) UpdateNickname(ctx context.Context, id, nickname string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET nickname = ?, updated_at = ? WHERE id = ?`,
		nickname, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}
