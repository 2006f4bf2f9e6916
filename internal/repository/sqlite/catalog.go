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

var (
	_ repository.FAQRepository    = (*CatalogDB)(nil)
	_ repository.RewardRepository = (*CatalogDB)(nil)
)

func (db *CatalogDB) CreateFAQ(ctx context.Context, faq *model.FAQ) error {
	faq.ID = xid.New().String()
	faq.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO faqs (id, question, answer, created_at) VALUES (?, ?, ?, ?)`,
		faq.ID, faq.Question, faq.Answer, faq.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating faq: %w", err)
	}
	return nil
}

func (db *CatalogDB) ListFAQs(ctx context.Context) ([]model.FAQ, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, question, answer, created_at FROM faqs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing faqs: %w", err)
	}
	defer rows.Close()

	var faqs []model.FAQ
	for rows.Next() {
		var f model.FAQ
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning faq row: %w", err)
		}
		faqs = append(faqs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating faqs: %w", err)
	}

	return faqs, nil
}

func (db *CatalogDB) DeleteFAQ(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM faqs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting faq %s: %w", id, err)
	}
	return checkFound(result, "faq", id)
}

func (db *CatalogDB) CreateReward(ctx context.Context, reward *model.Reward) error {
	reward.ID = xid.New().String()
	reward.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO rewards (id, name, description, cost, image_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reward.ID, reward.Name, reward.Description, reward.Cost, reward.ImageURL, reward.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating reward: %w", err)
	}
	return nil
}

func (db *CatalogDB) GetReward(ctx context.Context, id string) (*model.Reward, error) {
	var r model.Reward
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, cost, image_url, created_at
		 FROM rewards WHERE id = ?`,
		id,
	).Scan(&r.ID, &r.Name, &r.Description, &r.Cost, &r.ImageURL, &r.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("reward", id)
		}
		return nil, fmt.Errorf("sqlite: getting reward %s: %w", id, err)
	}
	return &r, nil
}

// ListRewards returns the catalog cheapest-first, the order the marketplace
// page shows it in.
func (db *CatalogDB) ListRewards(ctx context.Context) ([]model.Reward, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, cost, image_url, created_at
		 FROM rewards ORDER BY cost ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing rewards: %w", err)
	}
	defer rows.Close()

	var rewards []model.Reward
	for rows.Next() {
		var r model.Reward
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Cost, &r.ImageURL, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning reward row: %w", err)
		}
		rewards = append(rewards, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating rewards: %w", err)
	}

	return rewards, nil
}

func (db *CatalogDB) DeleteReward(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM rewards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting reward %s: %w", id, err)
	}
	return checkFound(result, "reward", id)
}
