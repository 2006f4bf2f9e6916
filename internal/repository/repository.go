// Package repository defines the storage interfaces the services program
// against. The sqlite subpackage provides the real implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sebcun/ysws-tracker/internal/model"
)

// PublicFilter narrows the public project listing. Zero values mean
// "no filter".
type PublicFilter struct {
	Status  model.Status
	SlackID string
}

type UserRepository interface {
	// GetOrCreate looks a user up by email, inserting a new row when none
	// exists. The passed user is filled in either way.
	GetOrCreate(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateNickname(ctx context.Context, id, nickname string) error
}

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	ListByUser(ctx context.Context, userID string) ([]model.Project, error)
	ListPublic(ctx context.Context, filter PublicFilter) ([]model.PublicProject, error)
	Update(ctx context.Context, project *model.Project) error
	UpdateHours(ctx context.Context, id string, hours float64) error
	UpdateStatus(ctx context.Context, id string, status model.Status) error
	Delete(ctx context.Context, id string) error
	// TrackerNamesInUse maps every tracker name referenced by the user's
	// projects to the owning project ID, skipping excludeProjectID (the
	// project being edited). Backs the disjointness check.
	TrackerNamesInUse(ctx context.Context, userID, excludeProjectID string) (map[string]string, error)
}

type OrderRepository interface {
	// CreateWithDebit atomically checks the user's unspent hour balance
	// against order.TotalCost, debits it across the user's projects, and
	// inserts the order — all in one transaction. Returns the remaining
	// balance. An insufficient balance fails with a validation error and
	// writes nothing.
	CreateWithDebit(ctx context.Context, order *model.Order) (remaining float64, err error)
	Balance(ctx context.Context, userID string) (float64, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	Update(ctx context.Context, order *model.Order) error
}

type FAQRepository interface {
	CreateFAQ(ctx context.Context, faq *model.FAQ) error
	ListFAQs(ctx context.Context) ([]model.FAQ, error)
	DeleteFAQ(ctx context.Context, id string) error
}

type RewardRepository interface {
	CreateReward(ctx context.Context, reward *model.Reward) error
	GetReward(ctx context.Context, id string) (*model.Reward, error)
	ListRewards(ctx context.Context) ([]model.Reward, error)
	DeleteReward(ctx context.Context, id string) error
}
