package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sebcun/ysws-tracker/internal/apperror"
	"github.com/sebcun/ysws-tracker/internal/model"
	"github.com/sebcun/ysws-tracker/internal/repository"
)

const (
	MinOrderQuantity = 1
	MaxOrderQuantity = 100
)

// OrderService runs the rewards marketplace: users redeem accrued-but-unspent
// hours for catalog rewards.
type OrderService struct {
	orders  repository.OrderRepository
	rewards repository.RewardRepository
	logger  *slog.Logger
}

func NewOrderService(orders repository.OrderRepository, rewards repository.RewardRepository, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders:  orders,
		rewards: rewards,
		logger:  logger,
	}
}

// Create places an order. The balance check and debit happen atomically in
// the repository — the order either lands with the hours spent, or nothing
// changes. Returns the order and the remaining balance.
func (s *OrderService) Create(ctx context.Context, caller *model.SessionUser, rewardID string, quantity int, contact string) (*model.Order, float64, error) {
	if caller == nil {
		return nil, 0, apperror.Unauthorized("authentication required")
	}

	if quantity < MinOrderQuantity || quantity > MaxOrderQuantity {
		return nil, 0, apperror.ValidationFailed("quantity",
			fmt.Sprintf("quantity must be between %d and %d", MinOrderQuantity, MaxOrderQuantity))
	}

	reward, err := s.rewards.GetReward(ctx, rewardID)
	if err != nil {
		return nil, 0, err
	}

	order := &model.Order{
		UserID:     caller.ID,
		RewardID:   reward.ID,
		RewardName: reward.Name,
		Quantity:   quantity,
		Contact:    strings.TrimSpace(contact),
		TotalCost:  reward.Cost * float64(quantity),
		Status:     model.OrderPending,
	}

	remaining, err := s.orders.CreateWithDebit(ctx, order)
	if err != nil {
		return nil, 0, err
	}

	s.logger.Info("order placed",
		slog.String("id", order.ID),
		slog.String("userID", caller.ID),
		slog.String("reward", reward.Name),
		slog.Float64("totalCost", order.TotalCost),
		slog.Float64("remaining", remaining),
	)

	return order, remaining, nil
}

// ListMine returns the caller's orders, newest first.
func (s *OrderService) ListMine(ctx context.Context, caller *model.SessionUser) ([]model.Order, error) {
	if caller == nil {
		return nil, apperror.Unauthorized("authentication required")
	}
	return s.orders.ListByUser(ctx, caller.ID)
}

// Balance returns the caller's unspent hour balance.
func (s *OrderService) Balance(ctx context.Context, caller *model.SessionUser) (float64, error) {
	if caller == nil {
		return 0, apperror.Unauthorized("authentication required")
	}
	return s.orders.Balance(ctx, caller.ID)
}

// ListAll returns every order. Admin only.
func (s *OrderService) ListAll(ctx context.Context, caller *model.SessionUser) ([]model.Order, error) {
	if caller == nil {
		return nil, apperror.Unauthorized("authentication required")
	}
	if !caller.IsAdmin {
		return nil, apperror.Forbidden("admins only")
	}
	return s.orders.ListAll(ctx)
}

// AdminUpdateInput patches an order's fulfillment status and/or notes. Nil
// means "leave unchanged".
type AdminUpdateInput struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// AdminUpdate patches fulfillment status (restricted to the enumerated set)
// and free-text notes independently. Admin only.
func (s *OrderService) AdminUpdate(ctx context.Context, caller *model.SessionUser, id string, input AdminUpdateInput) (*model.Order, error) {
	if caller == nil {
		return nil, apperror.Unauthorized("authentication required")
	}
	if !caller.IsAdmin {
		return nil, apperror.Forbidden("admins only")
	}

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		status := model.OrderStatus(*input.Status)
		if !model.ValidOrderStatus(status) {
			return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown order status %q", *input.Status))
		}
		order.Status = status
	}
	if input.Notes != nil {
		order.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("updating order: %w", err)
	}

	s.logger.Info("order updated",
		slog.String("id", id),
		slog.String("status", string(order.Status)),
		slog.String("by", caller.ID),
	)
	return order, nil
}
