package model

import "time"

// OrderStatus is the fulfillment state of a marketplace order. Admin patches
// are restricted to this set.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderFulfilled OrderStatus = "Fulfilled"
	OrderCancelled OrderStatus = "Cancelled"
)

// ValidOrderStatus reports whether s is one of the allowed fulfillment states.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderFulfilled, OrderCancelled:
		return true
	}
	return false
}

// Order is a reward redemption. TotalCost is computed (reward cost × quantity)
// and snapshotted at creation time so later reward edits don't rewrite
// history. The hour debit backing an order happens in the same transaction
// that inserts it.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"userId"`
	RewardID   string      `json:"rewardId"`
	RewardName string      `json:"rewardName"`
	Quantity   int         `json:"quantity"`
	Contact    string      `json:"contact"` // Shipping / contact details
	TotalCost  float64     `json:"totalCost"`
	Status     OrderStatus `json:"status"`
	Notes      string      `json:"notes"`
	CreatedAt  time.Time   `json:"createdAt"`
}
