package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sebcun/ysws-tracker/internal/model"
	"github.com/sebcun/ysws-tracker/internal/service"
)

// OrderHandler serves the marketplace order endpoints.
type OrderHandler struct {
	sessions *service.SessionService
	orders   *service.OrderService
}

func NewOrderHandler(sessions *service.SessionService, orders *service.OrderService) *OrderHandler {
	return &OrderHandler{sessions: sessions, orders: orders}
}

// HandleCreate places an order, debiting the caller's hour balance
// atomically. The response carries the balance left after the debit.
func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	var req struct {
		RewardID string `json:"rewardId"`
		Quantity int    `json:"quantity"`
		Contact  string `json:"contact"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, remaining, err := h.orders.Create(r.Context(), caller, req.RewardID, req.Quantity, req.Contact)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Success bool         `json:"success"`
		Order   *model.Order `json:"order"`
		Balance float64      `json:"balance"`
	}{Success: true, Order: order, Balance: remaining})
}

// HandleListMine returns the caller's orders along with their current hour
// balance.
func (h *OrderHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	orders, err := h.orders.ListMine(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	balance, err := h.orders.Balance(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Orders  []model.Order `json:"orders"`
		Balance float64       `json:"balance"`
	}{Orders: orders, Balance: balance})
}

// HandleListAll is the admin view across every user's orders.
func (h *OrderHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	orders, err := h.orders.ListAll(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// HandleAdminUpdate patches an order's status and fulfilment notes.
func (h *OrderHandler) HandleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	var input service.AdminUpdateInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	order, err := h.orders.AdminUpdate(r.Context(), caller, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
