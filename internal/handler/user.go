package handler

import (
	"net/http"

	"github.com/sebcun/ysws-tracker/internal/service"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	sessions *service.SessionService
	users    *service.UserService
}

func NewUserHandler(sessions *service.SessionService, users *service.UserService) *UserHandler {
	return &UserHandler{sessions: sessions, users: users}
}

// HandleMe returns the session user with resolved role flags.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, caller)
}

// HandleUpdateMe changes the caller's display name.
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	var req struct {
		Nickname string `json:"nickname"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpdateNickname(r.Context(), caller, req.Nickname)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
