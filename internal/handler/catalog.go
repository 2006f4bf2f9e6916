package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sebcun/ysws-tracker/internal/service"
)

// CatalogHandler serves the public FAQ and reward catalogs plus the admin
// endpoints that maintain them.
type CatalogHandler struct {
	sessions *service.SessionService
	catalog  *service.CatalogService
}

func NewCatalogHandler(sessions *service.SessionService, catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{sessions: sessions, catalog: catalog}
}

func (h *CatalogHandler) HandleListFAQs(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.catalog.ListFAQs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"faqs": faqs})
}

func (h *CatalogHandler) HandleListRewards(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.catalog.ListRewards(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rewards": rewards})
}

func (h *CatalogHandler) HandleCreateFAQ(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	var req struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	faq, err := h.catalog.CreateFAQ(r.Context(), caller, req.Question, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, faq)
}

func (h *CatalogHandler) HandleDeleteFAQ(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	if err := h.catalog.DeleteFAQ(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *CatalogHandler) HandleCreateReward(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Cost        float64 `json:"cost"`
		ImageURL    string  `json:"imageUrl"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reward, err := h.catalog.CreateReward(r.Context(), caller, req.Name, req.Description, req.Cost, req.ImageURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reward)
}

func (h *CatalogHandler) HandleDeleteReward(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	if err := h.catalog.DeleteReward(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
