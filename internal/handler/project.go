package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sebcun/ysws-tracker/internal/service"
)

// ProjectHandler serves project CRUD and the review lifecycle endpoints.
type ProjectHandler struct {
	sessions *service.SessionService
	projects *service.ProjectService
}

func NewProjectHandler(sessions *service.SessionService, projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{sessions: sessions, projects: projects}
}

// HandleCreate starts a new Building project for the caller.
func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	var input service.CreateProjectInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.projects.Create(r.Context(), caller, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// HandleListMine lists the caller's projects with live hour recomputes for
// anything still Building.
func (h *ProjectHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	views, err := h.projects.ListMine(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": views})
}

// HandleListPublic lists projects across all users with personal fields
// stripped. No session required.
func (h *ProjectHandler) HandleListPublic(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	projects, err := h.projects.ListPublic(r.Context(), q.Get("status"), q.Get("slack_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *ProjectHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	project, err := h.projects.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	var input service.UpdateProjectInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.projects.Update(r.Context(), caller, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	if err := h.projects.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleSubmit moves the caller's Building project into review.
func (h *ProjectHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	project, err := h.projects.Submit(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// HandleSetStatus is the admin override for moving a project to any status.
func (h *ProjectHandler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.projects.SetStatus(r.Context(), caller, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// HandleApprove ships a project under review.
func (h *ProjectHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	project, err := h.projects.Approve(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// HandleReject sends a project under review back to Building with a reason
// for the owner.
func (h *ProjectHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r, h.sessions)
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.projects.Reject(r.Context(), caller, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}
