package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MRuhan17/Movie-Recommender/internal/service"
)

// AdminModelHandler exposes the state of the served similarity model.
type AdminModelHandler struct {
	svc *service.ModelService
}

func NewAdminModelHandler(svc *service.ModelService) *AdminModelHandler {
	return &AdminModelHandler{svc: svc}
}

// @Summary Similarity model summary
// @Description Artifact metadata, catalog coverage and sentiment table status.
// @Tags admin-model
// @Produce json
// @Success 200 {object} models.ModelSummary
// @Failure 500 {object} errorBody "internal error"
// @Router /admin/model [get]
func (h *AdminModelHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// @Summary Movies missing from the similarity model
// @Description Most-rated catalog movies the artifact does not cover; the next trainer run adds them.
// @Tags admin-model
// @Produce json
// @Param limit query int false "limit (default 50)"
// @Success 200 {object} models.ModelPending
// @Router /admin/model/pending [get]
func (h *AdminModelHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.svc.Pending(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

// MountAdminModelRoutes mounts the /admin/model routes.
func MountAdminModelRoutes(r chi.Router, h *AdminModelHandler) {
	r.Route("/admin/model", func(r chi.Router) {
		r.Get("/", h.GetSummary)
		r.Get("/pending", h.GetPending)
	})
}
