package handler

import (
	"net/http"

	"github.com/MRuhan17/Movie-Recommender/internal/models"
	"github.com/MRuhan17/Movie-Recommender/internal/service"
)

type RatingHandler struct {
	svc *service.RatingService
}

func NewRatingHandler(s *service.RatingService) *RatingHandler { return &RatingHandler{svc: s} }

// @Summary Create or update a rating
// @Description Also records the movie as watched and refreshes its rating stats.
// @Tags ratings
// @Accept json
// @Produce json
// @Param id path int true "userId"
// @Param body body models.RatingRequest true "rating"
// @Success 200 {object} models.RatingStats
// @Router /users/{id}/ratings [post]
func (h *RatingHandler) PostRating(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req models.RatingRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.svc.AddOrUpdate(r.Context(), userID, req.MovieID, req.Rating)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// @Summary List a user's ratings, newest first
// @Tags ratings
// @Produce json
// @Param id path int true "userId"
// @Param limit query int false "limit (default 100)"
// @Param offset query int false "offset"
// @Success 200 {array} models.RatingDoc
// @Router /users/{id}/ratings [get]
func (h *RatingHandler) GetRatings(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := queryInt(r, "limit", 100)
	if limit <= 0 {
		limit = 100
	}
	list, err := h.svc.GetByUser(r.Context(), userID, limit, max(queryInt(r, "offset", 0), 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}
