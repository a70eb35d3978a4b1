package handler

import (
	"net/http"

	"github.com/MRuhan17/Movie-Recommender/internal/models"
	"github.com/MRuhan17/Movie-Recommender/internal/service"
)

type InteractionHandler struct {
	svc *service.InteractionService
}

func NewInteractionHandler(s *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{svc: s}
}

// @Summary Add a watch-history entry
// @Tags interactions
// @Accept json
// @Produce json
// @Param id path int true "userId"
// @Param body body models.WatchRequest true "watched movie"
// @Success 201 {object} models.InteractionDoc
// @Router /users/{id}/history [post]
func (h *InteractionHandler) PostHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req models.WatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	doc, err := h.svc.RecordWatch(r.Context(), userID, req.MovieID, req.Rating)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// @Summary Watch history, newest first
// @Tags interactions
// @Produce json
// @Param id path int true "userId"
// @Param limit query int false "limit (default 50)"
// @Success 200 {array} models.InteractionDoc
// @Router /users/{id}/history [get]
func (h *InteractionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := h.svc.History(r.Context(), userID, queryInt(r, "limit", 50))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// @Summary Like a movie (idempotent)
// @Tags interactions
// @Accept json
// @Produce json
// @Param id path int true "userId"
// @Param body body models.LikeRequest true "liked movie"
// @Success 201 {object} map[string]bool "newly liked"
// @Success 200 {object} map[string]bool "already liked"
// @Router /users/{id}/likes [post]
func (h *InteractionHandler) PostLike(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req models.LikeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	added, err := h.svc.Like(r.Context(), userID, req.MovieID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]bool{"added": added})
}

// @Summary Remove a like
// @Tags interactions
// @Param id path int true "userId"
// @Param movieId path int true "movieId"
// @Success 204
// @Router /users/{id}/likes/{movieId} [delete]
func (h *InteractionHandler) DeleteLike(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	movieID, err := pathID(r, "movieId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	removed, err := h.svc.Unlike(r.Context(), userID, movieID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "like not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// @Summary Liked movies, newest first
// @Tags interactions
// @Produce json
// @Param id path int true "userId"
// @Success 200 {array} models.InteractionDoc
// @Router /users/{id}/likes [get]
func (h *InteractionHandler) GetLikes(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := h.svc.ListLikes(r.Context(), userID, queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// @Summary Taste profile summary
// @Tags interactions
// @Produce json
// @Param id path int true "userId"
// @Success 200 {object} models.UserProfile
// @Router /users/{id}/profile [get]
func (h *InteractionHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
