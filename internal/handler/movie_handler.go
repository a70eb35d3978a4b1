// internal/handler/movie_handler.go
package handler

import (
	"net/http"

	"github.com/MRuhan17/Movie-Recommender/internal/repository"
	"github.com/MRuhan17/Movie-Recommender/internal/service"
)

type MovieHandler struct {
	svc *service.MovieService
}

func NewMovieHandler(s *service.MovieService) *MovieHandler { return &MovieHandler{svc: s} }

// @Summary Get movie (enriched with TMDB data when available)
// @Tags movies
// @Produce json
// @Param id path int true "movieId"
// @Success 200 {object} models.MovieDoc
// @Router /movies/{id} [get]
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.svc.GetMovie(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// @Summary Search / list movies (paginated)
// @Tags movies
// @Produce json
// @Param q query string false "title search"
// @Param genre query string false "genre filter"
// @Param year_from query int false "from year"
// @Param year_to query int false "to year"
// @Param limit query int false "limit (default 20, max 100)"
// @Param offset query int false "offset"
// @Success 200 {array} models.MovieDoc
// @Router /movies/search [get]
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	genre := r.URL.Query().Get("genre")

	yearFrom := queryInt(r, "year_from", 0)
	yearTo := queryInt(r, "year_to", 0)
	limit := clampLimit(queryInt(r, "limit", 20))
	offset := max(queryInt(r, "offset", 0), 0)

	movies, err := h.svc.Search(r.Context(), q, genre, yearFrom, yearTo, limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(movies))
}

// @Summary Top movies (most rated, best rated or TMDB popularity)
// @Tags movies
// @Produce json
// @Param metric query string false "popular|rating|trending (default: popular)"
// @Param limit query int false "limit (default: 20)"
// @Success 200 {array} models.MovieDoc
// @Router /movies/top [get]
func (h *MovieHandler) Top(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	switch metric {
	case "":
		metric = repository.TopByCount
	case repository.TopByCount, repository.TopByRating, repository.TopByPopularity:
	default:
		writeError(w, http.StatusBadRequest, "metric must be popular, rating or trending")
		return
	}
	limit := clampLimit(queryInt(r, "limit", 20))

	movies, err := h.svc.Top(r.Context(), metric, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(movies))
}

// @Summary Trending movies this week (TMDB, falls back to local popularity)
// @Tags movies
// @Produce json
// @Param limit query int false "limit (default: 20)"
// @Success 200 {array} models.MovieDoc
// @Router /movies/trending [get]
func (h *MovieHandler) Trending(w http.ResponseWriter, r *http.Request) {
	limit := clampLimit(queryInt(r, "limit", 20))
	movies, err := h.svc.Trending(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(movies))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return min(limit, 100)
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
