package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRuhan17/Movie-Recommender/internal/logging"
	"github.com/MRuhan17/Movie-Recommender/internal/recommend"
	"github.com/MRuhan17/Movie-Recommender/internal/service"
)

const wsWriteTimeout = 10 * time.Second

type RecommendHandler struct {
	svc *service.RecommendService
}

func NewRecommendHandler(s *service.RecommendService) *RecommendHandler {
	return &RecommendHandler{svc: s}
}

// RecommendBody is the body of POST /users/{id}/recommendations.
type RecommendBody struct {
	Query      string                     `json:"query" validate:"max=200"`
	TopN       int                        `json:"topN" validate:"gte=0"`
	Candidates []recommend.CandidateMovie `json:"candidates" validate:"max=500,dive"`
}

// PredictionResponse is returned by GET /users/{id}/predict/{movieId}.
type PredictionResponse struct {
	UserID          int     `json:"userId"`
	MovieID         int     `json:"movieId"`
	PredictedRating float64 `json:"predictedRating"`
}

// @Summary Recommendations for a user
// @Tags recommend
// @Produce json
// @Param id path int true "userId"
// @Param k query int false "number of recommendations (default 10, max 50)"
// @Param q query string false "rank catalog search results for this query"
// @Success 200 {object} recommend.Response
// @Router /users/{id}/recommendations [get]
func (h *RecommendHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.Recommend(r.Context(), recommend.Request{
		UserID: userID,
		Query:  r.URL.Query().Get("q"),
		TopN:   queryInt(r, "k", 0),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary Rank caller-supplied candidates or a query for a user
// @Tags recommend
// @Accept json
// @Produce json
// @Param id path int true "userId"
// @Param body body RecommendBody true "candidates, query and topN"
// @Success 200 {object} recommend.Response
// @Router /users/{id}/recommendations [post]
func (h *RecommendHandler) PostRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body RecommendBody
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := h.svc.Recommend(r.Context(), recommend.Request{
		UserID:     userID,
		Query:      body.Query,
		Candidates: body.Candidates,
		TopN:       body.TopN,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// @Summary Explain why a movie is recommended to a user
// @Tags recommend
// @Produce json
// @Param id path int true "userId"
// @Param movieId path int true "movieId"
// @Success 200 {object} recommend.Explanation
// @Router /users/{id}/explain/{movieId} [get]
func (h *RecommendHandler) GetExplanation(w http.ResponseWriter, r *http.Request) {
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
	exp, err := h.svc.Explain(r.Context(), userID, movieID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

// @Summary Predict a user's rating of a movie
// @Tags recommend
// @Produce json
// @Param id path int true "userId"
// @Param movieId path int true "movieId"
// @Success 200 {object} PredictionResponse
// @Failure 503 {object} errorBody "no similarity model loaded"
// @Router /users/{id}/predict/{movieId} [get]
func (h *RecommendHandler) GetPrediction(w http.ResponseWriter, r *http.Request) {
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
	pred, err := h.svc.PredictRating(r.Context(), userID, movieID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, PredictionResponse{UserID: userID, MovieID: movieID, PredictedRating: pred})
}

// @Summary Movies similar to a movie
// @Tags recommend
// @Produce json
// @Param id path int true "movieId"
// @Param k query int false "number of movies (default 10, max 50)"
// @Success 200 {array} recommend.CandidateMovie
// @Router /movies/{id}/similar [get]
func (h *RecommendHandler) GetSimilar(w http.ResponseWriter, r *http.Request) {
	movieID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := h.svc.Similar(r.Context(), movieID, queryInt(r, "k", 0))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary Streamed recommendations (WebSocket)
// @Description Sends the ranked list, then one explanation per item, then a done event.
// @Tags recommend
// @Produce json
// @Param id path int true "userId"
// @Param k query int false "number of recommendations (default 10, max 50)"
// @Param q query string false "rank catalog search results for this query"
// @Success 101 {object} service.StreamEvent
// @Router /users/{id}/ws/recommendations [get]
func (h *RecommendHandler) GetRecommendationsWS(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		return
	}
	defer conn.Close()

	// a closed client cancels the stream
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	req := recommend.Request{
		UserID: userID,
		Query:  r.URL.Query().Get("q"),
		TopN:   queryInt(r, "k", 0),
	}
	err = h.svc.Stream(ctx, req, func(ev service.StreamEvent) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(ev)
	})
	if err != nil {
		logging.Warn().Err(err).Int("user_id", userID).Msg("recommendation stream ended early")
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		_ = conn.WriteJSON(service.StreamEvent{Type: service.EventError, Error: err.Error()})
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
