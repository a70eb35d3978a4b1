package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Movies       *MovieHandler
	Ratings      *RatingHandler
	Interactions *InteractionHandler
	Recommend    *RecommendHandler
	AdminModel   *AdminModelHandler
	ModelLoaded  bool
}

type RouterOptions struct {
	CORSOrigins []string
	// RateLimitPerMinute applies per client IP to /users routes; 0 disables it.
	RateLimitPerMinute int
}

func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	r.Get("/health", Health(h.ModelLoaded))
	r.Handle("/metrics", promhttp.Handler())

	// movies
	r.Get("/movies/search", h.Movies.Search)
	r.Get("/movies/top", h.Movies.Top)
	r.Get("/movies/trending", h.Movies.Trending)
	r.Get("/movies/{id}", h.Movies.GetMovie)
	r.Get("/movies/{id}/similar", h.Recommend.GetSimilar)

	// per-user
	r.Route("/users/{id}", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimitPerMinute, time.Minute))
		}

		r.Get("/ratings", h.Ratings.GetRatings)
		r.Post("/ratings", h.Ratings.PostRating)

		r.Get("/history", h.Interactions.GetHistory)
		r.Post("/history", h.Interactions.PostHistory)
		r.Get("/likes", h.Interactions.GetLikes)
		r.Post("/likes", h.Interactions.PostLike)
		r.Delete("/likes/{movieId}", h.Interactions.DeleteLike)
		r.Get("/profile", h.Interactions.GetProfile)

		r.Get("/recommendations", h.Recommend.GetRecommendations)
		r.Post("/recommendations", h.Recommend.PostRecommendations)
		r.Get("/ws/recommendations", h.Recommend.GetRecommendationsWS)
		r.Get("/explain/{movieId}", h.Recommend.GetExplanation)
		r.Get("/predict/{movieId}", h.Recommend.GetPrediction)
	})

	MountAdminModelRoutes(r, h.AdminModel)
	return r
}
