package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MRuhan17/Movie-Recommender/internal/cache"
	"github.com/MRuhan17/Movie-Recommender/internal/catalog"
	"github.com/MRuhan17/Movie-Recommender/internal/config"
	"github.com/MRuhan17/Movie-Recommender/internal/db"
	"github.com/MRuhan17/Movie-Recommender/internal/handler"
	"github.com/MRuhan17/Movie-Recommender/internal/logging"
	"github.com/MRuhan17/Movie-Recommender/internal/recommend"
	"github.com/MRuhan17/Movie-Recommender/internal/repository"
	"github.com/MRuhan17/Movie-Recommender/internal/service"
	"github.com/MRuhan17/Movie-Recommender/internal/similarity"
	"github.com/MRuhan17/Movie-Recommender/internal/tmdb"
)

// @title Movie Recommender API
// @version 1.0
// @description Hybrid movie recommendations (item-based CF, content, quality and sentiment) with explanations.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logging.With("api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// mongo + redis
	if err := db.InitMongo(ctx, cfg.Mongo); err != nil {
		log.Fatal().Err(err).Msg("mongo")
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("ensure indexes")
	}
	if err := cache.InitRedis(ctx, cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, TMDB lookups will not be cached")
	}

	// model + sentiment
	model, err := similarity.Load(cfg.Model.Path)
	switch {
	case errors.Is(err, similarity.ErrNoArtifact):
		log.Warn().Str("path", cfg.Model.Path).Msg("no similarity model, serving popularity and content only")
	case err != nil:
		log.Warn().Err(err).Str("path", cfg.Model.Path).Msg("similarity model unreadable, serving without it")
		model = nil
	default:
		log.Info().Int("movies", model.Len()).Time("built_at", model.Info().BuiltAt).Msg("similarity model loaded")
	}

	var scores map[int]float64
	if cfg.Recommend.SentimentCSV != "" {
		scores, err = recommend.LoadSentimentCSV(cfg.Recommend.SentimentCSV)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.Recommend.SentimentCSV).Msg("sentiment scores unavailable, using neutral")
		}
	}
	sentiment := recommend.NewSentimentAdjuster(cfg.Recommend.SentimentWeight, scores)
	recCfg := engineConfig(cfg.Recommend)

	// repos
	movieRepo := repository.NewMovieRepository()
	ratingRepo := repository.NewRatingRepository()
	interactionRepo := repository.NewInteractionRepository()

	// services
	tmdbClient := tmdb.NewClient(cfg.TMDB, cfg.Redis.TTL, logging.With("tmdb"))
	if !tmdbClient.Enabled() {
		log.Warn().Msg("TMDB api key not set, metadata limited to the local catalog")
	}
	movies := catalog.New(movieRepo, tmdbClient, logging.With("catalog"))

	interactionSvc := service.NewInteractionService(interactionRepo, ratingRepo, movies, recCfg)
	ratingSvc := service.NewRatingService(ratingRepo, movieRepo, interactionRepo)
	movieSvc := service.NewMovieService(movies)

	engine := recommend.NewEngine(recommend.Deps{
		Model:        model,
		Interactions: interactionSvc,
		Metadata:     movies,
		Popularity:   movies,
		Sentiment:    sentiment,
	}, recCfg, logging.With("engine"))
	recSvc := service.NewRecommendService(engine, movies, logging.With("recommend"))
	modelSvc := service.NewModelService(model, cfg.Model.Path, movieRepo, sentiment)

	// handlers
	router := handler.NewRouter(handler.Handlers{
		Movies:       handler.NewMovieHandler(movieSvc),
		Ratings:      handler.NewRatingHandler(ratingSvc),
		Interactions: handler.NewInteractionHandler(interactionSvc),
		Recommend:    handler.NewRecommendHandler(recSvc),
		AdminModel:   handler.NewAdminModelHandler(modelSvc),
		ModelLoaded:  model != nil,
	}, handler.RouterOptions{
		CORSOrigins:        cfg.HTTP.CORSOrigins,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := cache.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	if err := db.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("mongo close")
	}
}

func engineConfig(c config.RecommendConfig) recommend.Config {
	return recommend.Config{
		LikeThreshold:           c.LikeThreshold,
		ProfileHistoryLimit:     c.ProfileHistoryLimit,
		InteractionHistoryLimit: c.InteractionHistoryLimit,
		DefaultTopN:             c.DefaultTopN,
		MaxTopN:                 c.MaxTopN,
		CandidatePoolSize:       c.CandidatePoolSize,
		MetadataConcurrency:     c.MetadataConcurrency,
	}
}
