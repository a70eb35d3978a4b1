// Command trainer builds the item-item similarity artifact from the ratings
// collection, scores it on a held-out split and publishes it for the API.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/MRuhan17/Movie-Recommender/internal/config"
	"github.com/MRuhan17/Movie-Recommender/internal/db"
	"github.com/MRuhan17/Movie-Recommender/internal/evaluation"
	"github.com/MRuhan17/Movie-Recommender/internal/logging"
	"github.com/MRuhan17/Movie-Recommender/internal/models"
	"github.com/MRuhan17/Movie-Recommender/internal/repository"
	"github.com/MRuhan17/Movie-Recommender/internal/similarity"
)

func main() {
	reportPath := flag.String("report", "", "write the evaluation report as JSON to this file")
	skipEval := flag.Bool("skip-eval", false, "build and publish without the hold-out evaluation")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	log := logging.With("trainer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.InitMongo(ctx, cfg.Mongo); err != nil {
		log.Fatal().Err(err).Msg("mongo")
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Close(cctx)
	}()

	// ====== LOAD RATINGS ======
	start := time.Now()
	var ratings []similarity.Rating
	err = repository.NewRatingRepository().ForEach(ctx, func(r models.RatingDoc) error {
		ratings = append(ratings, similarity.Rating{MovieID: r.MovieID, UserID: r.UserID, Value: r.Rating})
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("read ratings")
	}
	log.Info().Int("ratings", len(ratings)).Dur("took", time.Since(start)).Msg("ratings loaded")

	opts := similarity.BuildOptions{Workers: cfg.Model.Workers}

	// ====== EVALUATE ======
	if !*skipEval && cfg.Model.HoldoutFraction > 0 {
		train, test := evaluation.HoldoutSplit(ratings, cfg.Model.HoldoutFraction, cfg.Model.Seed)
		evalModel, err := similarity.Build(ctx, train, opts)
		switch {
		case errors.Is(err, similarity.ErrInsufficientData):
			log.Warn().Msg("not enough training ratings to evaluate")
		case err != nil:
			log.Fatal().Err(err).Msg("build evaluation model")
		default:
			rep, err := evaluation.Evaluate(ctx, evalModel, train, test, evaluation.Options{
				LikeThreshold: cfg.Recommend.LikeThreshold,
				K:             cfg.Recommend.DefaultTopN,
				Log:           log,
			})
			if err != nil {
				log.Fatal().Err(err).Msg("evaluate")
			}
			log.Info().
				Float64("rmse", rep.RMSE).
				Float64("mae", rep.MAE).
				Float64("precision_at_k", rep.PrecisionAtK).
				Float64("recall_at_k", rep.RecallAtK).
				Float64("ndcg_at_k", rep.NDCGAtK).
				Float64("coverage", rep.Coverage).
				Int("k", rep.K).
				Msg("evaluation")
			if *reportPath != "" {
				if err := writeReport(*reportPath, rep); err != nil {
					log.Error().Err(err).Str("path", *reportPath).Msg("write report")
				}
			}
		}
	}

	// ====== BUILD & PUBLISH ======
	start = time.Now()
	model, err := similarity.Build(ctx, ratings, opts)
	if errors.Is(err, similarity.ErrInsufficientData) {
		log.Fatal().Err(err).Msg("nothing to publish; the API keeps serving its current model")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("build model")
	}
	if err := similarity.Save(cfg.Model.Path, model); err != nil {
		log.Fatal().Err(err).Msg("save model")
	}
	info := model.Info()
	log.Info().
		Str("path", cfg.Model.Path).
		Int("movies", model.Len()).
		Int("users", info.Users).
		Int("ratings", info.Ratings).
		Dur("took", time.Since(start)).
		Msg("model published")
}

func writeReport(path string, rep *evaluation.Report) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
