package service

import (
	"context"
	"time"

	"github.com/MRuhan17/Movie-Recommender/internal/models"
	"github.com/MRuhan17/Movie-Recommender/internal/recommend"
	"github.com/MRuhan17/Movie-Recommender/internal/similarity"
)

// ModelCatalog is the catalog view the model summary needs.
type ModelCatalog interface {
	Count(ctx context.Context) (int64, error)
	CountNotIn(ctx context.Context, ids []int) (int64, error)
	MostRatedNotIn(ctx context.Context, ids []int, limit int) ([]models.MovieDoc, error)
}

// ModelService reports on the similarity artifact being served.
type ModelService struct {
	model     *similarity.Model
	path      string
	movies    ModelCatalog
	sentiment *recommend.SentimentAdjuster
}

// NewModelService builds the service. model may be nil when no artifact was
// loaded at startup.
func NewModelService(model *similarity.Model, path string, movies ModelCatalog, sentiment *recommend.SentimentAdjuster) *ModelService {
	return &ModelService{
		model:     model,
		path:      path,
		movies:    movies,
		sentiment: sentiment,
	}
}

// ---------------------- SUMMARY / PENDING ----------------------

func (s *ModelService) Summary(ctx context.Context) (*models.ModelSummary, error) {
	total, err := s.movies.Count(ctx)
	if err != nil {
		return nil, err
	}

	sum := &models.ModelSummary{
		ArtifactPath:     s.path,
		CatalogMovies:    total,
		MoviesNotInModel: total,
		SentimentLoaded:  s.sentiment.HasData(),
		SentimentWeight:  s.sentiment.Weight(),
	}
	if s.model == nil {
		return sum, nil
	}

	info := s.model.Info()
	sum.Loaded = true
	sum.Movies = s.model.Len()
	sum.Ratings = info.Ratings
	sum.Users = info.Users
	if !info.BuiltAt.IsZero() {
		builtAt := info.BuiltAt.UTC().Truncate(time.Second)
		sum.BuiltAt = &builtAt
	}

	missing, err := s.movies.CountNotIn(ctx, s.model.MovieIDs())
	if err != nil {
		return nil, err
	}
	sum.MoviesNotInModel = missing
	return sum, nil
}

// Pending lists up to limit of the most-rated catalog movies the artifact
// does not cover.
func (s *ModelService) Pending(ctx context.Context, limit int) (*models.ModelPending, error) {
	if limit <= 0 {
		limit = 50
	}
	var ids []int
	if s.model != nil {
		ids = s.model.MovieIDs()
	}
	docs, err := s.movies.MostRatedNotIn(ctx, ids, limit)
	if err != nil {
		return nil, err
	}

	out := &models.ModelPending{Movies: make([]models.PendingMovie, 0, len(docs))}
	for _, d := range docs {
		pm := models.PendingMovie{MovieID: d.MovieID, Title: d.Title}
		if d.RatingStats != nil {
			pm.RatingsCount = d.RatingStats.Count
		}
		out.Movies = append(out.Movies, pm)
	}
	return out, nil
}
