// internal/service/movie_service.go
package service

import (
	"context"

	"github.com/MRuhan17/Movie-Recommender/internal/catalog"
	"github.com/MRuhan17/Movie-Recommender/internal/models"
)

type MovieService struct {
	catalog *catalog.Catalog
}

func NewMovieService(c *catalog.Catalog) *MovieService {
	return &MovieService{catalog: c}
}

// GetMovie returns the movie enriched with TMDB data when available.
func (s *MovieService) GetMovie(ctx context.Context, id int) (*models.MovieDoc, error) {
	return s.catalog.Get(ctx, id)
}

func (s *MovieService) Search(
	ctx context.Context,
	q, genre string,
	yearFrom, yearTo, limit, offset int,
) ([]models.MovieDoc, error) {
	return s.catalog.SearchDocs(ctx, q, genre, yearFrom, yearTo, limit, offset)
}

func (s *MovieService) Trending(ctx context.Context, limit int) ([]models.MovieDoc, error) {
	return s.catalog.TrendingDocs(ctx, limit)
}

func (s *MovieService) Top(ctx context.Context, metric string, limit int) ([]models.MovieDoc, error) {
	return s.catalog.TopDocs(ctx, metric, limit)
}
