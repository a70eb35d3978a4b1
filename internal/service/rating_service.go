package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MRuhan17/Movie-Recommender/internal/models"
)

type RatingService struct {
	ratings      RatingStore
	movies       RatingStatsStore
	interactions InteractionStore
}

func NewRatingService(r RatingStore, m RatingStatsStore, i InteractionStore) *RatingService {
	return &RatingService{
		ratings:      r,
		movies:       m,
		interactions: i,
	}
}

// AddOrUpdate stores the user's rating, keeps the movie's ratingStats in step
// and appends a watched entry carrying the rating.
func (s *RatingService) AddOrUpdate(ctx context.Context, userID, movieID int, rating float64) (*models.RatingStats, error) {
	if rating < 0 || rating > 5 {
		return nil, ErrInvalidRating
	}

	movie, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, fmt.Errorf("%w: %d", ErrMovieNotFound, movieID)
	}

	// 1) was there a previous rating?
	prev, err := s.ratings.GetOne(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}

	// 2) upsert (timestamp stored as epoch)
	if err := s.ratings.UpsertRating(ctx, userID, movieID, rating); err != nil {
		return nil, err
	}

	// 3) movie stats
	rs := models.RatingStats{}
	if movie.RatingStats != nil {
		rs = *movie.RatingStats
	}
	rs = applyRating(rs, prev, rating)
	rs.LastRatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.movies.SetRatingStats(ctx, movieID, rs); err != nil {
		return nil, err
	}

	// 4) rating a movie implies having watched it
	r := rating
	err = s.interactions.AddWatched(ctx, models.InteractionDoc{
		UserID:    userID,
		MovieID:   movieID,
		Title:     movie.Title,
		Genres:    movie.Genres,
		Rating:    &r,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("record watch for rating: %w", err)
	}
	return &rs, nil
}

// applyRating folds a new or changed rating into running stats.
func applyRating(rs models.RatingStats, prev *models.RatingDoc, rating float64) models.RatingStats {
	if prev == nil {
		total := rs.Average*float64(rs.Count) + rating
		rs.Count++
		rs.Average = total / float64(rs.Count)
		return rs
	}
	if rs.Count == 0 {
		// stats were never initialised for an existing rating
		rs.Count = 1
		rs.Average = rating
		return rs
	}
	total := rs.Average*float64(rs.Count) - prev.Rating + rating
	rs.Average = total / float64(rs.Count)
	return rs
}

func (s *RatingService) GetByUser(ctx context.Context, userID, limit, offset int) ([]models.RatingDoc, error) {
	return s.ratings.GetByUser(ctx, userID, limit, offset)
}
