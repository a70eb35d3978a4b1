package service

import (
	"context"
	"errors"

	"github.com/MRuhan17/Movie-Recommender/internal/models"
)

var (
	// ErrMovieNotFound means the movie id is not in the catalog.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrInvalidRating means a rating outside 0-5.
	ErrInvalidRating = errors.New("rating must be between 0 and 5")
)

// The stores below are implemented by the Mongo repositories.

type RatingStore interface {
	GetOne(ctx context.Context, userID, movieID int) (*models.RatingDoc, error)
	UpsertRating(ctx context.Context, userID, movieID int, rating float64) error
	GetByUser(ctx context.Context, userID, limit, offset int) ([]models.RatingDoc, error)
	GetAllByUser(ctx context.Context, userID int) ([]models.RatingDoc, error)
}

type InteractionStore interface {
	AddWatched(ctx context.Context, doc models.InteractionDoc) error
	AddLike(ctx context.Context, doc models.InteractionDoc) (bool, error)
	RemoveLike(ctx context.Context, userID, movieID int) (bool, error)
	WatchHistory(ctx context.Context, userID, limit int) ([]models.InteractionDoc, error)
	Likes(ctx context.Context, userID, limit int) ([]models.InteractionDoc, error)
	CountWatched(ctx context.Context, userID int) (int64, error)
	CountLikes(ctx context.Context, userID int) (int64, error)
}

// MovieLookup resolves catalog movies; *catalog.Catalog implements it.
type MovieLookup interface {
	Get(ctx context.Context, movieID int) (*models.MovieDoc, error)
}

type RatingStatsStore interface {
	GetByID(ctx context.Context, movieID int) (*models.MovieDoc, error)
	SetRatingStats(ctx context.Context, movieID int, stats models.RatingStats) error
}
