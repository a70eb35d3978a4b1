package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MRuhan17/Movie-Recommender/internal/models"
	"github.com/MRuhan17/Movie-Recommender/internal/recommend"
)

const (
	profileFavoriteGenres = 5
	profileRecentItems    = 5
)

// InteractionService records watches and likes and serves them back, both to
// the HTTP layer and to the engine as a recommend.InteractionReader.
type InteractionService struct {
	store   InteractionStore
	ratings RatingStore
	movies  MovieLookup
	cfg     recommend.Config
}

func NewInteractionService(store InteractionStore, ratings RatingStore, movies MovieLookup, cfg recommend.Config) *InteractionService {
	return &InteractionService{store: store, ratings: ratings, movies: movies, cfg: cfg}
}

var _ recommend.InteractionReader = (*InteractionService)(nil)

// RecordWatch appends a watch-history entry. The movie's title and genres are
// copied onto the entry.
func (s *InteractionService) RecordWatch(ctx context.Context, userID, movieID int, rating *float64) (*models.InteractionDoc, error) {
	if rating != nil && (*rating < 0 || *rating > 5) {
		return nil, ErrInvalidRating
	}
	doc, err := s.newDoc(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}
	doc.Rating = rating
	if err := s.store.AddWatched(ctx, *doc); err != nil {
		return nil, fmt.Errorf("record watch: %w", err)
	}
	return doc, nil
}

// Like records a like; liking twice is a no-op and returns added=false.
func (s *InteractionService) Like(ctx context.Context, userID, movieID int) (bool, error) {
	doc, err := s.newDoc(ctx, userID, movieID)
	if err != nil {
		return false, err
	}
	added, err := s.store.AddLike(ctx, *doc)
	if err != nil {
		return false, fmt.Errorf("record like: %w", err)
	}
	return added, nil
}

func (s *InteractionService) Unlike(ctx context.Context, userID, movieID int) (bool, error) {
	return s.store.RemoveLike(ctx, userID, movieID)
}

func (s *InteractionService) History(ctx context.Context, userID, limit int) ([]models.InteractionDoc, error) {
	return s.store.WatchHistory(ctx, userID, limit)
}

func (s *InteractionService) ListLikes(ctx context.Context, userID, limit int) ([]models.InteractionDoc, error) {
	return s.store.Likes(ctx, userID, limit)
}

// Profile summarises a user's taste from likes and recent history, using the
// same genre weighting the engine ranks with.
func (s *InteractionService) Profile(ctx context.Context, userID int) (*models.UserProfile, error) {
	watchedTotal, err := s.store.CountWatched(ctx, userID)
	if err != nil {
		return nil, err
	}
	likedTotal, err := s.store.CountLikes(ctx, userID)
	if err != nil {
		return nil, err
	}
	likes, err := s.store.Likes(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	history, err := s.store.WatchHistory(ctx, userID, s.cfg.ProfileHistoryLimit)
	if err != nil {
		return nil, err
	}

	p := recommend.BuildProfile(toInteractions(likes, recommend.KindLiked), toInteractions(history, recommend.KindWatched))
	return &models.UserProfile{
		UserID:         userID,
		TotalWatched:   watchedTotal,
		TotalLiked:     likedTotal,
		FavoriteGenres: append([]string{}, p.TopGenres(profileFavoriteGenres)...),
		GenreWeights:   p.Weights,
		RecentlyLiked:  firstN(likes, profileRecentItems),
		RecentlyViewed: firstN(history, profileRecentItems),
	}, nil
}

// ====== recommend.InteractionReader ======

func (s *InteractionService) LikedMovies(ctx context.Context, userID int) ([]recommend.Interaction, error) {
	docs, err := s.store.Likes(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return toInteractions(docs, recommend.KindLiked), nil
}

func (s *InteractionService) WatchHistory(ctx context.Context, userID, limit int) ([]recommend.Interaction, error) {
	docs, err := s.store.WatchHistory(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return toInteractions(docs, recommend.KindWatched), nil
}

func (s *InteractionService) Ratings(ctx context.Context, userID int) ([]recommend.Rating, error) {
	docs, err := s.ratings.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]recommend.Rating, len(docs))
	for i, d := range docs {
		out[i] = recommend.Rating{UserID: d.UserID, MovieID: d.MovieID, Value: d.Rating}
	}
	return out, nil
}

func (s *InteractionService) newDoc(ctx context.Context, userID, movieID int) (*models.InteractionDoc, error) {
	movie, err := s.movies.Get(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, fmt.Errorf("%w: %d", ErrMovieNotFound, movieID)
	}
	return &models.InteractionDoc{
		UserID:    userID,
		MovieID:   movieID,
		Title:     movie.Title,
		Genres:    movie.Genres,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func toInteractions(docs []models.InteractionDoc, kind recommend.InteractionKind) []recommend.Interaction {
	out := make([]recommend.Interaction, len(docs))
	for i, d := range docs {
		out[i] = recommend.Interaction{
			UserID:    d.UserID,
			MovieID:   d.MovieID,
			Kind:      kind,
			Title:     d.Title,
			Genres:    d.Genres,
			Rating:    d.Rating,
			Timestamp: d.CreatedAt,
		}
	}
	return out
}

func firstN[T any](xs []T, n int) []T {
	if len(xs) > n {
		xs = xs[:n]
	}
	return append([]T{}, xs...)
}
