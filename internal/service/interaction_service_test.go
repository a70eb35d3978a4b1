package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/MRuhan17/Movie-Recommender/internal/recommend"
)

func newInteractionService() (*InteractionService, *memInteractions) {
	store := &memInteractions{}
	movies := newMemMovies(
		movie(1, "Heat", "Action", "Crime"),
		movie(2, "Up", "Animation", "Comedy"),
		movie(3, "Alien", "Horror", "Sci-Fi"),
	)
	return NewInteractionService(store, newMemRatings(), movies, recommend.DefaultConfig()), store
}

func TestRecordWatch(t *testing.T) {
	ctx := context.Background()
	svc, store := newInteractionService()

	r := 4.5
	doc, err := svc.RecordWatch(ctx, 7, 1, &r)
	if err != nil {
		t.Fatalf("RecordWatch() error = %v", err)
	}
	if doc.Title != "Heat" || !reflect.DeepEqual(doc.Genres, []string{"Action", "Crime"}) || *doc.Rating != 4.5 {
		t.Errorf("RecordWatch() = %+v", doc)
	}
	if len(store.history) != 1 || doc.CreatedAt.IsZero() {
		t.Errorf("history = %+v", store.history)
	}

	tests := []struct {
		name    string
		movieID int
		rating  *float64
		want    error
	}{
		{"unknown movie", 99, nil, ErrMovieNotFound},
		{"rating too high", 1, ptr(5.5), ErrInvalidRating},
		{"negative rating", 1, ptr(-1.0), ErrInvalidRating},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.RecordWatch(ctx, 7, tt.movieID, tt.rating); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLikeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newInteractionService()

	added, err := svc.Like(ctx, 7, 2)
	if err != nil || !added {
		t.Fatalf("first Like() = %v, %v", added, err)
	}
	added, err = svc.Like(ctx, 7, 2)
	if err != nil || added {
		t.Errorf("second Like() = %v, %v; want false, nil", added, err)
	}

	likes, _ := svc.ListLikes(ctx, 7, 0)
	if len(likes) != 1 {
		t.Fatalf("likes = %+v", likes)
	}

	removed, err := svc.Unlike(ctx, 7, 2)
	if err != nil || !removed {
		t.Errorf("Unlike() = %v, %v", removed, err)
	}
	removed, _ = svc.Unlike(ctx, 7, 2)
	if removed {
		t.Error("second Unlike() removed something")
	}
	if _, err := svc.Like(ctx, 7, 404); !errors.Is(err, ErrMovieNotFound) {
		t.Errorf("Like(unknown) err = %v", err)
	}
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newInteractionService()

	for _, id := range []int{1, 2, 3, 1} {
		if _, err := svc.RecordWatch(ctx, 7, id, nil); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.Like(ctx, 7, 1); err != nil {
		t.Fatal(err)
	}

	p, err := svc.Profile(ctx, 7)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if p.TotalWatched != 4 || p.TotalLiked != 1 {
		t.Errorf("totals = %d watched, %d liked", p.TotalWatched, p.TotalLiked)
	}
	// like(Heat)=2 per genre, plus Heat watched twice
	if p.GenreWeights["Action"] != 4 || p.GenreWeights["Horror"] != 1 {
		t.Errorf("weights = %v", p.GenreWeights)
	}
	if want := []string{"Action", "Crime"}; !reflect.DeepEqual(p.FavoriteGenres[:2], want) {
		t.Errorf("FavoriteGenres = %v", p.FavoriteGenres)
	}
	if len(p.RecentlyViewed) != 4 || p.RecentlyViewed[0].MovieID != 1 || p.RecentlyViewed[1].MovieID != 3 {
		t.Errorf("RecentlyViewed = %+v", p.RecentlyViewed)
	}
}

func TestInteractionReader(t *testing.T) {
	ctx := context.Background()
	store := &memInteractions{}
	ratings := newMemRatings()
	_ = ratings.UpsertRating(ctx, 7, 3, 4)
	svc := NewInteractionService(store, ratings, newMemMovies(movie(1, "Heat", "Action")), recommend.DefaultConfig())

	if _, err := svc.Like(ctx, 7, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordWatch(ctx, 7, 1, nil); err != nil {
		t.Fatal(err)
	}

	liked, err := svc.LikedMovies(ctx, 7)
	if err != nil || len(liked) != 1 || liked[0].Kind != recommend.KindLiked || liked[0].Title != "Heat" {
		t.Errorf("LikedMovies() = %+v, %v", liked, err)
	}
	watched, err := svc.WatchHistory(ctx, 7, 10)
	if err != nil || len(watched) != 1 || watched[0].Kind != recommend.KindWatched {
		t.Errorf("WatchHistory() = %+v, %v", watched, err)
	}
	rs, err := svc.Ratings(ctx, 7)
	if err != nil || len(rs) != 1 || rs[0] != (recommend.Rating{UserID: 7, MovieID: 3, Value: 4}) {
		t.Errorf("Ratings() = %+v, %v", rs, err)
	}
}

func ptr[T any](v T) *T { return &v }
