package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/MRuhan17/Movie-Recommender/internal/similarity"
)

var errBoom = errors.New("boom")

type fakeInteractions struct {
	liked   map[int][]Interaction
	watched map[int][]Interaction
	ratings map[int][]Rating

	likedErr, watchedErr, ratingsErr error
}

func (f *fakeInteractions) LikedMovies(_ context.Context, userID int) ([]Interaction, error) {
	if f.likedErr != nil {
		return nil, f.likedErr
	}
	return f.liked[userID], nil
}

func (f *fakeInteractions) WatchHistory(_ context.Context, userID, limit int) ([]Interaction, error) {
	if f.watchedErr != nil {
		return nil, f.watchedErr
	}
	w := f.watched[userID]
	if limit > 0 && len(w) > limit {
		w = w[:limit]
	}
	return w, nil
}

func (f *fakeInteractions) Ratings(_ context.Context, userID int) ([]Rating, error) {
	if f.ratingsErr != nil {
		return nil, f.ratingsErr
	}
	return f.ratings[userID], nil
}

type fakeMetadata struct {
	mu       sync.Mutex
	movies   map[int]CandidateMovie
	failing  map[int]bool
	search   []CandidateMovie
	trending []CandidateMovie

	searchErr, trendingErr error
	lookups                int
}

func (f *fakeMetadata) Movie(_ context.Context, id int) (*CandidateMovie, error) {
	f.mu.Lock()
	f.lookups++
	f.mu.Unlock()
	if f.failing[id] {
		return nil, errBoom
	}
	m, ok := f.movies[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeMetadata) Search(_ context.Context, _ string, limit int) ([]CandidateMovie, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return truncate(f.search, limit), nil
}

func (f *fakeMetadata) Trending(_ context.Context, limit int) ([]CandidateMovie, error) {
	if f.trendingErr != nil {
		return nil, f.trendingErr
	}
	return truncate(f.trending, limit), nil
}

func truncate(ms []CandidateMovie, n int) []CandidateMovie {
	if n >= 0 && len(ms) > n {
		return ms[:n]
	}
	return ms
}

type fakePopularity struct {
	ids []int
	err error
}

func (f *fakePopularity) PopularMovieIDs(_ context.Context, n int) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.ids) > n {
		return f.ids[:n], nil
	}
	return f.ids, nil
}

func ptr[T any](v T) *T { return &v }

func likeOf(movieID int, title string, genres ...string) Interaction {
	return Interaction{MovieID: movieID, Kind: KindLiked, Title: title, Genres: genres}
}

func watchOf(movieID int, title string, genres ...string) Interaction {
	return Interaction{MovieID: movieID, Kind: KindWatched, Title: title, Genres: genres}
}

func movieOf(id int, title string, genres ...string) CandidateMovie {
	return CandidateMovie{ID: id, Title: title, Genres: genres}
}

// abcModel: sim(A,B)=0.8, sim(A,C)=0.1, sim(B,C)=0.2 with A=1, B=2, C=3.
func abcModel(t *testing.T) *similarity.Model {
	t.Helper()
	m, err := similarity.NewModel([]int{1, 2, 3}, [][]float64{
		{1, 0.8, 0.1},
		{0.8, 1, 0.2},
		{0.1, 0.2, 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func nopLogger() zerolog.Logger { return zerolog.Nop() }

func idsOf(items []ScoredRecommendation) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
