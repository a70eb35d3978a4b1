package catalog

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/MRuhan17/Movie-Recommender/internal/models"
	"github.com/MRuhan17/Movie-Recommender/internal/tmdb"
)

type fakeStore struct {
	mu       sync.Mutex
	movies   map[int]*models.MovieDoc
	top      []models.MovieDoc
	popular  []int
	saved    map[int]*models.ExternalData
	searchFn func(q string) []models.MovieDoc
}

func newFakeStore(docs ...models.MovieDoc) *fakeStore {
	s := &fakeStore{movies: map[int]*models.MovieDoc{}, saved: map[int]*models.ExternalData{}}
	for i := range docs {
		d := docs[i]
		s.movies[d.MovieID] = &d
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id int) (*models.MovieDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.movies[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (s *fakeStore) GetByTMDBIDs(_ context.Context, ids []string) (map[string]models.MovieDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]models.MovieDoc{}
	for _, id := range ids {
		for _, d := range s.movies {
			if d.TMDBID() == id {
				out[id] = *d
			}
		}
	}
	return out, nil
}

func (s *fakeStore) Search(_ context.Context, q, _ string, _, _, _, _ int) ([]models.MovieDoc, error) {
	if s.searchFn == nil {
		return nil, nil
	}
	return s.searchFn(q), nil
}

func (s *fakeStore) Top(context.Context, string, int) ([]models.MovieDoc, error) {
	return s.top, nil
}

func (s *fakeStore) PopularMovieIDs(context.Context, int) ([]int, error) {
	return s.popular, nil
}

func (s *fakeStore) SetExternalData(_ context.Context, id int, ext *models.ExternalData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[id] = ext
	return nil
}

type fakeSource struct {
	enabled  bool
	movies   map[int]*tmdb.Movie
	err      error
	search   *tmdb.Page
	trending *tmdb.Page
	calls    int
	mu       sync.Mutex
}

func (f *fakeSource) Enabled() bool { return f.enabled }

func (f *fakeSource) Movie(_ context.Context, id int) (*tmdb.Movie, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.movies[id]
	if !ok {
		return nil, tmdb.ErrNotFound
	}
	return m, nil
}

func (f *fakeSource) Search(context.Context, string, int) (*tmdb.Page, error) {
	if f.search == nil {
		return nil, errors.New("search down")
	}
	return f.search, nil
}

func (f *fakeSource) Trending(context.Context, int) (*tmdb.Page, error) {
	if f.trending == nil {
		return nil, errors.New("trending down")
	}
	return f.trending, nil
}

func doc(id int, title string, tmdbID int, genres ...string) models.MovieDoc {
	return models.MovieDoc{
		MovieID: id,
		Title:   title,
		Genres:  genres,
		Links:   &models.Links{TMDB: strconv.Itoa(tmdbID)},
	}
}

func darkKnight() *tmdb.Movie {
	return &tmdb.Movie{
		Details: tmdb.MovieDetails{
			ID: 155, Title: "The Dark Knight", VoteAverage: 9, VoteCount: 25000, Popularity: 80, PosterPath: "/dk.jpg",
		},
		Director: "Christopher Nolan",
		Cast:     []tmdb.CastMember{{Name: "Christian Bale"}, {Name: "Heath Ledger"}},
	}
}

func TestMovieEnrichesAndPersists(t *testing.T) {
	store := newFakeStore(doc(58559, "The Dark Knight", 155, "Action", "Crime"))
	src := &fakeSource{enabled: true, movies: map[int]*tmdb.Movie{155: darkKnight()}}
	c := New(store, src, zerolog.Nop())

	cand, err := c.Movie(context.Background(), 58559)
	if err != nil {
		t.Fatalf("Movie() error = %v", err)
	}
	if cand == nil || cand.Director == nil || *cand.Director != "Christopher Nolan" {
		t.Fatalf("Movie() = %+v", cand)
	}
	if len(cand.Cast) != 2 || cand.Cast[1] != "Heath Ledger" {
		t.Errorf("Cast = %v", cand.Cast)
	}
	if cand.VoteCount == nil || *cand.VoteCount != 25000 {
		t.Errorf("VoteCount = %v", cand.VoteCount)
	}
	ext := store.saved[58559]
	if ext == nil || !ext.TMDBFetched || ext.PosterURL != tmdb.PosterBaseURL+"/dk.jpg" {
		t.Errorf("persisted = %+v", ext)
	}
}

func TestMovieSkipsFetchedDocs(t *testing.T) {
	d := doc(1, "Cached", 9)
	d.ExternalData = &models.ExternalData{Director: "Someone", TMDBFetched: true}
	src := &fakeSource{enabled: true}
	c := New(newFakeStore(d), src, zerolog.Nop())

	cand, err := c.Movie(context.Background(), 1)
	if err != nil || cand == nil {
		t.Fatalf("Movie() = %v, %v", cand, err)
	}
	if src.calls != 0 {
		t.Errorf("tmdb called %d times for an enriched movie", src.calls)
	}
}

func TestMovieDegradesWhenTMDBFails(t *testing.T) {
	tests := []struct {
		name        string
		src         MovieSource
		wantSaved   bool
		wantFetched bool
	}{
		{"no source", nil, false, false},
		{"disabled", &fakeSource{}, false, false},
		{"transport error", &fakeSource{enabled: true, err: errors.New("boom")}, false, false},
		{"not found is remembered", &fakeSource{enabled: true}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(doc(5, "Five", 55, "Drama"))
			c := New(store, tt.src, zerolog.Nop())

			cand, err := c.Movie(context.Background(), 5)
			if err != nil {
				t.Fatalf("Movie() error = %v", err)
			}
			if cand.Title != "Five" || cand.Director != nil || cand.VoteAverage != nil {
				t.Errorf("Movie() = %+v", cand)
			}
			ext, saved := store.saved[5]
			if saved != tt.wantSaved {
				t.Fatalf("saved = %v, want %v", saved, tt.wantSaved)
			}
			if saved && ext.TMDBFetched != tt.wantFetched {
				t.Errorf("TMDBFetched = %v", ext.TMDBFetched)
			}
		})
	}
}

func TestMovieUnknown(t *testing.T) {
	c := New(newFakeStore(), nil, zerolog.Nop())
	cand, err := c.Movie(context.Background(), 404)
	if cand != nil || err != nil {
		t.Errorf("Movie() = %v, %v; want nil, nil", cand, err)
	}
}

func TestSearchFallsBackToTMDB(t *testing.T) {
	store := newFakeStore(doc(1, "Batman Begins", 272, "Action"), doc(2, "The Dark Knight", 155, "Action"))
	src := &fakeSource{
		enabled: true,
		movies:  map[int]*tmdb.Movie{155: darkKnight()},
		search: &tmdb.Page{Results: []tmdb.SearchResult{
			{ID: 155, VoteAverage: 9},
			{ID: 999},
			{ID: 272, VoteAverage: 7.7, VoteCount: 100},
		}},
	}
	c := New(store, src, zerolog.Nop())

	got, err := c.Search(context.Background(), "dark", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != 2 || got[1].ID != 1 {
		t.Fatalf("Search() = %+v, want ids [2 1]", got)
	}
	if got[0].Director == nil {
		t.Error("first result not enriched with credits")
	}
}

func TestSearchPrefersLocalMatches(t *testing.T) {
	store := newFakeStore()
	store.searchFn = func(string) []models.MovieDoc {
		return []models.MovieDoc{{MovieID: 7, Title: "Se7en", Genres: []string{"Crime"}}}
	}
	c := New(store, &fakeSource{enabled: true}, zerolog.Nop())

	got, err := c.Search(context.Background(), "se7en", 5)
	if err != nil || len(got) != 1 || got[0].ID != 7 {
		t.Errorf("Search() = %+v, %v", got, err)
	}
}

func TestTrending(t *testing.T) {
	store := newFakeStore(doc(1, "One", 11), doc(2, "Two", 22))
	store.top = []models.MovieDoc{{MovieID: 9, Title: "Local"}}

	t.Run("tmdb order", func(t *testing.T) {
		src := &fakeSource{enabled: true, trending: &tmdb.Page{Results: []tmdb.SearchResult{
			{ID: 22, Popularity: 90}, {ID: 11, Popularity: 50},
		}}}
		got, err := New(store, src, zerolog.Nop()).Trending(context.Background(), 5)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].ID != 2 || *got[0].Popularity != 90 {
			t.Errorf("Trending() = %+v", got)
		}
	})

	t.Run("local fallback", func(t *testing.T) {
		got, err := New(store, &fakeSource{enabled: true}, zerolog.Nop()).Trending(context.Background(), 5)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != 9 {
			t.Errorf("Trending() = %+v", got)
		}
	})
}

func TestEnrichCanceled(t *testing.T) {
	store := newFakeStore(doc(5, "Five", 55))
	c := New(store, &fakeSource{enabled: true, err: context.Canceled}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Movie(ctx, 5); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
