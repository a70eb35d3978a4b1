package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/MRuhan17/Movie-Recommender/internal/config"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(config.TMDBConfig{APIKey: "k", BaseURL: srv.URL + "/", Timeout: time.Second}, 0, zerolog.Nop())
	c.retryBaseDelay = time.Millisecond
	return c
}

func TestDetails(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/155" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("api_key"); got != "k" {
			t.Errorf("api_key = %q", got)
		}
		_, _ = w.Write([]byte(`{"id":155,"title":"The Dark Knight","runtime":152,
			"vote_average":9.0,"vote_count":25000,"popularity":80.5,"poster_path":"/p.jpg",
			"genres":[{"id":28,"name":"Action"},{"id":878,"name":"Science Fiction"}]}`))
	}))

	d, err := c.Details(context.Background(), 155)
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if d.Title != "The Dark Knight" || d.VoteCount != 25000 || d.Runtime != 152 {
		t.Errorf("Details() = %+v", d)
	}
	if got, want := d.GenreNames(), []string{"Action", "Sci-Fi"}; !reflect.DeepEqual(got, want) {
		t.Errorf("GenreNames() = %v, want %v", got, want)
	}
	if got := PosterURL(d.PosterPath); got != PosterBaseURL+"/p.jpg" {
		t.Errorf("PosterURL() = %q", got)
	}
}

func TestMovieCombinesCredits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/155", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":155,"title":"The Dark Knight"}`))
	})
	mux.HandleFunc("/movie/155/credits", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":155,
			"cast":[{"name":"A"},{"name":"B"},{"name":"C"},{"name":"D"},{"name":"E"},{"name":"F"}],
			"crew":[{"name":"Producer","job":"Producer"},{"name":"Christopher Nolan","job":"Director"},{"name":"Other","job":"Director"}]}`))
	})
	c := newTestClient(t, mux)

	m, err := c.Movie(context.Background(), 155)
	if err != nil {
		t.Fatalf("Movie() error = %v", err)
	}
	if m.Director != "Christopher Nolan" {
		t.Errorf("Director = %q", m.Director)
	}
	if len(m.Cast) != CastLimit || m.Cast[0].Name != "A" || m.Cast[4].Name != "E" {
		t.Errorf("Cast = %+v", m.Cast)
	}
}

func TestMovieWithoutCredits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/movie/7", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":7,"title":"Seven"}`))
	})
	mux.HandleFunc("/movie/7/credits", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := newTestClient(t, mux)

	m, err := c.Movie(context.Background(), 7)
	if err != nil {
		t.Fatalf("Movie() error = %v", err)
	}
	if m.Details.Title != "Seven" || m.Director != "" || m.Cast != nil {
		t.Errorf("Movie() = %+v", m)
	}
}

func TestSearchAndTrending(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "batman" || r.URL.Query().Get("page") != "1" {
			t.Errorf("query = %v", r.URL.Query())
		}
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"total_results":1,
			"results":[{"id":272,"title":"Batman Begins","genre_ids":[28,80,99999]}]}`))
	})
	mux.HandleFunc("/trending/movie/week", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "2" {
			t.Errorf("page = %q", r.URL.Query().Get("page"))
		}
		_, _ = w.Write([]byte(`{"page":2,"results":[{"id":1,"popularity":99.5},{"id":2,"popularity":12}]}`))
	})
	c := newTestClient(t, mux)

	p, err := c.Search(context.Background(), "batman", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(p.Results) != 1 || p.Results[0].ID != 272 {
		t.Fatalf("Search() = %+v", p)
	}
	if got, want := p.Results[0].GenreNames(), []string{"Action", "Crime"}; !reflect.DeepEqual(got, want) {
		t.Errorf("GenreNames() = %v, want %v", got, want)
	}

	tr, err := c.Trending(context.Background(), 2)
	if err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
	if len(tr.Results) != 2 || tr.Results[0].Popularity != 99.5 {
		t.Errorf("Trending() = %+v", tr)
	}
}

func TestErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		c := NewClient(config.TMDBConfig{BaseURL: "http://127.0.0.1:1"}, 0, zerolog.Nop())
		if c.Enabled() {
			t.Fatal("Enabled() without key")
		}
		if _, err := c.Details(context.Background(), 1); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("err = %v, want ErrNotConfigured", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		c := newTestClient(t, http.NotFoundHandler())
		if _, err := c.Details(context.Background(), 1); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("server error", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "down", http.StatusBadGateway)
		}))
		_, err := c.Details(context.Background(), 1)
		if err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want a transport failure", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":`))
		}))
		if _, err := c.Details(context.Background(), 1); err == nil {
			t.Error("expected decode error")
		}
	})
}

func TestRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"id":3,"title":"Three"}`))
	}))

	d, err := c.Details(context.Background(), 3)
	if err != nil {
		t.Fatalf("Details() error = %v", err)
	}
	if d.Title != "Three" || calls.Load() != 2 {
		t.Errorf("title %q after %d calls", d.Title, calls.Load())
	}
}

func TestCircuitOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusInternalServerError)
	}))

	for i := 0; i < 10; i++ {
		_, _ = c.Details(context.Background(), i)
	}
	before := calls.Load()

	_, err := c.Details(context.Background(), 99)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if calls.Load() != before {
		t.Error("request reached the server while the circuit was open")
	}
}

func TestNotFoundDoesNotTripCircuit(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())
	for i := 0; i < 15; i++ {
		_, _ = c.Details(context.Background(), i)
	}
	if _, err := c.Details(context.Background(), 100); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNormalizeGenre(t *testing.T) {
	tests := map[string]string{
		"Science Fiction": "Sci-Fi",
		"Family":          "Children",
		"Music":           "Musical",
		" Drama ":         "Drama",
	}
	for in, want := range tests {
		if got := NormalizeGenre(in); got != want {
			t.Errorf("NormalizeGenre(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTopCast(t *testing.T) {
	c := &Credits{Cast: []CastMember{{Name: "A"}, {Name: "B"}}}
	if got := c.TopCast(5); len(got) != 2 {
		t.Errorf("TopCast(5) = %v", got)
	}
	if got := c.TopCast(0); got != nil {
		t.Errorf("TopCast(0) = %v", got)
	}
	if got := (&Credits{}).Director(); got != "" {
		t.Errorf("Director() = %q", got)
	}
}
