package service

import (
	"context"
	"errors"
	"sync"

	"github.com/MRuhan17/Movie-Recommender/internal/models"
	"github.com/MRuhan17/Movie-Recommender/internal/recommend"
)

var errBoom = errors.New("boom")

type memInteractions struct {
	mu      sync.Mutex
	history []models.InteractionDoc
	likes   []models.InteractionDoc
	err     error
}

func (m *memInteractions) AddWatched(_ context.Context, d models.InteractionDoc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.history = append([]models.InteractionDoc{d}, m.history...)
	return nil
}

func (m *memInteractions) AddLike(_ context.Context, d models.InteractionDoc) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.likes {
		if l.UserID == d.UserID && l.MovieID == d.MovieID {
			return false, nil
		}
	}
	m.likes = append([]models.InteractionDoc{d}, m.likes...)
	return true, nil
}

func (m *memInteractions) RemoveLike(_ context.Context, userID, movieID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.likes {
		if l.UserID == userID && l.MovieID == movieID {
			m.likes = append(m.likes[:i], m.likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func filterUser(docs []models.InteractionDoc, userID, limit int) []models.InteractionDoc {
	out := []models.InteractionDoc{}
	for _, d := range docs {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *memInteractions) WatchHistory(_ context.Context, userID, limit int) ([]models.InteractionDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filterUser(m.history, userID, limit), nil
}

func (m *memInteractions) Likes(_ context.Context, userID, limit int) ([]models.InteractionDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filterUser(m.likes, userID, limit), nil
}

func (m *memInteractions) CountWatched(_ context.Context, userID int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(filterUser(m.history, userID, 0))), nil
}

func (m *memInteractions) CountLikes(_ context.Context, userID int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(filterUser(m.likes, userID, 0))), nil
}

type memRatings struct {
	mu      sync.Mutex
	ratings map[[2]int]float64
}

func newMemRatings() *memRatings { return &memRatings{ratings: map[[2]int]float64{}} }

func (m *memRatings) GetOne(_ context.Context, userID, movieID int) (*models.RatingDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.ratings[[2]int{userID, movieID}]
	if !ok {
		return nil, nil
	}
	return &models.RatingDoc{UserID: userID, MovieID: movieID, Rating: v}, nil
}

func (m *memRatings) UpsertRating(_ context.Context, userID, movieID int, rating float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings[[2]int{userID, movieID}] = rating
	return nil
}

func (m *memRatings) GetByUser(ctx context.Context, userID, _, _ int) ([]models.RatingDoc, error) {
	return m.GetAllByUser(ctx, userID)
}

func (m *memRatings) GetAllByUser(_ context.Context, userID int) ([]models.RatingDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.RatingDoc
	for k, v := range m.ratings {
		if k[0] == userID {
			out = append(out, models.RatingDoc{UserID: userID, MovieID: k[1], Rating: v})
		}
	}
	return out, nil
}

// memMovies serves as MovieLookup, RatingStatsStore, ModelCatalog and
// recommend.MetadataProvider / PopularityRanker.
type memMovies struct {
	mu      sync.Mutex
	docs    map[int]*models.MovieDoc
	popular []int
	err     error
}

func newMemMovies(docs ...models.MovieDoc) *memMovies {
	m := &memMovies{docs: map[int]*models.MovieDoc{}}
	for i := range docs {
		d := docs[i]
		m.docs[d.MovieID] = &d
	}
	return m
}

func (m *memMovies) Get(ctx context.Context, id int) (*models.MovieDoc, error) {
	return m.GetByID(ctx, id)
}

func (m *memMovies) GetByID(_ context.Context, id int) (*models.MovieDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memMovies) SetRatingStats(_ context.Context, id int, rs models.RatingStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id].RatingStats = &rs
	return nil
}

func (m *memMovies) Count(context.Context) (int64, error) {
	return int64(len(m.docs)), nil
}

func (m *memMovies) CountNotIn(_ context.Context, ids []int) (int64, error) {
	return int64(len(m.notIn(ids))), nil
}

func (m *memMovies) MostRatedNotIn(_ context.Context, ids []int, limit int) ([]models.MovieDoc, error) {
	out := m.notIn(ids)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memMovies) notIn(ids []int) []models.MovieDoc {
	skip := map[int]bool{}
	for _, id := range ids {
		skip[id] = true
	}
	var out []models.MovieDoc
	for id := 1; id <= 1000; id++ {
		if d, ok := m.docs[id]; ok && !skip[id] {
			out = append(out, *d)
		}
	}
	return out
}

func (m *memMovies) Movie(ctx context.Context, id int) (*recommend.CandidateMovie, error) {
	d, err := m.GetByID(ctx, id)
	if err != nil || d == nil {
		return nil, err
	}
	return &recommend.CandidateMovie{ID: d.MovieID, Title: d.Title, Genres: d.Genres}, nil
}

func (m *memMovies) Search(context.Context, string, int) ([]recommend.CandidateMovie, error) {
	return nil, nil
}

func (m *memMovies) Trending(context.Context, int) ([]recommend.CandidateMovie, error) {
	return nil, nil
}

func (m *memMovies) PopularMovieIDs(context.Context, int) ([]int, error) {
	return m.popular, nil
}

func movie(id int, title string, genres ...string) models.MovieDoc {
	return models.MovieDoc{MovieID: id, Title: title, Genres: genres}
}
