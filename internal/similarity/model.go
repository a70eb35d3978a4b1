package similarity

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Info describes how a model was built.
type Info struct {
	BuiltAt time.Time
	Ratings int
	Users   int
}

// Neighbor is a movie and its similarity to a query movie.
type Neighbor struct {
	MovieID int     `json:"movieId"`
	Sim     float64 `json:"sim"`
}

// Model is an immutable dense symmetric movie x movie cosine matrix plus the
// movie id for each row/column.
type Model struct {
	ids   []int
	index map[int]int
	n     int
	data  []float64
	info  Info
}

// NewModel builds a Model from explicit rows. Rows must form an n x n matrix
// aligned with movieIDs; movie ids must be unique.
func NewModel(movieIDs []int, rows [][]float64) (*Model, error) {
	n := len(movieIDs)
	if len(rows) != n {
		return nil, fmt.Errorf("similarity: %d rows for %d movies", len(rows), n)
	}
	data := make([]float64, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("similarity: row %d has %d columns, want %d", i, len(row), n)
		}
		data = append(data, row...)
	}
	ids := make([]int, n)
	copy(ids, movieIDs)
	return newModel(ids, data)
}

func newModel(ids []int, data []float64) (*Model, error) {
	n := len(ids)
	if len(data) != n*n {
		return nil, fmt.Errorf("similarity: matrix has %d cells, want %d", len(data), n*n)
	}
	index := make(map[int]int, n)
	for i, id := range ids {
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("similarity: duplicate movie id %d", id)
		}
		index[id] = i
	}
	return &Model{ids: ids, index: index, n: n, data: data}, nil
}

// Len returns the number of movies in the index.
func (m *Model) Len() int { return m.n }

// Info returns build metadata.
func (m *Model) Info() Info { return m.info }

// MovieIDs returns a copy of the row/column index.
func (m *Model) MovieIDs() []int {
	out := make([]int, m.n)
	copy(out, m.ids)
	return out
}

// MovieAt returns the movie id of row i.
func (m *Model) MovieAt(i int) (int, error) {
	if i < 0 || i >= m.n {
		return 0, fmt.Errorf("similarity: row %d out of range [0,%d)", i, m.n)
	}
	return m.ids[i], nil
}

// IndexOf returns the row of movieID.
func (m *Model) IndexOf(movieID int) (int, bool) {
	i, ok := m.index[movieID]
	return i, ok
}

// Contains reports whether movieID is in the index.
func (m *Model) Contains(movieID int) bool {
	_, ok := m.index[movieID]
	return ok
}

// Row returns row i. The slice aliases the model and must not be modified.
func (m *Model) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.n {
		return nil, fmt.Errorf("similarity: row %d out of range [0,%d)", i, m.n)
	}
	return m.data[i*m.n : (i+1)*m.n : (i+1)*m.n], nil
}

// Similarity returns sim(a, b); ok is false when either movie is unknown.
func (m *Model) Similarity(a, b int) (float64, bool) {
	i, ok := m.index[a]
	if !ok {
		return 0, false
	}
	j, ok := m.index[b]
	if !ok {
		return 0, false
	}
	return m.data[i*m.n+j], true
}

// Neighbors returns up to k movies most similar to movieID, excluding itself,
// highest similarity first. Ties keep index order.
func (m *Model) Neighbors(movieID, k int) ([]Neighbor, error) {
	i, ok := m.index[movieID]
	if !ok {
		return nil, fmt.Errorf("similarity: movie %d not in index", movieID)
	}
	row := m.data[i*m.n : (i+1)*m.n]

	out := make([]Neighbor, 0, m.n-1)
	for j, s := range row {
		if j == i || math.IsNaN(s) {
			continue
		}
		out = append(out, Neighbor{MovieID: m.ids[j], Sim: s})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Sim > out[b].Sim })
	if k >= 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}
