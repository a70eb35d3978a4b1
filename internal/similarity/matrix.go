// Package similarity builds and serves the item-item cosine similarity model.
//
// The model is produced offline by the trainer from the full rating history
// and persisted as a single versioned artifact. The API process loads it once
// at startup; after that a *Model is immutable and safe for concurrent reads
// without locking.
package similarity

import (
	"math"
	"sort"
)

// Rating is one (movie, user) observation fed to the offline build.
type Rating struct {
	MovieID int
	UserID  int
	Value   float64
}

// entry is a non-zero cell of a movie row, keyed by column (user) index.
type entry struct {
	col   int
	value float64
}

// RatingMatrix is a sparse movie x user matrix. Rows are movies sorted by id,
// columns are users sorted by id.
//
// Unrated cells read as 0. Absence is therefore indistinguishable from a zero
// rating, which biases cosine towards co-occurrence rather than preference
// correlation. This is an accepted approximation of the model; mean-centering
// or masking would change every score and is left as a separate decision.
type RatingMatrix struct {
	movieIDs []int
	userIDs  []int
	rows     [][]entry
	ratings  int
}

// NewRatingMatrix pivots ratings into a RatingMatrix. Repeated (movie, user)
// pairs are averaged.
func NewRatingMatrix(ratings []Rating) *RatingMatrix {
	type key struct{ movie, user int }
	sums := make(map[key]float64, len(ratings))
	counts := make(map[key]int, len(ratings))
	movieSet := make(map[int]struct{})
	userSet := make(map[int]struct{})

	for _, r := range ratings {
		k := key{r.MovieID, r.UserID}
		sums[k] += r.Value
		counts[k]++
		movieSet[r.MovieID] = struct{}{}
		userSet[r.UserID] = struct{}{}
	}

	m := &RatingMatrix{
		movieIDs: sortedKeys(movieSet),
		userIDs:  sortedKeys(userSet),
		ratings:  len(ratings),
	}

	movieIdx := indexOf(m.movieIDs)
	userIdx := indexOf(m.userIDs)

	m.rows = make([][]entry, len(m.movieIDs))
	for k, sum := range sums {
		v := sum / float64(counts[k])
		if v == 0 {
			continue
		}
		i := movieIdx[k.movie]
		m.rows[i] = append(m.rows[i], entry{col: userIdx[k.user], value: v})
	}
	for i := range m.rows {
		row := m.rows[i]
		sort.Slice(row, func(a, b int) bool { return row[a].col < row[b].col })
	}
	return m
}

// Movies returns the number of rows.
func (m *RatingMatrix) Movies() int { return len(m.movieIDs) }

// Users returns the number of columns.
func (m *RatingMatrix) Users() int { return len(m.userIDs) }

// MovieIDs returns a copy of the row index.
func (m *RatingMatrix) MovieIDs() []int {
	out := make([]int, len(m.movieIDs))
	copy(out, m.movieIDs)
	return out
}

// At returns the rating at (movieID, userID), 0 when absent.
func (m *RatingMatrix) At(movieID, userID int) float64 {
	i := sort.SearchInts(m.movieIDs, movieID)
	if i == len(m.movieIDs) || m.movieIDs[i] != movieID {
		return 0
	}
	u := sort.SearchInts(m.userIDs, userID)
	if u == len(m.userIDs) || m.userIDs[u] != userID {
		return 0
	}
	row := m.rows[i]
	j := sort.Search(len(row), func(k int) bool { return row[k].col >= u })
	if j < len(row) && row[j].col == u {
		return row[j].value
	}
	return 0
}

func (m *RatingMatrix) norm(i int) float64 {
	var s float64
	for _, e := range m.rows[i] {
		s += e.value * e.value
	}
	return math.Sqrt(s)
}

// dot is a merge over two column-sorted sparse rows.
func dot(a, b []entry) float64 {
	var s float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].col == b[j].col:
			s += a[i].value * b[j].value
			i++
			j++
		case a[i].col < b[j].col:
			i++
		default:
			j++
		}
	}
	return s
}

func sortedKeys(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

func indexOf(ids []int) map[int]int {
	idx := make(map[int]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return idx
}
