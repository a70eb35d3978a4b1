package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/MRuhan17/Movie-Recommender/internal/similarity"
)

var errNoCFCandidates = errors.New("no collaborative candidates")

// CFItem is a collaborative filtering candidate and its accumulated score.
type CFItem struct {
	MovieID int     `json:"movieId"`
	Score   float64 `json:"score"`
}

// CFResult is the output of CollaborativeRecommender.Recommend. When Fallback
// is set, Items came from the popularity ranker and carry no score.
type CFResult struct {
	Items    []CFItem
	Fallback error
}

// IDs returns the movie ids in rank order.
func (r CFResult) IDs() []int {
	ids := make([]int, len(r.Items))
	for i, it := range r.Items {
		ids[i] = it.MovieID
	}
	return ids
}

// CollaborativeRecommender ranks movies by summed item-item similarity to the
// movies a user rated highly.
type CollaborativeRecommender struct {
	model        *similarity.Model
	interactions InteractionReader
	popularity   PopularityRanker
	cfg          Config
	log          zerolog.Logger
}

// NewCollaborativeRecommender accepts a nil model; every request then takes
// the popularity fallback.
func NewCollaborativeRecommender(model *similarity.Model, interactions InteractionReader, popularity PopularityRanker, cfg Config, log zerolog.Logger) *CollaborativeRecommender {
	return &CollaborativeRecommender{
		model:        model,
		interactions: interactions,
		popularity:   popularity,
		cfg:          cfg.withDefaults(),
		log:          log.With().Str("component", "collaborative").Logger(),
	}
}

// Recommend returns up to n movies for userID. It never fails: any problem
// degrades to the popularity ranking, and a failing ranker to an empty list.
// Movies the user rated, watched or liked are never returned.
func (c *CollaborativeRecommender) Recommend(ctx context.Context, userID, n int) CFResult {
	if n <= 0 {
		return CFResult{}
	}

	ratings, rerr := c.interactions.Ratings(ctx, userID)
	exclude := c.exclusions(ctx, userID, ratings)

	if c.model == nil {
		return c.popular(ctx, n, exclude, ErrModelUnavailable)
	}
	if rerr != nil {
		return c.popular(ctx, n, exclude, fmt.Errorf("read ratings: %w", rerr))
	}
	if len(ratings) == 0 {
		return c.popular(ctx, n, exclude, fmt.Errorf("%w: no ratings", ErrNoUserSignal))
	}

	liked := make(map[int]struct{})
	var likedOrder []int
	for _, r := range ratings {
		if r.Value < c.cfg.LikeThreshold {
			continue
		}
		if _, dup := liked[r.MovieID]; !dup {
			liked[r.MovieID] = struct{}{}
			likedOrder = append(likedOrder, r.MovieID)
		}
	}
	if len(likedOrder) == 0 {
		return c.popular(ctx, n, exclude, fmt.Errorf("%w: no rating >= %.1f", ErrNoUserSignal, c.cfg.LikeThreshold))
	}

	ids := c.model.MovieIDs()
	scores := make(map[int]float64)
	var order []int
	for _, movieID := range likedOrder {
		i, ok := c.model.IndexOf(movieID)
		if !ok {
			continue
		}
		row, err := c.model.Row(i)
		if err != nil {
			return c.popular(ctx, n, exclude, fmt.Errorf("similarity row %d: %w", movieID, err))
		}
		for j, sim := range row {
			other := ids[j]
			if _, ok := liked[other]; ok {
				continue
			}
			if _, ok := exclude[other]; ok {
				continue
			}
			if _, seen := scores[other]; !seen {
				order = append(order, other)
			}
			scores[other] += sim
		}
	}

	// order is first-encounter order, so the stable sort breaks ties by it
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	if len(order) > n {
		order = order[:n]
	}
	if len(order) == 0 {
		return c.popular(ctx, n, exclude, errNoCFCandidates)
	}

	items := make([]CFItem, len(order))
	for i, id := range order {
		items[i] = CFItem{MovieID: id, Score: scores[id]}
	}
	return CFResult{Items: items}
}

// exclusions collects every movie the user rated, liked or ever watched.
// Read failures shrink the set but never fail the request.
func (c *CollaborativeRecommender) exclusions(ctx context.Context, userID int, ratings []Rating) map[int]struct{} {
	out := make(map[int]struct{}, len(ratings))
	for _, r := range ratings {
		out[r.MovieID] = struct{}{}
	}

	liked, err := c.interactions.LikedMovies(ctx, userID)
	if err != nil {
		c.log.Warn().Err(err).Int("user_id", userID).Msg("read likes for exclusion")
	}
	for _, in := range liked {
		out[in.MovieID] = struct{}{}
	}

	watched, err := c.interactions.WatchHistory(ctx, userID, 0)
	if err != nil {
		c.log.Warn().Err(err).Int("user_id", userID).Msg("read watch history for exclusion")
	}
	for _, in := range watched {
		out[in.MovieID] = struct{}{}
	}
	return out
}

func (c *CollaborativeRecommender) popular(ctx context.Context, n int, exclude map[int]struct{}, cause error) CFResult {
	c.log.Debug().Err(cause).Int("n", n).Msg("collaborative fallback to popularity")

	res := CFResult{Fallback: cause}
	if c.popularity == nil {
		return res
	}
	ids, err := c.popularity.PopularMovieIDs(ctx, n+len(exclude))
	if err != nil {
		c.log.Warn().Err(err).Msg("popularity ranker failed")
		return res
	}
	for _, id := range ids {
		if _, ok := exclude[id]; ok {
			continue
		}
		res.Items = append(res.Items, CFItem{MovieID: id})
		if len(res.Items) == n {
			break
		}
	}
	return res
}

// PredictRating estimates the rating userID would give movieID as the
// similarity-weighted average of the user's other ratings. Movies outside
// the index, or with no positively similar rated movie, get the user's mean.
func (c *CollaborativeRecommender) PredictRating(ctx context.Context, userID, movieID int) (float64, error) {
	if c.model == nil {
		return 0, ErrModelNotInitialized
	}
	ratings, err := c.interactions.Ratings(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("read ratings for user %d: %w", userID, err)
	}
	return predictFromRatings(c.model, ratings, movieID)
}

func predictFromRatings(model *similarity.Model, ratings []Rating, movieID int) (float64, error) {
	var num, den, sum float64
	var count int
	for _, r := range ratings {
		if r.MovieID == movieID {
			continue
		}
		sum += r.Value
		count++
		sim, ok := model.Similarity(movieID, r.MovieID)
		if !ok || sim <= 0 {
			continue
		}
		num += sim * r.Value
		den += sim
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: no ratings to predict from", ErrNoUserSignal)
	}
	if den == 0 {
		return clamp(sum/float64(count), 0, 5), nil
	}
	return clamp(num/den, 0, 5), nil
}
