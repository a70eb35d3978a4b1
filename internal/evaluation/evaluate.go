// Package evaluation scores a similarity model offline against ratings held
// out of its training data.
package evaluation

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/MRuhan17/Movie-Recommender/internal/recommend"
	"github.com/MRuhan17/Movie-Recommender/internal/similarity"
)

// DefaultPrediction stands in when no prediction can be made for a pair.
const DefaultPrediction = 3.0

type Options struct {
	// K is the cut-off for the ranking metrics.
	K             int
	LikeThreshold float64
	Log           zerolog.Logger
}

// Report is the trainer's evaluation output.
type Report struct {
	TrainRatings int       `json:"trainRatings"`
	TestRatings  int       `json:"testRatings"`
	Movies       int       `json:"movies"`
	K            int       `json:"k"`
	RMSE         float64   `json:"rmse"`
	MAE          float64   `json:"mae"`
	Fallbacks    int       `json:"predictionFallbacks"`
	MeanPred     float64   `json:"meanPrediction"`
	StdPred      float64   `json:"stdPrediction"`
	Users        int       `json:"rankedUsers"`
	PrecisionAtK float64   `json:"precisionAtK"`
	RecallAtK    float64   `json:"recallAtK"`
	NDCGAtK      float64   `json:"ndcgAtK"`
	Coverage     float64   `json:"coverage"`
	Diversity    float64   `json:"diversity"`
	EvaluatedAt  time.Time `json:"evaluatedAt"`
}

// Evaluate measures model, built from train, on the held-out test ratings.
//
// Rating error uses the same similarity-weighted prediction the API serves.
// Ranking quality compares each user's top K collaborative recommendations
// with the test movies they rated at or above LikeThreshold. Users without
// such movies are skipped.
func Evaluate(ctx context.Context, model *similarity.Model, train, test []similarity.Rating, opts Options) (*Report, error) {
	if opts.K <= 0 {
		opts.K = recommend.DefaultTopN
	}
	if opts.LikeThreshold <= 0 {
		opts.LikeThreshold = recommend.DefaultLikeThreshold
	}

	reader := newRatingsReader(train)
	cfg := recommend.DefaultConfig()
	cfg.LikeThreshold = opts.LikeThreshold
	cfg.CandidatePoolSize = opts.K
	cfg.MaxTopN = max(cfg.MaxTopN, opts.K)
	cf := recommend.NewCollaborativeRecommender(model, reader, reader, cfg, opts.Log)

	rep := &Report{
		TrainRatings: len(train),
		TestRatings:  len(test),
		Movies:       model.Len(),
		K:            opts.K,
		EvaluatedAt:  time.Now().UTC(),
	}

	truth := make([]float64, 0, len(test))
	pred := make([]float64, 0, len(test))
	relevant := make(map[int]map[int]struct{})
	for _, r := range test {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := cf.PredictRating(ctx, r.UserID, r.MovieID)
		if err != nil {
			p = DefaultPrediction
			rep.Fallbacks++
		}
		truth = append(truth, r.Value)
		pred = append(pred, p)

		if r.Value >= opts.LikeThreshold {
			if relevant[r.UserID] == nil {
				relevant[r.UserID] = make(map[int]struct{})
			}
			relevant[r.UserID][r.MovieID] = struct{}{}
		}
	}
	rep.RMSE = round4(RMSE(truth, pred))
	rep.MAE = round4(MAE(truth, pred))
	mean, std := meanStd(pred)
	rep.MeanPred, rep.StdPred = round4(mean), round4(std)

	users := make([]int, 0, len(relevant))
	for u := range relevant {
		users = append(users, u)
	}
	sort.Ints(users)

	var p, r, n float64
	lists := make([][]int, 0, len(users))
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs := cf.Recommend(ctx, u, opts.K).IDs()
		lists = append(lists, recs)
		p += PrecisionAtK(relevant[u], recs, opts.K)
		r += RecallAtK(relevant[u], recs, opts.K)
		n += NDCGAtK(relevant[u], recs, opts.K)
	}
	if len(users) > 0 {
		k := float64(len(users))
		rep.Users = len(users)
		rep.PrecisionAtK = round4(p / k)
		rep.RecallAtK = round4(r / k)
		rep.NDCGAtK = round4(n / k)
	}
	rep.Coverage = round4(Coverage(lists, model.Len()))
	rep.Diversity = round4(Diversity(lists))
	return rep, nil
}

// ratingsReader serves training ratings to the collaborative recommender.
// It has no likes or watch history, and ranks popularity by rating count.
type ratingsReader struct {
	byUser  map[int][]recommend.Rating
	popular []int
}

func newRatingsReader(ratings []similarity.Rating) *ratingsReader {
	rr := &ratingsReader{byUser: make(map[int][]recommend.Rating)}
	counts := make(map[int]int)
	for _, r := range ratings {
		rr.byUser[r.UserID] = append(rr.byUser[r.UserID], recommend.Rating{
			UserID:  r.UserID,
			MovieID: r.MovieID,
			Value:   r.Value,
		})
		counts[r.MovieID]++
	}
	for id := range counts {
		rr.popular = append(rr.popular, id)
	}
	sort.Slice(rr.popular, func(i, j int) bool {
		a, b := rr.popular[i], rr.popular[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return a < b
	})
	return rr
}

func (rr *ratingsReader) LikedMovies(context.Context, int) ([]recommend.Interaction, error) {
	return nil, nil
}

func (rr *ratingsReader) WatchHistory(context.Context, int, int) ([]recommend.Interaction, error) {
	return nil, nil
}

func (rr *ratingsReader) Ratings(_ context.Context, userID int) ([]recommend.Rating, error) {
	return rr.byUser[userID], nil
}

func (rr *ratingsReader) PopularMovieIDs(_ context.Context, n int) ([]int, error) {
	return rr.popular[:min(n, len(rr.popular))], nil
}
