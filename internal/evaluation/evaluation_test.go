package evaluation

import (
	"context"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/MRuhan17/Movie-Recommender/internal/similarity"
)

func set(ids ...int) map[int]struct{} {
	s := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-4 }

func TestRankingMetrics(t *testing.T) {
	tests := []struct {
		name                  string
		relevant              map[int]struct{}
		recs                  []int
		k                     int
		precision, recall, nd float64
	}{
		{"two of three", set(1, 2), []int{1, 3, 2}, 3, 2.0 / 3, 1, 1.5 / (1 + 1/math.Log2(3))},
		{"cut at k", set(1, 2), []int{3, 1, 2}, 2, 0.5, 0.5, (1 / math.Log2(3)) / (1 + 1/math.Log2(3))},
		{"short list", set(1), []int{1}, 10, 1, 1, 1},
		{"no recommendations", set(1), nil, 5, 0, 0, 0},
		{"nothing relevant", set(), []int{1, 2}, 2, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrecisionAtK(tt.relevant, tt.recs, tt.k); !approx(got, tt.precision) {
				t.Errorf("PrecisionAtK = %v, want %v", got, tt.precision)
			}
			if got := RecallAtK(tt.relevant, tt.recs, tt.k); !approx(got, tt.recall) {
				t.Errorf("RecallAtK = %v, want %v", got, tt.recall)
			}
			if got := NDCGAtK(tt.relevant, tt.recs, tt.k); !approx(got, tt.nd) {
				t.Errorf("NDCGAtK = %v, want %v", got, tt.nd)
			}
		})
	}
}

func TestErrorMetrics(t *testing.T) {
	truth := []float64{4, 2, 5}
	pred := []float64{3, 2, 3}
	if got := MAE(truth, pred); !approx(got, 1) {
		t.Errorf("MAE = %v, want 1", got)
	}
	if got := RMSE(truth, pred); !approx(got, math.Sqrt(5.0/3)) {
		t.Errorf("RMSE = %v, want %v", got, math.Sqrt(5.0/3))
	}
	if RMSE(nil, nil) != 0 || MAE(nil, nil) != 0 {
		t.Error("empty input should score 0")
	}
}

func TestCoverage(t *testing.T) {
	if got := Coverage([][]int{{1, 2}, {2, 3}}, 6); !approx(got, 0.5) {
		t.Errorf("Coverage = %v, want 0.5", got)
	}
	if got := Coverage(nil, 0); got != 0 {
		t.Errorf("Coverage with empty catalog = %v, want 0", got)
	}
}

func TestDiversity(t *testing.T) {
	tests := []struct {
		name  string
		lists [][]int
		want  float64
	}{
		{"distinct", [][]int{{1, 2}, {3, 4}}, 1},
		{"repeats", [][]int{{1, 1}, {2, 3}}, 0.75},
		{"empty list counts zero", [][]int{{1}, {}}, 0.5},
		{"no lists", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Diversity(tt.lists); !approx(got, tt.want) {
				t.Errorf("Diversity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHoldoutSplit(t *testing.T) {
	var ratings []similarity.Rating
	for u := 1; u <= 3; u++ {
		for m := 1; m <= 10; m++ {
			ratings = append(ratings, similarity.Rating{UserID: u, MovieID: m, Value: float64(m%5 + 1)})
		}
	}
	ratings = append(ratings, similarity.Rating{UserID: 4, MovieID: 1, Value: 4})

	train, test := HoldoutSplit(ratings, 0.2, 42)
	if len(test) != 6 || len(train) != 25 {
		t.Fatalf("split sizes = %d/%d, want 25/6", len(train), len(test))
	}
	for _, r := range test {
		if r.UserID == 4 {
			t.Error("a user's only rating must stay in training")
		}
	}

	_, again := HoldoutSplit(ratings, 0.2, 42)
	for i := range test {
		if test[i] != again[i] {
			t.Fatalf("split with the same seed differs at %d: %+v vs %+v", i, test[i], again[i])
		}
	}

	_, none := HoldoutSplit(ratings, 0, 42)
	if len(none) != 0 {
		t.Errorf("fraction 0 held out %d ratings", len(none))
	}
}

func TestEvaluate(t *testing.T) {
	train := []similarity.Rating{
		{UserID: 1, MovieID: 1, Value: 5}, {UserID: 1, MovieID: 2, Value: 5}, {UserID: 1, MovieID: 3, Value: 1},
		{UserID: 2, MovieID: 1, Value: 4}, {UserID: 2, MovieID: 2, Value: 5}, {UserID: 2, MovieID: 3, Value: 2},
		{UserID: 3, MovieID: 1, Value: 5}, {UserID: 3, MovieID: 3, Value: 1},
	}
	test := []similarity.Rating{
		{UserID: 3, MovieID: 2, Value: 5},
		{UserID: 9, MovieID: 1, Value: 3},
	}
	model, err := similarity.Build(context.Background(), train, similarity.BuildOptions{Workers: 1})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	rep, err := Evaluate(context.Background(), model, train, test, Options{K: 1, LikeThreshold: 3.5, Log: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if rep.TrainRatings != 8 || rep.TestRatings != 2 || rep.Movies != 3 {
		t.Errorf("counts = %d/%d/%d, want 8/2/3", rep.TrainRatings, rep.TestRatings, rep.Movies)
	}
	if rep.Fallbacks != 1 {
		t.Errorf("Fallbacks = %d, want 1 for the unknown user", rep.Fallbacks)
	}
	if rep.RMSE <= 0 || rep.MAE <= 0 || rep.RMSE < rep.MAE {
		t.Errorf("RMSE=%v MAE=%v, want RMSE >= MAE > 0", rep.RMSE, rep.MAE)
	}
	if rep.MeanPred <= 0 || rep.StdPred <= 0 {
		t.Errorf("prediction mean/std = %v/%v, want both > 0", rep.MeanPred, rep.StdPred)
	}
	if rep.Users != 1 {
		t.Fatalf("Users = %d, want 1", rep.Users)
	}
	if rep.PrecisionAtK != 1 || rep.RecallAtK != 1 || rep.NDCGAtK != 1 {
		t.Errorf("ranking = %v/%v/%v, want perfect", rep.PrecisionAtK, rep.RecallAtK, rep.NDCGAtK)
	}
	if !approx(rep.Coverage, 0.3333) {
		t.Errorf("Coverage = %v, want 0.3333", rep.Coverage)
	}
}

func TestEvaluateCanceled(t *testing.T) {
	train := []similarity.Rating{{UserID: 1, MovieID: 1, Value: 5}, {UserID: 1, MovieID: 2, Value: 4}}
	model, err := similarity.Build(context.Background(), train, similarity.BuildOptions{Workers: 1})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Evaluate(ctx, model, train, train, Options{Log: zerolog.Nop()}); err == nil {
		t.Error("Evaluate() with canceled context succeeded")
	}
}
