package evaluation

import "math"

// RMSE is the root mean squared error of pred against truth. Both slices
// must have the same length; empty input yields 0.
func RMSE(truth, pred []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	var s float64
	for i := range truth {
		d := truth[i] - pred[i]
		s += d * d
	}
	return math.Sqrt(s / float64(len(truth)))
}

// MAE is the mean absolute error of pred against truth.
func MAE(truth, pred []float64) float64 {
	if len(truth) == 0 {
		return 0
	}
	var s float64
	for i := range truth {
		s += math.Abs(truth[i] - pred[i])
	}
	return s / float64(len(truth))
}

// PrecisionAtK is the share of the first k recommendations that are
// relevant. k is capped at len(recommended).
func PrecisionAtK(relevant map[int]struct{}, recommended []int, k int) float64 {
	k = min(k, len(recommended))
	if k <= 0 {
		return 0
	}
	return float64(hits(relevant, recommended[:k])) / float64(k)
}

// RecallAtK is the share of relevant items found in the first k
// recommendations.
func RecallAtK(relevant map[int]struct{}, recommended []int, k int) float64 {
	if len(relevant) == 0 {
		return 0
	}
	k = min(k, len(recommended))
	if k <= 0 {
		return 0
	}
	return float64(hits(relevant, recommended[:k])) / float64(len(relevant))
}

// NDCGAtK is binary-relevance normalised discounted cumulative gain.
func NDCGAtK(relevant map[int]struct{}, recommended []int, k int) float64 {
	var dcg float64
	for i, id := range recommended[:min(k, len(recommended))] {
		if _, ok := relevant[id]; ok {
			dcg += 1 / math.Log2(float64(i+2))
		}
	}
	var idcg float64
	for i := 0; i < min(k, len(relevant)); i++ {
		idcg += 1 / math.Log2(float64(i+2))
	}
	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// Coverage is the share of catalogSize items that appear in at least one list.
func Coverage(lists [][]int, catalogSize int) float64 {
	if catalogSize <= 0 {
		return 0
	}
	seen := make(map[int]struct{})
	for _, l := range lists {
		for _, id := range l {
			seen[id] = struct{}{}
		}
	}
	return float64(len(seen)) / float64(catalogSize)
}

// Diversity is the mean share of distinct ids per list. Empty lists count 0.
func Diversity(lists [][]int) float64 {
	if len(lists) == 0 {
		return 0
	}
	var total float64
	for _, l := range lists {
		if len(l) == 0 {
			continue
		}
		seen := make(map[int]struct{}, len(l))
		for _, id := range l {
			seen[id] = struct{}{}
		}
		total += float64(len(seen)) / float64(len(l))
	}
	return total / float64(len(lists))
}

// meanStd returns the mean and population standard deviation of xs.
func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		std += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(std / float64(len(xs)))
}

func hits(relevant map[int]struct{}, ids []int) int {
	n := 0
	for _, id := range ids {
		if _, ok := relevant[id]; ok {
			n++
		}
	}
	return n
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
