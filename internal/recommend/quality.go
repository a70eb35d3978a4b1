package recommend

import "math"

// Reference caps for the quality score. Past them the score stops growing.
const (
	qualityVoteCap       = 1000
	qualityPopularityCap = 1000
)

// QualityScore rates a movie from catalog metadata:
//
//	va/10 * 0.6 * min(vc/1000, 1) + log1p(min(pop, 1000))/log1p(1000) * 0.4
//
// rounded to 4 decimals. Missing fields count as 0.
func QualityScore(m CandidateMovie) float64 {
	var va, vc, pop float64
	if m.VoteAverage != nil {
		va = clamp(*m.VoteAverage, 0, 10)
	}
	if m.VoteCount != nil {
		vc = float64(*m.VoteCount)
	}
	if m.Popularity != nil {
		pop = *m.Popularity
	}

	votes := clamp(vc/qualityVoteCap, 0, 1)
	popularity := math.Log1p(clamp(pop, 0, qualityPopularityCap)) / math.Log1p(qualityPopularityCap)

	return round4(va/10*0.6*votes + popularity*0.4)
}
