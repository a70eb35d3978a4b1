package recommend

import "sort"

const (
	primaryWeight = 0.7
	qualityWeight = 0.3
)

// fuse computes quality, sentiment and final scores for items in place, ranks
// them and returns at most topN unique movies.
//
// Items whose metadata lookup failed (degraded) get zero quality and neutral
// sentiment. When coldStart is set the input order is kept.
func fuse(items []ScoredRecommendation, sentiment *SentimentAdjuster, degraded map[int]bool, coldStart bool, topN int) []ScoredRecommendation {
	for i := range items {
		it := &items[i]

		primary := it.ContentScore
		if it.Source == SourceCollaborative {
			primary = it.CFScore
		}

		s := NeutralSentiment
		blend := false
		switch {
		case degraded[it.ID]:
			it.QualityScore = 0
		case it.Sentiment != nil:
			it.QualityScore = QualityScore(it.CandidateMovie)
			s, blend = *it.Sentiment, true
		default:
			it.QualityScore = QualityScore(it.CandidateMovie)
			s, blend = sentiment.Score(it.ID), sentiment.HasData()
		}
		it.SentimentScore = s

		final := primaryWeight*primary + qualityWeight*it.QualityScore
		if blend {
			// final is 0-1, the adjuster works on the 0-5 rating scale
			final = BlendSentiment(final*5, s, sentiment.Weight()) / 5
		}
		it.FinalScore = final
	}

	if !coldStart {
		sort.SliceStable(items, func(i, j int) bool { return items[i].FinalScore > items[j].FinalScore })
	}
	return dedupTruncate(items, topN)
}

func dedupTruncate(items []ScoredRecommendation, topN int) []ScoredRecommendation {
	seen := make(map[int]struct{}, len(items))
	out := make([]ScoredRecommendation, 0, min(len(items), topN))
	for _, it := range items {
		if len(out) == topN {
			break
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
