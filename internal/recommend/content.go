package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// ContentRecommender scores candidates against the user's genre profile.
type ContentRecommender struct {
	interactions InteractionReader
	cfg          Config
	log          zerolog.Logger
}

func NewContentRecommender(interactions InteractionReader, cfg Config, log zerolog.Logger) *ContentRecommender {
	return &ContentRecommender{
		interactions: interactions,
		cfg:          cfg.withDefaults(),
		log:          log.With().Str("component", "content").Logger(),
	}
}

// Recommend ranks up to n candidates the user has not liked or recently
// watched. For a user with no interactions it returns the first n candidates
// in input order and coldStart is true.
func (c *ContentRecommender) Recommend(ctx context.Context, userID int, candidates []CandidateMovie, n int) ([]ScoredRecommendation, bool) {
	items, coldStart, err := c.rank(ctx, userID, candidates, n)
	if err != nil {
		c.log.Warn().Err(err).Int("user_id", userID).Msg("content ranking degraded to input order")
		return passThrough(candidates, n, SourceContent), false
	}
	return items, coldStart
}

func (c *ContentRecommender) rank(ctx context.Context, userID int, candidates []CandidateMovie, n int) ([]ScoredRecommendation, bool, error) {
	liked, err := c.interactions.LikedMovies(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("read likes: %w", err)
	}
	limit := max(c.cfg.ProfileHistoryLimit, c.cfg.InteractionHistoryLimit)
	watched, err := c.interactions.WatchHistory(ctx, userID, limit)
	if err != nil {
		return nil, false, fmt.Errorf("read watch history: %w", err)
	}

	profileWatched := watched
	if len(profileWatched) > c.cfg.ProfileHistoryLimit {
		profileWatched = profileWatched[:c.cfg.ProfileHistoryLimit]
	}
	profile := BuildProfile(liked, profileWatched)
	if profile.Empty() {
		return passThrough(candidates, n, SourceColdStart), true, nil
	}

	seen := make(map[int]struct{}, len(liked)+len(watched))
	for _, in := range liked {
		seen[in.MovieID] = struct{}{}
	}
	exclusionWatched := watched
	if len(exclusionWatched) > c.cfg.InteractionHistoryLimit {
		exclusionWatched = exclusionWatched[:c.cfg.InteractionHistoryLimit]
	}
	for _, in := range exclusionWatched {
		seen[in.MovieID] = struct{}{}
	}

	out := make([]ScoredRecommendation, 0, len(candidates))
	for _, cand := range candidates {
		if _, ok := seen[cand.ID]; ok {
			continue
		}
		out = append(out, ScoredRecommendation{
			CandidateMovie: cand,
			ContentScore:   ContentScore(profile, cand.Genres),
			Reason:         contentReason(profile, cand.Genres),
			Source:         SourceContent,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ContentScore > out[j].ContentScore })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, false, nil
}

// ContentScore is round4(0.6*jaccard(genres, top5) + 0.4*weightScore) where
// weightScore sums the profile weight of each candidate genre relative to the
// heaviest genre.
func ContentScore(p TasteProfile, genres []string) float64 {
	_, cand := genreSet(genres)
	_, top := genreSet(p.TopGenres(favoriteGenres))
	if len(top) == 0 {
		return 0
	}

	genreSim := jaccard(cand, top)

	var weightScore float64
	if maxW := p.MaxWeight(); maxW > 0 {
		var sum float64
		for g := range cand {
			sum += p.Weights[g]
		}
		weightScore = sum / maxW
	}
	return round4(0.6*genreSim + 0.4*weightScore)
}

func contentReason(p TasteProfile, genres []string) string {
	_, top := genreSet(p.TopGenres(favoriteGenres))
	ordered, _ := genreSet(genres)

	var matching []string
	for _, g := range ordered {
		if _, ok := top[g]; ok {
			matching = append(matching, g)
		}
	}
	if len(matching) == 0 {
		return "Based on your viewing history"
	}
	if len(matching) > 2 {
		matching = matching[:2]
	}
	return "Matches your interest in " + strings.Join(matching, ", ")
}

func passThrough(candidates []CandidateMovie, n int, source string) []ScoredRecommendation {
	if n >= 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]ScoredRecommendation, len(candidates))
	for i, cand := range candidates {
		out[i] = ScoredRecommendation{CandidateMovie: cand, Source: source}
	}
	return out
}
