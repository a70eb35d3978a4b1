package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MRuhan17/Movie-Recommender/internal/metrics"
)

// Reason types, in detector order.
const (
	ReasonGenreMatch     = "genre_match"
	ReasonDirectorMatch  = "director_match"
	ReasonActorMatch     = "actor_match"
	ReasonSimilarToLiked = "similar_to_liked"
	ReasonHighQuality    = "high_quality"
	ReasonTrending       = "trending"
)

var reasonWeights = map[string]float64{
	ReasonGenreMatch:     0.35,
	ReasonSimilarToLiked: 0.30,
	ReasonDirectorMatch:  0.20,
	ReasonActorMatch:     0.10,
	ReasonHighQuality:    0.03,
	ReasonTrending:       0.02,
}

const defaultReasonWeight = 0.10

// detector thresholds
const (
	directorStrength     = 0.9
	actorStrength        = 0.7
	similarLikedMin      = 0.3
	similarExamples      = 3
	highQualityRating    = 7.5
	highQualityVotes     = 1000
	trendingPopularity   = 50
	trendingSaturationAt = 100
)

// Reason is one fired detector.
type Reason struct {
	Type     string         `json:"type"`
	Strength float64        `json:"strength"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
}

// Explanation tells a user why a movie was recommended.
type Explanation struct {
	MovieID       int      `json:"movieId"`
	Title         string   `json:"title"`
	Reasons       []Reason `json:"reasons"`
	Confidence    float64  `json:"confidence"`
	SimilarMovies []string `json:"similarMovies,omitempty"`
	Text          string   `json:"text"`
}

// Talent is the set of directors and actors of the movies a user liked.
type Talent struct {
	Directors map[string]struct{}
	Actors    map[string]struct{}
}

// Explainer runs the reason detectors for one user and one movie.
type Explainer struct {
	interactions InteractionReader
	metadata     MetadataProvider
	cfg          Config
	log          zerolog.Logger
}

func NewExplainer(interactions InteractionReader, metadata MetadataProvider, cfg Config, log zerolog.Logger) *Explainer {
	return &Explainer{
		interactions: interactions,
		metadata:     metadata,
		cfg:          cfg.withDefaults(),
		log:          log.With().Str("component", "explainer").Logger(),
	}
}

// Explain builds the explanation of movie for userID. Only interaction store
// failures are returned; metadata failures drop the affected liked movie from
// the talent detector.
func (x *Explainer) Explain(ctx context.Context, userID int, movie CandidateMovie) (*Explanation, error) {
	liked, err := x.interactions.LikedMovies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("explain: read likes: %w", err)
	}
	watched, err := x.interactions.WatchHistory(ctx, userID, x.cfg.ProfileHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("explain: read watch history: %w", err)
	}

	var talent Talent
	if movie.Director != nil || len(movie.Cast) > 0 {
		talent = x.likedTalent(ctx, liked)
	}

	exp := BuildExplanation(movie, BuildProfile(liked, watched), liked, talent)

	metrics.Explanations.Inc()
	metrics.ExplanationConfidence.Observe(exp.Confidence)
	return exp, nil
}

// likedTalent looks up the newest liked movies with bounded concurrency.
func (x *Explainer) likedTalent(ctx context.Context, liked []Interaction) Talent {
	t := Talent{Directors: map[string]struct{}{}, Actors: map[string]struct{}{}}
	if x.metadata == nil || len(liked) == 0 {
		return t
	}
	if len(liked) > x.cfg.InteractionHistoryLimit {
		liked = liked[:x.cfg.InteractionHistoryLimit]
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(x.cfg.MetadataConcurrency)
	for _, in := range liked {
		g.Go(func() error {
			m, err := x.metadata.Movie(ctx, in.MovieID)
			if err != nil || m == nil {
				metrics.MetadataFailures.WithLabelValues("explain_talent").Inc()
				x.log.Debug().Err(err).Int("movie_id", in.MovieID).Msg("liked movie metadata unavailable")
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if m.Director != nil && *m.Director != "" {
				t.Directors[*m.Director] = struct{}{}
			}
			for _, a := range m.Cast {
				t.Actors[a] = struct{}{}
			}
			return nil
		})
	}
	_ = g.Wait()
	return t
}

// BuildExplanation runs the five detectors in order and renders the text.
func BuildExplanation(movie CandidateMovie, profile TasteProfile, liked []Interaction, talent Talent) *Explanation {
	exp := &Explanation{
		MovieID: movie.ID,
		Title:   movie.Title,
		Reasons: []Reason{},
	}

	if r := genreReason(movie, profile); r != nil {
		exp.Reasons = append(exp.Reasons, *r)
	}
	if r := talentReason(movie, talent); r != nil {
		exp.Reasons = append(exp.Reasons, *r)
	}
	if r, examples := similarReason(movie, liked); r != nil {
		exp.Reasons = append(exp.Reasons, *r)
		exp.SimilarMovies = examples
	}
	if r := qualityReason(movie); r != nil {
		exp.Reasons = append(exp.Reasons, *r)
	}
	if r := trendingReason(movie); r != nil {
		exp.Reasons = append(exp.Reasons, *r)
	}

	exp.Confidence = confidence(exp.Reasons)
	exp.Text = explanationText(exp)
	return exp
}

func genreReason(movie CandidateMovie, p TasteProfile) *Reason {
	ordered, set := genreSet(movie.Genres)
	if len(set) == 0 {
		return nil
	}

	var matching []string
	top, topWeight := "", 0.0
	for _, g := range ordered {
		w, ok := p.Weights[g]
		if !ok {
			continue
		}
		matching = append(matching, g)
		if top == "" || w > topWeight {
			top, topWeight = g, w
		}
	}
	if len(matching) == 0 {
		return nil
	}

	count := strconv.FormatFloat(topWeight, 'f', -1, 64)
	return &Reason{
		Type:     ReasonGenreMatch,
		Strength: math.Min(float64(len(matching))/float64(len(set)), 1),
		Message:  fmt.Sprintf("Recommended because you've enjoyed %s %s movies", count, top),
		Details: map[string]any{
			"matching_genres": matching,
			"top_genre":       top,
			"watch_count":     topWeight,
		},
	}
}

// talentReason fires on a liked director, else on liked cast members.
func talentReason(movie CandidateMovie, t Talent) *Reason {
	if movie.Director != nil && *movie.Director != "" {
		if _, ok := t.Directors[*movie.Director]; ok {
			return &Reason{
				Type:     ReasonDirectorMatch,
				Strength: directorStrength,
				Message:  fmt.Sprintf("Directed by %s, whose work you've enjoyed before", *movie.Director),
				Details:  map[string]any{"director": *movie.Director},
			}
		}
	}

	var actors []string
	seen := map[string]struct{}{}
	for _, a := range movie.Cast {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		if _, ok := t.Actors[a]; ok {
			actors = append(actors, a)
		}
	}
	if len(actors) == 0 {
		return nil
	}
	return &Reason{
		Type:     ReasonActorMatch,
		Strength: actorStrength,
		Message:  fmt.Sprintf("Features %s, who you liked in other movies", actors[0]),
		Details:  map[string]any{"actors": actors},
	}
}

func similarReason(movie CandidateMovie, liked []Interaction) (*Reason, []string) {
	_, target := genreSet(movie.Genres)
	if len(target) == 0 {
		return nil, nil
	}

	type match struct {
		title  string
		sim    float64
		common []string
	}
	var matches []match
	for _, in := range liked {
		ordered, set := genreSet(in.Genres)
		if len(set) == 0 {
			continue
		}
		sim := jaccard(target, set)
		if sim <= similarLikedMin {
			continue
		}
		var common []string
		for _, g := range ordered {
			if _, ok := target[g]; ok {
				common = append(common, g)
			}
		}
		matches = append(matches, match{title: in.Title, sim: sim, common: common})
	}
	if len(matches) == 0 {
		return nil, nil
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].sim > matches[j].sim })
	best := matches[0]

	examples := make([]string, 0, similarExamples)
	for _, m := range matches[:min(len(matches), similarExamples)] {
		examples = append(examples, m.title)
	}

	return &Reason{
		Type:     ReasonSimilarToLiked,
		Strength: best.sim,
		Message:  fmt.Sprintf("Similar to '%s' which you liked", best.title),
		Details: map[string]any{
			"reference_movie": best.title,
			"common_genres":   best.common,
		},
	}, examples
}

func qualityReason(movie CandidateMovie) *Reason {
	if movie.VoteAverage == nil || movie.VoteCount == nil {
		return nil
	}
	va, vc := *movie.VoteAverage, *movie.VoteCount
	if va < highQualityRating || vc < highQualityVotes {
		return nil
	}
	return &Reason{
		Type:     ReasonHighQuality,
		Strength: math.Min(va/10, 1),
		Message:  fmt.Sprintf("Highly rated (%s/10) by %s viewers", formatRating(va), groupThousands(vc)),
		Details: map[string]any{
			"rating":     va,
			"vote_count": vc,
		},
	}
}

func trendingReason(movie CandidateMovie) *Reason {
	if movie.Popularity == nil || *movie.Popularity <= trendingPopularity {
		return nil
	}
	pop := *movie.Popularity
	return &Reason{
		Type:     ReasonTrending,
		Strength: math.Min(pop/trendingSaturationAt, 1),
		Message:  "Currently trending and popular",
		Details:  map[string]any{"popularity": pop},
	}
}

func confidence(reasons []Reason) float64 {
	var total float64
	for _, r := range reasons {
		w, ok := reasonWeights[r.Type]
		if !ok {
			w = defaultReasonWeight
		}
		total += r.Strength * w
	}
	return round4(clamp(total, 0, 1))
}

func explanationText(exp *Explanation) string {
	if len(exp.Reasons) == 0 {
		return fmt.Sprintf("We recommend '%s' based on your viewing history.", exp.Title)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Why we recommend '%s':\n\n", exp.Title)
	for i, r := range exp.Reasons {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Message)
	}
	fmt.Fprintf(&b, "\nConfidence: %d%%", int(exp.Confidence*100+1e-9))

	if len(exp.SimilarMovies) > 0 {
		titles := exp.SimilarMovies[:min(len(exp.SimilarMovies), similarExamples)]
		fmt.Fprintf(&b, "\n\nYou might also like: %s", strings.Join(titles, ", "))
	}
	return b.String()
}

// formatRating prints 9 as "9.0" and 8.25 as "8.25".
func formatRating(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// groupThousands formats 25000 as "25,000".
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
