// Package recommend ranks movies for a user by fusing item-item collaborative
// filtering, a genre taste profile, catalog quality and review sentiment, and
// explains individual recommendations.
//
// The engine only talks to its collaborators through InteractionReader,
// MetadataProvider and PopularityRanker, and holds no lock across any of
// their calls.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MRuhan17/Movie-Recommender/internal/metrics"
	"github.com/MRuhan17/Movie-Recommender/internal/similarity"
)

// Deps are the engine's collaborators. Model and Sentiment may be nil.
type Deps struct {
	Model        *similarity.Model
	Interactions InteractionReader
	Metadata     MetadataProvider
	Popularity   PopularityRanker
	Sentiment    *SentimentAdjuster
}

// Engine is safe for concurrent use.
type Engine struct {
	model      *similarity.Model
	metadata   MetadataProvider
	popularity PopularityRanker
	sentiment  *SentimentAdjuster

	cf        *CollaborativeRecommender
	content   *ContentRecommender
	explainer *Explainer

	cfg Config
	log zerolog.Logger
}

func NewEngine(deps Deps, cfg Config, log zerolog.Logger) *Engine {
	cfg = cfg.withDefaults()
	if deps.Sentiment == nil {
		deps.Sentiment = NewSentimentAdjuster(DefaultSentimentWeight, nil)
	}

	movies := 0
	if deps.Model != nil {
		movies = deps.Model.Len()
	}
	metrics.ModelMovies.Set(float64(movies))

	return &Engine{
		model:      deps.Model,
		metadata:   deps.Metadata,
		popularity: deps.Popularity,
		sentiment:  deps.Sentiment,
		cf:         NewCollaborativeRecommender(deps.Model, deps.Interactions, deps.Popularity, cfg, log),
		content:    NewContentRecommender(deps.Interactions, cfg, log),
		explainer:  NewExplainer(deps.Interactions, deps.Metadata, cfg, log),
		cfg:        cfg,
		log:        log.With().Str("component", "engine").Logger(),
	}
}

// Model returns the loaded similarity model, nil when none is loaded.
func (e *Engine) Model() *similarity.Model { return e.model }

// Recommend returns the ranked list for req. It only fails on a cancelled
// context; every collaborator failure degrades and is listed in
// Response.Fallback.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues("recommend").Observe(time.Since(start).Seconds())
	}()

	topN := e.cfg.topN(req.TopN)
	resp := &Response{
		RequestID:   uuid.NewString(),
		UserID:      req.UserID,
		GeneratedAt: time.Now().UTC(),
	}

	var (
		items     []ScoredRecommendation
		degraded  map[int]bool
		coldStart bool
	)

	switch {
	case len(req.Candidates) > 0:
		resp.Path = SourceContent
		items, coldStart = e.scoreContent(ctx, resp, req.UserID, req.Candidates)

	case strings.TrimSpace(req.Query) != "":
		resp.Path = SourceContent
		var cands []CandidateMovie
		if e.metadata != nil {
			var err error
			cands, err = e.metadata.Search(ctx, strings.TrimSpace(req.Query), e.cfg.CandidatePoolSize)
			if err != nil {
				metrics.MetadataFailures.WithLabelValues("search").Inc()
				e.fallback(resp, fmt.Errorf("%w: search %q: %v", ErrMetadataLookup, req.Query, err))
			}
		}
		items, coldStart = e.scoreContent(ctx, resp, req.UserID, cands)

	default:
		items, degraded, coldStart = e.collaborativePath(ctx, resp, req.UserID)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if coldStart {
		resp.Path = SourceColdStart
		resp.ColdStart = true
	}
	resp.Items = fuse(items, e.sentiment, degraded, coldStart, topN)
	metrics.Recommendations.WithLabelValues(resp.Path).Inc()

	e.log.Debug().
		Str("request_id", resp.RequestID).
		Int("user_id", req.UserID).
		Str("path", resp.Path).
		Int("items", len(resp.Items)).
		Strs("fallback", resp.Fallback).
		Msg("recommendations ranked")
	return resp, nil
}

func (e *Engine) collaborativePath(ctx context.Context, resp *Response, userID int) ([]ScoredRecommendation, map[int]bool, bool) {
	res := e.cf.Recommend(ctx, userID, e.cfg.CandidatePoolSize)

	if res.Fallback == nil {
		resp.Path = SourceCollaborative
		cands, degraded := e.hydrate(ctx, res.IDs())
		top := res.Items[0].Score
		items := make([]ScoredRecommendation, len(cands))
		for i, c := range cands {
			score := 0.0
			if top > 0 {
				score = res.Items[i].Score / top
			}
			items[i] = ScoredRecommendation{
				CandidateMovie: c,
				CFScore:        score,
				Reason:         "Similar to movies you rated highly",
				Source:         SourceCollaborative,
			}
		}
		return items, degraded, false
	}

	resp.Path = SourcePopularity
	e.fallback(resp, res.Fallback)

	var (
		cands    []CandidateMovie
		degraded map[int]bool
	)
	if len(res.Items) > 0 {
		cands, degraded = e.hydrate(ctx, res.IDs())
	} else if e.metadata != nil {
		var err error
		cands, err = e.metadata.Trending(ctx, e.cfg.CandidatePoolSize)
		if err != nil {
			metrics.MetadataFailures.WithLabelValues("trending").Inc()
			e.fallback(resp, fmt.Errorf("%w: trending: %v", ErrMetadataLookup, err))
		}
	}

	items, coldStart := e.scoreContent(ctx, resp, userID, cands)
	for i := range items {
		if items[i].Source == SourceContent {
			items[i].Source = SourcePopularity
		}
	}
	return items, degraded, coldStart
}

func (e *Engine) scoreContent(ctx context.Context, resp *Response, userID int, cands []CandidateMovie) ([]ScoredRecommendation, bool) {
	if len(cands) == 0 {
		return nil, false
	}
	items, coldStart, err := e.content.rank(ctx, userID, cands, len(cands))
	if err != nil {
		e.fallback(resp, err)
		return passThrough(cands, len(cands), SourceContent), false
	}
	if coldStart {
		e.fallback(resp, fmt.Errorf("%w: cold start", ErrNoUserSignal))
	}
	return items, coldStart
}

// hydrate fetches metadata for ids in parallel, preserving order. Failed or
// empty lookups yield a bare CandidateMovie and are reported as degraded.
func (e *Engine) hydrate(ctx context.Context, ids []int) ([]CandidateMovie, map[int]bool) {
	out := make([]CandidateMovie, len(ids))
	failed := make([]bool, len(ids))

	var g errgroup.Group
	g.SetLimit(e.cfg.MetadataConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			out[i] = CandidateMovie{ID: id}
			if e.metadata == nil {
				failed[i] = true
				return nil
			}
			m, err := e.metadata.Movie(ctx, id)
			if err != nil || m == nil {
				metrics.MetadataFailures.WithLabelValues("movie").Inc()
				e.log.Debug().Err(err).Int("movie_id", id).Msg("candidate metadata unavailable")
				failed[i] = true
				return nil
			}
			out[i] = *m
			out[i].ID = id
			return nil
		})
	}
	_ = g.Wait()

	degraded := make(map[int]bool)
	for i, f := range failed {
		if f {
			degraded[ids[i]] = true
		}
	}
	return out, degraded
}

func (e *Engine) fallback(resp *Response, cause error) {
	resp.Fallback = append(resp.Fallback, cause.Error())
	metrics.Fallbacks.WithLabelValues(fallbackReason(cause)).Inc()
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrModelUnavailable):
		return "no_model"
	case errors.Is(err, ErrNoUserSignal):
		return "no_user_signal"
	case errors.Is(err, ErrMetadataLookup):
		return "metadata"
	case errors.Is(err, ErrMalformedSentimentSource):
		return "sentiment_source"
	case errors.Is(err, errNoCFCandidates):
		return "no_candidates"
	default:
		return "error"
	}
}

// Explain explains why movie is recommended to userID.
func (e *Engine) Explain(ctx context.Context, userID int, movie CandidateMovie) (*Explanation, error) {
	start := time.Now()
	defer func() {
		metrics.RequestDuration.WithLabelValues("explain").Observe(time.Since(start).Seconds())
	}()
	return e.explainer.Explain(ctx, userID, movie)
}

// ExplainMovie resolves movieID through the metadata provider and explains
// it. An unknown movie is ErrMetadataLookup.
func (e *Engine) ExplainMovie(ctx context.Context, userID, movieID int) (*Explanation, error) {
	if e.metadata == nil {
		return nil, fmt.Errorf("%w: no metadata provider", ErrMetadataLookup)
	}
	m, err := e.metadata.Movie(ctx, movieID)
	if err != nil {
		metrics.MetadataFailures.WithLabelValues("movie").Inc()
		return nil, fmt.Errorf("%w: movie %d: %v", ErrMetadataLookup, movieID, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: movie %d not found", ErrMetadataLookup, movieID)
	}
	return e.Explain(ctx, userID, *m)
}

// Similar returns up to topN nearest neighbours of movieID. Without a model,
// or for a movie outside the index, it returns the most popular movies
// instead, never movieID itself.
func (e *Engine) Similar(ctx context.Context, movieID, topN int) ([]int, error) {
	topN = e.cfg.topN(topN)

	if e.model != nil && e.model.Contains(movieID) {
		ns, err := e.model.Neighbors(movieID, topN)
		if err != nil {
			return nil, err
		}
		ids := make([]int, len(ns))
		for i, n := range ns {
			ids[i] = n.MovieID
		}
		return ids, nil
	}

	reason := ErrModelUnavailable
	if e.model != nil {
		reason = fmt.Errorf("%w: movie %d not in index", ErrModelUnavailable, movieID)
	}
	metrics.Fallbacks.WithLabelValues(fallbackReason(reason)).Inc()

	if e.popularity == nil {
		return []int{}, nil
	}
	pop, err := e.popularity.PopularMovieIDs(ctx, topN+1)
	if err != nil {
		return nil, fmt.Errorf("similar movies for %d: %w", movieID, err)
	}
	ids := make([]int, 0, topN)
	for _, id := range pop {
		if id == movieID {
			continue
		}
		ids = append(ids, id)
		if len(ids) == topN {
			break
		}
	}
	return ids, nil
}

// PredictRating predicts userID's 0-5 rating of movieID, blended with the
// movie's review sentiment when sentiment data is loaded.
func (e *Engine) PredictRating(ctx context.Context, userID, movieID int) (float64, error) {
	pred, err := e.cf.PredictRating(ctx, userID, movieID)
	if err != nil {
		return 0, err
	}
	if e.sentiment.HasData() {
		pred = e.sentiment.Adjust(pred, movieID)
	}
	return pred, nil
}
