package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MRuhan17/Movie-Recommender/internal/recommend"
)

const similarConcurrency = 4

// Stream event types, in the order they are emitted.
const (
	EventRecommendations = "recommendations"
	EventExplanation     = "explanation"
	EventDone            = "done"
	EventError           = "error"
)

// StreamEvent is one message of a streamed recommendation session.
type StreamEvent struct {
	Type            string                 `json:"type"`
	Recommendations *recommend.Response    `json:"recommendations,omitempty"`
	Explanation     *recommend.Explanation `json:"explanation,omitempty"`
	Error           string                 `json:"error,omitempty"`
}

type RecommendService struct {
	engine   *recommend.Engine
	metadata recommend.MetadataProvider
	log      zerolog.Logger
}

func NewRecommendService(engine *recommend.Engine, metadata recommend.MetadataProvider, log zerolog.Logger) *RecommendService {
	return &RecommendService{engine: engine, metadata: metadata, log: log}
}

func (s *RecommendService) Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error) {
	return s.engine.Recommend(ctx, req)
}

func (s *RecommendService) Explain(ctx context.Context, userID, movieID int) (*recommend.Explanation, error) {
	return s.engine.ExplainMovie(ctx, userID, movieID)
}

func (s *RecommendService) PredictRating(ctx context.Context, userID, movieID int) (float64, error) {
	return s.engine.PredictRating(ctx, userID, movieID)
}

// Similar returns up to n movies similar to movieID with their metadata, in
// similarity order. Neighbours the catalog does not know are dropped.
func (s *RecommendService) Similar(ctx context.Context, movieID, n int) ([]recommend.CandidateMovie, error) {
	m, err := s.metadata.Movie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %d", ErrMovieNotFound, movieID)
	}

	ids, err := s.engine.Similar(ctx, movieID, n)
	if err != nil {
		return nil, err
	}

	found := make([]*recommend.CandidateMovie, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(similarConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			c, err := s.metadata.Movie(gctx, id)
			if err != nil {
				s.log.Debug().Err(err).Int("movie_id", id).Msg("similar: metadata lookup failed")
				return nil
			}
			found[i] = c
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]recommend.CandidateMovie, 0, len(found))
	for _, c := range found {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

// Stream produces the ranked list first, then one explanation per item in
// rank order. It stops at the first emit error. Explanation failures are
// emitted as error events and do not end the stream.
func (s *RecommendService) Stream(ctx context.Context, req recommend.Request, emit func(StreamEvent) error) error {
	resp, err := s.engine.Recommend(ctx, req)
	if err != nil {
		return err
	}
	if err := emit(StreamEvent{Type: EventRecommendations, Recommendations: resp}); err != nil {
		return err
	}

	for _, item := range resp.Items {
		exp, err := s.engine.Explain(ctx, req.UserID, item.CandidateMovie)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := emit(StreamEvent{Type: EventError, Error: fmt.Sprintf("explain movie %d: %v", item.ID, err)}); err != nil {
				return err
			}
			continue
		}
		if err := emit(StreamEvent{Type: EventExplanation, Explanation: exp}); err != nil {
			return err
		}
	}
	return emit(StreamEvent{Type: EventDone})
}
