package recommend

import (
	"context"
	"time"
)

// InteractionKind distinguishes the two append-only interaction logs.
type InteractionKind string

const (
	KindWatched InteractionKind = "watched"
	KindLiked   InteractionKind = "liked"
)

// Interaction is one watched or liked event. Title and Genres are captured at
// interaction time so profiles can be built without a metadata lookup.
type Interaction struct {
	UserID    int             `json:"userId"`
	MovieID   int             `json:"movieId"`
	Kind      InteractionKind `json:"kind"`
	Title     string          `json:"title"`
	Genres    []string        `json:"genres"`
	Rating    *float64        `json:"rating,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Rating is a user's explicit 0-5 score for a movie.
type Rating struct {
	UserID  int     `json:"userId"`
	MovieID int     `json:"movieId"`
	Value   float64 `json:"rating"`
}

// CandidateMovie is a movie with whatever metadata the catalog could supply.
// Nil pointers and a nil Cast mean "unknown", which is not the same as zero.
type CandidateMovie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Genres      []string `json:"genres"`
	Director    *string  `json:"director,omitempty"`
	Cast        []string `json:"cast,omitempty"`
	VoteAverage *float64 `json:"voteAverage,omitempty"`
	VoteCount   *int     `json:"voteCount,omitempty"`
	Popularity  *float64 `json:"popularity,omitempty"`
	Sentiment   *float64 `json:"sentiment,omitempty"`
}

// Recommendation sources.
const (
	SourceCollaborative = "collaborative"
	SourceContent       = "content"
	SourcePopularity    = "popularity"
	SourceColdStart     = "cold_start"
)

// ScoredRecommendation is a candidate annotated with every score that went
// into its rank. It only lives for one request.
type ScoredRecommendation struct {
	CandidateMovie

	CFScore        float64 `json:"cfScore"`
	ContentScore   float64 `json:"contentScore"`
	QualityScore   float64 `json:"qualityScore"`
	SentimentScore float64 `json:"sentimentScore"`
	FinalScore     float64 `json:"finalScore"`
	Reason         string  `json:"reason,omitempty"`
	Source         string  `json:"source"`
}

// Request asks the engine for a ranked list.
//
// Candidates, when set, are ranked as given. Otherwise Query drives a catalog
// search. With neither, the collaborative path picks the pool.
//
// A cold-start user gets Candidates back in input order, with two changes:
// a repeated id keeps only its first occurrence, and the list is cut at TopN.
// TopN <= 0 means DefaultTopN and values above MaxTopN are capped.
type Request struct {
	UserID     int              `json:"userId"`
	Query      string           `json:"query,omitempty"`
	Candidates []CandidateMovie `json:"candidates,omitempty"`
	TopN       int              `json:"topN,omitempty"`
}

// Response is the ranked output of Engine.Recommend.
type Response struct {
	RequestID   string                 `json:"requestId"`
	UserID      int                    `json:"userId"`
	Items       []ScoredRecommendation `json:"items"`
	Path        string                 `json:"path"`
	Fallback    []string               `json:"fallback,omitempty"`
	ColdStart   bool                   `json:"coldStart"`
	GeneratedAt time.Time              `json:"generatedAt"`
}

// InteractionReader reads a user's interaction state.
type InteractionReader interface {
	// LikedMovies returns the user's likes, newest first.
	LikedMovies(ctx context.Context, userID int) ([]Interaction, error)
	// WatchHistory returns up to limit watched entries, newest first.
	// limit <= 0 returns the whole history.
	WatchHistory(ctx context.Context, userID, limit int) ([]Interaction, error)
	// Ratings returns every rating of the user.
	Ratings(ctx context.Context, userID int) ([]Rating, error)
}

// MetadataProvider resolves movie metadata. Movie returns (nil, nil) when the
// movie is unknown.
type MetadataProvider interface {
	Movie(ctx context.Context, movieID int) (*CandidateMovie, error)
	Search(ctx context.Context, query string, limit int) ([]CandidateMovie, error)
	Trending(ctx context.Context, limit int) ([]CandidateMovie, error)
}

// PopularityRanker lists movie ids by descending popularity.
type PopularityRanker interface {
	PopularMovieIDs(ctx context.Context, n int) ([]int, error)
}
