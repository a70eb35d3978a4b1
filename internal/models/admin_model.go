package models

import "time"

// ModelSummary describes the similarity artifact the API is serving.
type ModelSummary struct {
	Loaded           bool       `json:"loaded"`
	ArtifactPath     string     `json:"artifactPath"`
	Movies           int        `json:"movies"`
	Ratings          int        `json:"ratings"`
	Users            int        `json:"users"`
	BuiltAt          *time.Time `json:"builtAt,omitempty"`
	CatalogMovies    int64      `json:"catalogMovies"`
	MoviesNotInModel int64      `json:"moviesNotInModel"`
	SentimentLoaded  bool       `json:"sentimentLoaded"`
	SentimentWeight  float64    `json:"sentimentWeight"`
}

// PendingMovie is a catalog movie the loaded artifact does not cover yet.
type PendingMovie struct {
	MovieID      int    `json:"movieId"`
	Title        string `json:"title"`
	RatingsCount int    `json:"ratingsCount"`
}

// ModelPending lists the most-rated movies missing from the artifact; they
// are picked up by the next trainer run.
type ModelPending struct {
	Movies []PendingMovie `json:"movies"`
}
