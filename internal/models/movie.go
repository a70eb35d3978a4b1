package models

type Links struct {
	Movielens string `json:"movielens,omitempty" bson:"movielens,omitempty"`
	IMDB      string `json:"imdb,omitempty" bson:"imdb,omitempty"`
	TMDB      string `json:"tmdb,omitempty" bson:"tmdb,omitempty"`
}

type CastMember struct {
	Name       string `json:"name" bson:"name"`
	ProfileURL string `json:"profileUrl,omitempty" bson:"profileUrl,omitempty"`
}

// ExternalData is what TMDB contributes to a movie. Pointer fields are nil
// until TMDB answered for them.
type ExternalData struct {
	PosterURL   string       `json:"posterUrl,omitempty" bson:"posterUrl,omitempty"`
	Overview    string       `json:"overview,omitempty" bson:"overview,omitempty"`
	Cast        []CastMember `json:"cast,omitempty" bson:"cast,omitempty"`
	Director    string       `json:"director,omitempty" bson:"director,omitempty"`
	Runtime     int          `json:"runtime,omitempty" bson:"runtime,omitempty"`
	VoteAverage *float64     `json:"voteAverage,omitempty" bson:"voteAverage,omitempty"`
	VoteCount   *int         `json:"voteCount,omitempty" bson:"voteCount,omitempty"`
	Popularity  *float64     `json:"popularity,omitempty" bson:"popularity,omitempty"`
	// Sentiment of TMDB reviews on a 0-1 scale.
	Sentiment   *float64 `json:"sentiment,omitempty" bson:"sentiment,omitempty"`
	TMDBFetched bool     `json:"tmdbFetched" bson:"tmdbFetched"`
}

type RatingStats struct {
	Average     float64 `json:"average" bson:"average"`
	Count       int     `json:"count" bson:"count"`
	LastRatedAt string  `json:"lastRatedAt,omitempty" bson:"lastRatedAt,omitempty"`
}

type MovieDoc struct {
	MovieID      int           `json:"movieId" bson:"movieId"`
	Title        string        `json:"title" bson:"title"`
	Year         *int          `json:"year,omitempty" bson:"year,omitempty"`
	Genres       []string      `json:"genres" bson:"genres"`
	Links        *Links        `json:"links,omitempty" bson:"links,omitempty"`
	RatingStats  *RatingStats  `json:"ratingStats,omitempty" bson:"ratingStats,omitempty"`
	ExternalData *ExternalData `json:"externalData,omitempty" bson:"externalData,omitempty"`
	CreatedAt    string        `json:"createdAt" bson:"createdAt"`
	UpdatedAt    string        `json:"updatedAt" bson:"updatedAt"`
}

// TMDBID returns the TMDB id from Links, "" when unknown.
func (m *MovieDoc) TMDBID() string {
	if m.Links == nil {
		return ""
	}
	return m.Links.TMDB
}
