package models

import "time"

// InteractionDoc is a row of the watch_history or likes collection. Title and
// genres are copied from the movie when the interaction is recorded.
type InteractionDoc struct {
	UserID    int       `json:"userId" bson:"userId"`
	MovieID   int       `json:"movieId" bson:"movieId"`
	Title     string    `json:"title" bson:"title"`
	Genres    []string  `json:"genres" bson:"genres"`
	Rating    *float64  `json:"rating,omitempty" bson:"rating,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// WatchRequest is the body of POST /users/{userId}/history.
type WatchRequest struct {
	MovieID int      `json:"movieId" validate:"required,gt=0"`
	Rating  *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
}

// LikeRequest is the body of POST /users/{userId}/likes.
type LikeRequest struct {
	MovieID int `json:"movieId" validate:"required,gt=0"`
}

// UserProfile summarises a user's interactions.
type UserProfile struct {
	UserID         int                `json:"userId"`
	TotalWatched   int64              `json:"totalWatched"`
	TotalLiked     int64              `json:"totalLiked"`
	FavoriteGenres []string           `json:"favoriteGenres"`
	GenreWeights   map[string]float64 `json:"genreWeights"`
	RecentlyLiked  []InteractionDoc   `json:"recentlyLiked"`
	RecentlyViewed []InteractionDoc   `json:"recentlyViewed"`
}
