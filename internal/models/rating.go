package models

// Lo que está en Mongo
type RatingDoc struct {
	UserID    int     `json:"userId" bson:"userId"`
	MovieID   int     `json:"movieId" bson:"movieId"`
	Rating    float64 `json:"rating" bson:"rating"`
	Timestamp int64   `json:"timestamp" bson:"timestamp"`
}

// RatingRequest is the body of POST /users/{id}/ratings.
type RatingRequest struct {
	MovieID int     `json:"movieId" validate:"required,gt=0"`
	Rating  float64 `json:"rating" validate:"gte=0,lte=5"`
}
