package repository

import (
	"context"
	"time"

	"github.com/MRuhan17/Movie-Recommender/internal/db"
	"github.com/MRuhan17/Movie-Recommender/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RatingRepository struct {
	col *mongo.Collection
}

func NewRatingRepository() *RatingRepository {
	return &RatingRepository{col: db.DB().Collection(db.RatingsCollection)}
}

func (r *RatingRepository) UpsertRating(ctx context.Context, userID, movieID int, rating float64) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"userId": userID, "movieId": movieID},
		bson.M{"$set": bson.M{
			"rating": rating,
			// stored as epoch seconds (int64), like the MovieLens import
			"timestamp": time.Now().Unix(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetOne returns the user's rating of movieID, nil if none.
func (r *RatingRepository) GetOne(ctx context.Context, userID, movieID int) (*models.RatingDoc, error) {
	var raw bson.M
	err := r.col.FindOne(ctx, bson.M{"userId": userID, "movieId": movieID}).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rd := ratingFromRaw(raw)
	return &rd, nil
}

// safe casts: the MovieLens import stores numbers as int32, int64 or double
// depending on the tool that loaded it
func asInt(v any) int {
	switch x := v.(type) {
	case int32:
		return int(x)
	case int64:
		return int(x)
	case float64:
		return int(x)
	default:
		return 0
	}
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int32:
		return int64(x)
	case int64:
		return x
	case float64:
		return int64(x)
	default:
		return 0
	}
}

func asFloat64(v any) float64 {
	switch x := v.(type) {
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	default:
		return 0
	}
}

func ratingFromRaw(raw bson.M) models.RatingDoc {
	return models.RatingDoc{
		UserID:    asInt(raw["userId"]),
		MovieID:   asInt(raw["movieId"]),
		Rating:    asFloat64(raw["rating"]),
		Timestamp: asInt64(raw["timestamp"]),
	}
}

// GetByUser lists a user's ratings, most recent first.
func (r *RatingRepository) GetByUser(ctx context.Context, userID, limit, offset int) ([]models.RatingDoc, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"userId": userID},
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "movieId", Value: 1}}).
			SetLimit(int64(limit)).
			SetSkip(int64(offset)),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.RatingDoc
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		out = append(out, ratingFromRaw(raw))
	}
	return out, cur.Err()
}

func (r *RatingRepository) GetAllByUser(ctx context.Context, userID int) ([]models.RatingDoc, error) {
	return r.GetByUser(ctx, userID, 10000, 0)
}

// StatsForMovie aggregates the count and average of a movie's ratings.
func (r *RatingRepository) StatsForMovie(ctx context.Context, movieID int) (models.RatingStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"movieId": movieID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"count":   bson.M{"$sum": 1},
			"average": bson.M{"$avg": "$rating"},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingStats{}, err
	}
	defer cur.Close(ctx)

	var stats models.RatingStats
	if cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return models.RatingStats{}, err
		}
		stats.Count = asInt(raw["count"])
		stats.Average = asFloat64(raw["average"])
	}
	return stats, cur.Err()
}

// ForEach streams every rating to fn in (userId, movieId) order. It stops at
// the first error fn returns.
func (r *RatingRepository) ForEach(ctx context.Context, fn func(models.RatingDoc) error) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "userId", Value: 1}, {Key: "movieId", Value: 1}}).
		SetBatchSize(5000)

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return err
		}
		if err := fn(ratingFromRaw(raw)); err != nil {
			return err
		}
	}
	return cur.Err()
}
