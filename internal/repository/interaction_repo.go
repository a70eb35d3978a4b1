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

// InteractionRepository stores watch history (append-only, a movie may be
// watched many times) and likes (one per user and movie).
type InteractionRepository struct {
	history *mongo.Collection
	likes   *mongo.Collection
}

func NewInteractionRepository() *InteractionRepository {
	return &InteractionRepository{
		history: db.DB().Collection(db.WatchHistoryCollection),
		likes:   db.DB().Collection(db.LikesCollection),
	}
}

func (r *InteractionRepository) AddWatched(ctx context.Context, doc models.InteractionDoc) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	_, err := r.history.InsertOne(ctx, doc)
	return err
}

// AddLike records a like. added is false when the user already liked the movie.
func (r *InteractionRepository) AddLike(ctx context.Context, doc models.InteractionDoc) (bool, error) {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	res, err := r.likes.UpdateOne(ctx,
		bson.M{"userId": doc.UserID, "movieId": doc.MovieID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// RemoveLike deletes a like. removed is false when there was nothing to delete.
func (r *InteractionRepository) RemoveLike(ctx context.Context, userID, movieID int) (bool, error) {
	res, err := r.likes.DeleteOne(ctx, bson.M{"userId": userID, "movieId": movieID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// WatchHistory returns up to limit entries, newest first. limit <= 0 means all.
func (r *InteractionRepository) WatchHistory(ctx context.Context, userID, limit int) ([]models.InteractionDoc, error) {
	return findInteractions(ctx, r.history, userID, limit)
}

// Likes returns up to limit likes, newest first. limit <= 0 means all.
func (r *InteractionRepository) Likes(ctx context.Context, userID, limit int) ([]models.InteractionDoc, error) {
	return findInteractions(ctx, r.likes, userID, limit)
}

func (r *InteractionRepository) CountWatched(ctx context.Context, userID int) (int64, error) {
	return r.history.CountDocuments(ctx, bson.M{"userId": userID})
}

func (r *InteractionRepository) CountLikes(ctx context.Context, userID int) (int64, error) {
	return r.likes.CountDocuments(ctx, bson.M{"userId": userID})
}

func findInteractions(ctx context.Context, col *mongo.Collection, userID, limit int) ([]models.InteractionDoc, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.InteractionDoc{}
	for cur.Next(ctx) {
		var d models.InteractionDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, cur.Err()
}
