package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MRuhan17/Movie-Recommender/internal/config"
	"github.com/MRuhan17/Movie-Recommender/internal/logging"
)

// Collection names.
const (
	MoviesCollection       = "movies"
	RatingsCollection      = "ratings"
	WatchHistoryCollection = "watch_history"
	LikesCollection        = "likes"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

// InitMongo connects, pings and selects the configured database.
func InitMongo(ctx context.Context, cfg config.MongoConfig) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("mongo ping: %w", err)
	}

	mongoClient = client
	mongoDB = client.Database(cfg.Database)
	logging.Info().Str("database", cfg.Database).Msg("mongo connected")
	return nil
}

// EnsureIndexes creates the indexes the repositories rely on. Creating an
// existing index is a no-op.
func EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		MoviesCollection: {
			{Keys: bson.D{{Key: "movieId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "externalData.popularity", Value: -1}}},
			{Keys: bson.D{{Key: "ratingStats.count", Value: -1}}},
			{Keys: bson.D{{Key: "links.tmdb", Value: 1}}},
		},
		RatingsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "movieId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		WatchHistoryCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		LikesCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "movieId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for col, models := range specs {
		if _, err := mongoDB.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("indexes on %s: %w", col, err)
		}
	}
	return nil
}

func DB() *mongo.Database {
	return mongoDB
}

// Close disconnects the client if InitMongo succeeded.
func Close(ctx context.Context) error {
	if mongoClient == nil {
		return nil
	}
	return mongoClient.Disconnect(ctx)
}
