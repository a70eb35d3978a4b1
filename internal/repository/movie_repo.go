// internal/repository/movie_repo.go
package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/MRuhan17/Movie-Recommender/internal/db"
	"github.com/MRuhan17/Movie-Recommender/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sort metrics accepted by Top.
const (
	TopByCount      = "popular"
	TopByRating     = "rating"
	TopByPopularity = "trending"
)

type MovieRepository struct {
	col *mongo.Collection
}

func NewMovieRepository() *MovieRepository {
	return &MovieRepository{col: db.DB().Collection(db.MoviesCollection)}
}

func (r *MovieRepository) GetByID(ctx context.Context, movieID int) (*models.MovieDoc, error) {
	var m models.MovieDoc
	err := r.col.FindOne(ctx, bson.M{"movieId": movieID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &m, err
}

// GetByTMDBIDs returns the catalog movies linked to the given TMDB ids, keyed
// by TMDB id. Ids without a catalog movie are absent from the map.
func (r *MovieRepository) GetByTMDBIDs(ctx context.Context, tmdbIDs []string) (map[string]models.MovieDoc, error) {
	out := make(map[string]models.MovieDoc, len(tmdbIDs))
	if len(tmdbIDs) == 0 {
		return out, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"links.tmdb": bson.M{"$in": tmdbIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var m models.MovieDoc
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out[m.TMDBID()] = m
	}
	return out, cur.Err()
}

// Search filters by title substring (case-insensitive), genre and year range.
func (r *MovieRepository) Search(
	ctx context.Context,
	q string,
	genre string,
	yearFrom, yearTo int,
	limit, offset int,
) ([]models.MovieDoc, error) {

	filter := bson.M{}

	if q != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
	}
	if genre != "" {
		// genres is an array; this matches documents containing the genre
		filter["genres"] = genre
	}
	if yearFrom > 0 || yearTo > 0 {
		yearCond := bson.M{}
		if yearFrom > 0 {
			yearCond["$gte"] = yearFrom
		}
		if yearTo > 0 {
			yearCond["$lte"] = yearTo
		}
		filter["year"] = yearCond
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "ratingStats.count", Value: -1}, {Key: "movieId", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	return r.find(ctx, filter, opts)
}

// Top returns movies ordered by metric: TopByCount (number of ratings),
// TopByRating (average rating) or TopByPopularity (TMDB popularity).
func (r *MovieRepository) Top(ctx context.Context, metric string, limit int) ([]models.MovieDoc, error) {
	sort := bson.D{{Key: "ratingStats.count", Value: -1}}
	switch metric {
	case TopByRating:
		sort = bson.D{{Key: "ratingStats.average", Value: -1}, {Key: "ratingStats.count", Value: -1}}
	case TopByPopularity:
		sort = bson.D{{Key: "externalData.popularity", Value: -1}, {Key: "ratingStats.count", Value: -1}}
	}

	opts := options.Find().
		SetSort(append(sort, bson.E{Key: "movieId", Value: 1})).
		SetLimit(int64(limit))

	return r.find(ctx, bson.M{}, opts)
}

// PopularMovieIDs returns the ids of the n most-rated movies.
func (r *MovieRepository) PopularMovieIDs(ctx context.Context, n int) ([]int, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "ratingStats.count", Value: -1}, {Key: "movieId", Value: 1}}).
		SetProjection(bson.M{"movieId": 1}).
		SetLimit(int64(n))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := make([]int, 0, n)
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		ids = append(ids, asInt(raw["movieId"]))
	}
	return ids, cur.Err()
}

func (r *MovieRepository) SetExternalData(ctx context.Context, movieID int, ext *models.ExternalData) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"movieId": movieID},
		bson.M{"$set": bson.M{
			"externalData": ext,
			"updatedAt":    time.Now().UTC().Format(time.RFC3339),
		}},
	)
	return err
}

func (r *MovieRepository) SetRatingStats(ctx context.Context, movieID int, stats models.RatingStats) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"movieId": movieID},
		bson.M{"$set": bson.M{
			"ratingStats": stats,
			"updatedAt":   time.Now().UTC().Format(time.RFC3339),
		}},
	)
	return err
}

func (r *MovieRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

// CountNotIn counts catalog movies whose id is not in ids.
func (r *MovieRepository) CountNotIn(ctx context.Context, ids []int) (int64, error) {
	if ids == nil {
		ids = []int{}
	}
	return r.col.CountDocuments(ctx, bson.M{"movieId": bson.M{"$nin": ids}})
}

// MostRatedNotIn lists the most-rated catalog movies whose id is not in ids.
func (r *MovieRepository) MostRatedNotIn(ctx context.Context, ids []int, limit int) ([]models.MovieDoc, error) {
	if ids == nil {
		ids = []int{}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "ratingStats.count", Value: -1}, {Key: "movieId", Value: 1}}).
		SetProjection(bson.M{"movieId": 1, "title": 1, "ratingStats": 1}).
		SetLimit(int64(limit))

	return r.find(ctx, bson.M{"movieId": bson.M{"$nin": ids}}, opts)
}

func (r *MovieRepository) find(ctx context.Context, filter any, opts *options.FindOptions) ([]models.MovieDoc, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.MovieDoc
	for cur.Next(ctx) {
		var m models.MovieDoc
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, cur.Err()
}
