// Package catalog serves movie metadata to the engine and the HTTP layer.
//
// Movies live in Mongo. TMDB fills in overview, director, cast, votes and
// popularity the first time a movie is looked at; the result is written back
// so later reads are local. TMDB problems never fail a catalog read, they only
// leave the movie less enriched.
package catalog

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MRuhan17/Movie-Recommender/internal/metrics"
	"github.com/MRuhan17/Movie-Recommender/internal/models"
	"github.com/MRuhan17/Movie-Recommender/internal/recommend"
	"github.com/MRuhan17/Movie-Recommender/internal/tmdb"
)

// MovieStore is the persistence the catalog needs; *repository.MovieRepository
// implements it.
type MovieStore interface {
	GetByID(ctx context.Context, movieID int) (*models.MovieDoc, error)
	GetByTMDBIDs(ctx context.Context, tmdbIDs []string) (map[string]models.MovieDoc, error)
	Search(ctx context.Context, q, genre string, yearFrom, yearTo, limit, offset int) ([]models.MovieDoc, error)
	Top(ctx context.Context, metric string, limit int) ([]models.MovieDoc, error)
	PopularMovieIDs(ctx context.Context, n int) ([]int, error)
	SetExternalData(ctx context.Context, movieID int, ext *models.ExternalData) error
}

// MovieSource is the external metadata source; *tmdb.Client implements it.
type MovieSource interface {
	Enabled() bool
	Movie(ctx context.Context, tmdbID int) (*tmdb.Movie, error)
	Search(ctx context.Context, query string, page int) (*tmdb.Page, error)
	Trending(ctx context.Context, page int) (*tmdb.Page, error)
}

// Top metric used when TMDB trending is unavailable.
const trendingMetric = "trending"

const enrichConcurrency = 4

type Catalog struct {
	store  MovieStore
	source MovieSource
	log    zerolog.Logger
}

// New builds a catalog. source may be nil, in which case nothing is enriched.
func New(store MovieStore, source MovieSource, log zerolog.Logger) *Catalog {
	return &Catalog{store: store, source: source, log: log}
}

var (
	_ recommend.MetadataProvider = (*Catalog)(nil)
	_ recommend.PopularityRanker = (*Catalog)(nil)
)

// =======================================================
//  Documents (HTTP layer)
// =======================================================

// Get returns the enriched movie document, nil if the id is unknown.
func (c *Catalog) Get(ctx context.Context, movieID int) (*models.MovieDoc, error) {
	doc, err := c.store.GetByID(ctx, movieID)
	if err != nil || doc == nil {
		return doc, err
	}
	if err := c.enrich(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SearchDocs filters the local catalog. Results are not enriched.
func (c *Catalog) SearchDocs(ctx context.Context, q, genre string, yearFrom, yearTo, limit, offset int) ([]models.MovieDoc, error) {
	return c.store.Search(ctx, q, genre, yearFrom, yearTo, limit, offset)
}

// TopDocs ranks the local catalog by metric, see repository.MovieRepository.Top.
func (c *Catalog) TopDocs(ctx context.Context, metric string, limit int) ([]models.MovieDoc, error) {
	return c.store.Top(ctx, metric, limit)
}

// TrendingDocs returns catalog movies in TMDB weekly-trending order, or the
// locally most popular ones when TMDB cannot answer.
func (c *Catalog) TrendingDocs(ctx context.Context, limit int) ([]models.MovieDoc, error) {
	if docs, ok := c.tmdbTrending(ctx, limit); ok {
		return docs, nil
	}
	return c.store.Top(ctx, trendingMetric, limit)
}

// =======================================================
//  recommend.MetadataProvider / PopularityRanker
// =======================================================

// Movie returns the candidate view of a movie, nil if unknown.
func (c *Catalog) Movie(ctx context.Context, movieID int) (*recommend.CandidateMovie, error) {
	doc, err := c.Get(ctx, movieID)
	if err != nil || doc == nil {
		return nil, err
	}
	cand := ToCandidate(doc)
	return &cand, nil
}

// Search looks the query up by title locally; when nothing matches it asks
// TMDB and keeps the results that exist in the catalog.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]recommend.CandidateMovie, error) {
	docs, err := c.store.Search(ctx, query, "", 0, 0, limit, 0)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		docs = c.tmdbSearch(ctx, query, limit)
	}
	c.enrichAll(ctx, docs)
	return toCandidates(docs), nil
}

func (c *Catalog) Trending(ctx context.Context, limit int) ([]recommend.CandidateMovie, error) {
	docs, err := c.TrendingDocs(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toCandidates(docs), nil
}

func (c *Catalog) PopularMovieIDs(ctx context.Context, n int) ([]int, error) {
	return c.store.PopularMovieIDs(ctx, n)
}

// =======================================================
//  TMDB
// =======================================================

func (c *Catalog) tmdbEnabled() bool {
	return c.source != nil && c.source.Enabled()
}

func (c *Catalog) tmdbSearch(ctx context.Context, query string, limit int) []models.MovieDoc {
	if !c.tmdbEnabled() {
		return nil
	}
	page, err := c.source.Search(ctx, query, 1)
	if err != nil {
		metrics.MetadataFailures.WithLabelValues("search").Inc()
		c.log.Warn().Err(err).Str("query", query).Msg("tmdb search failed")
		return nil
	}
	return c.mapResults(ctx, page.Results, limit)
}

func (c *Catalog) tmdbTrending(ctx context.Context, limit int) ([]models.MovieDoc, bool) {
	if !c.tmdbEnabled() {
		return nil, false
	}
	page, err := c.source.Trending(ctx, 1)
	if err != nil {
		metrics.MetadataFailures.WithLabelValues("trending").Inc()
		c.log.Warn().Err(err).Msg("tmdb trending failed")
		return nil, false
	}
	docs := c.mapResults(ctx, page.Results, limit)
	return docs, len(docs) > 0
}

// mapResults keeps the TMDB results that exist in the catalog, in TMDB
// order, filling in list-level fields the document does not have yet.
func (c *Catalog) mapResults(ctx context.Context, results []tmdb.SearchResult, limit int) []models.MovieDoc {
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, strconv.Itoa(r.ID))
	}
	byTMDB, err := c.store.GetByTMDBIDs(ctx, ids)
	if err != nil {
		c.log.Warn().Err(err).Msg("map tmdb ids to catalog")
		return nil
	}

	out := make([]models.MovieDoc, 0, min(limit, len(results)))
	for i, r := range results {
		if len(out) >= limit {
			break
		}
		doc, ok := byTMDB[ids[i]]
		if !ok {
			continue
		}
		if doc.ExternalData == nil {
			doc.ExternalData = fromSearchResult(&r)
		}
		out = append(out, doc)
	}
	return out
}

// enrich fills doc.ExternalData from TMDB when it has never been fetched and
// persists the result. Only cancellation of ctx is reported as an error.
func (c *Catalog) enrich(ctx context.Context, doc *models.MovieDoc) error {
	if doc.ExternalData != nil && doc.ExternalData.TMDBFetched {
		return nil
	}
	if !c.tmdbEnabled() {
		return nil
	}
	tmdbID, err := strconv.Atoi(doc.TMDBID())
	if err != nil || tmdbID <= 0 {
		return nil
	}

	m, err := c.source.Movie(ctx, tmdbID)
	switch {
	case err == nil:
		doc.ExternalData = fromTMDB(m)
	case errors.Is(err, tmdb.ErrNotFound):
		// remember the miss so the movie is not looked up again
		doc.ExternalData = &models.ExternalData{TMDBFetched: true}
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		metrics.MetadataFailures.WithLabelValues("enrich").Inc()
		c.log.Debug().Err(err).Int("movie_id", doc.MovieID).Msg("tmdb enrichment failed")
		return nil
	}

	if err := c.store.SetExternalData(ctx, doc.MovieID, doc.ExternalData); err != nil {
		c.log.Warn().Err(err).Int("movie_id", doc.MovieID).Msg("persist tmdb data")
	}
	return nil
}

func (c *Catalog) enrichAll(ctx context.Context, docs []models.MovieDoc) {
	if !c.tmdbEnabled() {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i := range docs {
		g.Go(func() error {
			return c.enrich(gctx, &docs[i])
		})
	}
	_ = g.Wait()
}

// =======================================================
//  Mapping
// =======================================================

func fromTMDB(m *tmdb.Movie) *models.ExternalData {
	d := m.Details
	ext := &models.ExternalData{
		PosterURL:   tmdb.PosterURL(d.PosterPath),
		Overview:    d.Overview,
		Director:    m.Director,
		Runtime:     d.Runtime,
		VoteAverage: &d.VoteAverage,
		VoteCount:   &d.VoteCount,
		Popularity:  &d.Popularity,
		TMDBFetched: true,
	}
	for _, cm := range m.Cast {
		ext.Cast = append(ext.Cast, models.CastMember{Name: cm.Name})
	}
	return ext
}

// fromSearchResult carries list-level fields only; TMDBFetched stays false so
// a later Get still fetches credits.
func fromSearchResult(r *tmdb.SearchResult) *models.ExternalData {
	va, vc, pop := r.VoteAverage, r.VoteCount, r.Popularity
	return &models.ExternalData{
		PosterURL:   tmdb.PosterURL(r.PosterPath),
		Overview:    r.Overview,
		VoteAverage: &va,
		VoteCount:   &vc,
		Popularity:  &pop,
	}
}

// ToCandidate converts a catalog document into the engine's candidate view.
func ToCandidate(doc *models.MovieDoc) recommend.CandidateMovie {
	cand := recommend.CandidateMovie{
		ID:     doc.MovieID,
		Title:  doc.Title,
		Genres: doc.Genres,
	}
	ext := doc.ExternalData
	if ext == nil {
		return cand
	}
	if ext.Director != "" {
		director := ext.Director
		cand.Director = &director
	}
	for _, cm := range ext.Cast {
		cand.Cast = append(cand.Cast, cm.Name)
	}
	cand.VoteAverage = ext.VoteAverage
	cand.VoteCount = ext.VoteCount
	cand.Popularity = ext.Popularity
	cand.Sentiment = ext.Sentiment
	return cand
}

func toCandidates(docs []models.MovieDoc) []recommend.CandidateMovie {
	out := make([]recommend.CandidateMovie, 0, len(docs))
	for i := range docs {
		out = append(out, ToCandidate(&docs[i]))
	}
	return out
}
