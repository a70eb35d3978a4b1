package similarity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrInsufficientData is returned by Build when fewer than two movies have
// ratings. The caller should leave serving in its "no model" state.
var ErrInsufficientData = errors.New("similarity: need at least 2 rated movies")

// BuildOptions tunes the offline build.
type BuildOptions struct {
	// Workers bounds the number of rows computed concurrently.
	Workers int
}

// Build computes pairwise cosine similarity between all movie rows of the
// rating history.
func Build(ctx context.Context, ratings []Rating, opts BuildOptions) (*Model, error) {
	return BuildFromMatrix(ctx, NewRatingMatrix(ratings), opts)
}

// BuildFromMatrix computes the similarity model for an already pivoted matrix.
func BuildFromMatrix(ctx context.Context, rm *RatingMatrix, opts BuildOptions) (*Model, error) {
	n := rm.Movies()
	if n < 2 {
		return nil, ErrInsufficientData
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	norms := make([]float64, n)
	for i := range norms {
		norms[i] = rm.norm(i)
	}

	data := make([]float64, n*n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data[i*n+i] = 1
			for j := i + 1; j < n; j++ {
				var s float64
				if norms[i] > 0 && norms[j] > 0 {
					s = dot(rm.rows[i], rm.rows[j]) / (norms[i] * norms[j])
				}
				// each worker owns row i right of the diagonal and its mirror
				// below the diagonal, so writes never overlap
				data[i*n+j] = s
				data[j*n+i] = s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build similarity: %w", err)
	}

	m, err := newModel(rm.MovieIDs(), data)
	if err != nil {
		return nil, err
	}
	m.info = Info{
		BuiltAt: time.Now().UTC(),
		Ratings: rm.ratings,
		Users:   rm.Users(),
	}
	return m, nil
}
