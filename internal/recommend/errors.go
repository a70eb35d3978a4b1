package recommend

import "errors"

// Degradations. None of these fail a request: they are recorded in
// Response.Fallback and in metrics, and the engine serves the documented
// fallback instead.
var (
	// ErrModelUnavailable means no similarity artifact is loaded.
	ErrModelUnavailable = errors.New("similarity model unavailable")
	// ErrNoUserSignal means the user has no usable ratings, likes or history.
	ErrNoUserSignal = errors.New("no user signal")
	// ErrMetadataLookup means the metadata provider failed or had no record.
	ErrMetadataLookup = errors.New("metadata lookup failed")
	// ErrMalformedSentimentSource means the sentiment table is missing or unparsable.
	ErrMalformedSentimentSource = errors.New("malformed sentiment source")
)

// ErrModelNotInitialized is returned by PredictRating when the process never
// loaded a similarity model. Unlike the errors above it is a configuration
// error and is surfaced to the caller.
var ErrModelNotInitialized = errors.New("collaborative model not initialized")
