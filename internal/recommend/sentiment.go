package recommend

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// SentimentAdjuster blends a per-movie review sentiment (0-1) into a 0-5
// rating prediction. It is built once at startup and shared read-only.
type SentimentAdjuster struct {
	weight float64
	scores map[int]float64
}

// NewSentimentAdjuster returns an adjuster over scores. A weight outside
// [0,1] silently becomes DefaultSentimentWeight; config validation is where
// bad weights get rejected. A nil or empty table makes every movie neutral.
func NewSentimentAdjuster(weight float64, scores map[int]float64) *SentimentAdjuster {
	if !validWeight(weight) {
		weight = DefaultSentimentWeight
	}
	if scores == nil {
		scores = map[int]float64{}
	}
	return &SentimentAdjuster{weight: weight, scores: scores}
}

// Weight is the effective blend weight.
func (s *SentimentAdjuster) Weight() float64 {
	if s == nil {
		return DefaultSentimentWeight
	}
	return s.weight
}

// HasData reports whether any movie has a sentiment score.
func (s *SentimentAdjuster) HasData() bool {
	return s != nil && len(s.scores) > 0
}

// Score returns the sentiment of movieID or NeutralSentiment.
func (s *SentimentAdjuster) Score(movieID int) float64 {
	if s == nil {
		return NeutralSentiment
	}
	if v, ok := s.scores[movieID]; ok {
		return v
	}
	return NeutralSentiment
}

// Adjust blends the table sentiment of movieID into pred.
func (s *SentimentAdjuster) Adjust(pred float64, movieID int) float64 {
	return BlendSentiment(pred, s.Score(movieID), s.Weight())
}

// BlendSentiment returns pred*(1-w) + sentiment*5*w clamped to [0,5].
func BlendSentiment(pred, sentiment, weight float64) float64 {
	if !validWeight(weight) {
		weight = DefaultSentimentWeight
	}
	return clamp(pred*(1-weight)+sentiment*5*weight, 0, 5)
}

func validWeight(w float64) bool {
	return !math.IsNaN(w) && w >= 0 && w <= 1
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Sentiment CSV columns.
const (
	sentimentIDColumn    = "movieId"
	sentimentScoreColumn = "sentiment_score"
)

// LoadSentimentCSV reads a movieId,sentiment_score table. Any failure wraps
// ErrMalformedSentimentSource; callers log it and run with an empty table.
func LoadSentimentCSV(path string) (map[int]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSentimentSource, err)
	}
	defer f.Close()

	return ReadSentimentCSV(f)
}

// ReadSentimentCSV parses a sentiment table with a header row. Extra columns
// are ignored.
func ReadSentimentCSV(r io.Reader) (map[int]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformedSentimentSource, err)
	}
	idCol, scoreCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) {
		case sentimentIDColumn:
			idCol = i
		case sentimentScoreColumn:
			scoreCol = i
		}
	}
	if idCol < 0 || scoreCol < 0 {
		return nil, fmt.Errorf("%w: header must contain %s and %s", ErrMalformedSentimentSource, sentimentIDColumn, sentimentScoreColumn)
	}

	scores := make(map[int]float64)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedSentimentSource, err)
		}
		line, _ := cr.FieldPos(0)
		if idCol >= len(rec) || scoreCol >= len(rec) {
			return nil, fmt.Errorf("%w: line %d: missing columns", ErrMalformedSentimentSource, line)
		}
		id, err := strconv.Atoi(strings.TrimSpace(rec[idCol]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: movieId: %v", ErrMalformedSentimentSource, line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[scoreCol]), 64)
		if err != nil || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: line %d: sentiment_score %q", ErrMalformedSentimentSource, line, rec[scoreCol])
		}
		scores[id] = v
	}
	return scores, nil
}
