package recommend

const (
	DefaultTopN = 10
	MaxTopN     = 50

	DefaultLikeThreshold   = 3.5
	DefaultSentimentWeight = 0.15
	NeutralSentiment       = 0.5
)

// Config tunes the engine. Zero fields take the defaults below.
type Config struct {
	// LikeThreshold is the minimum rating that counts as "liked" for CF.
	LikeThreshold float64
	// ProfileHistoryLimit bounds the watch history used for taste profiles.
	ProfileHistoryLimit int
	// InteractionHistoryLimit bounds the recent watch history the content path
	// excludes. Collaborative filtering always excludes the whole history.
	InteractionHistoryLimit int
	DefaultTopN             int
	MaxTopN                 int
	// CandidatePoolSize is how many movies the CF and query paths pull before
	// fusion truncates to TopN.
	CandidatePoolSize int
	// MetadataConcurrency bounds parallel MetadataProvider calls per request.
	MetadataConcurrency int
}

func DefaultConfig() Config {
	return Config{
		LikeThreshold:           DefaultLikeThreshold,
		ProfileHistoryLimit:     20,
		InteractionHistoryLimit: 50,
		DefaultTopN:             DefaultTopN,
		MaxTopN:                 MaxTopN,
		CandidatePoolSize:       40,
		MetadataConcurrency:     4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LikeThreshold <= 0 {
		c.LikeThreshold = d.LikeThreshold
	}
	if c.ProfileHistoryLimit <= 0 {
		c.ProfileHistoryLimit = d.ProfileHistoryLimit
	}
	if c.InteractionHistoryLimit <= 0 {
		c.InteractionHistoryLimit = d.InteractionHistoryLimit
	}
	if c.DefaultTopN <= 0 {
		c.DefaultTopN = d.DefaultTopN
	}
	if c.MaxTopN <= 0 {
		c.MaxTopN = d.MaxTopN
	}
	if c.DefaultTopN > c.MaxTopN {
		c.DefaultTopN = c.MaxTopN
	}
	if c.CandidatePoolSize <= 0 {
		c.CandidatePoolSize = d.CandidatePoolSize
	}
	if c.MetadataConcurrency <= 0 {
		c.MetadataConcurrency = d.MetadataConcurrency
	}
	return c
}

// topN applies the request default and the hard cap.
func (c Config) topN(n int) int {
	if n <= 0 {
		return c.DefaultTopN
	}
	if n > c.MaxTopN {
		return c.MaxTopN
	}
	return n
}
