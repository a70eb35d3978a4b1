package recommend

import (
	"math"
	"sort"
)

const (
	likedGenreWeight   = 2
	watchedGenreWeight = 1

	// favoriteGenres is how many top genres the content scorer compares against.
	favoriteGenres = 5
)

// TasteProfile is a per-request summary of what a user watches and likes.
type TasteProfile struct {
	// Genres ordered by weight, heaviest first. Ties keep first appearance.
	Genres       []string
	Weights      map[string]float64
	LikedCount   int
	WatchedCount int
}

// BuildProfile weighs each genre of a liked movie by 2 and of a watched movie
// by 1. Likes are counted before watches so they win first-appearance ties.
func BuildProfile(liked, watched []Interaction) TasteProfile {
	p := TasteProfile{
		Weights:      make(map[string]float64),
		LikedCount:   len(liked),
		WatchedCount: len(watched),
	}

	add := func(genres []string, w float64) {
		for _, g := range genres {
			if g == "" {
				continue
			}
			if _, seen := p.Weights[g]; !seen {
				p.Genres = append(p.Genres, g)
			}
			p.Weights[g] += w
		}
	}
	for _, in := range liked {
		add(in.Genres, likedGenreWeight)
	}
	for _, in := range watched {
		add(in.Genres, watchedGenreWeight)
	}

	sort.SliceStable(p.Genres, func(i, j int) bool {
		return p.Weights[p.Genres[i]] > p.Weights[p.Genres[j]]
	})
	return p
}

// Empty reports whether the profile was built from zero interactions.
func (p TasteProfile) Empty() bool {
	return p.LikedCount == 0 && p.WatchedCount == 0
}

// TopGenres returns up to k of the heaviest genres.
func (p TasteProfile) TopGenres(k int) []string {
	if k > len(p.Genres) {
		k = len(p.Genres)
	}
	return p.Genres[:k]
}

// MaxWeight is the weight of the heaviest genre, 0 for an empty profile.
func (p TasteProfile) MaxWeight() float64 {
	var m float64
	for _, w := range p.Weights {
		m = math.Max(m, w)
	}
	return m
}

func genreSet(genres []string) (ordered []string, set map[string]struct{}) {
	set = make(map[string]struct{}, len(genres))
	for _, g := range genres {
		if g == "" {
			continue
		}
		if _, dup := set[g]; dup {
			continue
		}
		set[g] = struct{}{}
		ordered = append(ordered, g)
	}
	return ordered, set
}

// jaccard is |a ∩ b| / |a ∪ b|, 0 when both are empty.
func jaccard(a, b map[string]struct{}) float64 {
	var inter int
	for g := range a {
		if _, ok := b[g]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
