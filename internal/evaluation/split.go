package evaluation

import (
	"math/rand/v2"
	"sort"

	"github.com/MRuhan17/Movie-Recommender/internal/similarity"
)

// HoldoutSplit holds out fraction of each user's ratings (rounded down, and
// never the user's only rating) as the test set. The same seed always gives
// the same split for the same input.
func HoldoutSplit(ratings []similarity.Rating, fraction float64, seed int64) (train, test []similarity.Rating) {
	byUser := make(map[int][]similarity.Rating)
	for _, r := range ratings {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}
	users := make([]int, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Ints(users)

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	for _, u := range users {
		rs := byUser[u]
		sort.Slice(rs, func(i, j int) bool { return rs[i].MovieID < rs[j].MovieID })
		rng.Shuffle(len(rs), func(i, j int) { rs[i], rs[j] = rs[j], rs[i] })

		n := int(float64(len(rs)) * fraction)
		if n >= len(rs) {
			n = len(rs) - 1
		}
		test = append(test, rs[:n]...)
		train = append(train, rs[n:]...)
	}
	return train, test
}
