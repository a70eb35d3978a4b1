package recommend

import (
	"context"
	"reflect"
	"testing"
)

func TestBuildProfile(t *testing.T) {
	p := BuildProfile(
		[]Interaction{likeOf(1, "Heat", "Crime", "Action"), likeOf(2, "Alien", "Horror")},
		[]Interaction{watchOf(3, "Ran", "Action", "Drama"), watchOf(4, "Up", "Horror")},
	)

	wantWeights := map[string]float64{"Crime": 2, "Action": 3, "Horror": 3, "Drama": 1}
	if !reflect.DeepEqual(p.Weights, wantWeights) {
		t.Errorf("Weights = %v, want %v", p.Weights, wantWeights)
	}
	// Action and Horror tie at 3; Action appeared first
	wantOrder := []string{"Action", "Horror", "Crime", "Drama"}
	if !reflect.DeepEqual(p.Genres, wantOrder) {
		t.Errorf("Genres = %v, want %v", p.Genres, wantOrder)
	}
	if p.LikedCount != 2 || p.WatchedCount != 2 || p.Empty() {
		t.Errorf("counts = %d/%d", p.LikedCount, p.WatchedCount)
	}
	if p.MaxWeight() != 3 {
		t.Errorf("MaxWeight() = %v", p.MaxWeight())
	}
	if got := p.TopGenres(2); !reflect.DeepEqual(got, []string{"Action", "Horror"}) {
		t.Errorf("TopGenres(2) = %v", got)
	}
	if !BuildProfile(nil, nil).Empty() {
		t.Error("profile of no interactions should be empty")
	}
}

func TestContentScore(t *testing.T) {
	p := BuildProfile([]Interaction{likeOf(1, "A", "Action", "Comedy")}, []Interaction{watchOf(2, "B", "Action")})
	// weights Action 3, Comedy 2; top5 {Action, Comedy}

	tests := []struct {
		name   string
		genres []string
		want   float64
	}{
		// jaccard 1/3, weight 3/3
		{"one shared genre", []string{"Action", "Drama"}, round4(0.6/3 + 0.4)},
		// jaccard 2/2, weight 5/3
		{"all favorites", []string{"Action", "Comedy"}, round4(0.6 + 0.4*5.0/3.0)},
		{"no overlap", []string{"Horror"}, 0},
		{"no genres", nil, 0},
		{"duplicates count once", []string{"Comedy", "Comedy"}, round4(0.6*0.5 + 0.4*2.0/3.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContentScore(p, tt.genres); got != tt.want {
				t.Errorf("ContentScore(%v) = %v, want %v", tt.genres, got, tt.want)
			}
		})
	}

	if got := ContentScore(TasteProfile{}, []string{"Action"}); got != 0 {
		t.Errorf("empty profile score = %v", got)
	}
}

func TestContentReason(t *testing.T) {
	p := BuildProfile([]Interaction{likeOf(1, "A", "Action", "Comedy", "Drama")}, nil)

	if got := contentReason(p, []string{"Drama", "Horror", "Action", "Comedy"}); got != "Matches your interest in Drama, Action" {
		t.Errorf("contentReason() = %q", got)
	}
	if got := contentReason(p, []string{"Horror"}); got != "Based on your viewing history" {
		t.Errorf("contentReason() = %q", got)
	}
}

func TestContentRecommender(t *testing.T) {
	cands := []CandidateMovie{
		movieOf(10, "Comedy Night", "Comedy"),
		movieOf(11, "Seen It", "Action"),
		movieOf(12, "Action Max", "Action", "Thriller"),
		movieOf(13, "Liked It", "Action"),
		movieOf(14, "Quiet", "Documentary"),
	}

	t.Run("ranks and excludes interacted", func(t *testing.T) {
		f := &fakeInteractions{
			liked:   map[int][]Interaction{1: {likeOf(13, "Liked It", "Action")}},
			watched: map[int][]Interaction{1: {watchOf(11, "Seen It", "Action")}},
		}
		c := NewContentRecommender(f, DefaultConfig(), nopLogger())

		got, cold := c.Recommend(context.Background(), 1, cands, 10)
		if cold {
			t.Fatal("cold start for user with interactions")
		}
		if want := []int{12, 10, 14}; !equalInts(idsOf(got), want) {
			t.Errorf("ids = %v, want %v", idsOf(got), want)
		}
		if got[0].Reason != "Matches your interest in Action" || got[0].Source != SourceContent {
			t.Errorf("top item = %+v", got[0])
		}

		top, _ := c.Recommend(context.Background(), 1, cands, 1)
		if len(top) != 1 || top[0].ID != 12 {
			t.Errorf("n=1 gives %v", idsOf(top))
		}
	})

	t.Run("cold start passes input through", func(t *testing.T) {
		c := NewContentRecommender(&fakeInteractions{}, DefaultConfig(), nopLogger())
		got, cold := c.Recommend(context.Background(), 2, cands, 3)
		if !cold {
			t.Fatal("expected cold start")
		}
		if want := []int{10, 11, 12}; !equalInts(idsOf(got), want) {
			t.Errorf("ids = %v, want %v", idsOf(got), want)
		}
		for _, it := range got {
			if it.ContentScore != 0 || it.Source != SourceColdStart {
				t.Errorf("cold start item scored: %+v", it)
			}
		}
	})

	t.Run("read failure keeps input order", func(t *testing.T) {
		c := NewContentRecommender(&fakeInteractions{likedErr: errBoom}, DefaultConfig(), nopLogger())
		got, cold := c.Recommend(context.Background(), 1, cands, 2)
		if cold || !equalInts(idsOf(got), []int{10, 11}) {
			t.Errorf("got %v cold=%v", idsOf(got), cold)
		}
	})

	t.Run("profile uses only recent watch history", func(t *testing.T) {
		history := make([]Interaction, 0, 25)
		for i := 0; i < 20; i++ {
			history = append(history, watchOf(100+i, "recent", "Documentary"))
		}
		for i := 0; i < 5; i++ {
			history = append(history, watchOf(200+i, "old", "Comedy"))
		}
		f := &fakeInteractions{watched: map[int][]Interaction{1: history}}
		c := NewContentRecommender(f, DefaultConfig(), nopLogger())

		got, _ := c.Recommend(context.Background(), 1, []CandidateMovie{movieOf(10, "Comedy Night", "Comedy")}, 5)
		if len(got) != 1 || got[0].ContentScore != 0 {
			t.Errorf("old history leaked into profile: %+v", got)
		}
	})
}
