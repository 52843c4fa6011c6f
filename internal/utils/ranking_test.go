package utils

import (
	"math"
	"testing"
	"time"

	"ccchat/internal/models"
)

func TestHotScoreMonotonic(t *testing.T) {
	fresh := HotScore(10, 2, 1)
	old := HotScore(10, 2, 100)
	if fresh <= old {
		t.Fatalf("expected fresher post to rank higher: %f <= %f", fresh, old)
	}
}

func TestHotScoreNewPostFinite(t *testing.T) {
	got := HotScore(4, 0, 0)
	want := 4 / math.Pow(2, 1.5)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
	if HotScore(0, 3, 5) >= 0 {
		t.Fatalf("negative score should stay negative")
	}
}

func TestRankScoreModes(t *testing.T) {
	now := base.Add(10 * time.Hour)
	in := RankInput{Upvotes: 7, Downvotes: 2, Comments: 11, CreatedAt: base}

	if got := RankScore(in, now, RankTop); got != 5 {
		t.Errorf("top: expected 5, got %f", got)
	}
	if got := RankScore(in, now, RankMostDiscussed); got != 11 {
		t.Errorf("discussed: expected 11, got %f", got)
	}
	if got := RankScore(in, now, RankNew); got != -10 {
		t.Errorf("new: expected -10, got %f", got)
	}
	if got, want := RankScore(in, now, RankHot), HotScore(7, 2, 10); got != want {
		t.Errorf("hot: expected %f, got %f", want, got)
	}
	future := RankInput{Upvotes: 1, CreatedAt: now.Add(time.Hour)}
	if got, want := RankScore(future, now, RankHot), HotScore(1, 0, 0); got != want {
		t.Errorf("future timestamps should count as age 0: %f != %f", got, want)
	}
}

func TestParseRankMode(t *testing.T) {
	cases := map[string]RankMode{
		"hot":       RankHot,
		"new":       RankNew,
		"top":       RankTop,
		"discussed": RankMostDiscussed,
		"":          RankHot,
		"random":    RankHot,
	}
	for in, want := range cases {
		if got := ParseRankMode(in); got != want {
			t.Errorf("ParseRankMode(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSortPosts(t *testing.T) {
	now := base.Add(48 * time.Hour)
	posts := []models.Post{
		{ID: 1, UpvoteCount: 10, CommentCount: 1, CreatedAt: base},
		{ID: 2, UpvoteCount: 3, CommentCount: 9, CreatedAt: base.Add(47 * time.Hour)},
		{ID: 3, UpvoteCount: 3, DownvoteCount: 3, CommentCount: 4, CreatedAt: base.Add(24 * time.Hour)},
		{ID: 4, UpvoteCount: 10, CommentCount: 1, CreatedAt: base},
	}

	check := func(mode RankMode, want []uint) {
		t.Helper()
		ps := append([]models.Post(nil), posts...)
		SortPosts(ps, now, mode)
		got := make([]uint, len(ps))
		for i, p := range ps {
			got[i] = p.ID
		}
		if !equalIDs(got, want) {
			t.Errorf("%s: expected %v, got %v", mode, want, got)
		}
	}

	check(RankTop, []uint{1, 4, 2, 3})
	check(RankNew, []uint{2, 3, 1, 4})
	check(RankMostDiscussed, []uint{2, 3, 1, 4})
	check(RankHot, []uint{2, 1, 4, 3})
}
