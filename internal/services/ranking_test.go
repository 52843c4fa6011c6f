package services

import (
	"context"
	"testing"
	"time"

	"ccchat/internal/utils"
	"ccchat/internal/voting"

	"go.uber.org/zap"
)

func TestRankingServiceSchedulesPostVotesOnly(t *testing.T) {
	cache, _ := utils.NewTTLCache(10)
	s := NewRankingService(cache, zap.NewNop())

	_ = s.OnVote(context.Background(), voting.VoteEvent{Target: voting.CommentTarget(1)})
	if len(s.queue) != 0 {
		t.Fatalf("comment votes should not refresh listings")
	}

	_ = s.OnVote(context.Background(), voting.VoteEvent{Target: voting.PostTarget(1)})
	_ = s.OnVote(context.Background(), voting.VoteEvent{Target: voting.PostTarget(1)})
	_ = s.OnVote(context.Background(), voting.VoteEvent{Target: voting.PostTarget(2)})
	if len(s.queue) != 2 {
		t.Fatalf("expected 2 queued posts after dedup, got %d", len(s.queue))
	}
}

func TestRankingServiceProcessBatch(t *testing.T) {
	cache, _ := utils.NewTTLCache(10)
	cache.Set(listCachePrefix+"hot::1", "page", time.Minute)
	cache.Set("other", "keep", time.Minute)

	s := NewRankingService(cache, zap.NewNop())
	s.ScheduleUpdate(7)
	s.processBatch([]uint{<-s.queue})

	if _, ok := cache.Get(listCachePrefix + "hot::1"); ok {
		t.Fatalf("listing cache should be cleared")
	}
	if _, ok := cache.Get("other"); !ok {
		t.Fatalf("unrelated keys should survive")
	}
	s.ScheduleUpdate(7)
	if len(s.queue) != 1 {
		t.Fatalf("post should be schedulable again after processing")
	}
}

func TestRankingServiceWorker(t *testing.T) {
	cache, _ := utils.NewTTLCache(10)
	cache.Set(listCachePrefix+"top::1", "page", time.Minute)

	s := NewRankingService(cache, zap.NewNop())
	s.interval = 5 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	s.ScheduleUpdate(3)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cache.Len() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("worker did not refresh listings")
}
