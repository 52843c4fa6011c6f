package services

import (
	"context"
	"sync"
	"time"

	"ccchat/internal/models"
	"ccchat/internal/utils"
	"ccchat/internal/voting"

	"go.uber.org/zap"
)

// RankingService 投票后异步刷新排序列表缓存，实现 voting.Listener
type RankingService struct {
	cache    *utils.TTLCache
	log      *zap.Logger
	queue    chan uint // 待刷新的帖子 ID 队列
	pending  map[uint]bool
	mu       sync.Mutex
	interval time.Duration
}

func NewRankingService(cache *utils.TTLCache, log *zap.Logger) *RankingService {
	return &RankingService{
		cache:    cache,
		log:      log,
		queue:    make(chan uint, 1000), // 缓冲队列，防止阻塞
		pending:  make(map[uint]bool),
		interval: 500 * time.Millisecond,
	}
}

// Start 启动后台 worker，ctx 取消后退出
func (s *RankingService) Start(ctx context.Context) {
	go s.worker(ctx)
}

// OnVote 只有帖子投票会改变列表排序
func (s *RankingService) OnVote(_ context.Context, ev voting.VoteEvent) error {
	if ev.Target.Kind == models.TargetPost {
		s.ScheduleUpdate(ev.Target.ID)
	}
	return nil
}

// ScheduleUpdate 将帖子加入刷新队列（异步）
// 使用去重机制避免短时间内重复刷新同一帖子
func (s *RankingService) ScheduleUpdate(postID uint) {
	s.mu.Lock()
	if s.pending[postID] {
		s.mu.Unlock()
		return
	}
	s.pending[postID] = true
	s.mu.Unlock()

	select {
	case s.queue <- postID:
	default:
		// 队列满了，移除 pending 标记
		s.mu.Lock()
		delete(s.pending, postID)
		s.mu.Unlock()
		s.log.Warn("ranking queue full, skipping", zap.Uint("post_id", postID))
	}
}

// worker 收集一批请求后统一处理
func (s *RankingService) worker(ctx context.Context) {
	batch := make([]uint, 0, 50)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case postID := <-s.queue:
			batch = append(batch, postID)
			if len(batch) >= 50 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

// processBatch 一批投票只清一次列表缓存
func (s *RankingService) processBatch(postIDs []uint) {
	s.cache.DeletePrefix(listCachePrefix)

	s.mu.Lock()
	for _, postID := range postIDs {
		delete(s.pending, postID)
	}
	s.mu.Unlock()

	s.log.Debug("ranked listings refreshed",
		zap.Int("posts", len(postIDs)))
}
