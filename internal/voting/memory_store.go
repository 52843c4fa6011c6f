package voting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ccchat/internal/models"
)

type voteKey struct {
	voterID uint
	target  Target
}

type memTarget struct {
	authorID uint
	postID   uint // 评论所属帖子
	up       int
	down     int
	deleted  bool
}

// MemoryStore 内存实现，事务串行执行，出错时恢复快照。用于测试和本地开发。
type MemoryStore struct {
	mu      sync.Mutex
	targets map[Target]*memTarget
	votes   map[voteKey]*models.Vote
	nextID  uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		targets: make(map[Target]*memTarget),
		votes:   make(map[voteKey]*models.Vote),
	}
}

// AddPost 登记一个可投票的帖子
func (s *MemoryStore) AddPost(id, authorID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[PostTarget(id)] = &memTarget{authorID: authorID}
}

// AddComment 登记一条评论
func (s *MemoryStore) AddComment(id, postID, authorID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[CommentTarget(id)] = &memTarget{authorID: authorID, postID: postID}
}

// SoftDelete 标记对象已删除
func (s *MemoryStore) SoftDelete(t Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mt, ok := s.targets[t]; ok {
		mt.deleted = true
	}
}

// Counts 返回对象当前的赞、踩计数
func (s *MemoryStore) Counts(t Target) (up, down int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mt, ok := s.targets[t]; ok {
		return mt.up, mt.down
	}
	return 0, 0
}

// CountVotes 统计对象上指定方向的投票记录数
func (s *MemoryStore) CountVotes(t Target, dir models.VoteDirection) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, v := range s.votes {
		if k.target == t && v.Direction == dir {
			n++
		}
	}
	return n
}

// VoteOf 返回用户在对象上的当前方向
func (s *MemoryStore) VoteOf(voterID uint, t Target) (models.VoteDirection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.votes[voteKey{voterID, t}]; ok {
		return v.Direction, true
	}
	return 0, false
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	targets, votes, nextID := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.targets, s.votes, s.nextID = targets, votes, nextID
		return err
	}
	return nil
}

func (s *MemoryStore) snapshot() (map[Target]*memTarget, map[voteKey]*models.Vote, uint) {
	targets := make(map[Target]*memTarget, len(s.targets))
	for k, v := range s.targets {
		cp := *v
		targets[k] = &cp
	}
	votes := make(map[voteKey]*models.Vote, len(s.votes))
	for k, v := range s.votes {
		cp := *v
		votes[k] = &cp
	}
	return targets, votes, s.nextID
}

// memTx runs with MemoryStore.mu held.
type memTx struct {
	s *MemoryStore
}

func (t *memTx) LoadTarget(_ context.Context, target Target) (Aggregate, error) {
	if !target.Kind.Valid() {
		return Aggregate{}, ErrInvalidTarget
	}
	mt, ok := t.s.targets[target]
	if !ok || mt.deleted {
		return Aggregate{}, ErrTargetNotFound
	}
	if target.Kind == models.TargetComment {
		if post, ok := t.s.targets[PostTarget(mt.postID)]; ok && post.deleted {
			return Aggregate{}, ErrTargetNotFound
		}
	}
	return Aggregate{Upvotes: mt.up, Downvotes: mt.down, AuthorID: mt.authorID}, nil
}

func (t *memTx) FindVote(_ context.Context, voterID uint, target Target) (*models.Vote, error) {
	v, ok := t.s.votes[voteKey{voterID, target}]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (t *memTx) InsertVote(_ context.Context, v *models.Vote) error {
	key := voteKey{v.UserID, Target{Kind: v.TargetKind, ID: v.TargetID}}
	if _, ok := t.s.votes[key]; ok {
		return ErrVoteConflict
	}
	t.s.nextID++
	now := time.Now()
	v.ID = t.s.nextID
	v.CreatedAt = now
	v.UpdatedAt = now
	cp := *v
	t.s.votes[key] = &cp
	return nil
}

func (t *memTx) UpdateVoteDirection(_ context.Context, v *models.Vote, to models.VoteDirection) error {
	key := voteKey{v.UserID, Target{Kind: v.TargetKind, ID: v.TargetID}}
	stored, ok := t.s.votes[key]
	if !ok || stored.Direction != v.Direction {
		return ErrVoteConflict
	}
	stored.Direction = to
	stored.UpdatedAt = time.Now()
	v.Direction = to
	return nil
}

func (t *memTx) DeleteVote(_ context.Context, v *models.Vote) error {
	key := voteKey{v.UserID, Target{Kind: v.TargetKind, ID: v.TargetID}}
	stored, ok := t.s.votes[key]
	if !ok || stored.Direction != v.Direction {
		return ErrVoteConflict
	}
	delete(t.s.votes, key)
	return nil
}

func (t *memTx) applyDelta(_ context.Context, target Target, d delta) (Aggregate, error) {
	mt, ok := t.s.targets[target]
	if !ok {
		return Aggregate{}, ErrTargetNotFound
	}
	if mt.up+d.up < 0 || mt.down+d.down < 0 {
		return Aggregate{}, fmt.Errorf("%w: %s %d", ErrCounterDrift, target.Kind, target.ID)
	}
	mt.up += d.up
	mt.down += d.down
	return Aggregate{Upvotes: mt.up, Downvotes: mt.down, AuthorID: mt.authorID}, nil
}
