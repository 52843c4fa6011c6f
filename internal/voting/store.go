package voting

import (
	"context"

	"ccchat/internal/models"
)

// Target 被投票的帖子或评论
type Target struct {
	Kind models.TargetKind
	ID   uint
}

func PostTarget(id uint) Target    { return Target{Kind: models.TargetPost, ID: id} }
func CommentTarget(id uint) Target { return Target{Kind: models.TargetComment, ID: id} }

// Aggregate 对象上的冗余计数
type Aggregate struct {
	Upvotes   int
	Downvotes int
	AuthorID  uint
}

func (a Aggregate) Score() int {
	return a.Upvotes - a.Downvotes
}

// delta 计数器增量
type delta struct {
	up   int
	down int
}

// counterDelta 把方向映射到对应计数器上的增量，n 为记录数的变化
func counterDelta(dir models.VoteDirection, n int) (delta, error) {
	switch dir.Delta() {
	case 1:
		return delta{up: n}, nil
	case -1:
		return delta{down: n}, nil
	}
	return delta{}, ErrInvalidDirection
}

func (d delta) add(o delta) delta {
	return delta{up: d.up + o.up, down: d.down + o.down}
}

// Store 提供投票事务。fn 返回错误时整个事务回滚。
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of operations available inside one vote transaction.
// Counter mutation is unexported, so only this package can implement Tx
// and nothing outside the engine can write vote counters.
type Tx interface {
	// LoadTarget returns ErrTargetNotFound when the target is missing or soft-deleted.
	LoadTarget(ctx context.Context, t Target) (Aggregate, error)
	// FindVote returns nil, nil when the voter has no record on the target.
	FindVote(ctx context.Context, voterID uint, t Target) (*models.Vote, error)
	// InsertVote returns ErrVoteConflict when the record already exists.
	InsertVote(ctx context.Context, v *models.Vote) error
	// UpdateVoteDirection and DeleteVote return ErrVoteConflict when the
	// record no longer holds v.Direction.
	UpdateVoteDirection(ctx context.Context, v *models.Vote, to models.VoteDirection) error
	DeleteVote(ctx context.Context, v *models.Vote) error

	applyDelta(ctx context.Context, t Target, d delta) (Aggregate, error)
}
