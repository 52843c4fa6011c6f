// Package voting keeps per-user vote records and the vote counters on posts
// and comments consistent. Engine.CastVote is the only path that changes them.
package voting

import (
	"context"
	"errors"
	"time"

	"ccchat/internal/models"

	"go.uber.org/zap"
)

type Engine struct {
	store     Store
	listeners []Listener
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*Engine)

// WithListener 注册投票结果监听者，按注册顺序同步调用
func WithListener(l Listener) Option {
	return func(e *Engine) {
		if l != nil {
			e.listeners = append(e.listeners, l)
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CastVote 投票：无记录则新增，同方向则撤销，反方向则改投。
// 记录与计数在同一事务内修改。
func (e *Engine) CastVote(ctx context.Context, voterID uint, target Target, dir models.VoteDirection) (Outcome, error) {
	if !dir.Valid() {
		return Outcome{}, ErrInvalidDirection
	}
	if !target.Kind.Valid() {
		return Outcome{}, ErrInvalidTarget
	}

	out, err := e.cast(ctx, voterID, target, dir)
	if errors.Is(err, ErrVoteConflict) {
		// 并发写入已落库，重新读取后会走撤销或改投分支
		out, err = e.cast(ctx, voterID, target, dir)
	}
	if errors.Is(err, ErrCounterDrift) {
		e.log.Error("vote counters out of sync with records",
			zap.String("target_kind", string(target.Kind)),
			zap.Uint("target_id", target.ID),
			zap.Error(err))
	}
	if err != nil {
		if errors.Is(err, ErrTargetNotFound) || IsPersistence(err) {
			return Outcome{}, err
		}
		return Outcome{}, &PersistenceError{Op: "cast vote", Err: err}
	}

	e.notify(ctx, VoteEvent{
		VoterID:    voterID,
		Target:     target,
		Outcome:    out,
		OccurredAt: e.now(),
	})
	return out, nil
}

func (e *Engine) cast(ctx context.Context, voterID uint, target Target, dir models.VoteDirection) (Outcome, error) {
	var out Outcome
	err := e.store.InTx(ctx, func(tx Tx) error {
		var err error
		out, err = castInTx(ctx, tx, voterID, target, dir)
		return err
	})
	return out, err
}

// castInTx is the transactional unit: read the record, write or delete it,
// and apply the counter delta against the same tx handle.
func castInTx(ctx context.Context, tx Tx, voterID uint, target Target, dir models.VoteDirection) (Outcome, error) {
	if _, err := tx.LoadTarget(ctx, target); err != nil {
		return Outcome{}, err
	}

	existing, err := tx.FindVote(ctx, voterID, target)
	if err != nil {
		return Outcome{}, err
	}

	var (
		result  Result
		d       delta
		current *models.VoteDirection
		prev    *models.VoteDirection
	)
	switch {
	case existing == nil:
		v := &models.Vote{
			UserID:     voterID,
			TargetKind: target.Kind,
			TargetID:   target.ID,
			Direction:  dir,
		}
		if err := tx.InsertVote(ctx, v); err != nil {
			return Outcome{}, err
		}
		result = Cast
		d, err = counterDelta(dir, 1)
		current = &dir

	case existing.Direction == dir:
		if err := tx.DeleteVote(ctx, existing); err != nil {
			return Outcome{}, err
		}
		result = Retracted
		d, err = counterDelta(dir, -1)
		prev = &dir

	default:
		old := existing.Direction
		if err := tx.UpdateVoteDirection(ctx, existing, dir); err != nil {
			return Outcome{}, err
		}
		result = Changed
		var removed, added delta
		if removed, err = counterDelta(old, -1); err == nil {
			added, err = counterDelta(dir, 1)
		}
		d = removed.add(added)
		current = &dir
		prev = &old
	}
	if err != nil {
		return Outcome{}, err
	}

	agg, err := tx.applyDelta(ctx, target, d)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Result:    result,
		Direction: current,
		Previous:  prev,
		Upvotes:   agg.Upvotes,
		Downvotes: agg.Downvotes,
		AuthorID:  agg.AuthorID,
	}, nil
}

func (e *Engine) notify(ctx context.Context, ev VoteEvent) {
	for _, l := range e.listeners {
		if err := l.OnVote(ctx, ev); err != nil {
			e.log.Warn("vote listener failed",
				zap.String("target_kind", string(ev.Target.Kind)),
				zap.Uint("target_id", ev.Target.ID),
				zap.Error(err))
		}
	}
}
