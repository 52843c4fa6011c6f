package voting

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDirection 投票方向不是赞或踩，在访问存储之前拒绝
	ErrInvalidDirection = errors.New("voting: invalid direction")
	// ErrInvalidTarget 投票对象类型未知
	ErrInvalidTarget = errors.New("voting: invalid target kind")
	// ErrTargetNotFound 对象不存在或已被软删除
	ErrTargetNotFound = errors.New("voting: target not found")
	// ErrVoteConflict 同一用户对同一对象的并发写入冲突，由引擎重试一次
	ErrVoteConflict = errors.New("voting: concurrent vote on the same target")
	// ErrCounterDrift 计数器与投票记录不一致，扣减后会小于 0，事务回滚
	ErrCounterDrift = errors.New("voting: counter would go negative")
)

// PersistenceError wraps a failed vote transaction. Retrying the identical
// CastVote call is safe.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("voting: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistence reports whether err is a retryable store failure.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
