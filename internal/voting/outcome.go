package voting

import (
	"context"
	"fmt"
	"time"

	"ccchat/internal/models"
)

// Result 一次投票落到的分支
type Result uint8

const (
	Cast Result = iota + 1
	Retracted
	Changed
)

func (r Result) String() string {
	switch r {
	case Cast:
		return "cast"
	case Retracted:
		return "retracted"
	case Changed:
		return "changed"
	}
	return fmt.Sprintf("Result(%d)", uint8(r))
}

func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Outcome 投票结果，带回操作后的计数，调用方无需再读一次
type Outcome struct {
	Result Result `json:"outcome"`
	// Direction 当前生效的方向，撤销后为 nil
	Direction *models.VoteDirection `json:"direction"`
	// Previous 操作前的方向，首次投票为 nil
	Previous  *models.VoteDirection `json:"previous"`
	Upvotes   int                   `json:"upvotes"`
	Downvotes int                   `json:"downvotes"`
	AuthorID  uint                  `json:"-"`
}

func (o Outcome) Score() int {
	return o.Upvotes - o.Downvotes
}

// Message 兼容旧客户端的提示语，客户端应以 Result 为准
func (o Outcome) Message() string {
	switch o.Result {
	case Cast:
		return "投票成功"
	case Retracted:
		return "已取消投票"
	case Changed:
		return "投票已更新"
	}
	return ""
}

// VoteEvent 事务提交后分发给监听者
type VoteEvent struct {
	VoterID    uint
	Target     Target
	Outcome    Outcome
	OccurredAt time.Time
}

// Listener 接收投票结果，例如事件发布、积分记账
type Listener interface {
	OnVote(ctx context.Context, ev VoteEvent) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, ev VoteEvent) error

func (f ListenerFunc) OnVote(ctx context.Context, ev VoteEvent) error {
	return f(ctx, ev)
}
