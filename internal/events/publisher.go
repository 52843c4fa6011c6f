// Package events publishes vote results to NATS JetStream, fire-and-forget.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ccchat/internal/voting"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// VoteMessage 投票事件的消息体
type VoteMessage struct {
	EventID    string    `json:"event_id"`
	VoterID    uint      `json:"voter_id"`
	TargetKind string    `json:"target_kind"`
	TargetID   uint      `json:"target_id"`
	AuthorID   uint      `json:"author_id"`
	Outcome    string    `json:"outcome"`
	Direction  string    `json:"direction,omitempty"`
	Previous   string    `json:"previous,omitempty"`
	Upvotes    int       `json:"upvotes"`
	Downvotes  int       `json:"downvotes"`
	Score      int       `json:"score"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher 实现 voting.Listener。nil 指针和零值都是空操作。
type Publisher struct {
	js      nats.JetStreamContext
	subject string
	log     *zap.Logger
}

// New 传入 js=nil 得到空操作的发布者
func New(js nats.JetStreamContext, subject string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{js: js, subject: subject, log: log}
}

// Connect 连接 NATS 并返回 JetStream 上下文
func Connect(url string) (*nats.Conn, nats.JetStreamContext, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("nats jetstream: %w", err)
	}
	return nc, js, nil
}

// NewVoteMessage 将投票事件转换为消息体
func NewVoteMessage(ev voting.VoteEvent) VoteMessage {
	msg := VoteMessage{
		EventID:    uuid.NewString(),
		VoterID:    ev.VoterID,
		TargetKind: string(ev.Target.Kind),
		TargetID:   ev.Target.ID,
		AuthorID:   ev.Outcome.AuthorID,
		Outcome:    ev.Outcome.Result.String(),
		Upvotes:    ev.Outcome.Upvotes,
		Downvotes:  ev.Outcome.Downvotes,
		Score:      ev.Outcome.Score(),
		OccurredAt: ev.OccurredAt.UTC(),
	}
	if ev.Outcome.Direction != nil {
		msg.Direction = ev.Outcome.Direction.String()
	}
	if ev.Outcome.Previous != nil {
		msg.Previous = ev.Outcome.Previous.String()
	}
	return msg
}

// OnVote 异步发布，失败只记录日志
func (p *Publisher) OnVote(_ context.Context, ev voting.VoteEvent) error {
	if p == nil || p.js == nil {
		return nil
	}
	data, err := json.Marshal(NewVoteMessage(ev))
	if err != nil {
		p.log.Warn("events: marshal failed", zap.Error(err))
		return nil
	}
	if _, err := p.js.PublishAsync(p.subject, data); err != nil {
		p.log.Warn("events: publish failed", zap.String("subject", p.subject), zap.Error(err))
	}
	return nil
}
