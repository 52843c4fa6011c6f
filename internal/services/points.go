package services

import (
	"context"

	"ccchat/internal/models"
	"ccchat/internal/utils"
	"ccchat/internal/voting"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 积分动作常量
const (
	ActionPostLiked        = "帖子获赞"
	ActionPostDownvoted    = "帖子被踩"
	ActionCommentLiked     = "评论获赞"
	ActionCommentDownvoted = "评论被踩"
	ActionDownvoteOther    = "踩了别人"
	ActionRevokePrefix     = "撤销"
)

// 积分值常量
const (
	PointsLiked         = 1
	PointsDownvoted     = -3
	PointsDownvoteOther = -1
)

type pointChange struct {
	UserID uint
	Amount int
	Action string
}

// votePoints 一次投票在 dir 方向上产生的积分变动
func votePoints(ev voting.VoteEvent, dir models.VoteDirection) []pointChange {
	var out []pointChange
	author := ev.Outcome.AuthorID
	if author == 0 {
		return nil
	}

	liked, downvoted := ActionPostLiked, ActionPostDownvoted
	if ev.Target.Kind == models.TargetComment {
		liked, downvoted = ActionCommentLiked, ActionCommentDownvoted
	}

	switch dir {
	case models.VoteUp:
		out = append(out, pointChange{UserID: author, Amount: PointsLiked, Action: liked})
	case models.VoteDown:
		out = append(out,
			pointChange{UserID: author, Amount: PointsDownvoted, Action: downvoted},
			pointChange{UserID: ev.VoterID, Amount: PointsDownvoteOther, Action: ActionDownvoteOther},
		)
	}
	return out
}

func revoke(changes []pointChange) []pointChange {
	out := make([]pointChange, len(changes))
	for i, c := range changes {
		out[i] = pointChange{UserID: c.UserID, Amount: -c.Amount, Action: ActionRevokePrefix + c.Action}
	}
	return out
}

// pointChanges 计算投票结果对应的积分明细。给自己投票不产生积分，撤销与改票先冲正旧方向。
func pointChanges(ev voting.VoteEvent) []pointChange {
	if ev.VoterID == ev.Outcome.AuthorID {
		return nil
	}

	var out []pointChange
	if ev.Outcome.Previous != nil {
		out = append(out, revoke(votePoints(ev, *ev.Outcome.Previous))...)
	}
	if ev.Outcome.Direction != nil {
		out = append(out, votePoints(ev, *ev.Outcome.Direction)...)
	}
	return out
}

// PointsRecorder 根据投票结果记账，实现 voting.Listener
type PointsRecorder struct {
	db       *gorm.DB
	log      *zap.Logger
	pageSize int
}

func NewPointsRecorder(db *gorm.DB, log *zap.Logger, pageSize int) *PointsRecorder {
	return &PointsRecorder{db: db, log: log, pageSize: pageSize}
}

func (r *PointsRecorder) OnVote(ctx context.Context, ev voting.VoteEvent) error {
	changes := pointChanges(ev)
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range changes {
			if err := addPoints(tx, c.UserID, c.Amount, c.Action); err != nil {
				return err
			}
		}
		return nil
	})
}

// addPoints 在事务内记录积分明细并更新余额
// 传入用户ID、积分变动值（正数增加，负数扣除）、动作描述
func addPoints(tx *gorm.DB, userID uint, amount int, action string) error {
	// 1. 创建积分明细记录
	log := models.PointLog{
		UserID: userID,
		Amount: amount,
		Action: action,
	}
	if err := tx.Create(&log).Error; err != nil {
		return err
	}

	// 2. 更新用户积分余额
	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", amount)).
		Error
}

// Logs 分页获取积分明细
func (r *PointsRecorder) Logs(ctx context.Context, userID uint, page int) ([]models.PointLog, error) {
	limit, offset := utils.PageParams(page, r.pageSize)
	var logs []models.PointLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&logs).Error
	return logs, err
}
