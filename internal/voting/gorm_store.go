package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ccchat/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 基于 gorm/PostgreSQL 的投票存储
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

type aggregateRow struct {
	UserID        uint
	UpvoteCount   int
	DownvoteCount int
}

func (t *gormTx) LoadTarget(ctx context.Context, target Target) (Aggregate, error) {
	var row aggregateRow
	var q *gorm.DB
	switch target.Kind {
	case models.TargetPost:
		q = t.db.WithContext(ctx).Table("posts").
			Select("user_id, upvote_count, downvote_count").
			Where("id = ? AND deleted_at IS NULL", target.ID)
	case models.TargetComment:
		// 所属帖子已删除的评论同样视为不存在
		q = t.db.WithContext(ctx).Table("comments AS c").
			Select("c.user_id, c.upvote_count, c.downvote_count").
			Joins("JOIN posts p ON p.id = c.post_id").
			Where("c.id = ? AND c.deleted_at IS NULL AND p.deleted_at IS NULL", target.ID)
	default:
		return Aggregate{}, ErrInvalidTarget
	}

	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Aggregate{}, ErrTargetNotFound
		}
		return Aggregate{}, err
	}
	return Aggregate{Upvotes: row.UpvoteCount, Downvotes: row.DownvoteCount, AuthorID: row.UserID}, nil
}

func (t *gormTx) FindVote(ctx context.Context, voterID uint, target Target) (*models.Vote, error) {
	var v models.Vote
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND target_kind = ? AND target_id = ?", voterID, target.Kind, target.ID).
		Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (t *gormTx) InsertVote(ctx context.Context, v *models.Vote) error {
	if err := t.db.WithContext(ctx).Create(v).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrVoteConflict
		}
		return err
	}
	return nil
}

func (t *gormTx) UpdateVoteDirection(ctx context.Context, v *models.Vote, to models.VoteDirection) error {
	res := t.db.WithContext(ctx).Model(&models.Vote{}).
		Where("id = ? AND direction = ?", v.ID, v.Direction).
		Updates(map[string]interface{}{
			"direction":  to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVoteConflict
	}
	v.Direction = to
	return nil
}

func (t *gormTx) DeleteVote(ctx context.Context, v *models.Vote) error {
	res := t.db.WithContext(ctx).
		Where("id = ? AND direction = ?", v.ID, v.Direction).
		Delete(&models.Vote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVoteConflict
	}
	return nil
}

func (t *gormTx) applyDelta(ctx context.Context, target Target, d delta) (Aggregate, error) {
	table := "posts"
	if target.Kind == models.TargetComment {
		table = "comments"
	}

	updates := map[string]interface{}{}
	if d.up != 0 {
		updates["upvote_count"] = gorm.Expr("upvote_count + ?", d.up)
	}
	if d.down != 0 {
		updates["downvote_count"] = gorm.Expr("downvote_count + ?", d.down)
	}
	if len(updates) > 0 {
		if err := t.db.WithContext(ctx).Table(table).
			Where("id = ?", target.ID).
			UpdateColumns(updates).Error; err != nil {
			return Aggregate{}, err
		}
	}

	var row aggregateRow
	if err := t.db.WithContext(ctx).Table(table).
		Select("user_id, upvote_count, downvote_count").
		Where("id = ?", target.ID).
		Take(&row).Error; err != nil {
		return Aggregate{}, err
	}
	if row.UpvoteCount < 0 || row.DownvoteCount < 0 {
		return Aggregate{}, fmt.Errorf("%w: %s %d up=%d down=%d",
			ErrCounterDrift, target.Kind, target.ID, row.UpvoteCount, row.DownvoteCount)
	}
	return Aggregate{Upvotes: row.UpvoteCount, Downvotes: row.DownvoteCount, AuthorID: row.UserID}, nil
}

// isUniqueViolation 识别唯一约束冲突 (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
