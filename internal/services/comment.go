package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"ccchat/internal/models"
	"ccchat/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentService struct {
	db       *gorm.DB
	notifier *NotificationService
	cache    *utils.TTLCache
	log      *zap.Logger
}

func NewCommentService(db *gorm.DB, notifier *NotificationService, cache *utils.TTLCache, log *zap.Logger) *CommentService {
	return &CommentService{db: db, notifier: notifier, cache: cache, log: log}
}

// Create 发表评论或回复。父评论必须属于同一帖子，评论数与评论在同一事务内写入。
func (s *CommentService) Create(ctx context.Context, author *models.User, postID uint, text string, parentID *uint) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("评论内容不能为空")
	}

	var (
		post    models.Post
		parent  *models.Comment
		comment models.Comment
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		post, parent, comment, err = insertComment(tx, author.ID, postID, text, parentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.DeletePrefix(listCachePrefix)
	comment.User = *author
	if s.notifier != nil {
		s.notifier.NotifyComment(ctx, &post, parent, &comment)
	}
	return &comment, nil
}

// insertComment 是发表评论的事务体：锁定帖子、校验父评论、写入评论并累加 comment_count
func insertComment(tx *gorm.DB, authorID, postID uint, text string, parentID *uint) (models.Post, *models.Comment, models.Comment, error) {
	var post models.Post
	err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
		Where("id = ? AND deleted_at IS NULL", postID).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return post, nil, models.Comment{}, ErrPostNotFound
	}
	if err != nil {
		return post, nil, models.Comment{}, err
	}

	var parent *models.Comment
	if parentID != nil {
		var p models.Comment
		err := tx.Where("id = ?", *parentID).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return post, nil, models.Comment{}, ErrCommentNotFound
		}
		if err != nil {
			return post, nil, models.Comment{}, err
		}
		if err := checkReplyParent(postID, &p); err != nil {
			return post, nil, models.Comment{}, err
		}
		parent = &p
	}

	comment := models.Comment{
		PostID:   postID,
		UserID:   authorID,
		ParentID: parentID,
		Content:  text,
	}
	if err := tx.Create(&comment).Error; err != nil {
		return post, nil, models.Comment{}, err
	}

	err = tx.Table("posts").
		Where("id = ?", postID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	return post, parent, comment, err
}

// checkReplyParent 回复的父评论必须未删除且属于同一帖子
func checkReplyParent(postID uint, parent *models.Comment) error {
	if parent.DeletedAt != nil {
		return ErrCommentNotFound
	}
	if parent.PostID != postID {
		return ErrParentMismatch
	}
	return nil
}

// Tree 返回帖子的评论树，maxDepth <= 0 表示不限制展示深度
func (s *CommentService) Tree(ctx context.Context, postID uint, maxDepth int) ([]*models.CommentNode, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND deleted_at IS NULL", postID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrPostNotFound
	}

	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}

	flat := make([]models.CommentNode, len(comments))
	for i, c := range comments {
		flat[i] = models.NodeFromComment(c)
		if !flat[i].Deleted {
			flat[i].BodyHTML = utils.RenderMarkdown(c.Content)
		}
	}

	roots, orphans := utils.BuildCommentTree(flat)
	if orphans > 0 {
		s.log.Warn("orphaned comments dropped from tree",
			zap.Uint("post_id", postID), zap.Int("orphans", orphans))
	}
	if roots == nil {
		roots = []*models.CommentNode{}
	}
	return utils.PruneDepth(roots, maxDepth), nil
}

// Delete 软删除评论，仅作者可操作。行保留以维持回复结构。
func (s *CommentService) Delete(ctx context.Context, userID, id uint) error {
	var comment models.Comment
	err := s.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Update("deleted_at", time.Now()).Error
}
