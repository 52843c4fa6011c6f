package services

import (
	"context"

	"ccchat/internal/models"
	"ccchat/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type NotificationService struct {
	db       *gorm.DB
	log      *zap.Logger
	pageSize int
}

func NewNotificationService(db *gorm.DB, log *zap.Logger, pageSize int) *NotificationService {
	return &NotificationService{db: db, log: log, pageSize: pageSize}
}

// commentNotifications 计算一条新评论应产生的通知，不通知自己，同一用户只通知一次
func commentNotifications(post *models.Post, parent *models.Comment, comment *models.Comment, mentioned []models.User) []models.Notification {
	var out []models.Notification
	notified := map[uint]bool{comment.UserID: true}
	commentID := comment.ID

	add := func(userID uint, typ models.NotificationType) {
		if notified[userID] {
			return
		}
		notified[userID] = true
		out = append(out, models.Notification{
			UserID:    userID,
			ActorID:   comment.UserID,
			Type:      typ,
			PostID:    post.ID,
			CommentID: &commentID,
		})
	}

	if parent != nil {
		add(parent.UserID, models.NotificationCommentReply)
	} else {
		add(post.UserID, models.NotificationPostReply)
	}
	for _, u := range mentioned {
		add(u.ID, models.NotificationMention)
	}
	return out
}

// NotifyComment 为新评论写入通知。失败只记录日志，不影响评论本身。
func (s *NotificationService) NotifyComment(ctx context.Context, post *models.Post, parent *models.Comment, comment *models.Comment) {
	var mentioned []models.User
	if names := utils.ExtractMentions(comment.Content); len(names) > 0 {
		if err := s.db.WithContext(ctx).Where("username IN ?", names).Find(&mentioned).Error; err != nil {
			s.log.Warn("lookup mentioned users failed", zap.Error(err))
		}
	}

	notifications := commentNotifications(post, parent, comment, mentioned)
	if len(notifications) == 0 {
		return
	}
	if err := s.db.WithContext(ctx).Create(&notifications).Error; err != nil {
		s.log.Error("create notifications failed",
			zap.Uint("comment_id", comment.ID), zap.Error(err))
	}
}

func (s *NotificationService) List(ctx context.Context, userID uint, page int) ([]models.Notification, error) {
	limit, offset := utils.PageParams(page, s.pageSize)
	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Preload("Actor").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
