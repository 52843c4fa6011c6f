package services

import (
	"context"
	"errors"

	"ccchat/internal/models"
	"ccchat/internal/utils"

	"gorm.io/gorm"
)

type BookmarkService struct {
	db       *gorm.DB
	pageSize int
}

func NewBookmarkService(db *gorm.DB, pageSize int) *BookmarkService {
	return &BookmarkService{db: db, pageSize: pageSize}
}

// Add 收藏帖子
func (s *BookmarkService) Add(ctx context.Context, userID, postID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND deleted_at IS NULL", postID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrPostNotFound
	}

	err := s.db.WithContext(ctx).Create(&models.Bookmark{UserID: userID, PostID: postID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyBookmarked
	}
	return err
}

// Remove 取消收藏
func (s *BookmarkService) Remove(ctx context.Context, userID, postID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Bookmark{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotBookmarked
	}
	return nil
}

func (s *BookmarkService) IsBookmarked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Bookmark{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// List 用户的收藏列表，已删除的帖子不展示
func (s *BookmarkService) List(ctx context.Context, userID uint, page int) ([]models.Bookmark, error) {
	limit, offset := utils.PageParams(page, s.pageSize)
	var bookmarks []models.Bookmark
	err := s.db.WithContext(ctx).
		Joins("JOIN posts ON posts.id = bookmarks.post_id AND posts.deleted_at IS NULL").
		Preload("Post").Preload("Post.User").
		Where("bookmarks.user_id = ?", userID).
		Order("bookmarks.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&bookmarks).Error
	return bookmarks, err
}
