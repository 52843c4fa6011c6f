package services

import (
	"context"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"

	"ccchat/internal/models"
	"ccchat/internal/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{2,32}$`)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// HashToken 令牌只保存摘要
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Create 创建用户并返回 API 令牌，令牌明文只在此处出现一次
func (s *UserService) Create(ctx context.Context, username string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, "", invalid("用户名只能包含字母、数字、下划线和连字符，长度 2-32")
	}

	token := uuid.NewString()
	user := models.User{
		Username:  username,
		Avatar:    utils.GetRandomEmoji(),
		TokenHash: HashToken(token),
	}
	err := s.db.WithContext(ctx).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, "", ErrUsernameTaken
	}
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// ResolveToken 根据令牌查找用户
func (s *UserService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	var user models.User
	err := s.db.WithContext(ctx).Where("token_hash = ?", HashToken(token)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type Profile struct {
	User         *models.User `json:"user"`
	PostCount    int64        `json:"post_count"`
	CommentCount int64        `json:"comment_count"`
	TotalVotes   int64        `json:"total_votes"`
	Level        string       `json:"level"`
	LevelIcon    string       `json:"level_icon"`
	DaysJoined   int          `json:"days_joined"`
}

// Profile 用户主页统计，只计算未删除的内容
func (s *UserService) Profile(ctx context.Context, username string) (*Profile, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	p := &Profile{User: user}
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Post{}).
		Where("user_id = ? AND deleted_at IS NULL", user.ID).
		Count(&p.PostCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Comment{}).
		Where("user_id = ? AND deleted_at IS NULL", user.ID).
		Count(&p.CommentCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Post{}).
		Select("COALESCE(SUM(upvote_count - downvote_count), 0)").
		Where("user_id = ? AND deleted_at IS NULL", user.ID).
		Scan(&p.TotalVotes).Error; err != nil {
		return nil, err
	}

	p.Level, p.LevelIcon = utils.GetUserLevel(user.Points)
	p.DaysJoined = utils.GetDaysSinceJoined(user.CreatedAt, time.Now())
	return p, nil
}

// Posts 用户最近发布的帖子
func (s *UserService) Posts(ctx context.Context, username string, limit int) ([]PostView, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	var posts []models.Post
	if err := s.db.WithContext(ctx).
		Preload("Tags").
		Where("user_id = ? AND deleted_at IS NULL", user.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	views := make([]PostView, len(posts))
	for i, post := range posts {
		post.User = *user
		views[i] = newPostView(post)
	}
	return views, nil
}
