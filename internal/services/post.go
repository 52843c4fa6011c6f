package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"ccchat/internal/models"
	"ccchat/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const listCachePrefix = "posts:"

type PostService struct {
	db        *gorm.DB
	cache     *utils.TTLCache
	log       *zap.Logger
	pageSize  int
	hotWindow int
}

func NewPostService(db *gorm.DB, cache *utils.TTLCache, log *zap.Logger, pageSize, hotWindow int) *PostService {
	return &PostService{db: db, cache: cache, log: log, pageSize: pageSize, hotWindow: hotWindow}
}

// PostView 列表和详情中的帖子
type PostView struct {
	models.Post
	Score int `json:"score"`
}

func newPostView(p models.Post) PostView {
	return PostView{Post: p, Score: p.Score()}
}

type PostPage struct {
	Posts      []PostView     `json:"posts"`
	Mode       utils.RankMode `json:"sort"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}

type ListParams struct {
	Mode utils.RankMode
	Page int
	Tag  string
}

// List 按排序方式分页获取帖子，结果缓存 1 分钟
func (s *PostService) List(ctx context.Context, p ListParams) (*PostPage, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	cacheKey := fmt.Sprintf("%s%s:%s:%d", listCachePrefix, p.Mode, p.Tag, p.Page)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if page, ok := cached.(*PostPage); ok {
			return page, nil
		}
	}

	var (
		page *PostPage
		err  error
	)
	if p.Mode == utils.RankHot {
		page, err = s.listHot(ctx, p)
	} else {
		page, err = s.listOrdered(ctx, p)
	}
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheKey, page, time.Minute)
	return page, nil
}

func (s *PostService) baseQuery(ctx context.Context, tag string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("posts.deleted_at IS NULL")
	if tag != "" {
		q = q.Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id AND tags.name = ?", tag)
	}
	return q
}

// listOrdered 新帖、最高分、最多讨论直接在数据库排序。
// 最高分与最多讨论不带次级排序键，并列时顺序取决于扫描顺序。
func (s *PostService) listOrdered(ctx context.Context, p ListParams) (*PostPage, error) {
	var total int64
	if err := s.baseQuery(ctx, p.Tag).Count(&total).Error; err != nil {
		return nil, err
	}

	order := "posts.created_at DESC"
	switch p.Mode {
	case utils.RankTop:
		order = "(posts.upvote_count - posts.downvote_count) DESC"
	case utils.RankMostDiscussed:
		order = "posts.comment_count DESC"
	}

	limit, offset := utils.PageParams(p.Page, s.pageSize)
	var posts []models.Post
	err := s.baseQuery(ctx, p.Tag).
		Preload("User").Preload("Tags").
		Order(order).
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return s.newPage(posts, p, int(total)), nil
}

// listHot 取最近 hotWindow 篇帖子在内存中按热度排序，年龄与 created_at 使用同一时钟
func (s *PostService) listHot(ctx context.Context, p ListParams) (*PostPage, error) {
	now := s.now()

	var candidates []models.Post
	err := s.baseQuery(ctx, p.Tag).
		Preload("User").Preload("Tags").
		Order("posts.created_at DESC").
		Limit(s.hotWindow).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	utils.SortPosts(candidates, now, utils.RankHot)

	limit, offset := utils.PageParams(p.Page, s.pageSize)
	var window []models.Post
	if offset < len(candidates) {
		window = candidates[offset:min(offset+limit, len(candidates))]
	}
	return s.newPage(window, p, len(candidates)), nil
}

func (s *PostService) newPage(posts []models.Post, p ListParams, total int) *PostPage {
	totalPages := int(math.Ceil(float64(total) / float64(s.pageSize)))
	if totalPages == 0 {
		totalPages = 1
	}
	views := make([]PostView, len(posts))
	for i, post := range posts {
		views[i] = newPostView(post)
	}
	return &PostPage{Posts: views, Mode: p.Mode, Page: p.Page, TotalPages: totalPages}
}

// now 与 gorm 写入 created_at 使用同一个时钟 (Config.NowFunc)
func (s *PostService) now() time.Time {
	return s.db.NowFunc()
}

// Get 获取未删除的帖子
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("User").Preload("Tags").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

type PostDetail struct {
	PostView
	ContentHTML string                `json:"content_html"`
	UserVote    *models.VoteDirection `json:"user_vote"`
	Bookmarked  bool                  `json:"bookmarked"`
}

// Detail 帖子详情，viewerID 为 0 表示未登录
func (s *PostService) Detail(ctx context.Context, id, viewerID uint) (*PostDetail, error) {
	var (
		post       *models.Post
		userVote   *models.VoteDirection
		bookmarked bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		post, err = s.Get(gctx, id)
		return err
	})
	if viewerID != 0 {
		g.Go(func() error {
			var votes []models.Vote
			err := s.db.WithContext(gctx).
				Where("user_id = ? AND target_kind = ? AND target_id = ?", viewerID, models.TargetPost, id).
				Limit(1).Find(&votes).Error
			if err == nil && len(votes) == 1 {
				userVote = &votes[0].Direction
			}
			return err
		})
		g.Go(func() error {
			var count int64
			err := s.db.WithContext(gctx).Model(&models.Bookmark{}).
				Where("user_id = ? AND post_id = ?", viewerID, id).
				Count(&count).Error
			bookmarked = count > 0
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &PostDetail{
		PostView:    newPostView(*post),
		ContentHTML: utils.RenderMarkdown(post.Content),
		UserVote:    userVote,
		Bookmarked:  bookmarked,
	}, nil
}

type CreatePostInput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	URL     string   `json:"url"`
	Tags    []string `json:"tags"`
}

func (s *PostService) Create(ctx context.Context, userID uint, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, invalid("标题和内容不能为空")
	}

	var tags []models.Tag
	if len(in.Tags) > 0 {
		if err := s.db.WithContext(ctx).Where("name IN ?", in.Tags).Find(&tags).Error; err != nil {
			return nil, err
		}
		if len(tags) != len(uniqueStrings(in.Tags)) {
			return nil, ErrTagNotFound
		}
	}

	post := models.Post{
		UserID:  userID,
		Title:   title,
		Content: content,
		URL:     strings.TrimSpace(in.URL),
		Tags:    tags,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}

	s.cache.DeletePrefix(listCachePrefix)
	return &post, nil
}

// Delete 软删除帖子，仅作者可操作
func (s *PostService) Delete(ctx context.Context, userID, id uint) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrForbidden
	}

	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Update("deleted_at", time.Now()).Error; err != nil {
		return err
	}

	s.cache.DeletePrefix(listCachePrefix)
	s.log.Info("post deleted", zap.Uint("post_id", id), zap.Uint("user_id", userID))
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
