package utils

import (
	"math"
	"slices"
	"time"

	"ccchat/internal/models"
)

// RankMode 列表排序方式
type RankMode string

const (
	RankHot           RankMode = "hot"
	RankNew           RankMode = "new"
	RankTop           RankMode = "top"
	RankMostDiscussed RankMode = "discussed"
)

// ParseRankMode 未知取值回退到热门
func ParseRankMode(s string) RankMode {
	switch RankMode(s) {
	case RankNew, RankTop, RankMostDiscussed:
		return RankMode(s)
	}
	return RankHot
}

type RankConfig struct {
	Gravity float64 // 时间重力 (1.5)
	Offset  float64 // 年龄偏移 (2)，避免新帖分母趋近 0
}

var DefaultRankConfig = RankConfig{
	Gravity: 1.5,
	Offset:  2,
}

// RankInput 计算排名所需的字段
type RankInput struct {
	Upvotes   int
	Downvotes int
	Comments  int
	CreatedAt time.Time
}

func RankInputFromPost(p models.Post) RankInput {
	return RankInput{
		Upvotes:   p.UpvoteCount,
		Downvotes: p.DownvoteCount,
		Comments:  p.CommentCount,
		CreatedAt: p.CreatedAt,
	}
}

// AgeHours 以 now 为基准的帖子年龄，未来时间按 0 计
func AgeHours(createdAt, now time.Time) float64 {
	h := now.Sub(createdAt).Hours()
	if h < 0 {
		return 0
	}
	return h
}

// HotScore (up - down) / (age + 2)^1.5
func HotScore(up, down int, ageHours float64) float64 {
	return DefaultRankConfig.hot(up, down, ageHours)
}

func (c RankConfig) hot(up, down int, ageHours float64) float64 {
	if ageHours < 0 {
		ageHours = 0
	}
	return float64(up-down) / math.Pow(ageHours+c.Offset, c.Gravity)
}

// RankScore 返回排序键，越大越靠前。now 必须与 CreatedAt 来自同一时钟。
func RankScore(in RankInput, now time.Time, mode RankMode) float64 {
	age := AgeHours(in.CreatedAt, now)
	switch mode {
	case RankNew:
		return -age
	case RankTop:
		return float64(in.Upvotes - in.Downvotes)
	case RankMostDiscussed:
		return float64(in.Comments)
	default:
		return DefaultRankConfig.hot(in.Upvotes, in.Downvotes, age)
	}
}

// SortPosts 按排序键降序稳定排序。键相同的帖子保持存储扫描顺序，
// 因此分页在并列时不保证稳定。
func SortPosts(posts []models.Post, now time.Time, mode RankMode) {
	keys := make(map[uint]float64, len(posts))
	for _, p := range posts {
		keys[p.ID] = RankScore(RankInputFromPost(p), now, mode)
	}
	slices.SortStableFunc(posts, func(a, b models.Post) int {
		ka, kb := keys[a.ID], keys[b.ID]
		switch {
		case ka > kb:
			return -1
		case ka < kb:
			return 1
		}
		return 0
	})
}
