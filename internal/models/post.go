package models

import (
	"time"
)

type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Title   string `gorm:"not null" json:"title"`
	URL     string `json:"url,omitempty"` // Optional
	Content string `gorm:"type:text;not null" json:"content"`
	Tags    []Tag  `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE;" json:"tags"`

	// 计数器只能由投票引擎和评论事务修改，普通 Save/Updates 不会写入
	UpvoteCount   int `gorm:"<-:create;not null;default:0" json:"upvotes"`
	DownvoteCount int `gorm:"<-:create;not null;default:0" json:"downvotes"`
	CommentCount  int `gorm:"<-:create;not null;default:0" json:"comment_count"`

	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"` // 软删除
}

// Score 实时计算，不落库
func (p Post) Score() int {
	return p.UpvoteCount - p.DownvoteCount
}

// IsDeleted 是否已软删除
func (p Post) IsDeleted() bool {
	return p.DeletedAt != nil
}
