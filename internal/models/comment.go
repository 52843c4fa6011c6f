package models

import (
	"time"
)

type Comment struct {
	ID       uint  `gorm:"primaryKey" json:"id"`
	PostID   uint  `gorm:"not null;index" json:"post_id"`
	Post     Post  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID   uint  `gorm:"not null;index" json:"user_id"`
	User     User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	ParentID *uint `gorm:"index" json:"parent_id"` // Nullable for top-level comments
	// 只用于建立外键，读路径通过 id 组装树，不加载 Parent
	Parent  *Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content string   `gorm:"type:text;not null" json:"content"`

	UpvoteCount   int `gorm:"<-:create;not null;default:0" json:"upvotes"`
	DownvoteCount int `gorm:"<-:create;not null;default:0" json:"downvotes"`

	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"` // 软删除，保留行以维持回复结构
}

func (c Comment) Score() int {
	return c.UpvoteCount - c.DownvoteCount
}

// CommentNode 评论树的读模型
type CommentNode struct {
	ID         uint      `json:"id"`
	ParentID   *uint     `json:"parent_id"`
	PostID     uint      `json:"post_id"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author"`
	Body       string    `json:"content"`
	BodyHTML   string    `json:"content_html,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Upvotes    int       `json:"upvotes"`
	Downvotes  int       `json:"downvotes"`
	Deleted    bool      `json:"deleted"`
	Collapsed  bool      `json:"collapsed"`

	Replies []*CommentNode `json:"replies"`
}

func (n *CommentNode) Score() int {
	return n.Upvotes - n.Downvotes
}

// NodeFromComment 将数据库行转换为读模型（需预加载 User）
func NodeFromComment(c Comment) CommentNode {
	return CommentNode{
		ID:         c.ID,
		ParentID:   c.ParentID,
		PostID:     c.PostID,
		AuthorID:   c.UserID,
		AuthorName: c.User.Username,
		Body:       c.Content,
		CreatedAt:  c.CreatedAt,
		Upvotes:    c.UpvoteCount,
		Downvotes:  c.DownvoteCount,
		Deleted:    c.DeletedAt != nil,
	}
}
