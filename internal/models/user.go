package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Avatar    string    `gorm:"default:🌱" json:"avatar"`      // emoji 头像
	Bio       string    `gorm:"size:200" json:"bio"`          // 个人简介
	Points    int       `gorm:"default:0" json:"points"`      // 积分
	TokenHash string    `gorm:"uniqueIndex;size:64" json:"-"` // API 令牌的 blake2b 摘要
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
