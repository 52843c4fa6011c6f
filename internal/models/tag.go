package models

import (
	"time"
)

type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;unique" json:"name"`
	Emoji       string    `gorm:"size:16" json:"emoji"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
