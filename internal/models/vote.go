package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TargetKind 投票对象类型
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Valid 是否为已知的投票对象类型
func (k TargetKind) Valid() bool {
	return k == TargetPost || k == TargetComment
}

// VoteDirection 投票方向，只有赞和踩两种取值
type VoteDirection uint8

const (
	VoteUp VoteDirection = iota + 1
	VoteDown
)

// Valid 是否为赞或踩
func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Delta 方向对应的分数增量：赞为 +1，踩为 -1
func (d VoteDirection) Delta() int {
	switch d {
	case VoteUp:
		return 1
	case VoteDown:
		return -1
	}
	return 0
}

func (d VoteDirection) String() string {
	switch d {
	case VoteUp:
		return "up"
	case VoteDown:
		return "down"
	}
	return fmt.Sprintf("VoteDirection(%d)", uint8(d))
}

// ParseDirection 解析 "up"/"down"
func ParseDirection(s string) (VoteDirection, bool) {
	switch s {
	case "up":
		return VoteUp, true
	case "down":
		return VoteDown, true
	}
	return 0, false
}

// DirectionFromValue 兼容旧客户端的 1 / -1 写法
func DirectionFromValue(v int) (VoteDirection, bool) {
	switch v {
	case 1:
		return VoteUp, true
	case -1:
		return VoteDown, true
	}
	return 0, false
}

// MarshalText 让 JSON 输出 "up"/"down"
func (d VoteDirection) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid vote direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

func (d *VoteDirection) UnmarshalText(b []byte) error {
	v, ok := ParseDirection(string(b))
	if !ok {
		return fmt.Errorf("invalid vote direction %q", string(b))
	}
	*d = v
	return nil
}

// Value implements driver.Valuer; the column stores the direction as text.
func (d VoteDirection) Value() (driver.Value, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid vote direction %d", uint8(d))
	}
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *VoteDirection) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into VoteDirection", src)
	}
	parsed, ok := ParseDirection(s)
	if !ok {
		return fmt.Errorf("invalid vote direction %q", s)
	}
	*d = parsed
	return nil
}

// Vote 投票记录，每个用户对同一对象最多一条
type Vote struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	UserID     uint          `gorm:"not null;uniqueIndex:idx_vote_user_target,priority:1" json:"user_id"`
	TargetKind TargetKind    `gorm:"type:varchar(10);not null;uniqueIndex:idx_vote_user_target,priority:2;index:idx_vote_target,priority:1" json:"target_kind"`
	TargetID   uint          `gorm:"not null;uniqueIndex:idx_vote_user_target,priority:3;index:idx_vote_target,priority:2" json:"target_id"`
	Direction  VoteDirection `gorm:"type:varchar(4);not null" json:"direction"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}
