package utils

import (
	"math/rand"
	"time"
)

// GetUserLevel 根据积分数量返回用户等级
func GetUserLevel(points int) (name string, icon string) {
	switch {
	case points >= 1000:
		return "成林", "🎋"
	case points >= 201:
		return "翠竹", "🎍"
	case points >= 51:
		return "新竹", "🌿"
	case points >= 11:
		return "破土", "🌾"
	default:
		return "萌芽", "🌱"
	}
}

// GetDaysSinceJoined 计算注册天数
func GetDaysSinceJoined(createdAt, now time.Time) int {
	return int(now.Sub(createdAt).Hours() / 24)
}

var avatarEmojis = []string{"🌱", "🌿", "🍃", "🌾", "🎋", "🎍", "🌲", "🌳", "🐼", "🦊", "🐨", "🐸"}

// GetRandomEmoji 返回一个随机 emoji 用于默认头像
func GetRandomEmoji() string {
	return avatarEmojis[rand.Intn(len(avatarEmojis))]
}
