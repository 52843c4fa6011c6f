package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// ParseID 解析路径中的正整数 ID
func ParseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// PageParams 计算分页偏移，page 从 1 开始
func PageParams(page, perPage int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	return perPage, (page - 1) * perPage
}
