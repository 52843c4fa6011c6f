package handlers

import (
	"errors"
	"net/http"

	"ccchat/internal/logger"
	"ccchat/internal/middleware"
	"ccchat/internal/models"
	"ccchat/internal/services"
	"ccchat/internal/utils"
	"ccchat/internal/voting"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorMapping struct {
	err    error
	status int
	msg    string
}

var errorMappings = []errorMapping{
	{voting.ErrInvalidDirection, http.StatusBadRequest, "投票方向无效"},
	{voting.ErrInvalidTarget, http.StatusBadRequest, "投票对象无效"},
	{voting.ErrTargetNotFound, http.StatusNotFound, "内容不存在或已删除"},
	{services.ErrParentMismatch, http.StatusBadRequest, "父评论不属于该帖子"},
	{services.ErrInvalidInput, http.StatusBadRequest, "参数错误"},
	{services.ErrUnauthorized, http.StatusUnauthorized, "未授权"},
	{services.ErrForbidden, http.StatusForbidden, "无权操作"},
	{services.ErrPostNotFound, http.StatusNotFound, "帖子不存在"},
	{services.ErrCommentNotFound, http.StatusNotFound, "评论不存在"},
	{services.ErrUserNotFound, http.StatusNotFound, "用户不存在"},
	{services.ErrTagNotFound, http.StatusNotFound, "标签不存在"},
	{services.ErrNotificationNotFound, http.StatusNotFound, "通知不存在"},
	{services.ErrNotBookmarked, http.StatusNotFound, "尚未收藏"},
	{services.ErrAlreadyBookmarked, http.StatusBadRequest, "已经收藏过了"},
	{services.ErrUsernameTaken, http.StatusConflict, "用户名已被占用"},
}

// statusFor 将业务错误映射为 HTTP 状态码和提示语
func statusFor(err error) (int, string) {
	var inputErr *services.InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest, inputErr.Msg
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.msg
		}
	}
	return http.StatusInternalServerError, "服务器错误，请稍后再试"
}

// abortWithError 输出 {"message": ...}，5xx 记录日志
func abortWithError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.L.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": msg})
}

// parseID 解析路径参数中的 ID，失败时直接返回 400
func parseID(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		badRequest(c, "无效的 ID")
	}
	return id, ok
}

func pageParam(c *gin.Context) int {
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	return page
}

func currentUser(c *gin.Context) *models.User {
	return middleware.CurrentUser(c)
}

// viewerID 未登录返回 0
func viewerID(c *gin.Context) uint {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return 0
}
