package handlers

import (
	"net/http"

	"ccchat/internal/services"

	"github.com/gin-gonic/gin"
)

const profilePostLimit = 20

type UserHandler struct {
	users  *services.UserService
	points *services.PointsRecorder
}

func NewUserHandler(users *services.UserService, points *services.PointsRecorder) *UserHandler {
	return &UserHandler{users: users, points: points}
}

// Profile 用户主页信息
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.users.Profile(c.Request.Context(), c.Param("username"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) Posts(c *gin.Context) {
	posts, err := h.users.Posts(c.Request.Context(), c.Param("username"), profilePostLimit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// PointLogs 当前用户的积分明细
func (h *UserHandler) PointLogs(c *gin.Context) {
	user := currentUser(c)
	logs, err := h.points.Logs(c.Request.Context(), user.ID, pageParam(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": user.Points, "logs": logs})
}
