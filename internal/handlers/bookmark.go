package handlers

import (
	"net/http"

	"ccchat/internal/services"

	"github.com/gin-gonic/gin"
)

type BookmarkHandler struct {
	bookmarks *services.BookmarkService
}

func NewBookmarkHandler(bookmarks *services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks}
}

func (h *BookmarkHandler) List(c *gin.Context) {
	bookmarks, err := h.bookmarks.List(c.Request.Context(), currentUser(c).ID, pageParam(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks})
}

func (h *BookmarkHandler) Add(c *gin.Context) {
	postID, ok := parseID(c, "postId")
	if !ok {
		return
	}
	if err := h.bookmarks.Add(c.Request.Context(), currentUser(c).ID, postID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "收藏成功", "bookmarked": true})
}

func (h *BookmarkHandler) Remove(c *gin.Context) {
	postID, ok := parseID(c, "postId")
	if !ok {
		return
	}
	if err := h.bookmarks.Remove(c.Request.Context(), currentUser(c).ID, postID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已取消收藏", "bookmarked": false})
}

// Check 检查当前用户是否收藏了该帖子
func (h *BookmarkHandler) Check(c *gin.Context) {
	postID, ok := parseID(c, "postId")
	if !ok {
		return
	}
	bookmarked, err := h.bookmarks.IsBookmarked(c.Request.Context(), currentUser(c).ID, postID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookmarked": bookmarked})
}
