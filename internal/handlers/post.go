package handlers

import (
	"net/http"

	"ccchat/internal/services"
	"ccchat/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// List 帖子列表，?sort=hot|new|top|discussed&page=&tag=
func (h *PostHandler) List(c *gin.Context) {
	page, err := h.posts.List(c.Request.Context(), services.ListParams{
		Mode: utils.ParseRankMode(c.Query("sort")),
		Page: pageParam(c),
		Tag:  c.Query("tag"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := h.posts.Detail(c.Request.Context(), id, viewerID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *PostHandler) Create(c *gin.Context) {
	var in services.CreatePostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "请求格式错误")
		return
	}
	post, err := h.posts.Create(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}
