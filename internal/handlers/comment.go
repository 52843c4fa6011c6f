package handlers

import (
	"net/http"
	"strconv"

	"ccchat/internal/services"

	"github.com/gin-gonic/gin"
)

// defaultTreeDepth 未指定 depth 时的展示深度
const defaultTreeDepth = 8

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// createCommentRequest 正文字段兼容 text 与 content
type createCommentRequest struct {
	Text     string `json:"text"`
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

func (r createCommentRequest) body() string {
	if r.Text != "" {
		return r.Text
	}
	return r.Content
}

// Tree 帖子的评论树，?depth=0 表示不限制深度
func (h *CommentHandler) Tree(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	depth := defaultTreeDepth
	if v, ok := c.GetQuery("depth"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "无效的 depth")
			return
		}
		depth = n
	}

	tree, err := h.comments.Tree(c.Request.Context(), postID, depth)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": tree})
}

func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误")
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), currentUser(c), postID, req.body(), req.ParentID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}
