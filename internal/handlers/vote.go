package handlers

import (
	"context"
	"net/http"

	"ccchat/internal/logger"
	"ccchat/internal/models"
	"ccchat/internal/voting"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VoteCaster 由 voting.Engine 实现
type VoteCaster interface {
	CastVote(ctx context.Context, voterID uint, target voting.Target, dir models.VoteDirection) (voting.Outcome, error)
}

type VoteHandler struct {
	votes VoteCaster
}

func NewVoteHandler(votes VoteCaster) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// voteRequest 兼容 {"value": 1|-1} 与 {"direction": "up"|"down"}
type voteRequest struct {
	Value     *int    `json:"value"`
	Direction *string `json:"direction"`
}

func (r voteRequest) direction() (models.VoteDirection, bool) {
	if r.Direction != nil {
		return models.ParseDirection(*r.Direction)
	}
	if r.Value != nil {
		return models.DirectionFromValue(*r.Value)
	}
	return 0, false
}

type voteResponse struct {
	Outcome   voting.Result         `json:"outcome"`
	Message   string                `json:"message"`
	Score     int                   `json:"score"`
	Upvotes   int                   `json:"upvotes"`
	Downvotes int                   `json:"downvotes"`
	Direction *models.VoteDirection `json:"direction"`
}

func (h *VoteHandler) VotePost(c *gin.Context) {
	h.vote(c, models.TargetPost)
}

func (h *VoteHandler) VoteComment(c *gin.Context) {
	h.vote(c, models.TargetComment)
}

func (h *VoteHandler) vote(c *gin.Context, kind models.TargetKind) {
	user := currentUser(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "请求格式错误")
		return
	}
	dir, ok := req.direction()
	if !ok {
		abortWithError(c, voting.ErrInvalidDirection)
		return
	}

	target := voting.Target{Kind: kind, ID: id}
	outcome, err := h.votes.CastVote(c.Request.Context(), user.ID, target, dir)
	if voting.IsPersistence(err) {
		// 事务已回滚，重试一次是安全的
		logger.L.Warn("vote failed, retrying",
			zap.Uint("user_id", user.ID), zap.String("kind", string(kind)), zap.Uint("id", id), zap.Error(err))
		outcome, err = h.votes.CastVote(c.Request.Context(), user.ID, target, dir)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, voteResponse{
		Outcome:   outcome.Result,
		Message:   outcome.Message(),
		Score:     outcome.Score(),
		Upvotes:   outcome.Upvotes,
		Downvotes: outcome.Downvotes,
		Direction: outcome.Direction,
	})
}
