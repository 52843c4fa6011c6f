package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ccchat/internal/logger"
	"ccchat/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const CheckUserKey = "user"

// ErrInvalidToken 令牌不存在或已失效
var ErrInvalidToken = errors.New("invalid token")

// TokenResolver 根据 API 令牌查找用户
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*models.User, error)
}

// TokenResolverFunc adapts a function to TokenResolver.
type TokenResolverFunc func(ctx context.Context, token string) (*models.User, error)

func (f TokenResolverFunc) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	return f(ctx, token)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// LoadUser 从 Authorization 头解析当前用户，令牌无效时按匿名处理
func LoadUser(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		user, err := resolver.ResolveToken(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(CheckUserKey, user)
		case !errors.Is(err, ErrInvalidToken):
			logger.L.Warn("resolve token failed", zap.Error(err))
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "未授权"})
			return
		}
		c.Next()
	}
}

// CurrentUser 返回已登录用户，未登录返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
