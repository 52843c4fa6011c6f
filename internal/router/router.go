package router

import (
	"context"
	"errors"
	"net/http"

	"ccchat/internal/handlers"
	"ccchat/internal/middleware"
	"ccchat/internal/models"
	"ccchat/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps 路由需要的全部服务
type Deps struct {
	Votes         handlers.VoteCaster
	Posts         *services.PostService
	Comments      *services.CommentService
	Bookmarks     *services.BookmarkService
	Notifications *services.NotificationService
	Tags          *services.TagService
	Users         *services.UserService
	Points        *services.PointsRecorder
}

// tokenResolver 将服务层的未授权错误转换为中间件的匿名处理
func tokenResolver(users *services.UserService) middleware.TokenResolver {
	return middleware.TokenResolverFunc(func(ctx context.Context, token string) (*models.User, error) {
		user, err := users.ResolveToken(ctx, token)
		if errors.Is(err, services.ErrUnauthorized) {
			return nil, middleware.ErrInvalidToken
		}
		return user, err
	})
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Handlers
	voteHandler := handlers.NewVoteHandler(d.Votes)
	postHandler := handlers.NewPostHandler(d.Posts)
	commentHandler := handlers.NewCommentHandler(d.Comments)
	bookmarkHandler := handlers.NewBookmarkHandler(d.Bookmarks)
	notificationHandler := handlers.NewNotificationHandler(d.Notifications)
	tagHandler := handlers.NewTagHandler(d.Tags)
	userHandler := handlers.NewUserHandler(d.Users, d.Points)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.LoadUser(tokenResolver(d.Users)))

	// 公共路由 (Public Routes)
	api.GET("/posts", postHandler.List)                  // 帖子列表
	api.GET("/posts/:id", postHandler.Detail)            // 帖子详情
	api.GET("/posts/:id/comments", commentHandler.Tree)  // 评论树
	api.GET("/tags", tagHandler.List)                    // 所有标签
	api.GET("/tags/:id", tagHandler.Get)                 // 标签详情
	api.GET("/users/:username", userHandler.Profile)     // 用户主页
	api.GET("/users/:username/posts", userHandler.Posts) // 用户的帖子

	// 受保护路由 (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts", postHandler.Create)                  // 发帖
		authorized.DELETE("/posts/:id", postHandler.Delete)            // 删除帖子
		authorized.POST("/posts/:id/comments", commentHandler.Create)  // 发表评论
		authorized.DELETE("/comments/:id", commentHandler.Delete)      // 删除评论
		authorized.POST("/posts/:id/vote", voteHandler.VotePost)       // 帖子投票
		authorized.POST("/comments/:id/vote", voteHandler.VoteComment) // 评论投票
		authorized.GET("/users/me/points", userHandler.PointLogs)      // 积分记录

		authorized.GET("/bookmarks", bookmarkHandler.List)                // 我的收藏
		authorized.POST("/bookmarks/:postId", bookmarkHandler.Add)        // 收藏
		authorized.DELETE("/bookmarks/:postId", bookmarkHandler.Remove)   // 取消收藏
		authorized.GET("/bookmarks/check/:postId", bookmarkHandler.Check) // 是否已收藏

		authorized.GET("/notifications", notificationHandler.List)                     // 我的通知
		authorized.GET("/notifications/unread-count", notificationHandler.UnreadCount) // 未读数
		authorized.PUT("/notifications/read-all", notificationHandler.ReadAll)         // 全部已读
		authorized.PUT("/notifications/:id/read", notificationHandler.Read)            // 标记已读
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)            // 删除通知
	}
}
