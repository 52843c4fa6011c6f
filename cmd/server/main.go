package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ccchat/internal/config"
	"ccchat/internal/db"
	"ccchat/internal/events"
	"ccchat/internal/logger"
	"ccchat/internal/middleware"
	"ccchat/internal/router"
	"ccchat/internal/services"
	"ccchat/internal/utils"
	"ccchat/internal/voting"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, finding env vars from system")
	}

	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	defer logger.L.Sync()

	cliApp := &cli.App{
		Name:  "ccchat",
		Usage: "community discussion server",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start http server",
				Action: func(ctx *cli.Context) error {
					return serve(ctx.Context, cfg)
				},
			},
			{
				Name:  "migrate",
				Usage: "create tables and seed tags",
				Action: func(ctx *cli.Context) error {
					conn, err := db.Init(cfg.DatabaseURL)
					if err != nil {
						return err
					}
					return db.Migrate(conn)
				},
			},
			{
				Name:  "user",
				Usage: "manage users",
				Subcommands: []*cli.Command{
					{
						Name:      "create",
						Usage:     "create a user and print its API token",
						ArgsUsage: "<username>",
						Action: func(ctx *cli.Context) error {
							if ctx.NArg() != 1 {
								return cli.Exit("usage: ccchat user create <username>", 2)
							}
							conn, err := db.Init(cfg.DatabaseURL)
							if err != nil {
								return err
							}
							user, token, err := services.NewUserService(conn).Create(ctx.Context, ctx.Args().First())
							if err != nil {
								return err
							}
							fmt.Printf("user %s created (id %d)\ntoken: %s\n", user.Username, user.ID, token)
							return nil
						},
					},
				},
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		logger.L.Fatal("command failed", zap.Error(err))
	}
}

func setupRouter(ctx context.Context, cfg config.Config, conn *gorm.DB) (*gin.Engine, func(), error) {
	cleanup := func() {}
	utils.SetCacheSize(cfg.CacheSize)
	cache := utils.GetCache()

	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		nc, js, err := events.Connect(cfg.NatsURL)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = nc.Drain() }
		publisher = events.New(js, cfg.NatsSubject, logger.L)
		logger.L.Info("publishing vote events", zap.String("subject", cfg.NatsSubject))
	}

	ranking := services.NewRankingService(cache, logger.L)
	ranking.Start(ctx)

	points := services.NewPointsRecorder(conn, logger.L, cfg.PageSize)
	engine := voting.NewEngine(voting.NewGormStore(conn),
		voting.WithLogger(logger.L),
		voting.WithListener(publisher),
		voting.WithListener(points),
		voting.WithListener(ranking),
	)
	notifications := services.NewNotificationService(conn, logger.L, cfg.PageSize)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	router.RegisterRoutes(r, router.Deps{
		Votes:         engine,
		Posts:         services.NewPostService(conn, cache, logger.L, cfg.PageSize, cfg.HotWindow),
		Comments:      services.NewCommentService(conn, notifications, cache, logger.L),
		Bookmarks:     services.NewBookmarkService(conn, cfg.PageSize),
		Notifications: notifications,
		Tags:          services.NewTagService(conn),
		Users:         services.NewUserService(conn),
		Points:        points,
	})
	return r, cleanup, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGINT)
	defer stop()

	r, cleanup, err := setupRouter(ctx, cfg, conn)
	if err != nil {
		return err
	}
	defer cleanup()

	serv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}
	eg, groupCtx := errgroup.WithContext(ctx)

	logger.L.Info("server starting", zap.String("port", cfg.Port))

	// 启动 http 服务
	eg.Go(func() error {
		err := serv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-groupCtx.Done()
		logger.L.Info("server stopping")

		// 等待中断信号以优雅地关闭服务器
		timeCtx, timeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeCancel()
		return serv.Shutdown(timeCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.L.Info("server stopped")
	return nil
}
