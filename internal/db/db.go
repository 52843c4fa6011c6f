package db

import (
	"fmt"
	"time"

	"ccchat/internal/logger"
	"ccchat/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Init 连接数据库
func Init(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	logger.L.Info("database connection established")
	return conn, nil
}

// Migrate 自动建表并写入预设标签
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
		&models.PointLog{},
		&models.Bookmark{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.L.Info("database migration completed")

	return seedTags(conn)
}

func seedTags(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Tag{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.L.Debug("tags already seeded, skipping")
		return nil
	}

	tags := []models.Tag{
		{Name: "技术", Emoji: "💻", Description: "技术相关的讨论和分享"},
		{Name: "生活", Emoji: "☕", Description: "生活日常、经验分享"},
		{Name: "展示", Emoji: "🚀", Description: "作品展示、项目分享"},
		{Name: "问答", Emoji: "❓", Description: "提问与解答"},
		{Name: "闲聊", Emoji: "💬", Description: "随便聊聊"},
	}
	for _, tag := range tags {
		if err := conn.Create(&tag).Error; err != nil {
			logger.L.Warn("failed to create tag", zap.String("name", tag.Name), zap.Error(err))
		}
	}
	logger.L.Info("initial tags created", zap.Int("count", len(tags)))
	return nil
}
