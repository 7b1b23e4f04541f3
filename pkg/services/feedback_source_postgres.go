package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"feedback-insights-api/pkg/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// FeedbackRow feedback テーブルの1行
type FeedbackRow struct {
	ID           uint     `gorm:"primarykey"`
	Date         string   `gorm:"column:date;type:varchar(10);index"`
	FeedbackText string   `gorm:"column:feedback_text;type:text"`
	Rating       *float64 `gorm:"column:rating"`
	Category     *string  `gorm:"column:category;index"`
}

// TableName テーブル名
func (FeedbackRow) TableName() string {
	return "feedback"
}

// ToRecord 分析用のレコードに変換
func (r FeedbackRow) ToRecord() models.FeedbackRecord {
	return models.FeedbackRecord{
		Date:         r.Date,
		FeedbackText: r.FeedbackText,
		Rating:       r.Rating,
		Category:     r.Category,
	}
}

// PostgresFeedbackSource PostgreSQL の feedback テーブルから読み込むデータソース
type PostgresFeedbackSource struct {
	db *gorm.DB
}

// OpenPostgres DSN から gorm の接続を作成
func OpenPostgres(dsn string) (*gorm.DB, error) {
	slog.Info("[PostgresFeedbackSource] 🔌 connecting to PostgreSQL...")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	slog.Info("[PostgresFeedbackSource] ✅ connected to PostgreSQL")
	return db, nil
}

// NewPostgresFeedbackSource 新しい PostgresFeedbackSource を作成
// autoMigrate が true の場合は feedback テーブルを作成・更新する。
func NewPostgresFeedbackSource(db *gorm.DB, autoMigrate bool) (*PostgresFeedbackSource, error) {
	if autoMigrate {
		if err := db.AutoMigrate(&FeedbackRow{}); err != nil {
			return nil, fmt.Errorf("failed to migrate feedback table: %w", err)
		}
	}
	return &PostgresFeedbackSource{db: db}, nil
}

// Load 全レコードをID順に読み込む
func (s *PostgresFeedbackSource) Load(ctx context.Context) ([]models.FeedbackRecord, error) {
	var rows []FeedbackRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}

	records := make([]models.FeedbackRecord, len(rows))
	for i, row := range rows {
		records[i] = row.ToRecord()
	}
	return records, nil
}
