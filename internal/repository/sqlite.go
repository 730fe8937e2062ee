package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/atinyakov/shortlink/internal/storage"
)

// linkRow is the gorm mapping of the links table.
type linkRow struct {
	Code      string    `gorm:"primaryKey;type:text"`
	URL       string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (linkRow) TableName() string {
	return "links"
}

// SQLiteRepository is a link store kept in a single SQLite file.
type SQLiteRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// OpenSQLite opens (or creates) the database file at path and migrates the
// links table.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; keep the pool from fighting over the lock.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&linkRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate links table: %w", err)
	}

	logger.Info("sqlite database ready", zap.String("path", path))
	return &SQLiteRepository{db: db, logger: logger}, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, code string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).Model(&linkRow{}).Where("code = ?", code).Limit(1).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}

	return count > 0, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, code, url string) (*storage.Link, error) {
	row := linkRow{Code: code, URL: url, CreatedAt: time.Now().UTC()}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		r.logger.Error("insert link failed", zap.String("code", code), zap.Error(res.Error))
		return nil, fmt.Errorf("insert link: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return nil, storage.ErrConflict
	}

	return &storage.Link{Code: row.Code, URL: row.URL, CreatedAt: row.CreatedAt}, nil
}

func (r *SQLiteRepository) Lookup(ctx context.Context, code string) (*storage.Link, error) {
	var row linkRow

	err := r.db.WithContext(ctx).Where("code = ?", code).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("lookup link: %w", err)
	}

	return &storage.Link{Code: row.Code, URL: row.URL, CreatedAt: row.CreatedAt}, nil
}

func (r *SQLiteRepository) PingContext(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
