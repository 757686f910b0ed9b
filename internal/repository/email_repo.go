package repository

import (
	"context"

	"stationops/internal/model"

	"gorm.io/gorm"
)

type EmailLogRepository interface {
	Create(ctx context.Context, entry *model.EmailLog) error
	List(ctx context.Context, category string, page, limit int) ([]model.EmailLog, int64, error)
}

type emailLogRepository struct {
	db *gorm.DB
}

func NewEmailLogRepository(db *gorm.DB) EmailLogRepository {
	return &emailLogRepository{db: db}
}

func (r *emailLogRepository) Create(ctx context.Context, entry *model.EmailLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *emailLogRepository) List(ctx context.Context, category string, page, limit int) ([]model.EmailLog, int64, error) {
	var logs []model.EmailLog
	var total int64

	db := GetDB(ctx, r.db).Model(&model.EmailLog{})
	if category != "" {
		db = db.Where("category = ?", category)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
