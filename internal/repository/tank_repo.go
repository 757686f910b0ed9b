package repository

import (
	"context"

	"stationops/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TankRepository interface {
	Create(ctx context.Context, tank *model.Tank) error
	GetByID(ctx context.Context, id string) (*model.Tank, error)
	ListByStation(ctx context.Context, stationID string) ([]model.Tank, error)
	List(ctx context.Context) ([]model.Tank, error)
	UpdateVolume(ctx context.Context, id string, volume decimal.Decimal) error
	AddVolume(ctx context.Context, id string, gallons decimal.Decimal) error
	CreateReading(ctx context.Context, reading *model.TankReading) error
	ListReadings(ctx context.Context, tankID string, page, limit int) ([]model.TankReading, int64, error)
}

type tankRepository struct {
	db *gorm.DB
}

func NewTankRepository(db *gorm.DB) TankRepository {
	return &tankRepository{db: db}
}

func (r *tankRepository) Create(ctx context.Context, tank *model.Tank) error {
	return GetDB(ctx, r.db).Create(tank).Error
}

func (r *tankRepository) GetByID(ctx context.Context, id string) (*model.Tank, error) {
	var tank model.Tank
	if err := GetDB(ctx, r.db).Preload("Station").First(&tank, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tank, nil
}

func (r *tankRepository) ListByStation(ctx context.Context, stationID string) ([]model.Tank, error) {
	var tanks []model.Tank
	if err := GetDB(ctx, r.db).Where("station_id = ?", stationID).Order("label ASC").Find(&tanks).Error; err != nil {
		return nil, err
	}
	return tanks, nil
}

func (r *tankRepository) List(ctx context.Context) ([]model.Tank, error) {
	var tanks []model.Tank
	if err := GetDB(ctx, r.db).Preload("Station").Order("label ASC").Find(&tanks).Error; err != nil {
		return nil, err
	}
	return tanks, nil
}

func (r *tankRepository) UpdateVolume(ctx context.Context, id string, volume decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.Tank{}).
		Where("id = ?", id).
		Update("current_volume", volume).Error
}

func (r *tankRepository) AddVolume(ctx context.Context, id string, gallons decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.Tank{}).
		Where("id = ?", id).
		Update("current_volume", gorm.Expr("current_volume + ?", gallons)).Error
}

func (r *tankRepository) CreateReading(ctx context.Context, reading *model.TankReading) error {
	return GetDB(ctx, r.db).Create(reading).Error
}

func (r *tankRepository) ListReadings(ctx context.Context, tankID string, page, limit int) ([]model.TankReading, int64, error) {
	var readings []model.TankReading
	var total int64

	db := GetDB(ctx, r.db).Model(&model.TankReading{}).Where("tank_id = ?", tankID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Recorder").Order("recorded_at DESC").Offset(offset).Limit(limit).Find(&readings).Error; err != nil {
		return nil, 0, err
	}

	return readings, total, nil
}
