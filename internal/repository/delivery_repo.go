package repository

import (
	"context"
	"time"

	"stationops/internal/model"

	"gorm.io/gorm"
)

// DeliveryFilter narrows delivery listings. Zero values mean "no filter".
type DeliveryFilter struct {
	StationID string
	FuelType  string
	From      time.Time
	To        time.Time
}

type DeliveryRepository interface {
	Create(ctx context.Context, delivery *model.FuelDelivery) error
	GetByID(ctx context.Context, id string) (*model.FuelDelivery, error)
	GetByBOL(ctx context.Context, bolNumber string) (*model.FuelDelivery, error)
	List(ctx context.Context, filter DeliveryFilter, page, limit int) ([]model.FuelDelivery, int64, error)
}

type deliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

func (r *deliveryRepository) Create(ctx context.Context, delivery *model.FuelDelivery) error {
	return GetDB(ctx, r.db).Create(delivery).Error
}

func (r *deliveryRepository) GetByID(ctx context.Context, id string) (*model.FuelDelivery, error) {
	var delivery model.FuelDelivery
	if err := GetDB(ctx, r.db).Preload("Station").Preload("Tank").First(&delivery, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *deliveryRepository) GetByBOL(ctx context.Context, bolNumber string) (*model.FuelDelivery, error) {
	var delivery model.FuelDelivery
	if err := GetDB(ctx, r.db).First(&delivery, "bol_number = ?", bolNumber).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *deliveryRepository) List(ctx context.Context, filter DeliveryFilter, page, limit int) ([]model.FuelDelivery, int64, error) {
	var deliveries []model.FuelDelivery
	var total int64

	db := GetDB(ctx, r.db).Model(&model.FuelDelivery{})
	if filter.StationID != "" {
		db = db.Where("station_id = ?", filter.StationID)
	}
	if filter.FuelType != "" {
		db = db.Where("fuel_type = ?", filter.FuelType)
	}
	if !filter.From.IsZero() {
		db = db.Where("delivery_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		db = db.Where("delivery_date <= ?", filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Station").Preload("Tank").Preload("Creator").
		Order("delivery_date DESC").Offset(offset).Limit(limit).Find(&deliveries).Error; err != nil {
		return nil, 0, err
	}

	return deliveries, total, nil
}
