package repository

import (
	"context"

	"stationops/internal/model"

	"gorm.io/gorm"
)

type StationRepository interface {
	Create(ctx context.Context, station *model.Station) error
	GetByID(ctx context.Context, id string) (*model.Station, error)
	GetByCode(ctx context.Context, code string) (*model.Station, error)
	List(ctx context.Context) ([]model.Station, error)
	Update(ctx context.Context, station *model.Station) error
}

type stationRepository struct {
	db *gorm.DB
}

func NewStationRepository(db *gorm.DB) StationRepository {
	return &stationRepository{db: db}
}

func (r *stationRepository) Create(ctx context.Context, station *model.Station) error {
	return GetDB(ctx, r.db).Create(station).Error
}

func (r *stationRepository) GetByID(ctx context.Context, id string) (*model.Station, error) {
	var station model.Station
	if err := GetDB(ctx, r.db).First(&station, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *stationRepository) GetByCode(ctx context.Context, code string) (*model.Station, error) {
	var station model.Station
	if err := GetDB(ctx, r.db).First(&station, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *stationRepository) List(ctx context.Context) ([]model.Station, error) {
	var stations []model.Station
	if err := GetDB(ctx, r.db).Order("code ASC").Find(&stations).Error; err != nil {
		return nil, err
	}
	return stations, nil
}

func (r *stationRepository) Update(ctx context.Context, station *model.Station) error {
	return GetDB(ctx, r.db).Save(station).Error
}
