package repository

import (
	"context"
	"time"

	"stationops/internal/model"

	"gorm.io/gorm"
)

// SalesFilter narrows sales-report listings. Zero values mean "no filter".
type SalesFilter struct {
	StationID string
	From      time.Time
	To        time.Time
}

// StationSalesTotal is one row of the aggregated summary query.
type StationSalesTotal struct {
	StationID    string  `json:"station_id"`
	StationCode  string  `json:"station_code"`
	FuelSales    float64 `json:"fuel_sales"`
	StoreSales   float64 `json:"store_sales"`
	LotterySales float64 `json:"lottery_sales"`
	TotalSales   float64 `json:"total_sales"`
	ReportCount  int64   `json:"report_count"`
}

type SalesRepository interface {
	Create(ctx context.Context, report *model.SalesReport) error
	GetByStationAndDate(ctx context.Context, stationID string, date time.Time) (*model.SalesReport, error)
	List(ctx context.Context, filter SalesFilter, page, limit int) ([]model.SalesReport, int64, error)
	SummaryByStation(ctx context.Context, from, to time.Time) ([]StationSalesTotal, error)
}

type salesRepository struct {
	db *gorm.DB
}

func NewSalesRepository(db *gorm.DB) SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) Create(ctx context.Context, report *model.SalesReport) error {
	return GetDB(ctx, r.db).Create(report).Error
}

func (r *salesRepository) GetByStationAndDate(ctx context.Context, stationID string, date time.Time) (*model.SalesReport, error) {
	var report model.SalesReport
	day := date.Format("2006-01-02")
	if err := GetDB(ctx, r.db).First(&report, "station_id = ? AND report_date = ?", stationID, day).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *salesRepository) List(ctx context.Context, filter SalesFilter, page, limit int) ([]model.SalesReport, int64, error) {
	var reports []model.SalesReport
	var total int64

	db := GetDB(ctx, r.db).Model(&model.SalesReport{})
	if filter.StationID != "" {
		db = db.Where("station_id = ?", filter.StationID)
	}
	if !filter.From.IsZero() {
		db = db.Where("report_date >= ?", filter.From.Format("2006-01-02"))
	}
	if !filter.To.IsZero() {
		db = db.Where("report_date <= ?", filter.To.Format("2006-01-02"))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Station").Preload("Creator").
		Order("report_date DESC").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *salesRepository) SummaryByStation(ctx context.Context, from, to time.Time) ([]StationSalesTotal, error) {
	var totals []StationSalesTotal
	err := GetDB(ctx, r.db).Table("sales_reports").
		Select(`sales_reports.station_id as station_id,
			stations.code as station_code,
			SUM(sales_reports.fuel_sales) as fuel_sales,
			SUM(sales_reports.store_sales) as store_sales,
			SUM(sales_reports.lottery_sales) as lottery_sales,
			SUM(sales_reports.total_sales) as total_sales,
			COUNT(*) as report_count`).
		Joins("JOIN stations ON stations.id = sales_reports.station_id").
		Where("sales_reports.report_date >= ? AND sales_reports.report_date <= ?",
			from.Format("2006-01-02"), to.Format("2006-01-02")).
		Group("sales_reports.station_id, stations.code").
		Order("station_code ASC").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return totals, nil
}
