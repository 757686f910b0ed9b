package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stationops/internal/model"
	"stationops/internal/repository"
	ws "stationops/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs
type CreateSalesReportRequest struct {
	StationID    string          `json:"station_id" binding:"required,uuid"`
	ReportDate   string          `json:"report_date" binding:"required"` // YYYY-MM-DD
	FuelSales    decimal.Decimal `json:"fuel_sales"`
	StoreSales   decimal.Decimal `json:"store_sales"`
	LotterySales decimal.Decimal `json:"lottery_sales"`
	Notes        string          `json:"notes"`
}

type SalesReportResponse struct {
	ID           string          `json:"id"`
	StationID    string          `json:"station_id"`
	StationCode  string          `json:"station_code,omitempty"`
	ReportDate   string          `json:"report_date"`
	FuelSales    decimal.Decimal `json:"fuel_sales"`
	StoreSales   decimal.Decimal `json:"store_sales"`
	LotterySales decimal.Decimal `json:"lottery_sales"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	Notes        string          `json:"notes,omitempty"`
	CreatedBy    string          `json:"created_by,omitempty"`
}

type SalesSummaryResponse struct {
	From         string                         `json:"from"`
	To           string                         `json:"to"`
	FuelSales    float64                        `json:"fuel_sales"`
	StoreSales   float64                        `json:"store_sales"`
	LotterySales float64                        `json:"lottery_sales"`
	TotalSales   float64                        `json:"total_sales"`
	ByStation    []repository.StationSalesTotal `json:"by_station"`
}

type SalesService interface {
	CreateReport(ctx context.Context, actorID string, req CreateSalesReportRequest) (*SalesReportResponse, error)
	ListReports(ctx context.Context, filter repository.SalesFilter, page, limit int) ([]SalesReportResponse, int64, error)
	Summary(ctx context.Context, from, to time.Time) (*SalesSummaryResponse, error)
}

type salesService struct {
	salesRepo   repository.SalesRepository
	stationRepo repository.StationRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewSalesService(
	salesRepo repository.SalesRepository,
	stationRepo repository.StationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) SalesService {
	return &salesService{
		salesRepo:   salesRepo,
		stationRepo: stationRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

func toSalesReportResponse(r *model.SalesReport) *SalesReportResponse {
	res := &SalesReportResponse{
		ID:           r.ID.String(),
		StationID:    r.StationID.String(),
		ReportDate:   r.ReportDate.Format("2006-01-02"),
		FuelSales:    r.FuelSales,
		StoreSales:   r.StoreSales,
		LotterySales: r.LotterySales,
		TotalSales:   r.TotalSales,
		Notes:        r.Notes,
	}
	if r.Station.Code != "" {
		res.StationCode = r.Station.Code
	}
	if r.Creator != nil {
		res.CreatedBy = r.Creator.Username
	}
	return res
}

func (s *salesService) CreateReport(ctx context.Context, actorID string, req CreateSalesReportRequest) (*SalesReportResponse, error) {
	station, err := s.stationRepo.GetByID(ctx, req.StationID)
	if err != nil {
		return nil, errors.New("station not found")
	}

	reportDate, err := time.Parse("2006-01-02", req.ReportDate)
	if err != nil {
		return nil, fmt.Errorf("invalid report_date %q: expected YYYY-MM-DD", req.ReportDate)
	}

	if req.FuelSales.IsNegative() || req.StoreSales.IsNegative() || req.LotterySales.IsNegative() {
		return nil, errors.New("sales figures cannot be negative")
	}

	if _, err := s.salesRepo.GetByStationAndDate(ctx, req.StationID, reportDate); err == nil {
		return nil, fmt.Errorf("a report for %s on %s already exists", station.Code, req.ReportDate)
	}

	report := &model.SalesReport{
		StationID:    station.ID,
		ReportDate:   reportDate,
		FuelSales:    req.FuelSales,
		StoreSales:   req.StoreSales,
		LotterySales: req.LotterySales,
		TotalSales:   req.FuelSales.Add(req.StoreSales).Add(req.LotterySales),
		Notes:        req.Notes,
	}
	if parsed, err := uuid.Parse(actorID); err == nil {
		report.CreatedBy = &parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.salesRepo.Create(txCtx, report); err != nil {
			return fmt.Errorf("failed to create sales report: %w", err)
		}
		return s.audit(txCtx, actorID, model.ActionCreateSalesReport, report.ID.String(),
			station.Code+" "+req.ReportDate, req)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast("sales_report.created", map[string]interface{}{
		"report_id":    report.ID.String(),
		"station_code": station.Code,
		"report_date":  req.ReportDate,
		"total_sales":  report.TotalSales,
	})

	report.Station = *station
	return toSalesReportResponse(report), nil
}

func (s *salesService) ListReports(ctx context.Context, filter repository.SalesFilter, page, limit int) ([]SalesReportResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	reports, total, err := s.salesRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]SalesReportResponse, 0, len(reports))
	for i := range reports {
		res = append(res, *toSalesReportResponse(&reports[i]))
	}

	return res, total, nil
}

func (s *salesService) Summary(ctx context.Context, from, to time.Time) (*SalesSummaryResponse, error) {
	totals, err := s.salesRepo.SummaryByStation(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	summary := &SalesSummaryResponse{
		From:      from.Format("2006-01-02"),
		To:        to.Format("2006-01-02"),
		ByStation: totals,
	}
	for _, t := range totals {
		summary.FuelSales += t.FuelSales
		summary.StoreSales += t.StoreSales
		summary.LotterySales += t.LotterySales
		summary.TotalSales += t.TotalSales
	}
	return summary, nil
}

func (s *salesService) broadcast(event string, data map[string]interface{}) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(TankEvent{Event: event, Data: data})
	if err != nil {
		return
	}
	s.hub.Broadcast <- payload
}

func (s *salesService) audit(ctx context.Context, actorID, action, entityID, entityName string, payload interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		uid = &parsed
	}

	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
