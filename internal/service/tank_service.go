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
type CreateTankRequest struct {
	StationID       string          `json:"station_id" binding:"required,uuid"`
	Label           string          `json:"label" binding:"required"`
	FuelType        string          `json:"fuel_type" binding:"required,oneof=REGULAR MIDGRADE PREMIUM DIESEL"`
	CapacityGallons decimal.Decimal `json:"capacity_gallons" binding:"required"`
	CurrentVolume   decimal.Decimal `json:"current_volume"`
}

type RecordReadingRequest struct {
	VolumeGallons decimal.Decimal `json:"volume_gallons" binding:"required"`
	RecordedAt    *time.Time      `json:"recorded_at"`
}

type TankResponse struct {
	ID              string          `json:"id"`
	StationID       string          `json:"station_id"`
	StationCode     string          `json:"station_code,omitempty"`
	Label           string          `json:"label"`
	FuelType        string          `json:"fuel_type"`
	CapacityGallons decimal.Decimal `json:"capacity_gallons"`
	CurrentVolume   decimal.Decimal `json:"current_volume"`
	FillPercent     string          `json:"fill_percent"`
}

type TankReadingResponse struct {
	ID            string          `json:"id"`
	TankID        string          `json:"tank_id"`
	VolumeGallons decimal.Decimal `json:"volume_gallons"`
	RecordedBy    string          `json:"recorded_by,omitempty"`
	RecordedAt    string          `json:"recorded_at"`
}

// TankEvent is the realtime payload pushed to connected admin consoles.
type TankEvent struct {
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

type TankService interface {
	ListTanks(ctx context.Context, stationID string) ([]TankResponse, error)
	CreateTank(ctx context.Context, actorID string, req CreateTankRequest) (*TankResponse, error)
	RecordReading(ctx context.Context, actorID, tankID string, req RecordReadingRequest) (*TankResponse, error)
	ListReadings(ctx context.Context, tankID string, page, limit int) ([]TankReadingResponse, int64, error)
}

type tankService struct {
	tankRepo    repository.TankRepository
	stationRepo repository.StationRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	emails      EmailService
	hub         *ws.Hub

	alertRecipient string
	// lowLevelPercent is the fill percentage under which a reading raises a
	// low-tank alert.
	lowLevelPercent decimal.Decimal
}

func NewTankService(
	tankRepo repository.TankRepository,
	stationRepo repository.StationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	emails EmailService,
	hub *ws.Hub,
	alertRecipient string,
	lowLevelPercent int,
) TankService {
	return &tankService{
		tankRepo:        tankRepo,
		stationRepo:     stationRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		emails:          emails,
		hub:             hub,
		alertRecipient:  alertRecipient,
		lowLevelPercent: decimal.NewFromInt(int64(lowLevelPercent)),
	}
}

func toTankResponse(t *model.Tank) *TankResponse {
	res := &TankResponse{
		ID:              t.ID.String(),
		StationID:       t.StationID.String(),
		Label:           t.Label,
		FuelType:        t.FuelType,
		CapacityGallons: t.CapacityGallons,
		CurrentVolume:   t.CurrentVolume,
		FillPercent:     fillPercent(t.CurrentVolume, t.CapacityGallons).StringFixed(1),
	}
	if t.Station.Code != "" {
		res.StationCode = t.Station.Code
	}
	return res
}

func fillPercent(volume, capacity decimal.Decimal) decimal.Decimal {
	if capacity.IsZero() {
		return decimal.Zero
	}
	return volume.Div(capacity).Mul(decimal.NewFromInt(100))
}

func (s *tankService) ListTanks(ctx context.Context, stationID string) ([]TankResponse, error) {
	var (
		tanks []model.Tank
		err   error
	)
	if stationID != "" {
		tanks, err = s.tankRepo.ListByStation(ctx, stationID)
	} else {
		tanks, err = s.tankRepo.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tanks: %w", err)
	}

	res := make([]TankResponse, 0, len(tanks))
	for i := range tanks {
		res = append(res, *toTankResponse(&tanks[i]))
	}
	return res, nil
}

func (s *tankService) CreateTank(ctx context.Context, actorID string, req CreateTankRequest) (*TankResponse, error) {
	station, err := s.stationRepo.GetByID(ctx, req.StationID)
	if err != nil {
		return nil, errors.New("station not found")
	}
	if req.CapacityGallons.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("capacity must be positive")
	}
	if req.CurrentVolume.GreaterThan(req.CapacityGallons) {
		return nil, errors.New("current volume exceeds capacity")
	}

	tank := &model.Tank{
		StationID:       station.ID,
		Label:           req.Label,
		FuelType:        req.FuelType,
		CapacityGallons: req.CapacityGallons,
		CurrentVolume:   req.CurrentVolume,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tankRepo.Create(txCtx, tank); err != nil {
			return fmt.Errorf("failed to create tank: %w", err)
		}
		return s.audit(txCtx, actorID, model.ActionCreateTank, tank.ID.String(),
			station.Code+" "+tank.Label, req)
	})
	if err != nil {
		return nil, err
	}

	tank.Station = *station
	return toTankResponse(tank), nil
}

func (s *tankService) RecordReading(ctx context.Context, actorID, tankID string, req RecordReadingRequest) (*TankResponse, error) {
	tank, err := s.tankRepo.GetByID(ctx, tankID)
	if err != nil {
		return nil, errors.New("tank not found")
	}
	if req.VolumeGallons.IsNegative() {
		return nil, errors.New("volume cannot be negative")
	}
	if req.VolumeGallons.GreaterThan(tank.CapacityGallons) {
		return nil, fmt.Errorf("volume exceeds tank capacity of %s gallons", tank.CapacityGallons)
	}

	recordedAt := time.Now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	reading := &model.TankReading{
		TankID:        tank.ID,
		VolumeGallons: req.VolumeGallons,
		RecordedAt:    recordedAt,
	}
	if parsed, err := uuid.Parse(actorID); err == nil {
		reading.RecordedBy = &parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tankRepo.CreateReading(txCtx, reading); err != nil {
			return fmt.Errorf("failed to record reading: %w", err)
		}
		if err := s.tankRepo.UpdateVolume(txCtx, tankID, req.VolumeGallons); err != nil {
			return fmt.Errorf("failed to update tank volume: %w", err)
		}
		return s.audit(txCtx, actorID, model.ActionRecordTankReading, tank.ID.String(),
			tank.Station.Code+" "+tank.Label, req)
	})
	if err != nil {
		return nil, err
	}

	tank.CurrentVolume = req.VolumeGallons
	percent := fillPercent(tank.CurrentVolume, tank.CapacityGallons)

	s.broadcast("tank.reading", map[string]interface{}{
		"tank_id":      tank.ID.String(),
		"station_code": tank.Station.Code,
		"label":        tank.Label,
		"fuel_type":    tank.FuelType,
		"volume":       tank.CurrentVolume,
		"fill_percent": percent.StringFixed(1),
	})

	if percent.LessThan(s.lowLevelPercent) {
		subject := fmt.Sprintf("Low tank alert: %s %s at %s%% (%s gal)",
			tank.Station.Code, tank.Label, percent.StringFixed(1), tank.CurrentVolume)
		s.emails.Record(ctx, model.EmailCategoryLowTankAlert, s.alertRecipient, subject, nil)
		s.broadcast("tank.low_level", map[string]interface{}{
			"tank_id":      tank.ID.String(),
			"station_code": tank.Station.Code,
			"label":        tank.Label,
			"fill_percent": percent.StringFixed(1),
		})
	}

	return toTankResponse(tank), nil
}

func (s *tankService) ListReadings(ctx context.Context, tankID string, page, limit int) ([]TankReadingResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	readings, total, err := s.tankRepo.ListReadings(ctx, tankID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]TankReadingResponse, 0, len(readings))
	for _, r := range readings {
		item := TankReadingResponse{
			ID:            r.ID.String(),
			TankID:        r.TankID.String(),
			VolumeGallons: r.VolumeGallons,
			RecordedAt:    r.RecordedAt.Format(time.RFC3339),
		}
		if r.Recorder != nil {
			item.RecordedBy = r.Recorder.Username
		}
		res = append(res, item)
	}

	return res, total, nil
}

func (s *tankService) broadcast(event string, data map[string]interface{}) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(TankEvent{Event: event, Data: data})
	if err != nil {
		return
	}
	s.hub.Broadcast <- payload
}

func (s *tankService) audit(ctx context.Context, actorID, action, entityID, entityName string, payload interface{}) error {
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
