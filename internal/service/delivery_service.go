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
type CreateDeliveryRequest struct {
	StationID        string          `json:"station_id" binding:"required,uuid"`
	TankID           string          `json:"tank_id" binding:"omitempty,uuid"`
	FuelType         string          `json:"fuel_type" binding:"required,oneof=REGULAR MIDGRADE PREMIUM DIESEL"`
	GallonsDelivered decimal.Decimal `json:"gallons_delivered" binding:"required"`
	Supplier         string          `json:"supplier" binding:"required"`
	BOLNumber        string          `json:"bol_number" binding:"required"`
	DeliveryDate     *time.Time      `json:"delivery_date"`
	Note             string          `json:"note"`
}

type DeliveryResponse struct {
	ID               string          `json:"id"`
	StationID        string          `json:"station_id"`
	StationCode      string          `json:"station_code,omitempty"`
	TankID           string          `json:"tank_id,omitempty"`
	TankLabel        string          `json:"tank_label,omitempty"`
	FuelType         string          `json:"fuel_type"`
	GallonsDelivered decimal.Decimal `json:"gallons_delivered"`
	Supplier         string          `json:"supplier"`
	BOLNumber        string          `json:"bol_number"`
	DeliveryDate     string          `json:"delivery_date"`
	Note             string          `json:"note,omitempty"`
	CreatedBy        string          `json:"created_by,omitempty"`
}

type DeliveryService interface {
	CreateDelivery(ctx context.Context, actorID string, req CreateDeliveryRequest) (*DeliveryResponse, error)
	ListDeliveries(ctx context.Context, filter repository.DeliveryFilter, page, limit int) ([]DeliveryResponse, int64, error)
}

type deliveryService struct {
	deliveryRepo repository.DeliveryRepository
	tankRepo     repository.TankRepository
	stationRepo  repository.StationRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	emails       EmailService
	hub          *ws.Hub

	confirmationRecipient string
}

func NewDeliveryService(
	deliveryRepo repository.DeliveryRepository,
	tankRepo repository.TankRepository,
	stationRepo repository.StationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	emails EmailService,
	hub *ws.Hub,
	confirmationRecipient string,
) DeliveryService {
	return &deliveryService{
		deliveryRepo:          deliveryRepo,
		tankRepo:              tankRepo,
		stationRepo:           stationRepo,
		auditRepo:             auditRepo,
		txManager:             txManager,
		emails:                emails,
		hub:                   hub,
		confirmationRecipient: confirmationRecipient,
	}
}

func toDeliveryResponse(d *model.FuelDelivery) *DeliveryResponse {
	res := &DeliveryResponse{
		ID:               d.ID.String(),
		StationID:        d.StationID.String(),
		FuelType:         d.FuelType,
		GallonsDelivered: d.GallonsDelivered,
		Supplier:         d.Supplier,
		BOLNumber:        d.BOLNumber,
		DeliveryDate:     d.DeliveryDate.Format("2006-01-02"),
		Note:             d.Note,
	}
	if d.Station.Code != "" {
		res.StationCode = d.Station.Code
	}
	if d.TankID != nil {
		res.TankID = d.TankID.String()
	}
	if d.Tank != nil {
		res.TankLabel = d.Tank.Label
	}
	if d.Creator != nil {
		res.CreatedBy = d.Creator.Username
	}
	return res
}

// CreateDelivery records a tanker drop. When a target tank is given the
// delivered gallons are added to its current volume in the same transaction
// as the delivery row and the audit entry.
func (s *deliveryService) CreateDelivery(ctx context.Context, actorID string, req CreateDeliveryRequest) (*DeliveryResponse, error) {
	station, err := s.stationRepo.GetByID(ctx, req.StationID)
	if err != nil {
		return nil, errors.New("station not found")
	}
	if req.GallonsDelivered.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("gallons delivered must be positive")
	}
	if _, err := s.deliveryRepo.GetByBOL(ctx, req.BOLNumber); err == nil {
		return nil, fmt.Errorf("a delivery with BOL number %q already exists", req.BOLNumber)
	}

	var tank *model.Tank
	if req.TankID != "" {
		tank, err = s.tankRepo.GetByID(ctx, req.TankID)
		if err != nil {
			return nil, errors.New("tank not found")
		}
		if tank.StationID != station.ID {
			return nil, errors.New("tank does not belong to the given station")
		}
		if tank.FuelType != req.FuelType {
			return nil, fmt.Errorf("tank holds %s, delivery is %s", tank.FuelType, req.FuelType)
		}
	}

	deliveryDate := time.Now()
	if req.DeliveryDate != nil {
		deliveryDate = *req.DeliveryDate
	}

	delivery := &model.FuelDelivery{
		StationID:        station.ID,
		FuelType:         req.FuelType,
		GallonsDelivered: req.GallonsDelivered,
		Supplier:         req.Supplier,
		BOLNumber:        req.BOLNumber,
		DeliveryDate:     deliveryDate,
		Note:             req.Note,
	}
	if tank != nil {
		delivery.TankID = &tank.ID
	}
	if parsed, err := uuid.Parse(actorID); err == nil {
		delivery.CreatedBy = &parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.deliveryRepo.Create(txCtx, delivery); err != nil {
			return fmt.Errorf("failed to create delivery: %w", err)
		}
		if tank != nil {
			if err := s.tankRepo.AddVolume(txCtx, tank.ID.String(), req.GallonsDelivered); err != nil {
				return fmt.Errorf("failed to update tank volume: %w", err)
			}
		}
		return s.audit(txCtx, actorID, model.ActionCreateDelivery, delivery.ID.String(),
			station.Code+" "+req.BOLNumber, req)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast("delivery.created", map[string]interface{}{
		"delivery_id":  delivery.ID.String(),
		"station_code": station.Code,
		"fuel_type":    delivery.FuelType,
		"gallons":      delivery.GallonsDelivered,
		"supplier":     delivery.Supplier,
	})

	subject := fmt.Sprintf("Delivery confirmed: %s gal %s at %s (BOL %s)",
		delivery.GallonsDelivered, delivery.FuelType, station.Code, delivery.BOLNumber)
	s.emails.Record(ctx, model.EmailCategoryDeliveryConfirmation, s.confirmationRecipient, subject, nil)

	delivery.Station = *station
	delivery.Tank = tank
	return toDeliveryResponse(delivery), nil
}

func (s *deliveryService) ListDeliveries(ctx context.Context, filter repository.DeliveryFilter, page, limit int) ([]DeliveryResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	deliveries, total, err := s.deliveryRepo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]DeliveryResponse, 0, len(deliveries))
	for i := range deliveries {
		res = append(res, *toDeliveryResponse(&deliveries[i]))
	}

	return res, total, nil
}

func (s *deliveryService) broadcast(event string, data map[string]interface{}) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(TankEvent{Event: event, Data: data})
	if err != nil {
		return
	}
	s.hub.Broadcast <- payload
}

func (s *deliveryService) audit(ctx context.Context, actorID, action, entityID, entityName string, payload interface{}) error {
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
