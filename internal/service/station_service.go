package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stationops/internal/model"
	"stationops/internal/repository"

	"github.com/google/uuid"
)

type CreateStationRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
}

type UpdateStationRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	IsActive *bool  `json:"is_active"`
}

type StationResponse struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	IsActive bool   `json:"is_active"`
}

type StationService interface {
	ListStations(ctx context.Context) ([]StationResponse, error)
	CreateStation(ctx context.Context, actorID string, req CreateStationRequest) (*StationResponse, error)
	UpdateStation(ctx context.Context, actorID, id string, req UpdateStationRequest) (*StationResponse, error)
}

type stationService struct {
	repo      repository.StationRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewStationService(
	repo repository.StationRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) StationService {
	return &stationService{repo: repo, auditRepo: auditRepo, txManager: txManager}
}

func toStationResponse(s *model.Station) *StationResponse {
	return &StationResponse{
		ID:       s.ID.String(),
		Code:     s.Code,
		Name:     s.Name,
		Address:  s.Address,
		IsActive: s.IsActive,
	}
}

func (s *stationService) ListStations(ctx context.Context) ([]StationResponse, error) {
	stations, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stations: %w", err)
	}

	res := make([]StationResponse, 0, len(stations))
	for i := range stations {
		res = append(res, *toStationResponse(&stations[i]))
	}
	return res, nil
}

func (s *stationService) CreateStation(ctx context.Context, actorID string, req CreateStationRequest) (*StationResponse, error) {
	if req.Code == model.StationAll {
		return nil, errors.New("station code ALL is reserved")
	}
	if _, err := s.repo.GetByCode(ctx, req.Code); err == nil {
		return nil, fmt.Errorf("station code %q already exists", req.Code)
	}

	station := &model.Station{
		Code:     req.Code,
		Name:     req.Name,
		Address:  req.Address,
		IsActive: true,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, station); err != nil {
			return fmt.Errorf("failed to create station: %w", err)
		}
		return s.audit(txCtx, actorID, model.ActionCreateStation, station, req)
	})
	if err != nil {
		return nil, err
	}

	return toStationResponse(station), nil
}

func (s *stationService) UpdateStation(ctx context.Context, actorID, id string, req UpdateStationRequest) (*StationResponse, error) {
	station, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("station not found")
	}

	if req.Name != "" {
		station.Name = req.Name
	}
	if req.Address != "" {
		station.Address = req.Address
	}
	if req.IsActive != nil {
		station.IsActive = *req.IsActive
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, station); err != nil {
			return fmt.Errorf("failed to update station: %w", err)
		}
		return s.audit(txCtx, actorID, model.ActionUpdateStation, station, req)
	})
	if err != nil {
		return nil, err
	}

	return toStationResponse(station), nil
}

func (s *stationService) audit(ctx context.Context, actorID, action string, station *model.Station, payload interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		uid = &parsed
	}

	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   station.ID.String(),
		EntityName: station.Code,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
