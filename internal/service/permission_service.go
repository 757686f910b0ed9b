package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stationops/internal/model"
	"stationops/internal/permission"
	"stationops/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrPermissionVersionConflict surfaces a lost CAS race to the handler layer
// (HTTP 409). The client reloads and reapplies its edit.
var ErrPermissionVersionConflict = errors.New("permissions changed since they were loaded")

// Permission source markers for PermissionLoad.Source.
const (
	PermissionSourceStored      = "stored"
	PermissionSourceRoleDefault = "role_default"
)

// PermissionLoad is what the matrix editor works from: the effective record,
// the active template marker, where the record came from and the version to
// echo back on save.
type PermissionLoad struct {
	UserID   string            `json:"user_id"`
	Role     string            `json:"role"`
	Record   permission.Record `json:"record"`
	Template string            `json:"template"`
	Source   string            `json:"source"`
	Version  int               `json:"version"`
}

// PermissionEditRequest is one server-side editor operation.
type PermissionEditRequest struct {
	Op         string `json:"op" binding:"required,oneof=set bulk_page bulk_group"`
	Page       string `json:"page"`
	Capability string `json:"capability"`
	Value      bool   `json:"value"`
	Group      string `json:"group"`
	Action     string `json:"action"`
	Version    int    `json:"version"`
}

// SavePermissionsRequest carries a full record plus the version it was
// loaded at.
type SavePermissionsRequest struct {
	Record  permission.Record `json:"record" binding:"required"`
	Version int               `json:"version"`
}

// PermissionService loads and saves per-user permission records. Reads
// degrade to the role template on empty or corrupted storage; writes are
// single-row conditional updates guarded by the version column.
type PermissionService interface {
	Load(ctx context.Context, userID string) (*PermissionLoad, error)
	Save(ctx context.Context, actorID, userID string, rec permission.Record, expectedVersion int) (*PermissionLoad, error)
	ApplyEdit(ctx context.Context, actorID, userID string, req PermissionEditRequest) (*PermissionLoad, error)
	ResetToTemplate(ctx context.Context, actorID, userID string) (*PermissionLoad, error)
}

type permissionService struct {
	userRepo  repository.UserRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewPermissionService(
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) PermissionService {
	return &permissionService{
		userRepo:  userRepo,
		auditRepo: auditRepo,
		txManager: txManager,
	}
}

func (s *permissionService) Load(ctx context.Context, userID string) (*PermissionLoad, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found")
	}
	return buildLoad(user), nil
}

// buildLoad decodes the stored blob, degrading silently to the role template.
// Corruption is logged for operators but never shown to the user.
func buildLoad(user *model.User) *PermissionLoad {
	res := permission.Decode(user.DetailedPermissions, user.Role)

	load := &PermissionLoad{
		UserID:  user.ID.String(),
		Role:    user.Role,
		Record:  res.Record,
		Version: user.PermissionsVersion,
	}
	switch res.Status {
	case permission.DecodeOK:
		load.Source = PermissionSourceStored
		load.Template = permission.DetectTemplate(res.Record)
	case permission.DecodeMalformed:
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,
			"raw_len": len(res.Raw),
		}).Warn("stored permissions are malformed, serving role template")
		fallthrough
	default:
		load.Source = PermissionSourceRoleDefault
		load.Template = user.Role
	}
	return load
}

func (s *permissionService) Save(ctx context.Context, actorID, userID string, rec permission.Record, expectedVersion int) (*PermissionLoad, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	raw, err := permission.Encode(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize permissions: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.UpdatePermissions(txCtx, userID, raw, expectedVersion); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return ErrPermissionVersionConflict
			}
			return fmt.Errorf("failed to save permissions: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionSavePermissions, user, map[string]interface{}{
			"template": permission.DetectTemplate(rec),
			"version":  expectedVersion + 1,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.Load(ctx, userID)
}

// ApplyEdit loads the current record, applies one editor operation and saves
// the result under the version the client loaded at, so a concurrent editor
// loses the race loudly instead of being silently overwritten.
func (s *permissionService) ApplyEdit(ctx context.Context, actorID, userID string, req PermissionEditRequest) (*PermissionLoad, error) {
	load, err := s.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	editor := permission.NewEditor(load.Template, load.Record)
	switch req.Op {
	case "set":
		err = editor.SetCapability(req.Page, permission.Capability(req.Capability), req.Value)
	case "bulk_page":
		err = editor.ApplyBulkToPage(req.Page, permission.BulkAction(req.Action))
	case "bulk_group":
		err = editor.ApplyBulkToGroup(req.Group, permission.BulkAction(req.Action))
	default:
		err = fmt.Errorf("unknown edit op %q", req.Op)
	}
	if err != nil {
		return nil, err
	}

	return s.Save(ctx, actorID, userID, editor.Record, req.Version)
}

// ResetToTemplate discards the stored record and persists the user's current
// role template. The reset is still a CAS save against the row's current
// version, so it cannot clobber a concurrent manual edit.
func (s *permissionService) ResetToTemplate(ctx context.Context, actorID, userID string) (*PermissionLoad, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.New("user not found")
	}

	rec := permission.ResolveTemplate(user.Role)
	raw, err := permission.Encode(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize permissions: %w", err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.UpdatePermissions(txCtx, userID, raw, user.PermissionsVersion); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				return ErrPermissionVersionConflict
			}
			return fmt.Errorf("failed to reset permissions: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionResetPermissions, user, map[string]interface{}{
			"template": user.Role,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.Load(ctx, userID)
}

func (s *permissionService) writeAudit(ctx context.Context, actorID, action string, target *model.User, details map[string]interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		uid = &parsed
	}

	payload, _ := json.Marshal(details)
	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   target.ID.String(),
		EntityName: target.Username,
		Details:    string(payload),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
