package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"stationops/internal/model"
	"stationops/internal/permission"
	"stationops/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// ErrValidationFailed wraps rule violations so handlers can return them as a
// field-tagged list instead of a single message.
type ErrValidationFailed struct {
	Violations []ValidationError
}

func (e *ErrValidationFailed) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

// DTOs for request validation
type CreateUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"required"`
	Station    string `json:"station" binding:"required"`
	EmployeeID string `json:"employee_id"`
}

type UpdateUserRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	Station    string `json:"station"`
	EmployeeID string `json:"employee_id"`
	IsActive   *bool  `json:"is_active"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse returns a user without exposing sensitive fields
type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	Station    string    `json:"station"`
	EmployeeID string    `json:"employee_id"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  string    `json:"created_at"`
	UpdatedAt  string    `json:"updated_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateUser(ctx context.Context, actorID string, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, actorID, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, actorID, id string) error
	EnsureAdmin(ctx context.Context, email, password string) error
}

type userService struct {
	repo      repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	validator *UserValidator
	jwtSecret []byte
}

// NewUserService returns a new instance of UserService
func NewUserService(
	repo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	validator *UserValidator,
	jwtSecret []byte,
) UserService {
	return &userService{
		repo:      repo,
		tokenRepo: tokenRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		validator: validator,
		jwtSecret: jwtSecret,
	}
}

func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Phone:      user.Phone,
		Role:       user.Role,
		Station:    user.Station,
		EmployeeID: user.EmployeeID,
		IsActive:   user.IsActive,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  user.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *userService) CreateUser(ctx context.Context, actorID string, req CreateUserRequest) (*UserResponse, error) {
	if !permission.IsKnownRole(req.Role) || req.Role == permission.RoleCustom {
		return nil, fmt.Errorf("invalid role %q: must be one of %s",
			req.Role, strings.Join(permission.Roles, ", "))
	}

	violations, err := s.validator.Validate(ctx, ValidateUserInput{
		Email:    req.Email,
		Role:     req.Role,
		Station:  req.Station,
		IsActive: true,
	}, false)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, &ErrValidationFailed{Violations: violations}
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, errors.New("username already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Username:   req.Username,
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:      req.Phone,
		Password:   string(hashedPassword),
		Role:       req.Role,
		Station:    req.Station,
		EmployeeID: req.EmployeeID,
		IsActive:   true,
		// DetailedPermissions stays empty: reads fall back to the role
		// template until the matrix is edited.
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionCreateUser, user.ID.String(), user.Username, req)
	})
	if err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if !user.IsActive {
		return nil, errors.New("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	return s.issueTokens(ctx, user)
}

func (s *userService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	if req.RefreshToken == "" {
		return nil, errors.New("refresh token is required")
	}

	stored, err := s.tokenRepo.GetByToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.tokenRepo.Delete(ctx, req.RefreshToken)
		return nil, errors.New("refresh token expired")
	}
	if !stored.User.IsActive {
		return nil, errors.New("account is deactivated")
	}

	// Rotate: the old token is single-use.
	if err := s.tokenRepo.Delete(ctx, req.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.issueTokens(ctx, &stored.User)
}

func (s *userService) issueTokens(ctx context.Context, user *model.User) (*TokenResponse, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     user.ID.String(),
		"role":    user.Role,
		"station": user.Station,
		"iat":     now.Unix(),
		"exp":     now.Add(accessTokenTTL).Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, errors.New("failed to generate refresh token")
	}
	refresh := hex.EncodeToString(raw)

	if err := s.tokenRepo.Create(ctx, &model.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: now.Add(refreshTokenTTL),
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenResponse{Token: tokenString, RefreshToken: refresh}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("user not found")
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	var responses []UserResponse
	for _, u := range users {
		responses = append(responses, *mapToResponse(&u))
	}

	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, actorID, id string, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("user not found")
	}

	// Build the prospective state before running the rules.
	next := *user
	if req.Role != "" {
		if !permission.IsKnownRole(req.Role) || req.Role == permission.RoleCustom {
			return nil, fmt.Errorf("invalid role %q: must be one of %s",
				req.Role, strings.Join(permission.Roles, ", "))
		}
		next.Role = req.Role
	}
	if req.Email != "" {
		next.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Station != "" {
		next.Station = req.Station
	}
	if req.IsActive != nil {
		next.IsActive = *req.IsActive
	}

	violations, err := s.validator.Validate(ctx, ValidateUserInput{
		ID:       id,
		Email:    next.Email,
		Role:     next.Role,
		Station:  next.Station,
		IsActive: next.IsActive,
	}, true)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, &ErrValidationFailed{Violations: violations}
	}

	if req.Username != "" && req.Username != user.Username {
		if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
			return nil, errors.New("username already exists")
		}
		next.Username = req.Username
	}
	if req.Phone != "" {
		next.Phone = req.Phone
	}
	if req.EmployeeID != "" {
		next.EmployeeID = req.EmployeeID
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, &next); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionUpdateUser, next.ID.String(), next.Username, req)
	})
	if err != nil {
		return nil, err
	}

	return mapToResponse(&next), nil
}

func (s *userService) DeleteUser(ctx context.Context, actorID, id string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return errors.New("user not found")
	}

	violations, err := s.validator.ValidateDelete(ctx, id)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return &ErrValidationFailed{Violations: violations}
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return s.writeAudit(txCtx, actorID, model.ActionDeleteUser, id, user.Username, nil)
	})
}

// EnsureAdmin seeds the initial Administrator account on an empty install.
// It is a no-op when the email already exists.
func (s *userService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	return s.repo.Create(ctx, &model.User{
		Username: "admin",
		Email:    email,
		Password: string(hashed),
		Role:     permission.RoleAdministrator,
		Station:  model.StationAll,
		IsActive: true,
	})
}

func (s *userService) writeAudit(ctx context.Context, actorID, action, entityID, entityName string, payload interface{}) error {
	var uid *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		uid = &parsed
	}

	details := "{}"
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			details = string(data)
		}
	}

	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    details,
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
