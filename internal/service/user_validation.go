package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stationops/internal/model"
	"stationops/internal/permission"
	"stationops/internal/repository"

	"gorm.io/gorm"
)

// Validation error codes. Handlers echo these verbatim so the client can tag
// fields in the form.
const (
	CodeEmailConflict   = "email_conflict"
	CodeRoleConflict    = "role_conflict"
	CodeAdminProtection = "admin_protection"
	CodeSoleAdmin       = "sole_admin"
)

// Role conflict types returned by CheckRoleConflict.
const (
	ConflictMaxAdminLimit     = "MAX_ADMIN_LIMIT"
	ConflictGlobalAdminExists = "GLOBAL_ADMIN_EXISTS"
	ConflictRolePair          = "ROLE_PAIR_CONFLICT"
)

// ValidationConfig carries the business constants the rules run against.
// Built from env config at startup; tests inject their own values.
type ValidationConfig struct {
	// ProtectedAdminEmail is the one account that can never be demoted,
	// re-addressed, deactivated or deleted.
	ProtectedAdminEmail string
	// MaxAdminsPerStation caps active Administrator profiles on one station.
	MaxAdminsPerStation int
	// ConflictingRolePairs lists role pairs one identity cannot hold at the
	// same station.
	ConflictingRolePairs [][2]string
}

// DefaultValidationConfig returns the rule constants used when env config
// does not override them.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		ProtectedAdminEmail: "admin@stationops.local",
		MaxAdminsPerStation: 2,
		ConflictingRolePairs: [][2]string{
			{permission.RoleAdministrator, permission.RoleEmployee},
			{permission.RoleManagement, permission.RoleEmployee},
		},
	}
}

// ValidationError is one advisory rule failure. The write is not attempted
// while any of these are present.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoleConflict is the outcome of a role/station combination check.
type RoleConflict struct {
	HasConflict  bool   `json:"has_conflict"`
	ConflictType string `json:"conflict_type,omitempty"`
	Message      string `json:"message,omitempty"`
}

// ValidateUserInput is the prospective state of a user row, before write.
// ID is empty on create and set on update.
type ValidateUserInput struct {
	ID       string
	Email    string
	Role     string
	Station  string
	IsActive bool
}

// UserValidator runs the pre-write rules: email uniqueness, role conflicts,
// the protected-admin invariant and the sole-admin guard. Checks are
// read-then-act with no locking; two concurrent writers can still race past
// them, which is why the caps are also advisory rather than hard guarantees.
type UserValidator struct {
	repo repository.UserRepository
	cfg  ValidationConfig
}

func NewUserValidator(repo repository.UserRepository, cfg ValidationConfig) *UserValidator {
	return &UserValidator{repo: repo, cfg: cfg}
}

// Validate returns every rule violation for the prospective write. A non-nil
// error means a rule could not be evaluated (query failure), not a violation.
func (v *UserValidator) Validate(ctx context.Context, input ValidateUserInput, isUpdate bool) ([]ValidationError, error) {
	var violations []ValidationError

	email := strings.ToLower(strings.TrimSpace(input.Email))
	input.Email = email

	if verr, err := v.checkEmailUnique(ctx, input); err != nil {
		return nil, err
	} else if verr != nil {
		violations = append(violations, *verr)
	}

	if isUpdate {
		current, err := v.repo.GetByID(ctx, input.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user for validation: %w", err)
		}

		violations = append(violations, v.checkProtectedAdmin(current, input)...)

		if verr, err := v.checkSoleAdmin(ctx, current, input); err != nil {
			return nil, err
		} else if verr != nil {
			violations = append(violations, *verr)
		}
	}

	conflict, err := v.CheckRoleConflict(ctx, input.Role, input.Station, input.ID, email)
	if err != nil {
		return nil, err
	}
	if conflict.HasConflict {
		violations = append(violations, ValidationError{
			Field:   "role",
			Code:    CodeRoleConflict,
			Message: conflict.Message,
		})
	}

	return violations, nil
}

// ValidateDelete guards deletion: the protected admin is non-deletable and
// the last active Administrator cannot be removed.
func (v *UserValidator) ValidateDelete(ctx context.Context, id string) ([]ValidationError, error) {
	current, err := v.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for validation: %w", err)
	}

	var violations []ValidationError
	if strings.EqualFold(current.Email, v.cfg.ProtectedAdminEmail) {
		violations = append(violations, ValidationError{
			Field:   "id",
			Code:    CodeAdminProtection,
			Message: "the protected administrator account cannot be deleted",
		})
	}

	if current.Role == permission.RoleAdministrator && current.IsActive {
		remaining, err := v.repo.CountActiveByRole(ctx, permission.RoleAdministrator, id)
		if err != nil {
			return nil, err
		}
		if remaining == 0 {
			violations = append(violations, ValidationError{
				Field:   "id",
				Code:    CodeSoleAdmin,
				Message: "deleting this user would leave no active administrator",
			})
		}
	}

	return violations, nil
}

// CheckRoleConflict rejects role/station combinations the business disallows:
// the per-station Administrator cap, a single ALL-scope Administrator, and
// the conflicting-role-pair table for one identity at one station.
func (v *UserValidator) CheckRoleConflict(ctx context.Context, role, station, excludeID, email string) (RoleConflict, error) {
	if role == permission.RoleAdministrator {
		if station == model.StationAll {
			count, err := v.repo.CountActiveByRoleAndStation(ctx, role, model.StationAll, excludeID)
			if err != nil {
				return RoleConflict{}, err
			}
			if count >= 1 {
				return RoleConflict{
					HasConflict:  true,
					ConflictType: ConflictGlobalAdminExists,
					Message:      "an active Administrator with station scope ALL already exists",
				}, nil
			}
		} else {
			count, err := v.repo.CountActiveByRoleAndStation(ctx, role, station, excludeID)
			if err != nil {
				return RoleConflict{}, err
			}
			if count >= int64(v.cfg.MaxAdminsPerStation) {
				return RoleConflict{
					HasConflict:  true,
					ConflictType: ConflictMaxAdminLimit,
					Message: fmt.Sprintf("station %s already has %d active Administrator profiles (the maximum)",
						station, count),
				}, nil
			}
		}
	}

	if email != "" {
		existing, err := v.repo.GetByEmail(ctx, email)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// no other profile for this identity
		case err != nil:
			return RoleConflict{}, err
		case existing.ID.String() != excludeID && existing.Station == station:
			for _, pair := range v.cfg.ConflictingRolePairs {
				if (existing.Role == pair[0] && role == pair[1]) ||
					(existing.Role == pair[1] && role == pair[0]) {
					return RoleConflict{
						HasConflict:  true,
						ConflictType: ConflictRolePair,
						Message: fmt.Sprintf("roles %s and %s cannot be held by the same identity at station %s",
							pair[0], pair[1], station),
					}, nil
				}
			}
		}
	}

	return RoleConflict{}, nil
}

func (v *UserValidator) checkEmailUnique(ctx context.Context, input ValidateUserInput) (*ValidationError, error) {
	existing, err := v.repo.GetByEmail(ctx, input.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if existing.ID.String() == input.ID {
		return nil, nil
	}
	return &ValidationError{
		Field:   "email",
		Code:    CodeEmailConflict,
		Message: "a user with this email already exists",
	}, nil
}

func (v *UserValidator) checkProtectedAdmin(current *model.User, input ValidateUserInput) []ValidationError {
	if !strings.EqualFold(current.Email, v.cfg.ProtectedAdminEmail) {
		return nil
	}

	var violations []ValidationError
	if input.Role != permission.RoleAdministrator {
		violations = append(violations, ValidationError{
			Field:   "role",
			Code:    CodeAdminProtection,
			Message: "the protected administrator account cannot be demoted",
		})
	}
	if !strings.EqualFold(input.Email, v.cfg.ProtectedAdminEmail) {
		violations = append(violations, ValidationError{
			Field:   "email",
			Code:    CodeAdminProtection,
			Message: "the protected administrator account cannot change its email",
		})
	}
	if !input.IsActive {
		violations = append(violations, ValidationError{
			Field:   "is_active",
			Code:    CodeAdminProtection,
			Message: "the protected administrator account cannot be deactivated",
		})
	}
	return violations
}

func (v *UserValidator) checkSoleAdmin(ctx context.Context, current *model.User, input ValidateUserInput) (*ValidationError, error) {
	if current.Role != permission.RoleAdministrator || !current.IsActive {
		return nil, nil
	}
	losesAdmin := input.Role != permission.RoleAdministrator || !input.IsActive
	if !losesAdmin {
		return nil, nil
	}

	remaining, err := v.repo.CountActiveByRole(ctx, permission.RoleAdministrator, input.ID)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		return &ValidationError{
			Field:   "role",
			Code:    CodeSoleAdmin,
			Message: "this change would leave no active administrator",
		}, nil
	}
	return nil, nil
}
