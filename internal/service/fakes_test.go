package service

import (
	"context"
	"strings"

	"stationops/internal/model"
	"stationops/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory UserRepository for rule and editor tests.
type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		repo.users[u.ID.String()] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID.String()] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var users []model.User
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users, int64(len(users)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.users[user.ID.String()] = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) CountActiveByRole(_ context.Context, role, excludeID string) (int64, error) {
	var count int64
	for id, u := range r.users {
		if u.Role == role && u.IsActive && id != excludeID {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) CountActiveByRoleAndStation(_ context.Context, role, station, excludeID string) (int64, error) {
	var count int64
	for id, u := range r.users {
		if u.Role == role && u.Station == station && u.IsActive && id != excludeID {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) UpdatePermissions(_ context.Context, id string, raw string, expectedVersion int) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if u.PermissionsVersion != expectedVersion {
		return repository.ErrVersionConflict
	}
	u.DetailedPermissions = raw
	u.PermissionsVersion = expectedVersion + 1
	return nil
}

// fakeAuditRepo records entries so tests can assert audit coverage.
type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	for _, e := range r.entries {
		logs = append(logs, *e)
	}
	return logs, int64(len(logs)), nil
}

// fakeTxManager runs the body directly; the fakes have no transactions.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
