package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dcms/config"
	"dcms/internal/discipline"
	"dcms/internal/model"
	"dcms/internal/repository"
)

var errStorage = errors.New("storage unavailable")

// ── Mock CaseRepository ──

type mockCaseRepo struct {
	records []discipline.Record
	// failOn makes Append fail for the n-th call (1-based); 0 never fails.
	failOn  int
	appends int
	listErr error
}

func newMockCaseRepo(seed ...discipline.Record) *mockCaseRepo {
	return &mockCaseRepo{records: seed}
}

func (m *mockCaseRepo) List(_ context.Context) ([]discipline.Record, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]discipline.Record, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *mockCaseRepo) Get(_ context.Context, id string) (discipline.Record, error) {
	for _, r := range m.records {
		if r.ID() == id {
			return r.Clone(), nil
		}
	}
	return nil, &discipline.NotFoundError{ID: id}
}

func (m *mockCaseRepo) Append(_ context.Context, rec discipline.Record) error {
	m.appends++
	if m.failOn > 0 && m.appends == m.failOn {
		return errStorage
	}
	m.records = append(m.records, rec.Clone())
	return nil
}

func (m *mockCaseRepo) Replace(_ context.Context, id string, rec discipline.Record) (discipline.Record, error) {
	for i, r := range m.records {
		if r.ID() == id {
			next := rec.Clone()
			next[discipline.KeyID] = id
			m.records[i] = next
			return next.Clone(), nil
		}
	}
	return nil, &discipline.NotFoundError{ID: id}
}

func (m *mockCaseRepo) Remove(_ context.Context, id string) (bool, error) {
	for i, r := range m.records {
		if r.ID() == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Date(2026, 1, len(m.users)+1, 0, 0, 0, 0, time.UTC)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	all := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset > len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

// ── Fixtures ──

var testNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestEngine() *discipline.Engine {
	var n atomic.Int64
	engine, err := discipline.NewEngine(
		discipline.WithClock(func() time.Time { return testNow }),
		discipline.WithIDGenerator(func() string {
			return fmt.Sprintf("case-%03d", n.Add(1))
		}),
	)
	if err != nil {
		panic(err)
	}
	return engine
}

func newTestRepo(cases *mockCaseRepo, users *mockUserRepo) *repository.Repository {
	return &repository.Repository{
		Case:  cases,
		User:  users,
		Draft: repository.NewMemoryDraftRepo(time.Hour),
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
			SeedAdmin: config.SeedAdminConfig{
				Username: "admin",
				Email:    "Admin@Example.com",
				Password: "admin-password",
			},
		},
		Cases: config.CasesConfig{PageSizeMax: 50},
	}
}

var nopLogger = zap.NewNop()
