package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dcms/internal/discipline"
	"dcms/internal/model"
	pkgerrors "dcms/pkg/errors"
	"dcms/pkg/filestore"
)

// Collection names on disk.
const (
	casesCollection = "cases"
	usersCollection = "users"
)

// ── Cases ──

// fileCaseRepo keeps every case in <dir>/cases.json in insertion order.
type fileCaseRepo struct {
	col *filestore.Collection[discipline.Record]
}

// NewFileCaseRepo creates a JSON-file CaseRepository.
func NewFileCaseRepo(store *filestore.Store) CaseRepository {
	return &fileCaseRepo{col: filestore.Open[discipline.Record](store, casesCollection)}
}

func (r *fileCaseRepo) List(ctx context.Context) ([]discipline.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.col.All()
}

func (r *fileCaseRepo) Get(ctx context.Context, id string) (discipline.Record, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range all {
		if rec.ID() == id {
			return rec, nil
		}
	}
	return nil, &discipline.NotFoundError{ID: id}
}

func (r *fileCaseRepo) Append(ctx context.Context, rec discipline.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.col.Update(func(items []discipline.Record) ([]discipline.Record, error) {
		for _, existing := range items {
			if existing.ID() == rec.ID() {
				return nil, pkgerrors.ErrDuplicate
			}
		}
		return append(items, rec.Clone()), nil
	})
}

func (r *fileCaseRepo) Replace(ctx context.Context, id string, rec discipline.Record) (discipline.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored := rec.Clone()
	stored[discipline.KeyID] = id
	err := r.col.Update(func(items []discipline.Record) ([]discipline.Record, error) {
		for i, existing := range items {
			if existing.ID() == id {
				items[i] = stored
				return items, nil
			}
		}
		return nil, &discipline.NotFoundError{ID: id}
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *fileCaseRepo) Remove(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	removed := false
	err := r.col.Update(func(items []discipline.Record) ([]discipline.Record, error) {
		out := items[:0]
		for _, existing := range items {
			if existing.ID() == id {
				removed = true
				continue
			}
			out = append(out, existing)
		}
		return out, nil
	})
	return removed, err
}

// ── Users ──

// storedUser is the on-disk shape; model.User hides the hash from JSON.
type storedUser struct {
	UserID       string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash"`
	Role         string     `json:"role"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func storedFrom(u *model.User) storedUser {
	return storedUser{
		UserID:       u.UserID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (s storedUser) model() *model.User {
	return &model.User{
		UserID:       s.UserID,
		Username:     s.Username,
		Email:        s.Email,
		PasswordHash: s.PasswordHash,
		Role:         s.Role,
		LastLoginAt:  s.LastLoginAt,
		BaseModel:    model.BaseModel{CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt},
	}
}

// fileUserRepo keeps users in <dir>/users.json.
type fileUserRepo struct {
	col *filestore.Collection[storedUser]
	now func() time.Time
}

// NewFileUserRepo creates a JSON-file UserRepository.
func NewFileUserRepo(store *filestore.Store) UserRepository {
	return &fileUserRepo{col: filestore.Open[storedUser](store, usersCollection), now: time.Now}
}

func (r *fileUserRepo) Create(_ context.Context, user *model.User) error {
	return r.col.Update(func(items []storedUser) ([]storedUser, error) {
		for _, u := range items {
			if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
				return nil, pkgerrors.ErrDuplicate
			}
		}
		if user.UserID == "" {
			user.UserID = uuid.NewString()
		}
		now := r.now()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = now
		}
		user.UpdatedAt = now
		return append(items, storedFrom(user)), nil
	})
}

func (r *fileUserRepo) find(match func(storedUser) bool) (*model.User, error) {
	items, err := r.col.All()
	if err != nil {
		return nil, err
	}
	for _, u := range items {
		if match(u) {
			return u.model(), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fileUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	return r.find(func(u storedUser) bool { return u.UserID == id })
}

func (r *fileUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return r.find(func(u storedUser) bool { return strings.EqualFold(u.Username, username) })
}

func (r *fileUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u storedUser) bool { return strings.EqualFold(u.Email, email) })
}

func (r *fileUserRepo) Update(_ context.Context, user *model.User) error {
	return r.col.Update(func(items []storedUser) ([]storedUser, error) {
		for i, u := range items {
			if u.UserID == user.UserID {
				user.UpdatedAt = r.now()
				items[i] = storedFrom(user)
				return items, nil
			}
		}
		return nil, gorm.ErrRecordNotFound
	})
}

func (r *fileUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	items, err := r.col.All()
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })

	total := int64(len(items))
	if offset > len(items) {
		offset = len(items)
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	users := make([]model.User, 0, end-offset)
	for _, u := range items[offset:end] {
		users = append(users, *u.model())
	}
	return users, total, nil
}

func (r *fileUserRepo) Count(_ context.Context) (int64, error) {
	items, err := r.col.All()
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}
