package service

import (
	"context"
	"errors"
	"testing"

	"dcms/internal/dto"
	"dcms/internal/model"
)

type failingUserRepo struct {
	*mockUserRepo
}

func (failingUserRepo) List(context.Context, int, int) ([]model.User, int64, error) {
	return nil, 0, errStorage
}

func TestUserService_List(t *testing.T) {
	users := newMockUserRepo()
	for _, name := range []string{"asha", "bala", "chitra"} {
		users.Create(context.Background(), &model.User{Username: name, Email: name + "@test.com", Role: model.RoleUser})
	}
	svc := NewUserService(newTestRepo(newMockCaseRepo(), users), nopLogger)

	req := &dto.UserListRequest{PaginationRequest: dto.PaginationRequest{Page: 1, PageSize: 2}}
	items, total, err := svc.List(context.Background(), req)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Username != "chitra" {
		t.Errorf("first = %s, want newest user", items[0].Username)
	}

	req.Page = 2
	items, _, err = svc.List(context.Background(), req)
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if len(items) != 1 || items[0].Username != "asha" {
		t.Errorf("page 2 = %+v", items)
	}
}

func TestUserService_List_Error(t *testing.T) {
	repo := newTestRepo(newMockCaseRepo(), newMockUserRepo())
	repo.User = failingUserRepo{newMockUserRepo()}
	svc := NewUserService(repo, nopLogger)

	_, _, err := svc.List(context.Background(), &dto.UserListRequest{})
	if !errors.Is(err, errStorage) {
		t.Errorf("err = %v, want storage error", err)
	}
}
