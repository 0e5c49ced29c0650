package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"dcms/config"
	"dcms/internal/dto"
	"dcms/internal/model"
	"dcms/pkg/jwt"
)

func setupTestAuthService(cfg *config.Config) (AuthService, *mockUserRepo, *jwt.Manager) {
	users := newMockUserRepo()
	repo := newTestRepo(newMockCaseRepo(), users)
	jwtMgr := jwt.NewManager(&cfg.Auth)

	svc := NewAuthService(cfg, repo, jwtMgr, nil, nopLogger)
	svc.(*authService).cost = bcrypt.MinCost
	return svc, users, jwtMgr
}

func createTestUser(users *mockUserRepo, username, password, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		UserID:       "user-" + username,
		Username:     username,
		Email:        username + "@test.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	users.users[user.UserID] = user
	return user
}

// ── Login ──

func TestLogin_Success(t *testing.T) {
	svc, users, jwtMgr := setupTestAuthService(testConfig())
	createTestUser(users, "ravi", "password123", model.RoleUser)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ravi", Password: "password123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if result.ExpiresIn != 900 {
		t.Errorf("ExpiresIn = %d, want 900", result.ExpiresIn)
	}
	if result.User.Username != "ravi" || result.User.Role != model.RoleUser {
		t.Errorf("User = %+v", result.User)
	}
	if result.User.LastLoginAt == nil {
		t.Error("LastLoginAt should be stamped")
	}

	claims, err := jwtMgr.ParseToken(result.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "user-ravi" || claims.TokenType != jwt.TypeAccess {
		t.Errorf("claims = %+v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, users, _ := setupTestAuthService(testConfig())
	createTestUser(users, "ravi", "password123", model.RoleUser)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ravi", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _, _ := setupTestAuthService(testConfig())

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ghost", Password: "password123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

// ── Register ──

func TestRegister_Success(t *testing.T) {
	svc, users, _ := setupTestAuthService(testConfig())

	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Username: "sita",
		Email:    "Sita@Example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if resp.Role != model.RoleUser {
		t.Errorf("Role = %s, want user", resp.Role)
	}
	if resp.Email != "sita@example.com" {
		t.Errorf("Email = %s, want lower-cased", resp.Email)
	}

	stored := users.users[resp.ID]
	if stored == nil {
		t.Fatal("user not stored")
	}
	if stored.PasswordHash == "password123" {
		t.Fatal("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")) != nil {
		t.Error("stored hash does not match password")
	}
}

func TestRegister_Duplicates(t *testing.T) {
	svc, users, _ := setupTestAuthService(testConfig())
	createTestUser(users, "ravi", "password123", model.RoleUser)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Username: "ravi", Email: "new@test.com", Password: "password123"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("same username: err = %v", err)
	}
	_, err = svc.Register(context.Background(), &dto.RegisterRequest{Username: "other", Email: "RAVI@test.com", Password: "password123"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("same email: err = %v", err)
	}
}

// ── Refresh / Logout / Me ──

func TestRefresh_IssuesNewPair(t *testing.T) {
	svc, users, _ := setupTestAuthService(testConfig())
	createTestUser(users, "ravi", "password123", model.RoleAdmin)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ravi", Password: "password123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.User.Role != model.RoleAdmin {
		t.Errorf("Role = %s", refreshed.User.Role)
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, users, _ := setupTestAuthService(testConfig())
	createTestUser(users, "ravi", "password123", model.RoleUser)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Username: "ravi", Password: "password123"})
	if _, err := svc.Refresh(context.Background(), login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
	if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: err = %v", err)
	}
}

func TestLogout_WithoutRedisIsNoop(t *testing.T) {
	svc, _, _ := setupTestAuthService(testConfig())
	if err := svc.Logout(context.Background(), "some-jti", 1000); err != nil {
		t.Errorf("Logout: %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, users, _ := setupTestAuthService(testConfig())
	createTestUser(users, "ravi", "password123", model.RoleUser)

	me, err := svc.Me(context.Background(), "user-ravi")
	if err != nil || me.Username != "ravi" {
		t.Fatalf("Me = %+v, %v", me, err)
	}
	if _, err := svc.Me(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

// ── Seed ──

func TestSeedAdmin(t *testing.T) {
	svc, users, _ := setupTestAuthService(testConfig())

	if err := svc.SeedAdmin(context.Background()); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	admin, err := users.GetByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if admin.Role != model.RoleAdmin || admin.Email != "admin@example.com" {
		t.Errorf("admin = %+v", admin)
	}

	// second run is a no-op
	if err := svc.SeedAdmin(context.Background()); err != nil {
		t.Fatalf("second SeedAdmin: %v", err)
	}
	if len(users.users) != 1 {
		t.Errorf("users = %d, want 1", len(users.users))
	}
}

func TestSeedAdmin_SkippedWithoutPassword(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.SeedAdmin.Password = ""
	svc, users, _ := setupTestAuthService(cfg)

	if err := svc.SeedAdmin(context.Background()); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}
	if len(users.users) != 0 {
		t.Errorf("users = %d, want 0", len(users.users))
	}
}
