package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agroconecta/marketplace-bff-go/internal/domain"
	"github.com/agroconecta/marketplace-bff-go/internal/infra/cache"
	"github.com/agroconecta/marketplace-bff-go/internal/infra/observability"
	"github.com/agroconecta/marketplace-bff-go/internal/service"

	"go.uber.org/zap"
)

// --- In-memory AuthStore mock ---

type mockAuthStore struct {
	users       map[string]*domain.User // by id
	credentials map[string]*domain.AuthCredential
	tokens      map[string]*domain.AuthRefreshToken // by hash
}

func newMockAuthStore() *mockAuthStore {
	return &mockAuthStore{
		users:       map[string]*domain.User{},
		credentials: map[string]*domain.AuthCredential{},
		tokens:      map[string]*domain.AuthRefreshToken{},
	}
}

func (m *mockAuthStore) GetUserByID(_ context.Context, userID string) (*domain.User, error) {
	return m.users[userID], nil
}

func (m *mockAuthStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockAuthStore) CreateUser(_ context.Context, user *domain.User, passwordHash string) error {
	m.users[user.ID] = user
	m.credentials[user.ID] = &domain.AuthCredential{UserID: user.ID, PasswordHash: passwordHash}
	return nil
}

func (m *mockAuthStore) GetCredentials(_ context.Context, userID string) (*domain.AuthCredential, error) {
	cred, ok := m.credentials[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "credentials", ID: userID}
	}
	return cred, nil
}

func (m *mockAuthStore) UpdateCredentials(_ context.Context, userID string, updates map[string]any) error {
	cred := m.credentials[userID]
	if v, ok := updates["failed_attempts"]; ok {
		cred.FailedAttempts = v.(int)
	}
	if v, ok := updates["locked_until"]; ok {
		if v == nil {
			cred.LockedUntil = nil
		} else if ts, err := time.Parse(time.RFC3339, v.(string)); err == nil {
			cred.LockedUntil = &ts
		}
	}
	return nil
}

func (m *mockAuthStore) StoreRefreshToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.tokens[tokenHash] = &domain.AuthRefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}

func (m *mockAuthStore) GetRefreshToken(_ context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	t, ok := m.tokens[tokenHash]
	if !ok || t.Revoked {
		return nil, nil
	}
	return t, nil
}

func (m *mockAuthStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	if t, ok := m.tokens[tokenHash]; ok {
		t.Revoked = true
	}
	return nil
}

func (m *mockAuthStore) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	for _, t := range m.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func newAuthService(store *mockAuthStore, profileStore *mockProfileStore) *service.AuthService {
	profiles := service.NewProfileService(
		profileStore,
		cache.New[*domain.Profile](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
	return service.NewAuthService(store, profiles, "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())
}

// --- Tests ---

func TestRegisterAndLogin(t *testing.T) {
	store := newMockAuthStore()
	profileStore := &mockProfileStore{}
	svc := newAuthService(store, profileStore)

	resp, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:       "Maria@Fazenda.COM",
		Password:    "segredo123",
		FullName:    "Maria Souza",
		AccountType: "farm",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.UserID == "" {
		t.Fatal("expected a user id")
	}
	if profileStore.creates != 1 {
		t.Errorf("expected initial profile created once, got %d", profileStore.creates)
	}

	login, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "maria@fazenda.com",
		Password: "segredo123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.AccessToken == "" || login.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if login.AccountType != "farm" {
		t.Errorf("expected farm account, got %q", login.AccountType)
	}

	claims, err := svc.ValidateAccessToken(login.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Sub != resp.UserID {
		t.Errorf("expected sub %q, got %q", resp.UserID, claims.Sub)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newAuthService(newMockAuthStore(), &mockProfileStore{})

	cases := map[string]*domain.RegisterRequest{
		"bad email":      {Email: "not-an-email", Password: "segredo123", AccountType: "farm"},
		"short password": {Email: "a@b.com", Password: "12345", AccountType: "farm"},
		"bad type":       {Email: "a@b.com", Password: "segredo123", AccountType: "admin"},
	}
	for name, req := range cases {
		_, err := svc.Register(context.Background(), req)
		var verr *domain.ErrValidation
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newAuthService(newMockAuthStore(), &mockProfileStore{})

	req := &domain.RegisterRequest{Email: "a@b.com", Password: "segredo123", FullName: "A", AccountType: "operator"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLogin_WrongPasswordAndLockout(t *testing.T) {
	store := newMockAuthStore()
	svc := newAuthService(store, &mockProfileStore{})

	if _, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "a@b.com", Password: "segredo123", FullName: "A", AccountType: "operator",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	bad := &domain.LoginRequest{Email: "a@b.com", Password: "errada"}
	for i := 0; i < 4; i++ {
		_, err := svc.Login(context.Background(), bad)
		var unauthorized *domain.ErrUnauthorized
		if !errors.As(err, &unauthorized) {
			t.Fatalf("attempt %d: expected unauthorized, got %v", i+1, err)
		}
	}

	// Fifth failure locks the account.
	_, err := svc.Login(context.Background(), bad)
	var locked *domain.ErrTooManyRequests
	if !errors.As(err, &locked) {
		t.Fatalf("expected lock, got %v", err)
	}

	// Even the right password is rejected while locked.
	_, err = svc.Login(context.Background(), &domain.LoginRequest{Email: "a@b.com", Password: "segredo123"})
	if !errors.As(err, &locked) {
		t.Fatalf("expected lock for correct password, got %v", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	store := newMockAuthStore()
	svc := newAuthService(store, &mockProfileStore{})

	if _, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "a@b.com", Password: "segredo123", FullName: "A", AccountType: "consultant",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "a@b.com", Password: "segredo123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("expected a rotated refresh token")
	}

	// The old token is revoked after rotation.
	_, err = svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: login.RefreshToken})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized for reused token, got %v", err)
	}
}

func TestLogout_RevokesAllTokens(t *testing.T) {
	store := newMockAuthStore()
	svc := newAuthService(store, &mockProfileStore{})

	reg, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "a@b.com", Password: "segredo123", FullName: "A", AccountType: "farm",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	login, err := svc.Login(context.Background(), &domain.LoginRequest{Email: "a@b.com", Password: "segredo123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), reg.UserID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err = svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: login.RefreshToken})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}
