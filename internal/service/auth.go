// Package service — AuthService handles registration, login, JWT token
// management and logout against the document-store auth tables.
package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/agroconecta/marketplace-bff-go/internal/domain"
	"github.com/agroconecta/marketplace-bff-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var authTracer = otel.Tracer("service/auth")

const (
	maxFailedAttempts = 5
	lockDuration      = 30 * time.Minute
	bcryptCost        = 12
	minPasswordLen    = 6
)

// AuthService orchestrates authentication flows. Registration also creates
// the user's initial profile document through the profile service, so a
// retried registration never produces a second profile write.
type AuthService struct {
	store      port.AuthStore
	profiles   *ProfileService
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store port.AuthStore, profiles *ProfileService, jwtSecret string, accessTTL, refreshTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:      store,
		profiles:   profiles,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// ============================================================
// Register — POST /v1/auth/register
// ============================================================

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisterResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Register")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &domain.ErrValidation{Field: "email", Message: "E-mail inválido"}
	}

	if len(req.Password) < minPasswordLen {
		return nil, &domain.ErrValidation{Field: "password", Message: "A senha deve ter pelo menos 6 caracteres"}
	}

	accountType := domain.ParseAccountType(req.AccountType)
	if !accountType.Valid() {
		return nil, &domain.ErrValidation{Field: "accountType", Message: "Tipo de conta inválido"}
	}

	// Check if e-mail already registered
	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Message: "Este e-mail já está em uso"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:          uuid.New().String(),
		Email:       email,
		DisplayName: strings.TrimSpace(req.FullName),
		AccountType: string(accountType),
	}
	if err := s.store.CreateUser(ctx, user, string(hash)); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	// Idempotent: a retry after a partial failure reuses the existing
	// profile document instead of writing a second one.
	if err := s.profiles.CreateInitialProfile(ctx, user.ID, accountType, domain.BaseProfile{
		FullName: req.FullName,
		Email:    email,
		Phone:    req.Phone,
		Region:   req.Region,
	}); err != nil {
		return nil, fmt.Errorf("create initial profile: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("account_type", string(accountType)),
	)

	return &domain.RegisterResponse{
		UserID:  user.ID,
		Message: "Conta criada com sucesso",
	}, nil
}
