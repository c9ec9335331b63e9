// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/agroconecta/marketplace-bff-go/internal/domain"
)

// ProfileStore is the document-store surface for profile records. One
// document per uid in the "profiles" collection. A nil profile with a nil
// error means the document does not exist.
type ProfileStore interface {
	GetProfile(ctx context.Context, uid string) (*domain.Profile, error)
	CreateProfile(ctx context.Context, uid string, fields map[string]any) error
	UpdateProfile(ctx context.Context, uid string, fields map[string]any) error
}

// AuthStore defines all data operations for the authentication system.
type AuthStore interface {
	// User lookup. Nil user with nil error means not found.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// Registration
	CreateUser(ctx context.Context, user *domain.User, passwordHash string) error

	// Credentials
	GetCredentials(ctx context.Context, userID string) (*domain.AuthCredential, error)
	UpdateCredentials(ctx context.Context, userID string, updates map[string]any) error

	// Refresh tokens
	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
