package auth

import (
	"fmt"

	"go.uber.org/zap"

	"oticas/internal/auth/hash"
	"oticas/internal/auth/repository"
	"oticas/internal/auth/service"
	"oticas/internal/auth/token"
	"oticas/internal/config"
	"oticas/internal/infrastructure/database"
)

// NewModule builds the auth service used by the HTTP server.
func NewModule(db *database.DB, cfg config.AuthConfig, revoked service.RevocationStore, logger *zap.Logger) (*service.AuthService, error) {
	tokens, err := token.NewManager(token.Options{
		SigningKey: []byte(cfg.JWTSecret),
		Issuer:     cfg.Issuer,
		TTL:        cfg.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("token manager: %w (set AUTH_JWT_SECRET)", err)
	}

	hasher, err := hash.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	return service.NewAuthService(repository.NewSQLAdminRepository(db), hasher, tokens, revoked, logger), nil
}

// NewAdminRegistrar builds an auth service that can only register admins; it
// holds no signing key.
func NewAdminRegistrar(db *database.DB, cfg config.AuthConfig, logger *zap.Logger) (*service.AuthService, error) {
	hasher, err := hash.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return service.NewAuthService(repository.NewSQLAdminRepository(db), hasher, nil, nil, logger), nil
}
