package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"oticas/internal/auth/hash"
	"oticas/internal/auth/token"
	"oticas/internal/domain"
	apperrors "oticas/internal/errors"
)

const (
	msgInvalidCredentials = "E-mail ou senha inválidos."
	msgSessionInvalid     = "Sessão inválida ou expirada."
	msgAuthUnavailable    = "Não foi possível validar a sessão."
	minPasswordLength     = 8
)

type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Admin, error)
	Insert(ctx context.Context, email, passwordHash string, createdAt time.Time) (int64, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) error
}

type TokenManager interface {
	Issue(subject, email, sessionID string) (string, *token.Claims, error)
	Parse(tokenString string) (*token.Claims, error)
}

type RevocationStore interface {
	Revoke(ctx context.Context, sessionID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, sessionID string) (bool, error)
}

// Session is an authenticated admin identity bound to one bearer token.
type Session struct {
	ID        string
	AdminID   int64
	Email     string
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	admins  AdminRepository
	hasher  PasswordHasher
	tokens  TokenManager
	revoked RevocationStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewAuthService(admins AdminRepository, hasher PasswordHasher, tokens TokenManager, revoked RevocationStore, logger *zap.Logger) *AuthService {
	return &AuthService{
		admins:  admins,
		hasher:  hasher,
		tokens:  tokens,
		revoked: revoked,
		logger:  logger,
		now:     time.Now,
	}
}

// Authenticate checks credentials and opens a new session. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	admin, err := s.admins.FindByEmail(ctx, email)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewUnauthorizedError(msgInvalidCredentials)
		}
		s.logger.Error("admin lookup failed", zap.Error(err))
		return nil, apperrors.NewBackendError(msgAuthUnavailable, err)
	}

	if err := s.hasher.Compare(admin.PasswordHash, password); err != nil {
		if !errors.Is(err, hash.ErrPasswordMismatch) {
			s.logger.Warn("stored password hash unreadable", zap.Int64("adminId", admin.ID), zap.Error(err))
		}
		return nil, apperrors.NewUnauthorizedError(msgInvalidCredentials)
	}

	sessionID := uuid.New().String()
	signed, claims, err := s.tokens.Issue(strconv.FormatInt(admin.ID, 10), admin.Email, sessionID)
	if err != nil {
		return nil, apperrors.NewBackendError(msgAuthUnavailable, err)
	}

	s.logger.Info("admin logged in", zap.Int64("adminId", admin.ID), zap.String("sessionId", sessionID))
	return &Session{
		ID:        sessionID,
		AdminID:   admin.ID,
		Email:     admin.Email,
		Token:     signed,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify resolves a bearer token to its session, rejecting revoked ones.
func (s *AuthService) Verify(ctx context.Context, bearer string) (*Session, error) {
	claims, err := s.tokens.Parse(bearer)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError(msgSessionInvalid)
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.SessionID)
	if err != nil {
		s.logger.Error("session revocation check failed", zap.Error(err))
		return nil, apperrors.NewBackendError(msgAuthUnavailable, err)
	}
	if revoked {
		return nil, apperrors.NewUnauthorizedError(msgSessionInvalid)
	}

	adminID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError(msgSessionInvalid)
	}

	return &Session{
		ID:        claims.SessionID,
		AdminID:   adminID,
		Email:     claims.Email,
		Token:     bearer,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke invalidates the session until its token expires.
func (s *AuthService) Revoke(ctx context.Context, session *Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Revoke(ctx, session.ID, ttl); err != nil {
		s.logger.Error("session revoke failed", zap.String("sessionId", session.ID), zap.Error(err))
		return apperrors.NewBackendError(msgAuthUnavailable, err)
	}
	s.logger.Info("admin logged out", zap.Int64("adminId", session.AdminID), zap.String("sessionId", session.ID))
	return nil
}

// CreateAdmin registers a dashboard user.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password string) (int64, error) {
	email = strings.TrimSpace(email)
	var details []apperrors.ValidationDetail
	if email == "" || !strings.Contains(email, "@") {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email must be a valid address"})
	}
	if len(password) < minPasswordLength {
		details = append(details, apperrors.ValidationDetail{Field: "password", Message: "password must have at least 8 characters"})
	}
	if len(details) > 0 {
		return 0, apperrors.NewValidationError("validation failed", details...)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}
	id, err := s.admins.Insert(ctx, email, hashed, s.now())
	if err != nil {
		return 0, apperrors.NewBackendError("Não foi possível criar o administrador.", err)
	}
	return id, nil
}
