package controller

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	authsvc "oticas/internal/auth/service"
	"oticas/internal/dashboard"
	apperrors "oticas/internal/errors"
	"oticas/internal/infrastructure/httpjson"
)

const msgMissingToken = "Sessão encerrada. Faça login novamente."

type TokenVerifier interface {
	Verify(ctx context.Context, bearer string) (*authsvc.Session, error)
}

type SessionRegistry interface {
	New() *dashboard.Session
	Put(s *dashboard.Session)
	Resolve(identity *authsvc.Session) *dashboard.Session
	Remove(sessionID string)
}

// AdminGuard resolves the bearer token to a dashboard session and stores it in
// the request context. Requests without a valid token never reach next.
type AdminGuard struct {
	verifier TokenVerifier
	registry SessionRegistry
	out      *httpjson.Writer
	logger   *zap.Logger
}

func NewAdminGuard(verifier TokenVerifier, registry SessionRegistry, logger *zap.Logger) *AdminGuard {
	return &AdminGuard{
		verifier: verifier,
		registry: registry,
		out:      httpjson.NewWriter(logger),
		logger:   logger,
	}
}

func (g *AdminGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer := bearerToken(r)
		if bearer == "" {
			g.out.WriteError(w, httpjson.NewTraceID(), apperrors.NewUnauthorizedError(msgMissingToken))
			return
		}

		identity, err := g.verifier.Verify(r.Context(), bearer)
		if err != nil {
			g.out.WriteError(w, httpjson.NewTraceID(), rejection(err))
			return
		}

		s := g.registry.Resolve(identity)
		next.ServeHTTP(w, r.WithContext(dashboard.NewContext(r.Context(), s)))
	})
}

// rejection keeps backend failures as they are and turns every other
// verification error into a 401.
func rejection(err error) error {
	if _, ok := apperrors.IsBackendError(err); ok {
		return err
	}
	if _, ok := apperrors.IsUnauthorizedError(err); ok {
		return err
	}
	return apperrors.NewUnauthorizedError(msgMissingToken)
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
