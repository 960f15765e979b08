package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/todo-backend/internal/domain/auth"
	"github.com/yungbote/todo-backend/internal/observability"
	"github.com/yungbote/todo-backend/internal/platform/ctxutil"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Verifier checks a raw bearer token and returns the identity it carries.
type Verifier interface {
	Verify(ctx context.Context, token string) (*auth.Claim, error)
}

type AuthService interface {
	// SetContextFromToken verifies token and returns ctx carrying the claim.
	// Every failure wraps ErrMissingToken or ErrInvalidToken.
	SetContextFromToken(ctx context.Context, token string) (context.Context, error)
}

type authService struct {
	log      *logger.Logger
	verifier Verifier
	metrics  *observability.Metrics
}

func NewAuthService(log *logger.Logger, verifier Verifier, metrics *observability.Metrics) AuthService {
	return &authService{
		log:      log.With("service", "AuthService"),
		verifier: verifier,
		metrics:  metrics,
	}
}

func (as *authService) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		as.metrics.IncAuthFailure("missing")
		return ctx, ErrMissingToken
	}
	if as.verifier == nil {
		as.metrics.IncAuthFailure("no_verifier")
		return ctx, fmt.Errorf("%w: no verifier configured", ErrInvalidToken)
	}
	claim, err := as.verifier.Verify(ctx, token)
	if err != nil {
		as.metrics.IncAuthFailure("invalid")
		as.log.Debug("token verification failed", "error", err)
		return ctx, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claim == nil || strings.TrimSpace(claim.Subject) == "" {
		as.metrics.IncAuthFailure("invalid")
		return ctx, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{Claim: claim}), nil
}
