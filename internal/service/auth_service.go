package service

import (
	"strings"
	"time"

	"github.com/nuvix-market/nuvix-suite/internal/auth"
	"github.com/nuvix-market/nuvix-suite/internal/config"
	"github.com/nuvix-market/nuvix-suite/internal/domain"
	apperrors "github.com/nuvix-market/nuvix-suite/pkg/util"
)

// AuthService exchanges the configured API key for read API tokens.
type AuthService struct {
	tokenMgr *auth.TokenManager
	keyHash  string
	keyTier  domain.Tier
}

// NewAuthService builds the service. An unparsable API_KEY_TIER falls back
// to High-Staff.
func NewAuthService(cfg config.AuthConfig, issuer string) *AuthService {
	tier, ok := domain.ParseTier(cfg.APIKeyTier)
	if !ok {
		tier = domain.TierHighStaff
	}
	return &AuthService{
		tokenMgr: auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL(), issuer),
		keyHash:  cfg.APIKeyHash,
		keyTier:  tier,
	}
}

// IssueToken verifies key and returns a signed token for subject.
func (s *AuthService) IssueToken(subject, key string) (string, time.Time, error) {
	if s.keyHash == "" {
		return "", time.Time{}, apperrors.NewUnauthorized("api access is disabled")
	}
	if strings.TrimSpace(key) == "" {
		return "", time.Time{}, apperrors.NewValidationError("key is required", nil)
	}
	if err := auth.ComparePassword(s.keyHash, key); err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid api key")
	}
	if subject == "" {
		subject = "api"
	}
	token, exp, err := s.tokenMgr.GenerateToken(subject, s.keyTier)
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return token, exp, nil
}

// TokenManager exposes the token manager for the HTTP middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
