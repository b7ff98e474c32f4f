package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/payroll-registry/internal/auth"
	"github.com/spec-kit/payroll-registry/internal/config"
	"github.com/spec-kit/payroll-registry/internal/domain"
	"github.com/spec-kit/payroll-registry/internal/repository"
	apperrors "github.com/spec-kit/payroll-registry/pkg/util/errorutil"
)

// AuthService runs the challenge/response flow that turns control of an
// Ed25519 key into a bearer token for the derived identity.
type AuthService struct {
	challenges   repository.ChallengeRepository
	tokenMgr     *auth.TokenManager
	challengeTTL time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	ChallengeRepo repository.ChallengeRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		challenges:   deps.ChallengeRepo,
		tokenMgr:     auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL(), cfg.App.Name),
		challengeTTL: cfg.Auth.ChallengeTTL(),
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// IssueChallenge creates a single-use nonce for the key's identity.
func (s *AuthService) IssueChallenge(ctx context.Context, publicKeyHex string) (*domain.Challenge, error) {
	pub, err := auth.ParsePublicKey(publicKeyHex)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	address, err := auth.AddressFromPublicKey(pub)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	challenge := &domain.Challenge{
		Address:   address,
		PublicKey: pub,
		Nonce:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.challengeTTL),
	}
	if err := s.challenges.Save(ctx, challenge); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return challenge, nil
}

// ExchangeChallenge verifies the signature over nonce and issues a token.
// The nonce is consumed whether or not verification succeeds.
func (s *AuthService) ExchangeChallenge(ctx context.Context, publicKeyHex, nonce, signatureHex string) (*domain.Token, error) {
	pub, err := auth.ParsePublicKey(publicKeyHex)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	challenge, err := s.challenges.Consume(ctx, nonce)
	if errors.Is(err, repository.ErrChallengeNotFound) {
		return nil, apperrors.NewUnauthorized("unknown or expired challenge")
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if subtle.ConstantTimeCompare(challenge.PublicKey, pub) != 1 {
		return nil, apperrors.NewUnauthorized("challenge was issued for a different key")
	}
	if err := auth.VerifyChallenge(pub, nonce, signatureHex); err != nil {
		return nil, apperrors.NewUnauthorized(err.Error())
	}

	token, err := s.tokenMgr.GenerateToken(challenge.Address)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return token, nil
}
