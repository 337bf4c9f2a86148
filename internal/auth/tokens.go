package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gym-checkin-backend/config"
	"gym-checkin-backend/internal/model"
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// ErrInvalidToken covers malformed, expired, revoked and wrongly typed tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload. Subject holds the user id; refresh tokens carry a session id in ID.
type Claims struct {
	Role     model.Role `json:"role"`
	TokenUse string     `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful sign-in or refresh hands to the client.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// TokenService signs access tokens and manages refresh sessions.
type TokenService struct {
	cfg      config.JWTConfig
	sessions SessionStore
	now      func() time.Time
}

func NewTokenService(cfg config.JWTConfig, sessions SessionStore) *TokenService {
	return &TokenService{cfg: cfg, sessions: sessions, now: time.Now}
}

// Issue signs a new access token and opens a refresh session for the user.
func (s *TokenService) Issue(ctx context.Context, userID string, role model.Role) (*TokenPair, error) {
	now := s.now()

	access, err := s.sign(Claims{
		Role:     role,
		TokenUse: tokenUseAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	})
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	expiresAt := now.Add(s.cfg.RefreshTTL)
	refresh, err := s.sign(Claims{
		Role:     role,
		TokenUse: tokenUseRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, sessionID, userID, s.cfg.RefreshTTL); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, RefreshExpiresAt: expiresAt}, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (s *TokenService) ParseAccessToken(token string) (*Claims, error) {
	return s.parse(token, tokenUseAccess)
}

// Refresh exchanges a live refresh token for a new pair. The old session is
// consumed atomically, so every refresh token works once even under concurrent use.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *Claims, error) {
	claims, err := s.parse(refreshToken, tokenUseRefresh)
	if err != nil {
		return nil, nil, err
	}

	owner, err := s.sessions.Take(ctx, claims.ID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil, ErrInvalidToken
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to consume session: %w", err)
	}
	if owner != claims.Subject {
		return nil, nil, ErrInvalidToken
	}

	pair, err := s.Issue(ctx, claims.Subject, claims.Role)
	if err != nil {
		return nil, nil, err
	}
	return pair, claims, nil
}

// Revoke ends the session behind a refresh token. Unknown or expired tokens are ignored.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.parse(refreshToken, tokenUseRefresh)
	if err != nil {
		return nil
	}
	return s.sessions.Revoke(ctx, claims.ID)
}

func (s *TokenService) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) parse(tokenStr, use string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenUse != use || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
