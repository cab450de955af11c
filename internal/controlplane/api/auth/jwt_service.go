package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/marmos91/smbmanager/pkg/controlplane/models"
)

// MinSecretLength is the shortest accepted HMAC secret.
const MinSecretLength = 32

// DefaultIssuer is the iss claim when JWTConfig.Issuer is empty.
const DefaultIssuer = "smbm"

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrInvalidTokenType    = errors.New("invalid token type")
	ErrTokenSigningFailed  = errors.New("failed to sign token")
	ErrInvalidSecretLength = fmt.Errorf("JWT secret must be at least %d characters", MinSecretLength)
)

// JWTConfig configures token issuance. Zero durations take the defaults
// of 15 minutes for access tokens and 7 days for refresh tokens.
type JWTConfig struct {
	Secret               string
	Issuer               string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// JWTService issues and verifies HS256 tokens for control plane accounts.
type JWTService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	parser     *jwt.Parser
}

// TokenPair is the body of a successful login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// NewJWTService validates config and returns a service.
func NewJWTService(config JWTConfig) (*JWTService, error) {
	if len(config.Secret) < MinSecretLength {
		return nil, ErrInvalidSecretLength
	}
	s := &JWTService{
		secret:     []byte(config.Secret),
		issuer:     config.Issuer,
		accessTTL:  config.AccessTokenDuration,
		refreshTTL: config.RefreshTokenDuration,
	}
	if s.issuer == "" {
		s.issuer = DefaultIssuer
	}
	if s.accessTTL == 0 {
		s.accessTTL = 15 * time.Minute
	}
	if s.refreshTTL == 0 {
		s.refreshTTL = 7 * 24 * time.Hour
	}
	s.parser = jwt.NewParser(
		jwt.WithIssuer(s.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	return s, nil
}

// GenerateTokenPair issues an access and a refresh token for user.
func (s *JWTService) GenerateTokenPair(user *models.User) (*TokenPair, error) {
	now := time.Now()
	access, err := s.sign(user, TokenTypeAccess, now, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.sign(user, TokenTypeRefresh, now, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL / time.Second),
		ExpiresAt:    now.Add(s.accessTTL),
	}, nil
}

func (s *JWTService) sign(user *models.User, typ TokenType, now time.Time, ttl time.Duration) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:             user.ID,
		Username:           user.Username,
		Role:               user.Role,
		TokenType:          typ,
		MustChangePassword: user.MustChangePassword,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", ErrTokenSigningFailed
	}
	return signed, nil
}

// ValidateAccessToken verifies raw and requires an access token.
func (s *JWTService) ValidateAccessToken(raw string) (*Claims, error) {
	return s.verify(raw, TokenTypeAccess)
}

// ValidateRefreshToken verifies raw and requires a refresh token.
func (s *JWTService) ValidateRefreshToken(raw string) (*Claims, error) {
	return s.verify(raw, TokenTypeRefresh)
}

func (s *JWTService) verify(raw string, want TokenType) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.TokenType != want:
		return nil, ErrInvalidTokenType
	}
	return claims, nil
}
