package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"metron/internal/domain"
)

// tokenClaims is the raw claim set parsed from the token.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// JWKSVerifier implements IdentityProvider against a JWKS endpoint.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWKSVerifier creates an identity provider that fetches public keys from
// the given JWKS endpoint. Keys are cached and refreshed by keyfunc based on
// HTTP cache headers.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (IdentityProvider, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx := context.Background()
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("identity provider initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{
		jwks:   jwks,
		logger: logger,
	}, nil
}

// VerifyToken validates a bearer token and returns the acting identity.
// The subject must be a UUID; actor columns in storage assume that shape.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, v.jwks.Keyfunc)
	if err != nil {
		v.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	// Prevent algorithm confusion attacks - allow only RS256 or ES256
	switch token.Method.Alg() {
	case "RS256", "ES256":
		// allowed
	default:
		v.logger.Warn("token uses unexpected algorithm",
			"algorithm", token.Method.Alg(), "allowed", []string{"RS256", "ES256"})
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if claims.Subject == "" {
		v.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		v.logger.Debug("token subject is not a UUID", "subject", claims.Subject)
		return nil, domain.ErrUnauthorized
	}

	return &Claims{Subject: claims.Subject, Role: claims.Role}, nil
}

// Close releases resources held by the verifier. keyfunc v3 manages its own
// resources, so this exists for graceful shutdown compatibility.
func (v *JWKSVerifier) Close() error {
	v.logger.Info("identity provider closed")
	return nil
}
