package v1handler

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strings"

	"workforce/internal/config"
	"workforce/pkg/serrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// contextKey is a private type for context keys set by this package.
type contextKey string

// SubjectKey is the context key under which the authenticated token subject is
// stored for downstream handlers.
const SubjectKey contextKey = "authSubject"

// SecHandlerOptions configure token verification for the protected endpoints.
type SecHandlerOptions struct {
	// PublicKey is the PEM-encoded RSA public key bearer tokens are verified
	// against.
	PublicKey string
}

// NewSecHandlerOptions constructs a SecHandlerOptions value from the provided
// application config.
func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{PublicKey: cfg.JWT.PublicKey}
}

// SecHandler verifies RS256 bearer tokens.
type SecHandler struct {
	key *rsa.PublicKey
}

// NewSecHandler parses the configured public key and returns a SecHandler.
func NewSecHandler(opts *SecHandlerOptions) (*SecHandler, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return &SecHandler{key: key}, nil
}

// Verify validates a raw bearer token and returns its subject.
func (s *SecHandler) Verify(raw string) (string, error) {
	if raw == "" {
		return "", serrors.With(serrors.ErrUnauthorized, "missing bearer token")
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})); err != nil {
		return "", serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}

	return claims.Subject, nil
}

// Middleware returns an echo middleware that rejects requests without a valid
// bearer token and stores the token subject in the request context.
func (s *SecHandler) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			subject, err := s.Verify(bearerToken(req.Header.Get(echo.HeaderAuthorization)))
			if err != nil {
				return c.JSON(kindStatus(serrors.ErrUnauthorized), ErrorResponse{
					Code:    serrors.ErrUnauthorized.Error(),
					Message: "unauthorized",
				})
			}

			c.SetRequest(req.WithContext(context.WithValue(req.Context(), SubjectKey, subject)))

			return next(c)
		}
	}
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}

	return strings.TrimPrefix(header, prefix)
}
