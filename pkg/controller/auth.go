package controller

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"leadscout/pkg/domain"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// UserIDKey is the context key under which the authenticated user ID is stored.
	UserIDKey CtxKey = "UserID"
)

// GetUserID returns the authenticated user ID stored in the context by the
// auth middleware, or the zero UserID when the request is unauthenticated.
func GetUserID(ctx context.Context) domain.UserID {
	if v, ok := ctx.Value(UserIDKey).(domain.UserID); ok {
		return v
	}

	return domain.UserID{}
}

// WithAuth returns a middleware that authenticates requests with an RS256
// bearer token. The token's subject must be the caller's user ID; it is
// verified against the given PEM-encoded public key and stored in the request
// context under UserIDKey.
func WithAuth(publicKeyPEM string) (func(http.Handler) http.Handler, error) {
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, r, "missing or invalid authorization header")

				return
			}

			userID, err := verifyToken(publicKey, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				unauthorized(w, r, "invalid or expired token")

				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

// verifyToken validates an RS256 token and extracts the user ID from its
// subject claim.
func verifyToken(publicKey *rsa.PublicKey, token string) (domain.UserID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return domain.UserID{}, fmt.Errorf("could not parse token: %w", err)
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.UserID{}, fmt.Errorf("token subject is not a user ID: %w", err)
	}

	return domain.UserID(uid), nil
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]string{"error": msg})
}
