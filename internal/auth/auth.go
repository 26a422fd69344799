// Package auth issues and checks the bearer tokens that guard operator-only
// HTTP endpoints.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	adminSubject  = "admin"
	adminAudience = "quickcalc-admin"
)

var (
	ErrMissingSecret = errors.New("admin token secret not configured")
	ErrInvalidToken  = errors.New("invalid admin token")
)

// IssueAdminToken signs a short-lived HS256 token for the admin endpoints.
func IssueAdminToken(secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   adminSubject,
		Audience:  jwt.ClaimStrings{adminAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString([]byte(secret))
}

// VerifyAdminToken checks signature, expiry, audience and subject.
func VerifyAdminToken(secret, tokenString string) error {
	if secret == "" {
		return ErrMissingSecret
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithAudience(adminAudience), jwt.WithExpirationRequired())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject != adminSubject {
		return ErrInvalidToken
	}
	return nil
}

// RequireAdmin rejects requests without a valid "Authorization: Bearer" admin token.
func RequireAdmin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			err := VerifyAdminToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
			switch {
			case errors.Is(err, ErrMissingSecret):
				writeError(w, http.StatusServiceUnavailable, "admin endpoints disabled")
				return
			case err != nil:
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
