package middleware

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"bracket-bff/pkg/errors"
	"bracket-bff/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

// AdminClaims represents the claims of an admin bearer token
type AdminClaims struct {
	IsAdmin bool     `json:"is_admin"`
	Roles   []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (c *AdminClaims) hasAdminRole() bool {
	return c.IsAdmin || slices.Contains(c.Roles, "admin")
}

// AdminAuth guards mutating routes with an HS256 bearer token.
// An empty secret disables the check.
func AdminAuth(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := parseAdminToken(r.Header.Get("Authorization"), []byte(secret))
			if err != nil {
				log.WithError(err).WithField("path", r.URL.Path).Warn("Admin token rejected")
				WriteError(w, r, errors.NewAuthenticationError("Invalid or missing admin token"), log)
				return
			}
			if !claims.hasAdminRole() {
				log.WithField("subject", claims.Subject).Warn("Token lacks admin role")
				WriteError(w, r, errors.NewAuthenticationError("Insufficient privileges"), log)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func parseAdminToken(header string, secret []byte) (*AdminClaims, error) {
	if header == "" {
		return nil, fmt.Errorf("authorization header is required")
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return nil, fmt.Errorf("invalid authorization header format")
	}

	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return claims, nil
}
