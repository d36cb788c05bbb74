package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/talk-tracer/errors"
	"github.com/johnquangdev/talk-tracer/pkg/jwt"
)

// Echo context keys set by EchoAuth
const (
	SubjectContextKey = "subject"
	ClaimsContextKey  = "claims"
)

// TokenValidator parses bearer tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// EchoAuth returns an Echo middleware that validates the bearer token and
// sets "subject" (string) and "claims" (*jwt.Claims) into the Echo context
func EchoAuth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c.Request())
			if token == "" {
				return c.JSON(http.StatusUnauthorized, errorBody(errors.ErrUnauthenticated()))
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorBody(errors.ErrInvalidToken()))
			}

			c.Set(ClaimsContextKey, claims)
			c.Set(SubjectContextKey, claims.Subject)

			return next(c)
		}
	}
}

// GetSubject returns the authenticated producer, if any
func GetSubject(c echo.Context) (string, bool) {
	subject, ok := c.Get(SubjectContextKey).(string)
	return subject, ok && subject != ""
}

// Helper functions

func extractToken(r *http.Request) string {
	// Try Authorization header first
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return strings.TrimSpace(parts[1])
		}
	}

	// Try cookie as fallback
	cookie, err := r.Cookie("access_token")
	if err == nil {
		return cookie.Value
	}

	return ""
}

func errorBody(appErr errors.AppError) map[string]interface{} {
	return map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
}
