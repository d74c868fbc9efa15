// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/amirphl/pesquisa-campo/app/dto"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/gofiber/fiber/v3"
	log "github.com/sirupsen/logrus"
)

const sessionLocalKey = "session"

// AuthMiddleware turns bearer tokens into the Session handed to every flow call
type AuthMiddleware struct {
	auth businessflow.AuthFlow
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(auth businessflow.AuthFlow) *AuthMiddleware {
	return &AuthMiddleware{
		auth: auth,
	}
}

// Authenticate validates the bearer token and, when roles are given, requires one of them
func (m *AuthMiddleware) Authenticate(roles ...models.UserRole) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required", "MISSING_AUTHORIZATION_HEADER")
		}

		// the transport trims trailing spaces, so "Bearer " arrives as "Bearer"
		scheme, token, _ := strings.Cut(authHeader, " ")
		if scheme != "Bearer" {
			return unauthorized(c, "Invalid authorization header format. Expected 'Bearer <token>'", "INVALID_AUTHORIZATION_FORMAT")
		}

		token = strings.TrimSpace(token)
		if token == "" {
			return unauthorized(c, "Access token is required", "MISSING_ACCESS_TOKEN")
		}

		metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
		metadata.SetRequestID(requestID(c))

		session, err := m.auth.Authenticate(c.Context(), token, metadata)
		if err != nil {
			var be *businessflow.BusinessError
			if errors.As(err, &be) && be.Code == "AUTH_UNAVAILABLE" {
				log.WithError(err).Error("token validation unavailable")
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.APIResponse{
					Success: false,
					Message: "Authentication temporarily unavailable",
					Error:   &dto.ErrorDetail{Code: be.Code},
				})
			}
			return unauthorized(c, "Invalid or expired access token", "TOKEN_INVALID")
		}

		if len(roles) > 0 {
			if err := session.Require(roles...); err != nil {
				return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
					Success: false,
					Message: "Access denied for this role",
					Error:   &dto.ErrorDetail{Code: "FORBIDDEN"},
				})
			}
		}

		c.Locals(sessionLocalKey, session)
		return c.Next()
	}
}

// SessionFromContext returns the session stored by Authenticate, or nil
func SessionFromContext(c fiber.Ctx) *businessflow.Session {
	session, _ := c.Locals(sessionLocalKey).(*businessflow.Session)
	return session
}

// WithSession stores a session the way Authenticate does. Handler tests use it to skip token parsing.
func WithSession(session *businessflow.Session) fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Locals(sessionLocalKey, session)
		return c.Next()
	}
}

func unauthorized(c fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: &dto.ErrorDetail{
			Code: code,
		},
	})
}

func requestID(c fiber.Ctx) string {
	if id := c.Get(fiber.HeaderXRequestID); id != "" {
		return id
	}
	return string(c.Response().Header.Peek(fiber.HeaderXRequestID))
}
