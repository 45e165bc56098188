package server

import (
	"errors"

	"stackit/internal/cache"
	"stackit/internal/middleware"
	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := middleware.BearerToken(c.Get("Authorization"))
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, middleware.ErrMissingToken) {
				msg = "Authorization required"
			}
			return models.RespondWithError(c, models.NewUnauthorizedError(msg))
		}

		claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString)
		if err != nil {
			return models.RespondWithError(c, models.NewUnauthorizedError("Invalid or expired token"))
		}
		if claims.JTI != "" && cache.IsRevoked(c.UserContext(), claims.JTI) {
			return models.RespondWithError(c, models.NewUnauthorizedError("Token has been revoked"))
		}
		if err := s.authService.CheckActive(c.UserContext(), claims.UserID); err != nil {
			return models.RespondWithError(c, err)
		}

		s.authenticate(c, claims)
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is presented and lets
// anonymous or badly authenticated requests through as anonymous.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := middleware.BearerToken(c.Get("Authorization"))
		if err != nil {
			return c.Next()
		}
		claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString)
		if err != nil || (claims.JTI != "" && cache.IsRevoked(c.UserContext(), claims.JTI)) {
			return c.Next()
		}
		if s.authService.CheckActive(c.UserContext(), claims.UserID) != nil {
			return c.Next()
		}
		s.authenticate(c, claims)
		return c.Next()
	}
}

func (s *Server) authenticate(c *fiber.Ctx, claims *middleware.TokenClaims) {
	c.Locals("userID", claims.UserID)
	c.Locals("claims", claims)
	// Sync to UserContext for logging and downstream services
	c.SetUserContext(middleware.WithUserID(c.UserContext(), claims.UserID))
}
