package middleware

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionCookieName = "babypool_session"
	AccessTokenCookie = "access_token_cookie"

	// Session keys.
	SessionUserID     = "user_id"
	SessionTempEmail  = "temp_email"
	SessionOAuthState = "oauth_state"

	jwtContextKey = "jwt"
)

// UserLoader fetches a user by id; the auth service satisfies it.
type UserLoader func(ctx context.Context, id uint) (*models.User, error)

// Authenticate resolves the caller from the session cookie first, then from a
// bearer token or the access token cookie. It never rejects a request; use
// RequireAuth or RequireHost for that.
func Authenticate(cfg *config.Config, sessions *session.Store, load UserLoader) fiber.Handler {
	fromJWT := jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		TokenLookup: "header:Authorization,cookie:" + AccessTokenCookie,
		AuthScheme:  "Bearer",
		ContextKey:  jwtContextKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, _ := c.Locals(jwtContextKey).(*jwt.Token)
			id, err := identity.UserIDFromToken(token)
			if err != nil {
				slog.Debug("rejected access token", "error", err, "request_id", c.Locals("requestid"))
				return c.Next()
			}
			if user, err := load(c.UserContext(), id); err == nil {
				identity.Bind(c, user)
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Next()
		},
	})

	return func(c *fiber.Ctx) error {
		if sessions != nil {
			if sess, err := sessions.Get(c); err == nil {
				if id, ok := sess.Get(SessionUserID).(uint); ok && id != 0 {
					if user, err := load(c.UserContext(), id); err == nil {
						identity.Bind(c, user)
						return c.Next()
					}
				}
			}
		}
		return fromJWT(c)
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity.CurrentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Authentication required",
			})
		}
		return c.Next()
	}
}

// RequireHost rejects anonymous callers with 401 and guests with 403.
func RequireHost() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := identity.CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Authentication required",
			})
		}
		if !user.IsHost {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Host access required",
			})
		}
		return c.Next()
	}
}
