// Package identity carries the resolved request user through Fiber locals
// and normalizes JWT subjects to integer user ids.
package identity

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalUserID      = "user_id"
	LocalCurrentUser = "current_user"

	// TokenTypeAccess marks access tokens in the "typ" claim.
	TokenTypeAccess = "access"
)

var (
	ErrNoIdentity   = errors.New("no authenticated user")
	ErrInvalidClaim = errors.New("invalid token subject")
)

// Bind stores the resolved user on the request.
func Bind(c *fiber.Ctx, user *models.User) {
	c.Locals(LocalUserID, user.ID)
	c.Locals(LocalCurrentUser, user)
}

// GetUserID returns the id bound by the auth middleware.
func GetUserID(c *fiber.Ctx) (uint, error) {
	if id, ok := c.Locals(LocalUserID).(uint); ok && id != 0 {
		return id, nil
	}
	return 0, ErrNoIdentity
}

// CurrentUser returns the bound user, or nil for anonymous requests.
func CurrentUser(c *fiber.Ctx) *models.User {
	if u, ok := c.Locals(LocalCurrentUser).(*models.User); ok {
		return u
	}
	return nil
}

// Subject renders a user id the way it is stored in the "sub" claim.
func Subject(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// UserIDFromToken extracts the user id from a verified access token. Only a
// decimal string subject is accepted.
func UserIDFromToken(token *jwt.Token) (uint, error) {
	if token == nil || !token.Valid {
		return 0, ErrInvalidClaim
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidClaim
	}
	if typ, ok := claims["typ"].(string); !ok || typ != TokenTypeAccess {
		return 0, ErrInvalidClaim
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return 0, ErrInvalidClaim
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidClaim
	}
	return uint(id), nil
}
