package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/observability"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// Sessions issues and tears down the three login credentials: the session
// cookie, the token pair and the access token cookie.
type Sessions struct {
	store *session.Store
	auth  *services.AuthService
	cfg   *config.Config
}

func NewSessions(store *session.Store, auth *services.AuthService, cfg *config.Config) *Sessions {
	return &Sessions{store: store, auth: auth, cfg: cfg}
}

// Login binds the user to a fresh session and returns the issued tokens.
func (s *Sessions) Login(c *fiber.Ctx, user *models.User, method string) (*dto.TokenPair, error) {
	pair, err := s.auth.IssueTokens(c.UserContext(), user)
	if err != nil {
		return nil, err
	}

	expiry := s.cfg.AccessExpiry(user.IsHost)
	sess, err := s.store.Get(c)
	if err != nil {
		return nil, err
	}
	if err := sess.Regenerate(); err != nil {
		return nil, err
	}
	sess.Set(middleware.SessionUserID, user.ID)
	sess.SetExpiry(s.cfg.SessionExpiry)
	if err := sess.Save(); err != nil {
		return nil, err
	}

	s.setAccessCookie(c, pair.AccessToken, expiry)
	observability.Logins.WithLabelValues(method).Inc()
	return pair, nil
}

// Logout destroys the session and expires the access token cookie.
func (s *Sessions) Logout(c *fiber.Ctx) error {
	s.setAccessCookie(c, "", -time.Hour)
	sess, err := s.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

func (s *Sessions) setAccessCookie(c *fiber.Ctx, token string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Sessions) getString(c *fiber.Ctx, key string) string {
	sess, err := s.store.Get(c)
	if err != nil {
		return ""
	}
	v, _ := sess.Get(key).(string)
	return v
}

// put sets key to value, or deletes it when value is empty.
func (s *Sessions) put(c *fiber.Ctx, key, value string) error {
	sess, err := s.store.Get(c)
	if err != nil {
		return err
	}
	if value == "" {
		sess.Delete(key)
	} else {
		sess.Set(key, value)
	}
	return sess.Save()
}

func (s *Sessions) TempEmail(c *fiber.Ctx) string {
	return s.getString(c, middleware.SessionTempEmail)
}

func (s *Sessions) SetTempEmail(c *fiber.Ctx, email string) error {
	return s.put(c, middleware.SessionTempEmail, email)
}

func (s *Sessions) SetOAuthState(c *fiber.Ctx, state string) error {
	return s.put(c, middleware.SessionOAuthState, state)
}

// TakeOAuthState returns the stored state and forgets it.
func (s *Sessions) TakeOAuthState(c *fiber.Ctx) (string, error) {
	state := s.getString(c, middleware.SessionOAuthState)
	if state == "" {
		return "", nil
	}
	return state, s.put(c, middleware.SessionOAuthState, "")
}
