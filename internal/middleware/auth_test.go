package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

var testUsers = map[uint]*models.User{
	1: {ID: 1, FirstName: "Hana", IsHost: true},
	2: {ID: 2, FirstName: "Gus"},
}

func loadTestUser(_ context.Context, id uint) (*models.User, error) {
	if u, ok := testUsers[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func accessClaims(sub any) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub": sub,
		"typ": identity.TokenTypeAccess,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
}

// newAuthApp mounts the middleware in front of a /whoami echo route and a
// /login route that binds a session to the user id in the query string.
func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{JWTSecret: testSecret}
	store := session.New(session.Config{KeyLookup: "cookie:" + SessionCookieName})

	app := fiber.New()
	app.Get("/login", func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return err
		}
		sess.Set(SessionUserID, uint(c.QueryInt("id")))
		return sess.Save()
	})

	authn := Authenticate(cfg, store, loadTestUser)
	app.Get("/whoami", authn, func(c *fiber.Ctx) error {
		user := identity.CurrentUser(c)
		if user == nil {
			return c.SendString("anonymous")
		}
		return c.SendString(user.FirstName)
	})
	app.Get("/private", authn, RequireAuth(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/hosts", authn, RequireHost(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthenticateTokenSources(t *testing.T) {
	app := newAuthApp(t)
	hostToken := signToken(t, testSecret, accessClaims("1"))

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{
			name:  "no credentials",
			setup: func(*http.Request) {},
			want:  "anonymous",
		},
		{
			name:  "bearer header",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+hostToken) },
			want:  "Hana",
		},
		{
			name: "access token cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: signToken(t, testSecret, accessClaims("2"))})
			},
			want: "Gus",
		},
		{
			name:  "wrong scheme",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "Token "+hostToken) },
			want:  "anonymous",
		},
		{
			name: "wrong secret",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", accessClaims("1")))
			},
			want: "anonymous",
		},
		{
			name: "numeric subject",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, accessClaims(1)))
			},
			want: "anonymous",
		},
		{
			name: "unknown user",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, accessClaims("99")))
			},
			want: "anonymous",
		},
		{
			name: "expired token",
			setup: func(r *http.Request) {
				claims := accessClaims("1")
				claims["exp"] = time.Now().Add(-time.Minute).Unix()
				r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
			},
			want: "anonymous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			tt.setup(req)
			status, body := do(t, app, req)
			assert.Equal(t, fiber.StatusOK, status)
			assert.Equal(t, tt.want, body)
		})
	}
}

func TestAuthenticateSessionCookie(t *testing.T) {
	app := newAuthApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login?id=2", nil))
	require.NoError(t, err)
	var sessionCookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookieName {
			sessionCookie = ck
		}
	}
	require.NotNil(t, sessionCookie)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(sessionCookie)
	_, body := do(t, app, req)
	assert.Equal(t, "Gus", body)

	// The session wins over a token for a different user.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(sessionCookie)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, accessClaims("1")))
	_, body = do(t, app, req)
	assert.Equal(t, "Gus", body)
}

func TestRequireAuthAndHost(t *testing.T) {
	app := newAuthApp(t)
	hostToken := signToken(t, testSecret, accessClaims("1"))
	guestToken := signToken(t, testSecret, accessClaims("2"))

	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "Authentication required")

	status, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/hosts", nil))
	assert.Equal(t, fiber.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+guestToken)
	status, _ = do(t, app, req)
	assert.Equal(t, fiber.StatusNoContent, status)

	req = httptest.NewRequest(http.MethodGet, "/hosts", nil)
	req.Header.Set("Authorization", "Bearer "+guestToken)
	status, body = do(t, app, req)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Contains(t, body, "Host access required")

	req = httptest.NewRequest(http.MethodGet, "/hosts", nil)
	req.Header.Set("Authorization", "Bearer "+hostToken)
	status, _ = do(t, app, req)
	assert.Equal(t, fiber.StatusNoContent, status)
}
