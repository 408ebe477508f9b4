package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db := database.NewTestDB(t)
	cfg := &config.Config{
		Env:              "test",
		JWTSecret:        "routes-test-secret",
		HostTokenExpiry:  time.Hour,
		GuestTokenExpiry: 2 * time.Hour,
		JWTRefreshExpiry: 24 * time.Hour,
		SessionExpiry:    3 * time.Hour,
		UploadDir:        t.TempDir(),
		StaticDir:        t.TempDir(),
		MaxUploadBytes:   5 * 1024 * 1024,
	}

	store := session.New(session.Config{
		Expiration: cfg.SessionExpiry,
		KeyLookup:  "cookie:" + middleware.SessionCookieName,
	})

	authService := services.NewAuthService(db, cfg)
	sessions := handlers.NewSessions(store, authService, cfg)
	h := Handlers{
		Auth:    handlers.NewAuthHandler(authService, sessions),
		Events:  handlers.NewEventHandler(services.NewEventService(db), services.NewUploadService(cfg.UploadDir, cfg.MaxUploadBytes)),
		Guesses: handlers.NewGuessHandler(services.NewGuessService(db, services.NewContentFilter())),
		Guests:  handlers.NewGuestHandler(services.NewGuestService(db), services.NewPaymentService(db)),
		Health:  handlers.NewHealthHandler(db),
	}

	app := fiber.New()
	Setup(app, cfg, nil, middleware.Authenticate(cfg, store, authService.GetUser), h)
	return app, db
}

type client struct {
	t     *testing.T
	app   *fiber.App
	token string
}

func (cl *client) do(method, path string, body any) (int, []byte) {
	cl.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(cl.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(cl.t, err)
	return resp.StatusCode, out
}

func (cl *client) decode(raw []byte, v any) {
	cl.t.Helper()
	require.NoError(cl.t, json.Unmarshal(raw, v), string(raw))
}

func registerHost(t *testing.T, app *fiber.App, email string) *client {
	t.Helper()
	cl := &client{t: t, app: app}
	status, raw := cl.do(http.MethodPost, "/auth/host/register", dto.HostRegisterRequest{
		Email:     email,
		Password:  "supersecret",
		FirstName: "Hana",
		LastName:  "Host",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var auth dto.AuthResponse
	cl.decode(raw, &auth)
	require.NotEmpty(t, auth.AccessToken)
	cl.token = auth.AccessToken
	return cl
}

func guestLogin(t *testing.T, app *fiber.App, code, first, last string) *client {
	t.Helper()
	cl := &client{t: t, app: app}
	status, raw := cl.do(http.MethodPost, "/auth/guest/login", dto.GuestLoginRequest{
		LoginType: services.LoginTypeEventCode,
		EventCode: code,
		FirstName: first,
		LastName:  last,
	})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var resp dto.GuestLoginResponse
	cl.decode(raw, &resp)
	require.Equal(t, dto.GuestStatusLoggedIn, resp.Status)
	cl.token = resp.AccessToken
	return cl
}

func createEvent(t *testing.T, host *client) dto.CreateEventResponse {
	t.Helper()
	price := 2.0
	status, raw := host.do(http.MethodPost, "/api/events/", dto.CreateEventRequest{
		MotherName: "Rosa Diaz",
		DueDate:    "2026-06-15",
		EventDate:  "2026-05-01",
		GuessPrice: &price,
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var created dto.CreateEventResponse
	host.decode(raw, &created)
	return created
}

func eventPath(id uint, rest string) string {
	return "/api/events/" + identity.Subject(id) + rest
}

func TestHostAndGuestFlow(t *testing.T) {
	app, _ := newTestApp(t)
	host := registerHost(t, app, "host@example.com")
	event := createEvent(t, host)
	assert.Len(t, event.EventCode, 4)

	// Host login works with the registered password.
	anon := &client{t: t, app: app}
	status, raw := anon.do(http.MethodPost, "/auth/host/login", dto.HostLoginRequest{Email: "HOST@example.com", Password: "supersecret"})
	require.Equal(t, fiber.StatusOK, status, string(raw))

	pat := guestLogin(t, app, event.EventCode, "Pat", "Lee")
	sam := guestLogin(t, app, event.EventCode, "Sam", "Ortiz")

	hour := 3
	status, raw = pat.do(http.MethodPost, eventPath(event.ID, "/guesses/hour"), dto.HourGuessRequest{Hour: &hour, AmPm: "pm"})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var createdGuess dto.GuessCreatedResponse
	pat.decode(raw, &createdGuess)
	assert.Equal(t, "Hour guess created successfully", createdGuess.Message)

	status, raw = sam.do(http.MethodPost, eventPath(event.ID, "/guesses/hour"), dto.HourGuessRequest{Hour: &hour, AmPm: "PM"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	var errBody dto.ErrorResponse
	sam.decode(raw, &errBody)
	assert.Equal(t, "This hour is already taken by Pat L.", errBody.Message)

	status, raw = pat.do(http.MethodPost, eventPath(event.ID, "/guesses/hour"), dto.HourGuessRequest{Hour: &hour, AmPm: "PM"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	pat.decode(raw, &errBody)
	assert.Equal(t, "You have already guessed this hour", errBody.Message)

	// Listings are public.
	status, raw = anon.do(http.MethodGet, eventPath(event.ID, "/guesses/hour"), nil)
	require.Equal(t, fiber.StatusOK, status)
	var views []dto.GuessView
	anon.decode(raw, &views)
	require.Len(t, views, 1)
	assert.Equal(t, "Pat L.", views[0].User.DisplayName)
	assert.Equal(t, services.PaymentStatusPending, views[0].PaymentStatus)
	assert.False(t, views[0].IsCurrentUser)

	status, raw = pat.do(http.MethodGet, eventPath(event.ID, "/user/guesses"), nil)
	require.Equal(t, fiber.StatusOK, status)
	var mine dto.UserGuessesResponse
	pat.decode(raw, &mine)
	assert.Equal(t, int64(1), mine.TotalGuesses)
	assert.Equal(t, 2.0, mine.AmountOwed)

	// The host records a payment and the guest becomes paid.
	status, raw = host.do(http.MethodPost, eventPath(event.ID, "/guests/"+identity.Subject(views[0].User.ID)+"/payment"), dto.PaymentActionRequest{Action: dto.PaymentActionMarkPaid})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var paid dto.PaymentActionResponse
	host.decode(raw, &paid)
	assert.Equal(t, services.PaymentStatusPaid, paid.Summary.PaymentStatus)

	status, raw = host.do(http.MethodGet, eventPath(event.ID, "/guests"), nil)
	require.Equal(t, fiber.StatusOK, status)
	var guests []dto.GuestSummary
	host.decode(raw, &guests)
	assert.Len(t, guests, 2)

	// Guests cannot use the host-only routes.
	status, _ = pat.do(http.MethodGet, eventPath(event.ID, "/guests"), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = pat.do(http.MethodPost, "/api/events/", dto.CreateEventRequest{MotherName: "X", DueDate: "2026-01-01"})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestGuestLoginCannotTakeOverHost(t *testing.T) {
	app, _ := newTestApp(t)
	host := registerHost(t, app, "hana@example.com")
	event := createEvent(t, host)

	anon := &client{t: t, app: app}
	status, raw := anon.do(http.MethodPost, "/auth/guest/login", dto.GuestLoginRequest{
		LoginType: services.LoginTypeEmail,
		Email:     "hana@example.com",
	})
	assert.Equal(t, fiber.StatusForbidden, status)
	var errBody dto.ErrorResponse
	anon.decode(raw, &errBody)
	assert.Equal(t, "This account belongs to a host. Please use host login", errBody.Message)
	assert.NotContains(t, string(raw), "access_token")

	status, _ = anon.do(http.MethodPost, "/auth/guest/login", dto.GuestLoginRequest{
		LoginType: services.LoginTypeEventCode,
		EventCode: event.EventCode,
		Email:     "hana@example.com",
		FirstName: "Hana",
		LastName:  "Host",
	})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = anon.do(http.MethodGet, "/api/events/", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = anon.do(http.MethodPost, "/api/events/", dto.CreateEventRequest{MotherName: "X", DueDate: "2026-01-01"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestSessionCookieUsesSessionExpiry(t *testing.T) {
	app, _ := newTestApp(t)
	raw, err := json.Marshal(dto.HostRegisterRequest{Email: "s@example.com", Password: "supersecret"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/host/register", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	cookies := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c
	}
	sess := cookies[middleware.SessionCookieName]
	require.NotNil(t, sess)
	assert.Equal(t, int((3 * time.Hour).Seconds()), sess.MaxAge)

	access := cookies[middleware.AccessTokenCookie]
	require.NotNil(t, access)
	assert.WithinDuration(t, time.Now().Add(time.Hour), access.Expires, time.Minute)
}

func TestAuthRequiredAndVerify(t *testing.T) {
	app, _ := newTestApp(t)
	host := registerHost(t, app, "verify@example.com")
	event := createEvent(t, host)
	anon := &client{t: t, app: app}

	status, _ := anon.do(http.MethodGet, "/api/users/me", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	minute := 7
	status, _ = anon.do(http.MethodPost, eventPath(event.ID, "/guesses/minute"), dto.MinuteGuessRequest{Minute: &minute})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, raw := anon.do(http.MethodGet, "/auth/token/verify", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	var verify dto.VerifyTokenResponse
	anon.decode(raw, &verify)
	assert.False(t, verify.Valid)

	status, raw = host.do(http.MethodGet, "/auth/verify-token", nil)
	require.Equal(t, fiber.StatusOK, status)
	host.decode(raw, &verify)
	assert.True(t, verify.Valid)
	require.NotNil(t, verify.User)
	assert.True(t, verify.User.IsHost)

	status, raw = host.do(http.MethodGet, "/api/users/me", nil)
	require.Equal(t, fiber.StatusOK, status)
	var me dto.UserResponse
	host.decode(raw, &me)
	assert.Equal(t, "Hana", me.FirstName)

	status, raw = anon.do(http.MethodGet, "/api/events/code/"+event.EventCode, nil)
	require.Equal(t, fiber.StatusOK, status)
	var byCode dto.EventByCodeResponse
	anon.decode(raw, &byCode)
	assert.Equal(t, event.ID, byCode.ID)
	assert.Equal(t, "Hana Host", byCode.Host)

	status, _ = anon.do(http.MethodGet, "/api/events/code/0000", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = anon.do(http.MethodGet, "/api/events/abc", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestRefreshAndLogout(t *testing.T) {
	app, _ := newTestApp(t)
	cl := &client{t: t, app: app}
	status, raw := cl.do(http.MethodPost, "/auth/host/register", dto.HostRegisterRequest{Email: "r@example.com", Password: "supersecret"})
	require.Equal(t, fiber.StatusCreated, status)
	var auth dto.AuthResponse
	cl.decode(raw, &auth)

	status, raw = cl.do(http.MethodPost, "/auth/token/refresh", dto.RefreshRequest{RefreshToken: auth.RefreshToken})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var pair dto.TokenPair
	cl.decode(raw, &pair)
	assert.NotEqual(t, auth.RefreshToken, pair.RefreshToken)
	assert.Equal(t, int64(time.Hour.Seconds()), pair.ExpiresIn)

	status, _ = cl.do(http.MethodPost, "/auth/token/refresh", dto.RefreshRequest{RefreshToken: auth.RefreshToken})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, raw = cl.do(http.MethodPost, "/auth/logout", dto.LogoutRequest{RefreshToken: pair.RefreshToken})
	require.Equal(t, fiber.StatusOK, status)
	var msg dto.MessageResponse
	cl.decode(raw, &msg)
	assert.Equal(t, "Logged out successfully", msg.Message)

	status, _ = cl.do(http.MethodPost, "/auth/token/refresh", dto.RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestHealthAndFallbacks(t *testing.T) {
	app, db := newTestApp(t)
	cl := &client{t: t, app: app}

	status, raw := cl.do(http.MethodGet, "/api/health", nil)
	require.Equal(t, fiber.StatusOK, status)
	var health dto.HealthResponse
	cl.decode(raw, &health)
	assert.Equal(t, "ok", health.Status)

	status, raw = cl.do(http.MethodGet, "/api/does-not-exist", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	var errBody dto.ErrorResponse
	cl.decode(raw, &errBody)
	assert.True(t, errBody.Error)

	status, raw = cl.do(http.MethodGet, "/google_auth/google_login", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	cl.decode(raw, &errBody)
	assert.Equal(t, "Google sign-in is not configured", errBody.Message)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	status, raw = cl.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	cl.decode(raw, &health)
	assert.Equal(t, "degraded", health.Status)
}

func TestRateLimitScopes(t *testing.T) {
	app, _ := newTestApp(t)
	cl := &client{t: t, app: app}

	for i := 0; i < 20; i++ {
		status, _ := cl.do(http.MethodGet, "/auth/token/verify", nil)
		require.Equal(t, fiber.StatusUnauthorized, status)
	}
	status, raw := cl.do(http.MethodGet, "/auth/token/verify", nil)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	var errBody dto.ErrorResponse
	cl.decode(raw, &errBody)
	assert.Equal(t, "Too many requests, slow down", errBody.Message)

	// The API limiter keeps its own count for the same client.
	status, _ = cl.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, fiber.StatusOK, status)
}
