package services

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var fixtureSeq atomic.Int64

func testConfig() *config.Config {
	return &config.Config{
		Env:              "test",
		JWTSecret:        "test-secret-that-is-long-enough-for-hs256",
		HostTokenExpiry:  7 * 24 * time.Hour,
		GuestTokenExpiry: 30 * 24 * time.Hour,
		JWTRefreshExpiry: 30 * 24 * time.Hour,
		SessionExpiry:    30 * 24 * time.Hour,
		MaxUploadBytes:   5 * 1024 * 1024,
		Port:             "8080",
	}
}

func uniqueEmail() string {
	return fmt.Sprintf("%d.%s", fixtureSeq.Add(1), strings.ToLower(gofakeit.Email()))
}

func createUser(t *testing.T, db *gorm.DB, isHost bool) *models.User {
	t.Helper()
	email := uniqueEmail()
	user := &models.User{
		Email:        &email,
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		IsHost:       isHost,
		AuthProvider: models.AuthProviderGuest,
	}
	if isHost {
		user.AuthProvider = models.AuthProviderEmail
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createHost(t *testing.T, db *gorm.DB) *models.User {
	return createUser(t, db, true)
}

func createGuest(t *testing.T, db *gorm.DB) *models.User {
	return createUser(t, db, false)
}

func mustDate(t *testing.T, s string) datatypes.Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func createEvent(t *testing.T, db *gorm.DB, host *models.User, price float64, opts ...func(*models.Event)) *models.Event {
	t.Helper()
	event := &models.Event{
		EventCode:  fmt.Sprintf("%04d", 1000+fixtureSeq.Add(1)%9000),
		Title:      "Test Shower",
		HostID:     host.ID,
		MotherName: gofakeit.FirstName() + " " + gofakeit.LastName(),
		EventDate:  mustDate(t, "2026-05-01"),
		DueDate:    mustDate(t, "2026-06-15"),
		GuessPrice: price,
		Theme:      "default",
		ThemeMode:  "light",
	}
	for _, opt := range opts {
		opt(event)
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func linkGuest(t *testing.T, db *gorm.DB, event *models.Event, user *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.EventGuest{EventID: event.ID, UserID: user.ID}).Error)
}

func intPtr(v int) *int { return &v }
