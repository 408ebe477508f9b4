package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	"gorm.io/gorm"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleUserInfo is the subset of the OpenID userinfo document we use.
type GoogleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

type GoogleOAuth struct {
	db          *gorm.DB
	oauth       *oauth2.Config
	userInfoURL string
}

func NewGoogleOAuth(db *gorm.DB, cfg *config.Config) *GoogleOAuth {
	return newGoogleOAuth(db, cfg, endpoints.Google, googleUserInfoURL)
}

func newGoogleOAuth(db *gorm.DB, cfg *config.Config, endpoint oauth2.Endpoint, userInfoURL string) *GoogleOAuth {
	return &GoogleOAuth{
		db: db,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: userInfoURL,
	}
}

// NewState returns a random value for the OAuth state parameter.
func (g *GoogleOAuth) NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for a token and fetches the userinfo.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*GoogleUserInfo, error) {
	if code == "" {
		return nil, invalid("Missing authorization code")
	}
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo: unexpected status %d", resp.StatusCode)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	if !info.EmailVerified || info.Email == "" {
		return nil, ErrEmailNotVerified
	}
	return &info, nil
}

// FindOrCreateUser resolves the Google account by subject, then by email,
// and links the subject on first use.
func (g *GoogleOAuth) FindOrCreateUser(ctx context.Context, info *GoogleUserInfo) (*models.User, error) {
	email := normalizeEmail(info.Email)
	sub := info.Sub
	var user models.User

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("google_sub = ?", sub).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{
				Email:        &email,
				FirstName:    strings.TrimSpace(info.GivenName),
				LastName:     strings.TrimSpace(info.FamilyName),
				GoogleSub:    &sub,
				AuthProvider: models.AuthProviderGoogle,
			}
			return tx.Create(&user).Error
		case err != nil:
			return err
		}

		user.GoogleSub = &sub
		if user.FirstName == "" {
			user.FirstName = strings.TrimSpace(info.GivenName)
		}
		if user.LastName == "" {
			user.LastName = strings.TrimSpace(info.FamilyName)
		}
		if user.AuthProvider == "" || user.AuthProvider == models.AuthProviderGuest {
			user.AuthProvider = models.AuthProviderGoogle
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
