package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) RegisterHost(ctx context.Context, req *dto.HostRegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid("Email and password are required")
	}
	if !validEmail(email) {
		return nil, invalid("Invalid email format")
	}
	if len(req.Password) < minPasswordLength {
		return nil, invalid("Password must be at least %d characters", minPasswordLength)
	}

	db := s.db.WithContext(ctx)
	var n int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        &email,
		Password:     string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Nickname:     strings.TrimSpace(req.Nickname),
		IsHost:       true,
		AuthProvider: models.AuthProviderEmail,
	}
	if err := db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *AuthService) LoginHost(ctx context.Context, req *dto.HostLoginRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid("Email and password are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Password == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsHost {
		return nil, ErrNotHost
	}
	return &user, nil
}

// IssueTokens mints an access token and stores a fresh refresh token.
func (s *AuthService) IssueTokens(ctx context.Context, user *models.User) (*dto.TokenPair, error) {
	expiry := s.cfg.AccessExpiry(user.IsHost)
	access, err := s.generateAccessToken(user, expiry)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateRefreshToken(s.db.WithContext(ctx), user)
	if err != nil {
		return nil, err
	}
	return &dto.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(expiry.Seconds()),
	}, nil
}

// Refresh rotates a refresh token. The old row is revoked with a
// conditional update so a token can only be redeemed once.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*models.User, *dto.TokenPair, error) {
	if raw == "" {
		return nil, nil, ErrInvalidToken
	}
	db := s.db.WithContext(ctx)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", hashToken(raw), false).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}

	res := db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", stored.ID, false).
		Update("revoked", true)
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected != 1 || time.Now().After(stored.ExpiresAt) {
		return nil, nil, ErrInvalidToken
	}

	user, err := s.GetUser(ctx, stored.UserID)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.IssueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RevokeRefreshToken is a no-op for unknown or empty tokens.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(raw)).
		Update("revoked", true).Error
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Nickname != nil {
		user.Nickname = strings.TrimSpace(*req.Nickname)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.PaymentMethod != nil {
		method := strings.ToLower(strings.TrimSpace(*req.PaymentMethod))
		if method != "" && method != "venmo" && method != "cash" {
			return nil, invalid("Payment method must be venmo or cash")
		}
		user.PaymentMethod = method
	}
	if req.VenmoUsername != nil || req.VenmoPhoneLast4 != nil {
		if !user.IsHost {
			return nil, ErrNotHost
		}
		if req.VenmoUsername != nil {
			user.VenmoUsername = strings.TrimPrefix(strings.TrimSpace(*req.VenmoUsername), "@")
		}
		if req.VenmoPhoneLast4 != nil {
			last4 := strings.TrimSpace(*req.VenmoPhoneLast4)
			if last4 != "" && !isDigits(last4, 4) {
				return nil, invalid("Venmo phone last 4 must be 4 digits")
			}
			user.VenmoPhoneLast4 = last4
		}
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ToUserResponse renders a user without events.
func ToUserResponse(u *models.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Nickname:      u.Nickname,
		Phone:         u.Phone,
		IsHost:        u.IsHost,
		PaymentMethod: u.PaymentMethod,
	}
	if u.IsHost {
		resp.VenmoUsername = u.VenmoUsername
		resp.VenmoPhoneLast4 = u.VenmoPhoneLast4
	}
	return resp
}

// Profile renders the user; guests also get the events they joined.
func (s *AuthService) Profile(ctx context.Context, user *models.User) (dto.UserResponse, error) {
	resp := ToUserResponse(user)
	if user.IsHost {
		return resp, nil
	}
	events, err := joinedEvents(s.db.WithContext(ctx), user.ID)
	if err != nil {
		return resp, err
	}
	resp.Events = EventBriefs(events)
	return resp, nil
}

// PostLoginRedirect picks the SPA route a browser login lands on.
func (s *AuthService) PostLoginRedirect(ctx context.Context, user *models.User) (string, error) {
	if user.IsHost {
		return "/host/dashboard", nil
	}
	events, err := joinedEvents(s.db.WithContext(ctx), user.ID)
	if err != nil {
		return "", err
	}
	if len(events) > 0 {
		return "/guest/event/" + strconv.FormatUint(uint64(events[0].ID), 10), nil
	}
	return "/", nil
}

func (s *AuthService) generateAccessToken(user *models.User, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     identity.Subject(user.ID),
		"typ":     identity.TokenTypeAccess,
		"is_host": user.IsHost,
		"iat":     now.Unix(),
		"exp":     now.Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(db *gorm.DB, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}
	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
