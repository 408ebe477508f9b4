package models

import (
	"strings"
	"time"
)

const (
	AuthProviderEmail  = "email"
	AuthProviderGoogle = "google"
	AuthProviderGuest  = "guest"
)

// User is either a host (password login) or a guest (matched by email or name).
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Email           *string   `gorm:"size:120;uniqueIndex" json:"email"`
	Password        string    `gorm:"size:255" json:"-"`
	FirstName       string    `gorm:"size:50" json:"first_name"`
	LastName        string    `gorm:"size:50" json:"last_name"`
	Nickname        string    `gorm:"size:50" json:"nickname"`
	Phone           string    `gorm:"size:20" json:"phone"`
	IsHost          bool      `gorm:"not null;default:false" json:"is_host"`
	PaymentMethod   string    `gorm:"size:20" json:"payment_method"`
	VenmoUsername   string    `gorm:"size:100" json:"venmo_username"`
	VenmoPhoneLast4 string    `gorm:"size:4" json:"venmo_phone_last4"`
	VenmoQRPath     string    `gorm:"size:255" json:"venmo_qr_path"`
	GoogleSub       *string   `gorm:"size:255;uniqueIndex" json:"-"`
	AuthProvider    string    `gorm:"size:20" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// EmailValue returns the email or "" for email-less guests.
func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}

// FullName is "First Last" when both are known, otherwise the email.
func (u *User) FullName() string {
	first := strings.TrimSpace(u.FirstName)
	last := strings.TrimSpace(u.LastName)
	if first != "" && last != "" {
		return first + " " + last
	}
	return u.emailOr("Anonymous")
}

// DisplayName is shown next to guesses: nickname, then "Jane D.", then email.
func (u *User) DisplayName() string {
	if nick := strings.TrimSpace(u.Nickname); nick != "" {
		return nick
	}
	if first := strings.TrimSpace(u.FirstName); first != "" {
		if last := []rune(strings.TrimSpace(u.LastName)); len(last) > 0 {
			return first + " " + string(last[0]) + "."
		}
		return first
	}
	return u.emailOr("Anonymous")
}

func (u *User) emailOr(fallback string) string {
	if email := u.EmailValue(); email != "" {
		return email
	}
	return fallback
}
