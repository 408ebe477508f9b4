package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrGuessNotFound      = errors.New("guess not found")
	ErrNotEventHost       = errors.New("only the event host can do this")
	ErrForbidden          = errors.New("not allowed")
	ErrHostOnly           = errors.New("only hosts can create events")
	ErrNameGameDisabled   = errors.New("name game is not enabled for this event")
	ErrAlreadyGuessed     = errors.New("slot already guessed by this user")
	ErrSlotTaken          = errors.New("slot taken by another user")
	ErrInvalidAmount      = errors.New("valid amount is required")
	ErrNotAGuest          = errors.New("user is not a guest of this event")
	ErrAlreadyGuest       = errors.New("user is already a guest for this event")
	ErrGuestHasGuesses    = errors.New("cannot remove guest with existing guesses")
	ErrCodeExhausted      = errors.New("could not allocate a unique event code")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotHost            = errors.New("account is not registered as a host")
	ErrUseHostLogin       = errors.New("host accounts must sign in with a password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrEmailNotVerified   = errors.New("google account email is not verified")
	ErrNoEventsFound      = errors.New("no events found with that mother's name")
)

// ValidationError carries a user-facing message for bad input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AlreadyGuessedError is returned when the caller already holds the slot.
type AlreadyGuessedError struct {
	Kind string
}

func (e *AlreadyGuessedError) Error() string {
	return "You have already guessed this " + e.Kind
}

func (e *AlreadyGuessedError) Is(target error) bool {
	return target == ErrAlreadyGuessed
}

// SlotTakenError is returned when another guest holds the slot. Holder is
// their display name, or empty when it could not be resolved.
type SlotTakenError struct {
	Kind   string
	Holder string
}

func (e *SlotTakenError) Error() string {
	if e.Holder == "" {
		return "This " + e.Kind + " is already taken"
	}
	return "This " + e.Kind + " is already taken by " + e.Holder
}

func (e *SlotTakenError) Is(target error) bool {
	return target == ErrSlotTaken
}

// isUniqueViolation recognizes unique-index failures from either driver,
// translated or not.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
