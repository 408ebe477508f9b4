package services

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GuestService struct {
	db *gorm.DB
}

func NewGuestService(db *gorm.DB) *GuestService {
	return &GuestService{db: db}
}

// AddGuest invites an email to the event, creating a bare guest user if needed.
func (s *GuestService) AddGuest(ctx context.Context, hostID, eventID uint, rawEmail string) (*models.User, error) {
	email := normalizeEmail(rawEmail)
	if email == "" {
		return nil, invalid("Email is required")
	}
	if !validEmail(email) {
		return nil, invalid("Invalid email format")
	}

	var guest *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := loadHostedEvent(tx, eventID, hostID)
		if err != nil {
			return err
		}
		guest, err = findOrCreateGuestByEmail(tx, email)
		if err != nil {
			return err
		}
		if guest.ID == event.HostID {
			return invalid("The host cannot be added as a guest")
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.EventGuest{EventID: event.ID, UserID: guest.ID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyGuest
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return guest, nil
}

func guestSummary(u *models.User, account dto.AccountSummary) dto.GuestSummary {
	return dto.GuestSummary{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Nickname:       u.Nickname,
		Phone:          u.Phone,
		PaymentMethod:  u.PaymentMethod,
		AccountSummary: account,
	}
}

// ListGuests returns every guest of the event with their account.
func (s *GuestService) ListGuests(ctx context.Context, hostID, eventID uint) ([]dto.GuestSummary, error) {
	db := s.db.WithContext(ctx)
	event, err := loadHostedEvent(db, eventID, hostID)
	if err != nil {
		return nil, err
	}

	var guests []models.User
	err = db.Joins("JOIN event_guests ON event_guests.user_id = users.id").
		Where("event_guests.event_id = ?", eventID).
		Order("users.id").
		Find(&guests).Error
	if err != nil {
		return nil, err
	}

	out := make([]dto.GuestSummary, 0, len(guests))
	for i := range guests {
		account, err := summarize(db, event, guests[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, guestSummary(&guests[i], account))
	}
	return out, nil
}

// GuestDetail returns one guest's profile, guesses and payment lines.
func (s *GuestService) GuestDetail(ctx context.Context, hostID, eventID, guestID uint) (*dto.GuestDetail, error) {
	db := s.db.WithContext(ctx)
	event, err := loadHostedEvent(db, eventID, hostID)
	if err != nil {
		return nil, err
	}
	guest, err := s.loadGuest(db, eventID, guestID)
	if err != nil {
		return nil, err
	}

	account, err := summarize(db, event, guest.ID)
	if err != nil {
		return nil, err
	}
	set, err := guessSet(db, guest.ID, eventID)
	if err != nil {
		return nil, err
	}
	payments, err := paymentItems(db, guest.ID, eventID)
	if err != nil {
		return nil, err
	}
	return &dto.GuestDetail{
		GuestSummary: guestSummary(guest, account),
		GuessSet:     set,
		Payments:     payments,
	}, nil
}

// RemoveGuest unlinks a guest who has not guessed yet.
func (s *GuestService) RemoveGuest(ctx context.Context, hostID, eventID, guestID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadHostedEvent(tx, eventID, hostID); err != nil {
			return err
		}
		if _, err := s.loadGuest(tx, eventID, guestID); err != nil {
			return err
		}
		count, err := countGuesses(tx, guestID, eventID)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrGuestHasGuesses
		}
		return tx.Scopes(identity.ForUserInEvent(guestID, eventID)).
			Delete(&models.EventGuest{}).Error
	})
}

func (s *GuestService) loadGuest(db *gorm.DB, eventID, guestID uint) (*models.User, error) {
	var guest models.User
	if err := db.First(&guest, guestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	member, err := isGuest(db, eventID, guestID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotAGuest
	}
	return &guest, nil
}
