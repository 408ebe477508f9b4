package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"gorm.io/gorm"
)

const (
	LoginTypeEmail        = "email"
	LoginTypeEventCode    = "event_code"
	LoginTypeMotherSearch = "mother_search"
)

// GuestLoginResult tells the handler what to do with the session. User is
// set only when the guest should be logged in.
type GuestLoginResult struct {
	Response   dto.GuestLoginResponse
	User       *models.User
	StashEmail string
	ClearStash bool
}

// guestIdentity is what a guest told us about themselves on the way in.
type guestIdentity struct {
	email         string
	firstName     string
	lastName      string
	phone         string
	nickname      string
	paymentMethod string
}

func (g guestIdentity) empty() bool {
	return g.email == "" && (g.firstName == "" || g.lastName == "") && g.phone == ""
}

// GuestLogin runs one of the three guest entry paths. stashed is the email
// remembered in the session by an earlier unknown-email attempt.
func (s *AuthService) GuestLogin(ctx context.Context, req *dto.GuestLoginRequest, stashed string) (*GuestLoginResult, error) {
	switch req.LoginType {
	case LoginTypeEmail:
		return s.guestByEmail(ctx, req.Email)
	case LoginTypeEventCode:
		code := strings.TrimSpace(req.EventCode)
		if code == "" {
			return nil, invalid("Event code is required")
		}
		var event models.Event
		if err := s.db.WithContext(ctx).Where("event_code = ?", code).First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrEventNotFound
			}
			return nil, err
		}
		who := guestIdentity{
			email:     firstNonEmpty(stashed, normalizeEmail(req.Email)),
			firstName: strings.TrimSpace(req.FirstName),
			lastName:  strings.TrimSpace(req.LastName),
			phone:     strings.TrimSpace(req.Phone),
		}
		return s.joinEvent(ctx, &event, who, true)
	case LoginTypeMotherSearch:
		return s.guestByMother(ctx, req.SearchTerm)
	}
	return nil, invalid("Invalid login type")
}

// SelectEvent finishes a mother-search or need-event login for a chosen event.
func (s *AuthService) SelectEvent(ctx context.Context, req *dto.SelectEventRequest, stashed string) (*GuestLoginResult, error) {
	if req.EventID == 0 {
		return nil, invalid("Event ID is required")
	}
	event, err := loadEvent(s.db.WithContext(ctx), req.EventID)
	if err != nil {
		return nil, err
	}
	method := strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if method != "" && method != "venmo" && method != "cash" {
		return nil, invalid("Payment method must be venmo or cash")
	}
	who := guestIdentity{
		email:         firstNonEmpty(stashed, normalizeEmail(req.Email)),
		firstName:     strings.TrimSpace(req.FirstName),
		lastName:      strings.TrimSpace(req.LastName),
		phone:         strings.TrimSpace(req.Phone),
		nickname:      strings.TrimSpace(req.Nickname),
		paymentMethod: method,
	}
	return s.joinEvent(ctx, event, who, false)
}

func (s *AuthService) guestByEmail(ctx context.Context, raw string) (*GuestLoginResult, error) {
	email := normalizeEmail(raw)
	if email == "" {
		return nil, invalid("Email is required")
	}
	if !validEmail(email) {
		return nil, invalid("Invalid email format")
	}

	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return &GuestLoginResult{
			StashEmail: email,
			Response: dto.GuestLoginResponse{
				Status:  dto.GuestStatusNeedEvent,
				Message: "User not found. Please provide an event code or search for mother-to-be",
			},
		}, nil
	}
	if hostAccount(&user) {
		return nil, ErrUseHostLogin
	}

	if user.FirstName == "" || user.LastName == "" {
		return &GuestLoginResult{
			User: &user,
			Response: dto.GuestLoginResponse{
				Status:  dto.GuestStatusNeedProfileInfo,
				UserID:  user.ID,
				Message: "Please complete your profile",
			},
		}, nil
	}

	events, err := joinedEvents(db, user.ID)
	if err != nil {
		return nil, err
	}
	return &GuestLoginResult{
		User: &user,
		Response: dto.GuestLoginResponse{
			Status:    dto.GuestStatusLoggedIn,
			UserID:    user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Nickname:  user.Nickname,
			Events:    EventBriefs(events),
			Message:   "Login successful",
		},
	}, nil
}

func (s *AuthService) guestByMother(ctx context.Context, term string) (*GuestLoginResult, error) {
	events, err := NewEventService(s.db).SearchByMother(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, ErrNoEventsFound
	}
	return &GuestLoginResult{
		Response: dto.GuestLoginResponse{
			Status:  dto.GuestStatusEventsFound,
			Events:  EventBriefs(events),
			Message: "Please select an event",
		},
	}, nil
}

// joinEvent matches or creates the guest, links them to the event and logs
// them in. checkProfile reports need_profile_info for nameless guests.
func (s *AuthService) joinEvent(ctx context.Context, event *models.Event, who guestIdentity, checkProfile bool) (*GuestLoginResult, error) {
	if who.empty() {
		return &GuestLoginResult{
			Response: dto.GuestLoginResponse{
				Status:     dto.GuestStatusNeedUserInfo,
				EventID:    event.ID,
				EventTitle: event.Title,
				Message:    "Please provide your contact information",
			},
		}, nil
	}

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = joinAsGuest(tx, event, who)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &GuestLoginResult{User: user, ClearStash: true}
	if checkProfile && (user.FirstName == "" || user.LastName == "") {
		result.Response = dto.GuestLoginResponse{
			Status:  dto.GuestStatusNeedProfileInfo,
			UserID:  user.ID,
			EventID: event.ID,
			Message: "Please complete your profile",
		}
		return result, nil
	}
	result.Response = dto.GuestLoginResponse{
		Status:     dto.GuestStatusLoggedIn,
		UserID:     user.ID,
		EventID:    event.ID,
		EventTitle: event.Title,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Nickname:   user.Nickname,
		Message:    "Successfully joined event",
	}
	return result, nil
}

// joinAsGuest finds the guest by email, then by exact name among the event's
// guests, else creates them. Blank profile fields are filled in.
func joinAsGuest(tx *gorm.DB, event *models.Event, who guestIdentity) (*models.User, error) {
	var user models.User
	found := false

	if who.email != "" {
		err := tx.Where("email = ?", who.email).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		found = err == nil
	}
	if !found && who.firstName != "" && who.lastName != "" {
		var matches []models.User
		err := tx.Joins("JOIN event_guests ON event_guests.user_id = users.id").
			Where("event_guests.event_id = ? AND users.first_name = ? AND users.last_name = ?",
				event.ID, who.firstName, who.lastName).
			Order("users.id").
			Limit(1).
			Find(&matches).Error
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			user, found = matches[0], true
		}
	}

	if found && hostAccount(&user) {
		return nil, ErrUseHostLogin
	}

	if !found {
		user = models.User{
			FirstName:     who.firstName,
			LastName:      who.lastName,
			Phone:         who.phone,
			Nickname:      who.nickname,
			PaymentMethod: who.paymentMethod,
			AuthProvider:  models.AuthProviderGuest,
		}
		if who.email != "" {
			email := who.email
			user.Email = &email
		}
		if err := tx.Create(&user).Error; err != nil {
			return nil, err
		}
	} else {
		if user.FirstName == "" {
			user.FirstName = who.firstName
		}
		if user.LastName == "" {
			user.LastName = who.lastName
		}
		if user.Phone == "" {
			user.Phone = who.phone
		}
		if who.nickname != "" {
			user.Nickname = who.nickname
		}
		if who.paymentMethod != "" {
			user.PaymentMethod = who.paymentMethod
		}
		if err := tx.Save(&user).Error; err != nil {
			return nil, err
		}
	}

	if err := ensureGuest(tx, event, user.ID); err != nil {
		return nil, err
	}
	return &user, nil
}

// hostAccount reports users that must sign in through host login.
func hostAccount(u *models.User) bool {
	return u.IsHost || u.Password != ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
