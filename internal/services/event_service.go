package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxCodeAttempts = 20

var (
	emailPattern     = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	errCodeCollision = errors.New("event code collision")
)

type EventService struct {
	db      *gorm.DB
	newCode func() string
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db, newCode: randomEventCode}
}

// randomEventCode returns a 4-digit code in 1000..9999.
func randomEventCode() string {
	return strconv.Itoa(1000 + rand.IntN(9000))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func loadEvent(db *gorm.DB, eventID uint) (*models.Event, error) {
	var event models.Event
	if err := db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

// loadHostedEvent loads the event and checks that hostID runs it.
func loadHostedEvent(db *gorm.DB, eventID, hostID uint) (*models.Event, error) {
	event, err := loadEvent(db, eventID)
	if err != nil {
		return nil, err
	}
	if event.HostID != hostID {
		return nil, ErrNotEventHost
	}
	return event, nil
}

func isGuest(db *gorm.DB, eventID, userID uint) (bool, error) {
	var n int64
	err := db.Model(&models.EventGuest{}).
		Scopes(identity.ForUserInEvent(userID, eventID)).
		Count(&n).Error
	return n > 0, err
}

// ensureGuest adds userID to the event's guest list unless they host it or
// are already on it.
func ensureGuest(tx *gorm.DB, event *models.Event, userID uint) error {
	if event.HostID == userID {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.EventGuest{EventID: event.ID, UserID: userID}).Error
}

func findOrCreateGuestByEmail(tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := tx.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	user = models.User{Email: &email, AuthProvider: models.AuthProviderGuest}
	if err := tx.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func joinedEvents(db *gorm.DB, userID uint) ([]models.Event, error) {
	var events []models.Event
	err := db.Joins("JOIN event_guests ON event_guests.event_id = events.id").
		Where("event_guests.user_id = ?", userID).
		Order("events.id").
		Find(&events).Error
	return events, err
}

// EventBriefs renders list items; host names are included when Host is preloaded.
func EventBriefs(events []models.Event) []dto.EventBrief {
	out := make([]dto.EventBrief, 0, len(events))
	for i := range events {
		e := &events[i]
		brief := dto.EventBrief{
			ID:         e.ID,
			Title:      e.Title,
			EventCode:  e.EventCode,
			MotherName: e.MotherName,
			EventDate:  FormatDate(e.EventDate),
			DueDate:    FormatDate(e.DueDate),
		}
		if e.Host.ID != 0 {
			brief.HostName = e.Host.FullName()
		}
		out = append(out, brief)
	}
	return out
}

// ListForUser returns hosted events for hosts and joined events for guests.
func (s *EventService) ListForUser(ctx context.Context, user *models.User) ([]models.Event, error) {
	db := s.db.WithContext(ctx)
	if user.IsHost {
		var events []models.Event
		err := db.Where("host_id = ?", user.ID).Order("id").Find(&events).Error
		return events, err
	}
	return joinedEvents(db, user.ID)
}

func (s *EventService) Get(ctx context.Context, eventID uint) (*models.Event, error) {
	return loadEvent(s.db.WithContext(ctx), eventID)
}

func (s *EventService) Create(ctx context.Context, host *models.User, req *dto.CreateEventRequest) (*models.Event, error) {
	if !host.IsHost {
		return nil, ErrHostOnly
	}

	mother := strings.TrimSpace(req.MotherName)
	if mother == "" {
		return nil, invalid("Mother's name is required")
	}
	if strings.TrimSpace(req.DueDate) == "" {
		return nil, invalid("Baby's due date is required")
	}
	dueDate, err := ParseDate(req.DueDate)
	if err != nil {
		return nil, invalid("Invalid due date format")
	}
	eventDate := today()
	if strings.TrimSpace(req.EventDate) != "" {
		if eventDate, err = ParseDate(req.EventDate); err != nil {
			return nil, invalid("Invalid event date format")
		}
	}

	price := 1.0
	if req.GuessPrice != nil {
		if *req.GuessPrice < 0 {
			return nil, invalid("Guess price cannot be negative")
		}
		price = *req.GuessPrice
	}

	title := mother + "'s Baby Shower"
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
	}
	theme := req.Theme
	if theme == "" {
		theme = "default"
	}
	themeMode, err := normalizeThemeMode(req.ThemeMode)
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:            title,
		HostID:           host.ID,
		MotherName:       mother,
		PartnerName:      strings.TrimSpace(req.PartnerName),
		EventDate:        eventDate,
		DueDate:          dueDate,
		BabyName:         strings.TrimSpace(req.BabyName),
		BabyNameRevealed: req.BabyNameRevealed,
		NameGameEnabled:  req.NameGameEnabled,
		ShowHostEmail:    req.ShowHostEmail,
		ShowerLink:       strings.TrimSpace(req.ShowerLink),
		GuessPrice:       price,
		Theme:            theme,
		ThemeMode:        themeMode,
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		event.ID = 0
		event.EventCode = s.newCode()
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var n int64
			if err := tx.Model(&models.Event{}).Where("event_code = ?", event.EventCode).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return errCodeCollision
			}
			if err := tx.Create(event).Error; err != nil {
				return err
			}
			if err := attachGuestEmails(tx, event, req.GuestEmails); err != nil {
				return err
			}
			if req.VenmoUsername != "" && req.VenmoPhoneLast4 != "" {
				return tx.Model(&models.User{}).Where("id = ?", host.ID).Updates(map[string]interface{}{
					"venmo_username":    req.VenmoUsername,
					"venmo_phone_last4": req.VenmoPhoneLast4,
				}).Error
			}
			return nil
		})
		if errors.Is(err, errCodeCollision) || isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return event, nil
	}
	return nil, ErrCodeExhausted
}

// attachGuestEmails creates or links invited guests; malformed entries are skipped.
func attachGuestEmails(tx *gorm.DB, event *models.Event, emails []string) error {
	for _, raw := range emails {
		email := normalizeEmail(raw)
		if !validEmail(email) {
			continue
		}
		guest, err := findOrCreateGuestByEmail(tx, email)
		if err != nil {
			return err
		}
		if err := ensureGuest(tx, event, guest.ID); err != nil {
			return err
		}
	}
	return nil
}

func normalizeThemeMode(mode string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "light":
		return "light", nil
	case "dark":
		return "dark", nil
	}
	return "", invalid("Theme mode must be light or dark")
}

func (s *EventService) Update(ctx context.Context, actorID, eventID uint, req *dto.UpdateEventRequest) (*models.Event, error) {
	db := s.db.WithContext(ctx)
	event, err := loadHostedEvent(db, eventID, actorID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, invalid("Title cannot be empty")
		}
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.MotherName != nil {
		if strings.TrimSpace(*req.MotherName) == "" {
			return nil, invalid("Mother's name is required")
		}
		event.MotherName = strings.TrimSpace(*req.MotherName)
	}
	if req.PartnerName != nil {
		event.PartnerName = *req.PartnerName
	}
	if req.EventDate != nil {
		if event.EventDate, err = ParseDate(*req.EventDate); err != nil {
			return nil, invalid("Invalid event date format")
		}
	}
	if req.DueDate != nil {
		if event.DueDate, err = ParseDate(*req.DueDate); err != nil {
			return nil, invalid("Invalid due date format")
		}
	}
	if req.BabyName != nil {
		event.BabyName = *req.BabyName
	}
	if req.BabyNameRevealed != nil {
		event.BabyNameRevealed = *req.BabyNameRevealed
	}
	if req.NameGameEnabled != nil {
		event.NameGameEnabled = *req.NameGameEnabled
	}
	if req.ShowHostEmail != nil {
		event.ShowHostEmail = *req.ShowHostEmail
	}
	if req.ShowerLink != nil {
		event.ShowerLink = *req.ShowerLink
	}
	if req.GuessPrice != nil {
		if *req.GuessPrice < 0 {
			return nil, invalid("Guess price cannot be negative")
		}
		event.GuessPrice = *req.GuessPrice
	}
	if req.Theme != nil {
		event.Theme = *req.Theme
	}
	if req.ThemeMode != nil {
		if event.ThemeMode, err = normalizeThemeMode(*req.ThemeMode); err != nil {
			return nil, err
		}
	}

	if err := db.Save(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes the event with its guesses, payments and guest links.
func (s *EventService) Delete(ctx context.Context, actorID, eventID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := loadHostedEvent(tx, eventID, actorID)
		if err != nil {
			return err
		}
		children := append([]interface{}{}, guessModels...)
		children = append(children, &models.Payment{}, &models.EventGuest{})
		for _, m := range children {
			if err := tx.Scopes(identity.ForEvent(event.ID)).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(event).Error
	})
}

func (s *EventService) SetImage(ctx context.Context, actorID, eventID uint, path string) error {
	db := s.db.WithContext(ctx)
	event, err := loadHostedEvent(db, eventID, actorID)
	if err != nil {
		return err
	}
	return db.Model(event).Update("image_path", path).Error
}

// CheckHost returns nil when actorID hosts the event.
func (s *EventService) CheckHost(ctx context.Context, actorID, eventID uint) error {
	_, err := loadHostedEvent(s.db.WithContext(ctx), eventID, actorID)
	return err
}

func (s *EventService) FindByCode(ctx context.Context, code string) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Preload("Host").
		Where("event_code = ?", strings.TrimSpace(code)).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// SearchByMother does a case-insensitive substring match on mother_name.
func (s *EventService) SearchByMother(ctx context.Context, term string) ([]models.Event, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < 2 {
		return nil, invalid("Search term must be at least 2 characters")
	}
	var events []models.Event
	err := s.db.WithContext(ctx).Preload("Host").
		Where("LOWER(mother_name) LIKE ?", "%"+strings.ToLower(term)+"%").
		Order("id").
		Find(&events).Error
	return events, err
}

// View renders the event for viewer (nil when anonymous). Hosts and guests
// get the full detail; everyone else gets the public subset.
func (s *EventService) View(ctx context.Context, eventID uint, viewer *models.User) (interface{}, error) {
	db := s.db.WithContext(ctx)
	var event models.Event
	if err := db.Preload("Host").First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	public := dto.EventPublic{
		ID:         event.ID,
		Title:      event.Title,
		MotherName: event.MotherName,
		EventDate:  FormatDate(event.EventDate),
		DueDate:    FormatDate(event.DueDate),
	}
	if viewer == nil {
		return public, nil
	}

	viewerIsHost := viewer.ID == event.HostID
	if !viewerIsHost {
		member, err := isGuest(db, event.ID, viewer.ID)
		if err != nil {
			return nil, err
		}
		if !member {
			return public, nil
		}
	}

	detail := dto.EventDetail{
		ID:               event.ID,
		Title:            event.Title,
		EventCode:        event.EventCode,
		MotherName:       event.MotherName,
		PartnerName:      event.PartnerName,
		EventDate:        FormatDate(event.EventDate),
		DueDate:          FormatDate(event.DueDate),
		Host:             dto.EventHost{ID: event.Host.ID, Name: event.Host.FullName()},
		ShowerLink:       event.ShowerLink,
		GuessPrice:       event.GuessPrice,
		ImagePath:        event.ImagePath,
		Theme:            event.Theme,
		ThemeMode:        event.ThemeMode,
		NameGameEnabled:  event.NameGameEnabled,
		BabyNameRevealed: event.BabyNameRevealed,
		ShowHostEmail:    event.ShowHostEmail,
		IsHost:           viewerIsHost,
		CreatedAt:        event.CreatedAt.UTC().Format(time.DateTime),
	}
	if event.ShowHostEmail {
		detail.Host.Email = event.Host.Email
	}
	if event.BabyNameRevealed || viewerIsHost {
		detail.BabyName = event.BabyName
	}
	return detail, nil
}
