package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxNameLength = 100
	dateWindow    = 30
)

type GuessService struct {
	db     *gorm.DB
	filter *ContentFilter
}

func NewGuessService(db *gorm.DB, filter *ContentFilter) *GuessService {
	return &GuessService{db: db, filter: filter}
}

// slotClaim describes one exclusive value: which table, which columns.
type slotClaim struct {
	kind   string
	row    interface{}
	model  interface{}
	values map[string]interface{}
}

func (s *GuessService) CreateDateGuess(ctx context.Context, userID, eventID uint, raw string) (*models.DateGuess, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, invalid("Date is required")
	}
	date, err := ParseDate(raw)
	if err != nil {
		return nil, invalid("Invalid date format, expected YYYY-MM-DD")
	}

	guess := &models.DateGuess{UserID: userID, EventID: eventID, GuessDate: date}
	err = s.claim(ctx, userID, eventID, slotClaim{
		kind:   models.KindDate,
		row:    guess,
		model:  &models.DateGuess{},
		values: map[string]interface{}{"guess_date": date},
	})
	if err != nil {
		return nil, err
	}
	return guess, nil
}

func (s *GuessService) CreateHourGuess(ctx context.Context, userID, eventID uint, hour *int, amPm string) (*models.HourGuess, error) {
	amPm = strings.ToUpper(strings.TrimSpace(amPm))
	if hour == nil || amPm == "" {
		return nil, invalid("Hour and AM/PM are required")
	}
	if *hour < 1 || *hour > 12 {
		return nil, invalid("Hour must be between 1 and 12")
	}
	if amPm != "AM" && amPm != "PM" {
		return nil, invalid(`AM/PM must be either "AM" or "PM"`)
	}

	guess := &models.HourGuess{UserID: userID, EventID: eventID, Hour: *hour, AmPm: amPm}
	err := s.claim(ctx, userID, eventID, slotClaim{
		kind:   models.KindHour,
		row:    guess,
		model:  &models.HourGuess{},
		values: map[string]interface{}{"hour": *hour, "am_pm": amPm},
	})
	if err != nil {
		return nil, err
	}
	return guess, nil
}

func (s *GuessService) CreateMinuteGuess(ctx context.Context, userID, eventID uint, minute *int) (*models.MinuteGuess, error) {
	if minute == nil {
		return nil, invalid("Minute is required")
	}
	if *minute < 0 || *minute > 59 {
		return nil, invalid("Minute must be between 0 and 59")
	}

	guess := &models.MinuteGuess{UserID: userID, EventID: eventID, Minute: *minute}
	err := s.claim(ctx, userID, eventID, slotClaim{
		kind:   models.KindMinute,
		row:    guess,
		model:  &models.MinuteGuess{},
		values: map[string]interface{}{"minute": *minute},
	})
	if err != nil {
		return nil, err
	}
	return guess, nil
}

// CreateNameGuess records a baby-name guess. Names are not exclusive.
func (s *GuessService) CreateNameGuess(ctx context.Context, userID, eventID uint, name string) (*models.NameGuess, error) {
	db := s.db.WithContext(ctx)
	event, err := loadEvent(db, eventID)
	if err != nil {
		return nil, err
	}
	if !event.NameGameEnabled {
		return nil, ErrNameGameDisabled
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("Name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return nil, invalid("Name must be %d characters or less", maxNameLength)
	}
	if reason := s.filter.Check(name); reason != "" {
		return nil, invalid("That name can't be used (%s)", reason)
	}

	guess := &models.NameGuess{UserID: userID, EventID: eventID, Name: name}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := ensureGuest(tx, event, userID); err != nil {
			return err
		}
		return tx.Create(guess).Error
	})
	if err != nil {
		return nil, err
	}
	observability.GuessesCreated.WithLabelValues(models.KindName).Inc()
	return guess, nil
}

// claim inserts an exclusive guess. The holder lookup gives the friendly
// error; the unique index is what actually settles concurrent claims.
func (s *GuessService) claim(ctx context.Context, userID, eventID uint, c slotClaim) (err error) {
	ctx, span := observability.StartSpan(ctx, "guess.claim_slot",
		attribute.String("guess.kind", c.kind),
		attribute.Int64("event.id", int64(eventID)),
		attribute.Int64("user.id", int64(userID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	db := s.db.WithContext(ctx)
	event, err := loadEvent(db, eventID)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		holder, err := slotHolder(tx, c, eventID)
		if err != nil {
			return err
		}
		if holder != nil {
			return conflictFor(c.kind, holder, userID)
		}
		if err := ensureGuest(tx, event, userID); err != nil {
			return err
		}
		return tx.Create(c.row).Error
	})

	switch {
	case err == nil:
		observability.GuessesCreated.WithLabelValues(c.kind).Inc()
		return nil
	case isUniqueViolation(err):
		observability.SlotConflicts.WithLabelValues(c.kind, "true").Inc()
		holder, lookupErr := slotHolder(db, c, eventID)
		if lookupErr != nil || holder == nil {
			return &SlotTakenError{Kind: c.kind}
		}
		return conflictFor(c.kind, holder, userID)
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrAlreadyGuessed):
		observability.SlotConflicts.WithLabelValues(c.kind, "false").Inc()
	}
	return err
}

func conflictFor(kind string, holder *models.User, userID uint) error {
	if holder.ID == userID {
		return &AlreadyGuessedError{Kind: kind}
	}
	return &SlotTakenError{Kind: kind, Holder: holder.DisplayName()}
}

func slotHolder(db *gorm.DB, c slotClaim, eventID uint) (*models.User, error) {
	var ids []uint
	err := db.Model(c.model).
		Scopes(identity.ForEvent(eventID)).
		Where(c.values).
		Limit(1).
		Pluck("user_id", &ids).Error
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	var holder models.User
	if err := db.First(&holder, ids[0]).Error; err != nil {
		return nil, err
	}
	return &holder, nil
}

// statusCache memoizes per-user payment status while building a listing.
type statusCache struct {
	db     *gorm.DB
	event  *models.Event
	byUser map[uint]string
}

func (c *statusCache) status(userID uint) (string, error) {
	if st, ok := c.byUser[userID]; ok {
		return st, nil
	}
	summary, err := summarize(c.db, c.event, userID)
	if err != nil {
		return "", err
	}
	c.byUser[userID] = summary.PaymentStatus
	return summary.PaymentStatus, nil
}

// ListGuesses returns every guess of one kind in the event, oldest first.
func (s *GuessService) ListGuesses(ctx context.Context, eventID uint, kind string, viewerID uint) ([]dto.GuessView, error) {
	db := s.db.WithContext(ctx)
	event, err := loadEvent(db, eventID)
	if err != nil {
		return nil, err
	}
	if kind == models.KindName && !event.NameGameEnabled {
		return nil, ErrNameGameDisabled
	}

	cache := &statusCache{db: db, event: event, byUser: map[uint]string{}}
	views := make([]dto.GuessView, 0)
	add := func(id uint, owner *models.User, fill func(*dto.GuessView)) error {
		status, err := cache.status(owner.ID)
		if err != nil {
			return err
		}
		v := dto.GuessView{
			ID:            id,
			User:          dto.GuessOwner{ID: owner.ID, DisplayName: owner.DisplayName()},
			PaymentStatus: status,
			IsCurrentUser: viewerID != 0 && viewerID == owner.ID,
		}
		fill(&v)
		views = append(views, v)
		return nil
	}

	q := db.Preload("User").Scopes(identity.ForEvent(eventID)).Order("id")
	switch kind {
	case models.KindDate:
		var rows []models.DateGuess
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			g := &rows[i]
			if err := add(g.ID, &g.User, func(v *dto.GuessView) { v.Date = FormatDate(g.GuessDate) }); err != nil {
				return nil, err
			}
		}
	case models.KindHour:
		var rows []models.HourGuess
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			g := &rows[i]
			if err := add(g.ID, &g.User, func(v *dto.GuessView) { v.Hour, v.AmPm = &g.Hour, g.AmPm }); err != nil {
				return nil, err
			}
		}
	case models.KindMinute:
		var rows []models.MinuteGuess
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			g := &rows[i]
			if err := add(g.ID, &g.User, func(v *dto.GuessView) { v.Minute = &g.Minute }); err != nil {
				return nil, err
			}
		}
	case models.KindName:
		var rows []models.NameGuess
		if err := q.Find(&rows).Error; err != nil {
			return nil, err
		}
		for i := range rows {
			g := &rows[i]
			if err := add(g.ID, &g.User, func(v *dto.GuessView) { v.Name = g.Name }); err != nil {
				return nil, err
			}
		}
	default:
		return nil, invalid("Invalid guess type")
	}
	return views, nil
}

func guessModel(kind string) (interface{}, error) {
	switch kind {
	case models.KindDate:
		return &models.DateGuess{}, nil
	case models.KindHour:
		return &models.HourGuess{}, nil
	case models.KindMinute:
		return &models.MinuteGuess{}, nil
	case models.KindName:
		return &models.NameGuess{}, nil
	}
	return nil, invalid("Invalid guess type")
}

// DeleteGuess removes a guess. Allowed for the event host and the guess owner.
func (s *GuessService) DeleteGuess(ctx context.Context, actorID, eventID uint, kind string, guessID uint) error {
	model, err := guessModel(kind)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := loadEvent(tx, eventID)
		if err != nil {
			return err
		}
		var owners []uint
		if err := tx.Model(model).Scopes(identity.ForEvent(eventID)).Where("id = ?", guessID).Pluck("user_id", &owners).Error; err != nil {
			return err
		}
		if len(owners) == 0 {
			return ErrGuessNotFound
		}
		if actorID != event.HostID && actorID != owners[0] {
			return ErrForbidden
		}
		return tx.Scopes(identity.ForEvent(eventID)).Where("id = ?", guessID).Delete(model).Error
	})
}

func guessSet(db *gorm.DB, userID, eventID uint) (dto.GuessSet, error) {
	set := dto.GuessSet{
		DateGuesses:   []dto.DateGuessItem{},
		HourGuesses:   []dto.HourGuessItem{},
		MinuteGuesses: []dto.MinuteGuessItem{},
		NameGuesses:   []dto.NameGuessItem{},
	}
	scope := identity.ForUserInEvent(userID, eventID)

	var dates []models.DateGuess
	if err := db.Scopes(scope).Order("guess_date").Find(&dates).Error; err != nil {
		return set, err
	}
	for _, g := range dates {
		set.DateGuesses = append(set.DateGuesses, dto.DateGuessItem{ID: g.ID, Date: FormatDate(g.GuessDate)})
	}

	var hours []models.HourGuess
	if err := db.Scopes(scope).Order("id").Find(&hours).Error; err != nil {
		return set, err
	}
	for _, g := range hours {
		set.HourGuesses = append(set.HourGuesses, dto.HourGuessItem{ID: g.ID, Hour: g.Hour, AmPm: g.AmPm})
	}

	var minutes []models.MinuteGuess
	if err := db.Scopes(scope).Order("minute").Find(&minutes).Error; err != nil {
		return set, err
	}
	for _, g := range minutes {
		set.MinuteGuesses = append(set.MinuteGuesses, dto.MinuteGuessItem{ID: g.ID, Minute: g.Minute})
	}

	var names []models.NameGuess
	if err := db.Scopes(scope).Order("id").Find(&names).Error; err != nil {
		return set, err
	}
	for _, g := range names {
		set.NameGuesses = append(set.NameGuesses, dto.NameGuessItem{ID: g.ID, Name: g.Name})
	}
	return set, nil
}

// UserGuesses returns the caller's own guesses and account in the event.
func (s *GuessService) UserGuesses(ctx context.Context, userID, eventID uint) (*dto.UserGuessesResponse, error) {
	db := s.db.WithContext(ctx)
	event, err := loadEvent(db, eventID)
	if err != nil {
		return nil, err
	}
	if event.HostID != userID {
		member, err := isGuest(db, eventID, userID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrForbidden
		}
	}

	set, err := guessSet(db, userID, eventID)
	if err != nil {
		return nil, err
	}
	summary, err := summarize(db, event, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UserGuessesResponse{GuessSet: set, AccountSummary: summary, GuessPrice: event.GuessPrice}, nil
}

// DateWindow lays out due date ±30 days with the holder of each taken day.
func (s *GuessService) DateWindow(ctx context.Context, eventID, viewerID uint) (*dto.DateWindowResponse, error) {
	db := s.db.WithContext(ctx)
	event, err := loadEvent(db, eventID)
	if err != nil {
		return nil, err
	}

	due := time.Time(event.DueDate).UTC()
	due = time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	start := due.AddDate(0, 0, -dateWindow)
	end := due.AddDate(0, 0, dateWindow)

	var rows []models.DateGuess
	err = db.Preload("User").
		Scopes(identity.ForEvent(eventID)).
		Where("guess_date BETWEEN ? AND ?", datatypes.Date(start), datatypes.Date(end)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	taken := make(map[string]*models.DateGuess, len(rows))
	for i := range rows {
		taken[FormatDate(rows[i].GuessDate)] = &rows[i]
	}

	resp := &dto.DateWindowResponse{DueDate: FormatDate(event.DueDate)}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		slot := dto.DateSlot{Date: key, Available: true, IsDueDate: d.Equal(due)}
		if g, ok := taken[key]; ok {
			slot.Available = false
			slot.TakenBy = g.User.DisplayName()
			slot.IsCurrentUser = viewerID != 0 && g.UserID == viewerID
		}
		resp.Dates = append(resp.Dates, slot)
	}
	return resp, nil
}
