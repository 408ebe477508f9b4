package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/observability"
	"gorm.io/gorm"
)

type PaymentService struct {
	db *gorm.DB
}

func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

// Summary recomputes the guest's account in the event.
func (s *PaymentService) Summary(ctx context.Context, eventID, userID uint) (dto.AccountSummary, error) {
	db := s.db.WithContext(ctx)
	event, err := loadEvent(db, eventID)
	if err != nil {
		return dto.AccountSummary{}, err
	}
	return summarize(db, event, userID)
}

// Apply runs a host payment action against one guest and returns the
// updated summary.
func (s *PaymentService) Apply(ctx context.Context, hostID, eventID, guestID uint, action string, amount *float64) (string, dto.AccountSummary, error) {
	var summary dto.AccountSummary
	var message string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := loadHostedEvent(tx, eventID, hostID)
		if err != nil {
			return err
		}
		ok, err := payable(tx, event, guestID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotAGuest
		}

		switch action {
		case dto.PaymentActionMarkPaid:
			err = markPaid(tx, event, guestID)
			message = "Payment marked as paid"
		case dto.PaymentActionMarkUnpaid:
			err = markUnpaid(tx, eventID, guestID)
			message = "Payment marked as unpaid"
		case dto.PaymentActionAdd:
			if amount == nil {
				return ErrInvalidAmount
			}
			err = addPayment(tx, eventID, guestID, *amount)
			message = "Payment added successfully"
		default:
			return invalid("Invalid action")
		}
		if err != nil {
			return err
		}

		summary, err = summarize(tx, event, guestID)
		return err
	})
	if err != nil {
		return "", dto.AccountSummary{}, err
	}
	observability.PaymentActions.WithLabelValues(action).Inc()
	return message, summary, nil
}

func (s *PaymentService) MarkPaid(ctx context.Context, hostID, eventID, guestID uint) (dto.AccountSummary, error) {
	_, summary, err := s.Apply(ctx, hostID, eventID, guestID, dto.PaymentActionMarkPaid, nil)
	return summary, err
}

func (s *PaymentService) MarkUnpaid(ctx context.Context, hostID, eventID, guestID uint) (dto.AccountSummary, error) {
	_, summary, err := s.Apply(ctx, hostID, eventID, guestID, dto.PaymentActionMarkUnpaid, nil)
	return summary, err
}

func (s *PaymentService) AddPayment(ctx context.Context, hostID, eventID, guestID uint, amount float64) (dto.AccountSummary, error) {
	_, summary, err := s.Apply(ctx, hostID, eventID, guestID, dto.PaymentActionAdd, &amount)
	return summary, err
}

// payable reports whether userID can carry a balance in the event: a listed
// guest, the host, or anyone holding a guess there.
func payable(tx *gorm.DB, event *models.Event, userID uint) (bool, error) {
	if event.HostID == userID {
		return true, nil
	}
	member, err := isGuest(tx, event.ID, userID)
	if err != nil || member {
		return member, err
	}
	count, err := countGuesses(tx, userID, event.ID)
	return count > 0, err
}

// markPaid records the whole amount currently owed. Nothing is written when
// the guest owes nothing.
func markPaid(tx *gorm.DB, event *models.Event, userID uint) error {
	count, err := countGuesses(tx, userID, event.ID)
	if err != nil {
		return err
	}
	owed := AmountOwed(count, event.GuessPrice)
	if owed <= 0 {
		return nil
	}
	return tx.Create(&models.Payment{
		UserID:  userID,
		EventID: event.ID,
		Amount:  owed,
		Status:  PaymentStatusPaid,
	}).Error
}

func markUnpaid(tx *gorm.DB, eventID, userID uint) error {
	return tx.Scopes(identity.ForUserInEvent(userID, eventID)).Delete(&models.Payment{}).Error
}

func addPayment(tx *gorm.DB, eventID, userID uint, amount float64) error {
	amount = roundCents(amount)
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return tx.Create(&models.Payment{
		UserID:  userID,
		EventID: eventID,
		Amount:  amount,
		Status:  PaymentStatusPaid,
	}).Error
}

func paymentItems(db *gorm.DB, userID, eventID uint) ([]dto.PaymentItem, error) {
	var rows []models.Payment
	if err := db.Scopes(identity.ForUserInEvent(userID, eventID)).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]dto.PaymentItem, 0, len(rows))
	for _, p := range rows {
		items = append(items, dto.PaymentItem{
			ID:        p.ID,
			Amount:    p.Amount,
			Status:    p.Status,
			CreatedAt: p.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return items, nil
}
