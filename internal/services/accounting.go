package services

import (
	"math"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/identity"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"gorm.io/gorm"
)

const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPartial = "partial"
	PaymentStatusPending = "pending"
)

// AmountOwed is guess count times price, rounded to cents.
func AmountOwed(guessCount int64, price float64) float64 {
	return roundCents(float64(guessCount) * price)
}

// PaymentStatus derives the ledger status. Amounts are compared in cents so
// float noise cannot leave a fully paid guest at "partial".
func PaymentStatus(totalPaid, owed float64) string {
	paid := roundCents(totalPaid)
	switch {
	case paid >= roundCents(owed):
		return PaymentStatusPaid
	case paid > 0:
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

var guessModels = []interface{}{
	&models.DateGuess{},
	&models.HourGuess{},
	&models.MinuteGuess{},
	&models.NameGuess{},
}

func countGuesses(db *gorm.DB, userID, eventID uint) (int64, error) {
	var total int64
	for _, m := range guessModels {
		var n int64
		if err := db.Model(m).Scopes(identity.ForUserInEvent(userID, eventID)).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func sumPayments(db *gorm.DB, userID, eventID uint) (float64, error) {
	var total float64
	err := db.Model(&models.Payment{}).
		Scopes(identity.ForUserInEvent(userID, eventID)).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return roundCents(total), err
}

// summarize recomputes a user's account in an event from the guess tables
// and the payment ledger.
func summarize(db *gorm.DB, event *models.Event, userID uint) (dto.AccountSummary, error) {
	count, err := countGuesses(db, userID, event.ID)
	if err != nil {
		return dto.AccountSummary{}, err
	}
	paid, err := sumPayments(db, userID, event.ID)
	if err != nil {
		return dto.AccountSummary{}, err
	}
	owed := AmountOwed(count, event.GuessPrice)
	return dto.AccountSummary{
		TotalGuesses:  count,
		AmountOwed:    owed,
		TotalPaid:     paid,
		PaymentStatus: PaymentStatus(paid, owed),
	}, nil
}
