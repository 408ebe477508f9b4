package services

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountOwed(t *testing.T) {
	assert.Equal(t, 0.0, AmountOwed(0, 5))
	assert.Equal(t, 3.0, AmountOwed(3, 1))
	assert.Equal(t, 0.3, AmountOwed(3, 0.1))
	assert.Equal(t, 7.5, AmountOwed(3, 2.5))
}

func TestPaymentStatus(t *testing.T) {
	tests := []struct {
		name string
		paid float64
		owed float64
		want string
	}{
		{"nothing owed nothing paid", 0, 0, PaymentStatusPaid},
		{"fully paid", 2, 2, PaymentStatusPaid},
		{"overpaid", 5, 2, PaymentStatusPaid},
		{"partial", 1, 2, PaymentStatusPartial},
		{"pending", 0, 2, PaymentStatusPending},
		{"float noise still paid", 0.1 + 0.2, 0.3, PaymentStatusPaid},
		{"one cent short", 1.99, 2, PaymentStatusPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentStatus(tt.paid, tt.owed))
		})
	}
}

func TestSummarize(t *testing.T) {
	db := database.NewTestDB(t)
	host := createHost(t, db)
	guest := createGuest(t, db)
	event := createEvent(t, db, host, 2.5)
	linkGuest(t, db, event, guest)

	require.NoError(t, db.Create(&models.DateGuess{UserID: guest.ID, EventID: event.ID, GuessDate: mustDate(t, "2026-06-10")}).Error)
	require.NoError(t, db.Create(&models.MinuteGuess{UserID: guest.ID, EventID: event.ID, Minute: 30}).Error)
	require.NoError(t, db.Create(&models.Payment{UserID: guest.ID, EventID: event.ID, Amount: 2.5, Status: PaymentStatusPaid}).Error)

	summary, err := summarize(db, event, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalGuesses)
	assert.Equal(t, 5.0, summary.AmountOwed)
	assert.Equal(t, 2.5, summary.TotalPaid)
	assert.Equal(t, PaymentStatusPartial, summary.PaymentStatus)

	// Guesses in other events never count.
	other := createEvent(t, db, host, 1)
	require.NoError(t, db.Create(&models.HourGuess{UserID: guest.ID, EventID: other.ID, Hour: 3, AmPm: "AM"}).Error)
	summary, err = summarize(db, event, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalGuesses)
}
