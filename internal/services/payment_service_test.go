package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPaymentActions(t *testing.T) {
	db := database.NewTestDB(t)
	ctx := context.Background()
	guesses := NewGuessService(db, NewContentFilter())
	payments := NewPaymentService(db)

	host := createHost(t, db)
	guest := createGuest(t, db)
	event := createEvent(t, db, host, 5)

	_, err := guesses.CreateMinuteGuess(ctx, guest.ID, event.ID, intPtr(1))
	require.NoError(t, err)
	_, err = guesses.CreateMinuteGuess(ctx, guest.ID, event.ID, intPtr(2))
	require.NoError(t, err)

	message, summary, err := payments.Apply(ctx, host.ID, event.ID, guest.ID, dto.PaymentActionAdd, floatPtr(4))
	require.NoError(t, err)
	assert.Equal(t, "Payment added successfully", message)
	assert.Equal(t, PaymentStatusPartial, summary.PaymentStatus)

	message, summary, err = payments.Apply(ctx, host.ID, event.ID, guest.ID, dto.PaymentActionMarkPaid, nil)
	require.NoError(t, err)
	assert.Equal(t, "Payment marked as paid", message)
	assert.Equal(t, PaymentStatusPaid, summary.PaymentStatus)
	assert.Equal(t, 14.0, summary.TotalPaid)

	message, summary, err = payments.Apply(ctx, host.ID, event.ID, guest.ID, dto.PaymentActionMarkUnpaid, nil)
	require.NoError(t, err)
	assert.Equal(t, "Payment marked as unpaid", message)
	assert.Equal(t, 0.0, summary.TotalPaid)
	assert.Equal(t, PaymentStatusPending, summary.PaymentStatus)

	var rows int64
	require.NoError(t, db.Model(&models.Payment{}).Where("event_id = ?", event.ID).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestPaymentActionErrors(t *testing.T) {
	db := database.NewTestDB(t)
	ctx := context.Background()
	payments := NewPaymentService(db)

	host := createHost(t, db)
	otherHost := createHost(t, db)
	guest := createGuest(t, db)
	stranger := createGuest(t, db)
	event := createEvent(t, db, host, 1)
	linkGuest(t, db, event, guest)

	_, err := payments.AddPayment(ctx, otherHost.ID, event.ID, guest.ID, 1)
	assert.ErrorIs(t, err, ErrNotEventHost)

	_, err = payments.AddPayment(ctx, host.ID, event.ID, stranger.ID, 1)
	assert.ErrorIs(t, err, ErrNotAGuest)

	_, err = payments.AddPayment(ctx, host.ID, event.ID, guest.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = payments.AddPayment(ctx, host.ID, event.ID, guest.ID, -2)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = payments.Apply(ctx, host.ID, event.ID, guest.ID, dto.PaymentActionAdd, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = payments.Apply(ctx, host.ID, event.ID, guest.ID, "refund", nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid action", verr.Message)
}

func TestMarkPaidWithNothingOwed(t *testing.T) {
	db := database.NewTestDB(t)
	ctx := context.Background()
	payments := NewPaymentService(db)

	host := createHost(t, db)
	guest := createGuest(t, db)
	event := createEvent(t, db, host, 1)
	linkGuest(t, db, event, guest)

	summary, err := payments.MarkPaid(ctx, host.ID, event.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, summary.PaymentStatus)

	var rows int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestHostPaysForOwnGuesses(t *testing.T) {
	db := database.NewTestDB(t)
	ctx := context.Background()
	guesses := NewGuessService(db, NewContentFilter())
	payments := NewPaymentService(db)

	host := createHost(t, db)
	event := createEvent(t, db, host, 1)

	_, err := guesses.CreateMinuteGuess(ctx, host.ID, event.ID, intPtr(30))
	require.NoError(t, err)

	summary, err := payments.Summary(ctx, event.ID, host.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPending, summary.PaymentStatus)
	assert.Equal(t, 1.0, summary.AmountOwed)

	summary, err = payments.MarkPaid(ctx, host.ID, event.ID, host.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, summary.PaymentStatus)
	assert.Equal(t, 1.0, summary.TotalPaid)

	summary, err = payments.MarkUnpaid(ctx, host.ID, event.ID, host.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPending, summary.PaymentStatus)
}

func TestSummaryDatabaseFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "events" WHERE "events"."id" = $1 ORDER BY "events"."id" LIMIT $2`)).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "host_id", "guess_price"}).AddRow(1, 2, 1.0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "date_guesses"`)).
		WillReturnError(assert.AnError)

	_, err = NewPaymentService(db).Summary(context.Background(), 1, 3)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
