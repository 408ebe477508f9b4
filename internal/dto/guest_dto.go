package dto

type AddGuestRequest struct {
	Email string `json:"email"`
}

const (
	PaymentActionMarkPaid   = "mark_paid"
	PaymentActionMarkUnpaid = "mark_unpaid"
	PaymentActionAdd        = "add_payment"
)

type PaymentActionRequest struct {
	Action string   `json:"action"`
	Amount *float64 `json:"amount"`
}

type GuestSummary struct {
	ID            uint    `json:"id"`
	Email         *string `json:"email"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Nickname      string  `json:"nickname"`
	Phone         string  `json:"phone"`
	PaymentMethod string  `json:"payment_method"`
	AccountSummary
}

type PaymentItem struct {
	ID        uint    `json:"id"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

type GuestDetail struct {
	GuestSummary
	GuessSet
	Payments []PaymentItem `json:"payments"`
}

type PaymentActionResponse struct {
	Message string         `json:"message"`
	Summary AccountSummary `json:"summary"`
}
