package dto

type DateGuessRequest struct {
	Date string `json:"date"`
}

type HourGuessRequest struct {
	Hour *int   `json:"hour"`
	AmPm string `json:"am_pm"`
}

type MinuteGuessRequest struct {
	Minute *int `json:"minute"`
}

type NameGuessRequest struct {
	Name string `json:"name"`
}

type GuessCreatedResponse struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

type GuessOwner struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
}

// GuessView is one row of a public guess listing. Only the value fields of
// its kind are set.
type GuessView struct {
	ID            uint       `json:"id"`
	Date          string     `json:"date,omitempty"`
	Hour          *int       `json:"hour,omitempty"`
	AmPm          string     `json:"am_pm,omitempty"`
	Minute        *int       `json:"minute,omitempty"`
	Name          string     `json:"name,omitempty"`
	User          GuessOwner `json:"user"`
	PaymentStatus string     `json:"payment_status"`
	IsCurrentUser bool       `json:"is_current_user"`
}

type DateGuessItem struct {
	ID   uint   `json:"id"`
	Date string `json:"date"`
}

type HourGuessItem struct {
	ID   uint   `json:"id"`
	Hour int    `json:"hour"`
	AmPm string `json:"am_pm"`
}

type MinuteGuessItem struct {
	ID     uint `json:"id"`
	Minute int  `json:"minute"`
}

type NameGuessItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// GuessSet lists one user's guesses in one event, grouped by kind.
type GuessSet struct {
	DateGuesses   []DateGuessItem   `json:"date_guesses"`
	HourGuesses   []HourGuessItem   `json:"hour_guesses"`
	MinuteGuesses []MinuteGuessItem `json:"minute_guesses"`
	NameGuesses   []NameGuessItem   `json:"name_guesses"`
}

type AccountSummary struct {
	TotalGuesses  int64   `json:"total_guesses"`
	AmountOwed    float64 `json:"amount_owed"`
	TotalPaid     float64 `json:"total_paid"`
	PaymentStatus string  `json:"payment_status"`
}

type UserGuessesResponse struct {
	GuessSet
	AccountSummary
	GuessPrice float64 `json:"guess_price"`
}
