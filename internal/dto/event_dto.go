package dto

type CreateEventRequest struct {
	Title            *string  `json:"title"`
	MotherName       string   `json:"mother_name"`
	PartnerName      string   `json:"partner_name"`
	EventDate        string   `json:"event_date"`
	DueDate          string   `json:"due_date"`
	BabyName         string   `json:"baby_name"`
	BabyNameRevealed bool     `json:"baby_name_revealed"`
	NameGameEnabled  bool     `json:"name_game_enabled"`
	ShowHostEmail    bool     `json:"show_host_email"`
	ShowerLink       string   `json:"shower_link"`
	GuessPrice       *float64 `json:"guess_price"`
	Theme            string   `json:"theme"`
	ThemeMode        string   `json:"theme_mode"`
	GuestEmails      []string `json:"guest_emails"`
	VenmoUsername    string   `json:"venmo_username"`
	VenmoPhoneLast4  string   `json:"venmo_phone_last4"`
}

// UpdateEventRequest is a partial update; nil fields are untouched.
type UpdateEventRequest struct {
	Title            *string  `json:"title"`
	MotherName       *string  `json:"mother_name"`
	PartnerName      *string  `json:"partner_name"`
	EventDate        *string  `json:"event_date"`
	DueDate          *string  `json:"due_date"`
	BabyName         *string  `json:"baby_name"`
	BabyNameRevealed *bool    `json:"baby_name_revealed"`
	NameGameEnabled  *bool    `json:"name_game_enabled"`
	ShowHostEmail    *bool    `json:"show_host_email"`
	ShowerLink       *string  `json:"shower_link"`
	GuessPrice       *float64 `json:"guess_price"`
	Theme            *string  `json:"theme"`
	ThemeMode        *string  `json:"theme_mode"`
}

type CreateEventResponse struct {
	ID        uint   `json:"id"`
	EventCode string `json:"event_code"`
	Message   string `json:"message"`
}

// EventBrief is the list-item shape used by event lists, searches and logins.
type EventBrief struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	EventCode  string `json:"event_code,omitempty"`
	MotherName string `json:"mother_name"`
	EventDate  string `json:"event_date,omitempty"`
	DueDate    string `json:"due_date,omitempty"`
	HostName   string `json:"host_name,omitempty"`
}

type EventHost struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

// EventDetail is what the host and the event's guests see.
type EventDetail struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	EventCode        string    `json:"event_code"`
	MotherName       string    `json:"mother_name"`
	PartnerName      string    `json:"partner_name"`
	EventDate        string    `json:"event_date"`
	DueDate          string    `json:"due_date"`
	Host             EventHost `json:"host"`
	ShowerLink       string    `json:"shower_link"`
	GuessPrice       float64   `json:"guess_price"`
	ImagePath        string    `json:"image_path"`
	Theme            string    `json:"theme"`
	ThemeMode        string    `json:"theme_mode"`
	NameGameEnabled  bool      `json:"name_game_enabled"`
	BabyNameRevealed bool      `json:"baby_name_revealed"`
	BabyName         string    `json:"baby_name,omitempty"`
	ShowHostEmail    bool      `json:"show_host_email"`
	IsHost           bool      `json:"is_host"`
	CreatedAt        string    `json:"created_at"`
}

// EventPublic is the limited view for anyone outside the event.
type EventPublic struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	MotherName string `json:"mother_name"`
	EventDate  string `json:"event_date"`
	DueDate    string `json:"due_date"`
}

type EventByCodeResponse struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	MotherName string `json:"mother_name"`
	EventDate  string `json:"event_date"`
	DueDate    string `json:"due_date"`
	Host       string `json:"host"`
}

type ImageUploadResponse struct {
	Message       string `json:"message"`
	ImagePath     string `json:"image_path"`
	ThumbnailPath string `json:"thumbnail_path"`
}

type DateSlot struct {
	Date          string `json:"date"`
	Available     bool   `json:"available"`
	IsDueDate     bool   `json:"is_due_date"`
	TakenBy       string `json:"taken_by,omitempty"`
	IsCurrentUser bool   `json:"is_current_user"`
}

type DateWindowResponse struct {
	DueDate string     `json:"due_date"`
	Dates   []DateSlot `json:"dates"`
}
