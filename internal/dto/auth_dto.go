package dto

type HostRegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Nickname  string `json:"nickname"`
}

type HostLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GuestLoginRequest covers all three guest entry paths; LoginType picks one.
type GuestLoginRequest struct {
	LoginType  string `json:"login_type"`
	Email      string `json:"email"`
	EventCode  string `json:"event_code"`
	SearchTerm string `json:"search_term"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
}

type SelectEventRequest struct {
	EventID       uint   `json:"event_id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	Nickname      string `json:"nickname"`
	PaymentMethod string `json:"payment_method"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest uses pointers so absent fields are left alone.
type UpdateProfileRequest struct {
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Nickname        *string `json:"nickname"`
	Phone           *string `json:"phone"`
	PaymentMethod   *string `json:"payment_method"`
	VenmoUsername   *string `json:"venmo_username"`
	VenmoPhoneLast4 *string `json:"venmo_phone_last4"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID              uint         `json:"id"`
	Email           *string      `json:"email"`
	FirstName       string       `json:"first_name"`
	LastName        string       `json:"last_name"`
	Nickname        string       `json:"nickname"`
	Phone           string       `json:"phone"`
	IsHost          bool         `json:"is_host"`
	PaymentMethod   string       `json:"payment_method"`
	VenmoUsername   string       `json:"venmo_username,omitempty"`
	VenmoPhoneLast4 string       `json:"venmo_phone_last4,omitempty"`
	Events          []EventBrief `json:"events,omitempty"`
}

// AuthResponse is returned by host register/login: the user fields inline
// plus the issued tokens.
type AuthResponse struct {
	UserResponse
	Message      string `json:"message"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

const (
	GuestStatusLoggedIn        = "logged_in"
	GuestStatusNeedProfileInfo = "need_profile_info"
	GuestStatusNeedEvent       = "need_event"
	GuestStatusNeedUserInfo    = "need_user_info"
	GuestStatusEventsFound     = "events_found"
)

type GuestLoginResponse struct {
	Status       string       `json:"status"`
	Message      string       `json:"message"`
	UserID       uint         `json:"user_id,omitempty"`
	EventID      uint         `json:"event_id,omitempty"`
	EventTitle   string       `json:"event_title,omitempty"`
	Email        *string      `json:"email,omitempty"`
	FirstName    string       `json:"first_name,omitempty"`
	LastName     string       `json:"last_name,omitempty"`
	Nickname     string       `json:"nickname,omitempty"`
	Events       []EventBrief `json:"events,omitempty"`
	AccessToken  string       `json:"access_token,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
}

type ProfileResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type VerifyTokenResponse struct {
	Valid bool          `json:"valid"`
	User  *UserResponse `json:"user,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
