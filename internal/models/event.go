package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event is one baby shower. Guests are linked through EventGuest.
type Event struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	EventCode        string         `gorm:"size:10;uniqueIndex;not null" json:"event_code"`
	Title            string         `gorm:"size:255;not null" json:"title"`
	HostID           uint           `gorm:"not null;index" json:"host_id"`
	Host             User           `gorm:"foreignKey:HostID" json:"-"`
	MotherName       string         `gorm:"size:100;not null;index" json:"mother_name"`
	PartnerName      string         `gorm:"size:100" json:"partner_name"`
	EventDate        datatypes.Date `gorm:"not null" json:"event_date"`
	DueDate          datatypes.Date `json:"due_date"`
	BabyName         string         `gorm:"size:100" json:"baby_name"`
	BabyNameRevealed bool           `gorm:"not null;default:false" json:"baby_name_revealed"`
	NameGameEnabled  bool           `gorm:"not null;default:false" json:"name_game_enabled"`
	ShowHostEmail    bool           `gorm:"not null;default:false" json:"show_host_email"`
	ShowerLink       string         `gorm:"size:255" json:"shower_link"`
	GuessPrice       float64        `gorm:"not null" json:"guess_price"`
	ImagePath        string         `gorm:"size:255" json:"image_path"`
	Theme            string         `gorm:"size:50" json:"theme"`
	ThemeMode        string         `gorm:"size:10" json:"theme_mode"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// EventGuest is the guest membership join row.
type EventGuest struct {
	EventID   uint      `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time
}

func (EventGuest) TableName() string {
	return "event_guests"
}
