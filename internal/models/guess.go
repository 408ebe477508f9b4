package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	KindDate   = "date"
	KindHour   = "hour"
	KindMinute = "minute"
	KindName   = "name"
)

// Each slot table carries a unique index over (event_id, value), so a slot
// can only ever be held by one guess.

type DateGuess struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	EventID   uint           `gorm:"not null;uniqueIndex:idx_date_guess_slot,priority:1" json:"event_id"`
	GuessDate datatypes.Date `gorm:"not null;uniqueIndex:idx_date_guess_slot,priority:2" json:"guess_date"`
	CreatedAt time.Time      `json:"created_at"`
}

type HourGuess struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_hour_guess_slot,priority:1" json:"event_id"`
	Hour      int       `gorm:"not null;uniqueIndex:idx_hour_guess_slot,priority:2" json:"hour"`
	AmPm      string    `gorm:"column:am_pm;size:2;not null;uniqueIndex:idx_hour_guess_slot,priority:3" json:"am_pm"`
	CreatedAt time.Time `json:"created_at"`
}

type MinuteGuess struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_minute_guess_slot,priority:1" json:"event_id"`
	Minute    int       `gorm:"not null;uniqueIndex:idx_minute_guess_slot,priority:2" json:"minute"`
	CreatedAt time.Time `json:"created_at"`
}

// NameGuess has no slot exclusivity; many guests may pick the same name.
type NameGuess struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	EventID   uint      `gorm:"not null;index" json:"event_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
