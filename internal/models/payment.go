package models

import "time"

// Payment is a host-recorded payment line for one guest in one event.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_payment_owner,priority:2" json:"user_id"`
	EventID   uint      `gorm:"not null;index:idx_payment_owner,priority:1" json:"event_id"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
