package identity

import "gorm.io/gorm"

// ForEvent filters rows by event_id.
func ForEvent(eventID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("event_id = ?", eventID)
	}
}

// ForUserInEvent filters rows owned by one user inside one event.
func ForUserInEvent(userID, eventID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("event_id = ? AND user_id = ?", eventID, userID)
	}
}
