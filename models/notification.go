package models

import (
	"time"
)

// Notification severity values.
const (
	NotifInfo    = "info"
	NotifSuccess = "success"
	NotifWarning = "warning"
	NotifUrgent  = "urgent"
)

// Notification is one row of the local notification history. A
// notification with identical message, kind and dept within two seconds
// of an existing row is suppressed before it reaches this table.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Kind      string    `gorm:"type:varchar(20)" json:"kind"`
	Dept      string    `gorm:"type:varchar(30)" json:"dept"`
	Sound     string    `gorm:"type:varchar(30)" json:"sound"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
