package models

import "time"

// Staff roles.
const (
	RoleAdmin        = "admin"
	RoleFrontDesk    = "frontdesk"
	RoleHousekeeping = "housekeeping"
)

// StaffUser is one entry in the replicated staff directory. The PIN hash
// is local-only and never leaves the device over the relay.
type StaffUser struct {
	ID        string `gorm:"primaryKey;type:varchar(50)" json:"id"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	Dept      string `gorm:"type:varchar(30)" json:"dept"`
	Role      string `gorm:"type:varchar(20);not null" json:"role"`
	PINHash   string `gorm:"type:varchar(255)" json:"-"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
