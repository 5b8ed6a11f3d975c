package models

import (
	"time"
)

// Order status values.
const (
	StatusRequested  = "REQUESTED"
	StatusAccepted   = "ACCEPTED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

// Order priority values.
const (
	PriorityNormal = "NORMAL"
	PriorityUrgent = "URGENT"
)

// Order is one service request raised by hotel staff for a room.
// The ID is assigned by the creating device (YYYYMMDD_<seq>, sequence
// computed from the locally visible order set for that day).
type Order struct {
	ID           string     `gorm:"primaryKey;type:varchar(32)" json:"id"`
	RoomNo       string     `gorm:"type:varchar(10);not null" json:"room_no"`
	ItemName     string     `gorm:"type:varchar(100);not null" json:"item_name"`
	Quantity     int        `gorm:"not null;default:1" json:"quantity"`
	Priority     string     `gorm:"type:varchar(10);not null;default:'NORMAL'" json:"priority"`
	Status       string     `gorm:"type:varchar(20);not null;default:'REQUESTED'" json:"status"`
	RequestedAt  time.Time  `gorm:"not null" json:"requested_at"`
	AcceptedAt   *time.Time `json:"accepted_at,omitempty"`
	InProgressAt *time.Time `json:"in_progress_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedBy    string     `gorm:"type:varchar(50)" json:"created_by"`
	AssignedTo   string     `gorm:"type:varchar(50)" json:"assigned_to,omitempty"`
	Memos        []Memo     `gorm:"foreignKey:OrderID" json:"memos"`
}

// HasMemo reports whether m is already present in the order's memo list
// under the logical-memo equivalence rule.
func (o *Order) HasMemo(m Memo) bool {
	for _, existing := range o.Memos {
		if SameLogicalMemo(existing, m) {
			return true
		}
	}
	return false
}
