package models

import (
	"strings"
	"time"
)

// MemoDedupWindow is the timestamp proximity under which two memos with
// the same text and sender are treated as one logical memo. Client-side
// memo IDs are generated independently, so the same user action can show
// up twice (self-echo via full-sync, or relay re-delivery) under two
// different IDs.
const MemoDedupWindow = 5000 * time.Millisecond

// Memo is an annotation attached to an order. Once merged into an
// order's memo list it is never mutated or removed.
type Memo struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	OrderID    string    `gorm:"index;type:varchar(32);not null" json:"order_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	SenderID   string    `gorm:"type:varchar(50)" json:"sender_id"`
	SenderName string    `gorm:"type:varchar(100)" json:"sender_name"`
	SenderDept string    `gorm:"type:varchar(30)" json:"sender_dept"`
	Timestamp  time.Time `gorm:"not null" json:"timestamp"`
}

// SameLogicalMemo reports whether a and b describe the same logical memo:
// equal IDs, or equal trimmed text and sender with timestamps closer than
// MemoDedupWindow.
func SameLogicalMemo(a, b Memo) bool {
	if a.ID != "" && a.ID == b.ID {
		return true
	}
	if strings.TrimSpace(a.Text) != strings.TrimSpace(b.Text) {
		return false
	}
	if a.SenderID != b.SenderID {
		return false
	}
	diff := a.Timestamp.Sub(b.Timestamp)
	if diff < 0 {
		diff = -diff
	}
	return diff < MemoDedupWindow
}
