package models

import "time"

// QueueCapacity bounds both persisted mailboxes. When a queue is full
// the oldest entry is evicted.
const QueueCapacity = 1000

// OutboundEntry is one not-yet-sent envelope in the offline queue,
// replayed in seq order when the link comes back.
type OutboundEntry struct {
	Seq       uint   `gorm:"primaryKey;autoIncrement"`
	Envelope  string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// InboxEntry is one envelope received while no session was active,
// replayed through the visible reconciler path at next login.
type InboxEntry struct {
	Seq       uint   `gorm:"primaryKey;autoIncrement"`
	Envelope  string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// KVEntry is a fixed-key blob slot; used for the order-list snapshot
// that backs best-effort recovery of status updates for unknown orders.
type KVEntry struct {
	Key       string `gorm:"primaryKey;type:varchar(50)"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}
