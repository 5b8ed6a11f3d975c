package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/hotel-ops/models"
)

// Store is the durable owner of all entity state on one device: the
// order set, the staff directory, notification history and both
// persisted mailboxes. Storage failures are returned to callers, which
// log and degrade; nothing here is fatal.
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) AutoMigrate() error {
	return s.DB.AutoMigrate(
		&models.Order{},
		&models.Memo{},
		&models.StaffUser{},
		&models.Notification{},
		&models.OutboundEntry{},
		&models.InboxEntry{},
		&models.KVEntry{},
	)
}

// GetOrder fetches one order with its memo list, oldest memo first.
func (s *Store) GetOrder(id string) (*models.Order, error) {
	var order models.Order
	err := s.DB.Preload("Memos", func(db *gorm.DB) *gorm.DB {
		return db.Order("timestamp ASC")
	}).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the full order set, newest request first.
func (s *Store) ListOrders() ([]models.Order, error) {
	var orders []models.Order
	err := s.DB.Preload("Memos", func(db *gorm.DB) *gorm.DB {
		return db.Order("timestamp ASC")
	}).Order("requested_at DESC").Find(&orders).Error
	return orders, err
}

// InsertOrder creates a new order together with any memos attached at
// creation time, then refreshes the recovery snapshot.
func (s *Store) InsertOrder(order *models.Order) error {
	for i := range order.Memos {
		order.Memos[i].OrderID = order.ID
	}
	if err := s.DB.Create(order).Error; err != nil {
		return err
	}
	s.saveSnapshot()
	return nil
}

// SaveOrder persists the order's scalar fields. Memos are append-only
// and written through AppendMemo, never here.
func (s *Store) SaveOrder(order *models.Order) error {
	err := s.DB.Model(&models.Order{}).Where("id = ?", order.ID).
		Select("Status", "AcceptedAt", "InProgressAt", "CompletedAt", "AssignedTo", "Priority").
		Updates(map[string]interface{}{
			"status":         order.Status,
			"accepted_at":    order.AcceptedAt,
			"in_progress_at": order.InProgressAt,
			"completed_at":   order.CompletedAt,
			"assigned_to":    order.AssignedTo,
			"priority":       order.Priority,
		}).Error
	if err != nil {
		return err
	}
	s.saveSnapshot()
	return nil
}

// AppendMemo adds one memo to an order. Dedup decisions belong to the
// reconciler; this is a plain append.
func (s *Store) AppendMemo(orderID string, memo models.Memo) error {
	memo.OrderID = orderID
	if err := s.DB.Create(&memo).Error; err != nil {
		return err
	}
	s.saveSnapshot()
	return nil
}

// NextOrderID computes the creating-device order ID for now: the date
// prefix plus one past the highest sequence visible locally for that
// day. Two offline devices can collide here; see DESIGN.md.
func (s *Store) NextOrderID(now time.Time) (string, error) {
	prefix := now.Format("20060102")
	var ids []string
	if err := s.DB.Model(&models.Order{}).
		Where("id LIKE ?", prefix+"_%").
		Pluck("id", &ids).Error; err != nil {
		return "", err
	}
	maxSeq := 0
	for _, id := range ids {
		rest := strings.TrimPrefix(id, prefix+"_")
		if seq, err := strconv.Atoi(rest); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s_%d", prefix, maxSeq+1), nil
}

// UpsertStaff inserts or replaces one staff directory entry.
func (s *Store) UpsertStaff(user models.StaffUser) error {
	return s.DB.Save(&user).Error
}

func (s *Store) GetStaff(id string) (*models.StaffUser, error) {
	var user models.StaffUser
	if err := s.DB.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) ListStaff() ([]models.StaffUser, error) {
	var users []models.StaffUser
	err := s.DB.Order("name ASC").Find(&users).Error
	return users, err
}

func (s *Store) DeleteStaff(id string) error {
	return s.DB.Delete(&models.StaffUser{}, "id = ?", id).Error
}

// AddNotification appends one row to the notification history.
func (s *Store) AddNotification(n *models.Notification) error {
	return s.DB.Create(n).Error
}

// HasRecentNotification reports whether an identical notification
// already exists within the dedup window ending at now.
func (s *Store) HasRecentNotification(message, kind, dept string, window time.Duration) (bool, error) {
	var count int64
	cutoff := time.Now().Add(-window)
	err := s.DB.Model(&models.Notification{}).
		Where("message = ? AND kind = ? AND dept = ? AND created_at > ?", message, kind, dept, cutoff).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) ListNotifications(limit int) ([]models.Notification, error) {
	var notifs []models.Notification
	err := s.DB.Order("created_at DESC").Limit(limit).Find(&notifs).Error
	return notifs, err
}
