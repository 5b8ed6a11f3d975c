package store

import (
	"encoding/json"

	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/utils"
)

const snapshotKey = "orders_snapshot"

// saveSnapshot serializes the full order list under a fixed key after
// every order write. The snapshot backs best-effort recovery when a
// status update arrives for an order missing from the live table
// (local reset, storage eviction). Failures only cost recovery ability
// for that cycle, so they are logged and swallowed.
func (s *Store) saveSnapshot() {
	orders, err := s.ListOrders()
	if err != nil {
		logStoreError("snapshot list failed: %v", err)
		return
	}
	raw, err := json.Marshal(orders)
	if err != nil {
		logStoreError("snapshot marshal failed: %v", err)
		return
	}
	entry := models.KVEntry{Key: snapshotKey, Value: string(raw)}
	if err := s.DB.Save(&entry).Error; err != nil {
		logStoreError("snapshot write failed: %v", err)
	}
}

// RecoverOrderFromSnapshot looks the order up in the most recent stored
// snapshot and, if found, reinserts it into the live table.
func (s *Store) RecoverOrderFromSnapshot(id string) (*models.Order, bool) {
	var entry models.KVEntry
	if err := s.DB.First(&entry, "key = ?", snapshotKey).Error; err != nil {
		return nil, false
	}
	var orders []models.Order
	if err := json.Unmarshal([]byte(entry.Value), &orders); err != nil {
		logStoreError("snapshot decode failed: %v", err)
		return nil, false
	}
	for i := range orders {
		if orders[i].ID == id {
			if err := s.InsertOrder(&orders[i]); err != nil {
				logStoreError("snapshot reinsert failed: %v", err)
				return nil, false
			}
			recovered, err := s.GetOrder(id)
			if err != nil {
				return nil, false
			}
			return recovered, true
		}
	}
	return nil, false
}

func logStoreError(format string, args ...interface{}) {
	if utils.ErrorLogger != nil {
		utils.ErrorLogger.Printf(format, args...)
	}
}
