package store

import (
	"encoding/json"

	"github.com/yeremiapane/hotel-ops/models"
)

// EnqueueOutbound appends an envelope to the offline queue, evicting
// the oldest entries past capacity.
func (s *Store) EnqueueOutbound(env models.Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := s.DB.Create(&models.OutboundEntry{Envelope: string(raw)}).Error; err != nil {
		return err
	}
	return s.trimQueue(&models.OutboundEntry{})
}

// ListOutbound returns the queued envelopes in original order together
// with their sequence numbers.
func (s *Store) ListOutbound() ([]models.OutboundEntry, error) {
	var entries []models.OutboundEntry
	err := s.DB.Order("seq ASC").Find(&entries).Error
	return entries, err
}

// DeleteOutboundThrough removes all entries up to and including seq.
func (s *Store) DeleteOutboundThrough(seq uint) error {
	return s.DB.Delete(&models.OutboundEntry{}, "seq <= ?", seq).Error
}

func (s *Store) OutboundLen() (int64, error) {
	var count int64
	err := s.DB.Model(&models.OutboundEntry{}).Count(&count).Error
	return count, err
}

// EnqueueInbox buffers an envelope received while logged out.
func (s *Store) EnqueueInbox(env models.Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := s.DB.Create(&models.InboxEntry{Envelope: string(raw)}).Error; err != nil {
		return err
	}
	return s.trimQueue(&models.InboxEntry{})
}

// ListInbox returns the buffered envelopes in capture order.
func (s *Store) ListInbox() ([]models.InboxEntry, error) {
	var entries []models.InboxEntry
	err := s.DB.Order("seq ASC").Find(&entries).Error
	return entries, err
}

func (s *Store) ClearInbox() error {
	return s.DB.Where("1 = 1").Delete(&models.InboxEntry{}).Error
}

func (s *Store) InboxLen() (int64, error) {
	var count int64
	err := s.DB.Model(&models.InboxEntry{}).Count(&count).Error
	return count, err
}

// trimQueue drops the oldest rows of model until it fits the capacity.
func (s *Store) trimQueue(model interface{}) error {
	var count int64
	if err := s.DB.Model(model).Count(&count).Error; err != nil {
		return err
	}
	excess := count - models.QueueCapacity
	if excess <= 0 {
		return nil
	}
	var seqs []uint
	if err := s.DB.Model(model).Order("seq ASC").Limit(int(excess)).Pluck("seq", &seqs).Error; err != nil {
		return err
	}
	return s.DB.Delete(model, "seq IN ?", seqs).Error
}

// DecodeEnvelope unpacks one persisted queue row.
func DecodeEnvelope(raw string) (models.Envelope, error) {
	var env models.Envelope
	err := json.Unmarshal([]byte(raw), &env)
	return env, err
}
