package models

import (
	"encoding/json"
	"time"
)

// Envelope types carried over the relay channel.
const (
	TypeNewOrder      = "NEW_ORDER"
	TypeStatusUpdate  = "STATUS_UPDATE"
	TypeNewMemo       = "NEW_MEMO"
	TypeUserAdd       = "USER_ADD"
	TypeUserUpdate    = "USER_UPDATE"
	TypeUserDelete    = "USER_DELETE"
	TypeSyncRequest  = "request_all_orders"
	TypeSyncResponse = "all_orders_response"
)

// Envelope is the wire wrapper for one replicated change. Timestamp is
// the ISO-8601 origination time; it is used for display and dedup
// heuristics only, never as a total order.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	SenderID  string          `json:"senderId"`
	Timestamp string          `json:"timestamp"`
}

// MemoPayload carries a NEW_MEMO change.
type MemoPayload struct {
	OrderID string `json:"order_id"`
	Memo    Memo   `json:"memo"`
}

// SyncResponsePayload carries the full order list of one peer.
type SyncResponsePayload struct {
	Orders []Order `json:"orders"`
}

// NewEnvelope wraps payload into an envelope stamped with the current
// time. Marshal errors cannot occur for the payload types used here, so
// the raw payload is left empty on failure rather than propagating an
// error through every publish site.
func NewEnvelope(envType string, payload interface{}, senderID string) Envelope {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = nil
	}
	return Envelope{
		Type:      envType,
		Payload:   raw,
		SenderID:  senderID,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}
