package engine

import (
	"encoding/json"
	"fmt"

	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/notifier"
	"github.com/yeremiapane/hotel-ops/utils"
)

// RequestFullSync asks every peer for its complete order list. Safe to
// run on every reconnect: responses merge through the insert-only
// NEW_ORDER rule, so a stale peer can never downgrade local state. A
// failed request is not queued; the next reconnect repeats it.
func (e *Engine) RequestFullSync() {
	env := models.NewEnvelope(models.TypeSyncRequest, nil, e.senderID())
	if err := e.relay.Send(env); err != nil {
		utils.ErrorLogger.Printf("full-sync request failed: %v", err)
	}
}

// handleSyncRequest answers a peer's request with the full local order
// list. Only devices with an active session respond.
func (e *Engine) handleSyncRequest(env models.Envelope) {
	sess := e.Session()
	if sess == nil || env.SenderID == e.senderID() {
		return
	}

	orders, err := e.store.ListOrders()
	if err != nil {
		utils.ErrorLogger.Printf("full-sync list failed: %v", err)
		return
	}
	resp := models.NewEnvelope(
		models.TypeSyncResponse,
		models.SyncResponsePayload{Orders: orders},
		e.senderID(),
	)
	if err := e.relay.Send(resp); err != nil {
		utils.ErrorLogger.Printf("full-sync response failed: %v", err)
	}
}

// handleSyncResponse merges a peer's full order list, one order at a
// time, through the NEW_ORDER rule. Locally known orders keep their
// scalar fields; only genuinely new orders and memos surface to the
// UI.
func (e *Engine) handleSyncResponse(env models.Envelope) {
	if env.SenderID == e.senderID() {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var payload models.SyncResponsePayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		utils.ErrorLogger.Printf("full-sync response decode failed: %v", err)
		return
	}

	ev := notifier.Events(notifier.Silent{})
	if e.Session() != nil {
		ev = e.events
	}

	inserted := 0
	for i := range payload.Orders {
		wasNew, _, err := e.mergeOrder(&payload.Orders[i], ev)
		if err != nil {
			utils.ErrorLogger.Printf("full-sync merge failed for order %s: %v", payload.Orders[i].ID, err)
			continue
		}
		if wasNew {
			inserted++
		}
	}

	if inserted > 0 {
		ev.Notify(
			fmt.Sprintf("Synced %d new orders from peers", inserted),
			models.NotifInfo,
			"all",
			"",
		)
	}
	utils.InfoLogger.Printf("full-sync merged %d orders from %s (%d new)", len(payload.Orders), env.SenderID, inserted)
}
