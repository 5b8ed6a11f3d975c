package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/notifier"
	"github.com/yeremiapane/hotel-ops/utils"
)

type applyFunc func(e *Engine, env models.Envelope, ev notifier.Events) error

// applyTable maps each envelope type to its merge function.
var applyTable = map[string]applyFunc{
	models.TypeNewOrder:     applyNewOrder,
	models.TypeStatusUpdate: applyStatusUpdate,
	models.TypeNewMemo:      applyNewMemo,
	models.TypeUserAdd:      applyUserUpsert,
	models.TypeUserUpdate:   applyUserUpsert,
	models.TypeUserDelete:   applyUserDelete,
}

// Apply reconciles one inbound envelope against the local store. The
// session at delivery time is passed explicitly. With no session the
// store is still updated so nothing is lost, side effects stay silent,
// and the envelope is buffered for visible replay at next login.
func (e *Engine) Apply(env models.Envelope, sess *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sess == nil {
		e.applySilent(env)
		return
	}
	e.applyLocked(env, sess)
}

func (e *Engine) applySilent(env models.Envelope) {
	fn, ok := applyTable[env.Type]
	if !ok {
		utils.ErrorLogger.Printf("unknown envelope type %q dropped", env.Type)
		return
	}
	if err := fn(e, env, notifier.Silent{}); err != nil {
		utils.ErrorLogger.Printf("apply %s failed: %v", env.Type, err)
	}
	if err := e.store.EnqueueInbox(env); err != nil {
		utils.ErrorLogger.Printf("inbox append failed: %v", err)
	}
}

func (e *Engine) applyLocked(env models.Envelope, sess *Session) {
	fn, ok := applyTable[env.Type]
	if !ok {
		utils.ErrorLogger.Printf("unknown envelope type %q dropped", env.Type)
		return
	}
	if err := fn(e, env, e.events); err != nil {
		utils.ErrorLogger.Printf("apply %s failed: %v", env.Type, err)
	}
}

// applyNewOrder inserts an unknown order. For a known ID only memos
// are merged; scalar fields keep their local values so a device's own
// re-delivered broadcast cannot clobber concurrent local edits.
// The notification is envelope-driven rather than delta-driven so the
// logged-out replay still surfaces it; the two-second window in the
// notifier suppresses visible duplicates.
func applyNewOrder(e *Engine, env models.Envelope, ev notifier.Events) error {
	var incoming models.Order
	if err := json.Unmarshal(env.Payload, &incoming); err != nil {
		return err
	}
	if _, _, err := e.mergeOrder(&incoming, ev); err != nil {
		return err
	}
	ev.Notify(
		fmt.Sprintf("New order: %s x%d (Room %s)", incoming.ItemName, incoming.Quantity, incoming.RoomNo),
		kindForPriority(incoming.Priority),
		"all",
		soundForPriority(incoming.Priority),
	)
	return nil
}

// mergeOrder is the shared insert-or-memo-merge rule used for
// NEW_ORDER envelopes and for every order in a full-sync response.
func (e *Engine) mergeOrder(incoming *models.Order, ev notifier.Events) (inserted bool, memosAdded int, err error) {
	existing, err := e.store.GetOrder(incoming.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, err
		}
		if err := e.store.InsertOrder(incoming); err != nil {
			return false, 0, err
		}
		ev.OrderChanged(*incoming)
		return true, 0, nil
	}

	added := e.mergeMemos(existing, incoming.Memos)
	if added > 0 {
		ev.OrderChanged(*existing)
	}
	return false, added, nil
}

// mergeMemos appends incoming memos not already present under the
// logical-memo rule. Append-only union; existing memos never change.
func (e *Engine) mergeMemos(order *models.Order, incoming []models.Memo) int {
	added := 0
	for _, memo := range incoming {
		if order.HasMemo(memo) {
			continue
		}
		if err := e.store.AppendMemo(order.ID, memo); err != nil {
			utils.ErrorLogger.Printf("memo append failed for order %s: %v", order.ID, err)
			continue
		}
		memo.OrderID = order.ID
		order.Memos = append(order.Memos, memo)
		added++
	}
	return added
}

// applyStatusUpdate overwrites the progress fields with the incoming
// values: last-writer-wins, no version check (a stale delayed update
// can overwrite a newer local state; see DESIGN.md). Memos ride along
// and are merged append-only.
func applyStatusUpdate(e *Engine, env models.Envelope, ev notifier.Events) error {
	var incoming models.Order
	if err := json.Unmarshal(env.Payload, &incoming); err != nil {
		return err
	}

	existing, err := e.store.GetOrder(incoming.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		recovered, ok := e.store.RecoverOrderFromSnapshot(incoming.ID)
		if !ok {
			utils.ErrorLogger.Printf("status update for unknown order %s dropped", incoming.ID)
			return nil
		}
		existing = recovered
	}

	existing.Status = incoming.Status
	existing.AcceptedAt = incoming.AcceptedAt
	existing.InProgressAt = incoming.InProgressAt
	existing.CompletedAt = incoming.CompletedAt
	existing.AssignedTo = incoming.AssignedTo
	if err := e.store.SaveOrder(existing); err != nil {
		return err
	}
	e.mergeMemos(existing, incoming.Memos)

	ev.OrderChanged(*existing)
	ev.Notify(
		fmt.Sprintf("Order %s (Room %s) is now %s", existing.ID, existing.RoomNo, existing.Status),
		models.NotifInfo,
		"all",
		"chime",
	)
	return nil
}

// applyNewMemo appends the memo if and only if it is not a logical
// duplicate of one already on the order.
func applyNewMemo(e *Engine, env models.Envelope, ev notifier.Events) error {
	var payload models.MemoPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return err
	}

	order, err := e.store.GetOrder(payload.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorLogger.Printf("memo for unknown order %s dropped", payload.OrderID)
			return nil
		}
		return err
	}

	if !order.HasMemo(payload.Memo) {
		if err := e.store.AppendMemo(order.ID, payload.Memo); err != nil {
			return err
		}
		order.Memos = append(order.Memos, payload.Memo)
		ev.OrderChanged(*order)
	}

	ev.Notify(
		fmt.Sprintf("Memo from %s on order %s: %s", payload.Memo.SenderName, order.ID, payload.Memo.Text),
		models.NotifInfo,
		payload.Memo.SenderDept,
		"chime",
	)
	return nil
}

// applyUserUpsert mirrors USER_ADD and USER_UPDATE into the local
// staff directory. The local PIN hash is preserved; it never travels
// over the relay.
func applyUserUpsert(e *Engine, env models.Envelope, ev notifier.Events) error {
	var incoming models.StaffUser
	if err := json.Unmarshal(env.Payload, &incoming); err != nil {
		return err
	}
	if existing, err := e.store.GetStaff(incoming.ID); err == nil && incoming.PINHash == "" {
		incoming.PINHash = existing.PINHash
	}
	if err := e.store.UpsertStaff(incoming); err != nil {
		return err
	}
	ev.StaffChanged()
	ev.Notify(
		fmt.Sprintf("Staff directory updated: %s", incoming.Name),
		models.NotifInfo,
		"admin",
		"",
	)
	return nil
}

func applyUserDelete(e *Engine, env models.Envelope, ev notifier.Events) error {
	var incoming models.StaffUser
	if err := json.Unmarshal(env.Payload, &incoming); err != nil {
		return err
	}
	if err := e.store.DeleteStaff(incoming.ID); err != nil {
		return err
	}
	ev.StaffChanged()
	ev.Notify(
		fmt.Sprintf("Staff removed: %s", incoming.Name),
		models.NotifInfo,
		"admin",
		"",
	)
	return nil
}

func kindForPriority(priority string) string {
	if priority == models.PriorityUrgent {
		return models.NotifUrgent
	}
	return models.NotifInfo
}

func soundForPriority(priority string) string {
	if priority == models.PriorityUrgent {
		return "urgent"
	}
	return "chime"
}
