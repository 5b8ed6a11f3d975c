package notifier

import (
	"time"

	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/store"
	"github.com/yeremiapane/hotel-ops/utils"
)

// NotifDedupWindow suppresses identical notifications arriving in quick
// succession (re-delivered envelopes, self-echo through full-sync).
const NotifDedupWindow = 2 * time.Second

// Events receives the user-visible side effects of the reconciler. The
// engine does not know how they are rendered.
type Events interface {
	Notify(message, kind, dept, sound string)
	OrderChanged(order models.Order)
	StaffChanged()
}

// Silent swallows every side effect; it backs the logged-out path.
type Silent struct{}

func (Silent) Notify(message, kind, dept, sound string) {}
func (Silent) OrderChanged(order models.Order)          {}
func (Silent) StaffChanged()                            {}

// StaffNotifier persists notification history and pushes events to the
// local dashboard clients over the websocket hub.
type StaffNotifier struct {
	Store *store.Store
}

func NewStaffNotifier(st *store.Store) *StaffNotifier {
	return &StaffNotifier{Store: st}
}

func (n *StaffNotifier) Notify(message, kind, dept, sound string) {
	dup, err := n.Store.HasRecentNotification(message, kind, dept, NotifDedupWindow)
	if err != nil {
		utils.ErrorLogger.Printf("notification dedup check failed: %v", err)
	}
	if dup {
		return
	}

	notif := models.Notification{
		Message:   message,
		Kind:      kind,
		Dept:      dept,
		Sound:     sound,
		CreatedAt: time.Now(),
	}
	if err := n.Store.AddNotification(&notif); err != nil {
		utils.ErrorLogger.Printf("notification write failed: %v", err)
	}
	BroadcastStaffNotification(notif)
}

func (n *StaffNotifier) OrderChanged(order models.Order) {
	BroadcastOrderUpdate(order)
}

func (n *StaffNotifier) StaffChanged() {
	BroadcastStaffUpdate()
}
