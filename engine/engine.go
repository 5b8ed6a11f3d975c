package engine

import (
	"sync"

	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/notifier"
	"github.com/yeremiapane/hotel-ops/store"
	"github.com/yeremiapane/hotel-ops/utils"
)

// Relay is the transport the engine publishes through. Send failures
// are handled by queueing, never surfaced to the user.
type Relay interface {
	IsUp() bool
	Send(models.Envelope) error
}

// Engine is the state-replication core for one device: it dispatches
// local mutations to the relay, reconciles inbound envelopes against
// the local store, drains the offline queue on reconnect and heals
// gaps through the full-sync exchange.
type Engine struct {
	// mu stands in for the single event loop: no two of apply, drain
	// and replay ever interleave on one device.
	mu sync.Mutex

	store    *store.Store
	relay    Relay
	events   notifier.Events
	deviceID string

	sessMu sync.RWMutex
	sess   *Session
}

func New(st *store.Store, r Relay, ev notifier.Events, deviceID string) *Engine {
	return &Engine{
		store:    st,
		relay:    r,
		events:   ev,
		deviceID: deviceID,
	}
}

// Session returns the active session, or nil when logged out.
func (e *Engine) Session() *Session {
	e.sessMu.RLock()
	defer e.sessMu.RUnlock()
	return e.sess
}

// Login activates a session and replays the logged-out mailbox through
// the visible reconciler path. Store reads always hit the database, so
// everything written while logged out is already picked up.
func (e *Engine) Login(sess *Session) {
	e.sessMu.Lock()
	e.sess = sess
	e.sessMu.Unlock()
	e.ReplayInbox(sess)
}

func (e *Engine) Logout() {
	e.sessMu.Lock()
	e.sess = nil
	e.sessMu.Unlock()
}

// senderID identifies this device's envelopes: the logged-in user, or
// the device ID when no session is active.
func (e *Engine) senderID() string {
	if sess := e.Session(); sess != nil {
		return sess.UserID
	}
	return e.deviceID
}

// Publish sends one change envelope, falling back to the offline queue
// when the link is down or the send fails mid-flight. The local
// mutation has already been persisted by the caller and is never
// rolled back.
func (e *Engine) Publish(env models.Envelope) {
	if !e.relay.IsUp() {
		e.enqueue(env)
		return
	}
	if err := e.relay.Send(env); err != nil {
		utils.ErrorLogger.Printf("publish %s failed, queueing: %v", env.Type, err)
		e.enqueue(env)
	}
}

func (e *Engine) enqueue(env models.Envelope) {
	if err := e.store.EnqueueOutbound(env); err != nil {
		utils.ErrorLogger.Printf("offline queue append failed: %v", err)
	}
}

// HandleConnect runs on every successful (re)connect: drain the
// offline queue first, then request a full sync if a session is
// active.
func (e *Engine) HandleConnect() {
	e.DrainOutbound()
	if e.Session() != nil {
		e.RequestFullSync()
	}
}

// HandleEnvelope is the single inbound entry point, wired to the relay
// read pump.
func (e *Engine) HandleEnvelope(env models.Envelope) {
	switch env.Type {
	case models.TypeSyncRequest:
		e.handleSyncRequest(env)
	case models.TypeSyncResponse:
		e.handleSyncResponse(env)
	default:
		e.Apply(env, e.Session())
	}
}

// DrainOutbound replays queued envelopes in original order. A send
// failure stops the drain and keeps the remainder queued for the next
// reconnect.
func (e *Engine) DrainOutbound() {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries, err := e.store.ListOutbound()
	if err != nil {
		utils.ErrorLogger.Printf("offline queue read failed: %v", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	var lastSent uint
	sent := 0
	for _, entry := range entries {
		env, err := store.DecodeEnvelope(entry.Envelope)
		if err != nil {
			// corrupt row: drop it rather than wedge the queue
			utils.ErrorLogger.Printf("offline queue entry %d corrupt, dropping: %v", entry.Seq, err)
			lastSent = entry.Seq
			continue
		}
		if err := e.relay.Send(env); err != nil {
			utils.ErrorLogger.Printf("offline queue drain stopped at %d: %v", entry.Seq, err)
			break
		}
		lastSent = entry.Seq
		sent++
	}

	if lastSent > 0 {
		if err := e.store.DeleteOutboundThrough(lastSent); err != nil {
			utils.ErrorLogger.Printf("offline queue trim failed: %v", err)
		}
	}
	if sent > 0 {
		utils.InfoLogger.Printf("offline queue drained: %d envelopes sent", sent)
	}
}

// ReplayInbox replays envelopes captured while logged out through the
// visible reconciler path, in capture order, then clears the buffer.
func (e *Engine) ReplayInbox(sess *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries, err := e.store.ListInbox()
	if err != nil {
		utils.ErrorLogger.Printf("inbox read failed: %v", err)
		return
	}
	for _, entry := range entries {
		env, err := store.DecodeEnvelope(entry.Envelope)
		if err != nil {
			utils.ErrorLogger.Printf("inbox entry %d corrupt, dropping: %v", entry.Seq, err)
			continue
		}
		e.applyLocked(env, sess)
	}
	if err := e.store.ClearInbox(); err != nil {
		utils.ErrorLogger.Printf("inbox clear failed: %v", err)
	}
	if len(entries) > 0 {
		utils.InfoLogger.Printf("replayed %d envelopes captured while logged out", len(entries))
	}
}
