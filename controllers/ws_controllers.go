package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/hotel-ops/engine"
	"github.com/yeremiapane/hotel-ops/notifier"
	"github.com/yeremiapane/hotel-ops/relay"
	"github.com/yeremiapane/hotel-ops/store"
	"github.com/yeremiapane/hotel-ops/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local dashboard only
	},
}

// DashboardWSHandler -> event stream for the rendering layer on this
// device (order updates, notifications, link state).
func DashboardWSHandler(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	role := roleInterface.(string)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	notifier.RegisterClient(ws, role)

	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			break
		}
	}

	notifier.UnregisterClient(ws)
}

type StatusController struct {
	Store  *store.Store
	Relay  *relay.Client
	Engine *engine.Engine
}

func NewStatusController(st *store.Store, rc *relay.Client, eng *engine.Engine) *StatusController {
	return &StatusController{Store: st, Relay: rc, Engine: eng}
}

// GetStatus -> link state and queue depths for the dashboard header
func (sc *StatusController) GetStatus(c *gin.Context) {
	outbound, _ := sc.Store.OutboundLen()
	inbox, _ := sc.Store.InboxLen()

	utils.RespondJSON(c, http.StatusOK, "Engine status", gin.H{
		"link_up":        sc.Relay.IsUp(),
		"session_active": sc.Engine.Session() != nil,
		"outbound_queue": outbound,
		"inbox_buffer":   inbox,
	})
}

// Reconnect -> forwards OS online / focus signals from the UI layer to
// the connection manager so it retries without waiting out the backoff
func (sc *StatusController) Reconnect(c *gin.Context) {
	sc.Relay.Nudge()
	utils.RespondJSON(c, http.StatusOK, "Reconnect requested", nil)
}
