package notifier

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/hotel-ops/models"
)

// Event types pushed to connected dashboard clients.
const (
	EventOrderUpdate = "order_update"
	EventStaffNotif  = "staff_notification"
	EventStaffUpdate = "staff_update"
	EventLinkState   = "link_state"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every locally connected dashboard client (front desk,
// housekeeping, admin screens on this device).
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

var uiHub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient -> adds a connection to the set with its role
func RegisterClient(conn *websocket.Conn, role string) {
	uiHub.mutex.Lock()
	defer uiHub.mutex.Unlock()
	uiHub.clients[conn] = role
}

// UnregisterClient -> releases a connection
func UnregisterClient(conn *websocket.Conn) {
	uiHub.mutex.Lock()
	defer uiHub.mutex.Unlock()
	delete(uiHub.clients, conn)
	conn.Close()
}

// BroadcastOrderUpdate -> pushes a changed order to every client
func BroadcastOrderUpdate(order models.Order) {
	broadcast(Message{
		Event: EventOrderUpdate,
		Data:  order,
	})
}

// BroadcastStaffNotification -> pushes one notification row
func BroadcastStaffNotification(notif models.Notification) {
	broadcast(Message{
		Event: EventStaffNotif,
		Data:  notif,
	})
}

// BroadcastStaffUpdate -> staff directory changed
func BroadcastStaffUpdate() {
	broadcast(Message{
		Event: EventStaffUpdate,
		Data:  nil,
	})
}

// BroadcastLinkState -> relay link went up or down
func BroadcastLinkState(up bool) {
	broadcast(Message{
		Event: EventLinkState,
		Data:  map[string]bool{"up": up},
	})
}

func broadcast(msg Message) {
	uiHub.mutex.Lock()
	defer uiHub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	for conn := range uiHub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending message to client: %v", err)
			continue
		}
	}
}
