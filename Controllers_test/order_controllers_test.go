package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/hotel-ops/controllers"
	"github.com/yeremiapane/hotel-ops/engine"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/notifier"
	"github.com/yeremiapane/hotel-ops/store"
	"github.com/yeremiapane/hotel-ops/utils"
)

// fakeRelay stands in for the relay client; it records what the
// controllers publish.
type fakeRelay struct {
	mu   sync.Mutex
	up   bool
	sent []models.Envelope
}

func (r *fakeRelay) IsUp() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.up
}

func (r *fakeRelay) Send(env models.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, env)
	return nil
}

func (r *fakeRelay) sentTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.sent))
	for _, env := range r.sent {
		types = append(types, env.Type)
	}
	return types
}

// withSession injects the context keys the auth middleware would set.
func withSession(userID, name, dept, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userName", name)
		c.Set("userDept", dept)
		c.Set("role", role)
		c.Next()
	}
}

func setupTestDBForOrders() *store.Store {
	db, err := gorm.Open(sqlite.Open("file:ctrlorders?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		panic(err)
	}
	return st
}

func setupOrderRouter(st *store.Store, relay *fakeRelay) *gin.Engine {
	gin.SetMode(gin.TestMode)
	eng := engine.New(st, relay, notifier.NewStaffNotifier(st), "test-device")

	router := gin.Default()
	router.Use(withSession("alice", "Alice", "frontdesk", models.RoleFrontDesk))
	orderCtrl := controllers.NewOrderController(st, eng)
	router.POST("/orders", orderCtrl.CreateOrder)
	router.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	router.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	router.POST("/orders/:order_id/memos", orderCtrl.AddMemo)
	return router
}

func TestCreateAndGetOrder(t *testing.T) {
	utils.InitLogger()
	st := setupTestDBForOrders()
	relay := &fakeRelay{up: true}
	router := setupOrderRouter(st, relay)

	payload := map[string]interface{}{
		"room_no":   "204",
		"item_name": "Extra Towels",
		"quantity":  2,
		"priority":  "URGENT",
		"memo":      "guest waiting in lobby",
	}
	payloadBytes, err := json.Marshal(payload)
	assert.NoError(t, err)

	req, err := http.NewRequest("POST", "/orders", bytes.NewBuffer(payloadBytes))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var createResp map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &createResp)
	assert.NoError(t, err)
	assert.Equal(t, "Order created", createResp["message"])
	data := createResp["data"].(map[string]interface{})
	orderID, ok := data["id"].(string)
	assert.True(t, ok)
	assert.Equal(t, models.StatusRequested, data["status"])
	assert.Equal(t, "alice", data["created_by"])

	// the mutation went out as NEW_ORDER
	assert.Equal(t, []string{models.TypeNewOrder}, relay.sentTypes())

	req, err = http.NewRequest("GET", "/orders/"+orderID, nil)
	assert.NoError(t, err)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var getResp map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &getResp)
	assert.NoError(t, err)
	assert.Equal(t, "Order detail", getResp["message"])
	getData := getResp["data"].(map[string]interface{})
	assert.Equal(t, orderID, getData["id"])
	memos := getData["memos"].([]interface{})
	assert.Len(t, memos, 1)
}

func TestCreateOrderQueuesWhileOffline(t *testing.T) {
	utils.InitLogger()
	st := setupTestDBForOrders()
	relay := &fakeRelay{up: false}
	router := setupOrderRouter(st, relay)

	payload := map[string]interface{}{
		"room_no":   "310",
		"item_name": "Bottled Water",
	}
	payloadBytes, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", "/orders", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// the local write succeeds even with the link down
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, relay.sentTypes())

	queued, err := st.OutboundLen()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), queued)
}

func TestUpdateOrderStatusLifecycle(t *testing.T) {
	utils.InitLogger()
	st := setupTestDBForOrders()
	relay := &fakeRelay{up: true}
	router := setupOrderRouter(st, relay)

	payloadBytes, _ := json.Marshal(map[string]interface{}{
		"room_no":   "118",
		"item_name": "Iron",
	})
	req, _ := http.NewRequest("POST", "/orders", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	var createResp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &createResp)
	orderID := createResp["data"].(map[string]interface{})["id"].(string)

	statusBytes, _ := json.Marshal(map[string]interface{}{
		"status": models.StatusAccepted,
		"memo":   "on my way",
	})
	req, _ = http.NewRequest("PATCH", "/orders/"+orderID+"/status", bytes.NewBuffer(statusBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var updateResp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &updateResp)
	data := updateResp["data"].(map[string]interface{})
	assert.Equal(t, models.StatusAccepted, data["status"])
	assert.Equal(t, "alice", data["assigned_to"])
	assert.NotNil(t, data["accepted_at"])

	assert.Equal(t, []string{models.TypeNewOrder, models.TypeStatusUpdate}, relay.sentTypes())
}

func TestUpdateOrderStatusRejectsInvalidMove(t *testing.T) {
	utils.InitLogger()
	st := setupTestDBForOrders()
	relay := &fakeRelay{up: true}
	router := setupOrderRouter(st, relay)

	payloadBytes, _ := json.Marshal(map[string]interface{}{
		"room_no":   "501",
		"item_name": "Blanket",
	})
	req, _ := http.NewRequest("POST", "/orders", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var createResp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &createResp)
	orderID := createResp["data"].(map[string]interface{})["id"].(string)

	// REQUESTED cannot jump straight back to REQUESTED
	statusBytes, _ := json.Marshal(map[string]interface{}{"status": models.StatusRequested})
	req, _ = http.NewRequest("PATCH", "/orders/"+orderID+"/status", bytes.NewBuffer(statusBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{models.TypeNewOrder}, relay.sentTypes())
}

func TestAddMemoPublishesNewMemo(t *testing.T) {
	utils.InitLogger()
	st := setupTestDBForOrders()
	relay := &fakeRelay{up: true}
	router := setupOrderRouter(st, relay)

	payloadBytes, _ := json.Marshal(map[string]interface{}{
		"room_no":   "222",
		"item_name": "Toothbrush",
	})
	req, _ := http.NewRequest("POST", "/orders", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var createResp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &createResp)
	orderID := createResp["data"].(map[string]interface{})["id"].(string)

	memoBytes, _ := json.Marshal(map[string]interface{}{"text": "left at the door"})
	req, _ = http.NewRequest("POST", "/orders/"+orderID+"/memos", bytes.NewBuffer(memoBytes))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{models.TypeNewOrder, models.TypeNewMemo}, relay.sentTypes())

	order, err := st.GetOrder(orderID)
	assert.NoError(t, err)
	assert.Len(t, order.Memos, 1)
	assert.Equal(t, "left at the door", order.Memos[0].Text)
}
