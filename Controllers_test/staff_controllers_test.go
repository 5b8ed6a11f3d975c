package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func setupTestDBForStaff(name string) *store.Store {
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		panic(err)
	}
	return st
}

func setupStaffRouter(st *store.Store, relay *fakeRelay, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	eng := engine.New(st, relay, notifier.NewStaffNotifier(st), "test-device")

	router := gin.Default()
	router.Use(withSession("admin1", "Admin", "management", role))
	staffCtrl := controllers.NewStaffController(st, eng)
	router.GET("/staff", staffCtrl.GetAllStaff)
	router.POST("/staff", staffCtrl.CreateStaff)
	router.PATCH("/staff/:staff_id", staffCtrl.UpdateStaff)
	router.DELETE("/staff/:staff_id", staffCtrl.DeleteStaff)
	return router
}

func TestCreateStaffAsAdmin(t *testing.T) {
	utils.InitLogger()
	st := setupTestDBForStaff("staffcreate")
	relay := &fakeRelay{up: true}
	router := setupStaffRouter(st, relay, models.RoleAdmin)

	payloadBytes, _ := json.Marshal(map[string]string{
		"id":   "carol",
		"name": "Carol",
		"dept": "housekeeping",
		"role": models.RoleHousekeeping,
		"pin":  "4321",
	})
	req, _ := http.NewRequest("POST", "/staff", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{models.TypeUserAdd}, relay.sentTypes())

	user, err := st.GetStaff("carol")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleHousekeeping, user.Role)
	assert.NotEmpty(t, user.PINHash)

	// the replicated envelope carries no PIN hash
	var payload map[string]interface{}
	err = json.Unmarshal(relay.sent[0].Payload, &payload)
	assert.NoError(t, err)
	_, leaked := payload["pin_hash"]
	assert.False(t, leaked)
}

func TestCreateStaffForbiddenForNonAdmin(t *testing.T) {
	utils.InitLogger()
	st := setupTestDBForStaff("staffforbidden")
	relay := &fakeRelay{up: true}
	router := setupStaffRouter(st, relay, models.RoleFrontDesk)

	payloadBytes, _ := json.Marshal(map[string]string{
		"id":   "carol",
		"name": "Carol",
		"role": models.RoleHousekeeping,
		"pin":  "4321",
	})
	req, _ := http.NewRequest("POST", "/staff", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, relay.sentTypes())
}

func TestUpdateStaffChangesRole(t *testing.T) {
	utils.InitLogger()
	st := setupTestDBForStaff("staffupdate")
	relay := &fakeRelay{up: true}
	router := setupStaffRouter(st, relay, models.RoleAdmin)

	assert.NoError(t, st.UpsertStaff(models.StaffUser{
		ID: "dave", Name: "Dave", Dept: "frontdesk", Role: models.RoleFrontDesk, PINHash: "hash",
	}))

	payloadBytes, _ := json.Marshal(map[string]string{"role": models.RoleAdmin})
	req, _ := http.NewRequest("PATCH", "/staff/dave", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{models.TypeUserUpdate}, relay.sentTypes())

	user, err := st.GetStaff("dave")
	assert.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	// untouched fields survive the partial update
	assert.Equal(t, "Dave", user.Name)
	assert.Equal(t, "hash", user.PINHash)
}

func TestDeleteStaff(t *testing.T) {
	utils.InitLogger()
	st := setupTestDBForStaff("staffdelete")
	relay := &fakeRelay{up: true}
	router := setupStaffRouter(st, relay, models.RoleAdmin)

	assert.NoError(t, st.UpsertStaff(models.StaffUser{
		ID: "erin", Name: "Erin", Dept: "housekeeping", Role: models.RoleHousekeeping,
	}))

	req, _ := http.NewRequest("DELETE", "/staff/erin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{models.TypeUserDelete}, relay.sentTypes())

	_, err := st.GetStaff("erin")
	assert.Error(t, err)

	req, _ = http.NewRequest("GET", "/staff", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Empty(t, resp["data"])
}
