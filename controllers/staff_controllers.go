package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yeremiapane/hotel-ops/engine"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/notifier"
	"github.com/yeremiapane/hotel-ops/store"
	"github.com/yeremiapane/hotel-ops/utils"
)

// ErrNoPermission is returned for role failures on staff endpoints.
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

type StaffController struct {
	Store  *store.Store
	Engine *engine.Engine
}

func NewStaffController(st *store.Store, eng *engine.Engine) *StaffController {
	return &StaffController{Store: st, Engine: eng}
}

// GetAllStaff -> the replicated staff directory
func (sc *StaffController) GetAllStaff(c *gin.Context) {
	users, err := sc.Store.ListStaff()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All staff", users)
}

// CreateStaff -> admin only; the PIN hash stays local, the directory
// entry replicates via USER_ADD.
func (sc *StaffController) CreateStaff(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil || sess.Role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	type reqBody struct {
		ID   string `json:"id" binding:"required"`
		Name string `json:"name" binding:"required"`
		Dept string `json:"dept"`
		Role string `json:"role" binding:"required"`
		PIN  string `json:"pin" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.PIN), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.StaffUser{
		ID:      body.ID,
		Name:    body.Name,
		Dept:    body.Dept,
		Role:    body.Role,
		PINHash: string(hashed),
	}
	if err := sc.Store.UpsertStaff(user); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	notifier.BroadcastStaffUpdate()
	sc.Engine.Publish(models.NewEnvelope(models.TypeUserAdd, user, sess.UserID))

	utils.InfoLogger.Printf("Staff added: %s (role=%s)", user.ID, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "Staff added", user)
}

// UpdateStaff -> admin only
func (sc *StaffController) UpdateStaff(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil || sess.Role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	user, err := sc.Store.GetStaff(c.Param("staff_id"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		Name *string `json:"name"`
		Dept *string `json:"dept"`
		Role *string `json:"role"`
		PIN  *string `json:"pin"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.Name != nil {
		user.Name = *body.Name
	}
	if body.Dept != nil {
		user.Dept = *body.Dept
	}
	if body.Role != nil {
		user.Role = *body.Role
	}
	if body.PIN != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*body.PIN), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		user.PINHash = string(hashed)
	}

	if err := sc.Store.UpsertStaff(*user); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	notifier.BroadcastStaffUpdate()
	sc.Engine.Publish(models.NewEnvelope(models.TypeUserUpdate, user, sess.UserID))

	utils.RespondJSON(c, http.StatusOK, "Staff updated", user)
}

// DeleteStaff -> admin only
func (sc *StaffController) DeleteStaff(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil || sess.Role != models.RoleAdmin {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	id := c.Param("staff_id")
	user, err := sc.Store.GetStaff(id)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("unknown staff id"))
		return
	}

	if err := sc.Store.DeleteStaff(id); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	notifier.BroadcastStaffUpdate()
	sc.Engine.Publish(models.NewEnvelope(models.TypeUserDelete, user, sess.UserID))

	utils.RespondJSON(c, http.StatusOK, "Staff removed", gin.H{"staff_id": id})
}
