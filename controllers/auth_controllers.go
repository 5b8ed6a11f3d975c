package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yeremiapane/hotel-ops/engine"
	"github.com/yeremiapane/hotel-ops/store"
	"github.com/yeremiapane/hotel-ops/utils"
)

type AuthController struct {
	Store  *store.Store
	Engine *engine.Engine
}

func NewAuthController(st *store.Store, eng *engine.Engine) *AuthController {
	return &AuthController{Store: st, Engine: eng}
}

// Login -> verifies the staff PIN, issues a token and activates the
// engine session, which replays everything captured while logged out.
func (ac *AuthController) Login(c *gin.Context) {
	type reqBody struct {
		StaffID string `json:"staff_id" binding:"required"`
		PIN     string `json:"pin" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := ac.Store.GetStaff(body.StaffID)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unknown staff id"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(body.PIN)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("wrong PIN"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Name, user.Dept, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ac.Engine.Login(&engine.Session{
		UserID: user.ID,
		Name:   user.Name,
		Dept:   user.Dept,
		Role:   user.Role,
	})

	utils.InfoLogger.Printf("Session started: %s (%s)", user.ID, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Logged in", gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout -> clears the engine session; inbound changes keep updating
// the store silently from here on.
func (ac *AuthController) Logout(c *gin.Context) {
	ac.Engine.Logout()
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// sessionFromContext rebuilds the session from the claims the auth
// middleware stored on the request.
func sessionFromContext(c *gin.Context) *engine.Session {
	userID, exists := c.Get("userID")
	if !exists {
		return nil
	}
	name, _ := c.Get("userName")
	dept, _ := c.Get("userDept")
	role, _ := c.Get("role")
	sess := &engine.Session{UserID: userID.(string)}
	if s, ok := name.(string); ok {
		sess.Name = s
	}
	if s, ok := dept.(string); ok {
		sess.Dept = s
	}
	if s, ok := role.(string); ok {
		sess.Role = s
	}
	return sess
}
