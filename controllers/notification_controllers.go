package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/hotel-ops/store"
	"github.com/yeremiapane/hotel-ops/utils"
)

type NotificationController struct {
	Store *store.Store
}

func NewNotificationController(st *store.Store) *NotificationController {
	return &NotificationController{Store: st}
}

// GetAllNotifications -> recent notification history, newest first
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	notifs, err := nc.Store.ListNotifications(limit)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifs)
}
