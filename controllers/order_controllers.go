package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yeremiapane/hotel-ops/engine"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/notifier"
	"github.com/yeremiapane/hotel-ops/store"
	"github.com/yeremiapane/hotel-ops/utils"
)

type OrderController struct {
	Store  *store.Store
	Engine *engine.Engine
}

func NewOrderController(st *store.Store, eng *engine.Engine) *OrderController {
	return &OrderController{Store: st, Engine: eng}
}

// GetAllOrders -> full local order set, newest request first
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Store.ListOrders()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, err := oc.Store.GetOrder(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// CreateOrder -> local store first (optimistic), then publish; the
// transport outcome never rolls the local write back.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("no active session"))
		return
	}

	type reqBody struct {
		RoomNo   string `json:"room_no" binding:"required"`
		ItemName string `json:"item_name" binding:"required"`
		Quantity int    `json:"quantity"`
		Priority string `json:"priority"`
		Memo     string `json:"memo"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.Quantity <= 0 {
		body.Quantity = 1
	}
	if body.Priority != models.PriorityUrgent {
		body.Priority = models.PriorityNormal
	}

	now := time.Now()
	id, err := oc.Store.NextOrderID(now)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	order := models.Order{
		ID:          id,
		RoomNo:      body.RoomNo,
		ItemName:    body.ItemName,
		Quantity:    body.Quantity,
		Priority:    body.Priority,
		Status:      models.StatusRequested,
		RequestedAt: now,
		CreatedBy:   sess.UserID,
	}
	if body.Memo != "" {
		order.Memos = append(order.Memos, newMemo(body.Memo, sess, now))
	}

	if err := oc.Store.InsertOrder(&order); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	notifier.BroadcastOrderUpdate(order)
	oc.Engine.Publish(models.NewEnvelope(models.TypeNewOrder, order, sess.UserID))

	utils.InfoLogger.Printf("Order created: %s (room %s, %s)", order.ID, order.RoomNo, order.Priority)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// UpdateOrderStatus -> runs the status machine, persists, publishes.
// An optional memo is appended before broadcast.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("no active session"))
		return
	}

	order, err := oc.Store.GetOrder(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		Status string `json:"status" binding:"required"`
		Memo   string `json:"memo"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	if err := engine.Transition(order, body.Status, sess, now); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := oc.Store.SaveOrder(order); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if body.Memo != "" {
		memo := newMemo(body.Memo, sess, now)
		if err := oc.Store.AppendMemo(order.ID, memo); err != nil {
			utils.ErrorLogger.Printf("transition memo append failed: %v", err)
		} else {
			order.Memos = append(order.Memos, memo)
		}
	}

	notifier.BroadcastOrderUpdate(*order)
	oc.Engine.Publish(models.NewEnvelope(models.TypeStatusUpdate, order, sess.UserID))

	utils.InfoLogger.Printf("Order %s -> %s by %s", order.ID, order.Status, sess.UserID)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// AddMemo -> appends one memo locally and publishes it
func (oc *OrderController) AddMemo(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("no active session"))
		return
	}

	order, err := oc.Store.GetOrder(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	type reqBody struct {
		Text string `json:"text" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	memo := newMemo(body.Text, sess, time.Now())
	if err := oc.Store.AppendMemo(order.ID, memo); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	order.Memos = append(order.Memos, memo)

	notifier.BroadcastOrderUpdate(*order)
	oc.Engine.Publish(models.NewEnvelope(models.TypeNewMemo, models.MemoPayload{
		OrderID: order.ID,
		Memo:    memo,
	}, sess.UserID))

	utils.RespondJSON(c, http.StatusCreated, "Memo added", memo)
}

func newMemo(text string, sess *engine.Session, at time.Time) models.Memo {
	return models.Memo{
		ID:         uuid.NewString(),
		Text:       text,
		SenderID:   sess.UserID,
		SenderName: sess.Name,
		SenderDept: sess.Dept,
		Timestamp:  at,
	}
}
