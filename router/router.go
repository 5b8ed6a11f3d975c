package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/hotel-ops/controllers"
	"github.com/yeremiapane/hotel-ops/engine"
	"github.com/yeremiapane/hotel-ops/middlewares"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/relay"
	"github.com/yeremiapane/hotel-ops/store"
)

// SetupRouter wires the local API the rendering layer talks to. The
// engine itself never touches gin; everything here is an adapter.
func SetupRouter(st *store.Store, rc *relay.Client, eng *engine.Engine) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.LoggerMiddleware())

	authCtrl := controllers.NewAuthController(st, eng)
	orderCtrl := controllers.NewOrderController(st, eng)
	staffCtrl := controllers.NewStaffController(st, eng)
	notifCtrl := controllers.NewNotificationController(st)
	statusCtrl := controllers.NewStatusController(st, rc, eng)

	r.POST("/login", middlewares.NewStrictRateLimiter(), authCtrl.Login)

	// websocket clients pass the token in the query string
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(), controllers.DashboardWSHandler)

	api := r.Group("/", middlewares.AuthMiddleware())
	{
		api.POST("/logout", authCtrl.Logout)

		api.GET("/orders", orderCtrl.GetAllOrders)
		api.POST("/orders", orderCtrl.CreateOrder)
		api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		api.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		api.POST("/orders/:order_id/memos", orderCtrl.AddMemo)

		api.GET("/staff", staffCtrl.GetAllStaff)
		admin := api.Group("/", middlewares.RequireRole(models.RoleAdmin))
		{
			admin.POST("/staff", staffCtrl.CreateStaff)
			admin.PATCH("/staff/:staff_id", staffCtrl.UpdateStaff)
			admin.DELETE("/staff/:staff_id", staffCtrl.DeleteStaff)
		}

		api.GET("/notifications", notifCtrl.GetAllNotifications)
		api.GET("/status", statusCtrl.GetStatus)
		api.POST("/reconnect", statusCtrl.Reconnect)
	}

	return r
}
