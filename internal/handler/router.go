package handler

import (
	"stagesight/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Events   *EventHandler
	Checkout *CheckoutHandler
	Bookings *BookingHandler
}

// RegisterRoutes 掛上 /api/v1 底下所有路由，auth 解析登入狀態，admin 路由另外要求管理員
func RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc, h Handlers) {
	api := r.Group("/api/v1", auth)
	admin := api.Group("/admin", middleware.RequireAdmin())

	h.Events.RegisterRoutes(api, admin)
	h.Checkout.RegisterRoutes(api)
	h.Bookings.RegisterRoutes(admin)
}
