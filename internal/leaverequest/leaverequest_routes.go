package leaverequest

import (
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	enforcer middleware.Enforcer,
	auth gin.HandlerFunc,
	idempotency gin.HandlerFunc,
) {
	requests := r.Group("/leave-requests")
	requests.Use(auth)
	{
		requests.POST("", middleware.Authorize(enforcer, "leave_request", "create"), idempotency, handler.Create)
		requests.GET("", middleware.Authorize(enforcer, "leave_request", "read"), handler.History)
		requests.GET("/:id", middleware.Authorize(enforcer, "leave_request", "read"), handler.GetById)
		requests.POST("/:id/cancel", middleware.Authorize(enforcer, "leave_request", "cancel"), handler.Cancel)
	}

	dashboard := r.Group("/dashboard")
	dashboard.Use(auth)
	{
		dashboard.GET("", middleware.Authorize(enforcer, "dashboard", "read"), handler.Dashboard)
	}
}
