package leavetype

import (
	"go-leave/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	enforcer middleware.Enforcer,
	auth gin.HandlerFunc,
) {
	types := r.Group("/leave-types")
	types.Use(auth)
	{
		types.GET("", middleware.Authorize(enforcer, "leave_type", "read"), handler.GetAll)
		types.GET("/:id", middleware.Authorize(enforcer, "leave_type", "read"), handler.GetById)
		types.POST("", middleware.Authorize(enforcer, "leave_type", "manage"), handler.Create)
		types.PUT("/:id", middleware.Authorize(enforcer, "leave_type", "manage"), handler.Update)
		types.DELETE("/:id", middleware.Authorize(enforcer, "leave_type", "manage"), handler.Delete)
	}
}
