package approval

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
	approvals := r.Group("/approvals")
	approvals.Use(auth)
	{
		approvals.GET("/pending", middleware.Authorize(enforcer, "approval", "read"), handler.Pending)
		approvals.GET("/processed", middleware.Authorize(enforcer, "approval", "read"), handler.Processed)
		approvals.POST("/:id/resolve", middleware.Authorize(enforcer, "approval", "resolve"), idempotency, handler.Resolve)
	}
}
