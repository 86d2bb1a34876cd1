package allocation

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
	allocations := r.Group("/allocation")
	allocations.Use(auth)
	{
		allocations.POST("/run", middleware.Authorize(enforcer, "allocation", "run"), handler.Run)
	}
}
