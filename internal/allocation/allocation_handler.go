package allocation

import (
	"net/http"
	"time"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("allocation.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("allocation.handler")
	}
	return &Handler{service: service, logger: l}
}

// Run triggers an allocation pass by hand. The optional date query lets HR
// replay a day the worker missed.
func (h *Handler) Run(c *gin.Context) {
	today := time.Now().UTC()
	if v := c.Query("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid date, expected YYYY-MM-DD", nil)
			return
		}
		today = parsed
	}

	h.logger.Debug("http allocation run", zap.String("run_date", today.Format("2006-01-02")))

	summary, err := h.service.Run(c.Request.Context(), today)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("allocation run failed",
			zap.Int("status", httpErr.Status),
			zap.String("code", httpErr.Code),
			zap.String("message", httpErr.Message),
		)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	response.Success(c, http.StatusOK, summary, nil)
}
