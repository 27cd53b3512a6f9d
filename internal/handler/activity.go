package handler

import (
	"net/http"

	"assettrack/internal/apierror"
	"assettrack/internal/dto"
	"assettrack/internal/service"

	"github.com/gin-gonic/gin"
)

// ActivityHandler serves the telemetry event log.
type ActivityHandler struct {
	svc service.ActivityService
}

func NewActivityHandler(svc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// List handles GET /activity.
func (h *ActivityHandler) List(c *gin.Context) {
	var filter dto.ActivityFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid query parameters"))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
