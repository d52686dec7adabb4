package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"casedesk/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

func (h *HealthHandler) Check(c *gin.Context) {
	storage := statusOf(h.app.FileService.StorageHealthy())
	responder := statusOf(h.app.ResponderHealthy())

	statusCode := http.StatusOK
	if !storage.OK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":        h.app.Config.App.Name,
		"env":        h.app.Config.Mode(),
		"uptime_sec": int(time.Since(h.app.StartedAt).Seconds()),
		"storage":    storage,
		"responder": gin.H{
			"mode":   h.app.Config.Responder.Mode,
			"status": responder,
		},
	})
}

func statusOf(err error) dependencyStatus {
	if err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}
