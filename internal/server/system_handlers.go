package server

import (
	"net/http"
	"time"

	"fitclub/internal/api"
	"fitclub/internal/logger"
	"fitclub/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} api.HealthResponse
// @Router       /health [get]
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}

// @Summary      Queue a test email
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        email query string true "Recipient email"
// @Success      202 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /admin/test-email [post]
func TestEmail(mailer notify.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		to := c.Query("email")
		if to == "" {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "email parameter required", Code: "VALIDATION_ERROR"})
			return
		}

		err := mailer.Enqueue(c.Request.Context(), notify.Job{
			Type:    "test",
			To:      to,
			Name:    "FitClub admin",
			Subject: "Test email from FitClub",
			Body:    "Email delivery is working.",
			Created: time.Now(),
		})
		if err != nil {
			logger.Error("Failed to queue test email", "error", err)
			c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "email queue unavailable"})
			return
		}

		c.JSON(http.StatusAccepted, api.MessageResponse{Message: "Email queued successfully"})
	}
}

// @Summary      Prometheus metrics
// @Description  Exposes Prometheus metrics in text format
// @Tags         system
// @Produce      text/plain
// @Success      200 {string} string
// @Router       /metrics [get]
func Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
