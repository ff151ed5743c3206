package dashboard

import (
	"net/http"
	"strconv"

	"fitclub/internal/api"
	"fitclub/internal/auth"
	"fitclub/internal/booking"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetMemberDashboard godoc
// @Summary      Member dashboard
// @Description  Latest health metric, number of class registrations and upcoming PT sessions.
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        memberID  path      int  true  "Member ID"
// @Success      200       {object}  Dashboard
// @Failure      400       {object}  api.ErrorResponse
// @Failure      403       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      500       {object}  api.ErrorResponse
// @Router       /members/{memberID}/dashboard [get]
func (h *Handler) GetMemberDashboard(c *gin.Context) {
	memberID, err := strconv.Atoi(c.Param("memberID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid member ID", Code: "VALIDATION_ERROR"})
		return
	}

	if !auth.CanActFor(c, auth.RoleMember, memberID) {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only view your own dashboard"})
		return
	}

	d, err := h.service.GetMemberDashboard(c.Request.Context(), memberID)
	if err != nil {
		booking.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, d)
}
