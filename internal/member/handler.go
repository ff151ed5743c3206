package member

import (
	"errors"
	"net/http"
	"strconv"

	"fitclub/internal/api"
	"fitclub/internal/auth"
	"fitclub/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register godoc
// @Summary      Register member
// @Description  Creates a member account and returns access & refresh tokens.
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Member registration data"
// @Success      201      {object}  RegisterResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /members/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}

	m, accessToken, refreshToken, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Member:       *m,
	})
}

// GetProfile godoc
// @Summary      Member profile
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        memberID  path      int  true  "Member ID"
// @Success      200       {object}  Member
// @Failure      403       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Router       /members/{memberID} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	memberID, ok := memberParam(c)
	if !ok {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// AddHealthMetric godoc
// @Summary      Record health metric
// @Description  Stores a measurement; measured_at defaults to now.
// @Tags         members
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        memberID  path      int               true  "Member ID"
// @Param        request   body      AddMetricRequest  true  "Metric"
// @Success      201       {object}  booking.HealthMetric
// @Failure      400       {object}  api.ErrorResponse
// @Failure      403       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Router       /members/{memberID}/health-metrics [post]
func (h *Handler) AddHealthMetric(c *gin.Context) {
	memberID, ok := memberParam(c)
	if !ok {
		return
	}

	var req AddMetricRequest
	if !api.BindJSON(c, &req) {
		return
	}

	metric, err := h.service.AddHealthMetric(c.Request.Context(), memberID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, metric)
}

// ListHealthMetrics godoc
// @Summary      Health metric history
// @Description  Newest first.
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        memberID  path      int  true  "Member ID"
// @Success      200       {array}   booking.HealthMetric
// @Failure      403       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Router       /members/{memberID}/health-metrics [get]
func (h *Handler) ListHealthMetrics(c *gin.Context) {
	memberID, ok := memberParam(c)
	if !ok {
		return
	}

	metrics, err := h.service.ListHealthMetrics(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// AddGoal godoc
// @Summary      Add fitness goal
// @Tags         members
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        memberID  path      int             true  "Member ID"
// @Param        request   body      AddGoalRequest  true  "Goal"
// @Success      201       {object}  FitnessGoal
// @Failure      400       {object}  api.ErrorResponse
// @Failure      403       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Router       /members/{memberID}/goals [post]
func (h *Handler) AddGoal(c *gin.Context) {
	memberID, ok := memberParam(c)
	if !ok {
		return
	}

	var req AddGoalRequest
	if !api.BindJSON(c, &req) {
		return
	}

	goal, err := h.service.AddGoal(c.Request.Context(), memberID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, goal)
}

// ListGoals godoc
// @Summary      List fitness goals
// @Tags         members
// @Security     BearerAuth
// @Produce      json
// @Param        memberID  path      int  true  "Member ID"
// @Success      200       {array}   FitnessGoal
// @Failure      403       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Router       /members/{memberID}/goals [get]
func (h *Handler) ListGoals(c *gin.Context) {
	memberID, ok := memberParam(c)
	if !ok {
		return
	}

	goals, err := h.service.ListGoals(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, goals)
}

func memberParam(c *gin.Context) (int, bool) {
	memberID, err := strconv.Atoi(c.Param("memberID"))
	if err != nil || memberID <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid member ID"})
		return 0, false
	}
	if !auth.CanActFor(c, auth.RoleMember, memberID) {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only access your own account"})
		return 0, false
	}
	return memberID, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidDOB), errors.Is(err, ErrInvalidMetric), errors.Is(err, ErrInvalidGoal):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
	case errors.Is(err, ErrMemberNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	case errors.Is(err, ErrEmailExists):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Email already registered"})
	default:
		logger.Error("member request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
	}
}
