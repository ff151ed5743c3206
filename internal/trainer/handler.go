package trainer

import (
	"errors"
	"net/http"
	"strconv"

	"fitclub/internal/api"
	"fitclub/internal/auth"
	"fitclub/internal/booking"
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
// @Summary      Register trainer
// @Description  Creates a trainer account and returns access & refresh tokens.
// @Tags         trainers
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "Trainer registration data"
// @Success      201      {object}  RegisterResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /trainers/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}

	t, accessToken, refreshToken, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{AccessToken: accessToken, RefreshToken: refreshToken, Trainer: *t})
}

// AddAvailability godoc
// @Summary      Add availability block
// @Description  Advisory only; PT session booking does not consult availability.
// @Tags         trainers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        trainerID  path      int                     true  "Trainer ID"
// @Param        request    body      AddAvailabilityRequest  true  "Block"
// @Success      201        {object}  Availability
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /trainers/{trainerID}/availability [post]
func (h *Handler) AddAvailability(c *gin.Context) {
	trainerID, ok := trainerParam(c)
	if !ok {
		return
	}
	if !auth.CanActFor(c, auth.RoleTrainer, trainerID) {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only manage your own availability"})
		return
	}

	var req AddAvailabilityRequest
	if !api.BindJSON(c, &req) {
		return
	}

	a, err := h.service.AddAvailability(c.Request.Context(), trainerID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, a)
}

// ListAvailability godoc
// @Summary      List availability blocks
// @Tags         trainers
// @Security     BearerAuth
// @Produce      json
// @Param        trainerID  path      int  true  "Trainer ID"
// @Success      200        {array}   Availability
// @Failure      404        {object}  api.ErrorResponse
// @Router       /trainers/{trainerID}/availability [get]
func (h *Handler) ListAvailability(c *gin.Context) {
	trainerID, ok := trainerParam(c)
	if !ok {
		return
	}

	blocks, err := h.service.ListAvailability(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, blocks)
}

// Schedule godoc
// @Summary      Trainer schedule
// @Description  PT sessions and classes, ordered by start time.
// @Tags         trainers
// @Security     BearerAuth
// @Produce      json
// @Param        trainerID  path      int  true  "Trainer ID"
// @Success      200        {array}   ScheduleItem
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /trainers/{trainerID}/schedule [get]
func (h *Handler) Schedule(c *gin.Context) {
	trainerID, ok := trainerParam(c)
	if !ok {
		return
	}
	if !auth.CanActFor(c, auth.RoleTrainer, trainerID) {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only view your own schedule"})
		return
	}

	items, err := h.service.Schedule(c.Request.Context(), trainerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

func trainerParam(c *gin.Context) (int, bool) {
	trainerID, err := strconv.Atoi(c.Param("trainerID"))
	if err != nil || trainerID <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid trainer ID", Code: "VALIDATION_ERROR"})
		return 0, false
	}
	return trainerID, true
}

func respondError(c *gin.Context, err error) {
	if errors.Is(err, ErrEmailExists) {
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Email already registered"})
		return
	}
	if booking.HTTPStatus(err) == http.StatusInternalServerError {
		logger.Error("trainer request failed", "path", c.FullPath(), "error", err)
	}
	booking.RespondError(c, err)
}
