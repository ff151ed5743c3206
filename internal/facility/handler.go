package facility

import (
	"errors"
	"net/http"

	"fitclub/internal/api"
	"fitclub/internal/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Create a room
// @Description  Admin-only: add a room that can host classes and PT sessions
// @Tags         admin,facility
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body facility.CreateRoomRequest true "Room payload"
// @Success      201 {object} facility.Room
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/rooms [post]
func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if !api.BindJSON(c, &req) {
		return
	}

	room, err := h.service.CreateRoom(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRoom):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrRoomNameTaken):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Room name already exists"})
		default:
			logger.Error("failed to create room", "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create room"})
		}
		return
	}

	c.JSON(http.StatusCreated, room)
}

// @Summary      List rooms
// @Tags         admin,facility
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} facility.Room
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/rooms [get]
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch rooms"})
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// @Summary      Create a class
// @Description  Admin-only: schedule a group class with a trainer in a room
// @Tags         admin,facility
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body facility.CreateClassRequest true "Class payload"
// @Success      201 {object} facility.FitnessClass
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/classes [post]
func (h *Handler) CreateClass(c *gin.Context) {
	var req CreateClassRequest
	if !api.BindJSON(c, &req) {
		return
	}

	class, err := h.service.CreateClass(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidClass):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class: start_time must be RFC3339 and capacity positive"})
		case errors.Is(err, ErrTrainerNotFound), errors.Is(err, ErrRoomNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: err.Error()})
		default:
			logger.Error("failed to create class", "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create class"})
		}
		return
	}

	c.JSON(http.StatusCreated, class)
}

// @Summary      List classes
// @Description  Classes with registration counts. Pass upcoming=true to hide past classes.
// @Tags         facility
// @Produce      json
// @Security     BearerAuth
// @Param        upcoming query bool false "Only future classes"
// @Success      200 {array} facility.ClassWithAvailability
// @Failure      500 {object} api.ErrorResponse
// @Router       /classes [get]
func (h *Handler) ListClasses(c *gin.Context) {
	onlyFuture := c.Query("upcoming") == "true"

	classes, err := h.service.ListClasses(c.Request.Context(), onlyFuture)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch classes"})
		return
	}

	c.JSON(http.StatusOK, classes)
}

// @Summary      Database health
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} api.HealthResponse
// @Failure      503 {object} api.ErrorResponse
// @Router       /admin/db-health [get]
func (h *Handler) DatabaseHealth(c *gin.Context) {
	if err := h.service.DatabaseHealth(c.Request.Context()); err != nil {
		logger.Error("database health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "Database unavailable"})
		return
	}

	c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
}
