package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fitclub/internal/api"
	"fitclub/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type RegisterClassRequest struct {
	ClassID int `json:"class_id" binding:"required,gt=0" example:"12"`
}

type SchedulePTSessionRequest struct {
	TrainerID int       `json:"trainer_id" binding:"required,gt=0" example:"3"`
	RoomID    int       `json:"room_id" binding:"required,gt=0" example:"2"`
	StartTime time.Time `json:"start_time" binding:"required" example:"2025-11-01T10:00:00Z"`
	EndTime   time.Time `json:"end_time" binding:"required" example:"2025-11-01T11:00:00Z"`
}

// RegisterForClass godoc
// @Summary      Register member for class
// @Description  Registers the member for a group class if it has a free place.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        memberID  path      int  true  "Member ID"
// @Param        classID   path      int  true  "Class ID"
// @Success      201       {object}  ClassRegistration
// @Failure      400       {object}  api.ErrorResponse
// @Failure      403       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      409       {object}  api.ErrorResponse
// @Failure      500       {object}  api.ErrorResponse
// @Router       /members/{memberID}/classes/{classID}/register [post]
func (h *Handler) RegisterForClass(c *gin.Context) {
	memberID, ok := h.memberParam(c)
	if !ok {
		return
	}

	classID, err := strconv.Atoi(c.Param("classID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid class ID", Code: "VALIDATION_ERROR"})
		return
	}

	h.register(c, memberID, classID)
}

// RegisterForClassByBody godoc
// @Summary      Register member for class
// @Description  Same as the path form, with the class id in the body.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        memberID  path      int                   true  "Member ID"
// @Param        request   body      RegisterClassRequest  true  "Class to join"
// @Success      201       {object}  ClassRegistration
// @Failure      400       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      409       {object}  api.ErrorResponse
// @Router       /members/{memberID}/classes/register [post]
func (h *Handler) RegisterForClassByBody(c *gin.Context) {
	memberID, ok := h.memberParam(c)
	if !ok {
		return
	}

	var req RegisterClassRequest
	if !api.BindJSON(c, &req) {
		return
	}

	h.register(c, memberID, req.ClassID)
}

func (h *Handler) register(c *gin.Context, memberID, classID int) {
	reg, err := h.service.RegisterForClass(c.Request.Context(), memberID, classID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reg)
}

// SchedulePTSession godoc
// @Summary      Schedule personal training
// @Description  Books a trainer and a room for the member. Trainer, room and member must all be free for the whole interval.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        memberID  path      int                       true  "Member ID"
// @Param        request   body      SchedulePTSessionRequest  true  "Session details"
// @Success      201       {object}  PTSession
// @Failure      400       {object}  api.ErrorResponse
// @Failure      403       {object}  api.ErrorResponse
// @Failure      404       {object}  api.ErrorResponse
// @Failure      409       {object}  api.ErrorResponse
// @Failure      500       {object}  api.ErrorResponse
// @Router       /members/{memberID}/pt-sessions [post]
func (h *Handler) SchedulePTSession(c *gin.Context) {
	memberID, ok := h.memberParam(c)
	if !ok {
		return
	}

	var req SchedulePTSessionRequest
	if !api.BindJSON(c, &req) {
		return
	}

	session, err := h.service.SchedulePTSession(c.Request.Context(), ScheduleRequest{
		MemberID:  memberID,
		TrainerID: req.TrainerID,
		RoomID:    req.RoomID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// memberParam parses :memberID and checks the caller may act for that member.
func (h *Handler) memberParam(c *gin.Context) (int, bool) {
	memberID, err := strconv.Atoi(c.Param("memberID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid member ID", Code: "VALIDATION_ERROR"})
		return 0, false
	}

	if !auth.CanActFor(c, auth.RoleMember, memberID) {
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only book for yourself"})
		return 0, false
	}

	return memberID, true
}

// RespondError writes err using its category status and code.
// Infrastructure details stay in the logs.
func RespondError(c *gin.Context, err error) {
	status := HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	} else if errors.Is(err, ErrLockTimeout) {
		msg = "Resource is busy, please retry"
	}

	c.JSON(status, api.ErrorResponse{Error: msg, Code: Code(err)})
}
