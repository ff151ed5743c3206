package account

import (
	"errors"
	"net/http"

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

// Login returns the login handler for one role.
//
// @Summary      Login
// @Description  Authenticates a member, trainer or admin by email and password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "Credentials"
// @Success      200      {object}  LoginResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/member-login [post]
// @Router       /auth/trainer-login [post]
// @Router       /auth/admin-login [post]
func (h *Handler) Login(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if !api.BindJSON(c, &req) {
			return
		}

		resp, err := h.service.Login(c.Request.Context(), role, req)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid email or password"})
				return
			}
			logger.Error("login failed", "role", role, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// Refresh godoc
// @Summary      Refresh access token
// @Description  Returns a new access token using a valid refresh token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RefreshRequest  true  "Refresh token"
// @Success      200      {object}  RefreshResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !api.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid or expired refresh token"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary      Current principal
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Principal
// @Failure      401  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /me [get]
func (h *Handler) Me(c *gin.Context) {
	id, ok := auth.GetUserID(c)
	role, roleOK := auth.GetRole(c)
	if !ok || !roleOK {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	p, err := h.service.Me(c.Request.Context(), role, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, p)
}

// Logout godoc
// @Summary      Logout
// @Description  Revokes the presented access token until it expires.
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.MessageResponse
// @Failure      401  {object}  api.ErrorResponse
// @Failure      503  {object}  api.ErrorResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	tokenID, expiresAt, ok := auth.GetToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	if err := h.service.Logout(c.Request.Context(), tokenID, expiresAt); err != nil {
		logger.Error("logout failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "Unable to end session"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "logged out"})
}

// RegisterAdmin godoc
// @Summary      Register admin
// @Tags         admins
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterAdminRequest  true  "Admin data"
// @Success      201      {object}  Principal
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /admin/register [post]
func (h *Handler) RegisterAdmin(c *gin.Context) {
	var req RegisterAdminRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.RegisterAdmin(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Email already registered"})
			return
		}
		logger.Error("admin registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, p)
}
