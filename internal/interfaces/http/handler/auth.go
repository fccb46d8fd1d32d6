package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appidentity "github.com/dmflow/backend/internal/application/identity"
	"github.com/dmflow/backend/internal/infrastructure/auth"
	"github.com/dmflow/backend/internal/interfaces/http/dto"
	"github.com/dmflow/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves registration, login and the current-user endpoint
type AuthHandler struct {
	BaseHandler
	users *appidentity.UserService
	jwt   *auth.JWTService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *appidentity.UserService, jwt *auth.JWTService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		users:       users,
		jwt:         jwt,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	token, expiresAt, err := h.jwt.GenerateToken(user)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	token, expiresAt, err := h.jwt.GenerateToken(user)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(user),
	})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.ToUserResponse(user))
}
