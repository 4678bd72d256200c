package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
)

type UserService interface {
	CreateUser(ctx context.Context, username, email string) (*entity.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type UserHandler struct {
	service UserService
	log     domain.Logger
	v       *validator.Validate
}

func NewUserHandler(service UserService, log domain.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
		v:       newValidator(),
	}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
}

// CreateUser - создать пользователя
// @Summary Create user
// @Tags users
// @Param request body createUserRequest true "User"
// @Success 201 {object} entity.User
// @Router /api/v1/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetUser - получить пользователя
// @Summary Get user
// @Tags users
// @Param user_id path string true "User ID"
// @Success 200 {object} entity.User
// @Router /api/v1/users/{user_id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
