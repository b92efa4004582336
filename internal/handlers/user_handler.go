package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bendahara/internal/errors"
	"bendahara/internal/models"
	"bendahara/internal/services"
)

// UserHandler handles portal account management.
type UserHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer, auditService services.AuditServicer) *UserHandler {
	return &UserHandler{userService: userService, auditService: auditService}
}

// CreateUserRequest represents the request payload for creating a portal account
type CreateUserRequest struct {
	Name     string      `json:"name" binding:"required,max=255"`
	Email    string      `json:"email" binding:"required,email,max=255"`
	Password string      `json:"password" binding:"required,min=8,max=128"`
	Role     models.Role `json:"role" binding:"required,role"`
}

// CreateUser handles account creation by an admin
// @Summary     Create a user
// @Description Create a portal account for a santri, guru, komite member or admin
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateUserRequest true "Account details"
// @Success     201 {object} UserResponse "User created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate email"
// @Router      /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), actor, services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), actor.UserID, "CREATE_USER", "user", user.ID, c.ClientIP(),
		map[string]any{"role": user.Role, "email": user.Email})

	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

// ListUsers lists active accounts holding a role
// @Summary     List users by role
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       role query string true "ADMIN, KOMITE, SANTRI or GURU"
// @Success     200 {array} UserResponse "Users"
// @Failure     400 {object} ErrorResponse "Invalid role"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Router      /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	role, err := models.ParseRole(c.Query("role"))
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	users, err := h.userService.ListUsersByRole(c.Request.Context(), actor, role)
	if err != nil {
		respondWithError(c, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}
