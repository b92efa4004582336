package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bendahara/internal/errors"
	"bendahara/internal/models"
	"bendahara/internal/services"
)

// CategoryHandler handles category registry requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
	auditService    services.AuditServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer, auditService services.AuditServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, auditService: auditService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name             string              `json:"name" binding:"required,max=255"`
	Type             models.CategoryType `json:"type" binding:"required,category_type"`
	ShowToKomite     bool                `json:"show_to_komite"`
	ShowToAdmin      bool                `json:"show_to_admin"`
	RequiresHandover *bool               `json:"requires_handover"`
	DefaultAmount    *int64              `json:"default_amount" binding:"omitempty,gte=0"`
}

// UpdateCategoryRequest represents the request payload for updating a category.
// Code and type cannot be changed.
type UpdateCategoryRequest struct {
	Name             *string `json:"name" binding:"omitempty,max=255"`
	ShowToKomite     *bool   `json:"show_to_komite"`
	ShowToAdmin      *bool   `json:"show_to_admin"`
	IsActive         *bool   `json:"is_active"`
	RequiresHandover *bool   `json:"requires_handover"`
	DefaultAmount    *int64  `json:"default_amount" binding:"omitempty,gte=0"`
}

// ListVisibleCategories returns the active categories the caller's role may see
// @Summary     List visible categories
// @Description Active categories visible to the caller's role, ordered by name
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "Filter by category type (INCOME/EXPENSE)"
// @Success     200 {array} models.TransactionCategory "Categories"
// @Failure     400 {object} ErrorResponse "Invalid type"
// @Failure     401 {object} ErrorResponse "Unauthenticated"
// @Router      /categories [get]
func (h *CategoryHandler) ListVisibleCategories(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var categoryType *models.CategoryType
	if v := c.Query("type"); v != "" {
		t := models.CategoryType(v)
		categoryType = &t
	}

	categories, err := h.categoryService.ListVisible(c.Request.Context(), actor.Role, categoryType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListAllCategories returns the full catalog, inactive and hidden categories included
// @Summary     List all categories
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.TransactionCategory "Categories"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Router      /categories/all [get]
func (h *CategoryHandler) ListAllCategories(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categories, err := h.categoryService.ListAll(c.Request.Context(), actor)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Description Create a category; its code is derived from the name
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.TransactionCategory "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate code"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), actor, services.CreateCategoryInput{
		Name:             req.Name,
		Type:             req.Type,
		ShowToKomite:     req.ShowToKomite,
		ShowToAdmin:      req.ShowToAdmin,
		RequiresHandover: req.RequiresHandover,
		DefaultAmount:    req.DefaultAmount,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), actor.UserID, "CREATE_CATEGORY", "category", category.ID, c.ClientIP(),
		map[string]any{"code": category.Code, "type": category.Type})

	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory handles updates to a category's mutable fields
// @Summary     Update a category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to change"
// @Success     200 {object} models.TransactionCategory "Category updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), actor, id, services.UpdateCategoryInput{
		Name:             req.Name,
		ShowToKomite:     req.ShowToKomite,
		ShowToAdmin:      req.ShowToAdmin,
		IsActive:         req.IsActive,
		RequiresHandover: req.RequiresHandover,
		DefaultAmount:    req.DefaultAmount,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), actor.UserID, "UPDATE_CATEGORY", "category", category.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory removes a user-defined category. Existing transactions keep their code.
// @Summary     Delete a category
// @Tags        categories
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} map[string]string "Category deleted"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "System category"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), actor.UserID, "DELETE_CATEGORY", "category", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
