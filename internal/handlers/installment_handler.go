package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bendahara/internal/errors"
	"bendahara/internal/services"
)

// InstallmentHandler manages per-student SPP installment plans.
type InstallmentHandler struct {
	installmentService services.InstallmentServicer
	auditService       services.AuditServicer
}

// NewInstallmentHandler creates a new InstallmentHandler.
func NewInstallmentHandler(installmentService services.InstallmentServicer, auditService services.AuditServicer) *InstallmentHandler {
	return &InstallmentHandler{installmentService: installmentService, auditService: auditService}
}

// SetInstallmentRequest toggles a student's installment plan.
type SetInstallmentRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetInstallment turns a student's installment plan on or off
// @Summary     Set installment plan
// @Description While active, the student may pay SPP more than once per month
// @Tags        students
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Student ID"
// @Param       request body SetInstallmentRequest true "Plan state"
// @Success     200 {object} models.SppInstallmentSetting "Setting"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Student not found"
// @Router      /students/{id}/installment [put]
func (h *InstallmentHandler) SetInstallment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	studentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SetInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	setting, err := h.installmentService.SetInstallment(c.Request.Context(), actor, studentID, *req.IsActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), actor.UserID, "SET_INSTALLMENT", "student", studentID, c.ClientIP(),
		map[string]any{"is_active": setting.IsActive})

	c.JSON(http.StatusOK, gin.H{"installment": setting})
}

// GetInstallment returns a student's installment plan
// @Summary     Get installment plan
// @Tags        students
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Student ID"
// @Success     200 {object} models.SppInstallmentSetting "Setting"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Router      /students/{id}/installment [get]
func (h *InstallmentHandler) GetInstallment(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	studentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	setting, err := h.installmentService.GetInstallment(c.Request.Context(), actor, studentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"installment": setting})
}
