package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bendahara/internal/services"
)

// HandoverHandler moves collected cash to the committee.
type HandoverHandler struct {
	handoverService services.HandoverServicer
	auditService    services.AuditServicer
}

// NewHandoverHandler creates a new HandoverHandler.
func NewHandoverHandler(handoverService services.HandoverServicer, auditService services.AuditServicer) *HandoverHandler {
	return &HandoverHandler{handoverService: handoverService, auditService: auditService}
}

// PerformHandover completes every pending handover row
// @Summary     Perform handover
// @Description Mark every pending transaction as handed over to the committee
// @Tags        handover
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Rows moved"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Persistence failure"
// @Router      /handover [post]
func (h *HandoverHandler) PerformHandover(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	moved, err := h.handoverService.PerformHandover(c.Request.Context(), actor)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), actor.UserID, "PERFORM_HANDOVER", "transaction", "", c.ClientIP(),
		map[string]any{"moved": moved})

	c.JSON(http.StatusOK, gin.H{"moved": moved})
}
