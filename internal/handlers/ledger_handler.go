package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bendahara/internal/services"
)

// LedgerHandler serves the read-side dashboards.
type LedgerHandler struct {
	ledgerService services.LedgerServicer
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerService services.LedgerServicer) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

// GetCategoryBalances returns per-category totals for the caller's role
// @Summary     Category balances
// @Description Per-category income, expense and balance, highest balance first
// @Tags        ledger
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.CategoryBalance "Balances"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Persistence failure"
// @Router      /ledger/balances [get]
func (h *LedgerHandler) GetCategoryBalances(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	balances, err := h.ledgerService.GetCategoryBalances(c.Request.Context(), actor)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// GetStudentHistory returns a student's own transactions and savings balance.
// Anyone other than the student gets an empty history.
// @Summary     Student history
// @Tags        ledger
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Student ID"
// @Success     200 {object} services.StudentHistory "History"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Router      /ledger/students/{id}/history [get]
func (h *LedgerHandler) GetStudentHistory(c *gin.Context) {
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

	c.JSON(http.StatusOK, h.ledgerService.GetStudentHistory(c.Request.Context(), actor, studentID))
}

// GetHandoverStats summarizes cash awaiting handover
// @Summary     Handover statistics
// @Tags        handover
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.HandoverStats "Pending totals"
// @Router      /handover/stats [get]
func (h *LedgerHandler) GetHandoverStats(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.ledgerService.GetHandoverStats(c.Request.Context(), actor))
}
