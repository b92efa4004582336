package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "bendahara/internal/errors"
	"bendahara/internal/pagination"
	"bendahara/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
	location           *time.Location
}

// NewTransactionHandler creates a new TransactionHandler. Bare dates in
// requests are interpreted in loc.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionHandler{transactionService: transactionService, auditService: auditService, location: loc}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Type        string  `json:"type" binding:"required,max=64"`
	Amount      int64   `json:"amount" binding:"gte=0"`
	Description string  `json:"description" binding:"max=500"`
	StudentID   *string `json:"student_id" binding:"omitempty,uuid"`
	Date        *string `json:"date"`
}

// BatchTransactionRequest represents one amount recorded for many students
type BatchTransactionRequest struct {
	Type        string   `json:"type" binding:"required,max=64"`
	Amount      int64    `json:"amount" binding:"gte=0"`
	Description string   `json:"description" binding:"max=500"`
	StudentIDs  []string `json:"student_ids" binding:"dive,uuid"`
	Date        *string  `json:"date"`
}

func (h *TransactionHandler) parseOptionalDate(raw *string) (time.Time, error) {
	if raw == nil || *raw == "" {
		return time.Time{}, nil
	}
	t, err := parseFlexibleTime(*raw, h.location)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD")
	}
	return t, nil
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a single transaction. SPP payments are checked against the monthly duplicate guard.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate SPP payment"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := h.parseOptionalDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), actor, services.CreateTransactionInput{
		Type:        strings.TrimSpace(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		StudentID:   req.StudentID,
		Date:        date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), actor.UserID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]any{"type": transaction.Type, "amount": transaction.Amount, "handover_status": transaction.HandoverStatus})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// CreateBatch handles mass transaction entry
// @Summary     Record a batch of transactions
// @Description Record the same amount for many students. For SPP, students who already paid this month are skipped.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BatchTransactionRequest true "Batch details"
// @Success     201 {object} services.BatchResult "Rows created and students skipped"
// @Failure     400 {object} ErrorResponse "Invalid input or empty batch"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Every student already paid"
// @Failure     500 {object} ErrorResponse "Persistence failure"
// @Router      /transactions/batch [post]
func (h *TransactionHandler) CreateBatch(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BatchTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	date, err := h.parseOptionalDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.CreateBatch(c.Request.Context(), actor, services.BatchInput{
		Type:        strings.TrimSpace(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
		StudentIDs:  req.StudentIDs,
		Date:        date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), actor.UserID, "CREATE_BATCH", "transaction", "", c.ClientIP(),
		map[string]any{"type": req.Type, "amount": req.Amount, "processed": result.Processed, "skipped": result.Skipped})

	c.JSON(http.StatusCreated, result)
}

// ListTransactions returns the caller's visible transactions, newest first
// @Summary     List transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page       query int    false "Page number"
// @Param       page_size  query int    false "Page size (max 100)"
// @Param       from_date  query string false "Inclusive start (RFC3339 or YYYY-MM-DD)"
// @Param       to_date    query string false "Inclusive end (RFC3339 or YYYY-MM-DD)"
// @Param       type       query string false "Category code"
// @Param       student_id query string false "Student ID"
// @Success     200 {object} pagination.PageResponse[services.LedgerEntry] "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := h.parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), actor, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteTransaction soft-deletes a transaction
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Transaction deleted"
// @Failure     403 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
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

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), actor.UserID, "DELETE_TRANSACTION", "transaction", id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

func (h *TransactionHandler) parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v, h.location)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, dateOnly, err := parseDateOrTime(v, h.location)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		if dateOnly {
			// A bare date covers the whole day.
			end := t.AddDate(0, 0, 1)
			filter.Until = &end
		} else {
			filter.ToDate = &t
		}
	}

	if v := strings.TrimSpace(c.Query("type")); v != "" {
		filter.Type = &v
	}

	if v := c.Query("student_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid student_id")
		}
		s := id.String()
		filter.StudentID = &s
	}

	return filter, nil
}
