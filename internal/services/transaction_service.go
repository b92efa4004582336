package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"bendahara/internal/authz"
	apperrors "bendahara/internal/errors"
	"bendahara/internal/lock"
	"bendahara/internal/models"
	"bendahara/internal/pagination"
	"bendahara/internal/revalidate"
)

var transactionPaths = []string{
	revalidate.PathAdminFinance,
	revalidate.PathKomiteFinance,
	revalidate.PathSantriFinance,
}

// sppLockKey is the advisory lock serializing SPP payments for one student.
func sppLockKey(studentID string) string {
	return "lock:spp:" + studentID
}

// transactionService handles transaction-related business logic.
type transactionService struct {
	db         *gorm.DB
	categories CategoryServicer
	guard      PaymentGuard
	locker     lock.Locker
	notifier   revalidate.Notifier
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(
	db *gorm.DB,
	categories CategoryServicer,
	guard PaymentGuard,
	locker lock.Locker,
	notifier revalidate.Notifier,
) TransactionServicer {
	return &transactionService{
		db:         db,
		categories: categories,
		guard:      guard,
		locker:     locker,
		notifier:   notifier,
	}
}

// CreateBatch records the same amount for every student in input.StudentIDs.
// For SPP, students who already paid this month are skipped. All surviving
// rows are written with a single INSERT, so the batch lands whole or not at all.
func (s *transactionService) CreateBatch(ctx context.Context, actor authz.Actor, input BatchInput) (*BatchResult, error) {
	if err := authz.Require(actor, authz.RecordTransactions); err != nil {
		return nil, err
	}

	studentIDs := uniqueIDs(input.StudentIDs)
	if len(studentIDs) == 0 {
		return nil, apperrors.ErrEmptyBatch
	}

	code := strings.TrimSpace(input.Type)
	if err := validateAmountAndType(code, input.Amount); err != nil {
		return nil, err
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	requiresHandover, err := s.categories.ResolveHandover(ctx, code)
	if err != nil {
		return nil, err
	}
	isHandover := actor.Role == models.RoleAdmin && requiresHandover

	insert := func(ctx context.Context, ids []string) error {
		rows := make([]models.Transaction, 0, len(ids))
		for _, id := range ids {
			studentID := id
			rows = append(rows, models.Transaction{
				Type:           code,
				Amount:         input.Amount,
				Date:           date,
				Description:    input.Description,
				StudentID:      &studentID,
				CreatorID:      actor.UserID,
				IsHandover:     isHandover,
				HandoverStatus: models.InitialHandoverStatus(isHandover),
			})
		}
		if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
			return apperrors.Persistence(err)
		}
		return nil
	}

	result := &BatchResult{}
	if code != models.CodeSPP {
		if err := insert(ctx, studentIDs); err != nil {
			return nil, err
		}
		result.Processed = len(studentIDs)
	} else {
		keys := make([]string, 0, len(studentIDs))
		for _, id := range studentIDs {
			keys = append(keys, sppLockKey(id))
		}

		err := s.locker.WithLocks(ctx, keys, func(ctx context.Context) error {
			payable, skipped, err := s.guard.Partition(ctx, studentIDs, date)
			if err != nil {
				return err
			}
			if len(payable) == 0 {
				return apperrors.ErrAllDuplicates
			}
			if err := insert(ctx, payable); err != nil {
				return err
			}
			result.Processed = len(payable)
			result.Skipped = len(skipped)
			return nil
		})
		if err != nil {
			return nil, lockError(err)
		}
	}

	s.notifier.Revalidate(ctx, transactionPaths...)
	return result, nil
}

// CreateTransaction records a single transaction under the same handover rule
// as CreateBatch. SPP requires a student and is checked against the guard.
func (s *transactionService) CreateTransaction(ctx context.Context, actor authz.Actor, input CreateTransactionInput) (*models.Transaction, error) {
	if err := authz.Require(actor, authz.RecordTransactions); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(input.Type)
	if err := validateAmountAndType(code, input.Amount); err != nil {
		return nil, err
	}

	var studentID *string
	if input.StudentID != nil && strings.TrimSpace(*input.StudentID) != "" {
		id := strings.TrimSpace(*input.StudentID)
		studentID = &id
	}
	if code == models.CodeSPP && studentID == nil {
		return nil, apperrors.ErrStudentRequired
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	requiresHandover, err := s.categories.ResolveHandover(ctx, code)
	if err != nil {
		return nil, err
	}
	isHandover := actor.Role == models.RoleAdmin && requiresHandover

	transaction := &models.Transaction{
		Type:           code,
		Amount:         input.Amount,
		Date:           date,
		Description:    input.Description,
		StudentID:      studentID,
		CreatorID:      actor.UserID,
		IsHandover:     isHandover,
		HandoverStatus: models.InitialHandoverStatus(isHandover),
	}

	create := func(ctx context.Context) error {
		if err := s.db.WithContext(ctx).Create(transaction).Error; err != nil {
			return apperrors.Persistence(err)
		}
		return nil
	}

	if code == models.CodeSPP {
		err = s.locker.WithLocks(ctx, []string{sppLockKey(*studentID)}, func(ctx context.Context) error {
			ok, err := s.guard.CanPaySPP(ctx, *studentID, date)
			if err != nil {
				return err
			}
			if !ok {
				return apperrors.ErrDuplicatePayment
			}
			return create(ctx)
		})
		err = lockError(err)
	} else {
		err = create(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.notifier.Revalidate(ctx, transactionPaths...)
	return transaction, nil
}

// ListTransactions returns a page of transactions visible to the caller, most recent first.
func (s *transactionService) ListTransactions(ctx context.Context, actor authz.Actor, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[LedgerEntry], error) {
	if err := authz.Require(actor, authz.ViewTransactions); err != nil {
		return nil, err
	}
	page.Defaults()

	query := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Transaction{}).Scopes(visibleTo(actor.Role))
		if filter.FromDate != nil {
			q = q.Where("transactions.date >= ?", *filter.FromDate)
		}
		if filter.ToDate != nil {
			q = q.Where("transactions.date <= ?", *filter.ToDate)
		}
		if filter.Until != nil {
			q = q.Where("transactions.date < ?", *filter.Until)
		}
		if filter.Type != nil {
			q = q.Where("transactions.type = ?", *filter.Type)
		}
		if filter.StudentID != nil {
			q = q.Where("transactions.student_id = ?", *filter.StudentID)
		}
		return q
	}

	var totalItems int64
	if err := query().Count(&totalItems).Error; err != nil {
		return nil, apperrors.Persistence(err)
	}

	var rows []models.Transaction
	if err := query().
		Preload("Creator").
		Preload("Student").
		Order("transactions.date DESC").
		Order("transactions.created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Persistence(err)
	}

	result := pagination.NewPageResponse(toLedgerEntries(rows), page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteTransaction soft-deletes a transaction.
func (s *transactionService) DeleteTransaction(ctx context.Context, actor authz.Actor, id string) error {
	if err := authz.Require(actor, authz.DeleteTransactions); err != nil {
		return err
	}

	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTransactionNotFound
		}
		return apperrors.Persistence(err)
	}

	if err := s.db.WithContext(ctx).Delete(&transaction).Error; err != nil {
		return apperrors.Persistence(err)
	}

	s.notifier.Revalidate(ctx, transactionPaths...)
	return nil
}

func validateAmountAndType(code string, amount int64) error {
	if code == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction type is required")
	}
	if amount < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be negative")
	}
	return nil
}

// uniqueIDs trims ids and drops blanks and repeats, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// lockError passes application errors through and reports lock failures as internal errors.
func lockError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
