package services

import (
	"context"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"bendahara/internal/authz"
	apperrors "bendahara/internal/errors"
	"bendahara/internal/logger"
	"bendahara/internal/models"
)

// recentTransactionsLimit caps the rows returned per category balance.
const recentTransactionsLimit = 50

// ledgerService computes balances and histories from transaction rows.
type ledgerService struct {
	db         *gorm.DB
	categories CategoryServicer
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB, categories CategoryServicer) LedgerServicer {
	return &ledgerService{db: db, categories: categories}
}

// visibleTo restricts a transaction query to the rows role may see. KOMITE
// sees its own entries and admin entries whose cash has been handed over.
func visibleTo(role models.Role) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch role {
		case models.RoleAdmin:
			return db
		case models.RoleKomite:
			creators := func(r models.Role) *gorm.DB {
				return db.Session(&gorm.Session{NewDB: true}).
					Model(&models.User{}).
					Select("id").
					Where("role = ?", r)
			}
			return db.Where(
				"(transactions.creator_id IN (?) OR (transactions.creator_id IN (?) AND transactions.handover_status = ?))",
				creators(models.RoleKomite), creators(models.RoleAdmin), models.HandoverStatusCompleted,
			)
		default:
			return db.Where("1 = 0")
		}
	}
}

type codeTotal struct {
	Type  string
	Total int64
	Count int64
}

// GetCategoryBalances aggregates every category visible to the caller's role.
// Sums are computed by the datastore in integer arithmetic.
func (s *ledgerService) GetCategoryBalances(ctx context.Context, actor authz.Actor) ([]CategoryBalance, error) {
	if err := authz.Require(actor, authz.ViewCategoryBalances); err != nil {
		return nil, err
	}

	categories, err := s.categories.ListVisible(ctx, actor.Role, nil)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return []CategoryBalance{}, nil
	}

	codes := make([]string, 0, len(categories))
	for _, c := range categories {
		codes = append(codes, c.Code)
	}

	var totals []codeTotal
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Scopes(visibleTo(actor.Role)).
		Select("transactions.type AS type, COALESCE(SUM(transactions.amount), 0) AS total, COUNT(*) AS count").
		Where("transactions.type IN ?", codes).
		Group("transactions.type").
		Scan(&totals).Error; err != nil {
		return nil, apperrors.Persistence(err)
	}
	byCode := make(map[string]codeTotal, len(totals))
	for _, t := range totals {
		byCode[t.Type] = t
	}

	balances := make([]CategoryBalance, 0, len(categories))
	for _, c := range categories {
		t := byCode[c.Code]
		b := CategoryBalance{
			Code:             c.Code,
			Name:             c.Name,
			Type:             c.Type,
			TransactionCount: t.Count,
		}
		switch c.Type {
		case models.CategoryTypeIncome:
			b.TotalIncome = t.Total
		case models.CategoryTypeExpense:
			b.TotalExpense = t.Total
		}
		b.Balance = b.TotalIncome - b.TotalExpense

		recent, err := s.recent(ctx, actor.Role, c.Code)
		if err != nil {
			return nil, err
		}
		b.RecentTransactions = recent
		balances = append(balances, b)
	}

	sortBalances(balances)
	return balances, nil
}

func (s *ledgerService) recent(ctx context.Context, role models.Role, code string) ([]LedgerEntry, error) {
	var rows []models.Transaction
	if err := s.db.WithContext(ctx).
		Scopes(visibleTo(role)).
		Preload("Creator").
		Preload("Student").
		Where("transactions.type = ?", code).
		Order("transactions.date DESC").
		Order("transactions.created_at DESC").
		Limit(recentTransactionsLimit).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Persistence(err)
	}
	return toLedgerEntries(rows), nil
}

// sortBalances orders by descending balance, ties by name in Indonesian collation.
func sortBalances(balances []CategoryBalance) {
	coll := collate.New(language.Indonesian)
	sort.SliceStable(balances, func(i, j int) bool {
		if balances[i].Balance != balances[j].Balance {
			return balances[i].Balance > balances[j].Balance
		}
		return coll.CompareString(balances[i].Name, balances[j].Name) < 0
	})
}

// GetStudentHistory returns the caller's own transactions, most recent first.
// Any caller other than the owning student gets an empty history.
func (s *ledgerService) GetStudentHistory(ctx context.Context, actor authz.Actor, studentID string) StudentHistory {
	empty := StudentHistory{Transactions: []LedgerEntry{}}
	if err := authz.Require(actor, authz.ViewStudentHistory); err != nil || actor.UserID != studentID {
		return empty
	}

	var rows []models.Transaction
	if err := s.db.WithContext(ctx).
		Preload("Creator").
		Preload("Student").
		Where("student_id = ?", studentID).
		Order("date DESC").
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		logger.Get().Warnw("failed to load student history", "student_id", studentID, "error", err)
		return empty
	}

	var tabungan int64
	for _, r := range rows {
		switch r.Type {
		case models.CodeTabungan:
			tabungan += r.Amount
		case models.CodePenarikanTabungan:
			tabungan -= r.Amount
		}
	}

	return StudentHistory{Transactions: toLedgerEntries(rows), CurrentTabungan: tabungan}
}

// GetHandoverStats summarizes cash still awaiting handover. Non-admin callers
// and datastore failures yield the zero value.
func (s *ledgerService) GetHandoverStats(ctx context.Context, actor authz.Actor) HandoverStats {
	stats := HandoverStats{ByType: map[string]int64{}}
	if err := authz.Require(actor, authz.ViewHandoverStats); err != nil {
		return stats
	}

	var totals []codeTotal
	if err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("is_handover = ? AND handover_status = ?", true, models.HandoverStatusPending).
		Group("type").
		Scan(&totals).Error; err != nil {
		logger.Get().Warnw("failed to load handover stats", "error", err)
		return stats
	}

	for _, t := range totals {
		stats.ByType[t.Type] = t.Total
		stats.TotalPending += t.Total
		stats.Count += t.Count
	}
	return stats
}

func toLedgerEntries(rows []models.Transaction) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(rows))
	for _, r := range rows {
		e := LedgerEntry{
			ID:             r.ID,
			Type:           r.Type,
			Amount:         r.Amount,
			Date:           r.Date,
			Description:    r.Description,
			StudentID:      r.StudentID,
			HandoverStatus: r.HandoverStatus,
			HandoverDate:   r.HandoverDate,
		}
		if r.Creator != nil {
			e.CreatorName = r.Creator.Name
			e.CreatorRole = r.Creator.Role
		}
		if r.Student != nil {
			e.StudentName = r.Student.Name
		}
		entries = append(entries, e)
	}
	return entries
}
