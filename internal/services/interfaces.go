package services

import (
	"context"
	"time"

	"bendahara/internal/authz"
	"bendahara/internal/models"
	"bendahara/internal/pagination"
)

// UserServicer is the user directory. It is the identity provider the ledger
// core consumes; the core itself never authenticates anyone.
type UserServicer interface {
	CreateUser(ctx context.Context, actor authz.Actor, input CreateUserInput) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsersByRole(ctx context.Context, actor authz.Actor, role models.Role) ([]models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
}

// CreateUserInput holds the fields of a new portal account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// CategoryServicer is the category registry.
type CategoryServicer interface {
	ListVisible(ctx context.Context, role models.Role, categoryType *models.CategoryType) ([]models.TransactionCategory, error)
	ListAll(ctx context.Context, actor authz.Actor) ([]models.TransactionCategory, error)
	Create(ctx context.Context, actor authz.Actor, input CreateCategoryInput) (*models.TransactionCategory, error)
	Update(ctx context.Context, actor authz.Actor, id string, input UpdateCategoryInput) (*models.TransactionCategory, error)
	Delete(ctx context.Context, actor authz.Actor, id string) error
	GetByCode(ctx context.Context, code string) (*models.TransactionCategory, error)
	ResolveHandover(ctx context.Context, code string) (bool, error)
}

// CreateCategoryInput describes a user-defined category. The code is derived
// from Name. A nil RequiresHandover falls back to the schema default.
type CreateCategoryInput struct {
	Name             string
	Type             models.CategoryType
	ShowToKomite     bool
	ShowToAdmin      bool
	RequiresHandover *bool
	DefaultAmount    *int64
}

// UpdateCategoryInput holds the mutable category fields. Nil fields are left unchanged.
type UpdateCategoryInput struct {
	Name             *string
	ShowToKomite     *bool
	ShowToAdmin      *bool
	IsActive         *bool
	RequiresHandover *bool
	DefaultAmount    *int64
}

// PaymentGuard decides whether a new SPP payment is safe to record.
type PaymentGuard interface {
	CanPaySPP(ctx context.Context, studentID string, date time.Time) (bool, error)
	Partition(ctx context.Context, studentIDs []string, date time.Time) (payable, skipped []string, err error)
}

// LedgerEntry is a transaction annotated for display.
type LedgerEntry struct {
	ID             string                `json:"id"`
	Type           string                `json:"type"`
	Amount         int64                 `json:"amount"`
	Date           time.Time             `json:"date"`
	Description    string                `json:"description"`
	CreatorName    string                `json:"creator_name"`
	CreatorRole    models.Role           `json:"creator_role"`
	StudentID      *string               `json:"student_id,omitempty"`
	StudentName    string                `json:"student_name,omitempty"`
	HandoverStatus models.HandoverStatus `json:"handover_status"`
	HandoverDate   *time.Time            `json:"handover_date,omitempty"`
}

// CategoryBalance aggregates one category. Exactly one of TotalIncome and
// TotalExpense is non-zero, depending on the category's polarity.
type CategoryBalance struct {
	Code               string              `json:"code"`
	Name               string              `json:"name"`
	Type               models.CategoryType `json:"type"`
	TotalIncome        int64               `json:"total_income"`
	TotalExpense       int64               `json:"total_expense"`
	Balance            int64               `json:"balance"`
	TransactionCount   int64               `json:"transaction_count"`
	RecentTransactions []LedgerEntry       `json:"recent_transactions"`
}

// StudentHistory is a student's own transactions plus their savings balance.
type StudentHistory struct {
	Transactions    []LedgerEntry `json:"transactions"`
	CurrentTabungan int64         `json:"current_tabungan"`
}

// HandoverStats summarizes cash awaiting handover.
type HandoverStats struct {
	TotalPending int64            `json:"total_pending"`
	ByType       map[string]int64 `json:"by_type"`
	Count        int64            `json:"count"`
}

// LedgerServicer is the ledger aggregator.
//
// GetStudentHistory and GetHandoverStats never fail: an unauthorized caller or
// a datastore error yields the zero-value result, because they back dashboard
// widgets that must always render.
type LedgerServicer interface {
	GetCategoryBalances(ctx context.Context, actor authz.Actor) ([]CategoryBalance, error)
	GetStudentHistory(ctx context.Context, actor authz.Actor, studentID string) StudentHistory
	GetHandoverStats(ctx context.Context, actor authz.Actor) HandoverStats
}

// HandoverServicer is the handover state machine.
type HandoverServicer interface {
	PerformHandover(ctx context.Context, actor authz.Actor) (int64, error)
}

// BatchInput describes one amount recorded for many students at once.
type BatchInput struct {
	Type        string
	Amount      int64
	Description string
	StudentIDs  []string
	Date        time.Time
}

// BatchResult reports how many rows were created and how many students the
// duplicate-payment guard filtered out.
type BatchResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// CreateTransactionInput describes a single transaction.
type CreateTransactionInput struct {
	Type        string
	Amount      int64
	Description string
	StudentID   *string
	Date        time.Time
}

// TransactionFilter holds optional filter parameters for listing transactions.
// ToDate is an inclusive upper bound and Until an exclusive one.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Until     *time.Time
	Type      *string
	StudentID *string
}

// TransactionServicer records and lists transactions. CreateBatch is the mass
// transaction orchestrator.
type TransactionServicer interface {
	CreateBatch(ctx context.Context, actor authz.Actor, input BatchInput) (*BatchResult, error)
	CreateTransaction(ctx context.Context, actor authz.Actor, input CreateTransactionInput) (*models.Transaction, error)
	ListTransactions(ctx context.Context, actor authz.Actor, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[LedgerEntry], error)
	DeleteTransaction(ctx context.Context, actor authz.Actor, id string) error
}

// InstallmentServicer manages SPP installment plans.
type InstallmentServicer interface {
	SetInstallment(ctx context.Context, actor authz.Actor, studentID string, active bool) (*models.SppInstallmentSetting, error)
	GetInstallment(ctx context.Context, actor authz.Actor, studentID string) (*models.SppInstallmentSetting, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
