// Package authz maps the closed set of portal roles onto the capabilities
// each ledger operation needs. Every service checks its capability before it
// touches the datastore.
package authz

import (
	apperrors "bendahara/internal/errors"
	"bendahara/internal/models"
)

// Actor is the resolved identity of the caller, as handed over by the
// identity provider.
type Actor struct {
	UserID string
	Role   models.Role
}

// Capability names one guarded operation.
type Capability int

const (
	ViewCategoryCatalog Capability = iota
	ManageCategories
	RecordTransactions
	ViewTransactions
	DeleteTransactions
	ViewCategoryBalances
	ViewStudentHistory
	ViewHandoverStats
	PerformHandover
	ManageInstallments
	ManageUsers
)

func (c Capability) String() string {
	switch c {
	case ViewCategoryCatalog:
		return "view_category_catalog"
	case ManageCategories:
		return "manage_categories"
	case RecordTransactions:
		return "record_transactions"
	case ViewTransactions:
		return "view_transactions"
	case DeleteTransactions:
		return "delete_transactions"
	case ViewCategoryBalances:
		return "view_category_balances"
	case ViewStudentHistory:
		return "view_student_history"
	case ViewHandoverStats:
		return "view_handover_stats"
	case PerformHandover:
		return "perform_handover"
	case ManageInstallments:
		return "manage_installments"
	case ManageUsers:
		return "manage_users"
	}
	return "unknown"
}

// Allows reports whether role holds capability c. Unknown roles hold nothing.
func Allows(role models.Role, c Capability) bool {
	switch role {
	case models.RoleAdmin:
		return c != ViewStudentHistory
	case models.RoleKomite:
		switch c {
		case ViewCategoryCatalog, RecordTransactions, ViewTransactions, ViewCategoryBalances:
			return true
		}
		return false
	case models.RoleSantri:
		return c == ViewStudentHistory
	case models.RoleGuru:
		return false
	}
	return false
}

// Require returns ErrUnauthorized unless the actor holds c.
func Require(actor Actor, c Capability) error {
	if actor.UserID == "" || !Allows(actor.Role, c) {
		return apperrors.ErrUnauthorized
	}
	return nil
}
