package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CategoryType is the polarity of a category. It never changes after creation.
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "INCOME"
	CategoryTypeExpense CategoryType = "EXPENSE"
)

// Valid reports whether t is INCOME or EXPENSE.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Codes of the seeded system categories.
const (
	CodeSPP               = "SPP"
	CodeTabungan          = "TABUNGAN"
	CodePenarikanTabungan = "PENARIKAN_TABUNGAN"
	CodeKas               = "KAS"
	CodeOperasionalKomite = "OPERASIONAL_KOMITE"
)

// TransactionCategory classifies transactions. Code and Type are immutable.
type TransactionCategory struct {
	Base
	Code             string       `gorm:"size:64;uniqueIndex;not null" json:"code"`
	Name             string       `gorm:"not null" json:"name"`
	Type             CategoryType `gorm:"type:varchar(16);not null" json:"type"`
	ShowToKomite     bool         `gorm:"not null;default:false" json:"show_to_komite"`
	ShowToAdmin      bool         `gorm:"not null;default:false" json:"show_to_admin"`
	RequiresHandover bool         `gorm:"not null;default:false" json:"requires_handover"`
	IsSystem         bool         `gorm:"not null;default:false" json:"is_system"`
	IsActive         bool         `gorm:"not null;default:true" json:"is_active"`
	DefaultAmount    *int64       `gorm:"type:bigint" json:"default_amount,omitempty"`
}

// VisibleTo reports whether the category's visibility flags expose it to role.
func (c *TransactionCategory) VisibleTo(role Role) bool {
	switch role {
	case RoleAdmin:
		return c.ShowToAdmin
	case RoleKomite:
		return c.ShowToKomite
	case RoleSantri, RoleGuru:
		return false
	}
	return false
}

// DeriveCategoryCode turns a display name into its category code:
// upper-cased, with every whitespace run collapsed into one underscore.
func DeriveCategoryCode(name string) string {
	return strings.Join(strings.Fields(cases.Upper(language.Indonesian).String(name)), "_")
}

// DefaultRequiresHandover is the schema default for the requires_handover
// column. Savings and general cash collected by an admin must be handed over.
func DefaultRequiresHandover(code string) bool {
	switch code {
	case CodeTabungan, CodeKas:
		return true
	}
	return false
}

// SystemCategories returns the seeded categories. They are protected from deletion.
func SystemCategories() []TransactionCategory {
	seed := []struct {
		code, name    string
		typ           CategoryType
		komite, admin bool
	}{
		{CodeSPP, "SPP", CategoryTypeIncome, true, true},
		{CodeTabungan, "Tabungan", CategoryTypeIncome, true, true},
		{CodePenarikanTabungan, "Penarikan Tabungan", CategoryTypeExpense, true, true},
		{CodeKas, "Kas", CategoryTypeIncome, true, true},
		{CodeOperasionalKomite, "Operasional Komite", CategoryTypeExpense, true, false},
	}

	out := make([]TransactionCategory, 0, len(seed))
	for _, s := range seed {
		out = append(out, TransactionCategory{
			Code:             s.code,
			Name:             s.name,
			Type:             s.typ,
			ShowToKomite:     s.komite,
			ShowToAdmin:      s.admin,
			RequiresHandover: DefaultRequiresHandover(s.code),
			IsSystem:         true,
			IsActive:         true,
		})
	}
	return out
}
